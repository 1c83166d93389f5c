package activation

// TutorialText is shown once, on the user's first trigger. It goes to the
// log and to the Telegram notifier when one is configured.
const TutorialText = `tabwheel cycles through the tabs of your browser window.

Trigger it again (SIGUSR1) to stop; trigger once more to resume.
Each flip the upcoming tab is refreshed if it hasn't been reloaded
recently. Flip and reload intervals, auto-start, and pause-while-active
are preferences and survive restarts.`
