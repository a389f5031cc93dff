package command

import "github.com/ykvlv/regimen-bot/internal/domain"

// Reply texts in English
const (
	helpText = "Commands:\n" +
		"/start - activate the bot\n" +
		"/status - goals and reminders\n" +
		"/setwatergoal 2700 - water goal (ml)\n" +
		"/addwater 300 - log water taken (ml)\n" +
		"/resetwater - reset the water log\n" +
		"/setwaterrem 09:00 21:00 90 - water reminders from-to every N minutes\n" +
		"/setwindow 12:00 21:00 - feeding window\n" +
		"/importplan <JSON> - import a plan " + domain.PlanExample + "\n" +
		"/clearplan - clear the plan"

	activatedText = "Bot activated.\n\n" + helpText

	statusFmt = "Feeding window: %s–%s\n" +
		"Water: goal %d ml, taken %d ml, remaining %d ml\n" +
		"Water reminders: %s–%s every %d min\n" +
		"Plan: %d items"

	goalUsage     = "Specify ml: /setwatergoal 2700"
	goalSetFmt    = "Water goal set: %d ml"
	addUsage      = "Specify ml: /addwater 300"
	addedFmt      = "Logged +%d ml. Remaining: %d ml"
	waterReset    = "Water log reset."
	reminderUsage = "Example: /setwaterrem 09:00 21:00 90"
	reminderFmt   = "Water reminders: %s–%s every %d min"
	windowUsage   = "Example: /setwindow 12:00 21:00"
	windowFmt     = "Feeding window: %s–%s"
	importedFmt   = "Imported items: %d"
	importFailed  = "Import failed. Expected a JSON array: " + domain.PlanExample
	planCleared   = "Plan cleared."
	unknownText   = "Unknown command. See /help"
	internalError = "Something went wrong. Please try again later."
)
