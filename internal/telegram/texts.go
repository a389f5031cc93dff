package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// botCommands is the menu published via setMyCommands.
var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Activate reminders"},
	{Command: "status", Description: "Goals and reminders"},
	{Command: "addwater", Description: "Log water, e.g. /addwater 300"},
	{Command: "resetwater", Description: "Reset the water log"},
	{Command: "setwatergoal", Description: "Water goal, e.g. /setwatergoal 2700"},
	{Command: "setwaterrem", Description: "Water reminders, e.g. /setwaterrem 09:00 21:00 90"},
	{Command: "setwindow", Description: "Feeding window, e.g. /setwindow 12:00 21:00"},
	{Command: "importplan", Description: "Import a JSON plan"},
	{Command: "clearplan", Description: "Clear the plan"},
	{Command: "help", Description: "List commands"},
}

// mainMenuKeyboard builds the reply keyboard shown under every reply.
func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/status"),
			tgbotapi.NewKeyboardButton("/addwater 250"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("/help"),
		),
	)
}
