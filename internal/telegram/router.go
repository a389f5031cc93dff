package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI is the subset of *tgbotapi.BotAPI the router uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CommandHandler turns a command line into a reply; command.Dispatcher implements it.
type CommandHandler interface {
	Handle(ctx context.Context, chatID int64, text string) string
}

// Router wires Telegram updates to the command handler.
type Router struct {
	bot BotAPI
	log *zap.Logger
	cmd CommandHandler
}

// NewRouter creates a new Telegram router.
func NewRouter(bot BotAPI, log *zap.Logger, cmd CommandHandler) *Router {
	return &Router{bot: bot, log: log, cmd: cmd}
}

// RegisterCommands publishes the bot's command menu.
func (r *Router) RegisterCommands() error {
	_, err := r.bot.Request(tgbotapi.NewSetMyCommands(botCommands...))
	return err
}

// HandleUpdate routes a single update; only text messages are handled.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return
	}
	chatID := msg.Chat.ID

	reply := r.cmd.Handle(ctx, chatID, msg.Text)
	if reply == "" {
		// Not a command: ignore free-form text.
		return
	}

	out := tgbotapi.NewMessage(chatID, reply)
	out.ReplyMarkup = mainMenuKeyboard()
	if _, err := r.bot.Send(out); err != nil {
		r.log.Warn("reply failed", zap.Error(err), zap.Int64("chatID", chatID))
	}
}

// SendMessage sends a plain text message to the given chat.
// This makes Router satisfy broadcast.Sender.
func (r *Router) SendMessage(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
