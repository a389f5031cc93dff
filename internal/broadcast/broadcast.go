package broadcast

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ykvlv/regimen-bot/internal/domain"
	"github.com/ykvlv/regimen-bot/internal/metrics"
)

// Sender is a minimal interface the broadcaster needs to send a text message.
// telegram.Router implements it.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// SubscriberLister provides the current subscriber set.
type SubscriberLister interface {
	ListSubscribers(ctx context.Context) ([]int64, error)
}

// Broadcaster fans a message out to every subscriber. Delivery is best effort:
// failures are logged and counted, never retried.
type Broadcaster struct {
	subs    SubscriberLister
	sender  Sender
	limiter *rate.Limiter
	log     *zap.Logger
	metrics metrics.Recorder
}

// New creates a Broadcaster sending at most perSecond messages with the given burst.
func New(subs SubscriberLister, sender Sender, perSecond float64, burst int, log *zap.Logger, m metrics.Recorder) *Broadcaster {
	if burst < 1 {
		burst = 1
	}
	return &Broadcaster{
		subs:    subs,
		sender:  sender,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		log:     log,
		metrics: m,
	}
}

// Broadcast sends a to every subscriber and returns how many sends succeeded.
func (b *Broadcaster) Broadcast(ctx context.Context, a domain.Announcement) int {
	ids, err := b.subs.ListSubscribers(ctx)
	if err != nil {
		b.log.Error("list subscribers failed", zap.Error(err))
		return 0
	}
	b.metrics.RecordBroadcast(string(a.Kind))

	sent := 0
	for _, chatID := range ids {
		if err := b.limiter.Wait(ctx); err != nil {
			// Context canceled: shutting down.
			b.log.Warn("broadcast interrupted", zap.Error(err), zap.Int("sent", sent))
			return sent
		}
		if err := b.sender.SendMessage(chatID, a.Text); err != nil {
			b.metrics.RecordSend(false)
			b.log.Warn("send failed", zap.Error(err), zap.Int64("chatID", chatID), zap.String("kind", string(a.Kind)))
			continue
		}
		b.metrics.RecordSend(true)
		sent++
	}
	return sent
}
