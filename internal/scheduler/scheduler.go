package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmhodges/clock"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/ykvlv/regimen-bot/internal/domain"
	"github.com/ykvlv/regimen-bot/internal/metrics"
)

// everyMinute is the cron expression for the tick.
const everyMinute = "* * * * *"

// SettingsReader provides a settings snapshot for one tick.
type SettingsReader interface {
	Settings(ctx context.Context) (domain.Settings, error)
}

// Broadcaster delivers one announcement to all subscribers.
type Broadcaster interface {
	Broadcast(ctx context.Context, a domain.Announcement) int
}

// Scheduler evaluates reminder rules once a minute and hands matches to the broadcaster.
//
// Ticks only queue announcements. A single delivery goroutine drains the
// queue in order, so a slow broadcast never holds up the next minute.
type Scheduler struct {
	settings SettingsReader
	bc       Broadcaster
	clk      clock.Clock
	loc      *time.Location
	log      *zap.Logger
	metrics  metrics.Recorder
	cron     *cron.Cron

	mu      sync.Mutex
	pending []domain.Announcement
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	started bool
}

// New creates a Scheduler ticking in loc. clk is the time source for rule evaluation.
func New(settings SettingsReader, bc Broadcaster, clk clock.Clock, loc *time.Location, log *zap.Logger, m metrics.Recorder) *Scheduler {
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	return &Scheduler{
		settings: settings,
		bc:       bc,
		clk:      clk,
		loc:      loc,
		log:      log,
		metrics:  m,
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start registers the minute tick, starts cron and the delivery loop.
// Ticks and deliveries use ctx, so canceling it cuts a running broadcast short.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(everyMinute, func() { s.Tick(ctx) }); err != nil {
		return err
	}
	s.started = true
	go s.deliver(ctx)
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("tz", s.loc.String()))
	return nil
}

// Stop stops cron, waits for a running tick and then for the delivery loop.
// Announcements still queued at that point are dropped.
func (s *Scheduler) Stop() {
	s.log.Info("scheduler stopping")
	<-s.cron.Stop().Done()
	if !s.started {
		return
	}
	close(s.quit)
	<-s.done

	s.mu.Lock()
	dropped := len(s.pending)
	s.pending = nil
	s.mu.Unlock()
	if dropped > 0 {
		s.log.Warn("undelivered announcements dropped", zap.Int("count", dropped))
	}
}

// Tick evaluates the rules for the current minute and queues what is due.
// It returns the queued announcements without waiting for delivery.
func (s *Scheduler) Tick(ctx context.Context) []domain.Announcement {
	nowM := domain.MinuteOfDay(s.clk.Now(), s.loc)
	log := s.log.With(zap.String("tick", uuid.NewString()), zap.String("at", domain.FormatMinutes(nowM)))

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		log.Error("read settings failed", zap.Error(err))
		return nil
	}

	announcements := domain.Evaluate(nowM, settings)
	s.metrics.RecordTick(len(announcements))
	if len(announcements) == 0 {
		log.Debug("nothing due")
		return nil
	}

	s.enqueue(announcements)
	log.Info("announcements queued", zap.Int("count", len(announcements)))
	return announcements
}

func (s *Scheduler) enqueue(as []domain.Announcement) {
	s.mu.Lock()
	s.pending = append(s.pending, as...)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) next() (domain.Announcement, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return domain.Announcement{}, false
	}
	a := s.pending[0]
	s.pending = s.pending[1:]
	return a, true
}

func (s *Scheduler) deliver(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		case <-s.wake:
			s.flush(ctx)
		}
	}
}

// flush broadcasts queued announcements in order until the queue is empty
// or the scheduler is shutting down.
func (s *Scheduler) flush(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.quit:
			return
		default:
		}

		a, ok := s.next()
		if !ok {
			return
		}
		sent := s.bc.Broadcast(ctx, a)
		s.log.Info("broadcast", zap.String("kind", string(a.Kind)), zap.Int("sent", sent))
	}
}
