package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jmhodges/clock"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ykvlv/regimen-bot/internal/broadcast"
	"github.com/ykvlv/regimen-bot/internal/command"
	"github.com/ykvlv/regimen-bot/internal/config"
	"github.com/ykvlv/regimen-bot/internal/domain"
	"github.com/ykvlv/regimen-bot/internal/metrics"
	"github.com/ykvlv/regimen-bot/internal/scheduler"
	"github.com/ykvlv/regimen-bot/internal/store"
	"github.com/ykvlv/regimen-bot/internal/telegram"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	loc     *time.Location
	bot     *tgbotapi.BotAPI
	metrics *metrics.Collector
	httpSrv *http.Server
}

// New validates the bot token against the API and prepares the ops server.
func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newOpsRouter(reg),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, loc: loc, bot: bot, metrics: collector, httpSrv: srv}, nil
}

// Run serves updates and ticks until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting regimen-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("tz", a.loc.String()),
		zap.String("http", a.cfg.HTTPAddr),
	)

	repo, err := store.OpenMemory(ctx, domain.Defaults(a.cfg.DefaultWaterGoalML, a.cfg.WindowPins))
	if err != nil {
		a.log.Error("open store failed", zap.Error(err))
		return err
	}
	defer func() { _ = repo.Close() }()

	dispatcher := command.New(repo, a.log.Named("command"), a.metrics)
	router := telegram.NewRouter(a.bot, a.log.Named("telegram"), dispatcher)
	if err := router.RegisterCommands(); err != nil {
		a.log.Warn("register commands failed", zap.Error(err))
	}

	bc := broadcast.New(repo, router, a.cfg.SendRate, a.cfg.SendBurst, a.log.Named("broadcast"), a.metrics)
	sched := scheduler.New(repo, bc, clock.New(), a.loc, a.log.Named("scheduler"), a.metrics)

	if err := sched.Start(ctx); err != nil {
		return err
	}

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()

			sched.Stop()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()
			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			return nil

		case upd := <-updCh:
			router.HandleUpdate(ctx, upd)
		}
	}
}
