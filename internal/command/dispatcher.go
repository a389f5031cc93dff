package command

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ykvlv/regimen-bot/internal/domain"
	"github.com/ykvlv/regimen-bot/internal/metrics"
)

// Store is the part of store.Repo the dispatcher mutates and reads.
type Store interface {
	AddSubscriber(ctx context.Context, chatID int64) (bool, error)
	Settings(ctx context.Context) (domain.Settings, error)
	SetWindow(ctx context.Context, w domain.Window) error
	SetWaterGoal(ctx context.Context, goalML int) error
	AddWater(ctx context.Context, ml int) (domain.Water, error)
	ResetWater(ctx context.Context) error
	SetWaterReminder(ctx context.Context, r domain.WaterReminder) error
	ReplacePlan(ctx context.Context, entries []domain.PlanEntry) error
	ClearPlan(ctx context.Context) error
}

// handlerFunc runs one command and returns the reply and a metrics outcome.
type handlerFunc func(ctx context.Context, chatID int64, args string) (reply, outcome string)

type command struct {
	name string
	run  handlerFunc
}

// Dispatcher maps chat commands to settings mutations and status reads.
type Dispatcher struct {
	store    Store
	log      *zap.Logger
	metrics  metrics.Recorder
	commands map[string]command
}

// New creates a Dispatcher. Every command is reachable by its Telegram-style
// name and by a hyphenated alias.
func New(store Store, log *zap.Logger, m metrics.Recorder) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		log:      log,
		metrics:  m,
		commands: make(map[string]command),
	}
	d.register(d.handleStart, "start", "activate")
	d.register(d.handleHelp, "help")
	d.register(d.handleStatus, "status")
	d.register(d.handleSetWaterGoal, "setwatergoal", "set-water-goal")
	d.register(d.handleAddWater, "addwater", "add-water")
	d.register(d.handleResetWater, "resetwater", "reset-water")
	d.register(d.handleSetWaterReminder, "setwaterrem", "set-water-reminder")
	d.register(d.handleSetWindow, "setwindow", "set-window")
	d.register(d.handleImportPlan, "importplan", "import-plan")
	d.register(d.handleClearPlan, "clearplan", "clear-plan")
	return d
}

func (d *Dispatcher) register(fn handlerFunc, names ...string) {
	for _, n := range names {
		d.commands[n] = command{name: names[0], run: fn}
	}
}

// Parse splits a command line into a lowercased name and the raw argument string.
// A leading "/" and a "@botname" suffix are stripped from the name.
func Parse(text string) (name, args string, slash bool) {
	text = strings.TrimSpace(text)
	head, rest := text, ""
	if i := strings.IndexFunc(text, unicode.IsSpace); i >= 0 {
		head, rest = text[:i], strings.TrimSpace(text[i:])
	}
	slash = strings.HasPrefix(head, "/")
	head = strings.TrimPrefix(head, "/")
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}
	return strings.ToLower(head), rest, slash
}

// Handle executes one command line for chatID and returns the reply.
// An empty reply means the text was not a command and should be ignored.
func (d *Dispatcher) Handle(ctx context.Context, chatID int64, text string) string {
	name, args, slash := Parse(text)
	cmd, ok := d.commands[name]
	if !ok {
		if slash && name != "" {
			d.metrics.RecordCommand("unknown", metrics.OutcomeUsage)
			return unknownText
		}
		return ""
	}

	reply, outcome := cmd.run(ctx, chatID, args)
	d.metrics.RecordCommand(cmd.name, outcome)
	d.log.Debug("command handled",
		zap.String("command", cmd.name),
		zap.String("outcome", outcome),
		zap.Int64("chatID", chatID),
	)
	return reply
}

func (d *Dispatcher) fail(cmd string, chatID int64, err error) (string, string) {
	d.log.Error("command failed", zap.String("command", cmd), zap.Int64("chatID", chatID), zap.Error(err))
	return internalError, metrics.OutcomeError
}

func (d *Dispatcher) handleStart(ctx context.Context, chatID int64, _ string) (string, string) {
	added, err := d.store.AddSubscriber(ctx, chatID)
	if err != nil {
		return d.fail("start", chatID, err)
	}
	if added {
		d.log.Info("subscriber added", zap.Int64("chatID", chatID))
	}
	return activatedText, metrics.OutcomeOK
}

func (d *Dispatcher) handleHelp(context.Context, int64, string) (string, string) {
	return helpText, metrics.OutcomeOK
}

func (d *Dispatcher) handleStatus(ctx context.Context, chatID int64, _ string) (string, string) {
	s, err := d.store.Settings(ctx)
	if err != nil {
		return d.fail("status", chatID, err)
	}
	return formatStatus(s), metrics.OutcomeOK
}

func formatStatus(s domain.Settings) string {
	return fmt.Sprintf(statusFmt,
		domain.FormatMinutes(s.Window.StartM), domain.FormatMinutes(s.Window.EndM),
		s.Water.GoalML, s.Water.TakenML, s.Water.RemainingML(),
		domain.FormatMinutes(s.WaterReminder.StartM), domain.FormatMinutes(s.WaterReminder.EndM), s.WaterReminder.EveryMin,
		len(s.Plan),
	)
}

func (d *Dispatcher) handleSetWaterGoal(ctx context.Context, chatID int64, args string) (string, string) {
	v, err := domain.ParsePositive(firstField(args))
	if err != nil {
		return goalUsage, metrics.OutcomeUsage
	}
	if err := d.store.SetWaterGoal(ctx, v); err != nil {
		return d.fail("setwatergoal", chatID, err)
	}
	return fmt.Sprintf(goalSetFmt, v), metrics.OutcomeOK
}

func (d *Dispatcher) handleAddWater(ctx context.Context, chatID int64, args string) (string, string) {
	v, err := domain.ParsePositive(firstField(args))
	if err != nil {
		return addUsage, metrics.OutcomeUsage
	}
	w, err := d.store.AddWater(ctx, v)
	if err != nil {
		return d.fail("addwater", chatID, err)
	}
	return fmt.Sprintf(addedFmt, v, w.RemainingML()), metrics.OutcomeOK
}

func (d *Dispatcher) handleResetWater(ctx context.Context, chatID int64, _ string) (string, string) {
	if err := d.store.ResetWater(ctx); err != nil {
		return d.fail("resetwater", chatID, err)
	}
	return waterReset, metrics.OutcomeOK
}

func (d *Dispatcher) handleSetWaterReminder(ctx context.Context, chatID int64, args string) (string, string) {
	f := strings.Fields(args)
	if len(f) < 3 {
		return reminderUsage, metrics.OutcomeUsage
	}
	startM, err1 := domain.ParseClock(f[0])
	endM, err2 := domain.ParseClock(f[1])
	every, err3 := domain.ParsePositive(f[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return reminderUsage, metrics.OutcomeUsage
	}

	r := domain.WaterReminder{StartM: startM, EndM: endM, EveryMin: every}
	if err := d.store.SetWaterReminder(ctx, r); err != nil {
		return d.fail("setwaterrem", chatID, err)
	}
	return fmt.Sprintf(reminderFmt, domain.FormatMinutes(startM), domain.FormatMinutes(endM), every), metrics.OutcomeOK
}

func (d *Dispatcher) handleSetWindow(ctx context.Context, chatID int64, args string) (string, string) {
	f := strings.Fields(args)
	if len(f) < 2 {
		return windowUsage, metrics.OutcomeUsage
	}
	startM, err1 := domain.ParseClock(f[0])
	endM, err2 := domain.ParseClock(f[1])
	if err1 != nil || err2 != nil {
		return windowUsage, metrics.OutcomeUsage
	}

	if err := d.store.SetWindow(ctx, domain.Window{StartM: startM, EndM: endM}); err != nil {
		return d.fail("setwindow", chatID, err)
	}
	return fmt.Sprintf(windowFmt, domain.FormatMinutes(startM), domain.FormatMinutes(endM)), metrics.OutcomeOK
}

func (d *Dispatcher) handleImportPlan(ctx context.Context, chatID int64, args string) (string, string) {
	entries, err := domain.ParsePlan(args)
	if err != nil {
		d.log.Info("plan import rejected", zap.Int64("chatID", chatID), zap.Error(err))
		return importFailed, metrics.OutcomeUsage
	}
	if err := d.store.ReplacePlan(ctx, entries); err != nil {
		return d.fail("importplan", chatID, err)
	}
	return fmt.Sprintf(importedFmt, len(entries)), metrics.OutcomeOK
}

func (d *Dispatcher) handleClearPlan(ctx context.Context, chatID int64, _ string) (string, string) {
	if err := d.store.ClearPlan(ctx); err != nil {
		return d.fail("clearplan", chatID, err)
	}
	return planCleared, metrics.OutcomeOK
}

func firstField(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
