package command

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/ykvlv/regimen-bot/internal/domain"
	"github.com/ykvlv/regimen-bot/internal/metrics"
	"github.com/ykvlv/regimen-bot/internal/store"
)

const chatID int64 = 42

func newTestDispatcher(t *testing.T) (*Dispatcher, *store.SQLiteRepo) {
	t.Helper()
	repo, err := store.OpenMemory(context.Background(), domain.Defaults(2700, true))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return New(repo, zap.NewNop(), metrics.NewCollector(prometheus.NewRegistry())), repo
}

func mustSettings(t *testing.T, repo *store.SQLiteRepo) domain.Settings {
	t.Helper()
	s, err := repo.Settings(context.Background())
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	return s
}

func TestParse(t *testing.T) {
	tests := []struct {
		in, name, args string
		slash          bool
	}{
		{in: "/start", name: "start", slash: true},
		{in: "/AddWater@regimen_bot  300 ", name: "addwater", args: "300", slash: true},
		{in: "set-window 12:00 21:00", name: "set-window", args: "12:00 21:00"},
		{in: "/importplan\n[{\"time\":\"12:30\",\"text\":\"a b\"}]", name: "importplan", args: `[{"time":"12:30","text":"a b"}]`, slash: true},
		{in: "   ", name: ""},
	}
	for _, tt := range tests {
		name, args, slash := Parse(tt.in)
		if name != tt.name || args != tt.args || slash != tt.slash {
			t.Errorf("%q: want (%q, %q, %v), got (%q, %q, %v)", tt.in, tt.name, tt.args, tt.slash, name, args, slash)
		}
	}
}

func TestHandle_ActivateRegistersOnce(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	for _, cmd := range []string{"/start", "activate", "/start"} {
		if reply := d.Handle(ctx, chatID, cmd); !strings.HasPrefix(reply, "Bot activated.") {
			t.Fatalf("%s: unexpected reply %q", cmd, reply)
		}
	}
	ids, err := repo.ListSubscribers(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ids) != 1 || ids[0] != chatID {
		t.Fatalf("want [%d], got %v", chatID, ids)
	}
}

func TestHandle_AddWaterThenStatus(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	taken := 0
	for _, v := range []int{1, 300, 999, 1500} {
		before := mustSettings(t, repo).Water.TakenML
		reply := d.Handle(ctx, chatID, fmt.Sprintf("/addwater %d", v))
		taken += v

		after := mustSettings(t, repo).Water
		if after.TakenML != before+v {
			t.Fatalf("add %d: taken %d -> %d", v, before, after.TakenML)
		}
		rest := 2700 - taken
		if rest < 0 {
			rest = 0
		}
		if want := fmt.Sprintf(addedFmt, v, rest); reply != want {
			t.Fatalf("want %q, got %q", want, reply)
		}
		status := d.Handle(ctx, chatID, "/status")
		if want := fmt.Sprintf("taken %d ml, remaining %d ml", taken, rest); !strings.Contains(status, want) {
			t.Fatalf("status %q does not contain %q", status, want)
		}
	}
}

func TestHandle_InvalidAmountsLeaveStateUnchanged(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	for _, arg := range []string{"", " 0", " abc", " -100", " 1.5"} {
		if reply := d.Handle(ctx, chatID, "/setwatergoal"+arg); reply != goalUsage {
			t.Errorf("setwatergoal%q: want usage, got %q", arg, reply)
		}
		if reply := d.Handle(ctx, chatID, "add-water"+arg); reply != addUsage {
			t.Errorf("add-water%q: want usage, got %q", arg, reply)
		}
	}
	w := mustSettings(t, repo).Water
	if w.GoalML != 2700 || w.TakenML != 0 {
		t.Fatalf("state changed: %+v", w)
	}
}

func TestHandle_SetWaterGoalAndReset(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	if reply := d.Handle(ctx, chatID, "/setwatergoal 2000"); reply != "Water goal set: 2000 ml" {
		t.Fatalf("unexpected reply %q", reply)
	}
	d.Handle(ctx, chatID, "/addwater 2500")
	if reply := d.Handle(ctx, chatID, "/status"); !strings.Contains(reply, "goal 2000 ml, taken 2500 ml, remaining 0 ml") {
		t.Fatalf("unexpected status %q", reply)
	}
	if reply := d.Handle(ctx, chatID, "/resetwater"); reply != waterReset {
		t.Fatalf("unexpected reply %q", reply)
	}
	if w := mustSettings(t, repo).Water; w.TakenML != 0 || w.GoalML != 2000 {
		t.Fatalf("unexpected tracker %+v", w)
	}
}

func TestHandle_SetWaterReminder(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	for _, bad := range []string{"/setwaterrem", "/setwaterrem 08:00", "/setwaterrem 08:00 20:00", "/setwaterrem 08:00 20:00 0", "/setwaterrem 08:00 20:00 x", "/setwaterrem 8h 20:00 30"} {
		if reply := d.Handle(ctx, chatID, bad); reply != reminderUsage {
			t.Errorf("%q: want usage, got %q", bad, reply)
		}
	}
	if got := mustSettings(t, repo).WaterReminder; got != domain.Defaults(2700, true).WaterReminder {
		t.Fatalf("reminder changed by invalid input: %+v", got)
	}

	if reply := d.Handle(ctx, chatID, "set-water-reminder 8:00 20:00 45"); reply != "Water reminders: 08:00–20:00 every 45 min" {
		t.Fatalf("unexpected reply %q", reply)
	}
	want := domain.WaterReminder{StartM: 480, EndM: 1200, EveryMin: 45}
	if got := mustSettings(t, repo).WaterReminder; got != want {
		t.Fatalf("want %+v, got %+v", want, got)
	}
}

func TestHandle_SetWindow(t *testing.T) {
	d, repo := newTestDispatcher(t)
	ctx := context.Background()

	for _, bad := range []string{"/setwindow", "/setwindow 11:00", "/setwindow 11:00 25:00"} {
		if reply := d.Handle(ctx, chatID, bad); reply != windowUsage {
			t.Errorf("%q: want usage, got %q", bad, reply)
		}
	}
	if reply := d.Handle(ctx, chatID, "/setwindow 11:00 19:30"); reply != "Feeding window: 11:00–19:30" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if got := mustSettings(t, repo).Window; got != (domain.Window{StartM: 660, EndM: 1170}) {
		t.Fatalf("unexpected window %+v", got)
	}
}

func TestHandle_ImportAndClearPlan(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	payload := `[{"time":"12:30","text":"Lunch"},{"time":"12:30","text":"Pills"},{"time":"18:00","text":"Dinner"}]`
	if reply := d.Handle(ctx, chatID, "/importplan "+payload); reply != "Imported items: 3" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if reply := d.Handle(ctx, chatID, "/status"); !strings.HasSuffix(reply, "Plan: 3 items") {
		t.Fatalf("unexpected status %q", reply)
	}

	for _, bad := range []string{"/importplan", "/importplan {", `/importplan {"time":"12:30","text":"x"}`, `/importplan [{"time":"12:30"}]`} {
		if reply := d.Handle(ctx, chatID, bad); reply != importFailed {
			t.Errorf("%q: want import error, got %q", bad, reply)
		}
		if reply := d.Handle(ctx, chatID, "/status"); !strings.HasSuffix(reply, "Plan: 3 items") {
			t.Fatalf("plan changed after %q: %q", bad, reply)
		}
	}

	if reply := d.Handle(ctx, chatID, "clear-plan"); reply != planCleared {
		t.Fatalf("unexpected reply %q", reply)
	}
	if reply := d.Handle(ctx, chatID, "/status"); !strings.HasSuffix(reply, "Plan: 0 items") {
		t.Fatalf("unexpected status %q", reply)
	}
}

func TestHandle_StatusDefaults(t *testing.T) {
	d, _ := newTestDispatcher(t)
	want := "Feeding window: 12:00–21:00\n" +
		"Water: goal 2700 ml, taken 0 ml, remaining 2700 ml\n" +
		"Water reminders: 09:00–21:00 every 90 min\n" +
		"Plan: 0 items"
	if got := d.Handle(context.Background(), chatID, "/status"); got != want {
		t.Fatalf("want:\n%s\ngot:\n%s", want, got)
	}
}

func TestHandle_UnknownAndFreeText(t *testing.T) {
	d, _ := newTestDispatcher(t)
	ctx := context.Background()

	if reply := d.Handle(ctx, chatID, "/pause"); reply != unknownText {
		t.Fatalf("want unknown reply, got %q", reply)
	}
	if reply := d.Handle(ctx, chatID, "hello there"); reply != "" {
		t.Fatalf("free text must be ignored, got %q", reply)
	}
	if reply := d.Handle(ctx, chatID, "HELP"); reply != helpText {
		t.Fatalf("want help, got %q", reply)
	}
}

type brokenStore struct{ Store }

func (brokenStore) Settings(context.Context) (domain.Settings, error) {
	return domain.Settings{}, errors.New("closed")
}

func TestHandle_StoreErrorRepliesGenerically(t *testing.T) {
	d := New(brokenStore{}, zap.NewNop(), metrics.NewCollector(prometheus.NewRegistry()))
	if reply := d.Handle(context.Background(), chatID, "/status"); reply != internalError {
		t.Fatalf("want internal error reply, got %q", reply)
	}
}
