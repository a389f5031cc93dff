package domain

// Window is the daily feeding window. Bounds are minutes since midnight (0..1439).
// Start < End is assumed but not enforced.
type Window struct {
	StartM int
	EndM   int
}

// Water tracks the daily intake goal and progress, in milliliters.
type Water struct {
	GoalML  int
	TakenML int // may exceed GoalML
}

// RemainingML returns how much is left to reach the goal, never negative.
func (w Water) RemainingML() int {
	if rest := w.GoalML - w.TakenML; rest > 0 {
		return rest
	}
	return 0
}

// WaterReminder fires every EveryMin minutes inside [StartM, EndM], counting from StartM.
type WaterReminder struct {
	StartM   int
	EndM     int
	EveryMin int
}

// PlanEntry is a one-shot broadcast at a given minute of the day.
type PlanEntry struct {
	AtM  int
	Text string
}

// Settings is the process-wide configuration shared by every subscriber.
type Settings struct {
	Window        Window
	Water         Water
	WaterReminder WaterReminder
	WindowPins    bool
	Plan          []PlanEntry
}

// Defaults returns the initial settings for a fresh process.
func Defaults(waterGoalML int, windowPins bool) Settings {
	return Settings{
		Window:        Window{StartM: 12 * 60, EndM: 21 * 60},
		Water:         Water{GoalML: waterGoalML},
		WaterReminder: WaterReminder{StartM: 9 * 60, EndM: 21 * 60, EveryMin: 90},
		WindowPins:    windowPins,
	}
}
