package domain

// Kind tells which rule produced an announcement.
type Kind string

const (
	KindWindowStart Kind = "window_start"
	KindWindowEnd   Kind = "window_end"
	KindWater       Kind = "water"
	KindPlan        Kind = "plan"
)

const (
	WindowStartText = "⏰ Feeding window is open"
	WindowEndText   = "✅ Feeding window is closed"
	WaterText       = "💧 Reminder: take a few sips of water"
)

// Announcement is a message to be broadcast to every subscriber.
type Announcement struct {
	Kind Kind
	Text string
}

// InRange reports whether m lies in [fromM, toM], both ends inclusive.
// Ranges crossing midnight are not supported and never match.
func InRange(m, fromM, toM int) bool {
	return m >= fromM && m <= toM
}

// WaterDue reports whether the water reminder fires at minute nowM.
func WaterDue(nowM int, r WaterReminder) bool {
	if r.EveryMin <= 0 || !InRange(nowM, r.StartM, r.EndM) {
		return false
	}
	since := nowM - r.StartM
	return since >= 0 && since%r.EveryMin == 0
}

// Evaluate runs the window-pin, water and plan rules for minute nowM.
// Rules are independent; the result keeps that order, and plan entries keep list order.
func Evaluate(nowM int, s Settings) []Announcement {
	var out []Announcement

	if s.WindowPins {
		if nowM == s.Window.StartM {
			out = append(out, Announcement{Kind: KindWindowStart, Text: WindowStartText})
		}
		if nowM == s.Window.EndM {
			out = append(out, Announcement{Kind: KindWindowEnd, Text: WindowEndText})
		}
	}

	if WaterDue(nowM, s.WaterReminder) {
		out = append(out, Announcement{Kind: KindWater, Text: WaterText})
	}

	for _, e := range s.Plan {
		if e.AtM == nowM {
			out = append(out, Announcement{Kind: KindPlan, Text: e.Text})
		}
	}
	return out
}
