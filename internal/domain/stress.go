package domain

import "time"

// StressLevel is the market-stress monitor's categorical reading.
// Unknown is an explicit value: a missing monitor must stay neutral,
// it never halts or clears anything on its own.
type StressLevel string

const (
	StressUnknown  StressLevel = "UNKNOWN"
	StressNormal   StressLevel = "NORMAL"
	StressElevated StressLevel = "ELEVATED"
	StressSevere   StressLevel = "SEVERE"
	StressExtreme  StressLevel = "EXTREME"
)

// StressSnapshot is the single global stress reading captured once at the
// start of an acceptance run and held read-only for the whole batch.
type StressSnapshot struct {
	Level      StressLevel `json:"level"`
	Basis      Float       `json:"basis"` // numeric basis, e.g. a VIX-like level
	CapturedAt time.Time   `json:"captured_at"`
	Source     string      `json:"source"`
}

// NeutralStress is the snapshot used when no monitor is configured or the
// monitor is unreachable: explicitly unknown, contributing nothing.
func NeutralStress(at time.Time) StressSnapshot {
	return StressSnapshot{Level: StressUnknown, CapturedAt: at, Source: "none"}
}

// Halting reports whether this reading short-circuits per-candidate logic.
func (s StressSnapshot) Halting() bool {
	return s.Level == StressSevere || s.Level == StressExtreme
}
