package domain

import "strings"

// Stage is the classifier's estimate of where a visitor is in the sales conversation.
type Stage string

const (
	StageGreeting   Stage = "GREETING"
	StageDiscovery  Stage = "DISCOVERY"
	StageConsulting Stage = "CONSULTING"
	StageSalesReady Stage = "SALES_READY"
	StageUrgent     Stage = "URGENT"
)

// ParseStage normalizes a model-provided stage label. Anything unrecognized is a greeting.
func ParseStage(s string) Stage {
	switch st := Stage(strings.ToUpper(strings.TrimSpace(s))); st {
	case StageGreeting, StageDiscovery, StageConsulting, StageSalesReady, StageUrgent:
		return st
	default:
		return StageGreeting
	}
}

// IsHighIntent reports whether the stage qualifies for a high-priority alert.
func (s Stage) IsHighIntent() bool {
	return s == StageSalesReady || s == StageUrgent
}

// IsExploratory reports whether the stage is one where alerts are suppressed.
func (s Stage) IsExploratory() bool {
	return s == StageGreeting || s == StageDiscovery || s == StageConsulting
}
