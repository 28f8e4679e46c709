package lead

import (
	"github.com/ashureev/leadrelay/internal/contact"
	"github.com/ashureev/leadrelay/internal/domain"
)

// Alert titles.
const (
	TitleNewContact   = "HOT LEAD - NEW CONTACT"
	TitleSalesReady   = "HOT LEAD - SALES READY"
	TitleUserReported = "⚠️ USER REPORTED ERROR"
	titleStagePrefix  = "HOT LEAD - "
)

// DecisionInput is everything the alert decision depends on for one turn.
type DecisionInput struct {
	Stage            domain.Stage
	Profile          domain.Profile
	Latches          domain.AlertLatches
	Agreement        bool
	ContactConfirmed bool
}

// Decision is the outcome of Decide. Latches holds the latch state after the
// turn and must be written back to the session.
type Decision struct {
	Alert   bool
	Title   string
	Latches domain.AlertLatches
}

// Decide applies the alert rules in order:
//
//  1. a contact confirmed this turn always alerts;
//  2. a high-intent stage or agreement, with a real contact on file, alerts once
//     per session and sets the high-priority latch;
//  3. an exploratory stage without confirmation or agreement never alerts.
//
// Rule 3 runs after rule 2 and overrides whatever was decided before it.
func Decide(in DecisionInput) Decision {
	latches := in.Latches
	alert := false

	if in.ContactConfirmed {
		alert = true
	} else if (in.Stage.IsHighIntent() || in.Agreement) && contact.IsReal(in.Profile.Contact) {
		if !latches.HighPriorityAlertSent {
			alert = true
			latches.HighPriorityAlertSent = true
		}
	}

	if in.Stage.IsExploratory() && !in.ContactConfirmed && !in.Agreement {
		alert = false
	}

	d := Decision{Alert: alert, Latches: latches}
	if alert {
		d.Title = alertTitle(in)
	}
	return d
}

func alertTitle(in DecisionInput) string {
	switch {
	case in.ContactConfirmed:
		return TitleNewContact
	case in.Agreement:
		return TitleSalesReady
	default:
		return titleStagePrefix + string(in.Stage)
	}
}
