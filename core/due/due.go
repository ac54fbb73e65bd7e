// Package due classifies due dates into urgency buckets relative to now.
package due

import (
	"time"

	"github.com/pkg/errors"
)

type Bucket string

const (
	Overdue  Bucket = "overdue"
	DueToday Bucket = "due-today"
	DueSoon  Bucket = "due-soon"
	ThisWeek Bucket = "this-week"
	Upcoming Bucket = "upcoming"
	Later    Bucket = "later"
)

// Badge variants
const (
	VariantError   = "error"
	VariantWarning = "warning"
	VariantPrimary = "primary"
	VariantDefault = "default"
)

// Vocabulary selects the labels used for the 1 to 7 days bucket.
type Vocabulary int

const (
	// List is used by assignment lists & the calendar: "This Week".
	List Vocabulary = iota
	// Dashboard is used by the dashboard: "Upcoming".
	Dashboard
)

type Urgency struct {
	Bucket  Bucket `json:"bucket"`
	Label   string `json:"label"`
	Variant string `json:"variant"`
}

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}

// Classify returns the urgency of `dueDate` at `now`. Day offsets are calendar days in now's location.
func Classify(dueDate, now time.Time, vocab Vocabulary) Urgency {
	switch {
	case dueDate.Before(now):
		return Urgency{Overdue, "Overdue", VariantError}
	case dueDate.Before(now.AddDate(0, 0, 1)):
		return Urgency{DueToday, "Due Today", VariantError}
	case dueDate.Before(now.AddDate(0, 0, 3)):
		return Urgency{DueSoon, "Due Soon", VariantWarning}
	case dueDate.Before(now.AddDate(0, 0, 7)):
		if vocab == Dashboard {
			return Urgency{Upcoming, "Upcoming", VariantPrimary}
		}
		return Urgency{ThisWeek, "This Week", VariantPrimary}
	default:
		return Urgency{Later, "Later", VariantDefault}
	}
}

// ParseDate parses an ISO-8601 date-time (or plain date) in loc when it carries no offset.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.Errorf("invalid date %q", s)
}

// ClassifyISO parses `dueISO` then classifies it.
func ClassifyISO(dueISO string, now time.Time, vocab Vocabulary) (Urgency, error) {
	dueDate, err := ParseDate(dueISO, now.Location())
	if err != nil {
		return Urgency{}, err
	}
	return Classify(dueDate, now, vocab), nil
}
