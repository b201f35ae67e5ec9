package keeper

import (
	"time"

	"keepsake/internal/model"
	"keepsake/internal/timex"
)

// fallbackStart anchors the elapsed counter when no milestone carries
// the relationship_start category.
var fallbackStart = model.MustDate("2025-07-01")

// StartDate returns the relationship start: the date of the milestone
// categorized relationship_start, or the fixed fallback.
func (s *Service) StartDate() model.Date {
	for _, m := range s.Milestones.Snapshot() {
		if m.Category == model.CategoryRelationshipStart {
			return m.Date
		}
	}
	return fallbackStart
}

// Elapsed is the running "together for" counter.
func (s *Service) Elapsed(now time.Time) timex.Breakdown {
	return timex.Since(s.StartDate().Time(), now)
}

// NextMilestone returns the unreached milestone with the earliest
// date, if any.
func (s *Service) NextMilestone() (model.Milestone, bool) {
	var (
		next  model.Milestone
		found bool
	)
	for _, m := range s.Milestones.Snapshot() {
		if m.IsReached {
			continue
		}
		if !found || m.Date.Before(next.Date) {
			next = m
			found = true
		}
	}
	return next, found
}

// Countdown returns the next unreached milestone together with the
// time remaining until its date.
func (s *Service) Countdown(now time.Time) (model.Milestone, timex.Breakdown, bool) {
	next, ok := s.NextMilestone()
	if !ok {
		return model.Milestone{}, timex.Breakdown{}, false
	}
	return next, timex.Until(next.Date.Time(), now), true
}
