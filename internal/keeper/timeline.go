package keeper

import (
	"time"

	"keepsake/internal/model"
)

// TimelineMonth is one month's worth of memories, newest first.
type TimelineMonth struct {
	Month    time.Month
	Memories []model.Memory
}

// TimelineYear groups a year's months, newest month first.
type TimelineYear struct {
	Year   int
	Months []TimelineMonth
}

// Timeline groups the current memory snapshot by year, then month.
// The snapshot is already sorted newest date first, so groups come out
// in display order without re-sorting.
func (s *Service) Timeline() []TimelineYear {
	var years []TimelineYear
	for _, m := range s.Memories.Snapshot() {
		t := m.Date.Time()

		if len(years) == 0 || years[len(years)-1].Year != t.Year() {
			years = append(years, TimelineYear{Year: t.Year()})
		}
		year := &years[len(years)-1]

		if len(year.Months) == 0 || year.Months[len(year.Months)-1].Month != t.Month() {
			year.Months = append(year.Months, TimelineMonth{Month: t.Month()})
		}
		month := &year.Months[len(year.Months)-1]
		month.Memories = append(month.Memories, m)
	}
	return years
}
