package model

// DefaultMilestones is the fixed list used to seed an empty milestone
// collection. "First Day" anchors the elapsed-time counter.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{Title: "First Date", Date: MustDate("2025-06-29"), Icon: "heart", IsReached: true, Order: 1, Category: CategoryOther},
		{Title: "First Day", Date: MustDate("2025-07-01"), Icon: "check", IsReached: true, Order: 2, Category: CategoryRelationshipStart},
		{Title: "1 Month", Date: MustDate("2025-08-01"), Icon: "check", IsReached: true, Order: 3, Category: CategoryAnniversary},
		{Title: "100 Days", Date: MustDate("2025-10-09"), Icon: "check", IsReached: true, Order: 4, Category: CategoryOther},
		{Title: "6 Months", Date: MustDate("2026-01-01"), Icon: "heart", IsReached: true, Order: 5, Category: CategoryAnniversary},
		{Title: "1 Year", Date: MustDate("2026-07-01"), Icon: "lock", IsReached: false, Order: 6, Category: CategoryAnniversary},
	}
}
