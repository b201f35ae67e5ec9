package model

// Tie-break policy for list views: an explicit order field wins when
// both records carry one and the values differ; otherwise newest
// creation first, then newest modification first, then id as a stable
// final key.

func LessBucketItems(a, b BucketItem) bool {
	if a.Order != nil && b.Order != nil && *a.Order != *b.Order {
		return *a.Order < *b.Order
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	if !a.UpdatedAt.Equal(b.UpdatedAt) {
		return a.UpdatedAt.After(b.UpdatedAt)
	}
	return a.ID < b.ID
}

// LessMemories orders the timeline: newest date first, then newest
// creation first.
func LessMemories(a, b Memory) bool {
	if !a.Date.Time().Equal(b.Date.Time()) {
		return a.Date.After(b.Date)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}

func LessMilestones(a, b Milestone) bool {
	if a.Order != b.Order {
		return a.Order < b.Order
	}
	if !a.Date.Time().Equal(b.Date.Time()) {
		return a.Date.Before(b.Date)
	}
	return a.ID < b.ID
}
