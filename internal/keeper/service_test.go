package keeper

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"keepsake/internal/cache"
	"keepsake/internal/config"
	"keepsake/internal/localstore"
	"keepsake/internal/logging"
	"keepsake/internal/model"
	"keepsake/internal/timex"
)

// stubRemote is an in-memory collection backend assigning sequential
// server ids.
type stubRemote[T any] struct {
	mu      sync.Mutex
	key     func(T) string
	withKey func(T, string) T
	items   map[string]T
	nextID  int
	creates int
}

func newStubRemote[T any](key func(T) string, withKey func(T, string) T) *stubRemote[T] {
	return &stubRemote[T]{key: key, withKey: withKey, items: map[string]T{}}
}

func (r *stubRemote[T]) List(ctx context.Context) ([]T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]T, 0, len(r.items))
	for _, rec := range r.items {
		out = append(out, rec)
	}
	return out, nil
}

func (r *stubRemote[T]) Create(ctx context.Context, rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.creates++
	created := r.withKey(rec, fmt.Sprintf("srv-%d", r.nextID))
	r.items[r.key(created)] = created
	return created, nil
}

func (r *stubRemote[T]) Update(ctx context.Context, rec T) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[r.key(rec)] = rec
	return rec, nil
}

func (r *stubRemote[T]) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

type testService struct {
	*Service
	milestoneRemote *stubRemote[model.Milestone]
}

func newTestService(t *testing.T) *testService {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.LocalDBPath = filepath.Join(t.TempDir(), "mirror.db")

	mirror, err := localstore.Open(context.Background(), cfg.LocalDBPath)
	require.NoError(t, err)
	t.Cleanup(func() { mirror.Close() })

	log := logging.Discard()
	milestoneRemote := newStubRemote(model.Milestone.Key,
		func(m model.Milestone, id string) model.Milestone { m.ID = id; return m })

	s := &Service{cfg: cfg, log: log, mirror: mirror}
	s.Bucket = cache.New(cache.Config[model.BucketItem]{
		Name:    "bucket-items",
		Key:     model.BucketItem.Key,
		WithKey: func(b model.BucketItem, id string) model.BucketItem { b.ID = id; return b },
		Less:    model.LessBucketItems,
		Remote: newStubRemote(model.BucketItem.Key,
			func(b model.BucketItem, id string) model.BucketItem { b.ID = id; return b }),
		Logger: log,
	})
	s.Memories = cache.New(cache.Config[model.Memory]{
		Name:    "memories",
		Key:     model.Memory.Key,
		WithKey: func(m model.Memory, id string) model.Memory { m.ID = id; return m },
		Less:    model.LessMemories,
		Remote: newStubRemote(model.Memory.Key,
			func(m model.Memory, id string) model.Memory { m.ID = id; return m }),
		Logger: log,
	})
	s.Milestones = cache.New(cache.Config[model.Milestone]{
		Name:    "milestones",
		Key:     model.Milestone.Key,
		WithKey: func(m model.Milestone, id string) model.Milestone { m.ID = id; return m },
		Less:    model.LessMilestones,
		Remote:  milestoneRemote,
		Logger:  log,
	})

	return &testService{Service: s, milestoneRemote: milestoneRemote}
}

func TestTimeline_GroupsByYearThenMonth(t *testing.T) {
	s := newTestService(t)
	s.Memories.Replace([]model.Memory{
		{ID: "m1", Title: "New year hike", Date: model.MustDate("2026-01-02")},
		{ID: "m2", Title: "Christmas market", Date: model.MustDate("2025-12-20")},
		{ID: "m3", Title: "Beach day", Date: model.MustDate("2025-12-05")},
		{ID: "m4", Title: "First date", Date: model.MustDate("2025-06-29")},
	})

	years := s.Timeline()
	require.Len(t, years, 2)

	assert.Equal(t, 2026, years[0].Year)
	require.Len(t, years[0].Months, 1)
	assert.Equal(t, time.January, years[0].Months[0].Month)

	assert.Equal(t, 2025, years[1].Year)
	require.Len(t, years[1].Months, 2)
	assert.Equal(t, time.December, years[1].Months[0].Month)
	require.Len(t, years[1].Months[0].Memories, 2)
	assert.Equal(t, "Christmas market", years[1].Months[0].Memories[0].Title)
	assert.Equal(t, time.June, years[1].Months[1].Month)
}

func TestTimeline_Empty(t *testing.T) {
	s := newTestService(t)
	assert.Empty(t, s.Timeline())
}

func TestStartDate(t *testing.T) {
	s := newTestService(t)

	// Without a relationship_start milestone the fixed fallback holds.
	assert.Equal(t, fallbackStart, s.StartDate())

	s.Milestones.Replace([]model.Milestone{
		{ID: "s1", Title: "First Day", Date: model.MustDate("2025-03-15"), Category: model.CategoryRelationshipStart},
		{ID: "s2", Title: "1 Month", Date: model.MustDate("2025-04-15"), Category: model.CategoryAnniversary},
	})
	assert.Equal(t, model.MustDate("2025-03-15"), s.StartDate())
}

func TestElapsed(t *testing.T) {
	s := newTestService(t)
	s.Milestones.Replace([]model.Milestone{
		{ID: "s1", Title: "First Day", Date: model.MustDate("2025-01-01"), Category: model.CategoryRelationshipStart},
	})

	now := time.Date(2025, 1, 3, 4, 5, 6, 0, time.UTC)
	assert.Equal(t, timex.Breakdown{Days: 2, Hours: 4, Minutes: 5, Seconds: 6}, s.Elapsed(now))
}

func TestNextMilestoneAndCountdown(t *testing.T) {
	s := newTestService(t)

	_, _, ok := s.Countdown(time.Now())
	assert.False(t, ok)

	s.Milestones.Replace([]model.Milestone{
		{ID: "s1", Title: "1 Month", Date: model.MustDate("2025-08-01"), IsReached: true, Order: 1},
		{ID: "s2", Title: "1 Year", Date: model.MustDate("2026-07-01"), Order: 3},
		{ID: "s3", Title: "6 Months", Date: model.MustDate("2026-01-01"), Order: 2},
	})

	next, ok := s.NextMilestone()
	require.True(t, ok)
	assert.Equal(t, "6 Months", next.Title)

	now := time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
	milestone, left, ok := s.Countdown(now)
	require.True(t, ok)
	assert.Equal(t, "6 Months", milestone.Title)
	assert.Equal(t, timex.Breakdown{Days: 1}, left)
}

func TestSeedMilestones(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	require.NoError(t, s.SeedMilestones(ctx))
	require.NoError(t, s.Milestones.Await(ctx))
	assert.Equal(t, 6, s.milestoneRemote.creates)
	assert.Len(t, s.Milestones.Snapshot(), 6)

	// A non-empty collection is left alone.
	require.NoError(t, s.SeedMilestones(ctx))
	require.NoError(t, s.Milestones.Await(ctx))
	assert.Equal(t, 6, s.milestoneRemote.creates)
}

func TestUploadAttachment_RejectsUnknownMedia(t *testing.T) {
	s := newTestService(t)

	_, err := s.UploadAttachment(context.Background(), "notes.txt", false)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestMirror_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestService(t)

	s.Bucket.Replace([]model.BucketItem{{ID: "b1", Text: "Visit Paris"}})
	s.Memories.Replace([]model.Memory{{
		ID: "m1", Title: "Beach day", Date: model.MustDate("2025-08-10"),
		Attachments: []model.Attachment{{ID: "a1", MemoryID: "m1", Path: "media/memories/1-x.jpg", Type: model.AttachmentImage}},
	}})
	s.Milestones.Replace([]model.Milestone{{ID: "s1", Title: "First Day", Date: model.MustDate("2025-07-01")}})
	require.NoError(t, s.saveMirror(ctx))

	fresh := newTestService(t)
	fresh.Service.mirror = s.Service.mirror
	require.NoError(t, fresh.LoadMirror(ctx))

	assert.Len(t, fresh.Bucket.Snapshot(), 1)
	assert.Len(t, fresh.Milestones.Snapshot(), 1)

	memories := fresh.Memories.Snapshot()
	require.Len(t, memories, 1)
	require.Len(t, memories[0].Attachments, 1)
	assert.Equal(t, "media/memories/1-x.jpg", memories[0].Attachments[0].Path)
}
