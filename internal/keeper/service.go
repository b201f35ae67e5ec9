// Package keeper wires the gateways and collection stores together and
// exposes the domain operations the views bind to: the timeline, the
// relationship counters, milestone seeding, the gallery, and media
// uploads.
package keeper

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path"
	"time"

	"keepsake/internal/authgate"
	"keepsake/internal/blob"
	"keepsake/internal/cache"
	"keepsake/internal/config"
	"keepsake/internal/localstore"
	"keepsake/internal/logging"
	"keepsake/internal/model"
	"keepsake/internal/remote"
)

// Service owns one store per entity collection plus the auth gate and
// the side gateways. All mutations go through the stores so every view
// sees the same optimistic state.
type Service struct {
	cfg  *config.Config
	log  logging.Logger
	gate *authgate.Gate

	media  *blob.Store
	mirror *localstore.Store

	Bucket     *cache.Store[model.BucketItem]
	Memories   *cache.Store[model.Memory]
	Milestones *cache.Store[model.Milestone]

	memories  *remote.MemoryGateway
	bucketAPI resourceRemote[model.BucketItem]
	mstoneAPI resourceRemote[model.Milestone]
}

// resourceRemote narrows a filterable entity resource down to the
// collection-wide surface the stores dispatch to.
type resourceRemote[T remote.Record] struct {
	r *remote.Resource[T]
}

func (a resourceRemote[T]) List(ctx context.Context) ([]T, error) { return a.r.List(ctx, nil) }
func (a resourceRemote[T]) Create(ctx context.Context, rec T) (T, error) {
	return a.r.Create(ctx, rec)
}
func (a resourceRemote[T]) Update(ctx context.Context, rec T) (T, error) {
	return a.r.Update(ctx, rec)
}
func (a resourceRemote[T]) Delete(ctx context.Context, id string) error { return a.r.Delete(ctx, id) }

// New builds the full service graph from configuration. The local
// mirror and the object store are required; the backend is only
// contacted once Refresh or a mutation runs.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*Service, error) {
	gate := authgate.New(authgate.Options{
		Secret:         cfg.Secret,
		SecretVerifier: cfg.SecretVerifier,
		SessionKey:     []byte(cfg.SessionKey),
		SessionTTL:     cfg.SessionTTL,
	})

	media, err := blob.New(ctx, blob.Options{
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		BaseEndpoint: cfg.S3Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("object store: %w", err)
	}

	mirror, err := localstore.Open(ctx, cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("local mirror: %w", err)
	}

	client := remote.NewClient(cfg.APIBaseURL, gate.Token)
	memories := remote.NewMemoryGateway(client)

	s := &Service{
		cfg:       cfg,
		log:       log,
		gate:      gate,
		media:     media,
		mirror:    mirror,
		memories:  memories,
		bucketAPI: resourceRemote[model.BucketItem]{remote.NewResource[model.BucketItem](client, "bucket-items")},
		mstoneAPI: resourceRemote[model.Milestone]{remote.NewResource[model.Milestone](client, "milestones")},
	}

	s.Bucket = cache.New(cache.Config[model.BucketItem]{
		Name:           "bucket-items",
		Key:            model.BucketItem.Key,
		WithKey:        func(b model.BucketItem, id string) model.BucketItem { b.ID = id; return b },
		Less:           model.LessBucketItems,
		OrderOf:        func(b model.BucketItem) (int, bool) { return orderOf(b.Order) },
		WithOrder:      func(b model.BucketItem, o int) model.BucketItem { b.Order = &o; return b },
		NotFoundIsNoOp: isNotFound,
		Remote:         s.bucketAPI,
		Logger:         log,
	})
	s.Memories = cache.New(cache.Config[model.Memory]{
		Name:           "memories",
		Key:            model.Memory.Key,
		WithKey:        func(m model.Memory, id string) model.Memory { m.ID = id; return m },
		Less:           model.LessMemories,
		NotFoundIsNoOp: isNotFound,
		Remote:         memories,
		Logger:         log,
	})
	s.Milestones = cache.New(cache.Config[model.Milestone]{
		Name:           "milestones",
		Key:            model.Milestone.Key,
		WithKey:        func(m model.Milestone, id string) model.Milestone { m.ID = id; return m },
		Less:           model.LessMilestones,
		NotFoundIsNoOp: isNotFound,
		Remote:         s.mstoneAPI,
		Logger:         log,
	})

	return s, nil
}

func isNotFound(err error) bool { return errors.Is(err, remote.ErrNotFound) }

func orderOf(p *int) (int, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

// Unlock checks the shared secret against the gate.
func (s *Service) Unlock(secret string) error {
	_, err := s.gate.Unlock(secret)
	return err
}

// Unlocked reports whether a valid session exists.
func (s *Service) Unlocked() bool { return s.gate.Unlocked() }

// Lock ends the session.
func (s *Service) Lock() { s.gate.Lock() }

// Refresh fetches all three collections from the backend and persists
// the fresh snapshots to the local mirror.
func (s *Service) Refresh(ctx context.Context) error {
	for _, load := range []func(context.Context) error{
		s.Bucket.Load,
		s.Memories.Load,
		s.Milestones.Load,
	} {
		if err := load(ctx); err != nil {
			return err
		}
	}
	if err := s.saveMirror(ctx); err != nil {
		s.log.Warn(ctx, "mirror save failed", "error", err)
	}
	return nil
}

// Watch starts one live poller per collection, pushing every fresh
// server snapshot into its store. It returns once ctx is canceled.
func (s *Service) Watch(ctx context.Context) {
	done := make(chan struct{}, 3)

	go func() {
		remote.NewWatcher(s.bucketAPI.List, s.cfg.WatchInterval, s.log).Run(ctx, s.Bucket.Replace)
		done <- struct{}{}
	}()
	go func() {
		remote.NewWatcher(s.memories.List, s.cfg.WatchInterval, s.log).Run(ctx, s.Memories.Replace)
		done <- struct{}{}
	}()
	go func() {
		remote.NewWatcher(s.mstoneAPI.List, s.cfg.WatchInterval, s.log).Run(ctx, s.Milestones.Replace)
		done <- struct{}{}
	}()

	for range 3 {
		<-done
	}
}

// SeedMilestones bulk-creates the default milestone list when the
// collection is empty. A non-empty collection is left alone.
func (s *Service) SeedMilestones(ctx context.Context) error {
	if len(s.Milestones.Snapshot()) > 0 {
		return nil
	}
	for _, m := range model.DefaultMilestones() {
		if _, err := s.Milestones.Create(ctx, m); err != nil {
			return fmt.Errorf("seed milestones: %w", err)
		}
	}
	return nil
}

// UploadAttachment reads a local file, stores it under the media
// prefix, and returns the attachment record to include in a memory's
// desired set. With retry set, transient upload failures back off for
// up to a minute before giving up.
func (s *Service) UploadAttachment(ctx context.Context, filename string, retry bool) (model.Attachment, error) {
	kind, ok := blob.TypeForFile(filename)
	if !ok {
		return model.Attachment{}, fmt.Errorf("%w: unsupported media file %q", model.ErrValidation, filename)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return model.Attachment{}, fmt.Errorf("read media file: %w", err)
	}

	key := blob.ObjectPath(s.cfg.MediaPrefix, filename, time.Now())
	contentType := mime.TypeByExtension(path.Ext(filename))
	if retry {
		err = s.media.UploadWithRetry(ctx, key, data, contentType, time.Minute)
	} else {
		err = s.media.Upload(ctx, key, data, contentType)
	}
	if err != nil {
		return model.Attachment{}, err
	}

	return model.Attachment{Path: key, Type: kind}, nil
}

// Await blocks until every store has no mutation in flight.
func (s *Service) Await(ctx context.Context) error {
	if err := s.Bucket.Await(ctx); err != nil {
		return err
	}
	if err := s.Memories.Await(ctx); err != nil {
		return err
	}
	return s.Milestones.Await(ctx)
}

// Close waits out in-flight mutations, saves the mirror, and shuts the
// stores down so late confirmations cannot resurface.
func (s *Service) Close(ctx context.Context) error {
	if err := s.Await(ctx); err != nil {
		s.log.Warn(ctx, "close: pending mutations abandoned", "error", err)
	}
	if err := s.saveMirror(ctx); err != nil {
		s.log.Warn(ctx, "close: mirror save failed", "error", err)
	}
	s.Bucket.Close()
	s.Memories.Close()
	s.Milestones.Close()
	return s.mirror.Close()
}
