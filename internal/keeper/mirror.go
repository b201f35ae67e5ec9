package keeper

import (
	"context"
	"errors"
	"fmt"

	"keepsake/internal/localstore"
	"keepsake/internal/model"
)

// Mirror kinds. Attachments are flattened into their own snapshot
// because the memory record does not serialize its aggregate.
const (
	kindBucket      = "bucket-items"
	kindMemories    = "memories"
	kindMilestones  = "milestones"
	kindAttachments = "attachments"
)

// LoadMirror seeds the stores from the last persisted snapshots so the
// views have data before the first refresh. Missing snapshots are
// fine; any other mirror failure is surfaced.
func (s *Service) LoadMirror(ctx context.Context) error {
	var bucket []model.BucketItem
	if err := s.loadKind(ctx, kindBucket, &bucket); err != nil {
		return err
	}
	s.Bucket.Replace(bucket)

	var milestones []model.Milestone
	if err := s.loadKind(ctx, kindMilestones, &milestones); err != nil {
		return err
	}
	s.Milestones.Replace(milestones)

	var memories []model.Memory
	if err := s.loadKind(ctx, kindMemories, &memories); err != nil {
		return err
	}
	var attachments []model.Attachment
	if err := s.loadKind(ctx, kindAttachments, &attachments); err != nil {
		return err
	}
	byMemory := make(map[string][]model.Attachment)
	for _, a := range attachments {
		byMemory[a.MemoryID] = append(byMemory[a.MemoryID], a)
	}
	for i := range memories {
		memories[i].Attachments = byMemory[memories[i].ID]
	}
	s.Memories.Replace(memories)

	return nil
}

func (s *Service) loadKind(ctx context.Context, kind string, out any) error {
	err := s.mirror.Load(ctx, kind, out)
	if errors.Is(err, localstore.ErrNoSnapshot) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("mirror: %w", err)
	}
	return nil
}

func (s *Service) saveMirror(ctx context.Context) error {
	memories := s.Memories.Snapshot()
	attachments := make([]model.Attachment, 0)
	for _, m := range memories {
		attachments = append(attachments, m.Attachments...)
	}

	saves := map[string]any{
		kindBucket:      s.Bucket.Snapshot(),
		kindMemories:    memories,
		kindMilestones:  s.Milestones.Snapshot(),
		kindAttachments: attachments,
	}
	for kind, records := range saves {
		if err := s.mirror.Save(ctx, kind, records); err != nil {
			return err
		}
	}
	return nil
}
