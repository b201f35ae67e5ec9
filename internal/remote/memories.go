package remote

import (
	"context"
	"net/url"
	"sync"

	"keepsake/internal/model"
)

// MemoryGateway layers attachment fan-out on top of the plain memory
// resource. A memory and its attachments are created together, updates
// reconcile the attachment set, and deletes cascade so no attachment
// row outlives its memory.
type MemoryGateway struct {
	memories    *Resource[model.Memory]
	attachments *Resource[model.Attachment]
}

func NewMemoryGateway(c *Client) *MemoryGateway {
	return &MemoryGateway{
		memories:    NewResource[model.Memory](c, "memories"),
		attachments: NewResource[model.Attachment](c, "attachments"),
	}
}

// List returns all memories with their attachment sets populated.
func (g *MemoryGateway) List(ctx context.Context) ([]model.Memory, error) {
	memories, err := g.memories.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	attachments, err := g.attachments.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	byMemory := make(map[string][]model.Attachment)
	for _, a := range attachments {
		byMemory[a.MemoryID] = append(byMemory[a.MemoryID], a)
	}
	for i := range memories {
		memories[i].Attachments = byMemory[memories[i].ID]
	}
	return memories, nil
}

// Create stores the memory, then its attachments. The returned record
// carries the server-assigned id and the created attachment rows.
func (g *MemoryGateway) Create(ctx context.Context, m model.Memory) (model.Memory, error) {
	if err := m.Validate(); err != nil {
		return model.Memory{}, err
	}

	created, err := g.memories.Create(ctx, m)
	if err != nil {
		return model.Memory{}, err
	}

	synced, err := g.SyncAttachments(ctx, created.ID, m.Attachments)
	if err != nil {
		return model.Memory{}, err
	}
	created.Attachments = synced
	return created, nil
}

// Update merges the memory's fields and reconciles its attachment set
// against the desired one.
func (g *MemoryGateway) Update(ctx context.Context, m model.Memory) (model.Memory, error) {
	if err := m.Validate(); err != nil {
		return model.Memory{}, err
	}

	updated, err := g.memories.Update(ctx, m)
	if err != nil {
		return model.Memory{}, err
	}

	synced, err := g.SyncAttachments(ctx, m.ID, m.Attachments)
	if err != nil {
		return model.Memory{}, err
	}
	updated.Attachments = synced
	return updated, nil
}

// Delete removes the memory's attachments first, then the memory row.
func (g *MemoryGateway) Delete(ctx context.Context, id string) error {
	existing, err := g.listForMemory(ctx, id)
	if err != nil {
		return err
	}

	calls := make([]func() error, 0, len(existing))
	for _, a := range existing {
		calls = append(calls, func() error {
			return g.attachments.Delete(ctx, a.ID)
		})
	}
	if err := parallel(calls); err != nil {
		return err
	}

	return g.memories.Delete(ctx, id)
}

// SyncAttachments reconciles the stored attachment set of one memory
// with the desired set. The diff is by path equality, as sets, so
// reordering attachments never causes a delete+recreate. It returns
// the resulting stored set and is idempotent: syncing the same set
// twice issues zero calls the second time.
func (g *MemoryGateway) SyncAttachments(ctx context.Context, memoryID string, desired []model.Attachment) ([]model.Attachment, error) {
	existing, err := g.listForMemory(ctx, memoryID)
	if err != nil {
		return nil, err
	}

	existingPaths := make(map[string]struct{}, len(existing))
	for _, a := range existing {
		existingPaths[a.Path] = struct{}{}
	}
	desiredPaths := make(map[string]struct{}, len(desired))
	for _, a := range desired {
		desiredPaths[a.Path] = struct{}{}
	}

	var toAdd []model.Attachment
	for _, a := range desired {
		if _, ok := existingPaths[a.Path]; !ok {
			toAdd = append(toAdd, model.Attachment{MemoryID: memoryID, Path: a.Path, Type: a.Type})
		}
	}
	var toRemove []model.Attachment
	for _, a := range existing {
		if _, ok := desiredPaths[a.Path]; !ok {
			toRemove = append(toRemove, a)
		}
	}

	var (
		mu   sync.Mutex
		kept []model.Attachment
	)
	for _, a := range existing {
		if _, ok := desiredPaths[a.Path]; ok {
			kept = append(kept, a)
		}
	}

	calls := make([]func() error, 0, len(toAdd)+len(toRemove))
	for _, a := range toAdd {
		calls = append(calls, func() error {
			created, err := g.attachments.Create(ctx, a)
			if err != nil {
				return err
			}
			mu.Lock()
			kept = append(kept, created)
			mu.Unlock()
			return nil
		})
	}
	for _, a := range toRemove {
		calls = append(calls, func() error {
			return g.attachments.Delete(ctx, a.ID)
		})
	}

	if err := parallel(calls); err != nil {
		return nil, err
	}
	return kept, nil
}

func (g *MemoryGateway) listForMemory(ctx context.Context, memoryID string) ([]model.Attachment, error) {
	return g.attachments.List(ctx, url.Values{"memoryId": {memoryID}})
}

// parallel runs the calls concurrently and returns the first error.
// Every call runs to completion regardless of the others' outcome.
func parallel(calls []func() error) error {
	if len(calls) == 0 {
		return nil
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	for _, call := range calls {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := call(); err != nil {
				mu.Lock()
				if first == nil {
					first = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return first
}
