// Package model defines the three entity kinds the application keeps —
// bucket list items, memories with media attachments, and relationship
// milestones — together with their client-side validation.
//
// All records are collectively owned by the single authenticated couple;
// there is no per-user partitioning.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrValidation marks input rejected before any network call.
var ErrValidation = errors.New("validation error")

// AttachmentType classifies a stored media file.
type AttachmentType string

const (
	AttachmentImage AttachmentType = "IMAGE"
	AttachmentVideo AttachmentType = "VIDEO"
	AttachmentAudio AttachmentType = "AUDIO"
)

func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentImage, AttachmentVideo, AttachmentAudio:
		return true
	}
	return false
}

// Milestone categories. Exactly one milestone should carry
// CategoryRelationshipStart; it anchors the elapsed-time counter. This
// is a convention, not a schema constraint.
const (
	CategoryRelationshipStart = "relationship_start"
	CategoryAnniversary       = "anniversary"
	CategoryOther             = "other"
)

// BucketItem is one entry of the shared bucket list.
type BucketItem struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`

	// Order sequences the list manually. Values need not be contiguous;
	// only relative order matters. Nil means "never manually ordered".
	Order *int `json:"order,omitempty"`
}

func (b BucketItem) Key() string { return b.ID }

func (b BucketItem) Validate() error {
	if strings.TrimSpace(b.Text) == "" {
		return fmt.Errorf("%w: bucket item text is required", ErrValidation)
	}
	return nil
}

// Attachment is a stored media file associated with one Memory.
type Attachment struct {
	ID       string         `json:"id"`
	MemoryID string         `json:"memoryId"`
	Path     string         `json:"path"`
	Type     AttachmentType `json:"type"`
}

func (a Attachment) Key() string { return a.ID }

func (a Attachment) Validate() error {
	if strings.TrimSpace(a.Path) == "" {
		return fmt.Errorf("%w: attachment path is required", ErrValidation)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown attachment type %q", ErrValidation, a.Type)
	}
	return nil
}

// Memory is one shared memory on the timeline. Its attachments are
// exactly the Attachment records whose MemoryID equals its ID; the
// gateway reconciles that set on every update.
type Memory struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Date        Date      `json:"date"`
	Cost        float64   `json:"cost,omitempty"`
	Location    string    `json:"location,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`

	// Attachments is the client-side aggregate; it is synced as a set,
	// never sent as part of the memory record itself.
	Attachments []Attachment `json:"-"`
}

func (m Memory) Key() string { return m.ID }

func (m Memory) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: memory title is required", ErrValidation)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("%w: memory date is required", ErrValidation)
	}
	if m.Cost < 0 {
		return fmt.Errorf("%w: memory cost must not be negative", ErrValidation)
	}
	for _, a := range m.Attachments {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Milestone is one marker on the relationship timeline.
type Milestone struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      Date      `json:"date"`
	Icon      string    `json:"icon,omitempty"`
	IsReached bool      `json:"isReached"`
	Order     int       `json:"order"`
	Category  string    `json:"category,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

func (m Milestone) Key() string { return m.ID }

func (m Milestone) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: milestone title is required", ErrValidation)
	}
	if m.Date.IsZero() {
		return fmt.Errorf("%w: milestone date is required", ErrValidation)
	}
	return nil
}
