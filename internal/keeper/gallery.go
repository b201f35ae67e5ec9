package keeper

import (
	"context"
	"fmt"
)

// GalleryItem is one stored media object with a ready-to-open URL.
type GalleryItem struct {
	Key string
	URL string
}

// Gallery lists every object under the media prefix and resolves a
// signed URL for each.
func (s *Service) Gallery(ctx context.Context) ([]GalleryItem, error) {
	keys, err := s.media.List(ctx, s.cfg.MediaPrefix+"/")
	if err != nil {
		return nil, fmt.Errorf("gallery: %w", err)
	}

	items := make([]GalleryItem, 0, len(keys))
	for _, key := range keys {
		url, err := s.media.SignedURL(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("gallery: %w", err)
		}
		items = append(items, GalleryItem{Key: key, URL: url})
	}
	return items, nil
}

// SignedURL resolves one attachment path to a temporary download URL.
func (s *Service) SignedURL(ctx context.Context, path string) (string, error) {
	return s.media.SignedURL(ctx, path)
}
