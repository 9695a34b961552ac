package photo

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
	"github.com/lucaprinsss/Participium-sub003/internal/session"
)

const (
	MinPhotos = 1
	MaxPhotos = 3
)

var (
	ErrLimitReached      = errors.New("maximum number of photos reached")
	ErrUnsupportedFormat = errors.New("unsupported photo format")
	ErrEmpty             = errors.New("photo is empty")
)

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// FileFetcher downloads the bytes behind a chat attachment reference.
type FileFetcher interface {
	FetchFile(ctx context.Context, fileID string) ([]byte, error)
}

// Collector turns chat attachments into inline photos on a draft.
type Collector struct {
	fetcher FileFetcher
}

func NewCollector(fetcher FileFetcher) *Collector {
	return &Collector{fetcher: fetcher}
}

// Collect fetches fileID and appends it to draft. The draft is only touched
// when the photo is accepted; a full draft is rejected before any download.
func (c *Collector) Collect(ctx context.Context, draft *session.ReportDraft, fileID string) error {
	if len(draft.Photos) >= MaxPhotos {
		return ErrLimitReached
	}

	data, err := c.fetcher.FetchFile(ctx, fileID)
	if err != nil {
		return fmt.Errorf("fetching photo %s: %w", fileID, err)
	}

	p, err := Encode(data)
	if err != nil {
		return err
	}

	draft.Photos = append(draft.Photos, p)
	return nil
}

// Encode sniffs data and returns it as a data URI photo.
func Encode(data []byte) (model.Photo, error) {
	if len(data) == 0 {
		return model.Photo{}, ErrEmpty
	}

	mt := mimetype.Detect(data)
	if !mimetype.EqualsAny(mt.String(), allowedTypes...) {
		return model.Photo{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mt.String())
	}

	return model.Photo{
		MediaType: mt.String(),
		DataURI:   "data:" + mt.String() + ";base64," + base64.StdEncoding.EncodeToString(data),
	}, nil
}
