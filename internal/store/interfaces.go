package store

import (
	"context"
	"errors"

	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// Link code failures. They carry user-facing meaning, so callers map them to
// guidance rather than a generic error.
var (
	ErrInvalidCode = errors.New("invalid link code")
	ErrCodeExpired = errors.New("link code expired")
	ErrCodeUsed    = errors.New("link code already used")
)

// AccountStore resolves Telegram usernames to Participium accounts and manages
// the link between them.
type AccountStore interface {
	// Lookup matches telegramUsername case-insensitively, without the leading @.
	Lookup(ctx context.Context, telegramUsername string) (*model.Account, error)
	Link(ctx context.Context, telegramUsername, code string) (model.LinkResult, error)
	Unlink(ctx context.Context, telegramUsername string) (model.LinkResult, error)
}
