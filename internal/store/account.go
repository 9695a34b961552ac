package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/lucaprinsss/Participium-sub003/core/db"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

const (
	lookupAccountSQL = `
SELECT id, username, telegram_username, telegram_link_confirmed
FROM users
WHERE lower(telegram_username) = lower($1)`

	lockLinkCodeSQL = `
SELECT user_id, expires_at, used_at
FROM telegram_link_codes
WHERE code = $1
FOR UPDATE`

	confirmLinkSQL = `
UPDATE users
SET telegram_link_confirmed = TRUE
WHERE id = $1 AND lower(telegram_username) = lower($2)`

	markCodeUsedSQL = `
UPDATE telegram_link_codes
SET used_at = $2
WHERE code = $1`

	unlinkSQL = `
UPDATE users
SET telegram_username = NULL, telegram_link_confirmed = FALSE
WHERE lower(telegram_username) = lower($1)`
)

type accountStore struct {
	queries db.Querier
	tx      TxRunner
	now     func() time.Time
}

func newAccountStore(queries db.Querier, tx TxRunner) AccountStore {
	return &accountStore{queries: queries, tx: tx, now: time.Now}
}

func (s *accountStore) Lookup(ctx context.Context, telegramUsername string) (*model.Account, error) {
	var (
		acc      model.Account
		telegram *string
	)
	err := s.queries.QueryRow(ctx, lookupAccountSQL, normalize(telegramUsername)).
		Scan(&acc.UserID, &acc.Username, &telegram, &acc.Confirmed)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("looking up account: %w", err)
	}
	if telegram != nil {
		acc.TelegramUsername = *telegram
	}
	return &acc, nil
}

// Link confirms the account whose Telegram username matches, consuming code.
// Code checks and the confirmation happen in one transaction so a code can
// only ever be used once.
func (s *accountStore) Link(ctx context.Context, telegramUsername, code string) (model.LinkResult, error) {
	var result model.LinkResult
	err := s.tx.WithTx(ctx, func(q db.Querier) error {
		var (
			userID    int64
			expiresAt time.Time
			usedAt    *time.Time
		)
		err := q.QueryRow(ctx, lockLinkCodeSQL, code).Scan(&userID, &expiresAt, &usedAt)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrInvalidCode
			}
			return fmt.Errorf("reading link code: %w", err)
		}

		now := s.now()
		switch {
		case usedAt != nil:
			return ErrCodeUsed
		case now.After(expiresAt):
			return ErrCodeExpired
		}

		tag, err := q.Exec(ctx, confirmLinkSQL, userID, normalize(telegramUsername))
		if err != nil {
			return fmt.Errorf("confirming link: %w", err)
		}
		if tag.RowsAffected() == 0 {
			result = model.LinkResult{
				Success: false,
				Message: "This code belongs to an account with a different Telegram username. Check the username in your Participium profile.",
			}
			return nil
		}

		if _, err := q.Exec(ctx, markCodeUsedSQL, code, now); err != nil {
			return fmt.Errorf("marking link code used: %w", err)
		}
		result = model.LinkResult{Success: true, Message: "Your Telegram account is now linked to Participium."}
		return nil
	})
	if err != nil {
		return model.LinkResult{}, err
	}
	return result, nil
}

func (s *accountStore) Unlink(ctx context.Context, telegramUsername string) (model.LinkResult, error) {
	tag, err := s.queries.Exec(ctx, unlinkSQL, normalize(telegramUsername))
	if err != nil {
		return model.LinkResult{}, fmt.Errorf("unlinking account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.LinkResult{}, ErrNotFound
	}
	return model.LinkResult{Success: true, Message: "Your Telegram account has been unlinked from Participium."}, nil
}

func normalize(username string) string {
	return strings.TrimPrefix(strings.TrimSpace(username), "@")
}
