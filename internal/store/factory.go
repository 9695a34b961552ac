package store

import (
	"context"

	"github.com/lucaprinsss/Participium-sub003/core/db"
)

// TxRunner runs fn in a transaction. *db.DB implements it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(q db.Querier) error) error
}

type Stores struct {
	queries db.Querier
	tx      TxRunner
}

func NewStores(queries db.Querier, tx TxRunner) *Stores {
	return &Stores{queries: queries, tx: tx}
}

func (s *Stores) Accounts() AccountStore {
	return newAccountStore(s.queries, s.tx)
}
