package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// JournalEntry records one interaction event for offline analysis.
type JournalEntry struct {
	Tick     uint64
	AgentUID uuid.UUID
	Target   string
	X, Z     float64
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Append writes a batch of journal entries in a single transaction. A batch
// is one snapshot interval's worth of interaction events.
func (r *JournalRepo) Append(ctx context.Context, entries []JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		if _, err := tx.Exec(ctx,
			`INSERT INTO interaction_journal (tick, agent_uid, target, x, z)
			 VALUES ($1, $2, $3, $4, $5)`,
			int64(e.Tick), e.AgentUID, e.Target, e.X, e.Z,
		); err != nil {
			return fmt.Errorf("journal insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}
