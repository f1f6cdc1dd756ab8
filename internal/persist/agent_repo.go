package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AgentRow is one persisted agent snapshot. Agents are keyed by their
// external UUID; the runtime directory id is not stored because it is
// reassigned on every restart.
type AgentRow struct {
	UID            uuid.UUID
	Name           string
	X, Y, Z        float64
	Heading        float64
	Speed          float64
	Health         float64
	InteractRadius float64
	TreeID         string
	Tick           uint64
}

type AgentRepo struct {
	db *DB
}

func NewAgentRepo(db *DB) *AgentRepo {
	return &AgentRepo{db: db}
}

// SaveAll upserts a full snapshot in one transaction. Agents absent from the
// snapshot are deleted so the table always mirrors the live directory.
func (r *AgentRepo) SaveAll(ctx context.Context, rows []AgentRow) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("snapshot begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `CREATE TEMP TABLE snapshot_uids (uid UUID) ON COMMIT DROP`); err != nil {
		return fmt.Errorf("snapshot temp table: %w", err)
	}

	for _, a := range rows {
		if _, err := tx.Exec(ctx,
			`INSERT INTO agents (uid, name, x, y, z, heading, speed, health, interact_radius, tree_id, tick)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			 ON CONFLICT (uid) DO UPDATE SET
			     name = EXCLUDED.name,
			     x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
			     heading = EXCLUDED.heading,
			     speed = EXCLUDED.speed,
			     health = EXCLUDED.health,
			     interact_radius = EXCLUDED.interact_radius,
			     tree_id = EXCLUDED.tree_id,
			     tick = EXCLUDED.tick`,
			a.UID, a.Name, a.X, a.Y, a.Z, a.Heading, a.Speed, a.Health,
			a.InteractRadius, a.TreeID, int64(a.Tick),
		); err != nil {
			return fmt.Errorf("snapshot upsert %s: %w", a.UID, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO snapshot_uids (uid) VALUES ($1)`, a.UID); err != nil {
			return fmt.Errorf("snapshot mark %s: %w", a.UID, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM agents WHERE uid NOT IN (SELECT uid FROM snapshot_uids)`,
	); err != nil {
		return fmt.Errorf("snapshot prune: %w", err)
	}

	return tx.Commit(ctx)
}

// LoadAll returns every persisted agent, ordered by name for deterministic
// respawn order.
func (r *AgentRepo) LoadAll(ctx context.Context) ([]AgentRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT uid, name, x, y, z, heading, speed, health, interact_radius, tree_id, tick
		 FROM agents
		 ORDER BY name, uid`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AgentRow
	for rows.Next() {
		var a AgentRow
		var tick int64
		if err := rows.Scan(
			&a.UID, &a.Name, &a.X, &a.Y, &a.Z, &a.Heading,
			&a.Speed, &a.Health, &a.InteractRadius, &a.TreeID, &tick,
		); err != nil {
			return nil, err
		}
		a.Tick = uint64(tick)
		result = append(result, a)
	}
	return result, rows.Err()
}
