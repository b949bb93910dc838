// Package archive keeps JSON copies of deleted rows in a single envelope
// table instead of one shadow table per entity.
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

type Entry struct {
	Seq        int64  `json:"seq"`
	SiteID     string `json:"site_id"`
	EntityType string `json:"entity_type"` // e.g. "test", "result"
	EntityKey  string `json:"entity_key"`
	Payload    string `json:"payload"`
	DeletedBy  string `json:"deleted_by"`
	DeletedAt  int64  `json:"deleted_at"`
}

type Repo struct {
	db     *sql.DB
	siteID string
}

func NewRepo(db *sql.DB, siteID string) *Repo {
	if siteID == "" {
		siteID = "local"
	}
	return &Repo{db: db, siteID: siteID}
}

// Keep serializes the entity and appends an envelope row.
func (r *Repo) Keep(ctx context.Context, entityType, entityKey string, entity any, deletedBy string) error {
	payload, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO archive (site_id, entity_type, entity_key, payload, deleted_by, deleted_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		r.siteID, entityType, entityKey, string(payload), deletedBy, time.Now().Unix())
	return err
}

// List returns envelopes for one entity type, newest first.
func (r *Repo) List(ctx context.Context, entityType string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq, site_id, entity_type, entity_key, payload, deleted_by, deleted_at
		 FROM archive WHERE entity_type=$1 ORDER BY seq DESC LIMIT $2`,
		entityType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Seq, &e.SiteID, &e.EntityType, &e.EntityKey, &e.Payload, &e.DeletedBy, &e.DeletedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
