package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when resolving an incident the journal never saw.
var ErrNotFound = errors.New("incident not found")

// Database is the incident journal. It only records history; nothing in the
// moderation path reads it back.
type Database struct {
	db *sql.DB
}

func Open(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// one writer; SQLite serialises writes anyway
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA synchronous=NORMAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	d := &Database{db: db}
	if err := d.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return d, nil
}

func (d *Database) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *Database) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS incidents (
		id TEXT PRIMARY KEY,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		message_id TEXT NOT NULL,
		action TEXT NOT NULL,
		status TEXT NOT NULL,
		outcome TEXT NOT NULL DEFAULT '',
		evidence INTEGER NOT NULL DEFAULT 0,
		erased INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		resolved_by TEXT NOT NULL DEFAULT '',
		resolved_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_incidents_guild_created ON incidents(guild_id, created_at);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordIncident inserts a new incident.
func (d *Database) RecordIncident(ctx context.Context, rec *IncidentRecord) error {
	var resolvedAt int64
	if !rec.ResolvedAt.IsZero() {
		resolvedAt = rec.ResolvedAt.UnixMilli()
	}

	_, err := d.db.ExecContext(ctx,
		`INSERT INTO incidents (id, guild_id, user_id, channel_id, message_id, action, status, outcome, evidence, erased, created_at, resolved_by, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.GuildID, rec.UserID, rec.ChannelID, rec.MessageID, rec.Action, rec.Status,
		rec.Outcome, rec.Evidence, rec.Erased, rec.CreatedAt.UnixMilli(), rec.ResolvedBy, resolvedAt,
	)
	if err != nil {
		return fmt.Errorf("record incident %s: %w", rec.ID, err)
	}
	return nil
}

// ResolveIncident stores the moderator decision on a proposed incident.
func (d *Database) ResolveIncident(ctx context.Context, id, status, resolvedBy, outcome string, erased int, at time.Time) error {
	res, err := d.db.ExecContext(ctx,
		`UPDATE incidents SET status = ?, resolved_by = ?, outcome = ?, erased = ?, resolved_at = ? WHERE id = ?`,
		status, resolvedBy, outcome, erased, at.UnixMilli(), id,
	)
	if err != nil {
		return fmt.Errorf("resolve incident %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("resolve incident %s: %w", id, ErrNotFound)
	}
	return nil
}

// RecentIncidents returns the newest incidents of a guild, newest first.
func (d *Database) RecentIncidents(ctx context.Context, guildID string, limit int) ([]*IncidentRecord, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, guild_id, user_id, channel_id, message_id, action, status, outcome, evidence, erased, created_at, resolved_by, resolved_at
		 FROM incidents WHERE guild_id = ? ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		guildID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*IncidentRecord
	for rows.Next() {
		var rec IncidentRecord
		var createdAt, resolvedAt int64
		if err := rows.Scan(&rec.ID, &rec.GuildID, &rec.UserID, &rec.ChannelID, &rec.MessageID, &rec.Action,
			&rec.Status, &rec.Outcome, &rec.Evidence, &rec.Erased, &createdAt, &rec.ResolvedBy, &resolvedAt); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.UnixMilli(createdAt)
		if resolvedAt != 0 {
			rec.ResolvedAt = time.UnixMilli(resolvedAt)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
