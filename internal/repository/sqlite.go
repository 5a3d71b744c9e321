package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed migrations/001_transform_history.sql
var migration001 string

// timeLayout has fixed-width fractions so stored values sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteTransformRepository stores history in a SQLite file.
type SQLiteTransformRepository struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at dbPath and applies the
// schema.
func OpenSQLite(ctx context.Context, dbPath string) (*SQLiteTransformRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=busy_timeout(5000)&_pragma=journal_mode(wal)", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, migration001); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply migration: %w", err)
	}
	return &SQLiteTransformRepository{db: db}, nil
}

func (r *SQLiteTransformRepository) Save(ctx context.Context, rec *TransformRecord) error {
	if err := rec.validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO transform_history
            (id, session_id, status, color, reference, instruction, image_count,
             result_shape, error_message, started_at, duration_ms)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            status = excluded.status,
            color = excluded.color,
            reference = excluded.reference,
            instruction = excluded.instruction,
            image_count = excluded.image_count,
            result_shape = excluded.result_shape,
            error_message = excluded.error_message,
            duration_ms = excluded.duration_ms
    `,
		rec.ID, rec.SessionID, string(rec.Status), rec.Color, rec.Reference, rec.Instruction,
		rec.ImageCount, rec.ResultShape, rec.ErrorMessage,
		rec.StartedAt.UTC().Format(timeLayout), rec.DurationMS,
	)
	if err != nil {
		return fmt.Errorf("save transform record: %w", err)
	}
	return nil
}

const selectColumns = `SELECT id, session_id, status, color, reference, instruction, image_count,
        result_shape, error_message, started_at, duration_ms FROM transform_history`

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (*TransformRecord, error) {
	var rec TransformRecord
	var status, started string
	if err := row.Scan(&rec.ID, &rec.SessionID, &status, &rec.Color, &rec.Reference, &rec.Instruction,
		&rec.ImageCount, &rec.ResultShape, &rec.ErrorMessage, &started, &rec.DurationMS); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	t, err := time.Parse(timeLayout, started)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	rec.StartedAt = t
	return &rec, nil
}

func (r *SQLiteTransformRepository) Get(ctx context.Context, id string) (*TransformRecord, error) {
	rec, err := scanRecord(r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *SQLiteTransformRepository) ListBySession(ctx context.Context, sessionID string) ([]*TransformRecord, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` WHERE session_id = ? ORDER BY started_at, rowid`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list transform records: %w", err)
	}
	defer rows.Close()

	out := make([]*TransformRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *SQLiteTransformRepository) Close() error {
	return r.db.Close()
}
