package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mainakxbuilds/makXsensi-frontend/internal/domain"
)

var ErrNotFound = errors.New("not found")

type SQLiteRepo struct {
	db *sql.DB
}

func NewSQLiteRepo(dsn string) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	db.Exec("PRAGMA journal_mode = WAL;")
	db.Exec("PRAGMA busy_timeout = 5000;")

	r := &SQLiteRepo{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return r, nil
}

func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepo) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS checkout_attempts(
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			attempt_id TEXT NOT NULL UNIQUE,
			pack_name TEXT NOT NULL,
			amount_minor INTEGER NOT NULL,
			currency TEXT NOT NULL DEFAULT '',
			gateway_order_id TEXT NOT NULL DEFAULT '',
			order_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			message TEXT NOT NULL DEFAULT '',
			started_at TEXT NOT NULL,
			finished_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_attempts_pack ON checkout_attempts(pack_name);
		CREATE INDEX IF NOT EXISTS idx_attempts_status ON checkout_attempts(status);
		CREATE INDEX IF NOT EXISTS idx_attempts_gateway_order ON checkout_attempts(gateway_order_id);
	`
	_, err := r.db.Exec(schema)
	return err
}

func (r *SQLiteRepo) Begin(ctx context.Context, a *domain.Attempt) error {
	q := `
		INSERT INTO checkout_attempts(
			attempt_id,
			pack_name,
			amount_minor,
			currency,
			status,
			started_at
		)
		VALUES(?, ?, ?, ?, ?, ?);
	`

	_, err := r.db.ExecContext(
		ctx, q,
		a.ID,
		a.PackName,
		a.AmountMinor,
		a.Currency,
		string(a.Status),
		a.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// Advance moves a still-open attempt to a non-terminal status.
func (r *SQLiteRepo) Advance(ctx context.Context, id string, status domain.AttemptStatus, gatewayOrderID string) error {
	if status.Terminal() {
		return fmt.Errorf("advance to terminal status %s", status)
	}
	q := `
		UPDATE checkout_attempts
		SET status = ?, gateway_order_id = COALESCE(NULLIF(?, ''), gateway_order_id)
		WHERE attempt_id = ? AND status IN (?, ?)
	`
	return r.update(ctx, q, string(status), gatewayOrderID, id,
		string(domain.AttemptStarted), string(domain.AttemptWidgetOpen))
}

// Finish records the terminal outcome. An attempt that already finished is
// left untouched.
func (r *SQLiteRepo) Finish(ctx context.Context, id string, status domain.AttemptStatus, orderID, message string) error {
	q := `
		UPDATE checkout_attempts
		SET status = ?, order_id = ?, message = ?, finished_at = ?
		WHERE attempt_id = ? AND status IN (?, ?)
	`
	return r.update(ctx, q, string(status), orderID, message, time.Now().UTC().Format(time.RFC3339Nano), id,
		string(domain.AttemptStarted), string(domain.AttemptWidgetOpen))
}

func (r *SQLiteRepo) update(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}

	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound
	}

	return nil
}

const attemptColumns = `
	attempt_id,
	pack_name,
	amount_minor,
	currency,
	gateway_order_id,
	order_id,
	status,
	message,
	started_at,
	finished_at
`

func (r *SQLiteRepo) GetAttempt(ctx context.Context, id string) (*domain.Attempt, error) {
	q := `SELECT ` + attemptColumns + ` FROM checkout_attempts WHERE attempt_id = ?`

	row := r.db.QueryRowContext(ctx, q, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return a, err
}

type AttemptFilter struct {
	PackName       string
	GatewayOrderID string
	Status         domain.AttemptStatus
}

func (r *SQLiteRepo) ListAttempts(ctx context.Context, f AttemptFilter, limit, offset int) ([]domain.Attempt, error) {
	q := `SELECT ` + attemptColumns + ` FROM checkout_attempts WHERE 1 = 1`
	args := []any{}

	if f.PackName != "" {
		q += " AND pack_name = ?"
		args = append(args, f.PackName)
	}

	if f.GatewayOrderID != "" {
		q += " AND gateway_order_id = ?"
		args = append(args, f.GatewayOrderID)
	}

	if f.Status != "" {
		q += " AND status = ?"
		args = append(args, string(f.Status))
	}

	q += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res := []domain.Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}

		res = append(res, *a)
	}

	return res, rows.Err()
}

func scanAttempt(scanner interface {
	Scan(dest ...any) error
}) (*domain.Attempt, error) {
	var a domain.Attempt
	var status string
	var startedStr string
	var finishedStr *string

	if err := scanner.Scan(
		&a.ID,
		&a.PackName,
		&a.AmountMinor,
		&a.Currency,
		&a.GatewayOrderID,
		&a.OrderID,
		&status,
		&a.Message,
		&startedStr,
		&finishedStr,
	); err != nil {
		return nil, err
	}

	a.Status = domain.AttemptStatus(status)

	started, err := time.Parse(time.RFC3339Nano, startedStr)
	if err != nil {
		return nil, fmt.Errorf("parse started time: %w", err)
	}

	a.StartedAt = started
	if finishedStr != nil {
		fin, err := time.Parse(time.RFC3339Nano, *finishedStr)
		if err != nil {
			return nil, fmt.Errorf("parse finished time: %w", err)
		}

		a.FinishedAt = &fin
	}

	return &a, nil
}
