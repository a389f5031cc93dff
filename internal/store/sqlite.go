package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/ykvlv/regimen-bot/internal/domain"
)

// memoryDSN is a private in-memory database. It lives as long as its single
// connection, so state is lost when the process exits.
const memoryDSN = ":memory:"

// SQLiteRepo implements Repo on top of an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

var _ Repo = (*SQLiteRepo)(nil)

// OpenMemory creates the in-memory database, runs migrations and seeds
// the settings row with defaults.
func OpenMemory(ctx context.Context, defaults domain.Settings) (*SQLiteRepo, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, err
	}

	// One connection: every ":memory:" connection is a separate database,
	// and it also serializes commands against the minute tick.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	r := &SQLiteRepo{db: db}
	if err := r.seed(ctx, defaults); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("seed settings: %w", err)
	}
	return r, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepo) seed(ctx context.Context, s domain.Settings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO settings (
			id, window_start_m, window_end_m, water_goal_ml, water_taken_ml,
			water_start_m, water_end_m, water_every_min, window_pins
		) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Window.StartM, s.Window.EndM, s.Water.GoalML, s.Water.TakenML,
		s.WaterReminder.StartM, s.WaterReminder.EndM, s.WaterReminder.EveryMin,
		boolToInt(s.WindowPins),
	)
	if err != nil {
		return err
	}
	if len(s.Plan) > 0 {
		return r.ReplacePlan(ctx, s.Plan)
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// AddSubscriber inserts a chat; existing chats are left as they are.
func (r *SQLiteRepo) AddSubscriber(ctx context.Context, chatID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO subscribers (chat_id, created_at) VALUES (?, ?)
		ON CONFLICT(chat_id) DO NOTHING`,
		chatID, time.Now().UTC().Unix(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListSubscribers returns all chat IDs in registration order.
func (r *SQLiteRepo) ListSubscribers(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT chat_id FROM subscribers ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Settings reads the settings row and the plan in one transaction.
func (r *SQLiteRepo) Settings(ctx context.Context) (domain.Settings, error) {
	var s domain.Settings

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return s, err
	}
	defer func() { _ = tx.Rollback() }()

	var pins int
	err = tx.QueryRowContext(ctx, `
		SELECT window_start_m, window_end_m, water_goal_ml, water_taken_ml,
		       water_start_m, water_end_m, water_every_min, window_pins
		FROM settings
		WHERE id = 1`,
	).Scan(
		&s.Window.StartM, &s.Window.EndM, &s.Water.GoalML, &s.Water.TakenML,
		&s.WaterReminder.StartM, &s.WaterReminder.EndM, &s.WaterReminder.EveryMin, &pins,
	)
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	s.WindowPins = pins != 0

	rows, err := tx.QueryContext(ctx, `SELECT at_m, text FROM plan_entries ORDER BY position`)
	if err != nil {
		return s, fmt.Errorf("read plan: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.PlanEntry
		if err := rows.Scan(&e.AtM, &e.Text); err != nil {
			return s, err
		}
		s.Plan = append(s.Plan, e)
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	if err := rows.Close(); err != nil {
		return s, err
	}
	return s, tx.Commit()
}

// PlanSize returns the number of plan entries.
func (r *SQLiteRepo) PlanSize(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plan_entries`).Scan(&n)
	return n, err
}

// SetWindow overwrites the feeding window.
func (r *SQLiteRepo) SetWindow(ctx context.Context, w domain.Window) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings
		SET window_start_m = ?, window_end_m = ?
		WHERE id = 1`,
		w.StartM, w.EndM,
	)
	return err
}

// SetWaterGoal overwrites the daily water goal.
func (r *SQLiteRepo) SetWaterGoal(ctx context.Context, goalML int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE settings SET water_goal_ml = ? WHERE id = 1`, goalML)
	return err
}

// AddWater adds ml to the taken counter and returns the updated tracker.
func (r *SQLiteRepo) AddWater(ctx context.Context, ml int) (domain.Water, error) {
	var w domain.Water
	err := r.db.QueryRowContext(ctx, `
		UPDATE settings
		SET water_taken_ml = water_taken_ml + ?
		WHERE id = 1
		RETURNING water_goal_ml, water_taken_ml`,
		ml,
	).Scan(&w.GoalML, &w.TakenML)
	return w, err
}

// ResetWater zeroes the taken counter.
func (r *SQLiteRepo) ResetWater(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `UPDATE settings SET water_taken_ml = 0 WHERE id = 1`)
	return err
}

// SetWaterReminder overwrites the recurring water reminder.
func (r *SQLiteRepo) SetWaterReminder(ctx context.Context, wr domain.WaterReminder) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE settings
		SET water_start_m = ?, water_end_m = ?, water_every_min = ?
		WHERE id = 1`,
		wr.StartM, wr.EndM, wr.EveryMin,
	)
	return err
}

// ReplacePlan swaps the whole plan in a single transaction.
func (r *SQLiteRepo) ReplacePlan(ctx context.Context, entries []domain.PlanEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM plan_entries`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO plan_entries (position, at_m, text) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx, i, e.AtM, e.Text); err != nil {
			return fmt.Errorf("insert plan entry %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// ClearPlan removes every plan entry.
func (r *SQLiteRepo) ClearPlan(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM plan_entries`)
	return err
}

// boolToInt converts a boolean to 1/0 for SQLite.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
