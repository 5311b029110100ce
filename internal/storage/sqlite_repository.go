package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Instants are stored with fixed-width fractional seconds so that the
// lexicographic ORDER BY on next_due matches chronological order; with
// RFC3339Nano's trimmed zeros a whole-second value sorts after a fractional
// one in the same second.
const (
	sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z07:00"
	sqliteTimeParse  = time.RFC3339Nano
)

type SQLiteRepository struct {
	db   *sql.DB
	feed *feed
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, feed: newFeed()}, nil
}

// OpenSQLite opens (or creates) the database at path and brings its schema
// up to date.
func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := MigrateUp(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Subscribe(ctx context.Context) <-chan Change {
	return r.feed.subscribe(ctx)
}

func (r *SQLiteRepository) CreateTask(ctx context.Context, in Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO tasks (id, name, description, interval, streak, last_completed, next_due, is_active, category, priority, color, notification_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Name, in.Description, in.Interval, in.Streak,
		nullTime(in.LastCompleted), mustTime(in.NextDue), boolInt(in.IsActive),
		in.Category, in.Priority, in.Color, nullInt32(in.NotificationID),
		mustTime(in.CreatedAt), mustTime(in.UpdatedAt),
	)
	if err != nil {
		return err
	}
	if err := insertSteps(ctx, tx, in.ID, in.Steps); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	stored := in
	r.feed.publish(Change{Type: ChangePut, TaskID: in.ID, Task: &stored})
	return nil
}

func (r *SQLiteRepository) GetTask(ctx context.Context, id string) (Task, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, description, interval, streak, last_completed, next_due, is_active, category, priority, color, notification_id, created_at, updated_at
		FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	steps, err := r.loadSteps(ctx, id)
	if err != nil {
		return Task{}, err
	}
	task.Steps = steps
	return task, nil
}

func (r *SQLiteRepository) UpdateTask(ctx context.Context, in Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE tasks
		SET name = ?, description = ?, interval = ?, streak = ?, last_completed = ?, next_due = ?, is_active = ?, category = ?, priority = ?, color = ?, notification_id = ?, updated_at = ?
		WHERE id = ?`,
		in.Name, in.Description, in.Interval, in.Streak,
		nullTime(in.LastCompleted), mustTime(in.NextDue), boolInt(in.IsActive),
		in.Category, in.Priority, in.Color, nullInt32(in.NotificationID),
		mustTime(in.UpdatedAt), in.ID,
	)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM task_steps WHERE task_id = ?`, in.ID); err != nil {
		return err
	}
	if err := insertSteps(ctx, tx, in.ID, in.Steps); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	stored := in
	r.feed.publish(Change{Type: ChangePut, TaskID: in.ID, Task: &stored})
	return nil
}

func (r *SQLiteRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if err := checkRowsAffected(res); err != nil {
		return err
	}
	r.feed.publish(Change{Type: ChangeDelete, TaskID: id})
	return nil
}

func (r *SQLiteRepository) ListTasks(ctx context.Context, filter TaskListFilter) ([]Task, error) {
	query := `SELECT id, name, description, interval, streak, last_completed, next_due, is_active, category, priority, color, notification_id, created_at, updated_at FROM tasks`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.ActiveOnly {
		clauses = append(clauses, "is_active = 1")
	}
	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY next_due ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Task, 0)
	for rows.Next() {
		task, scanErr := scanTask(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		steps, stepErr := r.loadSteps(ctx, out[i].ID)
		if stepErr != nil {
			return nil, stepErr
		}
		out[i].Steps = steps
	}
	return out, nil
}

func (r *SQLiteRepository) loadSteps(ctx context.Context, taskID string) ([]Step, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, task_id, title, description, is_completed, order_idx
		FROM task_steps WHERE task_id = ? ORDER BY order_idx ASC`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Step, 0)
	for rows.Next() {
		var step Step
		var completed int
		if err := rows.Scan(&step.ID, &step.TaskID, &step.Title, &step.Description, &completed, &step.OrderIdx); err != nil {
			return nil, err
		}
		step.IsCompleted = completed == 1
		out = append(out, step)
	}
	return out, rows.Err()
}

func insertSteps(ctx context.Context, tx *sql.Tx, taskID string, steps []Step) error {
	for _, step := range steps {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO task_steps (id, task_id, title, description, is_completed, order_idx)
			VALUES (?, ?, ?, ?, ?, ?)`,
			step.ID, taskID, step.Title, step.Description, boolInt(step.IsCompleted), step.OrderIdx,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullTime(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.UTC().Format(sqliteTimeFormat)
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeFormat)
}

func nullInt32(v *int32) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}

func parseNullableTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(sqliteTimeParse, v.String)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeParse, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(s scanner) (Task, error) {
	var out Task
	var lastCompleted sql.NullString
	var nextDue string
	var active int
	var notificationID sql.NullInt64
	var created string
	var updated string
	if err := s.Scan(
		&out.ID, &out.Name, &out.Description, &out.Interval, &out.Streak,
		&lastCompleted, &nextDue, &active, &out.Category, &out.Priority, &out.Color,
		&notificationID, &created, &updated,
	); err != nil {
		return Task{}, err
	}
	lastAt, err := parseNullableTime(lastCompleted)
	if err != nil {
		return Task{}, err
	}
	dueAt, err := parseRequiredTime(nextDue)
	if err != nil {
		return Task{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Task{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return Task{}, err
	}
	out.LastCompleted = lastAt
	out.NextDue = dueAt
	out.IsActive = active == 1
	if notificationID.Valid {
		id := int32(notificationID.Int64)
		out.NotificationID = &id
	}
	out.CreatedAt = createdAt
	out.UpdatedAt = updatedAt
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
