package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/betterpursue/sproom/internal/adapters/storage"
	"github.com/betterpursue/sproom/internal/domain/activity"
	"github.com/betterpursue/sproom/internal/domain/registration"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// SaveSnapshot replaces the cached lists inside one transaction.
// POST: Tables hold exactly the given rows; snapshot_meta records the save time
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, activities []activity.Activity, mine []registration.Registration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM activity`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM registration`); err != nil {
		return err
	}

	for _, act := range activities {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO activity (id, name, description, location, image_url, type, start_time, end_time,
			   max_participants, current_participants, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			act.ID, act.Name, act.Description, act.Location, act.ImageURL, act.Type,
			act.StartTime.Format(timeLayout), act.EndTime.Format(timeLayout),
			nullableInt(act.MaxParticipants), act.CurrentParticipants, act.Status); err != nil {
			return fmt.Errorf("failed to insert activity %d: %w", act.ID, err)
		}
	}

	for _, reg := range mine {
		activityID, _ := reg.ResolveActivityID()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO registration (id, user_id, activity_id, status, notes, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			reg.ID, reg.UserID, activityID, reg.Status, reg.Notes,
			reg.CreatedAt.Format(timeLayout), nullableTime(reg.UpdatedAt)); err != nil {
			return fmt.Errorf("failed to insert registration %d: %w", reg.ID, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, refreshed_at) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET refreshed_at=excluded.refreshed_at`,
		time.Now().UTC().Format(timeLayout)); err != nil {
		return err
	}

	return tx.Commit()
}

// Load reads the cached snapshot. An empty cache returns zero-value Cached
// with no error.
func (s *SQLiteStore) Load(ctx context.Context) (Cached, error) {
	var cached Cached

	var refreshedAt string
	err := s.db.QueryRowContext(ctx, `SELECT refreshed_at FROM snapshot_meta WHERE id = 1`).Scan(&refreshedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return cached, nil
	case err != nil:
		return cached, err
	}
	if t, parseErr := time.Parse(timeLayout, refreshedAt); parseErr == nil {
		cached.RefreshedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description, location, image_url, type, start_time, end_time,
		   max_participants, current_participants, status
		 FROM activity ORDER BY start_time`)
	if err != nil {
		return cached, err
	}
	defer rows.Close()
	for rows.Next() {
		act, scanErr := scanActivity(rows)
		if scanErr != nil {
			return cached, scanErr
		}
		cached.Activities = append(cached.Activities, act)
	}
	if err := rows.Err(); err != nil {
		return cached, err
	}

	regRows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, activity_id, status, notes, created_at, updated_at
		 FROM registration ORDER BY created_at DESC`)
	if err != nil {
		return cached, err
	}
	defer regRows.Close()
	for regRows.Next() {
		reg, scanErr := scanRegistration(regRows)
		if scanErr != nil {
			return cached, scanErr
		}
		cached.MyRegistrations = append(cached.MyRegistrations, reg)
	}
	return cached, regRows.Err()
}

func scanActivity(rows *sql.Rows) (activity.Activity, error) {
	var (
		act        activity.Activity
		start, end string
		maxPart    sql.NullInt64
	)
	if err := rows.Scan(&act.ID, &act.Name, &act.Description, &act.Location, &act.ImageURL,
		&act.Type, &start, &end, &maxPart, &act.CurrentParticipants, &act.Status); err != nil {
		return activity.Activity{}, err
	}
	act.StartTime, _ = time.Parse(timeLayout, start)
	act.EndTime, _ = time.Parse(timeLayout, end)
	if maxPart.Valid {
		v := int(maxPart.Int64)
		act.MaxParticipants = &v
	}
	return act, nil
}

func scanRegistration(rows *sql.Rows) (registration.Registration, error) {
	var (
		reg     registration.Registration
		created string
		updated sql.NullString
	)
	if err := rows.Scan(&reg.ID, &reg.UserID, &reg.ActivityID, &reg.Status, &reg.Notes,
		&created, &updated); err != nil {
		return registration.Registration{}, err
	}
	reg.CreatedAt, _ = time.Parse(timeLayout, created)
	if updated.Valid {
		if t, err := time.Parse(timeLayout, updated.String); err == nil {
			reg.UpdatedAt = t
		}
	}
	return reg, nil
}

func nullableInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(timeLayout)
}
