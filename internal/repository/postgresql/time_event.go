package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type timeEventRepositoryImpl struct {
	db *database.DB
}

func NewTimeEventRepository(db *database.DB) timesheet.TimeEventRepository {
	return &timeEventRepositoryImpl{db: db}
}

// Create implements timesheet.TimeEventRepository. Media rows are written with the event.
func (t *timeEventRepositoryImpl) Create(ctx context.Context, ev *timesheet.TimeEvent) error {
	q := GetQuerier(ctx, t.db)

	query := `
		INSERT INTO time_events (id, employee_id, ts, kind, remarks, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := q.Exec(ctx, query, ev.ID, ev.EmployeeID, ev.Timestamp, string(ev.Kind), ev.Remarks, ev.CreatedAt); err != nil {
		return fmt.Errorf("failed to create time event: %w", err)
	}

	for _, m := range ev.Media {
		_, err := q.Exec(ctx,
			`INSERT INTO time_event_media (event_id, file_name, mime_type, url) VALUES ($1, $2, $3, $4)`,
			ev.ID, m.FileName, m.MimeType, m.URL)
		if err != nil {
			return fmt.Errorf("failed to attach media to time event: %w", err)
		}
	}
	return nil
}

// ListByEmployee implements timesheet.TimeEventRepository.
func (t *timeEventRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]timesheet.TimeEvent, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT id, employee_id, ts, kind, remarks, created_at
		FROM time_events
		WHERE employee_id = $1 AND ts >= $2 AND ts < $3
		ORDER BY ts, id
	`

	rows, err := q.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query time events: %w", err)
	}
	defer rows.Close()

	var events []timesheet.TimeEvent
	index := make(map[string]int)
	for rows.Next() {
		ev, err := scanTimeEvent(rows)
		if err != nil {
			return nil, err
		}
		index[ev.ID] = len(events)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return events, nil
	}

	ids := make([]string, len(events))
	for i, ev := range events {
		ids[i] = ev.ID
	}

	mediaRows, err := q.Query(ctx,
		`SELECT event_id, file_name, mime_type, url FROM time_event_media WHERE event_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to query time event media: %w", err)
	}
	defer mediaRows.Close()

	for mediaRows.Next() {
		var eventID string
		var m timesheet.MediaRef
		if err := mediaRows.Scan(&eventID, &m.FileName, &m.MimeType, &m.URL); err != nil {
			return nil, fmt.Errorf("failed to scan time event media: %w", err)
		}
		if i, ok := index[eventID]; ok {
			events[i].Media = append(events[i].Media, m)
		}
	}
	return events, mediaRows.Err()
}

// Latest implements timesheet.TimeEventRepository. pgx.ErrNoRows means the employee never punched.
func (t *timeEventRepositoryImpl) Latest(ctx context.Context, employeeID string) (*timesheet.TimeEvent, error) {
	q := GetQuerier(ctx, t.db)

	query := `
		SELECT id, employee_id, ts, kind, remarks, created_at
		FROM time_events
		WHERE employee_id = $1
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`

	ev, err := scanTimeEvent(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get latest time event: %w", err)
	}
	return &ev, nil
}

// LockEmployee implements timesheet.TimeEventRepository with a transaction-scoped advisory lock.
// Outside a transaction the lock is released as soon as the statement returns.
func (t *timeEventRepositoryImpl) LockEmployee(ctx context.Context, employeeID string) error {
	q := GetQuerier(ctx, t.db)

	if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, employeeID); err != nil {
		return fmt.Errorf("failed to lock time events: %w", err)
	}
	return nil
}

func scanTimeEvent(row rowScanner) (timesheet.TimeEvent, error) {
	var ev timesheet.TimeEvent
	var kind string
	if err := row.Scan(&ev.ID, &ev.EmployeeID, &ev.Timestamp, &kind, &ev.Remarks, &ev.CreatedAt); err != nil {
		return ev, err
	}
	ev.Kind = timesheet.EventKind(kind)
	ev.Timestamp = ev.Timestamp.UTC()
	return ev, nil
}
