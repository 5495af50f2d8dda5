package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/schedule"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type scheduleRepositoryImpl struct {
	db *database.DB
}

func NewScheduleRepository(db *database.DB) schedule.ScheduleRepository {
	return &scheduleRepositoryImpl{db: db}
}

// Create implements schedule.ScheduleRepository. Windows are inserted in the same batch.
func (s *scheduleRepositoryImpl) Create(ctx context.Context, sched *schedule.Schedule) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO schedules (id, name, timezone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := q.Exec(ctx, query, sched.ID, sched.Name, sched.Timezone, sched.CreatedAt, sched.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}

	for _, w := range sched.OrderedWindows() {
		if err := s.UpsertWindow(ctx, sched.ID, w); err != nil {
			return err
		}
	}
	return nil
}

// GetByID implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) GetByID(ctx context.Context, id string) (*schedule.Schedule, error) {
	query := `SELECT id, name, timezone, created_at, updated_at FROM schedules WHERE id = $1`
	return s.load(ctx, query, id)
}

// GetByEmployeeID implements schedule.ScheduleRepository. An employee without a schedule yields pgx.ErrNoRows.
func (s *scheduleRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (*schedule.Schedule, error) {
	query := `
		SELECT s.id, s.name, s.timezone, s.created_at, s.updated_at
		FROM employees e
		JOIN schedules s ON s.id = e.schedule_id
		WHERE e.id = $1
	`
	return s.load(ctx, query, employeeID)
}

func (s *scheduleRepositoryImpl) load(ctx context.Context, query string, arg string) (*schedule.Schedule, error) {
	q := GetQuerier(ctx, s.db)

	var sched schedule.Schedule
	err := q.QueryRow(ctx, query, arg).Scan(&sched.ID, &sched.Name, &sched.Timezone, &sched.CreatedAt, &sched.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}

	windows, err := s.windows(ctx, q, sched.ID)
	if err != nil {
		return nil, err
	}
	sched.Windows = windows
	return &sched, nil
}

func (s *scheduleRepositoryImpl) windows(ctx context.Context, q database.Querier, scheduleID string) (map[schedule.DayOfWeek]schedule.WorkWindow, error) {
	query := `
		SELECT weekday, from_minute, to_minute, break_from, break_to
		FROM work_windows
		WHERE schedule_id = $1
		ORDER BY weekday
	`

	rows, err := q.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query work windows: %w", err)
	}
	defer rows.Close()

	windows := make(map[schedule.DayOfWeek]schedule.WorkWindow)
	for rows.Next() {
		var day, from, to, breakFrom, breakTo int
		if err := rows.Scan(&day, &from, &to, &breakFrom, &breakTo); err != nil {
			return nil, fmt.Errorf("failed to scan work window: %w", err)
		}
		w := schedule.WorkWindow{
			DayOfWeek: schedule.DayOfWeek(day),
			From:      schedule.TimeOfDay(from),
			To:        schedule.TimeOfDay(to),
			BreakFrom: schedule.TimeOfDay(breakFrom),
			BreakTo:   schedule.TimeOfDay(breakTo),
		}
		windows[w.DayOfWeek] = w
	}
	return windows, rows.Err()
}

// UpsertWindow implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) UpsertWindow(ctx context.Context, scheduleID string, w schedule.WorkWindow) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO work_windows (schedule_id, weekday, from_minute, to_minute, break_from, break_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (schedule_id, weekday)
		DO UPDATE SET from_minute = EXCLUDED.from_minute, to_minute = EXCLUDED.to_minute,
			break_from = EXCLUDED.break_from, break_to = EXCLUDED.break_to
	`
	_, err := q.Exec(ctx, query, scheduleID, int(w.DayOfWeek),
		w.From.Minutes(), w.To.Minutes(), w.BreakFrom.Minutes(), w.BreakTo.Minutes())
	if err != nil {
		return fmt.Errorf("failed to upsert work window for day %d: %w", w.DayOfWeek, err)
	}
	return nil
}

// DeleteWindow implements schedule.ScheduleRepository. A missing window yields pgx.ErrNoRows.
func (s *scheduleRepositoryImpl) DeleteWindow(ctx context.Context, scheduleID string, day schedule.DayOfWeek) error {
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_windows WHERE schedule_id = $1 AND weekday = $2`, scheduleID, int(day))
	if err != nil {
		return fmt.Errorf("failed to delete work window: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// Touch implements schedule.ScheduleRepository.
func (s *scheduleRepositoryImpl) Touch(ctx context.Context, scheduleID string) error {
	q := GetQuerier(ctx, s.db)

	tag, err := q.Exec(ctx, `UPDATE schedules SET updated_at = NOW() WHERE id = $1`, scheduleID)
	if err != nil {
		return fmt.Errorf("failed to touch schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
