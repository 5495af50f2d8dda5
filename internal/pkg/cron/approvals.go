package cron

import (
	"context"
	"log/slog"
	"time"
)

// PendingReminder re-notifies approvers of requests left undecided for at least minAge.
type PendingReminder interface {
	RemindPending(ctx context.Context, minAge time.Duration) (int, error)
}

type ApprovalJobs struct {
	reminder PendingReminder
	minAge   time.Duration
	interval time.Duration
}

func NewApprovalJobs(reminder PendingReminder, minAge, interval time.Duration) *ApprovalJobs {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ApprovalJobs{reminder: reminder, minAge: minAge, interval: interval}
}

func (j *ApprovalJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("remind_pending_approvals", j.interval, j.RemindPendingApprovals)
}

// RemindPendingApprovals is a no-op when the reminder age is not configured.
func (j *ApprovalJobs) RemindPendingApprovals(ctx context.Context) error {
	if j.minAge <= 0 {
		return nil
	}

	count, err := j.reminder.RemindPending(ctx, j.minAge)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("Cron: reminded approvers of pending requests", "requests", count, "min_age", j.minAge)
	}
	return nil
}
