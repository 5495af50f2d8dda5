package email

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timesheet-go/internal/domain/notification"
)

// RecipientLookup resolves a notification recipient to an address.
type RecipientLookup interface {
	GetByID(ctx context.Context, id string) (employee.Employee, error)
}

// NotificationDeliverer emails notifications to their recipients.
type NotificationDeliverer struct {
	mailer    *Mailer
	employees RecipientLookup
}

func NewNotificationDeliverer(mailer *Mailer, employees RecipientLookup) *NotificationDeliverer {
	return &NotificationDeliverer{mailer: mailer, employees: employees}
}

// Deliver implements notification.Deliverer.
func (d *NotificationDeliverer) Deliver(ctx context.Context, n *notification.Notification) error {
	emp, err := d.employees.GetByID(ctx, n.RecipientID)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient %s: %w", n.RecipientID, err)
	}
	if emp.Email == "" {
		return nil
	}

	link := ""
	if n.RequestID != nil {
		link = d.mailer.RequestLink(*n.RequestID)
	}

	return d.mailer.SendNotification(ctx, emp.Email, NotificationEmail{
		RecipientName: emp.FullName,
		Type:          string(n.Type),
		Title:         n.Title,
		Message:       n.Message,
		Link:          link,
		SentAt:        n.CreatedAt.UTC().Format("02 Jan 2006 15:04 MST"),
	})
}
