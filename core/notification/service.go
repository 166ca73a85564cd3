package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	// errors
	ErrNotFound = errors.New("notification not found")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification) (Notification, error)
		// QueryNotifications returns matching records, most recent first.
		QueryNotifications(ctx context.Context, filter QueryFilter) ([]Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		GetNotificationByProjectID(ctx context.Context, projectID string) (Notification, error)
		UpdateNotification(ctx context.Context, notif Notification) (Notification, error)
		CountUnreadNotifications(ctx context.Context) (int, error)
		MarkAllNotificationsRead(ctx context.Context) error
		DeleteAllNotifications(ctx context.Context) error
	}

	Service interface {
		Record(ctx context.Context, nn NewNotification) (Notification, error)
		Query(ctx context.Context, filter QueryFilter) ([]Notification, error)
		UnreadCount(ctx context.Context) (int, error)
		MarkRead(ctx context.Context, id string) (Notification, error)
		MarkAllRead(ctx context.Context) error
		// ApplyDecision records a verdict on the notification matching the
		// project. It is idempotent: replaying the same decision converges and
		// never creates a new record.
		ApplyDecision(ctx context.Context, projectID string, d Decision) (Notification, error)
		DeleteAll(ctx context.Context) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Record(ctx context.Context, nn NewNotification) (Notification, error) {
	notif := Notification{
		ID:              uuid.New().String(),
		Message:         nn.Message,
		StudentID:       nn.StudentID,
		SubjectID:       nn.SubjectID,
		OutcomeID:       nn.OutcomeID,
		ProjectID:       nn.ProjectID,
		ProjectName:     nn.ProjectName,
		CreditRequested: nn.CreditRequested,
		Status:          StatusPending,
		Date:            time.Now().UTC(),
	}
	return svc.repo.CreateNotification(ctx, notif)
}

func (svc *service) Query(ctx context.Context, filter QueryFilter) ([]Notification, error) {
	return svc.repo.QueryNotifications(ctx, filter)
}

func (svc *service) UnreadCount(ctx context.Context) (int, error) {
	return svc.repo.CountUnreadNotifications(ctx)
}

func (svc *service) MarkRead(ctx context.Context, id string) (Notification, error) {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if notif.Read {
		return notif, nil
	}
	notif.Read = true
	return svc.repo.UpdateNotification(ctx, notif)
}

func (svc *service) MarkAllRead(ctx context.Context) error {
	return svc.repo.MarkAllNotificationsRead(ctx)
}

func (svc *service) ApplyDecision(ctx context.Context, projectID string, d Decision) (Notification, error) {
	notif, err := svc.repo.GetNotificationByProjectID(ctx, projectID)
	if err != nil {
		return Notification{}, err
	}
	if notif.IsDecided() {
		// already applied; converge without another write
		return notif, nil
	}

	notif.Status = d.Status
	notif.AssessedBy = d.AssessedBy
	assessedDate := d.AssessedDate.UTC()
	notif.AssessedDate = &assessedDate
	notif.ApprovedCredits = d.ApprovedCredits
	return svc.repo.UpdateNotification(ctx, notif)
}

func (svc *service) DeleteAll(ctx context.Context) error {
	return svc.repo.DeleteAllNotifications(ctx)
}
