package inmem

import (
	"context"

	"github.com/trezcool/maendeleo/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := notif
	repo.db.table[notif.ID] = &stored
	repo.db.order = append(repo.db.order, notif.ID)
	return notif, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	// creation order reversed: most recent first
	notifs := make([]notification.Notification, 0, len(repo.db.order))
	for i := len(repo.db.order) - 1; i >= 0; i-- {
		notif, ok := repo.db.table[repo.db.order[i]]
		if !ok {
			continue
		}
		if filter.Status != "" && notif.Status != filter.Status {
			continue
		}
		if filter.StudentID != "" && notif.StudentID != filter.StudentID {
			continue
		}
		notifs = append(notifs, *notif)
	}
	return notifs, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if notif, ok := repo.db.table[id]; ok {
		return *notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) GetNotificationByProjectID(ctx context.Context, projectID string) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, notif := range repo.db.table {
		if notif.ProjectID == projectID {
			return *notif, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) UpdateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[notif.ID]; !ok {
		return notification.Notification{}, notification.ErrNotFound
	}
	stored := notif
	repo.db.table[notif.ID] = &stored
	return notif, nil
}

func (repo *notificationRepository) CountUnreadNotifications(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, notif := range repo.db.table {
		if !notif.Read {
			count++
		}
	}
	return count, nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(ctx context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, notif := range repo.db.table {
		notif.Read = true
	}
	return nil
}

func (repo *notificationRepository) DeleteAllNotifications(ctx context.Context) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table = make(map[string]*notification.Notification)
	repo.db.order = nil
	return nil
}
