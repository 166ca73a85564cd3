package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/maendeleo/core/notification"
)

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	doc, err := json.Marshal(notif)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "marshalling notification")
	}
	_, err = repo.db.ExecContext(ctx,
		`INSERT INTO notification (id, project_id, student_id, status, read, date, document)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		notif.ID, notif.ProjectID, notif.StudentID, notif.Status, notif.Read, notif.Date, doc)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) QueryNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	q := `SELECT document FROM notification`
	var conds []string
	args := make([]interface{}, 0, 2)
	if filter.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.StudentID != "" {
		conds = append(conds, "student_id = ?")
		args = append(args, filter.StudentID)
	}
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY date DESC`
	q = repo.db.Rebind(q)

	rows, err := repo.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	defer func() { _ = rows.Close() }()

	notifs := make([]notification.Notification, 0)
	for rows.Next() {
		var doc []byte
		if err = rows.Scan(&doc); err != nil {
			return nil, errors.Wrap(err, "scanning notification")
		}
		var notif notification.Notification
		if err = json.Unmarshal(doc, &notif); err != nil {
			return nil, errors.Wrap(err, "unmarshalling notification")
		}
		notifs = append(notifs, notif)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) getByColumn(ctx context.Context, column, val string) (notification.Notification, error) {
	var doc []byte
	err := repo.db.QueryRowContext(ctx,
		`SELECT document FROM notification WHERE `+column+` = $1`, val).Scan(&doc)
	if err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "getting notification")
	}
	var notif notification.Notification
	if err = json.Unmarshal(doc, &notif); err != nil {
		return notification.Notification{}, errors.Wrap(err, "unmarshalling notification")
	}
	return notif, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	return repo.getByColumn(ctx, "id", id)
}

func (repo *notificationRepository) GetNotificationByProjectID(ctx context.Context, projectID string) (notification.Notification, error) {
	return repo.getByColumn(ctx, "project_id", projectID)
}

func (repo *notificationRepository) UpdateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	doc, err := json.Marshal(notif)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "marshalling notification")
	}
	res, err := repo.db.ExecContext(ctx,
		`UPDATE notification SET status = $2, read = $3, document = $4 WHERE id = $1`,
		notif.ID, notif.Status, notif.Read, doc)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if n == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	return notif, nil
}

func (repo *notificationRepository) CountUnreadNotifications(ctx context.Context) (int, error) {
	var count int
	err := repo.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notification WHERE NOT read`).Scan(&count)
	if err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return count, nil
}

func (repo *notificationRepository) MarkAllNotificationsRead(ctx context.Context) error {
	_, err := repo.db.ExecContext(ctx,
		`UPDATE notification
		 SET read = true, document = jsonb_set(document, '{read}', 'true')
		 WHERE NOT read`)
	return errors.Wrap(err, "marking notifications read")
}

func (repo *notificationRepository) DeleteAllNotifications(ctx context.Context) error {
	_, err := repo.db.ExecContext(ctx, `DELETE FROM notification`)
	return errors.Wrap(err, "deleting notifications")
}
