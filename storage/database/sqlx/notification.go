package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/womanacademy/renluyen/core/notification"
)

const notificationColumns = `id, title, message, type, recipient_id, recipient_role, created_at, read`

type notificationRow struct {
	ID            string      `db:"id"`
	Title         string      `db:"title"`
	Message       string      `db:"message"`
	Type          string      `db:"type"`
	RecipientID   null.String `db:"recipient_id"`
	RecipientRole null.String `db:"recipient_role"`
	CreatedAt     time.Time   `db:"created_at"`
	Read          bool        `db:"read"`
}

func (row notificationRow) toNotification() notification.Notification {
	return notification.Notification{
		ID:            row.ID,
		Title:         row.Title,
		Message:       row.Message,
		Type:          row.Type,
		RecipientID:   row.RecipientID.String,
		RecipientRole: row.RecipientRole.String,
		CreatedAt:     row.CreatedAt.UTC(),
		Read:          row.Read,
	}
}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification) (notification.Notification, error) {
	row := notificationRow{
		ID:            notif.ID,
		Title:         notif.Title,
		Message:       notif.Message,
		Type:          notif.Type,
		RecipientID:   null.NewString(notif.RecipientID, notif.RecipientID != ""),
		RecipientRole: null.NewString(notif.RecipientRole, notif.RecipientRole != ""),
		CreatedAt:     notif.CreatedAt,
		Read:          notif.Read,
	}
	q := `INSERT INTO notifications (` + notificationColumns + `)
		VALUES (:id, :title, :message, :type, :recipient_id, :recipient_role, :created_at, :read)`
	if _, err := repo.db.NamedExecContext(ctx, q, row); err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	var row notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notifications WHERE id::text = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "selecting notification")
	}
	return row.toNotification(), nil
}

func (repo *notificationRepository) FilterNotifications(ctx context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	var w where
	if filter.RecipientID != "" {
		w.add("recipient_id = $%d", filter.RecipientID)
	}
	if filter.RecipientRole != "" {
		w.add("recipient_role = $%d", filter.RecipientRole)
	}
	if filter.UnreadOnly {
		w.add("read = $%d", false)
	}

	var rows []notificationRow
	q := `SELECT ` + notificationColumns + ` FROM notifications` + w.String() + ` ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "selecting notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		notifs = append(notifs, row.toNotification())
	}
	return notifs, nil
}

func (repo *notificationRepository) SetNotificationRead(ctx context.Context, id string, read bool) (notification.Notification, error) {
	var row notificationRow
	q := `UPDATE notifications SET read = $2 WHERE id::text = $1 RETURNING ` + notificationColumns
	if err := repo.db.GetContext(ctx, &row, q, id, read); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	return row.toNotification(), nil
}

func (repo *notificationRepository) DeleteNotification(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM notifications WHERE id::text = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting notification")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotFound
	}
	return nil
}
