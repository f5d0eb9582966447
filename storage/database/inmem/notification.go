package inmemdb

import (
	"context"

	"github.com/womanacademy/renluyen/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notification}
}

func (repo *notificationRepository) CreateNotification(_ context.Context, notif notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// prepend
	repo.db.table = append([]*notification.Notification{&notif}, repo.db.table...)
	return notif, nil
}

func (repo *notificationRepository) GetNotificationByID(_ context.Context, id string) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, n := range repo.db.table {
		if n.ID == id {
			return *n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) FilterNotifications(_ context.Context, filter notification.QueryFilter) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, n := range repo.db.table {
		if filter.RecipientID != "" && n.RecipientID != filter.RecipientID {
			continue
		}
		if filter.RecipientRole != "" && n.RecipientRole != filter.RecipientRole {
			continue
		}
		if filter.UnreadOnly && n.Read {
			continue
		}
		notifs = append(notifs, *n)
	}
	return notifs, nil
}

func (repo *notificationRepository) SetNotificationRead(_ context.Context, id string, read bool) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, n := range repo.db.table {
		if n.ID == id {
			n.Read = read
			return *n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) DeleteNotification(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, n := range repo.db.table {
		if n.ID == id {
			repo.db.table = append(repo.db.table[:i], repo.db.table[i+1:]...)
			return nil
		}
	}
	return notification.ErrNotFound
}
