package notification

import (
	"time"
)

// Types
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
)

var AllTypes = []string{TypeInfo, TypeSuccess, TypeWarning, TypeError}

type Notification struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	Type          string    `json:"type"`
	RecipientID   string    `json:"recipientId,omitempty"`
	RecipientRole string    `json:"recipientRole,omitempty"`
	CreatedAt     time.Time `json:"createdAt"` // UTC
	Read          bool      `json:"read"`
}

// NewNotification contains information needed to create a new Notification.
type NewNotification struct {
	Title         string `json:"title" validate:"required"`
	Message       string `json:"message" validate:"required"`
	Type          string `json:"type" validate:"required,notiftype"`
	RecipientID   string `json:"recipientId"`
	RecipientRole string `json:"recipientRole" validate:"omitempty,role"`
}

// MarkRead flips the read flag. A nil Read means true.
type MarkRead struct {
	ID   string `json:"notificationId" validate:"required"`
	Read *bool  `json:"read"`
}

// QueryFilter applies AND operation on the non-empty fields.
type QueryFilter struct {
	RecipientID   string
	RecipientRole string
	UnreadOnly    bool
}

// List is a filtered page of notifications, newest first.
type List struct {
	Notifications []Notification `json:"notifications"`
	UnreadCount   int            `json:"unreadCount"`
	Total         int            `json:"total"`
}
