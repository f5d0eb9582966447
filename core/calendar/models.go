package calendar

import (
	"time"
)

// Event types
const (
	TypePersonal = "personal"
	TypeShared   = "shared"
	TypeMeeting  = "meeting"
	TypeDeadline = "deadline"
	TypeReminder = "reminder"
)

var AllTypes = []string{TypePersonal, TypeShared, TypeMeeting, TypeDeadline, TypeReminder}

// DateLayout is the layout of StartDate & EndDate.
const DateLayout = "2006-01-02"

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartDate   string    `json:"startDate"` // YYYY-MM-DD
	EndDate     string    `json:"endDate"`   // YYYY-MM-DD
	StartTime   string    `json:"startTime,omitempty"`
	EndTime     string    `json:"endTime,omitempty"`
	Type        string    `json:"type"`
	IsAllDay    bool      `json:"isAllDay"`
	Location    string    `json:"location,omitempty"`
	CreatedBy   string    `json:"createdBy"`
	Attendees   []string  `json:"attendees"`
	Reminder    *int      `json:"reminder,omitempty"` // minutes before start
	CreatedAt   time.Time `json:"createdAt"`          // UTC
	UpdatedAt   time.Time `json:"updatedAt"`          // UTC
}

// VisibleTo reports whether userID created, attends or shares the event.
func (e *Event) VisibleTo(userID string) bool {
	if e.CreatedBy == userID || e.Type == TypeShared {
		return true
	}
	for _, a := range e.Attendees {
		if a == userID {
			return true
		}
	}
	return false
}

// NewEvent contains information needed to create a new Event.
type NewEvent struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	StartDate   string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string   `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime   string   `json:"startTime" validate:"omitempty,hhmm"`
	EndTime     string   `json:"endTime" validate:"omitempty,hhmm"`
	Type        string   `json:"type" validate:"omitempty,eventtype"`
	IsAllDay    bool     `json:"isAllDay"`
	Location    string   `json:"location"`
	Attendees   []string `json:"attendees"`
	Reminder    *int     `json:"reminder" validate:"omitempty,min=0"`
}

// UpdateEvent defines what information may be provided to modify an existing Event.
// nil fields keep their current value.
type UpdateEvent struct {
	Title       *string  `json:"title" validate:"omitempty,min=1"`
	Description *string  `json:"description"`
	StartDate   *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	StartTime   *string  `json:"startTime" validate:"omitempty,hhmm"`
	EndTime     *string  `json:"endTime" validate:"omitempty,hhmm"`
	Type        *string  `json:"type" validate:"omitempty,eventtype"`
	IsAllDay    *bool    `json:"isAllDay"`
	Location    *string  `json:"location"`
	Attendees   []string `json:"attendees"`
	Reminder    *int     `json:"reminder" validate:"omitempty,min=0"`
}

// QueryFilter narrows events. The date range applies to StartDate (inclusive)
// and only when both bounds are given.
type QueryFilter struct {
	UserID    string
	StartDate string
	EndDate   string
}
