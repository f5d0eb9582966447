package inmemdb

import (
	"sync"

	"github.com/womanacademy/renluyen/core/calendar"
	"github.com/womanacademy/renluyen/core/chat"
	"github.com/womanacademy/renluyen/core/evaluation"
	"github.com/womanacademy/renluyen/core/notification"
	"github.com/womanacademy/renluyen/core/student"
)

type (
	// DB is a process-local store; each table is guarded by its own mutex.
	DB struct {
		evaluation   *evaluationTable
		student      *studentTable
		notification *notificationTable
		chat         *chatTable
		calendar     *calendarTable
	}

	evaluationTable struct {
		table map[string]*evaluation.Evaluation
		mutex sync.RWMutex
	}

	studentTable struct {
		table map[string]*student.Student
		mutex sync.RWMutex
	}

	notificationTable struct {
		table []*notification.Notification // newest first
		mutex sync.RWMutex
	}

	chatTable struct {
		conversations map[string]*chat.Conversation
		messages      []*chat.Message
		mutex         sync.RWMutex
	}

	calendarTable struct {
		table map[string]*calendar.Event
		mutex sync.RWMutex
	}
)

func Open() *DB {
	return &DB{
		evaluation:   &evaluationTable{table: make(map[string]*evaluation.Evaluation)},
		student:      &studentTable{table: make(map[string]*student.Student)},
		notification: &notificationTable{},
		chat:         &chatTable{conversations: make(map[string]*chat.Conversation)},
		calendar:     &calendarTable{table: make(map[string]*calendar.Event)},
	}
}
