package chat

import (
	"time"
)

// Message types
const (
	TypeText  = "text"
	TypeFile  = "file"
	TypeImage = "image"
)

type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	FileURL    string    `json:"fileUrl,omitempty"`
	FileName   string    `json:"fileName,omitempty"`
	Timestamp  time.Time `json:"timestamp"` // UTC
	IsRead     bool      `json:"isRead"`
}

// Conversation is identified by the unordered pair of its participants.
type Conversation struct {
	ID           string         `json:"id"`
	Participants [2]string      `json:"participants"` // sorted
	LastMessage  *Message       `json:"lastMessage"`
	LastActivity time.Time      `json:"lastActivity"` // UTC
	Unread       map[string]int `json:"-"`            // {participantID: count}
	UnreadCount  int            `json:"unreadCount"`  // of the viewing participant
}

// Pair returns the participants of a conversation between a and b, in canonical order.
func Pair(a, b string) [2]string {
	if b < a {
		return [2]string{b, a}
	}
	return [2]string{a, b}
}

func (c *Conversation) HasParticipant(userID string) bool {
	return c.Participants[0] == userID || c.Participants[1] == userID
}

// Record applies a new message: only the receiver gets an unread increment.
func (c *Conversation) Record(msg Message) {
	if c.Unread == nil {
		c.Unread = make(map[string]int, 2)
	}
	c.LastMessage = &msg
	c.LastActivity = msg.Timestamp
	c.Unread[msg.ReceiverID]++
}

// ForUser returns a copy with UnreadCount set for userID.
func (c Conversation) ForUser(userID string) Conversation {
	c.UnreadCount = c.Unread[userID]
	return c
}

// SendMessage contains information needed to send a Message.
type SendMessage struct {
	SenderID   string `json:"-" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required,nefield=SenderID"`
	Content    string `json:"content" validate:"required_without=FileURL"`
	Type       string `json:"type" validate:"omitempty,oneof=text file image"`
	FileURL    string `json:"fileUrl"`
	FileName   string `json:"fileName"`
}

// Contact is a user one can start a conversation with.
type Contact struct {
	UserID    string `json:"userId"`
	Name      string `json:"name"`
	StudentID string `json:"studentId"`
	ClassID   string `json:"classId"`
	Email     string `json:"email"`
}
