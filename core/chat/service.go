package chat

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/womanacademy/renluyen/core"
	"github.com/womanacademy/renluyen/core/student"
)

var (
	// errors
	ErrConversationNotFound = errors.New("conversation not found")

	NowFunc = time.Now // mockable
)

type (
	Repository interface {
		// AppendMessage stores msg and records it on the conversation of its participants,
		// creating the conversation with newConversationID when none exists.
		AppendMessage(ctx context.Context, msg Message, newConversationID string) (Conversation, error)
		GetConversationByID(ctx context.Context, id string) (Conversation, error)
		// QueryConversations returns the conversations userID takes part in.
		QueryConversations(ctx context.Context, userID string) ([]Conversation, error)
		// QueryMessages returns the messages exchanged between a and b, in either direction.
		QueryMessages(ctx context.Context, a, b string) ([]Message, error)
		// MarkConversationRead resets userID's unread counter and marks the messages it received as read.
		MarkConversationRead(ctx context.Context, id, userID string) (Conversation, error)
	}

	Roster interface {
		Filter(ctx context.Context, filter student.QueryFilter) ([]student.Student, error)
	}

	Service struct {
		repo   Repository
		roster Roster
	}
)

func NewService(repo Repository, roster Roster) *Service {
	return &Service{repo: repo, roster: roster}
}

// Send stores the message and returns it with the sender's view of the conversation.
func (svc *Service) Send(ctx context.Context, sm SendMessage) (Message, Conversation, error) {
	sm.ReceiverID = core.CleanString(sm.ReceiverID)
	sm.Content = core.CleanString(sm.Content)
	sm.Type = core.CleanString(sm.Type, true /* lower */)
	if sm.Type == "" {
		sm.Type = TypeText
	}
	if err := core.Validate.Struct(sm); err != nil {
		return Message{}, Conversation{}, err
	}

	msg := Message{
		ID:         uuid.NewString(),
		SenderID:   sm.SenderID,
		ReceiverID: sm.ReceiverID,
		Content:    sm.Content,
		Type:       sm.Type,
		FileURL:    sm.FileURL,
		FileName:   sm.FileName,
		Timestamp:  NowFunc().UTC(),
	}
	conv, err := svc.repo.AppendMessage(ctx, msg, uuid.NewString())
	if err != nil {
		return Message{}, Conversation{}, errors.Wrap(err, "appending message")
	}
	return msg, conv.ForUser(msg.SenderID), nil
}

// ListConversations returns userID's conversations, most recent activity first.
func (svc *Service) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	convs, err := svc.repo.QueryConversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		convs[i] = convs[i].ForUser(userID)
	}
	sort.SliceStable(convs, func(i, j int) bool { return convs[i].LastActivity.After(convs[j].LastActivity) })
	return convs, nil
}

func (svc *Service) getConversation(ctx context.Context, id, userID string) (Conversation, error) {
	conv, err := svc.repo.GetConversationByID(ctx, id)
	if err != nil {
		return Conversation{}, err
	}
	if !conv.HasParticipant(userID) {
		return Conversation{}, ErrConversationNotFound
	}
	return conv, nil
}

// ListMessages returns the messages of a conversation userID takes part in, oldest first.
func (svc *Service) ListMessages(ctx context.Context, conversationID, userID string) ([]Message, error) {
	conv, err := svc.getConversation(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := svc.repo.QueryMessages(ctx, conv.Participants[0], conv.Participants[1])
	if err != nil {
		return nil, err
	}
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Timestamp.Before(msgs[j].Timestamp) })
	return msgs, nil
}

func (svc *Service) MarkRead(ctx context.Context, conversationID, userID string) (Conversation, error) {
	if _, err := svc.getConversation(ctx, conversationID, userID); err != nil {
		return Conversation{}, err
	}
	conv, err := svc.repo.MarkConversationRead(ctx, conversationID, userID)
	if err != nil {
		return Conversation{}, err
	}
	return conv.ForUser(userID), nil
}

// SearchContacts matches roster students linked to a user, excluding userID itself.
func (svc *Service) SearchContacts(ctx context.Context, search, userID string) ([]Contact, error) {
	students, err := svc.roster.Filter(ctx, student.QueryFilter{Search: search})
	if err != nil {
		return nil, err
	}
	contacts := make([]Contact, 0, len(students))
	for _, st := range students {
		if st.UserID == "" || st.UserID == userID {
			continue
		}
		contacts = append(contacts, Contact{
			UserID:    st.UserID,
			Name:      st.FullName,
			StudentID: st.StudentID,
			ClassID:   st.ClassID,
			Email:     st.Email,
		})
	}
	return contacts, nil
}
