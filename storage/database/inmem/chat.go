package inmemdb

import (
	"context"

	"github.com/womanacademy/renluyen/core/chat"
)

type chatRepository struct {
	db *chatTable
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *DB) chat.Repository {
	return &chatRepository{db: db.chat}
}

func copyConversation(conv *chat.Conversation) chat.Conversation {
	cp := *conv
	cp.Unread = make(map[string]int, len(conv.Unread))
	for k, v := range conv.Unread {
		cp.Unread[k] = v
	}
	if conv.LastMessage != nil {
		msg := *conv.LastMessage
		cp.LastMessage = &msg
	}
	return cp
}

func (repo *chatRepository) findConversation(pair [2]string) *chat.Conversation {
	for _, conv := range repo.db.conversations {
		if conv.Participants == pair {
			return conv
		}
	}
	return nil
}

func (repo *chatRepository) AppendMessage(_ context.Context, msg chat.Message, newConversationID string) (chat.Conversation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.messages = append(repo.db.messages, &msg)

	conv := repo.findConversation(chat.Pair(msg.SenderID, msg.ReceiverID))
	if conv == nil {
		conv = &chat.Conversation{
			ID:           newConversationID,
			Participants: chat.Pair(msg.SenderID, msg.ReceiverID),
		}
		repo.db.conversations[conv.ID] = conv
	}
	conv.Record(msg)
	return copyConversation(conv), nil
}

func (repo *chatRepository) GetConversationByID(_ context.Context, id string) (chat.Conversation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if conv, ok := repo.db.conversations[id]; ok {
		return copyConversation(conv), nil
	}
	return chat.Conversation{}, chat.ErrConversationNotFound
}

func (repo *chatRepository) QueryConversations(_ context.Context, userID string) ([]chat.Conversation, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	convs := make([]chat.Conversation, 0)
	for _, conv := range repo.db.conversations {
		if conv.HasParticipant(userID) {
			convs = append(convs, copyConversation(conv))
		}
	}
	return convs, nil
}

func (repo *chatRepository) QueryMessages(_ context.Context, a, b string) ([]chat.Message, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	msgs := make([]chat.Message, 0)
	for _, msg := range repo.db.messages {
		if (msg.SenderID == a && msg.ReceiverID == b) || (msg.SenderID == b && msg.ReceiverID == a) {
			msgs = append(msgs, *msg)
		}
	}
	return msgs, nil
}

func (repo *chatRepository) MarkConversationRead(_ context.Context, id, userID string) (chat.Conversation, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	conv, ok := repo.db.conversations[id]
	if !ok {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	other := conv.Participants[0]
	if other == userID {
		other = conv.Participants[1]
	}
	for _, msg := range repo.db.messages {
		if msg.ReceiverID == userID && msg.SenderID == other {
			msg.IsRead = true
		}
	}
	if conv.LastMessage != nil && conv.LastMessage.ReceiverID == userID {
		conv.LastMessage.IsRead = true
	}
	if conv.Unread != nil {
		conv.Unread[userID] = 0
	}
	return copyConversation(conv), nil
}
