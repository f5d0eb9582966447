package chat_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/womanacademy/renluyen/core/chat"
	"github.com/womanacademy/renluyen/core/student"
	inmemdb "github.com/womanacademy/renluyen/storage/database/inmem"
)

func TestPair(t *testing.T) {
	assert.Equal(t, [2]string{"a", "b"}, chat.Pair("a", "b"))
	assert.Equal(t, [2]string{"a", "b"}, chat.Pair("b", "a"))
	// byte order: upper case sorts first
	assert.Equal(t, [2]string{"Bcd", "abc"}, chat.Pair("abc", "Bcd"))
}

func TestConversation_Record(t *testing.T) {
	conv := chat.Conversation{Participants: chat.Pair("a", "b")}
	conv.Record(chat.Message{SenderID: "a", ReceiverID: "b", Content: "1"})
	conv.Record(chat.Message{SenderID: "a", ReceiverID: "b", Content: "2"})
	conv.Record(chat.Message{SenderID: "b", ReceiverID: "a", Content: "3"})

	assert.Equal(t, 2, conv.ForUser("b").UnreadCount)
	assert.Equal(t, 1, conv.ForUser("a").UnreadCount)
	assert.Equal(t, "3", conv.LastMessage.Content)
	assert.True(t, conv.HasParticipant("a"))
	assert.False(t, conv.HasParticipant("c"))
}

func TestService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	roster := student.NewService(inmemdb.NewStudentRepository(db), "CNTT2021A")
	svc := chat.NewService(inmemdb.NewChatRepository(db), roster)

	for _, ns := range []student.NewStudent{
		{UserID: "a", FullName: "Nguyen Van A", StudentID: "1", Email: "a@test.vn"},
		{UserID: "b", FullName: "Tran Thi B", StudentID: "2", Email: "b@test.vn"},
		{FullName: "Unlinked", StudentID: "3", Email: "c@test.vn"},
	} {
		_, err := roster.Create(ctx, ns)
		require.NoError(t, err)
	}

	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	chat.NowFunc = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	defer func() { chat.NowFunc = time.Now }()

	t.Run("invalid", func(t *testing.T) {
		_, _, err := svc.Send(ctx, chat.SendMessage{SenderID: "a", ReceiverID: "a", Content: "hi"})
		assert.Error(t, err)
		_, _, err = svc.Send(ctx, chat.SendMessage{SenderID: "a", ReceiverID: "b"})
		assert.Error(t, err)
		_, _, err = svc.Send(ctx, chat.SendMessage{SenderID: "a", ReceiverID: "b", Content: "x", Type: "video"})
		assert.Error(t, err)
	})

	msg, conv, err := svc.Send(ctx, chat.SendMessage{SenderID: "a", ReceiverID: "b", Content: " chao "})
	require.NoError(t, err)
	assert.Equal(t, "chao", msg.Content)
	assert.Equal(t, chat.TypeText, msg.Type)
	assert.Equal(t, 0, conv.UnreadCount)

	_, conv2, err := svc.Send(ctx, chat.SendMessage{SenderID: "b", ReceiverID: "a", FileURL: "/uploads/x.pdf", FileName: "x.pdf", Type: "file"})
	require.NoError(t, err)
	assert.Equal(t, conv.ID, conv2.ID)

	_, _, err = svc.Send(ctx, chat.SendMessage{SenderID: "a", ReceiverID: "b", Content: "ok"})
	require.NoError(t, err)

	t.Run("conversations", func(t *testing.T) {
		convs, err := svc.ListConversations(ctx, "b")
		require.NoError(t, err)
		require.Len(t, convs, 1)
		assert.Equal(t, 2, convs[0].UnreadCount)
		assert.Equal(t, "ok", convs[0].LastMessage.Content)

		convs, err = svc.ListConversations(ctx, "c")
		require.NoError(t, err)
		assert.Empty(t, convs)
	})

	t.Run("messages", func(t *testing.T) {
		msgs, err := svc.ListMessages(ctx, conv.ID, "a")
		require.NoError(t, err)
		require.Len(t, msgs, 3)
		assert.Equal(t, "chao", msgs[0].Content)
		assert.Equal(t, "x.pdf", msgs[1].FileName)

		_, err = svc.ListMessages(ctx, conv.ID, "c")
		assert.Equal(t, chat.ErrConversationNotFound, err)
	})

	t.Run("mark read", func(t *testing.T) {
		read, err := svc.MarkRead(ctx, conv.ID, "b")
		require.NoError(t, err)
		assert.Equal(t, 0, read.UnreadCount)

		convs, err := svc.ListConversations(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, 1, convs[0].UnreadCount)

		msgs, err := svc.ListMessages(ctx, conv.ID, "b")
		require.NoError(t, err)
		for _, m := range msgs {
			assert.Equal(t, m.ReceiverID == "b", m.IsRead, m.Content)
		}
	})

	t.Run("contacts", func(t *testing.T) {
		contacts, err := svc.SearchContacts(ctx, "", "a")
		require.NoError(t, err)
		require.Len(t, contacts, 1)
		assert.Equal(t, "b", contacts[0].UserID)
		assert.Equal(t, "Tran Thi B", contacts[0].Name)
	})
}
