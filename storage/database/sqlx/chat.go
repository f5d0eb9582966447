package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/womanacademy/renluyen/core/chat"
)

const (
	messageColumns      = `id, sender_id, receiver_id, content, type, file_url, file_name, timestamp, is_read`
	conversationsSelect = `SELECT c.id, c.participant_a, c.participant_b, c.unread_a, c.unread_b, c.last_activity,
		m.id AS m_id, m.sender_id AS m_sender_id, m.receiver_id AS m_receiver_id, m.content AS m_content,
		m.type AS m_type, m.file_url AS m_file_url, m.file_name AS m_file_name, m.timestamp AS m_timestamp,
		m.is_read AS m_is_read
	FROM chat_conversations c LEFT JOIN chat_messages m ON m.id = c.last_message_id`
)

type (
	messageRow struct {
		ID         string    `db:"id"`
		SenderID   string    `db:"sender_id"`
		ReceiverID string    `db:"receiver_id"`
		Content    string    `db:"content"`
		Type       string    `db:"type"`
		FileURL    string    `db:"file_url"`
		FileName   string    `db:"file_name"`
		Timestamp  time.Time `db:"timestamp"`
		IsRead     bool      `db:"is_read"`
	}

	conversationRow struct {
		ID           string    `db:"id"`
		ParticipantA string    `db:"participant_a"`
		ParticipantB string    `db:"participant_b"`
		UnreadA      int       `db:"unread_a"`
		UnreadB      int       `db:"unread_b"`
		LastActivity time.Time `db:"last_activity"`

		MsgID         null.String `db:"m_id"`
		MsgSenderID   null.String `db:"m_sender_id"`
		MsgReceiverID null.String `db:"m_receiver_id"`
		MsgContent    null.String `db:"m_content"`
		MsgType       null.String `db:"m_type"`
		MsgFileURL    null.String `db:"m_file_url"`
		MsgFileName   null.String `db:"m_file_name"`
		MsgTimestamp  null.Time   `db:"m_timestamp"`
		MsgIsRead     null.Bool   `db:"m_is_read"`
	}
)

func (row messageRow) toMessage() chat.Message {
	return chat.Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Content:    row.Content,
		Type:       row.Type,
		FileURL:    row.FileURL,
		FileName:   row.FileName,
		Timestamp:  row.Timestamp.UTC(),
		IsRead:     row.IsRead,
	}
}

func (row conversationRow) toConversation() chat.Conversation {
	conv := chat.Conversation{
		ID:           row.ID,
		Participants: [2]string{row.ParticipantA, row.ParticipantB},
		LastActivity: row.LastActivity.UTC(),
		Unread:       map[string]int{row.ParticipantA: row.UnreadA, row.ParticipantB: row.UnreadB},
	}
	if row.MsgID.Valid {
		conv.LastMessage = &chat.Message{
			ID:         row.MsgID.String,
			SenderID:   row.MsgSenderID.String,
			ReceiverID: row.MsgReceiverID.String,
			Content:    row.MsgContent.String,
			Type:       row.MsgType.String,
			FileURL:    row.MsgFileURL.String,
			FileName:   row.MsgFileName.String,
			Timestamp:  row.MsgTimestamp.Time.UTC(),
			IsRead:     row.MsgIsRead.Bool,
		}
	}
	return conv
}

type chatRepository struct {
	db *sqlx.DB
}

var _ chat.Repository = (*chatRepository)(nil)

func NewChatRepository(db *sqlx.DB) chat.Repository {
	return &chatRepository{db: db}
}

func (repo *chatRepository) AppendMessage(ctx context.Context, msg chat.Message, newConversationID string) (chat.Conversation, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return chat.Conversation{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	row := messageRow{
		ID:         msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Content:    msg.Content,
		Type:       msg.Type,
		FileURL:    msg.FileURL,
		FileName:   msg.FileName,
		Timestamp:  msg.Timestamp,
		IsRead:     msg.IsRead,
	}
	q := `INSERT INTO chat_messages (` + messageColumns + `)
		VALUES (:id, :sender_id, :receiver_id, :content, :type, :file_url, :file_name, :timestamp, :is_read)`
	if _, err = tx.NamedExecContext(ctx, q, row); err != nil {
		return chat.Conversation{}, errors.Wrap(err, "inserting message")
	}

	// only the receiver's counter moves
	pair := chat.Pair(msg.SenderID, msg.ReceiverID)
	var unreadA, unreadB int
	if msg.ReceiverID == pair[0] {
		unreadA = 1
	} else {
		unreadB = 1
	}
	var convID string
	q = `INSERT INTO chat_conversations (id, participant_a, participant_b, unread_a, unread_b, last_message_id, last_activity)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (participant_a, participant_b) DO UPDATE SET
			unread_a = chat_conversations.unread_a + EXCLUDED.unread_a,
			unread_b = chat_conversations.unread_b + EXCLUDED.unread_b,
			last_message_id = EXCLUDED.last_message_id,
			last_activity = EXCLUDED.last_activity
		RETURNING id`
	err = tx.GetContext(ctx, &convID, q, newConversationID, pair[0], pair[1], unreadA, unreadB, msg.ID, msg.Timestamp)
	if err != nil {
		return chat.Conversation{}, errors.Wrap(err, "upserting conversation")
	}

	var conv conversationRow
	if err = tx.GetContext(ctx, &conv, conversationsSelect+` WHERE c.id = $1`, convID); err != nil {
		return chat.Conversation{}, errors.Wrap(err, "selecting conversation")
	}
	if err = tx.Commit(); err != nil {
		return chat.Conversation{}, errors.Wrap(err, "committing message")
	}
	return conv.toConversation(), nil
}

func (repo *chatRepository) GetConversationByID(ctx context.Context, id string) (chat.Conversation, error) {
	var row conversationRow
	if err := repo.db.GetContext(ctx, &row, conversationsSelect+` WHERE c.id::text = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return chat.Conversation{}, chat.ErrConversationNotFound
		}
		return chat.Conversation{}, errors.Wrap(err, "selecting conversation")
	}
	return row.toConversation(), nil
}

func (repo *chatRepository) QueryConversations(ctx context.Context, userID string) ([]chat.Conversation, error) {
	var rows []conversationRow
	q := conversationsSelect + ` WHERE c.participant_a = $1 OR c.participant_b = $1 ORDER BY c.last_activity DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "selecting conversations")
	}
	convs := make([]chat.Conversation, 0, len(rows))
	for _, row := range rows {
		convs = append(convs, row.toConversation())
	}
	return convs, nil
}

func (repo *chatRepository) QueryMessages(ctx context.Context, a, b string) ([]chat.Message, error) {
	var rows []messageRow
	q := `SELECT ` + messageColumns + ` FROM chat_messages
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY timestamp`
	if err := repo.db.SelectContext(ctx, &rows, q, a, b); err != nil {
		return nil, errors.Wrap(err, "selecting messages")
	}
	msgs := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.toMessage())
	}
	return msgs, nil
}

func (repo *chatRepository) MarkConversationRead(ctx context.Context, id, userID string) (chat.Conversation, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return chat.Conversation{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var conv conversationRow
	q := `UPDATE chat_conversations SET
			unread_a = CASE WHEN participant_a = $2 THEN 0 ELSE unread_a END,
			unread_b = CASE WHEN participant_b = $2 THEN 0 ELSE unread_b END
		WHERE id::text = $1
		RETURNING id, participant_a, participant_b`
	if err = tx.GetContext(ctx, &conv, q, id, userID); err != nil {
		if err == sql.ErrNoRows {
			return chat.Conversation{}, chat.ErrConversationNotFound
		}
		return chat.Conversation{}, errors.Wrap(err, "resetting unread count")
	}

	other := conv.ParticipantA
	if other == userID {
		other = conv.ParticipantB
	}
	q = `UPDATE chat_messages SET is_read = true WHERE receiver_id = $1 AND sender_id = $2 AND NOT is_read`
	if _, err = tx.ExecContext(ctx, q, userID, other); err != nil {
		return chat.Conversation{}, errors.Wrap(err, "marking messages read")
	}

	if err = tx.GetContext(ctx, &conv, conversationsSelect+` WHERE c.id = $1`, conv.ID); err != nil {
		return chat.Conversation{}, errors.Wrap(err, "selecting conversation")
	}
	if err = tx.Commit(); err != nil {
		return chat.Conversation{}, errors.Wrap(err, "committing read")
	}
	return conv.toConversation(), nil
}
