package database

import (
	"database/sql"
	"errors"
	"strings"
)

const messageColumns = "id, from_id, to_id, content, sent_at, thread_id"

// createMessageQuery only inserts when the thread exists and the sender and
// recipient are its host and guest, in either direction.
const createMessageQuery = `
INSERT INTO messages (from_id, to_id, content, sent_at, thread_id)
SELECT $1, $2, $3, $4, mt.id FROM message_threads mt
WHERE mt.id = $5
  AND ((mt.host_id = $1 AND mt.guest_id = $2) OR (mt.host_id = $2 AND mt.guest_id = $1))
RETURNING ` + messageColumns

func scanMessage(row rowScanner, m *Message) error {
	return row.Scan(
		&m.Id,
		&m.FromId,
		&m.ToId,
		&m.Content,
		&m.SentAt,
		&m.ThreadId,
	)
}

func (db *PgMarketplaceRepository) CreateMessage(params CreateMessageParams) (Message, error) {
	if params.ThreadId <= 0 {
		return Message{}, validationErrorf("threadId is required")
	}
	if strings.TrimSpace(params.Content) == "" {
		return Message{}, validationErrorf("content cannot be empty")
	}
	if params.FromId <= 0 || params.ToId <= 0 {
		return Message{}, validationErrorf("fromId and toId are required")
	}
	if params.FromId == params.ToId {
		return Message{}, validationErrorf("cannot send a message to yourself")
	}

	row := db.conn.QueryRow(
		createMessageQuery,
		params.FromId,
		params.ToId,
		params.Content,
		now(),
		params.ThreadId,
	)

	var m Message
	err := scanMessage(row, &m)
	if err == nil {
		return m, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Message{}, storeError("create message", err)
	}

	// nothing inserted: either the thread is missing or the users are not
	// its participants
	if _, err := db.GetThread(params.ThreadId); err != nil {
		return Message{}, err
	}

	return Message{}, validationErrorf("users %d and %d are not the participants of thread %d",
		params.FromId, params.ToId, params.ThreadId)
}

// GetConversation returns the messages exchanged between two users in
// either direction, oldest first. The result does not depend on argument
// order.
func (db *PgMarketplaceRepository) GetConversation(userA, userB int) ([]Message, error) {
	if userA > userB {
		userA, userB = userB, userA
	}

	return db.selectMessages(
		"SELECT "+messageColumns+" FROM messages "+
			"WHERE (from_id = $1 AND to_id = $2) OR (from_id = $2 AND to_id = $1) "+
			"ORDER BY sent_at, id",
		userA,
		userB,
	)
}

func (db *PgMarketplaceRepository) GetMessagesFromThread(threadId int) ([]Message, error) {
	return db.selectMessages(
		"SELECT "+messageColumns+" FROM messages WHERE thread_id = $1 ORDER BY sent_at, id",
		threadId,
	)
}

func (db *PgMarketplaceRepository) selectMessages(q string, args ...any) ([]Message, error) {
	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, storeError("select messages", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var m Message
		if err := scanMessage(rows, &m); err != nil {
			return nil, storeError("scan message", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, storeError("select messages", err)
	}

	return messages, nil
}
