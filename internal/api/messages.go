package api

import (
	"net/http"

	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/stats"
	"github.com/npezzotti/go-hostly/internal/types"
)

type CreateMessageRequest struct {
	ToId     int    `json:"toId"`
	ThreadId int    `json:"threadId"`
	Content  string `json:"content"`
}

func (s *HostlyApp) createMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if !s.limiter.Allow(userId) {
		errResp := NewTooManyRequestsError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req CreateMessageRequest
	if err := decodeJsonBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	msg, err := s.db.CreateMessage(database.CreateMessageParams{
		FromId:   userId,
		ToId:     req.ToId,
		Content:  req.Content,
		ThreadId: req.ThreadId,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := messageResponse(msg)
	s.incr(stats.MessagesSent)
	s.notify(&types.Event{Type: types.EventMessageCreated, Message: &resp}, msg.FromId, msg.ToId)
	s.writeJson(w, http.StatusCreated, resp)
}

// getThreadMessages is open to the thread's participants and admins.
func (s *HostlyApp) getThreadMessages(w http.ResponseWriter, r *http.Request) {
	threadId, err := pathId(r, "threadId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	thread, err := s.db.GetThread(threadId)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if authorizeUser(r, thread.HostId) != nil && authorizeUser(r, thread.GuestId) != nil {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages, err := s.db.GetMessagesFromThread(threadId)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, messagesResponse(messages))
}

// getConversation returns every message between the caller and userId.
func (s *HostlyApp) getConversation(w http.ResponseWriter, r *http.Request) {
	callerId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	otherId, err := pathId(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	messages, err := s.db.GetConversation(callerId, otherId)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, messagesResponse(messages))
}
