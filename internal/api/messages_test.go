package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/live"
	"github.com/npezzotti/go-hostly/internal/stats"
	"github.com/npezzotti/go-hostly/internal/testutil"
	"github.com/npezzotti/go-hostly/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMessage = database.Message{
	Id:       21,
	FromId:   8,
	ToId:     3,
	Content:  "Is the loft free in June?",
	SentAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	ThreadId: 11,
}

func TestCreateMessage(t *testing.T) {
	params := database.CreateMessageParams{FromId: 8, ToId: 3, Content: "Is the loft free in June?", ThreadId: 11}
	body := `{"toId":3,"threadId":11,"content":"Is the loft free in June?"}`

	tcases := []struct {
		name      string
		body      string
		dbErr     error
		callDb    bool
		wantCode  int
		wantStats bool
	}{
		{name: "sent", body: body, callDb: true, wantCode: http.StatusCreated, wantStats: true},
		{
			name:     "not a participant",
			body:     body,
			callDb:   true,
			dbErr:    &database.ValidationError{Message: "users 8 and 3 are not the participants of thread 11"},
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "thread missing",
			body:     body,
			callDb:   true,
			dbErr:    &database.NotFoundError{Resource: "thread", Key: 11},
			wantCode: http.StatusNotFound,
		},
		{name: "malformed body", body: `{"toId":`, wantCode: http.StatusBadRequest},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := new(database.MockMarketplaceRepository)
			if tc.callDb {
				mockDb.On("CreateMessage", params).Return(testMessage, tc.dbErr)
			}
			mockStats := new(stats.MockStatsUpdater)
			if tc.wantStats {
				mockStats.On("Incr", stats.MessagesSent).Once()
			}
			app, mux := newTestApp(t, mockDb)
			app.stats = mockStats

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, authedRequest(t, app, http.MethodPost, "/api/messages", []byte(tc.body), 8, false))

			assert.Equal(t, tc.wantCode, rr.Code)
			if tc.wantCode == http.StatusCreated {
				var got types.Message
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, 21, got.Id)
				assert.Equal(t, 11, got.ThreadId)
			}
			mockDb.AssertExpectations(t)
			mockStats.AssertExpectations(t)
		})
	}
}

func TestCreateMessage_RateLimited(t *testing.T) {
	mockDb := new(database.MockMarketplaceRepository)
	mockDb.On("CreateMessage", database.CreateMessageParams{FromId: 8, ToId: 3, Content: "hi", ThreadId: 11}).
		Return(testMessage, nil)
	app, mux := newTestApp(t, mockDb)
	app.limiter.Shutdown()
	app.limiter = newLimiterPool(0.001, 2)
	t.Cleanup(app.limiter.Shutdown)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, authedRequest(t, app, http.MethodPost, "/api/messages", []byte(`{"toId":3,"threadId":11,"content":"hi"}`), 8, false))
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, codes)
	mockDb.AssertNumberOfCalls(t, "CreateMessage", 2)
}

func TestCreateMessage_NotifiesParticipants(t *testing.T) {
	mockDb := new(database.MockMarketplaceRepository)
	mockDb.On("CreateMessage", database.CreateMessageParams{FromId: 8, ToId: 3, Content: "hi", ThreadId: 11}).
		Return(testMessage, nil)
	app, mux := newTestApp(t, mockDb)

	hub := live.NewHub(testutil.TestLogger(t), nil)
	go hub.Run()
	t.Cleanup(hub.Shutdown)
	app.hub = hub

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, authedRequest(t, app, http.MethodPost, "/api/messages", []byte(`{"toId":3,"threadId":11,"content":"hi"}`), 8, false))

	assert.Equal(t, http.StatusCreated, rr.Code)
	mockDb.AssertExpectations(t)
}

func TestGetThreadMessages(t *testing.T) {
	tcases := []struct {
		name      string
		callerId  int
		isAdmin   bool
		threadErr error
		callMsgs  bool
		wantCode  int
	}{
		{name: "host", callerId: 3, callMsgs: true, wantCode: http.StatusOK},
		{name: "guest", callerId: 8, callMsgs: true, wantCode: http.StatusOK},
		{name: "admin", callerId: 1, isAdmin: true, callMsgs: true, wantCode: http.StatusOK},
		{name: "outsider", callerId: 9, wantCode: http.StatusForbidden},
		{name: "missing thread", callerId: 3, threadErr: &database.NotFoundError{Resource: "thread", Key: 11}, wantCode: http.StatusNotFound},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockDb := new(database.MockMarketplaceRepository)
			mockDb.On("GetThread", 11).Return(testThread, tc.threadErr)
			if tc.callMsgs {
				mockDb.On("GetMessagesFromThread", 11).Return([]database.Message{testMessage}, nil)
			}
			app, mux := newTestApp(t, mockDb)

			rr := httptest.NewRecorder()
			mux.ServeHTTP(rr, authedRequest(t, app, http.MethodGet, "/api/messages/threads/11", nil, tc.callerId, tc.isAdmin))

			assert.Equal(t, tc.wantCode, rr.Code)
			if tc.wantCode == http.StatusOK {
				var got []types.Message
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				require.Len(t, got, 1)
				assert.Equal(t, "Is the loft free in June?", got[0].Content)
			}
			mockDb.AssertExpectations(t)
		})
	}
}

func TestGetConversation(t *testing.T) {
	mockDb := new(database.MockMarketplaceRepository)
	mockDb.On("GetConversation", 8, 3).Return([]database.Message{}, nil)
	app, mux := newTestApp(t, mockDb)

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, authedRequest(t, app, http.MethodGet, "/api/messages/conversations/3", nil, 8, false))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
	mockDb.AssertExpectations(t)
}
