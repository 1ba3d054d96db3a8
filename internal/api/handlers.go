package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/live"
	"github.com/npezzotti/go-hostly/internal/types"
)

func (s *HostlyApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *HostlyApp) writeError(w http.ResponseWriter, r *http.Request, err error) {
	errResp := errorResponse(err)
	if errResp.StatusCode >= http.StatusInternalServerError {
		s.log.Printf("request %s: %s %s: %v", RequestId(r.Context()), r.Method, r.URL.Path, err)
	}

	s.writeJson(w, errResp.StatusCode, errResp)
}

// pathId parses a positive integer path parameter.
func pathId(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(r.PathValue(name))
	if err != nil || id <= 0 {
		return 0, &ApiError{
			StatusCode: http.StatusBadRequest,
			Message:    fmt.Sprintf("invalid %s", name),
		}
	}

	return id, nil
}

// authorizeUser lets admins act on behalf of anyone and everyone else only
// on behalf of themselves.
func authorizeUser(r *http.Request, userId int) error {
	callerId, ok := UserId(r.Context())
	if !ok {
		return NewUnauthorizedError()
	}
	if callerId != userId && !IsAdmin(r.Context()) {
		return NewForbiddenError()
	}

	return nil
}

func (s *HostlyApp) incr(name string) {
	if s.stats != nil {
		s.stats.Incr(name)
	}
}

func (s *HostlyApp) notify(ev *types.Event, userIds ...int) {
	if s.hub != nil {
		s.hub.Notify(userIds, ev)
	}
}

func (s *HostlyApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *HostlyApp) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUserByUsername(r.PathValue("username"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	u := userResponse(user)
	if authorizeUser(r, user.Id) != nil {
		u.EmailAddress = ""
	}

	s.writeJson(w, http.StatusOK, u)
}

func (s *HostlyApp) serveWs(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if s.hub == nil {
		s.writeError(w, r, fmt.Errorf("live notifications are disabled"))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := live.NewClient(userId, conn, s.hub, s.log)
	if !s.hub.Register(client) {
		conn.Close()
		return
	}

	go client.Write()
	go client.Read()
}

func userResponse(u database.User) types.User {
	return types.User{
		Id:           u.Id,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		EmailAddress: u.EmailAddress,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
}

func listingResponse(l database.Listing) types.Listing {
	resp := types.Listing{
		Id:          l.Id,
		Name:        l.Name,
		Price:       l.Price,
		Zipcode:     l.Zipcode,
		Capacity:    l.Capacity,
		Description: l.Description,
		Amenities:   l.Amenities,
		PhotoUrl:    l.PhotoUrl,
		HostId:      l.HostId,
	}
	if l.Host != nil {
		resp.Host = &types.Profile{
			Username:  l.Host.Username,
			FirstName: l.Host.FirstName,
			LastName:  l.Host.LastName,
		}
	}

	return resp
}

func listingsResponse(listings []database.Listing) []types.Listing {
	resp := make([]types.Listing, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, listingResponse(l))
	}
	return resp
}

func threadResponse(t database.Thread) types.Thread {
	return types.Thread{
		Id:          t.Id,
		ListingId:   t.ListingId,
		HostId:      t.HostId,
		GuestId:     t.GuestId,
		StartedAt:   t.StartedAt,
		Counterpart: t.CounterpartUsername,
	}
}

func threadsResponse(threads []database.Thread) []types.Thread {
	resp := make([]types.Thread, 0, len(threads))
	for _, t := range threads {
		resp = append(resp, threadResponse(t))
	}
	return resp
}

func messageResponse(m database.Message) types.Message {
	return types.Message{
		Id:       m.Id,
		FromId:   m.FromId,
		ToId:     m.ToId,
		Content:  m.Content,
		SentAt:   m.SentAt,
		ThreadId: m.ThreadId,
	}
}

func messagesResponse(messages []database.Message) []types.Message {
	resp := make([]types.Message, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, messageResponse(m))
	}
	return resp
}
