package api

import (
	"net/http"

	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/stats"
	"github.com/npezzotti/go-hostly/internal/types"
)

type CreateThreadRequest struct {
	ListingId int `json:"listingId"`
	HostId    int `json:"hostId"`
	GuestId   int `json:"guestId"`
}

// createThread opens the conversation about a listing between its host and
// a guest. Asking again for the same triple returns the existing thread with
// 200 instead of 201.
func (s *HostlyApp) createThread(w http.ResponseWriter, r *http.Request) {
	var req CreateThreadRequest
	if err := decodeJsonBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	callerId, _ := UserId(r.Context())
	if callerId != req.HostId && callerId != req.GuestId && !IsAdmin(r.Context()) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.ListingId > 0 {
		listing, err := s.db.GetListing(req.ListingId)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if listing.HostId != req.HostId {
			s.writeError(w, r, &database.ValidationError{Message: "hostId is not the host of the listing"})
			return
		}
	}

	thread, created, err := s.db.CreateThread(database.CreateThreadParams{
		ListingId: req.ListingId,
		HostId:    req.HostId,
		GuestId:   req.GuestId,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := threadResponse(thread)
	if !created {
		s.writeJson(w, http.StatusOK, resp)
		return
	}

	s.incr(stats.ThreadsCreated)
	s.notify(&types.Event{Type: types.EventThreadCreated, Thread: &resp}, thread.HostId, thread.GuestId)
	s.writeJson(w, http.StatusCreated, resp)
}

func (s *HostlyApp) getAllThreads(w http.ResponseWriter, r *http.Request) {
	s.listThreads(w, r, s.db.GetAllThreadsForUser)
}

func (s *HostlyApp) getHostingThreads(w http.ResponseWriter, r *http.Request) {
	s.listThreads(w, r, s.db.GetThreadsForHost)
}

func (s *HostlyApp) getGuestingThreads(w http.ResponseWriter, r *http.Request) {
	s.listThreads(w, r, s.db.GetThreadsForGuest)
}

func (s *HostlyApp) listThreads(w http.ResponseWriter, r *http.Request, find func(int) ([]database.Thread, error)) {
	userId, err := pathId(r, "userId")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := authorizeUser(r, userId); err != nil {
		s.writeError(w, r, err)
		return
	}

	threads, err := find(userId)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, threadsResponse(threads))
}
