package api

import (
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/npezzotti/go-hostly/internal/blobstore"
	"github.com/npezzotti/go-hostly/internal/database"
	"github.com/npezzotti/go-hostly/internal/stats"
)

type CreateListingRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Zipcode     string  `json:"zipcode"`
	Capacity    int     `json:"capacity"`
	Description string  `json:"description"`
	Amenities   string  `json:"amenities"`
	PhotoUrl    string  `json:"photoUrl"`
}

func (s *HostlyApp) findListings(w http.ResponseWriter, r *http.Request) {
	filters := filtersFromQuery(r.URL.Query())

	var (
		listings []database.Listing
		err      error
	)
	if len(filters) == 0 {
		listings, err = s.db.FindAllListings()
	} else {
		listings, err = s.db.FindListings(filters)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, listingsResponse(listings))
}

func (s *HostlyApp) searchListings(w http.ResponseWriter, r *http.Request) {
	listings, err := s.db.SearchListings(r.URL.Query().Get("term"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, listingsResponse(listings))
}

func (s *HostlyApp) getListing(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.db.GetListing(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, listingResponse(listing))
}

// createListing accepts either a JSON body or a multipart form with an
// optional "photo" file. The caller becomes the host.
func (s *HostlyApp) createListing(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var (
		req CreateListingRequest
		err error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		req, err = s.readListingForm(w, r)
	} else {
		err = decodeJsonBody(w, r, &req)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.db.CreateListing(database.CreateListingParams{
		Name:        req.Name,
		Price:       req.Price,
		Zipcode:     req.Zipcode,
		Capacity:    req.Capacity,
		Description: req.Description,
		Amenities:   req.Amenities,
		PhotoUrl:    req.PhotoUrl,
		HostId:      userId,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.incr(stats.ListingsCreated)
	s.writeJson(w, http.StatusCreated, listingResponse(listing))
}

func (s *HostlyApp) readListingForm(w http.ResponseWriter, r *http.Request) (CreateListingRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, blobstore.MaxSize+maxJsonBody)
	if err := r.ParseMultipartForm(blobstore.MaxSize); err != nil {
		return CreateListingRequest{}, &ApiError{
			StatusCode: http.StatusBadRequest,
			Message:    "invalid multipart form",
			Err:        err,
		}
	}

	req := CreateListingRequest{
		Name:        r.FormValue("name"),
		Zipcode:     r.FormValue("zipcode"),
		Description: r.FormValue("description"),
		Amenities:   r.FormValue("amenities"),
	}

	if v := strings.TrimSpace(r.FormValue("price")); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, &database.ValidationError{Message: "price must be a positive number"}
		}
		req.Price = price
	}
	if v := strings.TrimSpace(r.FormValue("capacity")); v != "" {
		capacity, err := strconv.Atoi(v)
		if err != nil {
			return req, &database.ValidationError{Message: "capacity must be a positive integer"}
		}
		req.Capacity = capacity
	}

	file, header, err := r.FormFile("photo")
	if err == http.ErrMissingFile {
		return req, nil
	}
	if err != nil {
		return req, &ApiError{StatusCode: http.StatusBadRequest, Message: "invalid photo", Err: err}
	}
	defer file.Close()

	if s.blobs == nil {
		return req, &ApiError{StatusCode: http.StatusBadRequest, Message: "photo uploads are disabled"}
	}

	data, err := io.ReadAll(io.LimitReader(file, blobstore.MaxSize+1))
	if err != nil {
		return req, err
	}

	url, err := s.blobs.Store(r.Context(), data, header.Header.Get("Content-Type"))
	if err != nil {
		return req, err
	}
	req.PhotoUrl = url

	return req, nil
}

// updateListing applies a partial update. Only the listing's host or an
// admin may change it.
func (s *HostlyApp) updateListing(w http.ResponseWriter, r *http.Request) {
	id, err := pathId(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	listing, err := s.db.GetListing(id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := authorizeUser(r, listing.HostId); err != nil {
		s.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxJsonBody)
	changes, err := decodeChanges(r.Body)
	if err != nil {
		s.writeError(w, r, &ApiError{StatusCode: http.StatusBadRequest, Message: err.Error(), Err: err})
		return
	}

	updated, err := s.db.UpdateListing(id, changes)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusOK, listingResponse(updated))
}

func (s *HostlyApp) deleteListing(w http.ResponseWriter, r *http.Request) {
	if !IsAdmin(r.Context()) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	id, err := pathId(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.db.DeleteListing(id); err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJson(w, http.StatusNoContent, nil)
}
