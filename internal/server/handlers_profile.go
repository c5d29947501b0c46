package server

import (
	"net/http"

	"github.com/jonathan/resume-revamp/internal/db"
	"github.com/jonathan/resume-revamp/internal/server/middleware"
	"github.com/jonathan/resume-revamp/internal/types"
)

func toProfileResponse(p *db.Profile) types.ProfileResponse {
	return types.ProfileResponse{
		UserID:    p.UserID,
		Location:  p.Location,
		Email:     p.Email,
		Phone:     p.Phone,
		LinkedIn:  p.LinkedIn,
		GitHub:    p.GitHub,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// handleGetProfile returns the stored profile, or a blank one prefilled
// with the account email when none has been saved yet.
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	profile, err := s.deps.Store.GetProfile(r.Context(), id.UserID)
	if err != nil {
		s.failure(w, "Failed to load profile", err)
		return
	}
	if profile == nil {
		profile = &db.Profile{UserID: id.UserID, Email: id.Email}
	}
	s.jsonResponse(w, http.StatusOK, toProfileResponse(profile))
}

// handleSaveProfile creates or replaces the caller's profile.
func (s *Server) handleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.GetUserID(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var req types.ProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	saved, err := s.deps.Store.UpsertProfile(r.Context(), &db.Profile{
		UserID:   userID,
		Location: req.Location,
		Email:    req.Email,
		Phone:    req.Phone,
		LinkedIn: req.LinkedIn,
		GitHub:   req.GitHub,
	})
	if err != nil {
		s.failure(w, "Failed to save profile", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, toProfileResponse(saved))
}
