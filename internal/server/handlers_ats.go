package server

import (
	"net/http"

	"github.com/jonathan/resume-revamp/internal/ats"
	"github.com/jonathan/resume-revamp/internal/types"
)

// handleATSScore scores an uploaded resume against a job description.
func (s *Server) handleATSScore(w http.ResponseWriter, r *http.Request) {
	if s.deps.Scorer == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, errScoringDisabled.Error())
		return
	}
	if !s.parseMultipart(w, r) {
		return
	}

	resume, err := resumePDF(r)
	if err != nil {
		s.failure(w, "Invalid resume upload", err)
		return
	}
	jd, err := s.jobDescription(r.Context(), r)
	if err != nil {
		s.failure(w, "Invalid job description", err)
		return
	}

	score, err := s.deps.Scorer.Score(r.Context(), ats.File{Name: resume.Name, Data: resume.Data}, atsFile(jd))
	if err != nil {
		s.failure(w, "Failed to calculate ATS score", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, types.ATSScoreResponse{ATSScore: score})
}
