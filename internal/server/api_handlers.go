package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/campaign"
	"github.com/CaliberConsultingLLC/LEP-2-sub001/internal/core"
)

// SummaryRequest is the body of POST /api/summary
type SummaryRequest struct {
	LeaderID   string             `json:"leaderId"`
	Payload    core.IntakePayload `json:"payload"`
	TotalChars int                `json:"totalChars"`
}

// TrailResponse is the body returned by POST /api/trail
type TrailResponse struct {
	Text string `json:"text"`
}

// CampaignRequest is the body of POST /api/campaigns
type CampaignRequest struct {
	LeaderID string             `json:"leaderId"`
	Payload  core.IntakePayload `json:"payload"`
	Summary  string             `json:"summary"`
}

// ReplaceRequest is the body of the trait and statement replacement routes
type ReplaceRequest struct {
	Payload core.IntakePayload `json:"payload"`
}

// handleSummary handles POST /api/summary
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondFailure(w, r, "generate summary", err)
		return
	}

	summary, err := s.deps.Narratives.Summary(r.Context(), req.LeaderID, req.Payload, req.TotalChars)
	if err != nil {
		s.respondFailure(w, r, "generate summary", err)
		return
	}

	if req.LeaderID != "" {
		if err := s.deps.Repository.SaveSummary(r.Context(), summary); err != nil {
			s.respondFailure(w, r, "save summary", err)
			return
		}
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// handleLatestSummary handles GET /api/summaries/latest?leaderId=
func (s *Server) handleLatestSummary(w http.ResponseWriter, r *http.Request) {
	leaderID, ok := s.requireLeaderID(w, r)
	if !ok {
		return
	}
	summary, err := s.deps.Repository.LatestSummary(r.Context(), leaderID)
	if err != nil {
		s.respondFailure(w, r, "load summary", err)
		return
	}
	s.respondJSON(w, http.StatusOK, summary)
}

// handleTrail handles POST /api/trail
func (s *Server) handleTrail(w http.ResponseWriter, r *http.Request) {
	var payload core.IntakePayload
	if err := decodeJSON(r, &payload); err != nil {
		s.respondFailure(w, r, "generate trail map", err)
		return
	}

	text, err := s.deps.Narratives.TrailMap(r.Context(), payload)
	if err != nil {
		s.respondFailure(w, r, "generate trail map", err)
		return
	}
	s.respondJSON(w, http.StatusOK, TrailResponse{Text: text})
}

// handleCreateCampaign handles POST /api/campaigns
func (s *Server) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondFailure(w, r, "generate campaign", err)
		return
	}

	c, err := s.deps.Campaigns.Generate(r.Context(), req.LeaderID, req.Payload, req.Summary)
	if err != nil {
		s.respondFailure(w, r, "generate campaign", err)
		return
	}
	if err := s.deps.Repository.SaveCampaign(r.Context(), c); err != nil {
		s.respondFailure(w, r, "save campaign", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, c)
}

// handleLatestCampaign handles GET /api/campaigns/latest?leaderId=
func (s *Server) handleLatestCampaign(w http.ResponseWriter, r *http.Request) {
	leaderID, ok := s.requireLeaderID(w, r)
	if !ok {
		return
	}
	c, err := s.deps.Repository.LatestCampaign(r.Context(), leaderID)
	if err != nil {
		s.respondFailure(w, r, "load campaign", err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

// handleGetCampaign handles GET /api/campaigns/{id}
func (s *Server) handleGetCampaign(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Repository.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, "load campaign", err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}

// handleReplaceTrait handles POST /api/campaigns/{id}/traits/{index}
func (s *Server) handleReplaceTrait(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r, "index")
	if !ok {
		return
	}
	c, req, ok := s.loadForReplace(w, r)
	if !ok {
		return
	}

	updated, err := s.deps.Campaigns.ReplaceTrait(r.Context(), req.Payload, c, index)
	if err != nil {
		s.respondFailure(w, r, "replace trait", err)
		return
	}
	s.saveAndRespond(w, r, updated)
}

// handleReplaceStatement handles POST /api/campaigns/{id}/traits/{index}/statements/{stmt}
func (s *Server) handleReplaceStatement(w http.ResponseWriter, r *http.Request) {
	traitIndex, ok := s.pathIndex(w, r, "index")
	if !ok {
		return
	}
	stmtIndex, ok := s.pathIndex(w, r, "stmt")
	if !ok {
		return
	}
	c, req, ok := s.loadForReplace(w, r)
	if !ok {
		return
	}

	updated, err := s.deps.Campaigns.ReplaceStatement(r.Context(), req.Payload, c, traitIndex, stmtIndex)
	if err != nil {
		s.respondFailure(w, r, "replace statement", err)
		return
	}
	s.saveAndRespond(w, r, updated)
}

// handleSubmitRating handles POST /api/campaigns/{id}/ratings
func (s *Server) handleSubmitRating(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Repository.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, "load campaign", err)
		return
	}

	var resp core.RatingResponse
	if err := decodeJSON(r, &resp); err != nil {
		s.respondFailure(w, r, "submit rating", err)
		return
	}
	resp.ID = uuid.NewString()
	resp.CampaignID = c.ID
	resp.DateSubmitted = s.now().UTC()

	if err := resp.Validate(c); err != nil {
		s.respondFailure(w, r, "submit rating", err)
		return
	}
	if err := s.deps.Repository.AddResponse(r.Context(), resp); err != nil {
		s.respondFailure(w, r, "submit rating", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, resp)
}

// handleResults handles GET /api/campaigns/{id}/results
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	c, err := s.deps.Repository.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, "load campaign", err)
		return
	}
	responses, err := s.deps.Repository.Responses(r.Context(), c.ID)
	if err != nil {
		s.respondFailure(w, r, "load ratings", err)
		return
	}
	results, err := campaign.Aggregate(c, responses)
	if err != nil {
		s.respondFailure(w, r, "aggregate ratings", err)
		return
	}
	s.respondJSON(w, http.StatusOK, results)
}

func (s *Server) requireLeaderID(w http.ResponseWriter, r *http.Request) (string, bool) {
	leaderID := strings.TrimSpace(r.URL.Query().Get("leaderId"))
	if leaderID == "" {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: []string{"leaderId is required"}})
		return "", false
	}
	return leaderID, true
}

func (s *Server) pathIndex(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Invalid request", Details: []string{name + " must be an integer"}})
		return 0, false
	}
	return n, true
}

func (s *Server) loadForReplace(w http.ResponseWriter, r *http.Request) (core.Campaign, ReplaceRequest, bool) {
	var req ReplaceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondFailure(w, r, "edit campaign", err)
		return core.Campaign{}, req, false
	}
	c, err := s.deps.Repository.GetCampaign(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondFailure(w, r, "load campaign", err)
		return core.Campaign{}, req, false
	}
	return c, req, true
}

func (s *Server) saveAndRespond(w http.ResponseWriter, r *http.Request, c core.Campaign) {
	if err := s.deps.Repository.SaveCampaign(r.Context(), c); err != nil {
		s.respondFailure(w, r, "save campaign", err)
		return
	}
	s.respondJSON(w, http.StatusOK, c)
}
