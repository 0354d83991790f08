package http

import (
	"net/http"

	"bilancio/internal/core"
)

type objectiveRequest struct {
	Category    string  `json:"category"`
	Subcategory string  `json:"subcategory,omitempty"`
	Percentage  float64 `json:"percentage"`
	Replace     bool    `json:"replace,omitempty"`
}

func (s *Server) handleSetObjective(w http.ResponseWriter, r *http.Request) {
	var req objectiveRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	objective := core.BudgetObjective{
		Category:    core.Category(req.Category),
		Subcategory: req.Subcategory,
		Percentage:  req.Percentage,
		Active:      true,
	}
	if err := objective.Validate(); err != nil {
		unprocessable(w, err)
		return
	}
	created, err := s.registry.SetObjective(r.Context(), objective, req.Replace)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, objectiveView(created))
}

func (s *Server) handleListObjectives(w http.ResponseWriter, r *http.Request) {
	objectives, err := s.registry.Objectives(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	views := make([]objectiveJSON, 0, len(objectives))
	for _, o := range objectives {
		views = append(views, objectiveView(o))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleRetireObjective(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.registry.RetireObjective(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nil)
}
