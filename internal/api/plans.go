package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetPlan handles GET /api/plans/{week}. Unsaved weeks return an empty plan.
func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan, err := h.svc.GetPlan(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, "get plan", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// SetEntry handles PUT /api/plans/{week}/entry.
func (h *Handler) SetEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	plan, err := h.svc.SetEntry(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "week"), req)
	if err != nil {
		writeError(w, "set plan entry", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// DeleteEntry handles DELETE /api/plans/{week}/entry?date=YYYY-MM-DD.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("date is required"))
		return
	}
	plan, err := h.svc.DeleteEntry(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "week"), date)
	if err != nil {
		writeError(w, "delete plan entry", err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// ValidatePlan handles POST /api/plans/{week}/validate.
//
//	@Summary		Check the week against the household's constraint rules
//	@Tags			plans
//	@Produce		json
//	@Param			week	path		string	true	"Week start date (a Monday, YYYY-MM-DD)"
//	@Success		200		{object}	WarningsResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plans/{week}/validate [post]
func (h *Handler) ValidatePlan(w http.ResponseWriter, r *http.Request) {
	warnings, err := h.svc.ValidatePlan(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, "validate plan", err)
		return
	}
	writeJSON(w, http.StatusOK, WarningsResponse{Warnings: warnings})
}

// ExportCalendar handles GET /api/plans/{week}/export.ics.
//
//	@Summary		Download the week as an iCalendar file
//	@Tags			plans
//	@Produce		text/calendar
//	@Param			week	path		string	true	"Week start date (a Monday, YYYY-MM-DD)"
//	@Success		200		{string}	string
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/plans/{week}/export.ics [get]
func (h *Handler) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	cal, err := h.svc.ExportCalendar(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "week"))
	if err != nil {
		writeError(w, "export calendar", err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", "attachment; filename="+cal.Filename)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(cal.Body))
}
