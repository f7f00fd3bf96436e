package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *mealservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *mealservice.Service) *Handler {
	return &Handler{svc: svc}
}

// Register handles POST /api/auth/register.
//
//	@Summary		Create an account and its household
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Email and password"
//	@Success		201		{object}	SessionResponse
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Router			/auth/register [post]
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.svc.Register(r.Context(), req)
	if err != nil {
		writeError(w, "register", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

// Login handles POST /api/auth/login.
//
//	@Summary		Exchange credentials for a bearer token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CredentialsRequest	true	"Email and password"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeError(w, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// GetHousehold handles GET /api/household.
func (h *Handler) GetHousehold(w http.ResponseWriter, r *http.Request) {
	hh, err := h.svc.GetHousehold(r.Context(), HouseholdFrom(r.Context()))
	if err != nil {
		writeError(w, "get household", err)
		return
	}
	writeJSON(w, http.StatusOK, hh)
}

// UpdateHousehold handles PATCH /api/household.
func (h *Handler) UpdateHousehold(w http.ResponseWriter, r *http.Request) {
	var req HouseholdUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	hh, err := h.svc.UpdateHousehold(r.Context(), HouseholdFrom(r.Context()), req)
	if err != nil {
		writeError(w, "update household", err)
		return
	}
	writeJSON(w, http.StatusOK, hh)
}

// ListTags handles GET /api/tags.
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context(), HouseholdFrom(r.Context()))
	if err != nil {
		writeError(w, "list tags", err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// TagTypes handles GET /api/tags/types.
func (h *Handler) TagTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TagTypesResponse{Types: models.TagTypes})
}

// CreateTag handles POST /api/tags.
//
//	@Summary		Create a tag
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			body	body		TagRequest	true	"Tag to create"
//	@Success		201		{object}	models.Tag
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/tags [post]
func (h *Handler) CreateTag(w http.ResponseWriter, r *http.Request) {
	var req TagRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tag, err := h.svc.CreateTag(r.Context(), HouseholdFrom(r.Context()), req)
	if err != nil {
		writeError(w, "create tag", err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// UpdateTag handles PATCH /api/tags/{id}.
func (h *Handler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	var req TagUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tag, err := h.svc.UpdateTag(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update tag", err)
		return
	}
	writeJSON(w, http.StatusOK, tag)
}

// DeleteTag handles DELETE /api/tags/{id}.
func (h *Handler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTag(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete tag", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRecipes handles GET /api/recipes.
//
//	@Summary		List recipes
//	@Tags			recipes
//	@Produce		json
//	@Param			tag_id	query		string	false	"Only recipes with this tag"
//	@Param			q		query		string	false	"Case-insensitive title or notes match"
//	@Success		200		{array}		models.Recipe
//	@Security		BearerAuth
//	@Router			/recipes [get]
func (h *Handler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recipes, err := h.svc.ListRecipes(r.Context(), HouseholdFrom(r.Context()), mealservice.RecipeFilter{
		TagID: q.Get("tag_id"),
		Query: q.Get("q"),
	})
	if err != nil {
		writeError(w, "list recipes", err)
		return
	}
	writeJSON(w, http.StatusOK, recipes)
}

// GetRecipe handles GET /api/recipes/{id}.
func (h *Handler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := h.svc.GetRecipe(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// CreateRecipe handles POST /api/recipes.
func (h *Handler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	recipe, err := h.svc.CreateRecipe(r.Context(), HouseholdFrom(r.Context()), req)
	if err != nil {
		writeError(w, "create recipe", err)
		return
	}
	writeJSON(w, http.StatusCreated, recipe)
}

// UpdateRecipe handles PATCH /api/recipes/{id}.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	var req RecipeUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	recipe, err := h.svc.UpdateRecipe(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update recipe", err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

// DeleteRecipe handles DELETE /api/recipes/{id}.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRecipe(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete recipe", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRules handles GET /api/rules.
func (h *Handler) ListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.svc.ListRules(r.Context(), HouseholdFrom(r.Context()))
	if err != nil {
		writeError(w, "list rules", err)
		return
	}
	writeJSON(w, http.StatusOK, rules)
}

// CreateMaxMealsRule handles POST /api/rules/constraint/max_meals_per_week_by_tag.
func (h *Handler) CreateMaxMealsRule(w http.ResponseWriter, r *http.Request) {
	var req ConstraintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rule, err := h.svc.CreateMaxMealsRule(r.Context(), HouseholdFrom(r.Context()), req)
	if err != nil {
		writeError(w, "create constraint rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// CreateReminderRule handles POST /api/rules/action/remind_offset_days_before_dinner.
//
//	@Summary		Create a reminder rule
//	@Description	Reminds offset_days relative to each targeted dinner at time_local.
//	@Tags			rules
//	@Accept			json
//	@Produce		json
//	@Param			body	body		ActionRequest	true	"Reminder rule"
//	@Success		201		{object}	models.ActionRule
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rules/action/remind_offset_days_before_dinner [post]
func (h *Handler) CreateReminderRule(w http.ResponseWriter, r *http.Request) {
	var req ActionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rule, err := h.svc.CreateReminderRule(r.Context(), HouseholdFrom(r.Context()), req)
	if err != nil {
		writeError(w, "create action rule", err)
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

// UpdateRule handles PATCH /api/rules/{id}.
func (h *Handler) UpdateRule(w http.ResponseWriter, r *http.Request) {
	var req RuleUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	rule, err := h.svc.UpdateRule(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update rule", err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// DeleteRule handles DELETE /api/rules/{id}.
func (h *Handler) DeleteRule(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteRule(r.Context(), HouseholdFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete rule", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
