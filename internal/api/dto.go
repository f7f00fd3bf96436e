package api

import (
	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/models"
)

// Request bodies are the service inputs.
type (
	CredentialsRequest     = mealservice.Credentials
	HouseholdUpdateRequest = mealservice.HouseholdUpdate
	TagRequest             = mealservice.TagInput
	TagUpdateRequest       = mealservice.TagUpdate
	RecipeRequest          = mealservice.RecipeInput
	RecipeUpdateRequest    = mealservice.RecipeUpdate
	ConstraintRequest      = mealservice.ConstraintInput
	ActionRequest          = mealservice.ActionInput
	RuleUpdateRequest      = mealservice.RuleUpdate
	EntryRequest           = mealservice.EntryInput
)

// SessionResponse is returned by register and login.
type SessionResponse = mealservice.Session

// TagTypesResponse lists the accepted tag types.
type TagTypesResponse struct {
	Types []models.TagType `json:"types" validate:"required"`
}

// WarningsResponse is the result of validating a plan.
type WarningsResponse struct {
	Warnings []models.Warning `json:"warnings" validate:"required"`
}
