package mealservice

import (
	"context"
	"errors"
	"strings"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
)

// ListRecipes returns the household's recipes, optionally narrowed to one tag
// and to a case-insensitive substring of the title or notes.
func (s *Service) ListRecipes(ctx context.Context, householdID string, f RecipeFilter) ([]models.Recipe, error) {
	recipes, err := s.repo.ListRecipes(ctx, householdID)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]models.Recipe, 0, len(recipes))
	for _, r := range recipes {
		if f.TagID != "" && !r.HasTag(f.TagID) {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) && !strings.Contains(strings.ToLower(r.Notes), q) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// GetRecipe returns one recipe or apperr.ErrNotFound.
func (s *Service) GetRecipe(ctx context.Context, householdID, recipeID string) (*models.Recipe, error) {
	return s.repo.GetRecipe(ctx, householdID, recipeID)
}

// CreateRecipe adds a recipe. Every tag id must belong to the household.
func (s *Service) CreateRecipe(ctx context.Context, householdID string, in RecipeInput) (*models.Recipe, error) {
	return s.createRecipe(ctx, householdID, s.newID(), in)
}

// PutRecipeWithID creates or replaces the recipe with a caller-chosen id.
// The catalog importer uses it to keep ids stable across restarts.
func (s *Service) PutRecipeWithID(ctx context.Context, householdID, recipeID string, in RecipeInput) (*models.Recipe, error) {
	existing, err := s.repo.GetRecipe(ctx, householdID, recipeID)
	if errors.Is(err, apperr.ErrNotFound) {
		return s.createRecipe(ctx, householdID, recipeID, in)
	}
	if err != nil {
		return nil, err
	}
	u := RecipeUpdate{
		Title:           &in.Title,
		TagIDs:          &in.TagIDs,
		DefaultServings: &in.DefaultServings,
		Notes:           &in.Notes,
	}
	if in.DefaultServings == 0 {
		u.DefaultServings = nil
	}
	return s.UpdateRecipe(ctx, householdID, existing.ID, u)
}

func (s *Service) createRecipe(ctx context.Context, householdID, recipeID string, in RecipeInput) (*models.Recipe, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, householdID, in.TagIDs); err != nil {
		return nil, err
	}
	now := s.now()
	r := models.Recipe{
		ID:              recipeID,
		Title:           in.Title,
		TagIDs:          dedupe(in.TagIDs),
		DefaultServings: in.DefaultServings,
		Notes:           strings.TrimSpace(in.Notes),
		HouseholdID:     householdID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.PutRecipe(ctx, r); err != nil {
		return nil, err
	}
	s.publish(householdID, "recipe.created", r.ID)
	return &r, nil
}

// UpdateRecipe applies the non-nil fields of u.
func (s *Service) UpdateRecipe(ctx context.Context, householdID, recipeID string, u RecipeUpdate) (*models.Recipe, error) {
	if err := validateInput(&u); err != nil {
		return nil, err
	}
	r, err := s.repo.GetRecipe(ctx, householdID, recipeID)
	if err != nil {
		return nil, err
	}
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.TagIDs != nil {
		if err := s.checkTags(ctx, householdID, *u.TagIDs); err != nil {
			return nil, err
		}
		r.TagIDs = dedupe(*u.TagIDs)
	}
	if u.DefaultServings != nil {
		r.DefaultServings = *u.DefaultServings
	}
	if u.Notes != nil {
		r.Notes = strings.TrimSpace(*u.Notes)
	}
	r.UpdatedAt = s.now()
	if err := s.repo.PutRecipe(ctx, *r); err != nil {
		return nil, err
	}
	s.publish(householdID, "recipe.updated", r.ID)
	return r, nil
}

// DeleteRecipe removes a recipe. Plans that still reference it report
// MISSING_RECIPE on validation.
func (s *Service) DeleteRecipe(ctx context.Context, householdID, recipeID string) error {
	if err := s.repo.DeleteRecipe(ctx, householdID, recipeID); err != nil {
		return err
	}
	s.publish(householdID, "recipe.deleted", recipeID)
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
