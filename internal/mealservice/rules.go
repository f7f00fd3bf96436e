package mealservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
)

// ListRules returns the household's rules in creation order.
func (s *Service) ListRules(ctx context.Context, householdID string) ([]models.Rule, error) {
	rules, err := s.repo.ListRules(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(rules), nil
}

// CreateMaxMealsRule adds a MAX_MEALS_PER_WEEK_BY_TAG constraint.
func (s *Service) CreateMaxMealsRule(ctx context.Context, householdID string, in ConstraintInput) (*models.ConstraintRule, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := s.checkTags(ctx, householdID, []string{in.TagID}); err != nil {
		return nil, err
	}
	r := models.ConstraintRule{
		RuleMeta:       s.newRuleMeta(householdID, in.Enabled),
		ConstraintType: models.MaxMealsPerWeekByTag,
		TagID:          in.TagID,
		MaxCount:       *in.MaxCount,
	}
	if err := s.repo.PutRule(ctx, r); err != nil {
		return nil, err
	}
	s.publish(householdID, "rule.created", r.ID)
	return &r, nil
}

// CreateReminderRule adds a REMIND_OFFSET_DAYS_BEFORE_DINNER action.
func (s *Service) CreateReminderRule(ctx context.Context, householdID string, in ActionInput) (*models.ActionRule, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	switch in.TargetType {
	case models.TargetTag:
		if err := s.checkTags(ctx, householdID, []string{in.TagID}); err != nil {
			return nil, err
		}
	case models.TargetRecipe:
		_, err := s.repo.GetRecipe(ctx, householdID, in.RecipeID)
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown recipe %q", apperr.ErrInvalid, in.RecipeID)
		}
		if err != nil {
			return nil, err
		}
	}
	r := models.ActionRule{
		RuleMeta:        s.newRuleMeta(householdID, in.Enabled),
		ActionType:      models.RemindOffsetDaysBeforeDinner,
		TargetType:      in.TargetType,
		TagID:           in.TagID,
		RecipeID:        in.RecipeID,
		OffsetDays:      *in.OffsetDays,
		TimeLocal:       in.TimeLocal,
		MessageTemplate: in.MessageTemplate,
	}
	if err := s.repo.PutRule(ctx, r); err != nil {
		return nil, err
	}
	s.publish(householdID, "rule.created", r.ID)
	return &r, nil
}

// UpdateRule applies u to the rule. Fields belonging to the other rule kind
// are rejected with apperr.ErrInvalid.
func (s *Service) UpdateRule(ctx context.Context, householdID, ruleID string, u RuleUpdate) (models.Rule, error) {
	if err := validateInput(&u); err != nil {
		return nil, err
	}
	rule, err := s.repo.GetRule(ctx, householdID, ruleID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	var updated models.Rule
	switch r := rule.(type) {
	case models.ConstraintRule:
		if u.OffsetDays != nil || u.TimeLocal != nil || u.MessageTemplate != nil {
			return nil, fmt.Errorf("%w: constraint rules accept enabled and max_count only", apperr.ErrInvalid)
		}
		if u.Enabled != nil {
			r.Enabled = *u.Enabled
		}
		if u.MaxCount != nil {
			r.MaxCount = *u.MaxCount
		}
		r.UpdatedAt = now
		updated = r
	case models.ActionRule:
		if u.MaxCount != nil {
			return nil, fmt.Errorf("%w: action rules do not accept max_count", apperr.ErrInvalid)
		}
		if u.Enabled != nil {
			r.Enabled = *u.Enabled
		}
		if u.OffsetDays != nil {
			r.OffsetDays = *u.OffsetDays
		}
		if u.TimeLocal != nil {
			r.TimeLocal = *u.TimeLocal
		}
		if u.MessageTemplate != nil {
			r.MessageTemplate = *u.MessageTemplate
		}
		r.UpdatedAt = now
		updated = r
	default:
		return nil, fmt.Errorf("update rule: unexpected variant %T", rule)
	}
	if err := s.repo.PutRule(ctx, updated); err != nil {
		return nil, err
	}
	s.publish(householdID, "rule.updated", ruleID)
	return updated, nil
}

// DeleteRule removes a rule.
func (s *Service) DeleteRule(ctx context.Context, householdID, ruleID string) error {
	if err := s.repo.DeleteRule(ctx, householdID, ruleID); err != nil {
		return err
	}
	s.publish(householdID, "rule.deleted", ruleID)
	return nil
}

func (s *Service) newRuleMeta(householdID string, enabled *bool) models.RuleMeta {
	now := s.now()
	on := true
	if enabled != nil {
		on = *enabled
	}
	return models.RuleMeta{
		ID:          s.newID(),
		HouseholdID: householdID,
		Enabled:     on,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
