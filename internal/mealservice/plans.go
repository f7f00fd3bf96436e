package mealservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
	"github.com/starford/mealprep/internal/planner"
)

// Calendar is an exported week.
type Calendar struct {
	WeekStartDate string
	Filename      string
	Body          string
}

// GetPlan returns the week's plan. A week that was never saved yields an
// empty plan rather than an error.
func (s *Service) GetPlan(ctx context.Context, householdID, weekStart string) (*models.WeeklyPlan, error) {
	if _, _, err := weekRange(weekStart); err != nil {
		return nil, invalid(err)
	}
	return s.loadPlan(ctx, householdID, weekStart)
}

// SetEntry assigns a recipe to one date of the week.
func (s *Service) SetEntry(ctx context.Context, householdID, weekStart string, in EntryInput) (*models.WeeklyPlan, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	if err := checkInWeek(weekStart, in.Date); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetRecipe(ctx, householdID, in.RecipeID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("%w: unknown recipe %q", apperr.ErrInvalid, in.RecipeID)
		}
		return nil, err
	}
	plan, err := s.loadPlan(ctx, householdID, weekStart)
	if err != nil {
		return nil, err
	}
	plan.Entries[in.Date] = &models.PlanEntry{RecipeID: in.RecipeID, Servings: in.Servings}
	return s.savePlan(ctx, plan)
}

// DeleteEntry clears one date of the week. Clearing an empty date is a no-op.
func (s *Service) DeleteEntry(ctx context.Context, householdID, weekStart, date string) (*models.WeeklyPlan, error) {
	if err := checkInWeek(weekStart, date); err != nil {
		return nil, err
	}
	plan, err := s.loadPlan(ctx, householdID, weekStart)
	if err != nil {
		return nil, err
	}
	if _, ok := plan.Entries[date]; !ok {
		return plan, nil
	}
	delete(plan.Entries, date)
	return s.savePlan(ctx, plan)
}

// ValidatePlan evaluates the household's constraint rules against the week.
// The result is never nil.
func (s *Service) ValidatePlan(ctx context.Context, householdID, weekStart string) ([]models.Warning, error) {
	in, err := s.planInputs(ctx, householdID, weekStart)
	if err != nil {
		return nil, err
	}
	return planner.Validate(in.plan.Entries, in.recipes, in.rules, in.tags), nil
}

// ExportCalendar renders the week as an iCalendar document. A week with no
// assigned dinners yields apperr.ErrNotFound.
func (s *Service) ExportCalendar(ctx context.Context, householdID, weekStart string) (*Calendar, error) {
	in, err := s.planInputs(ctx, householdID, weekStart)
	if err != nil {
		return nil, err
	}
	if len(in.plan.Entries.Assigned()) == 0 {
		return nil, fmt.Errorf("%w: no dinners planned for week %s", apperr.ErrNotFound, weekStart)
	}
	hh, err := s.repo.GetHousehold(ctx, householdID)
	if err != nil {
		return nil, err
	}
	body := planner.Generate(in.plan.Entries, in.recipes, in.rules, in.tags, *hh, weekStart)
	return &Calendar{
		WeekStartDate: weekStart,
		Filename:      "mealprep_" + weekStart + ".ics",
		Body:          body,
	}, nil
}

type planInputs struct {
	plan    *models.WeeklyPlan
	recipes []models.Recipe
	rules   []models.Rule
	tags    []models.Tag
}

func (s *Service) planInputs(ctx context.Context, householdID, weekStart string) (*planInputs, error) {
	plan, err := s.GetPlan(ctx, householdID, weekStart)
	if err != nil {
		return nil, err
	}
	in := &planInputs{plan: plan}
	if in.recipes, err = s.repo.ListRecipes(ctx, householdID); err != nil {
		return nil, err
	}
	if in.rules, err = s.repo.ListRules(ctx, householdID); err != nil {
		return nil, err
	}
	if in.tags, err = s.repo.ListTags(ctx, householdID); err != nil {
		return nil, err
	}
	return in, nil
}

func (s *Service) loadPlan(ctx context.Context, householdID, weekStart string) (*models.WeeklyPlan, error) {
	plan, err := s.repo.GetWeeklyPlan(ctx, householdID, weekStart)
	if errors.Is(err, apperr.ErrNotFound) {
		return &models.WeeklyPlan{
			WeekStartDate: weekStart,
			Entries:       models.Entries{},
			HouseholdID:   householdID,
		}, nil
	}
	return plan, err
}

func (s *Service) savePlan(ctx context.Context, plan *models.WeeklyPlan) (*models.WeeklyPlan, error) {
	plan.UpdatedAt = s.now()
	if err := s.repo.PutWeeklyPlan(ctx, *plan); err != nil {
		return nil, err
	}
	s.publish(plan.HouseholdID, "plan.updated", plan.WeekStartDate)
	return plan, nil
}

func checkInWeek(weekStart, date string) error {
	start, end, err := weekRange(weekStart)
	if err != nil {
		return invalid(err)
	}
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", apperr.ErrInvalid)
	}
	if d.Before(start) || d.After(end) {
		return fmt.Errorf("%w: date %s is outside the week starting %s", apperr.ErrInvalid, date, weekStart)
	}
	return nil
}
