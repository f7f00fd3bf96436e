package models

import (
	"sort"
	"time"
)

// DateLayout is the layout of every plan date (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// PlanEntry assigns a recipe and a serving count to one date.
type PlanEntry struct {
	RecipeID string `json:"recipe_id"`
	Servings int    `json:"servings"`
}

// Entries maps a date to its entry. A nil entry, a missing key, or an entry
// without a recipe id all mean the date is unassigned.
type Entries map[string]*PlanEntry

// Assigned returns the dates that carry a recipe, in ascending order.
func (e Entries) Assigned() []string {
	dates := make([]string, 0, len(e))
	for date, entry := range e {
		if entry == nil || entry.RecipeID == "" {
			continue
		}
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates
}

// WeeklyPlan is a household's plan for the week starting on WeekStartDate (a Monday).
type WeeklyPlan struct {
	WeekStartDate string    `json:"week_start_date"`
	Entries       Entries   `json:"entries"`
	HouseholdID   string    `json:"household_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Warning is a problem found when validating a plan.
type Warning struct {
	RuleID  string         `json:"rule_id"`
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// Warning types not tied to a constraint kind.
const (
	WarningMissingRecipe = "MISSING_RECIPE"
	SystemRuleID         = "system"
)
