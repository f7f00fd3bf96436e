// Package planner holds the plan validation and calendar generation engines.
// Both are pure functions over household snapshots and are safe to call concurrently.
package planner

import (
	"fmt"

	"github.com/starford/mealprep/internal/models"
)

// Validate checks entries against the enabled constraint rules and reports
// entries whose recipe no longer exists. It never fails: stale references
// become warnings.
func Validate(entries models.Entries, recipes []models.Recipe, rules []models.Rule, tags []models.Tag) []models.Warning {
	recipeByID := indexRecipes(recipes)
	tagByID := indexTags(tags)
	dates := entries.Assigned()

	warnings := []models.Warning{}

	for _, rule := range rules {
		cr, ok := rule.(models.ConstraintRule)
		if !ok || !cr.Enabled {
			continue
		}
		switch cr.ConstraintType {
		case models.MaxMealsPerWeekByTag:
			if w, violated := checkMaxMealsByTag(cr, entries, dates, recipeByID, tagByID); violated {
				warnings = append(warnings, w)
			}
		}
	}

	for _, date := range dates {
		recipeID := entries[date].RecipeID
		if _, ok := recipeByID[recipeID]; ok {
			continue
		}
		warnings = append(warnings, models.Warning{
			RuleID:  models.SystemRuleID,
			Type:    models.WarningMissingRecipe,
			Message: fmt.Sprintf("Recipe missing for %s; please reselect", date),
			Details: map[string]any{
				"date":      date,
				"recipe_id": recipeID,
			},
		})
	}

	return warnings
}

// checkMaxMealsByTag counts planned dinners carrying the rule's tag. Entries
// with unknown recipes do not count; Validate reports them separately.
func checkMaxMealsByTag(
	rule models.ConstraintRule,
	entries models.Entries,
	dates []string,
	recipeByID map[string]*models.Recipe,
	tagByID map[string]*models.Tag,
) (models.Warning, bool) {
	count := 0
	for _, date := range dates {
		recipe, ok := recipeByID[entries[date].RecipeID]
		if ok && recipe.HasTag(rule.TagID) {
			count++
		}
	}
	if count <= rule.MaxCount {
		return models.Warning{}, false
	}

	tagName := rule.TagID
	if tag, ok := tagByID[rule.TagID]; ok {
		tagName = tag.Name
	}
	return models.Warning{
		RuleID:  rule.ID,
		Type:    string(models.MaxMealsPerWeekByTag),
		Message: fmt.Sprintf("Tag '%s' planned %d times > max %d", tagName, count, rule.MaxCount),
		Details: map[string]any{
			"tag_id":   rule.TagID,
			"tag_name": tagName,
			"count":    count,
			"max":      rule.MaxCount,
		},
	}, true
}

func indexRecipes(recipes []models.Recipe) map[string]*models.Recipe {
	out := make(map[string]*models.Recipe, len(recipes))
	for i := range recipes {
		out[recipes[i].ID] = &recipes[i]
	}
	return out
}

func indexTags(tags []models.Tag) map[string]*models.Tag {
	out := make(map[string]*models.Tag, len(tags))
	for i := range tags {
		out[tags[i].ID] = &tags[i]
	}
	return out
}
