package planner

import (
	"testing"

	"github.com/starford/mealprep/internal/models"
)

func beefFixtures() ([]models.Recipe, []models.Tag) {
	tags := []models.Tag{
		{ID: "beef", Name: "Beef", Type: models.TagProtein},
		{ID: "chicken", Name: "Chicken", Type: models.TagProtein},
	}
	recipes := []models.Recipe{
		{ID: "tacos", Title: "Tacos", TagIDs: []string{"beef"}, DefaultServings: 4},
		{ID: "chili", Title: "Chili", TagIDs: []string{"beef", "chicken"}, DefaultServings: 6},
		{ID: "curry", Title: "Curry", TagIDs: []string{"chicken"}, DefaultServings: 4},
	}
	return recipes, tags
}

func maxRule(id, tagID string, maxCount int, enabled bool) models.ConstraintRule {
	return models.ConstraintRule{
		RuleMeta:       models.RuleMeta{ID: id, Enabled: enabled},
		ConstraintType: models.MaxMealsPerWeekByTag,
		TagID:          tagID,
		MaxCount:       maxCount,
	}
}

func TestValidate_EmptyPlan(t *testing.T) {
	recipes, tags := beefFixtures()
	rules := []models.Rule{maxRule("r1", "beef", 0, true)}

	got := Validate(models.Entries{}, recipes, rules, tags)
	if got == nil {
		t.Fatal("warnings should be an empty slice, not nil")
	}
	if len(got) != 0 {
		t.Errorf("empty plan produced %d warnings", len(got))
	}
}

func TestValidate_MaxMealsExceeded(t *testing.T) {
	recipes, tags := beefFixtures()
	rules := []models.Rule{maxRule("r1", "beef", 2, true)}
	entries := models.Entries{
		"2024-06-10": {RecipeID: "tacos", Servings: 4},
		"2024-06-11": {RecipeID: "chili", Servings: 4},
		"2024-06-12": {RecipeID: "tacos", Servings: 2},
		"2024-06-13": {RecipeID: "curry", Servings: 4},
	}

	got := Validate(entries, recipes, rules, tags)
	if len(got) != 1 {
		t.Fatalf("got %d warnings, want 1: %+v", len(got), got)
	}
	w := got[0]
	if w.RuleID != "r1" || w.Type != "MAX_MEALS_PER_WEEK_BY_TAG" {
		t.Errorf("warning = %+v", w)
	}
	if w.Message != "Tag 'Beef' planned 3 times > max 2" {
		t.Errorf("message = %q", w.Message)
	}
	if w.Details["count"] != 3 || w.Details["max"] != 2 {
		t.Errorf("details = %+v", w.Details)
	}
	if w.Details["tag_id"] != "beef" || w.Details["tag_name"] != "Beef" {
		t.Errorf("details = %+v", w.Details)
	}
}

func TestValidate_AtLimitIsFine(t *testing.T) {
	recipes, tags := beefFixtures()
	rules := []models.Rule{maxRule("r1", "beef", 2, true)}
	entries := models.Entries{
		"2024-06-10": {RecipeID: "tacos", Servings: 4},
		"2024-06-11": {RecipeID: "chili", Servings: 4},
	}
	if got := Validate(entries, recipes, rules, tags); len(got) != 0 {
		t.Errorf("got %+v, want no warnings", got)
	}
}

func TestValidate_MPlusOne(t *testing.T) {
	recipes, tags := beefFixtures()
	for m := 0; m <= 4; m++ {
		entries := models.Entries{}
		for i := 0; i <= m; i++ {
			entries["2024-06-1"+string(rune('0'+i))] = &models.PlanEntry{RecipeID: "tacos", Servings: 1}
		}
		got := Validate(entries, recipes, []models.Rule{maxRule("r", "beef", m, true)}, tags)
		if len(got) != 1 {
			t.Fatalf("m=%d: got %d warnings", m, len(got))
		}
		if got[0].Details["count"] != m+1 {
			t.Errorf("m=%d: count = %v", m, got[0].Details["count"])
		}
	}
}

func TestValidate_DisabledAndActionRulesIgnored(t *testing.T) {
	recipes, tags := beefFixtures()
	rules := []models.Rule{
		maxRule("off", "beef", 0, false),
		models.ActionRule{
			RuleMeta:        models.RuleMeta{ID: "act", Enabled: true},
			ActionType:      models.RemindOffsetDaysBeforeDinner,
			TargetType:      models.TargetTag,
			TagID:           "beef",
			OffsetDays:      -1,
			TimeLocal:       "10:00",
			MessageTemplate: "Thaw",
		},
	}
	entries := models.Entries{
		"2024-06-10": {RecipeID: "tacos", Servings: 4},
		"2024-06-11": {RecipeID: "tacos", Servings: 4},
	}
	if got := Validate(entries, recipes, rules, tags); len(got) != 0 {
		t.Errorf("got %+v, want no warnings", got)
	}
}

func TestValidate_UnknownTagFallsBackToID(t *testing.T) {
	recipes := []models.Recipe{{ID: "x", Title: "X", TagIDs: []string{"ghost"}}}
	entries := models.Entries{"2024-06-10": {RecipeID: "x", Servings: 1}}
	got := Validate(entries, recipes, []models.Rule{maxRule("r", "ghost", 0, true)}, nil)
	if len(got) != 1 {
		t.Fatalf("got %d warnings", len(got))
	}
	if got[0].Message != "Tag 'ghost' planned 1 times > max 0" {
		t.Errorf("message = %q", got[0].Message)
	}
	if got[0].Details["tag_name"] != "ghost" {
		t.Errorf("tag_name = %v", got[0].Details["tag_name"])
	}
}

func TestValidate_MissingRecipe(t *testing.T) {
	recipes, tags := beefFixtures()
	rules := []models.Rule{maxRule("r1", "beef", 0, true)}
	entries := models.Entries{
		"2024-06-12": {RecipeID: "gone", Servings: 2},
		"2024-06-10": {RecipeID: "tacos", Servings: 4},
		"2024-06-11": nil,
	}

	got := Validate(entries, recipes, rules, tags)
	if len(got) != 2 {
		t.Fatalf("got %d warnings, want 2: %+v", len(got), got)
	}
	// Rule warnings come first; the missing recipe does not count toward the tag.
	if got[0].Type != "MAX_MEALS_PER_WEEK_BY_TAG" || got[0].Details["count"] != 1 {
		t.Errorf("first warning = %+v", got[0])
	}
	miss := got[1]
	if miss.RuleID != "system" || miss.Type != "MISSING_RECIPE" {
		t.Errorf("missing warning = %+v", miss)
	}
	if miss.Message != "Recipe missing for 2024-06-12; please reselect" {
		t.Errorf("message = %q", miss.Message)
	}
	if miss.Details["date"] != "2024-06-12" || miss.Details["recipe_id"] != "gone" {
		t.Errorf("details = %+v", miss.Details)
	}
}

func TestValidate_MissingRecipesInDateOrder(t *testing.T) {
	entries := models.Entries{
		"2024-06-14": {RecipeID: "b", Servings: 1},
		"2024-06-10": {RecipeID: "a", Servings: 1},
	}
	got := Validate(entries, nil, nil, nil)
	if len(got) != 2 {
		t.Fatalf("got %d warnings", len(got))
	}
	if got[0].Details["date"] != "2024-06-10" || got[1].Details["date"] != "2024-06-14" {
		t.Errorf("order = %v, %v", got[0].Details["date"], got[1].Details["date"])
	}
}
