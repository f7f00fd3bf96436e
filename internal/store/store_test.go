package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "mealprep-store-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM items`).Scan(&count); err != nil {
		t.Fatalf("items table missing: %v", err)
	}
}

func TestHouseholdRoundTrip(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	h := models.Household{ID: "hh1", Name: "Home", Timezone: "Europe/Paris", DinnerTimeLocal: "19:00"}
	if err := db.CreateHousehold(ctx, h); err != nil {
		t.Fatalf("CreateHousehold: %v", err)
	}
	got, err := db.GetHousehold(ctx, "hh1")
	if err != nil {
		t.Fatalf("GetHousehold: %v", err)
	}
	if got.Timezone != "Europe/Paris" || got.DinnerTimeLocal != "19:00" {
		t.Errorf("household = %+v", got)
	}

	if _, err := db.GetHousehold(ctx, "nope"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("missing household err = %v", err)
	}
	if err := db.UpdateHousehold(ctx, models.Household{ID: "nope"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update missing household err = %v", err)
	}
}

func TestUserEmailIsCaseInsensitiveAndUnique(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	u := models.User{ID: "u1", Email: "Cook@Example.com", PasswordHash: "hash", HouseholdID: "hh1"}
	if err := db.CreateUser(ctx, u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	got, err := db.GetUserByEmail(ctx, "cook@example.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "u1" || got.PasswordHash != "hash" {
		t.Errorf("user = %+v", got)
	}

	dup := models.User{ID: "u2", Email: "cook@example.com", HouseholdID: "hh2"}
	if err := db.CreateUser(ctx, dup); !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate email err = %v", err)
	}
}

func TestTagNamesUniquePerHousehold(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if err := db.PutTag(ctx, models.Tag{ID: "t1", Name: "Beef", Type: models.TagProtein, HouseholdID: "hh1"}); err != nil {
		t.Fatalf("PutTag: %v", err)
	}
	err := db.PutTag(ctx, models.Tag{ID: "t2", Name: "BEEF", Type: models.TagProtein, HouseholdID: "hh1"})
	if !errors.Is(err, apperr.ErrAlreadyExists) {
		t.Errorf("duplicate tag err = %v", err)
	}
	// Another household may reuse the name.
	if err := db.PutTag(ctx, models.Tag{ID: "t3", Name: "beef", Type: models.TagProtein, HouseholdID: "hh2"}); err != nil {
		t.Errorf("other household PutTag: %v", err)
	}
	// Renaming a tag to its own name is an update, not a clash.
	if err := db.PutTag(ctx, models.Tag{ID: "t1", Name: "beef", Type: models.TagProtein, HouseholdID: "hh1"}); err != nil {
		t.Errorf("update PutTag: %v", err)
	}

	tags, err := db.ListTags(ctx, "hh1")
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "beef" {
		t.Errorf("tags = %+v", tags)
	}
}

func TestRecipesListInCreationOrder(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		if err := db.PutRecipe(ctx, models.Recipe{ID: id, Title: id, TagIDs: []string{"x"}, HouseholdID: "hh1"}); err != nil {
			t.Fatalf("PutRecipe: %v", err)
		}
	}
	// Updating keeps the original position.
	_ = db.PutRecipe(ctx, models.Recipe{ID: "c", Title: "C2", TagIDs: []string{"x"}, HouseholdID: "hh1"})

	recipes, err := db.ListRecipes(ctx, "hh1")
	if err != nil {
		t.Fatalf("ListRecipes: %v", err)
	}
	if len(recipes) != 3 || recipes[0].ID != "c" || recipes[0].Title != "C2" || recipes[2].ID != "b" {
		t.Errorf("recipes = %+v", recipes)
	}

	if err := db.DeleteRecipe(ctx, "hh1", "a"); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	if err := db.DeleteRecipe(ctx, "hh1", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
	if _, err := db.GetRecipe(ctx, "hh1", "a"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("get deleted err = %v", err)
	}
}

func TestRulesKeepTheirVariant(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)
	constraint := models.ConstraintRule{
		RuleMeta:       models.RuleMeta{ID: "r1", HouseholdID: "hh1", Enabled: true, CreatedAt: now, UpdatedAt: now},
		ConstraintType: models.MaxMealsPerWeekByTag,
		TagID:          "beef",
		MaxCount:       2,
	}
	action := models.ActionRule{
		RuleMeta:        models.RuleMeta{ID: "r2", HouseholdID: "hh1", Enabled: false, CreatedAt: now, UpdatedAt: now},
		ActionType:      models.RemindOffsetDaysBeforeDinner,
		TargetType:      models.TargetRecipe,
		RecipeID:        "tacos",
		OffsetDays:      -1,
		TimeLocal:       "10:00",
		MessageTemplate: "Thaw {recipe_title}",
	}
	if err := db.PutRule(ctx, constraint); err != nil {
		t.Fatalf("PutRule constraint: %v", err)
	}
	if err := db.PutRule(ctx, action); err != nil {
		t.Fatalf("PutRule action: %v", err)
	}

	rules, err := db.ListRules(ctx, "hh1")
	if err != nil {
		t.Fatalf("ListRules: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("len(rules) = %d", len(rules))
	}
	if _, ok := rules[0].(models.ConstraintRule); !ok {
		t.Errorf("rules[0] = %T", rules[0])
	}
	got, ok := rules[1].(models.ActionRule)
	if !ok {
		t.Fatalf("rules[1] = %T", rules[1])
	}
	if got.RecipeID != "tacos" || got.IsEnabled() || !got.CreatedAt.Equal(now) {
		t.Errorf("action = %+v", got)
	}

	one, err := db.GetRule(ctx, "hh1", "r1")
	if err != nil {
		t.Fatalf("GetRule: %v", err)
	}
	if one.RuleID() != "r1" || one.Kind() != models.KindConstraint {
		t.Errorf("GetRule = %+v", one)
	}
}

func TestWeeklyPlanAbsentThenSaved(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	if _, err := db.GetWeeklyPlan(ctx, "hh1", "2024-06-10"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("absent plan err = %v", err)
	}

	plan := models.WeeklyPlan{
		WeekStartDate: "2024-06-10",
		HouseholdID:   "hh1",
		Entries: models.Entries{
			"2024-06-10": {RecipeID: "tacos", Servings: 4},
			"2024-06-11": nil,
		},
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.PutWeeklyPlan(ctx, plan); err != nil {
		t.Fatalf("PutWeeklyPlan: %v", err)
	}
	got, err := db.GetWeeklyPlan(ctx, "hh1", "2024-06-10")
	if err != nil {
		t.Fatalf("GetWeeklyPlan: %v", err)
	}
	if e := got.Entries["2024-06-10"]; e == nil || e.RecipeID != "tacos" || e.Servings != 4 {
		t.Errorf("entry = %+v", e)
	}
	if e, ok := got.Entries["2024-06-11"]; !ok || e != nil {
		t.Errorf("explicit empty entry lost: %v %v", e, ok)
	}
}

func TestCatalogFiles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	f := CatalogFile{Path: "tacos.yaml", Checksum: "abc", HouseholdID: "hh1", RecipeID: "cat-1"}
	if err := db.PutCatalogFile(ctx, f); err != nil {
		t.Fatalf("PutCatalogFile: %v", err)
	}
	files, err := db.CatalogFiles(ctx)
	if err != nil {
		t.Fatalf("CatalogFiles: %v", err)
	}
	if files["tacos.yaml"] != f {
		t.Errorf("files = %+v", files)
	}
	if err := db.DeleteCatalogFile(ctx, "tacos.yaml"); err != nil {
		t.Fatalf("DeleteCatalogFile: %v", err)
	}
	if err := db.DeleteCatalogFile(ctx, "tacos.yaml"); err != nil {
		t.Errorf("deleting twice should be fine: %v", err)
	}
}
