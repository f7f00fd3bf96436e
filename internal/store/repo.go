package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
)

// Repository is the persistence surface used by the meal service.
// Consumers should depend on this interface rather than *DB.
type Repository interface {
	CreateHousehold(ctx context.Context, h models.Household) error
	GetHousehold(ctx context.Context, id string) (*models.Household, error)
	UpdateHousehold(ctx context.Context, h models.Household) error
	DeleteHousehold(ctx context.Context, id string) error

	CreateUser(ctx context.Context, u models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	ListTags(ctx context.Context, householdID string) ([]models.Tag, error)
	GetTag(ctx context.Context, householdID, tagID string) (*models.Tag, error)
	PutTag(ctx context.Context, t models.Tag) error
	DeleteTag(ctx context.Context, householdID, tagID string) error

	ListRecipes(ctx context.Context, householdID string) ([]models.Recipe, error)
	GetRecipe(ctx context.Context, householdID, recipeID string) (*models.Recipe, error)
	PutRecipe(ctx context.Context, r models.Recipe) error
	DeleteRecipe(ctx context.Context, householdID, recipeID string) error

	ListRules(ctx context.Context, householdID string) ([]models.Rule, error)
	GetRule(ctx context.Context, householdID, ruleID string) (models.Rule, error)
	PutRule(ctx context.Context, r models.Rule) error
	DeleteRule(ctx context.Context, householdID, ruleID string) error

	GetWeeklyPlan(ctx context.Context, householdID, weekStart string) (*models.WeeklyPlan, error)
	PutWeeklyPlan(ctx context.Context, p models.WeeklyPlan) error

	CatalogFiles(ctx context.Context) (map[string]CatalogFile, error)
	PutCatalogFile(ctx context.Context, f CatalogFile) error
	DeleteCatalogFile(ctx context.Context, path string) error

	Close() error
}

// Verify *DB satisfies Repository at compile time.
var _ Repository = (*DB)(nil)

// CatalogFile records which recipe a catalog document was imported as.
type CatalogFile struct {
	Path        string `json:"path"`
	Checksum    string `json:"checksum"`
	HouseholdID string `json:"household_id"`
	RecipeID    string `json:"recipe_id"`
}

// CreateHousehold stores a new household.
func (db *DB) CreateHousehold(ctx context.Context, h models.Household) error {
	return db.put(ctx, item{pk: householdPK(h.ID), sk: householdPK(h.ID), kind: kindHousehold}, h)
}

// GetHousehold returns the household or apperr.ErrNotFound.
func (db *DB) GetHousehold(ctx context.Context, id string) (*models.Household, error) {
	var h models.Household
	if err := db.get(ctx, householdPK(id), householdPK(id), &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// UpdateHousehold replaces a stored household.
func (db *DB) UpdateHousehold(ctx context.Context, h models.Household) error {
	if _, err := db.GetHousehold(ctx, h.ID); err != nil {
		return err
	}
	return db.CreateHousehold(ctx, h)
}

// DeleteHousehold removes the household record. Items it owns are left in place.
func (db *DB) DeleteHousehold(ctx context.Context, id string) error {
	return db.del(ctx, householdPK(id), householdPK(id))
}

// CreateUser stores a user. Emails are unique ignoring case.
func (db *DB) CreateUser(ctx context.Context, u models.User) error {
	rec := userRecord{User: u, PasswordHash: u.PasswordHash}
	return db.put(ctx, item{pk: userPK(u.ID), sk: userPK(u.ID), kind: kindUser, lookup: strings.ToLower(u.Email)}, rec)
}

// GetUserByEmail looks a user up by email, ignoring case.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var rec userRecord
	if err := db.getByLookup(ctx, kindUser, strings.ToLower(email), &rec); err != nil {
		return nil, err
	}
	u := rec.User
	u.PasswordHash = rec.PasswordHash
	return &u, nil
}

// userRecord persists the password hash that models.User hides from JSON.
type userRecord struct {
	models.User
	PasswordHash string `json:"password_hash"`
}

// ListTags returns the household's tags in creation order.
func (db *DB) ListTags(ctx context.Context, householdID string) ([]models.Tag, error) {
	bodies, err := db.query(ctx, householdPK(householdID), "TAG#")
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Tag](bodies)
}

// GetTag returns one tag or apperr.ErrNotFound.
func (db *DB) GetTag(ctx context.Context, householdID, tagID string) (*models.Tag, error) {
	var t models.Tag
	if err := db.get(ctx, householdPK(householdID), "TAG#"+tagID, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// PutTag inserts or updates a tag. A name already used by another tag of the
// household yields apperr.ErrAlreadyExists.
func (db *DB) PutTag(ctx context.Context, t models.Tag) error {
	return db.put(ctx, item{
		pk:     householdPK(t.HouseholdID),
		sk:     "TAG#" + t.ID,
		kind:   kindTag,
		lookup: strings.ToLower(t.Name),
	}, t)
}

// DeleteTag removes a tag.
func (db *DB) DeleteTag(ctx context.Context, householdID, tagID string) error {
	return db.del(ctx, householdPK(householdID), "TAG#"+tagID)
}

// ListRecipes returns the household's recipes in creation order.
func (db *DB) ListRecipes(ctx context.Context, householdID string) ([]models.Recipe, error) {
	bodies, err := db.query(ctx, householdPK(householdID), "RECIPE#")
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Recipe](bodies)
}

// GetRecipe returns one recipe or apperr.ErrNotFound.
func (db *DB) GetRecipe(ctx context.Context, householdID, recipeID string) (*models.Recipe, error) {
	var r models.Recipe
	if err := db.get(ctx, householdPK(householdID), "RECIPE#"+recipeID, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// PutRecipe inserts or updates a recipe.
func (db *DB) PutRecipe(ctx context.Context, r models.Recipe) error {
	return db.put(ctx, item{
		pk:   householdPK(r.HouseholdID),
		sk:   "RECIPE#" + r.ID,
		kind: kindRecipe,
	}, r)
}

// DeleteRecipe removes a recipe. Plans that reference it are left alone;
// validation reports them as missing.
func (db *DB) DeleteRecipe(ctx context.Context, householdID, recipeID string) error {
	return db.del(ctx, householdPK(householdID), "RECIPE#"+recipeID)
}

// ListRules returns the household's rules in creation order.
func (db *DB) ListRules(ctx context.Context, householdID string) ([]models.Rule, error) {
	bodies, err := db.query(ctx, householdPK(householdID), "RULE#")
	if err != nil {
		return nil, err
	}
	out := make([]models.Rule, 0, len(bodies))
	for _, b := range bodies {
		r, err := models.DecodeRule(b)
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		out = append(out, r)
	}
	return out, nil
}

// GetRule returns one rule or apperr.ErrNotFound.
func (db *DB) GetRule(ctx context.Context, householdID, ruleID string) (models.Rule, error) {
	var raw json.RawMessage
	if err := db.get(ctx, householdPK(householdID), "RULE#"+ruleID, &raw); err != nil {
		return nil, err
	}
	r, err := models.DecodeRule(raw)
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return r, nil
}

// PutRule inserts or updates a rule.
func (db *DB) PutRule(ctx context.Context, r models.Rule) error {
	m := r.Meta()
	return db.put(ctx, item{
		pk:     householdPK(m.HouseholdID),
		sk:     "RULE#" + m.ID,
		kind:   kindRule,
		lookup: string(r.Kind()),
	}, r)
}

// DeleteRule removes a rule.
func (db *DB) DeleteRule(ctx context.Context, householdID, ruleID string) error {
	return db.del(ctx, householdPK(householdID), "RULE#"+ruleID)
}

// GetWeeklyPlan returns the stored plan or apperr.ErrNotFound if the week was never saved.
func (db *DB) GetWeeklyPlan(ctx context.Context, householdID, weekStart string) (*models.WeeklyPlan, error) {
	var p models.WeeklyPlan
	if err := db.get(ctx, householdPK(householdID), "WEEK#"+weekStart, &p); err != nil {
		return nil, err
	}
	if p.Entries == nil {
		p.Entries = models.Entries{}
	}
	return &p, nil
}

// PutWeeklyPlan replaces the stored plan for the week.
func (db *DB) PutWeeklyPlan(ctx context.Context, p models.WeeklyPlan) error {
	return db.put(ctx, item{
		pk:   householdPK(p.HouseholdID),
		sk:   "WEEK#" + p.WeekStartDate,
		kind: kindPlan,
	}, p)
}

// CatalogFiles returns every imported catalog document keyed by path.
func (db *DB) CatalogFiles(ctx context.Context) (map[string]CatalogFile, error) {
	bodies, err := db.query(ctx, catalogPK, "FILE#")
	if err != nil {
		return nil, err
	}
	files, err := decodeAll[CatalogFile](bodies)
	if err != nil {
		return nil, err
	}
	out := make(map[string]CatalogFile, len(files))
	for _, f := range files {
		out[f.Path] = f
	}
	return out, nil
}

// PutCatalogFile records an imported catalog document.
func (db *DB) PutCatalogFile(ctx context.Context, f CatalogFile) error {
	return db.put(ctx, item{pk: catalogPK, sk: "FILE#" + f.Path, kind: kindCatalog, lookup: f.RecipeID}, f)
}

// DeleteCatalogFile forgets a catalog document. Missing entries are not an error.
func (db *DB) DeleteCatalogFile(ctx context.Context, path string) error {
	if err := db.del(ctx, catalogPK, "FILE#"+path); err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}
