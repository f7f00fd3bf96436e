// Package catalog imports recipe documents from a directory into the store and
// keeps them in step with the files on disk.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/checksum"
	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/models"
	"github.com/starford/mealprep/internal/parser"
	"github.com/starford/mealprep/internal/storage"
	"github.com/starford/mealprep/internal/store"
)

// Importer is the subset of the meal service the catalog writes through.
type Importer interface {
	EnsureHousehold(ctx context.Context, id, name string) (*models.Household, error)
	FindOrCreateTag(ctx context.Context, householdID string, in mealservice.TagInput) (*models.Tag, error)
	PutRecipeWithID(ctx context.Context, householdID, recipeID string, in mealservice.RecipeInput) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, householdID, recipeID string) error
}

// FileIndex remembers which recipe each document was imported as.
type FileIndex interface {
	CatalogFiles(ctx context.Context) (map[string]store.CatalogFile, error)
	PutCatalogFile(ctx context.Context, f store.CatalogFile) error
	DeleteCatalogFile(ctx context.Context, path string) error
}

// EventCallback is called after a catalog change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, path string)

// Catalog imports documents from src.
type Catalog struct {
	svc              Importer
	files            FileIndex
	src              storage.Provider
	defaultHousehold string
	logger           *slog.Logger
}

// New creates a Catalog. Documents without a household field are imported
// into defaultHousehold; when that is empty they are skipped.
func New(svc Importer, files FileIndex, src storage.Provider, defaultHousehold string, logger *slog.Logger) *Catalog {
	return &Catalog{
		svc:              svc,
		files:            files,
		src:              src,
		defaultHousehold: defaultHousehold,
		logger:           logger,
	}
}

// RecipeID derives a stable recipe id from a document path.
func RecipeID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("mealprep-catalog:"+path)).String()
}

// Import parses data and upserts its tags and recipe.
// It reports whether the document was new to the catalog.
func (c *Catalog) Import(ctx context.Context, path string, data []byte) (bool, error) {
	doc, err := parser.Parse(path, data)
	if err != nil {
		return false, err
	}
	hh := doc.Household
	if hh == "" {
		hh = c.defaultHousehold
	}
	if hh == "" {
		return false, fmt.Errorf("catalog: %s: no household", path)
	}

	known, err := c.files.CatalogFiles(ctx)
	if err != nil {
		return false, err
	}
	prev, existed := known[path]
	if existed && prev.HouseholdID != hh {
		if err := c.deleteRecipe(ctx, prev); err != nil {
			return false, err
		}
	}

	if _, err := c.svc.EnsureHousehold(ctx, hh, ""); err != nil {
		return false, err
	}
	tagIDs := make([]string, 0, len(doc.Tags))
	for _, ref := range doc.Tags {
		tag, err := c.svc.FindOrCreateTag(ctx, hh, mealservice.TagInput{Name: ref.Name, Type: ref.Type})
		if err != nil {
			return false, fmt.Errorf("catalog: %s: tag %q: %w", path, ref.Name, err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}
	recipe, err := c.svc.PutRecipeWithID(ctx, hh, RecipeID(path), mealservice.RecipeInput{
		Title:           doc.Title,
		TagIDs:          tagIDs,
		DefaultServings: doc.DefaultServings,
		Notes:           doc.Notes,
	})
	if err != nil {
		return false, fmt.Errorf("catalog: %s: %w", path, err)
	}
	err = c.files.PutCatalogFile(ctx, store.CatalogFile{
		Path:        path,
		Checksum:    checksum.Sum(data),
		HouseholdID: hh,
		RecipeID:    recipe.ID,
	})
	return !existed, err
}

// Remove deletes the recipe imported from path. Unknown paths are ignored.
func (c *Catalog) Remove(ctx context.Context, path string) (bool, error) {
	known, err := c.files.CatalogFiles(ctx)
	if err != nil {
		return false, err
	}
	f, ok := known[path]
	if !ok {
		return false, nil
	}
	if err := c.deleteRecipe(ctx, f); err != nil {
		return false, err
	}
	return true, c.files.DeleteCatalogFile(ctx, path)
}

func (c *Catalog) deleteRecipe(ctx context.Context, f store.CatalogFile) error {
	err := c.svc.DeleteRecipe(ctx, f.HouseholdID, f.RecipeID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	return nil
}
