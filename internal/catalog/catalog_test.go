package catalog

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/store"
	"github.com/starford/mealprep/internal/testutil"
)

const tacosDoc = `title: Tacos
tags:
  - {name: beef, type: PROTEIN}
  - weeknight
default_servings: 3
`

type catalogEnv struct {
	dir string
	svc *mealservice.Service
	db  *store.DB
	cat *Catalog
}

func newEnv(t *testing.T) *catalogEnv {
	t.Helper()
	dir, src := testutil.TestCatalog(t)
	svc, db := testutil.TestService(t)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return &catalogEnv{
		dir: dir,
		svc: svc,
		db:  db,
		cat: New(svc, db, src, testutil.Household, logger),
	}
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func (e *catalogEnv) write(t *testing.T, rel, content string) {
	t.Helper()
	abs := filepath.Join(e.dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *catalogEnv) recipe(path string) (string, error) {
	r, err := e.svc.GetRecipe(context.Background(), testutil.Household, RecipeID(path))
	if err != nil {
		return "", err
	}
	return r.Title, nil
}

func TestRecipeIDIsStable(t *testing.T) {
	if RecipeID("a.yaml") != RecipeID("a.yaml") {
		t.Error("RecipeID not deterministic")
	}
	if RecipeID("a.yaml") == RecipeID("b.yaml") {
		t.Error("RecipeID collides for different paths")
	}
}

func TestSyncImportsTagsAndRecipes(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.write(t, "tacos.yaml", tacosDoc)
	env.write(t, "dinners/curry.md", "---\ntags: [chicken]\n---\n# Curry\nSimmer. #spicy\n")
	env.write(t, "broken.yaml", "tags: [x]\n")

	var events []string
	if err := env.cat.Sync(ctx, func(kind, path string) { events = append(events, kind+":"+path) }); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("events = %v, want two created", events)
	}

	r, err := env.svc.GetRecipe(ctx, testutil.Household, RecipeID("tacos.yaml"))
	if err != nil {
		t.Fatalf("tacos not imported: %v", err)
	}
	if r.DefaultServings != 3 || len(r.TagIDs) != 2 {
		t.Errorf("tacos = %+v", r)
	}
	if title, err := env.recipe("dinners/curry.md"); err != nil || title != "Curry" {
		t.Errorf("curry = %q, %v", title, err)
	}

	tags, _ := env.svc.ListTags(ctx, testutil.Household)
	if len(tags) != 4 {
		t.Errorf("tags = %+v, want beef weeknight chicken spicy", tags)
	}

	files, _ := env.db.CatalogFiles(ctx)
	if _, ok := files["broken.yaml"]; ok {
		t.Error("broken document recorded as imported")
	}
}

func TestSyncIsIdempotentAndTracksChanges(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.write(t, "tacos.yaml", tacosDoc)
	_ = env.cat.Sync(ctx, nil)

	var events []string
	cb := func(kind, path string) { events = append(events, kind+":"+path) }
	_ = env.cat.Sync(ctx, cb)
	if len(events) != 0 {
		t.Errorf("unchanged sync events = %v", events)
	}

	env.write(t, "tacos.yaml", "title: Fish Tacos\ntags: [fish]\n")
	_ = env.cat.Sync(ctx, cb)
	if len(events) != 1 || events[0] != "updated:tacos.yaml" {
		t.Errorf("events = %v", events)
	}
	if title, _ := env.recipe("tacos.yaml"); title != "Fish Tacos" {
		t.Errorf("title = %q", title)
	}

	_ = os.Remove(filepath.Join(env.dir, "tacos.yaml"))
	_ = env.cat.Sync(ctx, cb)
	if _, err := env.recipe("tacos.yaml"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("recipe after file removal: err = %v", err)
	}
	files, _ := env.db.CatalogFiles(ctx)
	if len(files) != 0 {
		t.Errorf("catalog files = %v", files)
	}
}

func TestImportIfChangedSkipsSameContent(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	env.write(t, "tacos.yaml", tacosDoc)

	var events []string
	cb := func(kind, path string) { events = append(events, kind+":"+path) }
	env.cat.importIfChanged(ctx, "tacos.yaml", cb)
	env.cat.importIfChanged(ctx, "tacos.yaml", cb)
	if len(events) != 1 || events[0] != "created:tacos.yaml" {
		t.Errorf("events = %v", events)
	}

	env.write(t, "tacos.yaml", tacosDoc+"notes: spicy\n")
	env.cat.importIfChanged(ctx, "tacos.yaml", cb)
	if len(events) != 2 || events[1] != "updated:tacos.yaml" {
		t.Errorf("events = %v", events)
	}
}

func TestImportMovesRecipeBetweenHouseholds(t *testing.T) {
	env := newEnv(t)
	ctx := context.Background()
	if _, err := env.cat.Import(ctx, "soup.yaml", []byte("title: Soup\ntags: [veg]\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := env.cat.Import(ctx, "soup.yaml", []byte("household: other\ntitle: Soup\ntags: [veg]\n")); err != nil {
		t.Fatal(err)
	}
	if _, err := env.recipe("soup.yaml"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("old household still has the recipe: %v", err)
	}
	if _, err := env.svc.GetRecipe(ctx, "other", RecipeID("soup.yaml")); err != nil {
		t.Errorf("new household missing recipe: %v", err)
	}
}

func TestImportWithoutHousehold(t *testing.T) {
	env := newEnv(t)
	env.cat.defaultHousehold = ""
	if _, err := env.cat.Import(context.Background(), "x.yaml", []byte(tacosDoc)); err == nil {
		t.Error("expected error without a household")
	}
}

func TestWatcher_NewFileImported(t *testing.T) {
	env := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string
	go env.cat.Watch(ctx, func(kind, path string) {
		mu.Lock()
		events = append(events, kind+":"+path)
		mu.Unlock()
	})
	time.Sleep(100 * time.Millisecond)

	_ = os.WriteFile(filepath.Join(env.dir, "new.yaml"), []byte(tacosDoc), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := env.recipe("new.yaml")
		return err == nil
	}, "new file not imported by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "created:new.yaml" {
				return true
			}
		}
		return false
	}, "expected created:new.yaml callback")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	env := newEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go env.cat.Watch(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	sub := filepath.Join(env.dir, "subdir")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.yaml"), []byte(tacosDoc), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := env.recipe("subdir/deep.yaml")
		return err == nil
	}, "file in new subdir not imported by watcher")
}

func TestWatcher_DeleteRemovesRecipe(t *testing.T) {
	env := newEnv(t)
	env.write(t, "del.yaml", tacosDoc)
	_ = env.cat.Sync(context.Background(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.cat.Watch(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Remove(filepath.Join(env.dir, "del.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := env.recipe("del.yaml")
		return errors.Is(err, apperr.ErrNotFound)
	}, "deleted file's recipe still present")
}

func TestWatcher_RenameReconciles(t *testing.T) {
	env := newEnv(t)
	env.write(t, "old.yaml", tacosDoc)
	_ = env.cat.Sync(context.Background(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go env.cat.Watch(ctx, nil)
	time.Sleep(100 * time.Millisecond)

	_ = os.Rename(filepath.Join(env.dir, "old.yaml"), filepath.Join(env.dir, "renamed.yaml"))

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, oldErr := env.recipe("old.yaml")
		_, newErr := env.recipe("renamed.yaml")
		return errors.Is(oldErr, apperr.ErrNotFound) && newErr == nil
	}, "rename not reconciled")
}
