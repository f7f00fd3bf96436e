package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/mealprep/internal/catalog"
	"github.com/starford/mealprep/internal/mealservice"
	"github.com/starford/mealprep/internal/store"
)

const week = "2025-01-06"

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.SQLite.Path = filepath.Join(dir, "mealprep.db")
	cfg.Catalog.Path = filepath.Join(dir, "recipes")
	if err := os.MkdirAll(cfg.Catalog.Path, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Catalog.Path, "tacos.yaml"), []byte(
		"title: Tacos\ntags:\n  - {name: beef, type: PROTEIN}\ndefault_servings: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func quietOpts(cfg *Config) []Option {
	return []Option{WithConfig(cfg), WithLogOutput(io.Discard)}
}

// planTacos books the catalog recipe on the given dates through a second
// connection, the way another process would.
func planTacos(t *testing.T, cfg *Config, dates ...string) {
	t.Helper()
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	svc := mealservice.NewService(db)
	for _, d := range dates {
		in := mealservice.EntryInput{Date: d, RecipeID: catalog.RecipeID("tacos.yaml"), Servings: 3}
		if _, err := svc.SetEntry(context.Background(), cfg.Auth.DefaultHousehold, week, in); err != nil {
			t.Fatalf("set entry %s: %v", d, err)
		}
	}
}

func TestValidatePlanCommand(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	var buf bytes.Buffer
	if err := ValidatePlan(ctx, PlanRequest{Week: week}, &buf, quietOpts(cfg)...); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !strings.Contains(buf.String(), `"warnings": []`) {
		t.Errorf("output = %s", buf.String())
	}

	planTacos(t, cfg, "2025-01-06")

	buf.Reset()
	if err := ValidatePlan(ctx, PlanRequest{Week: week}, &buf, quietOpts(cfg)...); err != nil {
		t.Fatalf("validate: %v", err)
	}
	var got struct {
		Warnings []json.RawMessage `json:"warnings"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("warnings = %s", buf.String())
	}
}

func TestValidatePlanCommand_RejectsNonMonday(t *testing.T) {
	cfg := testConfig(t)
	err := ValidatePlan(context.Background(), PlanRequest{Week: "2025-01-07"}, io.Discard, quietOpts(cfg)...)
	if err == nil {
		t.Fatal("expected error for a week that does not start on Monday")
	}
}

func TestExportCalendarCommand(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()
	outDir := t.TempDir()

	if _, err := ExportCalendar(ctx, PlanRequest{Week: week}, outDir, quietOpts(cfg)...); err == nil {
		t.Fatal("expected error exporting an empty week")
	}

	planTacos(t, cfg, "2025-01-06", "2025-01-08")

	path, err := ExportCalendar(ctx, PlanRequest{Week: week}, outDir, quietOpts(cfg)...)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if filepath.Base(path) != "mealprep_2025-01-06.ics" {
		t.Errorf("path = %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(string(data), "SUMMARY:Dinner: Tacos"); n != 2 {
		t.Errorf("dinner events = %d, want 2\n%s", n, data)
	}

	custom := filepath.Join(outDir, "week.ics")
	if path, err := ExportCalendar(ctx, PlanRequest{Week: week}, custom, quietOpts(cfg)...); err != nil || path != custom {
		t.Errorf("path = %s, err = %v", path, err)
	}
}

func TestCommandsRequireConfig(t *testing.T) {
	if err := ValidatePlan(context.Background(), PlanRequest{Week: week}, io.Discard); err == nil {
		t.Fatal("expected error without config")
	}
}
