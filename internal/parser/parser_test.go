package parser

import (
	"errors"
	"testing"

	"github.com/starford/mealprep/internal/models"
)

func TestParse_YAML(t *testing.T) {
	input := []byte(`household: demo
title: Tacos
tags:
  - name: beef
    type: protein
  - weeknight
default_servings: 3
notes: |
  Warm the tortillas.
`)
	r, err := Parse("tacos.yaml", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Household != "demo" || r.Title != "Tacos" || r.DefaultServings != 3 {
		t.Errorf("got %+v", r)
	}
	if len(r.Tags) != 2 {
		t.Fatalf("tags = %v, want 2", r.Tags)
	}
	if r.Tags[0] != (TagRef{Name: "beef", Type: models.TagProtein}) {
		t.Errorf("tags[0] = %+v", r.Tags[0])
	}
	if r.Tags[1] != (TagRef{Name: "weeknight", Type: models.TagOther}) {
		t.Errorf("tags[1] = %+v", r.Tags[1])
	}
	if r.Notes != "Warm the tortillas." {
		t.Errorf("notes = %q", r.Notes)
	}
}

func TestParse_MarkdownFrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntags:\n  - {name: chicken, type: PROTEIN}\n---\n# Chicken Curry\nSimmer 20 minutes. #spicy #Chicken\n")
	r, err := Parse("curry.md", input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Chicken Curry" {
		t.Errorf("title = %q, want heading fallback", r.Title)
	}
	if len(r.Tags) != 2 || r.Tags[0].Name != "chicken" || r.Tags[1].Name != "spicy" {
		t.Errorf("tags = %+v, want chicken and spicy", r.Tags)
	}
	if r.Notes != "# Chicken Curry\nSimmer 20 minutes. #spicy #Chicken" {
		t.Errorf("notes = %q", r.Notes)
	}
}

func TestParse_MarkdownWithoutFrontmatter(t *testing.T) {
	r, err := Parse("soup.md", []byte("# Soup\nJust soup.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Soup" || len(r.Tags) != 0 {
		t.Errorf("got %+v", r)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse("x.yaml", []byte("tags: [a]\n")); !errors.Is(err, ErrNoTitle) {
		t.Errorf("missing title: err = %v", err)
	}
	if _, err := Parse("x.yaml", []byte(": invalid: yaml: {{{")); err == nil {
		t.Error("expected error for invalid YAML")
	}
	if _, err := Parse("x.md", []byte("---\ntitle: open\n")); err == nil {
		t.Error("expected error for unterminated frontmatter")
	}
	if _, err := Parse("x.txt", []byte("title: x")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestSupported(t *testing.T) {
	for name, want := range map[string]bool{
		"a.yaml": true, "b.YML": true, "c.md": true, "d.txt": false, "e": false,
	} {
		if got := Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}
