// Package parser reads recipe catalog documents: plain YAML files, or Markdown
// files whose YAML frontmatter holds the recipe fields and whose body holds the notes.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/mealprep/internal/models"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// ErrNoTitle is returned for documents without a title.
var ErrNoTitle = errors.New("parser: recipe has no title")

// TagRef names a tag by name and type. In YAML it is either a bare name
// (type OTHER) or a mapping with name and type.
type TagRef struct {
	Name string         `yaml:"name"`
	Type models.TagType `yaml:"type"`
}

// UnmarshalYAML accepts a scalar or a mapping.
func (t *TagRef) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		t.Name = strings.TrimSpace(n.Value)
		t.Type = models.TagOther
		return nil
	}
	type plain TagRef
	var p plain
	if err := n.Decode(&p); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(p.Name)
	p.Type = models.TagType(strings.ToUpper(string(p.Type)))
	if p.Type == "" {
		p.Type = models.TagOther
	}
	*t = TagRef(p)
	return nil
}

// Recipe is a parsed catalog document.
type Recipe struct {
	Household       string   `yaml:"household"`
	Title           string   `yaml:"title"`
	Tags            []TagRef `yaml:"tags"`
	DefaultServings int      `yaml:"default_servings"`
	Notes           string   `yaml:"notes"`
}

// Supported reports whether name has a catalog document extension.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml", ".md":
		return true
	}
	return false
}

// Parse decodes the document; the file extension of name selects the format.
func Parse(name string, data []byte) (*Recipe, error) {
	var (
		r   *Recipe
		err error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md":
		r, err = parseMarkdown(data)
	case ".yaml", ".yml":
		r = &Recipe{}
		err = yaml.Unmarshal(data, r)
	default:
		return nil, fmt.Errorf("parser: unsupported file %s", name)
	}
	if err != nil {
		return nil, fmt.Errorf("parser: %s: %w", name, err)
	}
	r.Title = strings.TrimSpace(r.Title)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Tags = dedupeTags(r.Tags)
	if r.Title == "" {
		return nil, ErrNoTitle
	}
	return r, nil
}

func parseMarkdown(data []byte) (*Recipe, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}
	r := &Recipe{}
	if len(fm) > 0 {
		if err := yaml.Unmarshal(fm, r); err != nil {
			return nil, err
		}
	}
	if r.Title == "" {
		r.Title = firstHeading(body)
	}
	for _, name := range extractHashtags(body) {
		r.Tags = append(r.Tags, TagRef{Name: name, Type: models.TagOther})
	}
	r.Notes = body
	return r, nil
}

// splitFrontmatter separates the YAML block between leading --- delimiters
// from the Markdown body. Without frontmatter the whole input is body.
func splitFrontmatter(data []byte) ([]byte, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, "", errors.New("unterminated frontmatter")
	}
	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	return block, strings.TrimLeft(string(after), "\n\r"), nil
}

func extractHashtags(body string) []string {
	var out []string
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		out = append(out, m[1])
	}
	return out
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// dedupeTags drops empty names and repeats, comparing names case-insensitively.
func dedupeTags(tags []TagRef) []TagRef {
	seen := make(map[string]struct{}, len(tags))
	out := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		key := strings.ToLower(t.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
