package mcpserver

// Resource URIs.
const (
	TemplatePlaceholdersURI = "mealprep://template-placeholders"
	RecipeFormatURI         = "mealprep://recipe-format"
)

// TemplatePlaceholders documents the placeholders accepted in reminder
// message templates.
const TemplatePlaceholders = `# Reminder Message Templates

Reminder rules render message_template once per planned dinner they target.
Placeholders are replaced literally; unknown placeholders are left as typed.

| Placeholder       | Replaced with                          | Example     |
|-------------------|----------------------------------------|-------------|
| {recipe_title}    | Title of the planned recipe            | Tacos       |
| {meal_date}       | Date of the dinner (YYYY-MM-DD)        | 2025-01-09  |
| {day_of_week}     | Short English weekday of the dinner    | Thu         |

An empty template falls back to "Reminder for {recipe_title}".

Two reminders that fire at the same instant with the same rendered text are
merged into one calendar event.

## Example

    Take {recipe_title} out of the freezer for {day_of_week} ({meal_date})
`

// RecipeFormat describes catalog documents read from the recipe catalog directory.
const RecipeFormat = `# Recipe Catalog Format

Each file in the catalog directory describes one recipe. Files are matched by
extension: .yaml / .yml hold plain YAML, .md holds YAML frontmatter followed by
Markdown notes.

` + "```" + `yaml
household: home          # OPTIONAL – defaults to the configured household
title: Beef Tacos        # REQUIRED (in .md files the first "# heading" also works)
tags:                    # at least one; bare names get type OTHER
  - {name: beef, type: PROTEIN}
  - weeknight
default_servings: 4      # OPTIONAL – defaults to 4
notes: Warm the tortillas.
` + "```" + `

Tag types: PROTEIN, PORTION, PREP, OTHER. Tags are matched by name,
ignoring case, and created when missing. In .md files every #hashtag in the body
adds an OTHER tag.

Renaming a file re-imports the recipe under a new id; deleting a file deletes
its recipe.
`
