package planner

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/mealprep/internal/checksum"
	"github.com/starford/mealprep/internal/models"
)

// Calendar identity and event shapes.
const (
	ProductID    = "-//MealPrepBuddy//mealprepbuddy.com//"
	CalendarName = "MealPrepBuddy"
	uidPrefix    = "mealprepbuddy"

	dinnerDuration   = time.Hour
	reminderDuration = 5 * time.Minute

	defaultTemplate = "Reminder for {recipe_title}"
)

// Event is one VEVENT of the exported calendar.
type Event struct {
	UID         string
	Start       time.Time
	Duration    time.Duration
	Summary     string
	Description string
	// Alarm is the text of a DISPLAY alarm firing at Start; empty means no alarm.
	Alarm string
}

// Reminder is a rendered action rule firing for one planned dinner.
type Reminder struct {
	At          time.Time
	Message     string
	MealDate    string
	RecipeTitle string
}

type reminderKey struct {
	at      string
	message string
}

// Generate renders the week as an iCalendar document. Output is byte-identical
// for identical input. Tags are accepted for symmetry with Validate; action
// rules match on tag ids directly.
func Generate(
	entries models.Entries,
	recipes []models.Recipe,
	rules []models.Rule,
	tags []models.Tag,
	household models.Household,
	weekStart string,
) string {
	return Encode(Events(entries, recipes, rules, tags, household, weekStart))
}

// Events builds the dinner events followed by the deduplicated reminder events.
func Events(
	entries models.Entries,
	recipes []models.Recipe,
	rules []models.Rule,
	_ []models.Tag,
	household models.Household,
	weekStart string,
) []Event {
	loc := ResolveLocation(household.Timezone)
	dinner := ClockOr(household.DinnerTimeLocal, DefaultDinnerTime)
	householdID := household.ID
	if householdID == "" {
		householdID = "unknown"
	}

	recipeByID := indexRecipes(recipes)
	actions := enabledActions(rules)

	var events []Event
	var reminders []Reminder
	seen := make(map[reminderKey]struct{})

	for _, date := range entries.Assigned() {
		entry := entries[date]
		recipe, ok := recipeByID[entry.RecipeID]
		if !ok {
			continue
		}
		day, err := time.Parse(models.DateLayout, date)
		if err != nil {
			continue
		}

		events = append(events, Event{
			UID:         fmt.Sprintf("%s-%s-%s-%s", uidPrefix, householdID, weekStart, date),
			Start:       dinner.On(day, loc),
			Duration:    dinnerDuration,
			Summary:     "Dinner: " + recipe.Title,
			Description: dinnerDescription(entry.Servings, recipe.Notes),
		})

		for _, rule := range actions {
			if !appliesTo(rule, entry.RecipeID, recipe) {
				continue
			}
			at := ClockOr(rule.TimeLocal, DefaultRemindTime).On(day.AddDate(0, 0, rule.OffsetDays), loc)
			tmpl := rule.MessageTemplate
			if tmpl == "" {
				tmpl = defaultTemplate
			}
			msg := RenderMessage(tmpl, date, recipe.Title, day.Weekday())

			key := reminderKey{at: at.Format(time.RFC3339), message: msg}
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			reminders = append(reminders, Reminder{
				At:          at,
				Message:     msg,
				MealDate:    date,
				RecipeTitle: recipe.Title,
			})
		}
	}

	for _, r := range reminders {
		events = append(events, Event{
			UID:         fmt.Sprintf("%s-rem-%s-%s-%s", uidPrefix, householdID, weekStart, reminderHash(r)),
			Start:       r.At,
			Duration:    reminderDuration,
			Summary:     "Reminder: " + r.Message,
			Description: fmt.Sprintf("For dinner on %s: %s", r.MealDate, r.RecipeTitle),
			Alarm:       r.Message,
		})
	}
	return events
}

// RenderMessage substitutes {meal_date}, {recipe_title} and {day_of_week}.
// Any other placeholder is left as written.
func RenderMessage(tmpl, mealDate, recipeTitle string, weekday time.Weekday) string {
	return strings.NewReplacer(
		"{meal_date}", mealDate,
		"{recipe_title}", recipeTitle,
		"{day_of_week}", weekday.String()[:3],
	).Replace(tmpl)
}

func appliesTo(rule models.ActionRule, recipeID string, recipe *models.Recipe) bool {
	switch rule.TargetType {
	case models.TargetTag:
		return recipe.HasTag(rule.TagID)
	case models.TargetRecipe:
		return rule.RecipeID == recipeID
	default:
		return false
	}
}

func enabledActions(rules []models.Rule) []models.ActionRule {
	var out []models.ActionRule
	for _, rule := range rules {
		ar, ok := rule.(models.ActionRule)
		if !ok || !ar.Enabled {
			continue
		}
		switch ar.ActionType {
		case models.RemindOffsetDaysBeforeDinner, "":
			out = append(out, ar)
		}
	}
	return out
}

func dinnerDescription(servings int, notes string) string {
	desc := fmt.Sprintf("Servings: %d", servings)
	if notes != "" {
		desc += "\n\nNotes: " + notes
	}
	return desc
}

// reminderHash is a short stable digest of the dedup key.
func reminderHash(r Reminder) string {
	return checksum.Short([]byte(r.At.Format(time.RFC3339)+r.Message), 12)
}
