package mealservice

import (
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/mealprep/internal/models"
	"github.com/starford/mealprep/internal/planner"
)

// Credentials is the body of register and login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the credentials.
func (c *Credentials) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(6, 128)),
	)
}

// HouseholdUpdate changes household settings; nil fields are left alone.
type HouseholdUpdate struct {
	Name            *string `json:"name"`
	Timezone        *string `json:"timezone"`
	DinnerTimeLocal *string `json:"dinner_time_local"`
}

// Validate validates the update.
func (u *HouseholdUpdate) Validate() error {
	u.Name = trimmed(u.Name)
	return validation.ValidateStruct(u,
		validation.Field(&u.Name, validation.NilOrNotEmpty, validation.Length(1, 120)),
		validation.Field(&u.Timezone, validation.NilOrNotEmpty, validation.By(timezoneRule)),
		validation.Field(&u.DinnerTimeLocal, validation.NilOrNotEmpty, validation.By(clockRule)),
	)
}

// TagInput creates a tag.
type TagInput struct {
	Name string         `json:"name"`
	Type models.TagType `json:"type"`
}

// Validate validates the input.
func (in *TagInput) Validate() error {
	in.Name = strings.TrimSpace(in.Name)
	return validation.ValidateStruct(in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 64)),
		validation.Field(&in.Type, validation.Required, validation.In(tagTypes()...)),
	)
}

// TagUpdate changes a tag; nil fields are left alone.
type TagUpdate struct {
	Name *string         `json:"name"`
	Type *models.TagType `json:"type"`
}

// Validate validates the update.
func (u *TagUpdate) Validate() error {
	u.Name = trimmed(u.Name)
	return validation.ValidateStruct(u,
		validation.Field(&u.Name, validation.NilOrNotEmpty, validation.Length(1, 64)),
		validation.Field(&u.Type, validation.NilOrNotEmpty, validation.In(tagTypes()...)),
	)
}

// RecipeInput creates a recipe.
type RecipeInput struct {
	Title           string   `json:"title"`
	TagIDs          []string `json:"tag_ids"`
	DefaultServings int      `json:"default_servings"`
	Notes           string   `json:"notes"`
}

// Validate validates the input. DefaultServings of zero means 4.
func (in *RecipeInput) Validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.DefaultServings == 0 {
		in.DefaultServings = 4
	}
	return validation.ValidateStruct(in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.TagIDs, validation.Required.Error("at least one tag is required"), validation.Each(validation.Required)),
		validation.Field(&in.DefaultServings, validation.Min(1)),
	)
}

// RecipeUpdate changes a recipe; nil fields are left alone.
type RecipeUpdate struct {
	Title           *string   `json:"title"`
	TagIDs          *[]string `json:"tag_ids"`
	DefaultServings *int      `json:"default_servings"`
	Notes           *string   `json:"notes"`
}

// Validate validates the update.
func (u *RecipeUpdate) Validate() error {
	u.Title = trimmed(u.Title)
	if u.TagIDs != nil && len(*u.TagIDs) == 0 {
		return validation.Errors{"tag_ids": errors.New("at least one tag is required")}
	}
	return validation.ValidateStruct(u,
		validation.Field(&u.Title, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&u.DefaultServings, validation.NilOrNotEmpty, validation.Min(1)),
	)
}

// trimmed returns s without surrounding whitespace; nil stays nil.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// RecipeFilter narrows ListRecipes.
type RecipeFilter struct {
	TagID string
	Query string
}

// ConstraintInput creates a MAX_MEALS_PER_WEEK_BY_TAG rule.
type ConstraintInput struct {
	TagID    string `json:"tag_id"`
	MaxCount *int   `json:"max_count"`
	Enabled  *bool  `json:"enabled"`
}

// Validate validates the input.
func (in *ConstraintInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.TagID, validation.Required),
		validation.Field(&in.MaxCount, validation.NotNil, validation.Min(0)),
	)
}

// ActionInput creates a REMIND_OFFSET_DAYS_BEFORE_DINNER rule.
type ActionInput struct {
	TargetType      models.TargetType `json:"target_type"`
	TagID           string            `json:"tag_id"`
	RecipeID        string            `json:"recipe_id"`
	OffsetDays      *int              `json:"offset_days"`
	TimeLocal       string            `json:"time_local"`
	MessageTemplate string            `json:"message_template"`
	Enabled         *bool             `json:"enabled"`
}

// Validate validates the input and fills defaults: offset -1 day at 10:00.
// The target id matching TargetType is required; the other one is cleared.
func (in *ActionInput) Validate() error {
	if in.OffsetDays == nil {
		d := -1
		in.OffsetDays = &d
	}
	if in.TimeLocal == "" {
		in.TimeLocal = planner.DefaultRemindTime
	}
	err := validation.ValidateStruct(in,
		validation.Field(&in.TargetType, validation.Required, validation.In(models.TargetTag, models.TargetRecipe)),
		validation.Field(&in.TimeLocal, validation.By(clockRule)),
		validation.Field(&in.MessageTemplate, validation.Required, validation.Length(1, 500)),
		validation.Field(&in.OffsetDays, validation.Min(-30), validation.Max(30)),
	)
	if err != nil {
		return err
	}
	switch in.TargetType {
	case models.TargetTag:
		if in.TagID == "" {
			return validation.Errors{"tag_id": errors.New("required when target_type is TAG")}
		}
		in.RecipeID = ""
	case models.TargetRecipe:
		if in.RecipeID == "" {
			return validation.Errors{"recipe_id": errors.New("required when target_type is RECIPE")}
		}
		in.TagID = ""
	}
	return nil
}

// RuleUpdate changes a rule; fields that do not apply to the rule's kind are rejected.
type RuleUpdate struct {
	Enabled         *bool   `json:"enabled"`
	MaxCount        *int    `json:"max_count"`
	OffsetDays      *int    `json:"offset_days"`
	TimeLocal       *string `json:"time_local"`
	MessageTemplate *string `json:"message_template"`
}

// Validate validates the update.
func (u *RuleUpdate) Validate() error {
	return validation.ValidateStruct(u,
		validation.Field(&u.MaxCount, validation.Min(0)),
		validation.Field(&u.OffsetDays, validation.Min(-30), validation.Max(30)),
		validation.Field(&u.TimeLocal, validation.NilOrNotEmpty, validation.By(clockRule)),
		validation.Field(&u.MessageTemplate, validation.NilOrNotEmpty, validation.Length(1, 500)),
	)
}

// EntryInput assigns a recipe to a date of the week.
type EntryInput struct {
	Date     string `json:"date"`
	RecipeID string `json:"recipe_id"`
	Servings int    `json:"servings"`
}

// Validate validates the input.
func (in *EntryInput) Validate() error {
	return validation.ValidateStruct(in,
		validation.Field(&in.Date, validation.Required, validation.Date(models.DateLayout)),
		validation.Field(&in.RecipeID, validation.Required),
		validation.Field(&in.Servings, validation.Required, validation.Min(1)),
	)
}

func tagTypes() []any {
	out := make([]any, len(models.TagTypes))
	for i, t := range models.TagTypes {
		out[i] = t
	}
	return out
}

func clockRule(value any) error {
	s, ok := stringValue(value)
	if !ok {
		return nil
	}
	if _, ok := planner.ParseClock(s); !ok {
		return errors.New("must be in HH:MM format")
	}
	return nil
}

func timezoneRule(value any) error {
	s, ok := stringValue(value)
	if !ok {
		return nil
	}
	if s == "" || s == "Local" {
		return errors.New("must be an IANA timezone name")
	}
	if _, err := time.LoadLocation(s); err != nil {
		return errors.New("must be an IANA timezone name")
	}
	return nil
}

// weekRange parses a week start date, which must be a Monday, and returns
// the first and last day of the week.
func weekRange(weekStart string) (time.Time, time.Time, error) {
	start, err := time.Parse(models.DateLayout, weekStart)
	if err != nil {
		return time.Time{}, time.Time{}, validation.Errors{"week_start_date": errors.New("must be YYYY-MM-DD")}
	}
	if start.Weekday() != time.Monday {
		return time.Time{}, time.Time{}, validation.Errors{"week_start_date": errors.New("must be a Monday")}
	}
	return start, start.AddDate(0, 0, 6), nil
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case *string:
		if v == nil {
			return "", false
		}
		return *v, true
	}
	return "", false
}
