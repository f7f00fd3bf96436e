// Package models defines the domain types for mealprep.
package models

import "time"

// TagType classifies a tag.
type TagType string

// Tag types.
const (
	TagProtein TagType = "PROTEIN"
	TagPortion TagType = "PORTION"
	TagPrep    TagType = "PREP"
	TagOther   TagType = "OTHER"
)

// TagTypes lists every tag type in display order.
var TagTypes = []TagType{TagProtein, TagPortion, TagPrep, TagOther}

// Tag labels recipes. Names are unique per household, ignoring case.
type Tag struct {
	ID          string    `json:"tag_id"`
	Name        string    `json:"name"`
	Type        TagType   `json:"type"`
	HouseholdID string    `json:"household_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Recipe is a dish that can be planned for dinner.
type Recipe struct {
	ID              string    `json:"recipe_id"`
	Title           string    `json:"title"`
	TagIDs          []string  `json:"tag_ids"`
	DefaultServings int       `json:"default_servings"`
	Notes           string    `json:"notes,omitempty"`
	HouseholdID     string    `json:"household_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// HasTag reports whether the recipe carries tagID.
func (r *Recipe) HasTag(tagID string) bool {
	for _, id := range r.TagIDs {
		if id == tagID {
			return true
		}
	}
	return false
}

// Household is the ownership boundary for every other entity.
type Household struct {
	ID              string    `json:"household_id"`
	Name            string    `json:"name"`
	Timezone        string    `json:"timezone"`
	DinnerTimeLocal string    `json:"dinner_time_local"`
	CreatedAt       time.Time `json:"created_at"`
}

// User is an account that belongs to exactly one household.
type User struct {
	ID           string    `json:"user_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	HouseholdID  string    `json:"household_id"`
	CreatedAt    time.Time `json:"created_at"`
}
