package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// RuleKind discriminates the Rule variants.
type RuleKind string

// Rule kinds.
const (
	KindConstraint RuleKind = "CONSTRAINT"
	KindAction     RuleKind = "ACTION"
)

// ConstraintType selects how a ConstraintRule is evaluated.
type ConstraintType string

// Constraint types.
const (
	MaxMealsPerWeekByTag ConstraintType = "MAX_MEALS_PER_WEEK_BY_TAG"
)

// ActionType selects what an ActionRule produces.
type ActionType string

// Action types.
const (
	RemindOffsetDaysBeforeDinner ActionType = "REMIND_OFFSET_DAYS_BEFORE_DINNER"
)

// TargetType selects which field of an ActionRule identifies its target.
type TargetType string

// Target types.
const (
	TargetTag    TargetType = "TAG"
	TargetRecipe TargetType = "RECIPE"
)

// Rule is either a ConstraintRule or an ActionRule. The set is closed:
// consumers switch on the concrete type.
type Rule interface {
	RuleID() string
	Kind() RuleKind
	IsEnabled() bool
	Meta() RuleMeta
	isRule()
}

// RuleMeta holds the fields shared by every rule variant.
type RuleMeta struct {
	ID          string    `json:"rule_id"`
	HouseholdID string    `json:"household_id"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RuleID returns the rule id.
func (m RuleMeta) RuleID() string { return m.ID }

// IsEnabled reports whether the rule takes part in validation or generation.
func (m RuleMeta) IsEnabled() bool { return m.Enabled }

// Meta returns the shared fields.
func (m RuleMeta) Meta() RuleMeta { return m }

// ConstraintRule produces warnings when a plan violates it.
type ConstraintRule struct {
	RuleMeta
	ConstraintType ConstraintType `json:"constraint_type"`
	TagID          string         `json:"tag_id"`
	MaxCount       int            `json:"max_count"`
}

// Kind implements Rule.
func (ConstraintRule) Kind() RuleKind { return KindConstraint }

func (ConstraintRule) isRule() {}

// MarshalJSON adds the rule_kind discriminator.
func (r ConstraintRule) MarshalJSON() ([]byte, error) {
	type plain ConstraintRule
	return json.Marshal(struct {
		Kind RuleKind `json:"rule_kind"`
		plain
	}{KindConstraint, plain(r)})
}

// ActionRule produces a reminder for every planned dinner it targets.
type ActionRule struct {
	RuleMeta
	ActionType      ActionType `json:"action_type"`
	TargetType      TargetType `json:"target_type"`
	TagID           string     `json:"tag_id,omitempty"`
	RecipeID        string     `json:"recipe_id,omitempty"`
	OffsetDays      int        `json:"offset_days"`
	TimeLocal       string     `json:"time_local"`
	MessageTemplate string     `json:"message_template"`
}

// Kind implements Rule.
func (ActionRule) Kind() RuleKind { return KindAction }

func (ActionRule) isRule() {}

// MarshalJSON adds the rule_kind discriminator.
func (r ActionRule) MarshalJSON() ([]byte, error) {
	type plain ActionRule
	return json.Marshal(struct {
		Kind RuleKind `json:"rule_kind"`
		plain
	}{KindAction, plain(r)})
}

// DecodeRule decodes a JSON rule, choosing the variant from rule_kind.
func DecodeRule(data []byte) (Rule, error) {
	var head struct {
		Kind RuleKind `json:"rule_kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode rule: %w", err)
	}
	switch head.Kind {
	case KindConstraint:
		var r ConstraintRule
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode constraint rule: %w", err)
		}
		return r, nil
	case KindAction:
		var r ActionRule
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode action rule: %w", err)
		}
		return r, nil
	default:
		return nil, fmt.Errorf("decode rule: unknown rule_kind %q", head.Kind)
	}
}
