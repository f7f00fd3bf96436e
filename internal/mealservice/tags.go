package mealservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/mealprep/internal/apperr"
	"github.com/starford/mealprep/internal/models"
)

// ListTags returns the household's tags in creation order.
func (s *Service) ListTags(ctx context.Context, householdID string) ([]models.Tag, error) {
	tags, err := s.repo.ListTags(ctx, householdID)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(tags), nil
}

// CreateTag adds a tag. Duplicate names yield apperr.ErrAlreadyExists.
func (s *Service) CreateTag(ctx context.Context, householdID string, in TagInput) (*models.Tag, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	tag := models.Tag{
		ID:          s.newID(),
		Name:        in.Name,
		Type:        in.Type,
		HouseholdID: householdID,
		CreatedAt:   s.now(),
	}
	if err := s.repo.PutTag(ctx, tag); err != nil {
		return nil, fmt.Errorf("tag %q: %w", in.Name, err)
	}
	s.publish(householdID, "tag.created", tag.ID)
	return &tag, nil
}

// UpdateTag renames or retypes a tag.
func (s *Service) UpdateTag(ctx context.Context, householdID, tagID string, u TagUpdate) (*models.Tag, error) {
	if err := validateInput(&u); err != nil {
		return nil, err
	}
	tag, err := s.repo.GetTag(ctx, householdID, tagID)
	if err != nil {
		return nil, err
	}
	if u.Name != nil {
		tag.Name = *u.Name
	}
	if u.Type != nil {
		tag.Type = *u.Type
	}
	if err := s.repo.PutTag(ctx, *tag); err != nil {
		return nil, fmt.Errorf("tag %q: %w", tag.Name, err)
	}
	s.publish(householdID, "tag.updated", tag.ID)
	return tag, nil
}

// DeleteTag removes a tag. Recipes keep the dangling id; validation then
// reports the id in place of the name.
func (s *Service) DeleteTag(ctx context.Context, householdID, tagID string) error {
	if err := s.repo.DeleteTag(ctx, householdID, tagID); err != nil {
		return err
	}
	s.publish(householdID, "tag.deleted", tagID)
	return nil
}

// FindOrCreateTag returns the tag with the given name, creating it when absent.
func (s *Service) FindOrCreateTag(ctx context.Context, householdID string, in TagInput) (*models.Tag, error) {
	if err := validateInput(&in); err != nil {
		return nil, err
	}
	tags, err := s.repo.ListTags(ctx, householdID)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if strings.EqualFold(tags[i].Name, in.Name) {
			return &tags[i], nil
		}
	}
	return s.CreateTag(ctx, householdID, in)
}

func (s *Service) checkTags(ctx context.Context, householdID string, ids []string) error {
	tags, err := s.repo.ListTags(ctx, householdID)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(tags))
	for _, t := range tags {
		known[t.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return fmt.Errorf("%w: unknown tag %q", apperr.ErrInvalid, id)
		}
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
