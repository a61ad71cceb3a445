package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/pagination"
)

// personService handles person-related business logic.
type personService struct {
	db *gorm.DB
}

// NewPersonService creates a new PersonServicer.
func NewPersonService(db *gorm.DB) PersonServicer {
	return &personService{db: db}
}

// CreatePerson adds a recipient to the user's list.
func (s *personService) CreatePerson(ctx context.Context, userID string, in CreatePersonInput) (*models.Person, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}

	person := &models.Person{
		UserID:       userID,
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
		Relationship: in.Relationship,
		Birthday:     utcPtr(in.Birthday),
		Notes:        in.Notes,
		Avatar:       in.Avatar,
		FamilyID:     optionalRef(in.FamilyID),
	}

	if err := s.db.WithContext(ctx).Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return person, nil
}

// GetUserPeople lists the user's people, newest first.
func (s *personService) GetUserPeople(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
	query := s.db.WithContext(ctx).Model(&models.Person{}).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC")

	result, err := pagination.Find[models.Person](query, page)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// GetPersonByID returns a person by ID if it belongs to the user.
func (s *personService) GetPersonByID(ctx context.Context, userID, personID string) (*models.Person, error) {
	var person models.Person
	if err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", personID, userID).First(&person).Error; err != nil {
		return nil, notFoundOr(err, apperrors.ErrPersonNotFound)
	}
	return &person, nil
}

// UpdatePerson applies the non-nil fields of in.
func (s *personService) UpdatePerson(ctx context.Context, userID, personID string, in UpdatePersonInput) (*models.Person, error) {
	person, err := s.GetPersonByID(ctx, userID, personID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Email != nil {
		updates["email"] = strings.TrimSpace(*in.Email)
	}
	if in.Relationship != nil {
		updates["relationship"] = *in.Relationship
	}
	if in.Birthday != nil {
		updates["birthday"] = in.Birthday.UTC()
	}
	if in.Notes != nil {
		updates["notes"] = *in.Notes
	}
	if in.Avatar != nil {
		updates["avatar"] = *in.Avatar
	}
	if in.FamilyID != nil {
		updates["family_id"] = refColumn(optionalRef(in.FamilyID))
	}

	if len(updates) == 0 {
		return person, nil
	}
	if err := s.db.WithContext(ctx).Model(person).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return s.GetPersonByID(ctx, userID, personID)
}

// DeletePerson soft-deletes a person together with the gifts addressed to
// them. Occasions and budgets survive with their person link cleared.
func (s *personService) DeletePerson(ctx context.Context, userID, personID string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var person models.Person
		if err := tx.Where("id = ? AND user_id = ?", personID, userID).First(&person).Error; err != nil {
			return notFoundOr(err, apperrors.ErrPersonNotFound)
		}

		if err := tx.Where("user_id = ? AND recipient_id = ?", userID, personID).Delete(&models.Gift{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Occasion{}).Where("user_id = ? AND person_id = ?", userID, personID).
			Update("person_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Budget{}).Where("user_id = ? AND person_id = ?", userID, personID).
			Update("person_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&person).Error
	})
	if err != nil {
		return passThrough(err)
	}
	return nil
}
