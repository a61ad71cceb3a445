package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
)

// optionalRef turns an empty reference into nil.
func optionalRef(id *string) *string {
	if id == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*id)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ownedExists reports whether a live row of model with the given id belongs
// to userID. Rows of other users are indistinguishable from missing ones.
func ownedExists(tx *gorm.DB, model interface{}, userID, id string) (bool, error) {
	var count int64
	err := tx.Model(model).Where("id = ? AND user_id = ?", id, userID).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// requirePerson fails with ErrInvalidReference unless personID names one of
// userID's people. label names the field in the error message.
func requirePerson(tx *gorm.DB, userID, personID, label string) error {
	ok, err := ownedExists(tx, &models.Person{}, userID, personID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return apperrors.WithMessage(apperrors.ErrInvalidReference, label+" does not exist")
	}
	return nil
}

// requireOccasion fails with ErrInvalidReference unless occasionID names one
// of userID's occasions.
func requireOccasion(tx *gorm.DB, userID, occasionID string) error {
	ok, err := ownedExists(tx, &models.Occasion{}, userID, occasionID)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		return apperrors.WithMessage(apperrors.ErrInvalidReference, "occasion does not exist")
	}
	return nil
}

// preferredCurrency returns the owner's default currency, or USD.
func preferredCurrency(tx *gorm.DB, userID string) string {
	var user models.User
	if err := tx.Select("id", "preferences").Where("id = ?", userID).First(&user).Error; err != nil {
		return models.DefaultPreferences().Currency
	}
	if user.Preferences.Currency == "" {
		return models.DefaultPreferences().Currency
	}
	return user.Preferences.Currency
}

// notFoundOr maps gorm.ErrRecordNotFound to sentinel and anything else to an
// internal error.
func notFoundOr(err error, sentinel *apperrors.AppError) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// passThrough keeps AppErrors returned from inside a transaction intact.
func passThrough(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}

// refColumn is the column value for an optional reference: NULL or the id.
func refColumn(id *string) interface{} {
	if id == nil {
		return nil
	}
	return *id
}
