package handlers

import (
	"context"
	"time"

	"giftwise/internal/models"
	"giftwise/internal/pagination"
	"giftwise/internal/services"
)

type mockUserService struct {
	getUserByIDFn       func(ctx context.Context, id string) (*models.User, error)
	updateProfileFn     func(ctx context.Context, id, name string) (*models.User, error)
	updatePreferencesFn func(ctx context.Context, id string, prefs models.Preferences) (*models.User, error)
}

func (m *mockUserService) CreateUser(context.Context, *models.User) error { return nil }

func (m *mockUserService) GetUserByEmail(context.Context, string) (*models.User, error) {
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(ctx, id)
	}
	u := &models.User{Preferences: models.DefaultPreferences()}
	u.ID = id
	return u, nil
}

func (m *mockUserService) TouchLastLogin(context.Context, string, time.Time) error { return nil }

func (m *mockUserService) UpdateProfile(ctx context.Context, id, name string) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, name)
	}
	return &models.User{Name: name}, nil
}

func (m *mockUserService) UpdatePreferences(ctx context.Context, id string, prefs models.Preferences) (*models.User, error) {
	if m.updatePreferencesFn != nil {
		return m.updatePreferencesFn(ctx, id, prefs)
	}
	return &models.User{Preferences: prefs}, nil
}

type mockPersonService struct {
	createFn func(ctx context.Context, userID string, in services.CreatePersonInput) (*models.Person, error)
	listFn   func(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error)
	getFn    func(ctx context.Context, userID, personID string) (*models.Person, error)
	updateFn func(ctx context.Context, userID, personID string, in services.UpdatePersonInput) (*models.Person, error)
	deleteFn func(ctx context.Context, userID, personID string) error
}

func (m *mockPersonService) CreatePerson(ctx context.Context, userID string, in services.CreatePersonInput) (*models.Person, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &models.Person{UserID: userID, Name: in.Name}, nil
}

func (m *mockPersonService) GetUserPeople(ctx context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Person], error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page)
	}
	result := pagination.NewPageResponse([]models.Person{}, 1, 1, 0)
	return &result, nil
}

func (m *mockPersonService) GetPersonByID(ctx context.Context, userID, personID string) (*models.Person, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, personID)
	}
	return &models.Person{UserID: userID}, nil
}

func (m *mockPersonService) UpdatePerson(ctx context.Context, userID, personID string, in services.UpdatePersonInput) (*models.Person, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, personID, in)
	}
	return &models.Person{UserID: userID}, nil
}

func (m *mockPersonService) DeletePerson(ctx context.Context, userID, personID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, personID)
	}
	return nil
}

type mockGiftService struct {
	createFn func(ctx context.Context, userID string, in services.CreateGiftInput) (*models.Gift, error)
	listFn   func(ctx context.Context, userID string, page pagination.PageRequest, filter services.GiftFilter) (*pagination.PageResponse[models.Gift], error)
	getFn    func(ctx context.Context, userID, giftID string) (*models.Gift, error)
	updateFn func(ctx context.Context, userID, giftID string, in services.UpdateGiftInput) (*models.Gift, error)
	deleteFn func(ctx context.Context, userID, giftID string) error
}

func (m *mockGiftService) CreateGift(ctx context.Context, userID string, in services.CreateGiftInput) (*models.Gift, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &models.Gift{UserID: userID, RecipientID: in.RecipientID, Name: in.Name}, nil
}

func (m *mockGiftService) GetUserGifts(ctx context.Context, userID string, page pagination.PageRequest, filter services.GiftFilter) (*pagination.PageResponse[models.Gift], error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page, filter)
	}
	result := pagination.NewPageResponse([]models.Gift{}, 1, 1, 0)
	return &result, nil
}

func (m *mockGiftService) GetGiftByID(ctx context.Context, userID, giftID string) (*models.Gift, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, giftID)
	}
	return &models.Gift{UserID: userID}, nil
}

func (m *mockGiftService) UpdateGift(ctx context.Context, userID, giftID string, in services.UpdateGiftInput) (*models.Gift, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, giftID, in)
	}
	return &models.Gift{UserID: userID}, nil
}

func (m *mockGiftService) DeleteGift(ctx context.Context, userID, giftID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, giftID)
	}
	return nil
}

type mockOccasionService struct {
	createFn func(ctx context.Context, userID string, in services.CreateOccasionInput) (*models.Occasion, error)
	listFn   func(ctx context.Context, userID string, page pagination.PageRequest, filter services.OccasionFilter) (*pagination.PageResponse[models.Occasion], error)
	deleteFn func(ctx context.Context, userID, occasionID string) error
}

func (m *mockOccasionService) CreateOccasion(ctx context.Context, userID string, in services.CreateOccasionInput) (*models.Occasion, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &models.Occasion{UserID: userID, Name: in.Name, Date: in.Date}, nil
}

func (m *mockOccasionService) GetUserOccasions(ctx context.Context, userID string, page pagination.PageRequest, filter services.OccasionFilter) (*pagination.PageResponse[models.Occasion], error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page, filter)
	}
	result := pagination.NewPageResponse([]models.Occasion{}, 1, 1, 0)
	return &result, nil
}

func (m *mockOccasionService) GetOccasionByID(_ context.Context, userID, _ string) (*models.Occasion, error) {
	return &models.Occasion{UserID: userID}, nil
}

func (m *mockOccasionService) UpdateOccasion(_ context.Context, userID, _ string, _ services.UpdateOccasionInput) (*models.Occasion, error) {
	return &models.Occasion{UserID: userID}, nil
}

func (m *mockOccasionService) DeleteOccasion(ctx context.Context, userID, occasionID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, occasionID)
	}
	return nil
}

type mockBudgetService struct {
	createFn func(ctx context.Context, userID string, in services.CreateBudgetInput) (*models.Budget, error)
	listFn   func(ctx context.Context, userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error)
	updateFn func(ctx context.Context, userID, budgetID string, in services.UpdateBudgetInput) (*models.Budget, error)
}

func (m *mockBudgetService) CreateBudget(ctx context.Context, userID string, in services.CreateBudgetInput) (*models.Budget, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &models.Budget{UserID: userID, Name: in.Name, Amount: in.Amount, Period: in.Period}, nil
}

func (m *mockBudgetService) GetUserBudgets(ctx context.Context, userID string, page pagination.PageRequest, period *models.BudgetPeriod) (*pagination.PageResponse[models.Budget], error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, page, period)
	}
	result := pagination.NewPageResponse([]models.Budget{}, 1, 1, 0)
	return &result, nil
}

func (m *mockBudgetService) GetBudgetByID(_ context.Context, userID, _ string) (*models.Budget, error) {
	return &models.Budget{UserID: userID}, nil
}

func (m *mockBudgetService) UpdateBudget(ctx context.Context, userID, budgetID string, in services.UpdateBudgetInput) (*models.Budget, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, budgetID, in)
	}
	return &models.Budget{UserID: userID}, nil
}

func (m *mockBudgetService) DeleteBudget(context.Context, string, string) error { return nil }
