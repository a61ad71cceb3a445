package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/pagination"
	"giftwise/internal/services"
)

// OccasionHandler handles occasion-related requests.
type OccasionHandler struct {
	occasionService services.OccasionServicer
	auditService    services.AuditServicer
}

// NewOccasionHandler creates a new OccasionHandler.
func NewOccasionHandler(occasionService services.OccasionServicer, auditService services.AuditServicer) *OccasionHandler {
	return &OccasionHandler{occasionService: occasionService, auditService: auditService}
}

// CreateOccasionRequest represents the request payload for creating an occasion.
type CreateOccasionRequest struct {
	PersonID     *string             `json:"person_id"`
	Name         string              `json:"name" binding:"required,min=1,max=200"`
	Type         models.OccasionType `json:"type" binding:"omitempty,occasion_type"`
	Date         time.Time           `json:"date" binding:"required"`
	BudgetAmount *int64              `json:"budget_amount" binding:"omitempty,gte=0"`
	Recurring    bool                `json:"recurring"`
	Notes        string              `json:"notes" binding:"max=2000"`
}

// UpdateOccasionRequest represents the request payload for updating an
// occasion. An empty person_id unlinks the person.
type UpdateOccasionRequest struct {
	PersonID     *string              `json:"person_id"`
	Name         *string              `json:"name" binding:"omitempty,min=1,max=200"`
	Type         *models.OccasionType `json:"type" binding:"omitempty,occasion_type"`
	Date         *time.Time           `json:"date"`
	BudgetAmount *int64               `json:"budget_amount" binding:"omitempty,gte=0"`
	Recurring    *bool                `json:"recurring"`
	Notes        *string              `json:"notes" binding:"omitempty,max=2000"`
}

// CreateOccasion handles the creation of a new occasion.
// @Summary     Create an occasion
// @Tags        occasions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateOccasionRequest true "Occasion details"
// @Success     201 {object} models.Occasion "Occasion created"
// @Failure     400 {object} ErrorResponse "Invalid input or reference"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occasions [post]
func (h *OccasionHandler) CreateOccasion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateOccasionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	personID, err := normalizeRef(req.PersonID, "person")
	if err != nil {
		respondWithError(c, err)
		return
	}

	occasion, err := h.occasionService.CreateOccasion(c.Request.Context(), userID, services.CreateOccasionInput{
		PersonID:     personID,
		Name:         req.Name,
		Type:         req.Type,
		Date:         req.Date,
		BudgetAmount: req.BudgetAmount,
		Recurring:    req.Recurring,
		Notes:        req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionCreate, "occasion", occasion.ID, c.ClientIP(),
		map[string]interface{}{"name": occasion.Name, "date": occasion.Date})

	c.JSON(http.StatusCreated, occasion)
}

// GetOccasions handles listing occasions for the authenticated user.
// @Summary     Get occasions
// @Description List the authenticated user's occasions by date, soonest first
// @Tags        occasions
// @Produce     json
// @Security    BearerAuth
// @Param       person_id query string false "Filter by person"
// @Param       from      query string false "Earliest date (YYYY-MM-DD or RFC 3339)"
// @Param       to        query string false "Latest date, inclusive (YYYY-MM-DD covers the whole day, or RFC 3339)"
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Occasion] "Occasions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /occasions [get]
func (h *OccasionHandler) GetOccasions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var filter services.OccasionFilter
	if filter.PersonID, err = optionalQueryID(c, "person_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.From, _, err = optionalQueryDate(c, "from"); err != nil {
		respondWithError(c, err)
		return
	}
	to, wholeDay, err := optionalQueryDate(c, "to")
	if err != nil {
		respondWithError(c, err)
		return
	}
	if to != nil && wholeDay {
		// A bare date includes the whole day.
		end := to.Add(24 * time.Hour)
		filter.Before = &end
	} else {
		filter.To = to
	}
	if filter.From != nil && ((filter.To != nil && filter.To.Before(*filter.From)) ||
		(filter.Before != nil && !filter.Before.After(*filter.From))) {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "to must not be before from"))
		return
	}

	result, err := h.occasionService.GetUserOccasions(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOccasion handles retrieving a specific occasion.
// @Summary     Get occasion by ID
// @Tags        occasions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Occasion ID"
// @Success     200 {object} models.Occasion "Occasion details"
// @Failure     400 {object} ErrorResponse "Invalid occasion ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Occasion not found"
// @Router      /occasions/{id} [get]
func (h *OccasionHandler) GetOccasion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occasionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	occasion, err := h.occasionService.GetOccasionByID(c.Request.Context(), userID, occasionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, occasion)
}

// UpdateOccasion handles updating an existing occasion.
// @Summary     Update occasion
// @Tags        occasions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Occasion ID"
// @Param       request body UpdateOccasionRequest true "Fields to change"
// @Success     200 {object} models.Occasion "Updated occasion"
// @Failure     400 {object} ErrorResponse "Invalid input or reference"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Occasion not found"
// @Router      /occasions/{id} [put]
func (h *OccasionHandler) UpdateOccasion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occasionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateOccasionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	personID, err := normalizeRef(req.PersonID, "person")
	if err != nil {
		respondWithError(c, err)
		return
	}

	occasion, err := h.occasionService.UpdateOccasion(c.Request.Context(), userID, occasionID, services.UpdateOccasionInput{
		PersonID:     personID,
		Name:         req.Name,
		Type:         req.Type,
		Date:         req.Date,
		BudgetAmount: req.BudgetAmount,
		Recurring:    req.Recurring,
		Notes:        req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionUpdate, "occasion", occasionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, occasion)
}

// DeleteOccasion handles deleting an occasion.
// @Summary     Delete occasion
// @Tags        occasions
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Occasion ID"
// @Success     200 {object} MessageResponse "Occasion deleted"
// @Failure     400 {object} ErrorResponse "Invalid occasion ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Occasion not found"
// @Router      /occasions/{id} [delete]
func (h *OccasionHandler) DeleteOccasion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	occasionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.occasionService.DeleteOccasion(c.Request.Context(), userID, occasionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionDelete, "occasion", occasionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Occasion deleted successfully"})
}
