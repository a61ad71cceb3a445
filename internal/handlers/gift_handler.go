package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/models"
	"giftwise/internal/pagination"
	"giftwise/internal/services"
)

// GiftHandler handles gift-related requests.
type GiftHandler struct {
	giftService  services.GiftServicer
	auditService services.AuditServicer
}

// NewGiftHandler creates a new GiftHandler.
func NewGiftHandler(giftService services.GiftServicer, auditService services.AuditServicer) *GiftHandler {
	return &GiftHandler{giftService: giftService, auditService: auditService}
}

// CreateGiftRequest represents the request payload for creating a gift.
// Price is in minor units of Currency.
type CreateGiftRequest struct {
	RecipientID string            `json:"recipient_id" binding:"required"`
	OccasionID  *string           `json:"occasion_id"`
	Name        string            `json:"name" binding:"required,min=1,max=200"`
	Description string            `json:"description" binding:"max=2000"`
	Price       int64             `json:"price" binding:"gte=0"`
	Currency    string            `json:"currency" binding:"omitempty,iso4217"`
	Status      models.GiftStatus `json:"status" binding:"omitempty,gift_status"`
	URL         string            `json:"url" binding:"omitempty,url,max=2048"`
	Notes       string            `json:"notes" binding:"max=2000"`
}

// UpdateGiftRequest represents the request payload for updating a gift. An
// empty occasion_id unlinks the occasion and an empty url clears it.
type UpdateGiftRequest struct {
	RecipientID *string            `json:"recipient_id"`
	OccasionID  *string            `json:"occasion_id"`
	Name        *string            `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string            `json:"description" binding:"omitempty,max=2000"`
	Price       *int64             `json:"price" binding:"omitempty,gte=0"`
	Currency    *string            `json:"currency" binding:"omitempty,iso4217"`
	Status      *models.GiftStatus `json:"status" binding:"omitempty,gift_status"`
	URL         *string            `json:"url" binding:"omitempty,max=2048,eq=|url"`
	Notes       *string            `json:"notes" binding:"omitempty,max=2000"`
}

// CreateGift handles the creation of a new gift.
// @Summary     Create a gift
// @Description Record a gift for one of the caller's people
// @Tags        gifts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateGiftRequest true "Gift details"
// @Success     201 {object} models.Gift "Gift created"
// @Failure     400 {object} ErrorResponse "Invalid input or reference"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gifts [post]
func (h *GiftHandler) CreateGift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	recipientID, err := normalizeRef(&req.RecipientID, "recipient")
	if err != nil {
		respondWithError(c, err)
		return
	}
	occasionID, err := normalizeRef(req.OccasionID, "occasion")
	if err != nil {
		respondWithError(c, err)
		return
	}

	gift, err := h.giftService.CreateGift(c.Request.Context(), userID, services.CreateGiftInput{
		RecipientID: *recipientID,
		OccasionID:  occasionID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Status:      req.Status,
		URL:         req.URL,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionCreate, "gift", gift.ID, c.ClientIP(),
		map[string]interface{}{"name": gift.Name, "price": gift.Price, "recipient_id": gift.RecipientID})

	c.JSON(http.StatusCreated, gift)
}

// GetGifts handles listing gifts for the authenticated user.
// @Summary     Get gifts
// @Description List the authenticated user's gifts, newest first
// @Tags        gifts
// @Produce     json
// @Security    BearerAuth
// @Param       status       query string false "Filter by status (planned/purchased/wrapped/given)"
// @Param       recipient_id query string false "Filter by recipient"
// @Param       occasion_id  query string false "Filter by occasion"
// @Param       page         query int    false "Page number"
// @Param       page_size    query int    false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Gift] "Gifts"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /gifts [get]
func (h *GiftHandler) GetGifts(c *gin.Context) {
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

	var filter services.GiftFilter
	if v := c.Query("status"); v != "" {
		status := models.GiftStatus(v)
		if !status.IsValid() {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "status must be one of planned, purchased, wrapped, given"))
			return
		}
		filter.Status = &status
	}
	if filter.RecipientID, err = optionalQueryID(c, "recipient_id"); err != nil {
		respondWithError(c, err)
		return
	}
	if filter.OccasionID, err = optionalQueryID(c, "occasion_id"); err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.giftService.GetUserGifts(c.Request.Context(), userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetGift handles retrieving a specific gift.
// @Summary     Get gift by ID
// @Tags        gifts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Gift ID"
// @Success     200 {object} models.Gift "Gift details"
// @Failure     400 {object} ErrorResponse "Invalid gift ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Gift not found"
// @Router      /gifts/{id} [get]
func (h *GiftHandler) GetGift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	giftID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	gift, err := h.giftService.GetGiftByID(c.Request.Context(), userID, giftID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gift)
}

// UpdateGift handles updating an existing gift, including status changes.
// @Summary     Update gift
// @Tags        gifts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string            true "Gift ID"
// @Param       request body UpdateGiftRequest true "Fields to change"
// @Success     200 {object} models.Gift "Updated gift"
// @Failure     400 {object} ErrorResponse "Invalid input or reference"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Gift not found"
// @Router      /gifts/{id} [put]
func (h *GiftHandler) UpdateGift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	giftID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateGiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	recipientID, err := normalizeRef(req.RecipientID, "recipient")
	if err != nil {
		respondWithError(c, err)
		return
	}
	occasionID, err := normalizeRef(req.OccasionID, "occasion")
	if err != nil {
		respondWithError(c, err)
		return
	}

	gift, err := h.giftService.UpdateGift(c.Request.Context(), userID, giftID, services.UpdateGiftInput{
		RecipientID: recipientID,
		OccasionID:  occasionID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Currency:    req.Currency,
		Status:      req.Status,
		URL:         req.URL,
		Notes:       req.Notes,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Status != nil {
		changes["status"] = *req.Status
	}
	h.auditService.Log(c.Request.Context(), userID, services.AuditActionUpdate, "gift", giftID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, gift)
}

// DeleteGift handles deleting a gift.
// @Summary     Delete gift
// @Tags        gifts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Gift ID"
// @Success     200 {object} MessageResponse "Gift deleted"
// @Failure     400 {object} ErrorResponse "Invalid gift ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Gift not found"
// @Router      /gifts/{id} [delete]
func (h *GiftHandler) DeleteGift(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	giftID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.giftService.DeleteGift(c.Request.Context(), userID, giftID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionDelete, "gift", giftID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Gift deleted successfully"})
}
