package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "giftwise/internal/errors"
	"giftwise/internal/pagination"
	"giftwise/internal/services"
)

// PersonHandler handles person-related requests.
type PersonHandler struct {
	personService services.PersonServicer
	auditService  services.AuditServicer
}

// NewPersonHandler creates a new PersonHandler.
func NewPersonHandler(personService services.PersonServicer, auditService services.AuditServicer) *PersonHandler {
	return &PersonHandler{personService: personService, auditService: auditService}
}

// CreatePersonRequest represents the request payload for creating a person.
type CreatePersonRequest struct {
	Name         string     `json:"name" binding:"required,min=1,max=100"`
	Email        string     `json:"email" binding:"omitempty,email,max=255"`
	Relationship string     `json:"relationship" binding:"max=50"`
	Birthday     *time.Time `json:"birthday"`
	Notes        string     `json:"notes" binding:"max=2000"`
	Avatar       string     `json:"avatar" binding:"max=500"`
	FamilyID     *string    `json:"family_id" binding:"omitempty,max=64"`
}

// UpdatePersonRequest represents the request payload for updating a person.
type UpdatePersonRequest struct {
	Name         *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Email        *string    `json:"email" binding:"omitempty,email,max=255"`
	Relationship *string    `json:"relationship" binding:"omitempty,max=50"`
	Birthday     *time.Time `json:"birthday"`
	Notes        *string    `json:"notes" binding:"omitempty,max=2000"`
	Avatar       *string    `json:"avatar" binding:"omitempty,max=500"`
	FamilyID     *string    `json:"family_id" binding:"omitempty,max=64"`
}

// CreatePerson handles the creation of a new person.
// @Summary     Create a person
// @Description Add a gift recipient
// @Tags        people
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreatePersonRequest true "Person details"
// @Success     201 {object} models.Person "Person created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people [post]
func (h *PersonHandler) CreatePerson(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.personService.CreatePerson(c.Request.Context(), userID, services.CreatePersonInput{
		Name:         req.Name,
		Email:        req.Email,
		Relationship: req.Relationship,
		Birthday:     req.Birthday,
		Notes:        req.Notes,
		Avatar:       req.Avatar,
		FamilyID:     req.FamilyID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionCreate, "person", person.ID, c.ClientIP(),
		map[string]interface{}{"name": person.Name})

	c.JSON(http.StatusCreated, person)
}

// GetPeople handles listing people for the authenticated user.
// @Summary     Get people
// @Description List the authenticated user's people, newest first
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Items per page (max 100)"
// @Success     200 {object} pagination.PageResponse[models.Person] "People"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /people [get]
func (h *PersonHandler) GetPeople(c *gin.Context) {
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

	result, err := h.personService.GetUserPeople(c.Request.Context(), userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPerson handles retrieving a specific person.
// @Summary     Get person by ID
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Success     200 {object} models.Person "Person details"
// @Failure     400 {object} ErrorResponse "Invalid person ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id} [get]
func (h *PersonHandler) GetPerson(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	personID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	person, err := h.personService.GetPersonByID(c.Request.Context(), userID, personID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, person)
}

// UpdatePerson handles updating an existing person.
// @Summary     Update person
// @Tags        people
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string              true "Person ID"
// @Param       request body UpdatePersonRequest true "Fields to change"
// @Success     200 {object} models.Person "Updated person"
// @Failure     400 {object} ErrorResponse "Invalid input or person ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id} [put]
func (h *PersonHandler) UpdatePerson(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	personID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdatePersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	person, err := h.personService.UpdatePerson(c.Request.Context(), userID, personID, services.UpdatePersonInput{
		Name:         req.Name,
		Email:        req.Email,
		Relationship: req.Relationship,
		Birthday:     req.Birthday,
		Notes:        req.Notes,
		Avatar:       req.Avatar,
		FamilyID:     req.FamilyID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionUpdate, "person", personID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, person)
}

// DeletePerson handles deleting a person and the gifts addressed to them.
// @Summary     Delete person
// @Tags        people
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Person ID"
// @Success     200 {object} MessageResponse "Person deleted"
// @Failure     400 {object} ErrorResponse "Invalid person ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Person not found"
// @Router      /people/{id} [delete]
func (h *PersonHandler) DeletePerson(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	personID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.personService.DeletePerson(c.Request.Context(), userID, personID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(c.Request.Context(), userID, services.AuditActionDelete, "person", personID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, MessageResponse{Message: "Person deleted successfully"})
}
