package handlers

import (
	"errors"
	"strconv"

	"gcub-intake/internal/core/domain"
	"gcub-intake/internal/core/services"
	"gcub-intake/internal/pkg/pagination"
	"gcub-intake/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// ApplicationHandler handles application intake and lifecycle endpoints
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler creates a new application handler
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{
		appService: appService,
	}
}

// getActor reads the optional operator reference from the X-Actor header.
// Actor identity is plain data here; authentication lives elsewhere.
func getActor(c *fiber.Ctx) string {
	return c.Get("X-Actor")
}

// CreateApplicationRequest represents create application request
type CreateApplicationRequest struct {
	ApplicationType string `json:"application_type"`
	ProductID       uint   `json:"product_id"`
	BranchID        uint   `json:"branch_id"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
}

// Create submits a new application
// @Summary Create application
// @Description Submit a new deposit/loan application
// @Tags Applications
// @Accept json
// @Produce json
// @Param body body CreateApplicationRequest true "Application data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /applications [post]
func (h *ApplicationHandler) Create(c *fiber.Ctx) error {
	var req CreateApplicationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	input := &services.CreateApplicationInput{
		ApplicationType: req.ApplicationType,
		ProductID:       req.ProductID,
		BranchID:        req.BranchID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Actor:           getActor(c),
	}

	app, err := h.appService.Create(c.Context(), input)
	if err != nil {
		var ve *domain.ValidationError
		var dup *services.DuplicateApplicationError
		switch {
		case errors.As(err, &ve):
			return response.ValidationFailed(c, "Validation failed", ve.Fields)
		case errors.As(err, &dup):
			return response.ConflictWithData(c, "An active application already exists for this applicant and product", fiber.Map{
				"existing_application": dup.Existing.ToResponse(),
			})
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Submission raced with another request, please retry")
		default:
			return response.InternalServerError(c, "Failed to create application")
		}
	}

	return response.Created(c, "Application created successfully", fiber.Map{
		"application": app.ToResponse(),
	})
}

// List lists applications
// @Summary List applications
// @Description List applications with filters and pagination
// @Tags Applications
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by application type"
// @Param branch_id query int false "Filter by branch ID"
// @Param search query string false "Free-text search"
// @Success 200 {object} response.Response
// @Router /applications [get]
func (h *ApplicationHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	input := &services.ListInput{
		Page:   params.Page,
		Limit:  params.Limit,
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Search: c.Query("search"),
	}

	if branchID := c.Query("branch_id"); branchID != "" {
		id, err := strconv.ParseUint(branchID, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid branch_id filter")
		}
		input.BranchID = uint(id)
	}

	result, err := h.appService.List(c.Context(), input)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			return response.ValidationFailed(c, "Validation failed", ve.Fields)
		}
		return response.InternalServerError(c, "Failed to list applications")
	}

	return response.Success(c, "Applications retrieved successfully", result)
}

// GetByID gets an application by ID
// @Summary Get application by ID
// @Description Get a specific application with branch name
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	app, err := h.appService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get application")
	}

	return response.Success(c, "Application retrieved successfully", fiber.Map{
		"application": app.ToResponse(),
	})
}

// UpdateStatusRequest represents status change request
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// UpdateStatus changes the status of an application
// @Summary Update application status
// @Description Move an application along the workflow (open → in-progress → approved/rejected)
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Param body body UpdateStatusRequest true "New status"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Failure 422 {object} response.Response
// @Router /applications/{id}/status [put]
func (h *ApplicationHandler) UpdateStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Status == "" {
		return response.BadRequest(c, "Status is required")
	}

	input := &services.UpdateStatusInput{
		Status: req.Status,
		Notes:  req.Notes,
		Actor:  getActor(c),
	}

	app, err := h.appService.UpdateStatus(c.Context(), uint(id), input)
	if err != nil {
		var ve *domain.ValidationError
		switch {
		case errors.As(err, &ve):
			return response.ValidationFailed(c, "Validation failed", ve.Fields)
		case errors.Is(err, domain.ErrApplicationNotFound):
			return response.NotFound(c, "Application not found")
		case errors.Is(err, domain.ErrInvalidTransition):
			return response.UnprocessableEntity(c, "Requested status transition is not allowed")
		case errors.Is(err, domain.ErrConflict):
			return response.Conflict(c, "Application was modified by another operator, please retry")
		default:
			return response.InternalServerError(c, "Failed to update status")
		}
	}

	return response.Success(c, "Status updated successfully", fiber.Map{
		"application": app.ToResponse(),
	})
}

// GetHistory gets the status history of an application
// @Summary Get application status history
// @Description Get the append-only status audit trail, newest first
// @Tags Applications
// @Accept json
// @Produce json
// @Param id path int true "Application ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /applications/{id}/history [get]
func (h *ApplicationHandler) GetHistory(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid application ID")
	}

	logs, err := h.appService.GetHistory(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			return response.NotFound(c, "Application not found")
		}
		return response.InternalServerError(c, "Failed to get history")
	}

	return response.Success(c, "History retrieved successfully", fiber.Map{
		"history": logs,
	})
}
