package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tajious/backoffice/internal/auth"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/storage"
	"github.com/tajious/backoffice/internal/validation"
)

type StaffHandler struct {
	storage storage.Storage
	auth    *auth.Service
}

func NewStaffHandler(storage storage.Storage, svc *auth.Service) *StaffHandler {
	return &StaffHandler{
		storage: storage,
		auth:    svc,
	}
}

type CreateStaffRequest struct {
	Email    string      `json:"email" validate:"required,email"`
	Name     string      `json:"name" validate:"max=100"`
	Password string      `json:"password" validate:"required,min=8,password"`
	Role     models.Role `json:"role" validate:"required"`
}

func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if !h.auth.IsStaffRole(req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown staff role",
		})
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.StaffUser{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
		Email:    auth.NormalizeEmail(req.Email),
		Name:     strings.TrimSpace(req.Name),
		Password: hash,
		Role:     req.Role,
		Active:   true,
	}
	if err := h.storage.CreateStaffUser(c.UserContext(), user); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

type ListStaffRequest struct {
	Page     int    `query:"page" validate:"min=1"`
	PageSize int    `query:"page_size" validate:"min=1,max=100"`
	Search   string `query:"search"`
	Role     string `query:"role"`
	SortBy   string `query:"sort_by" validate:"oneof=email name role created_at last_login"`
	SortDir  string `query:"sort_dir" validate:"oneof=asc desc"`
}

type ListStaffResponse struct {
	Users []*models.StaffUser `json:"users"`
	Page
}

// List pages through the staff of the caller's tenant with search, role
// filter and sorting.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	var req ListStaffRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	pageDefaults(&req.Page, &req.PageSize)
	if req.SortBy == "" {
		req.SortBy = "created_at"
	}
	if req.SortDir == "" {
		req.SortDir = "desc"
	}

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	users, total, err := h.storage.ListStaffUsers(c.UserContext(), tenant.ID, storage.StaffFilter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
		Role:     req.Role,
		SortBy:   req.SortBy,
		SortDir:  req.SortDir,
	})
	if err != nil {
		return err
	}
	if users == nil {
		users = []*models.StaffUser{}
	}

	return c.JSON(ListStaffResponse{
		Users: users,
		Page:  newPage(total, req.Page, req.PageSize),
	})
}

type UpdateStaffRequest struct {
	Name   *string      `json:"name" validate:"omitempty,max=100"`
	Role   *models.Role `json:"role"`
	Active *bool        `json:"active"`
}

// Update changes a staff member's name, role or status. Admins cannot
// demote or disable themselves, which would leave the tenant without one.
func (h *StaffHandler) Update(c *fiber.Ctx) error {
	var req UpdateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if req.Role != nil && !h.auth.IsStaffRole(*req.Role) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown staff role",
		})
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}
	identity, _ := middleware.IdentityFrom(c)

	id := c.Params("id")
	if identity != nil && identity.SubjectID == id {
		if (req.Role != nil && *req.Role != identity.Role) || (req.Active != nil && !*req.Active) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Cannot change your own role or status",
			})
		}
	}

	user, err := h.storage.GetStaffUser(c.UserContext(), tenant.ID, id)
	if err != nil {
		return err
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}

	if err := h.storage.UpdateStaffUser(c.UserContext(), user); err != nil {
		return err
	}

	return c.JSON(user)
}
