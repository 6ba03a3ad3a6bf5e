package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tajious/backoffice/internal/middleware"
	"github.com/tajious/backoffice/internal/models"
	"github.com/tajious/backoffice/internal/storage"
	"github.com/tajious/backoffice/internal/validation"
)

// ProductHandler serves the tenant catalogue. Every query is scoped to the
// resolved tenant; ids from another tenant are reported as not found.
type ProductHandler struct {
	storage storage.Storage
}

func NewProductHandler(storage storage.Storage) *ProductHandler {
	return &ProductHandler{
		storage: storage,
	}
}

type ProductRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=5000"`
	PriceCents  int64  `json:"price_cents" validate:"min=0"`
	Stock       int    `json:"stock" validate:"min=0"`
	Active      *bool  `json:"active"`
}

type ListProductsRequest struct {
	Page     int    `query:"page" validate:"min=1"`
	PageSize int    `query:"page_size" validate:"min=1,max=100"`
	Search   string `query:"search"`
}

type ListProductsResponse struct {
	Products []*models.Product `json:"products"`
	Page
}

func (h *ProductHandler) List(c *fiber.Ctx) error {
	return h.list(c, false)
}

// StoreList is the storefront view: active products only, no identity needed.
func (h *ProductHandler) StoreList(c *fiber.Ctx) error {
	return h.list(c, true)
}

func (h *ProductHandler) list(c *fiber.Ctx, activeOnly bool) error {
	var req ListProductsRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid query parameters",
		})
	}

	pageDefaults(&req.Page, &req.PageSize)

	if err := validation.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	products, total, err := h.storage.ListProducts(c.UserContext(), tenant.ID, storage.ProductFilter{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Search:     req.Search,
		ActiveOnly: activeOnly,
	})
	if err != nil {
		return err
	}
	if products == nil {
		products = []*models.Product{}
	}

	return c.JSON(ListProductsResponse{
		Products: products,
		Page:     newPage(total, req.Page, req.PageSize),
	})
}

func (h *ProductHandler) Create(c *fiber.Ctx) error {
	req, err := parseProduct(c)
	if err != nil || req == nil {
		return err
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	product := &models.Product{
		ID:       uuid.NewString(),
		TenantID: tenant.ID,
		Active:   true,
	}
	req.apply(product)

	if err := h.storage.CreateProduct(c.UserContext(), product); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) Get(c *fiber.Ctx) error {
	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	product, err := h.storage.GetProduct(c.UserContext(), tenant.ID, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(product)
}

func (h *ProductHandler) Update(c *fiber.Ctx) error {
	req, err := parseProduct(c)
	if err != nil || req == nil {
		return err
	}

	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	product, err := h.storage.GetProduct(c.UserContext(), tenant.ID, c.Params("id"))
	if err != nil {
		return err
	}
	req.apply(product)

	if err := h.storage.UpdateProduct(c.UserContext(), product); err != nil {
		return err
	}

	return c.JSON(product)
}

func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	tenant, err := middleware.RequireTenant(c)
	if err != nil {
		return err
	}

	if err := h.storage.DeleteProduct(c.UserContext(), tenant.ID, c.Params("id")); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// parseProduct writes the 400 response itself and returns a nil request
// when the body is unusable.
func parseProduct(c *fiber.Ctx) (*ProductRequest, error) {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := validation.ValidateStruct(req); err != nil {
		return nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return &req, nil
}

func (r *ProductRequest) apply(p *models.Product) {
	p.Title = strings.TrimSpace(r.Title)
	p.Description = r.Description
	p.PriceCents = r.PriceCents
	p.Stock = r.Stock
	if r.Active != nil {
		p.Active = *r.Active
	}
}
