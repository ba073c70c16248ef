package handlers

import (
	"strconv"

	"gcub-intake/internal/adapters/persistence/models"
	"gcub-intake/internal/adapters/persistence/repositories"
	"gcub-intake/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// CatalogHandler handles branch directory and product catalog endpoints.
// Plain create/read/update/delete over the catalog tables; the intake core
// only consumes these as read-only collaborators.
type CatalogHandler struct {
	branchRepo  *repositories.BranchRepository
	productRepo *repositories.ProductRepository
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(branchRepo *repositories.BranchRepository, productRepo *repositories.ProductRepository) *CatalogHandler {
	return &CatalogHandler{
		branchRepo:  branchRepo,
		productRepo: productRepo,
	}
}

// ============================================================
// Branches
// ============================================================

// ListBranches lists branches
// @Summary List branches
// @Description List active branches (all=true includes inactive)
// @Tags Catalog
// @Produce json
// @Param all query bool false "Include inactive branches"
// @Success 200 {object} response.Response
// @Router /branches [get]
func (h *CatalogHandler) ListBranches(c *fiber.Ctx) error {
	var branches []*models.Branch
	var err error

	if c.QueryBool("all") {
		branches, err = h.branchRepo.ListAll(c.Context())
	} else {
		branches, err = h.branchRepo.List(c.Context())
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list branches")
	}

	return response.Success(c, "Branches retrieved successfully", fiber.Map{
		"branches": branches,
	})
}

// GetBranch gets a branch by ID
// @Summary Get branch
// @Tags Catalog
// @Produce json
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [get]
func (h *CatalogHandler) GetBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	branch, err := h.branchRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Branch not found")
	}

	return response.Success(c, "Branch retrieved successfully", fiber.Map{
		"branch": branch,
	})
}

// BranchRequest represents branch create/update payload
type BranchRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Address  string `json:"address,omitempty"`
	Phone    string `json:"phone,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// CreateBranch creates a branch
// @Summary Create branch
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body BranchRequest true "Branch data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /branches [post]
func (h *CatalogHandler) CreateBranch(c *fiber.Ctx) error {
	var req BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" {
		return response.BadRequest(c, "Branch code is required")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Branch name is required")
	}

	branch := &models.Branch{
		Code:     req.Code,
		Name:     req.Name,
		Address:  req.Address,
		Phone:    req.Phone,
		IsActive: true,
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := h.branchRepo.Create(c.Context(), branch); err != nil {
		return response.Conflict(c, "Branch code already exists")
	}

	return response.Created(c, "Branch created successfully", fiber.Map{
		"branch": branch,
	})
}

// UpdateBranch updates a branch
// @Summary Update branch
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Branch ID"
// @Param body body BranchRequest true "Branch data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [put]
func (h *CatalogHandler) UpdateBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	branch, err := h.branchRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Branch not found")
	}

	var req BranchRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code != "" {
		branch.Code = req.Code
	}
	if req.Name != "" {
		branch.Name = req.Name
	}
	if req.Address != "" {
		branch.Address = req.Address
	}
	if req.Phone != "" {
		branch.Phone = req.Phone
	}
	if req.IsActive != nil {
		branch.IsActive = *req.IsActive
	}

	if err := h.branchRepo.Update(c.Context(), branch); err != nil {
		return response.InternalServerError(c, "Failed to update branch")
	}

	return response.Success(c, "Branch updated successfully", fiber.Map{
		"branch": branch,
	})
}

// DeleteBranch soft deletes a branch
// @Summary Delete branch
// @Tags Catalog
// @Produce json
// @Param id path int true "Branch ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /branches/{id} [delete]
func (h *CatalogHandler) DeleteBranch(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid branch ID")
	}

	if _, err := h.branchRepo.GetByID(c.Context(), uint(id)); err != nil {
		return response.NotFound(c, "Branch not found")
	}

	if err := h.branchRepo.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete branch")
	}

	return response.Success(c, "Branch deleted successfully", nil)
}

// ============================================================
// Products
// ============================================================

// ListProducts lists products
// @Summary List products
// @Description List active products, optionally filtered by category
// @Tags Catalog
// @Produce json
// @Param category query string false "Filter by category (deposit or loan)"
// @Param all query bool false "Include inactive products"
// @Success 200 {object} response.Response
// @Router /products [get]
func (h *CatalogHandler) ListProducts(c *fiber.Ctx) error {
	var products []*models.Product
	var err error

	switch {
	case c.QueryBool("all"):
		products, err = h.productRepo.ListAll(c.Context())
	case c.Query("category") != "":
		products, err = h.productRepo.ListByCategory(c.Context(), c.Query("category"))
	default:
		products, err = h.productRepo.List(c.Context())
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to list products")
	}

	return response.Success(c, "Products retrieved successfully", fiber.Map{
		"products": products,
	})
}

// GetProduct gets a product by ID
// @Summary Get product
// @Tags Catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [get]
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.productRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Product not found")
	}

	return response.Success(c, "Product retrieved successfully", fiber.Map{
		"product": product,
	})
}

// ProductRequest represents product create/update payload
type ProductRequest struct {
	Code         string   `json:"code"`
	Name         string   `json:"name"`
	Category     string   `json:"category"`
	Description  string   `json:"description,omitempty"`
	InterestRate *float64 `json:"interest_rate,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// CreateProduct creates a product
// @Summary Create product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param body body ProductRequest true "Product data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /products [post]
func (h *CatalogHandler) CreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Code == "" {
		return response.BadRequest(c, "Product code is required")
	}
	if req.Name == "" {
		return response.BadRequest(c, "Product name is required")
	}
	if req.Category != models.ProductCategoryDeposit && req.Category != models.ProductCategoryLoan {
		return response.BadRequest(c, "Category must be 'deposit' or 'loan'")
	}

	product := &models.Product{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		IsActive:    true,
	}
	if req.InterestRate != nil {
		product.InterestRate = *req.InterestRate
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.productRepo.Create(c.Context(), product); err != nil {
		return response.Conflict(c, "Product code already exists")
	}

	return response.Created(c, "Product created successfully", fiber.Map{
		"product": product,
	})
}

// UpdateProduct updates a product
// @Summary Update product
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body ProductRequest true "Product data"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [put]
func (h *CatalogHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	product, err := h.productRepo.GetByID(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "Product not found")
	}

	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code != "" {
		product.Code = req.Code
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Category != "" {
		if req.Category != models.ProductCategoryDeposit && req.Category != models.ProductCategoryLoan {
			return response.BadRequest(c, "Category must be 'deposit' or 'loan'")
		}
		product.Category = req.Category
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.InterestRate != nil {
		product.InterestRate = *req.InterestRate
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := h.productRepo.Update(c.Context(), product); err != nil {
		return response.InternalServerError(c, "Failed to update product")
	}

	return response.Success(c, "Product updated successfully", fiber.Map{
		"product": product,
	})
}

// DeleteProduct soft deletes a product
// @Summary Delete product
// @Tags Catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /products/{id} [delete]
func (h *CatalogHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid product ID")
	}

	if _, err := h.productRepo.GetByID(c.Context(), uint(id)); err != nil {
		return response.NotFound(c, "Product not found")
	}

	if err := h.productRepo.Delete(c.Context(), uint(id)); err != nil {
		return response.InternalServerError(c, "Failed to delete product")
	}

	return response.Success(c, "Product deleted successfully", nil)
}
