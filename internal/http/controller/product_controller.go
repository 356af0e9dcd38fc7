package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/iyhunko/product-catalog/internal/errs"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

const (
	productNotFoundMsg = "Product not found"
	fieldsRequiredMsg  = "All fields are required"
	invalidRequestMsg  = "Invalid request body"
	productDeletedMsg  = "Product deleted successfully"
)

// ProductService is the catalog storage the handlers delegate to.
type ProductService interface {
	ListProducts(ctx context.Context, query repository.Query) ([]*model.Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	CreateProduct(ctx context.Context, product *model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, patch model.ProductPatch) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetProductStats(ctx context.Context) (map[string]int, error)
}

// ProductController handles HTTP requests for product operations.
// Failures are attached to the gin context and rendered by middleware.ErrorHandler.
type ProductController struct {
	productService ProductService
}

// NewProductController creates a new ProductController with the given product service.
func NewProductController(productService ProductService) *ProductController {
	registerJSONFieldNames()
	return &ProductController{
		productService: productService,
	}
}

// CreateProductRequest represents the request body for creating a product.
// Price is a pointer so that an explicit 0 is accepted while a missing or null price is not.
type CreateProductRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Price       *float64 `json:"price" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	InStock     bool     `json:"inStock"`
}

// UpdateProductRequest represents the request body for a partial product update.
type UpdateProductRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	InStock     *bool    `json:"inStock"`
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	InStock     bool    `json:"inStock"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

// ListProductsResponse represents one page of the filtered product list.
type ListProductsResponse struct {
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
	Total int               `json:"total"`
	Data  []ProductResponse `json:"data"`
}

// DeleteProductResponse confirms a deletion and echoes the removed product.
type DeleteProductResponse struct {
	Message string          `json:"message"`
	Product ProductResponse `json:"product"`
}

// ListProducts handles GET /api/products. It filters by category and name search,
// then returns the requested page. Without a limit the whole filtered list is one page.
func (pc *ProductController) ListProducts(c *gin.Context) {
	query := repository.NewQuery().
		With(repository.CategoryField, c.Query("category")).
		With(repository.SearchField, c.Query("search"))

	products, err := pc.productService.ListProducts(c.Request.Context(), *query)
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, paginator := repository.Paginate(products, repository.ParsePaginator(c.Query("page"), c.Query("limit")))

	c.JSON(http.StatusOK, ListProductsResponse{
		Page:  paginator.Page,
		Limit: paginator.Limit,
		Total: len(products),
		Data:  toProductResponses(page),
	})
}

// GetProduct handles GET /api/products/:id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	product, err := pc.productService.GetProductByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

// CreateProduct handles POST /api/products.
func (pc *ProductController) CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(bindError(err))
		return
	}

	product := &model.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		InStock:     req.InStock,
	}

	created, err := pc.productService.CreateProduct(c.Request.Context(), product)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, toProductResponse(created))
}

// UpdateProduct handles PUT /api/products/:id. Only the fields present in the body change.
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		_ = c.Error(bindError(err))
		return
	}

	patch := model.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		InStock:     req.InStock,
	}

	updated, err := pc.productService.UpdateProduct(c.Request.Context(), id, patch)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}

	c.JSON(http.StatusOK, toProductResponse(updated))
}

// DeleteProduct handles DELETE /api/products/:id.
func (pc *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := productID(c)
	if !ok {
		return
	}

	deleted, err := pc.productService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(productError(err))
		return
	}

	c.JSON(http.StatusOK, DeleteProductResponse{
		Message: productDeletedMsg,
		Product: toProductResponse(deleted),
	})
}

// GetProductStats handles GET /api/products/stats and returns the product count per category.
func (pc *ProductController) GetProductStats(c *gin.Context) {
	stats, err := pc.productService.GetProductStats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// productID parses the :id path parameter. An id that is not a UUID cannot
// belong to any product, so it is reported as not found.
func productID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		_ = c.Error(errs.NewNotFoundError(productNotFoundMsg))
		return uuid.Nil, false
	}
	return id, true
}

func productError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errs.NewNotFoundError(productNotFoundMsg)
	}
	return err
}

func bindError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make([]errs.FieldError, 0, len(validationErrs))
		for _, fe := range validationErrs {
			fields = append(fields, errs.FieldError{Field: fe.Field(), Error: fe.Tag()})
		}
		return errs.NewValidationError(fieldsRequiredMsg, fields...)
	}
	if errors.Is(err, io.EOF) {
		return errs.NewValidationError(fieldsRequiredMsg)
	}
	return errs.NewValidationError(invalidRequestMsg)
}

var registerOnce sync.Once

// registerJSONFieldNames makes validation errors report JSON field names.
func registerJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func toProductResponses(products []*model.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, toProductResponse(p))
	}
	return responses
}

func toProductResponse(product *model.Product) ProductResponse {
	return ProductResponse{
		ID:          product.ID.String(),
		Name:        product.Name,
		Description: product.Description,
		Price:       product.Price,
		Category:    product.Category,
		InStock:     product.InStock,
		CreatedAt:   product.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   product.UpdatedAt.Format(time.RFC3339),
	}
}
