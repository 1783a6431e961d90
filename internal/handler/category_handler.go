package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pitaka-app/pitaka-backend/internal/domain"
)

// CategoryHandler handles category catalog HTTP requests
type CategoryHandler struct{}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Class string `json:"class"`
	Group string `json:"group"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// CategoryCatalogResponse represents the full catalog
type CategoryCatalogResponse struct {
	Categories    []CategoryResponse `json:"categories"`
	ExpenseGroups []string           `json:"expenseGroups"`
	IncomeGroups  []string           `json:"incomeGroups"`
}

// GetCategories godoc
// @Summary Category catalog
// @Description The static category registry with display metadata and summary groups
// @Tags categories
// @Produce json
// @Success 200 {object} CategoryCatalogResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	categories := domain.Categories()

	responses := make([]CategoryResponse, len(categories))
	for i, category := range categories {
		responses[i] = CategoryResponse{
			Key:   string(category.Key),
			Label: category.Label,
			Class: string(category.Class),
			Group: category.Group,
			Icon:  category.Icon,
			Color: category.Color,
		}
	}

	return c.JSON(http.StatusOK, CategoryCatalogResponse{
		Categories:    responses,
		ExpenseGroups: domain.ExpenseGroups,
		IncomeGroups:  domain.IncomeGroups,
	})
}
