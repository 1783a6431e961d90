package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pitaka-app/pitaka-backend/internal/domain"
	"github.com/pitaka-app/pitaka-backend/internal/service"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// AnalyticsHandler handles analytics-related HTTP requests
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// CategoryBreakdownResponse represents one category's totals in API responses
type CategoryBreakdownResponse struct {
	Type  string `json:"type"`
	Total string `json:"total"`
	Count int    `json:"count"`
}

// MonthlyTrendPointResponse represents one month of the trend chart
type MonthlyTrendPointResponse struct {
	Month   int    `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// MonthlySummaryRowResponse represents one month of the yearly summary table
type MonthlySummaryRowResponse struct {
	Month         int               `json:"month"`
	Expenses      map[string]string `json:"expenses"`
	Income        map[string]string `json:"income"`
	TotalExpenses string            `json:"totalExpenses"`
	TotalIncome   string            `json:"totalIncome"`
	Savings       string            `json:"savings"`
}

// YearlySummaryTotalsResponse represents the grand-total row
type YearlySummaryTotalsResponse struct {
	Expenses      map[string]string `json:"expenses"`
	Income        map[string]string `json:"income"`
	TotalExpenses string            `json:"totalExpenses"`
	TotalIncome   string            `json:"totalIncome"`
	Savings       string            `json:"savings"`
}

// YearlySummaryResponse represents the yearly summary in API responses
type YearlySummaryResponse struct {
	Rows        []MonthlySummaryRowResponse `json:"rows"`
	Totals      YearlySummaryTotalsResponse `json:"totals"`
	SkippedRows int                         `json:"skippedRows"`
}

// PeriodStatsResponse represents income/expense/savings for one window
type PeriodStatsResponse struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Savings  string `json:"savings"`
}

// RollingAveragesResponse represents the averages in API responses
type RollingAveragesResponse struct {
	Daily   PeriodStatsResponse `json:"daily"`
	Weekly  PeriodStatsResponse `json:"weekly"`
	Monthly PeriodStatsResponse `json:"monthly"`
}

// PeriodTotalsResponse represents one comparison period
type PeriodTotalsResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// ComparisonChange represents a derived percentage change. Favorable encodes
// the classification polarity: an expense decrease and an income increase are
// favorable.
type ComparisonChange struct {
	Percent   string `json:"percent"`
	Direction string `json:"direction"` // up | down | flat
	Favorable bool   `json:"favorable"`
}

// ComparisonResponse represents the MoM/YoY comparison in API responses
type ComparisonResponse struct {
	CurrentMonth      PeriodTotalsResponse `json:"currentMonth"`
	PreviousMonth     PeriodTotalsResponse `json:"previousMonth"`
	SameMonthLastYear PeriodTotalsResponse `json:"sameMonthLastYear"`
	MoMExpenseChange  ComparisonChange     `json:"momExpenseChange"`
	MoMIncomeChange   ComparisonChange     `json:"momIncomeChange"`
	YoYExpenseChange  ComparisonChange     `json:"yoyExpenseChange"`
	YoYIncomeChange   ComparisonChange     `json:"yoyIncomeChange"`
}

// GetCategoryBreakdown godoc
// @Summary Category breakdown
// @Description Per-category totals for a date range, sorted by total descending
// @Tags analytics
// @Produce json
// @Param startDate query string false "Start date (YYYY-MM-DD), inclusive"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Param category query string false "Category class (income or expense)"
// @Success 200 {array} CategoryBreakdownResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/breakdown [get]
func (h *AnalyticsHandler) GetCategoryBreakdown(c echo.Context) error {
	startDate, endDate, err := parseDateRangeParams(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	var class *domain.CategoryClass
	if v := c.QueryParam("category"); v != "" {
		parsed := domain.CategoryClass(v)
		if parsed != domain.ClassIncome && parsed != domain.ClassExpense {
			return NewValidationError(c, "Invalid category", []ValidationError{
				{Field: "category", Message: "Must be one of: income, expense"},
			})
		}
		class = &parsed
	}

	breakdown, err := h.analyticsService.CategoryBreakdown(startDate, endDate, class)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute category breakdown")
		return NewInternalError(c, "Failed to compute category breakdown")
	}

	return c.JSON(http.StatusOK, toBreakdownResponses(breakdown))
}

// GetTopCategories godoc
// @Summary Top spending categories
// @Tags analytics
// @Produce json
// @Param limit query int false "Max categories" default(5)
// @Param startDate query string false "Start date (YYYY-MM-DD), inclusive"
// @Param endDate query string false "End date (YYYY-MM-DD), inclusive"
// @Success 200 {array} CategoryBreakdownResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/top-categories [get]
func (h *AnalyticsHandler) GetTopCategories(c echo.Context) error {
	startDate, endDate, err := parseDateRangeParams(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	limit := 0
	if v := c.QueryParam("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			return NewValidationError(c, "Invalid limit", nil)
		}
		limit = parsed
	}

	top, err := h.analyticsService.TopCategories(limit, startDate, endDate)
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute top categories")
		return NewInternalError(c, "Failed to compute top categories")
	}

	return c.JSON(http.StatusOK, toBreakdownResponses(top))
}

// GetMonthlyTrend godoc
// @Summary Monthly income vs expense trend
// @Description Always returns exactly 12 points, months 1..12
// @Tags analytics
// @Produce json
// @Param year path int true "Target year"
// @Success 200 {array} MonthlyTrendPointResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/trend/{year} [get]
func (h *AnalyticsHandler) GetMonthlyTrend(c echo.Context) error {
	year, err := parseYearParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	trend, err := h.analyticsService.MonthlyTrend(year)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidYear) {
			return NewValidationError(c, "Invalid year", nil)
		}
		log.Error().Err(err).Int("year", year).Msg("Failed to compute monthly trend")
		return NewInternalError(c, "Failed to compute monthly trend")
	}

	responses := make([]MonthlyTrendPointResponse, len(trend))
	for i, point := range trend {
		responses[i] = MonthlyTrendPointResponse{
			Month:   point.Month,
			Income:  point.Income.String(),
			Expense: point.Expense.String(),
		}
	}
	return c.JSON(http.StatusOK, responses)
}

// GetYearlySummary godoc
// @Summary Yearly summary table
// @Description 12 monthly rows grouped by summary group, plus a grand-total row
// @Tags analytics
// @Produce json
// @Param year path int true "Target year"
// @Success 200 {object} YearlySummaryResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/summary/{year} [get]
func (h *AnalyticsHandler) GetYearlySummary(c echo.Context) error {
	year, err := parseYearParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}

	summary, err := h.analyticsService.YearlySummary(year)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidYear) {
			return NewValidationError(c, "Invalid year", nil)
		}
		log.Error().Err(err).Int("year", year).Msg("Failed to compute yearly summary")
		return NewInternalError(c, "Failed to compute yearly summary")
	}

	rows := make([]MonthlySummaryRowResponse, len(summary.Rows))
	for i, row := range summary.Rows {
		rows[i] = MonthlySummaryRowResponse{
			Month:         row.Month,
			Expenses:      toGroupStringMap(row.Expenses),
			Income:        toGroupStringMap(row.Income),
			TotalExpenses: row.TotalExpenses.StringFixed(2),
			TotalIncome:   row.TotalIncome.StringFixed(2),
			Savings:       row.Savings.StringFixed(2),
		}
	}

	return c.JSON(http.StatusOK, YearlySummaryResponse{
		Rows: rows,
		Totals: YearlySummaryTotalsResponse{
			Expenses:      toGroupStringMap(summary.Totals.Expenses),
			Income:        toGroupStringMap(summary.Totals.Income),
			TotalExpenses: summary.Totals.TotalExpenses.StringFixed(2),
			TotalIncome:   summary.Totals.TotalIncome.StringFixed(2),
			Savings:       summary.Totals.Savings.StringFixed(2),
		},
		SkippedRows: summary.SkippedRows,
	})
}

// GetRollingAverages godoc
// @Summary Rolling averages
// @Description Per-day/week/month averages; in-progress years use elapsed counts
// @Tags analytics
// @Produce json
// @Param year query int false "Target year" default(current year)
// @Success 200 {object} RollingAveragesResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/averages [get]
func (h *AnalyticsHandler) GetRollingAverages(c echo.Context) error {
	year := time.Now().Year()
	if v := c.QueryParam("year"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return NewValidationError(c, "Invalid year", nil)
		}
		year = parsed
	}

	averages, err := h.analyticsService.RollingAverages(year)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidYear) {
			return NewValidationError(c, "Invalid year", nil)
		}
		log.Error().Err(err).Int("year", year).Msg("Failed to compute rolling averages")
		return NewInternalError(c, "Failed to compute rolling averages")
	}

	return c.JSON(http.StatusOK, RollingAveragesResponse{
		Daily:   toPeriodStatsResponse(averages.Daily),
		Weekly:  toPeriodStatsResponse(averages.Weekly),
		Monthly: toPeriodStatsResponse(averages.Monthly),
	})
}

// GetComparison godoc
// @Summary Month-over-month / year-over-year comparison
// @Tags analytics
// @Produce json
// @Param year path int true "Target year"
// @Param month path int true "Target month (1-12)"
// @Success 200 {object} ComparisonResponse
// @Failure 400 {object} ProblemDetails
// @Router /analytics/comparison/{year}/{month} [get]
func (h *AnalyticsHandler) GetComparison(c echo.Context) error {
	year, err := parseYearParam(c)
	if err != nil {
		return NewValidationError(c, "Invalid year", nil)
	}
	month, err := strconv.Atoi(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month", nil)
	}

	comparison, err := h.analyticsService.Comparison(year, month)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidYear) {
			return NewValidationError(c, "Invalid year", nil)
		}
		if errors.Is(err, domain.ErrInvalidMonth) {
			return NewValidationError(c, "Invalid month", nil)
		}
		log.Error().Err(err).Int("year", year).Int("month", month).Msg("Failed to compute comparison")
		return NewInternalError(c, "Failed to compute comparison")
	}

	return c.JSON(http.StatusOK, ComparisonResponse{
		CurrentMonth:      toPeriodTotalsResponse(comparison.CurrentMonth),
		PreviousMonth:     toPeriodTotalsResponse(comparison.PreviousMonth),
		SameMonthLastYear: toPeriodTotalsResponse(comparison.SameMonthLastYear),
		MoMExpenseChange:  toComparisonChange(comparison.CurrentMonth.Expense, comparison.PreviousMonth.Expense, domain.ClassExpense),
		MoMIncomeChange:   toComparisonChange(comparison.CurrentMonth.Income, comparison.PreviousMonth.Income, domain.ClassIncome),
		YoYExpenseChange:  toComparisonChange(comparison.CurrentMonth.Expense, comparison.SameMonthLastYear.Expense, domain.ClassExpense),
		YoYIncomeChange:   toComparisonChange(comparison.CurrentMonth.Income, comparison.SameMonthLastYear.Income, domain.ClassIncome),
	})
}

// GetCurrentMonthStats godoc
// @Summary Current month totals
// @Tags analytics
// @Produce json
// @Success 200 {object} PeriodStatsResponse
// @Router /analytics/current-month [get]
func (h *AnalyticsHandler) GetCurrentMonthStats(c echo.Context) error {
	stats, err := h.analyticsService.CurrentMonthStats()
	if err != nil {
		log.Error().Err(err).Msg("Failed to compute current month stats")
		return NewInternalError(c, "Failed to compute current month stats")
	}
	return c.JSON(http.StatusOK, toPeriodStatsResponse(*stats))
}

// Helpers

func parseYearParam(c echo.Context) (int, error) {
	return strconv.Atoi(c.Param("year"))
}

func parseDateRangeParams(c echo.Context) (*time.Time, *time.Time, error) {
	var startDate, endDate *time.Time

	if v := c.QueryParam("startDate"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, errors.New("invalid startDate")
		}
		startDate = &parsed
	}
	if v := c.QueryParam("endDate"); v != "" {
		parsed, err := time.Parse(dateLayout, v)
		if err != nil {
			return nil, nil, errors.New("invalid endDate")
		}
		endDate = &parsed
	}
	return startDate, endDate, nil
}

func toBreakdownResponses(breakdown []domain.CategoryBreakdown) []CategoryBreakdownResponse {
	responses := make([]CategoryBreakdownResponse, len(breakdown))
	for i, entry := range breakdown {
		responses[i] = CategoryBreakdownResponse{
			Type:  string(entry.Type),
			Total: entry.Total.StringFixed(2),
			Count: entry.Count,
		}
	}
	return responses
}

func toGroupStringMap(groups map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(groups))
	for group, total := range groups {
		out[group] = total.StringFixed(2)
	}
	return out
}

func toPeriodStatsResponse(stats domain.PeriodStats) PeriodStatsResponse {
	return PeriodStatsResponse{
		Income:   stats.Income.String(),
		Expenses: stats.Expenses.String(),
		Savings:  stats.Savings.String(),
	}
}

func toPeriodTotalsResponse(totals domain.PeriodTotals) PeriodTotalsResponse {
	return PeriodTotalsResponse{
		Income:  totals.Income.StringFixed(2),
		Expense: totals.Expense.StringFixed(2),
	}
}

func toComparisonChange(current, previous decimal.Decimal, class domain.CategoryClass) ComparisonChange {
	change := service.PercentChange(current, previous)

	direction := "flat"
	if change.GreaterThan(decimal.Zero) {
		direction = "up"
	} else if change.LessThan(decimal.Zero) {
		direction = "down"
	}

	// Expenses improve when they fall, income improves when it rises
	favorable := false
	if class == domain.ClassExpense {
		favorable = change.LessThan(decimal.Zero)
	} else {
		favorable = change.GreaterThan(decimal.Zero)
	}

	return ComparisonChange{
		Percent:   change.StringFixed(1),
		Direction: direction,
		Favorable: favorable,
	}
}
