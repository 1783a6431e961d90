package domain

import "github.com/shopspring/decimal"

// CategoryBreakdown is one row of a per-category aggregation
type CategoryBreakdown struct {
	Type  CategoryKey     `json:"type"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// MonthlyTrendPoint is one month of an income-vs-expense trend. A trend for
// a year always has exactly 12 points, months 1..12.
type MonthlyTrendPoint struct {
	Month   int             `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// MonthlySummaryRow is one month of the yearly summary table, with totals
// bucketed by summary group. Savings is always TotalIncome - TotalExpenses.
type MonthlySummaryRow struct {
	Month         int                        `json:"month"`
	Expenses      map[string]decimal.Decimal `json:"expenses"`
	Income        map[string]decimal.Decimal `json:"income"`
	TotalExpenses decimal.Decimal            `json:"totalExpenses"`
	TotalIncome   decimal.Decimal            `json:"totalIncome"`
	Savings       decimal.Decimal            `json:"savings"`
}

// YearlySummaryTotals is the grand-total row of the yearly summary table
type YearlySummaryTotals struct {
	Expenses      map[string]decimal.Decimal `json:"expenses"`
	Income        map[string]decimal.Decimal `json:"income"`
	TotalExpenses decimal.Decimal            `json:"totalExpenses"`
	TotalIncome   decimal.Decimal            `json:"totalIncome"`
	Savings       decimal.Decimal            `json:"savings"`
}

// YearlySummary bundles the 12 monthly rows with the grand total.
// SkippedRows counts rows whose category key did not resolve in the registry;
// those rows contribute to no bucket.
type YearlySummary struct {
	Rows        []MonthlySummaryRow `json:"rows"`
	Totals      YearlySummaryTotals `json:"totals"`
	SkippedRows int                 `json:"skippedRows"`
}

// PeriodStats holds income/expense/savings totals for one time window
type PeriodStats struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Savings  decimal.Decimal `json:"savings"`
}

// RollingAverages holds per-day, per-week, and per-month averages for a year
type RollingAverages struct {
	Daily   PeriodStats `json:"daily"`
	Weekly  PeriodStats `json:"weekly"`
	Monthly PeriodStats `json:"monthly"`
}

// PeriodTotals holds raw income/expense sums for one comparison period
type PeriodTotals struct {
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// ComparisonData holds the three periods of a month-over-month /
// year-over-year comparison
type ComparisonData struct {
	CurrentMonth      PeriodTotals `json:"currentMonth"`
	PreviousMonth     PeriodTotals `json:"previousMonth"`
	SameMonthLastYear PeriodTotals `json:"sameMonthLastYear"`
}
