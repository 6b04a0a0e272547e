package main

import (
	"context"
	"fmt"
	"time"

	"github.com/eshaffer321/campuscard-go/pkg/campuscard"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// cardTools holds the campus card client and implements all tool handlers
type cardTools struct {
	client *campuscard.Client
	now    func() time.Time
}

// PeriodInput selects the report period
type PeriodInput struct {
	StartDate string `json:"startDate,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional, default January 1 of this year)"`
	EndDate   string `json:"endDate,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional, default December 31 of this year)"`
}

type MonthEntry struct {
	Month  string `json:"month" jsonschema:"Month in YYYY-MM format"`
	Amount string `json:"amount" jsonschema:"Amount spent in the month"`
}

type MealEntry struct {
	Meal   string `json:"meal" jsonschema:"Meal period: Breakfast, Lunch, Dinner or LateSnack"`
	Label  string `json:"label" jsonschema:"Meal period name in the card system's locale"`
	Amount string `json:"amount" jsonschema:"Amount spent in the period"`
}

type MerchantEntry struct {
	Merchant string `json:"merchant" jsonschema:"Merchant name"`
	Amount   string `json:"amount" jsonschema:"Total spent at the merchant"`
	Count    int    `json:"count" jsonschema:"Number of purchases at the merchant"`
}

type GetSpendingSummaryOutput struct {
	StartDate            string          `json:"startDate" jsonschema:"First day of the period"`
	EndDate              string          `json:"endDate" jsonschema:"Last day of the period"`
	Status               string          `json:"status" jsonschema:"ready, no_records or no_consumption"`
	TotalSpent           string          `json:"totalSpent" jsonschema:"Total consumption in the period"`
	TransactionCount     int             `json:"transactionCount" jsonschema:"Number of consumption records"`
	TopMerchant          string          `json:"topMerchant,omitempty" jsonschema:"Merchant with the highest total"`
	MaxSingleTransaction string          `json:"maxSingleTransaction" jsonschema:"Largest single purchase"`
	MonthlyTrend         []MonthEntry    `json:"monthlyTrend" jsonschema:"Spending per month in chronological order"`
	MealDistribution     []MealEntry     `json:"mealDistribution" jsonschema:"Spending per meal period"`
	MerchantRanking      []MerchantEntry `json:"merchantRanking" jsonschema:"Top merchants by total spent"`
	Excluded             int             `json:"excluded" jsonschema:"Number of records removed as non-consumption"`
}

func (t *cardTools) GetSpendingSummary(ctx context.Context, req *mcp.CallToolRequest, input PeriodInput) (*mcp.CallToolResult, GetSpendingSummaryOutput, error) {
	report, err := t.generate(ctx, input)
	if err != nil {
		return nil, GetSpendingSummaryOutput{}, err
	}
	return nil, summaryOutput(report), nil
}

// GetLedger tool - lists consumption records
type GetLedgerInput struct {
	StartDate string `json:"startDate,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional, default January 1 of this year)"`
	EndDate   string `json:"endDate,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional, default December 31 of this year)"`
	Limit     int    `json:"limit,omitempty" jsonschema:"Maximum number of records to return (default: 50)"`
}

type LedgerEntry struct {
	Time      string `json:"time" jsonschema:"Transaction time"`
	Merchant  string `json:"merchant" jsonschema:"Merchant name"`
	Amount    string `json:"amount" jsonschema:"Transaction amount"`
	Meal      string `json:"meal" jsonschema:"Meal period"`
	TradeType string `json:"tradeType,omitempty" jsonschema:"Transaction type text"`
}

type GetLedgerOutput struct {
	Status  string        `json:"status" jsonschema:"ready, no_records or no_consumption"`
	Records []LedgerEntry `json:"records" jsonschema:"Consumption records, newest first"`
	Count   int           `json:"count" jsonschema:"Number of records returned"`
	Total   int           `json:"total" jsonschema:"Number of consumption records in the period"`
}

func (t *cardTools) GetLedger(ctx context.Context, req *mcp.CallToolRequest, input GetLedgerInput) (*mcp.CallToolResult, GetLedgerOutput, error) {
	report, err := t.generate(ctx, PeriodInput{StartDate: input.StartDate, EndDate: input.EndDate})
	if err != nil {
		return nil, GetLedgerOutput{}, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	return nil, ledgerOutput(report, limit), nil
}

func (t *cardTools) generate(ctx context.Context, input PeriodInput) (*campuscard.Report, error) {
	params, err := t.params(input)
	if err != nil {
		return nil, err
	}

	report, err := t.client.Reports.Generate(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate report (%s): %w", campuscard.ErrorKind(err), err)
	}
	return report, nil
}

func (t *cardTools) params(input PeriodInput) (*campuscard.ReportParams, error) {
	now := time.Now
	if t.now != nil {
		now = t.now
	}
	loc := t.location()
	start, end := campuscard.CalendarYear(now().In(loc))

	if input.StartDate != "" {
		d, err := campuscard.ParseDate(input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("invalid startDate format (expected YYYY-MM-DD): %w", err)
		}
		start = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}
	if input.EndDate != "" {
		d, err := campuscard.ParseDate(input.EndDate)
		if err != nil {
			return nil, fmt.Errorf("invalid endDate format (expected YYYY-MM-DD): %w", err)
		}
		end = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	}

	return &campuscard.ReportParams{Start: start, End: end}, nil
}

func summaryOutput(report *campuscard.Report) GetSpendingSummaryOutput {
	out := GetSpendingSummaryOutput{
		StartDate:            report.Start.String(),
		EndDate:              report.End.String(),
		Status:               string(report.Status),
		TotalSpent:           "0.00",
		MaxSingleTransaction: "0.00",
		MonthlyTrend:         []MonthEntry{},
		MealDistribution:     []MealEntry{},
		MerchantRanking:      []MerchantEntry{},
		Excluded:             report.Excluded.Input - report.Excluded.Kept,
	}

	s := report.Summary
	if s == nil {
		return out
	}

	out.TotalSpent = s.TotalSpent.StringFixed(2)
	out.TransactionCount = s.TransactionCount
	out.TopMerchant = s.TopMerchant
	out.MaxSingleTransaction = s.MaxSingleTransaction.StringFixed(2)

	for _, m := range s.MonthlyTrend {
		out.MonthlyTrend = append(out.MonthlyTrend, MonthEntry{Month: m.Month, Amount: m.Amount.StringFixed(2)})
	}
	for _, meal := range campuscard.MealPeriods() {
		out.MealDistribution = append(out.MealDistribution, MealEntry{
			Meal:   string(meal),
			Label:  meal.Label(),
			Amount: s.MealDistribution[meal].StringFixed(2),
		})
	}
	for _, m := range s.MerchantRanking {
		out.MerchantRanking = append(out.MerchantRanking, MerchantEntry{
			Merchant: m.Merchant,
			Amount:   m.Amount.StringFixed(2),
			Count:    m.Count,
		})
	}

	return out
}

func ledgerOutput(report *campuscard.Report, limit int) GetLedgerOutput {
	records := report.Ledger.Newest()
	out := GetLedgerOutput{
		Status:  string(report.Status),
		Records: []LedgerEntry{},
		Total:   len(records),
	}

	if len(records) > limit {
		records = records[:limit]
	}
	for _, r := range records {
		out.Records = append(out.Records, LedgerEntry{
			Time:      r.Timestamp.Format("2006-01-02 15:04:05"),
			Merchant:  r.Merchant,
			Amount:    r.Amount.StringFixed(2),
			Meal:      string(r.Meal),
			TradeType: r.TradeType,
		})
	}
	out.Count = len(out.Records)

	return out
}

// location is the client's configured zone for naive dates
func (t *cardTools) location() *time.Location {
	if t.client == nil {
		return campuscard.DefaultLocation()
	}
	return t.client.Location()
}
