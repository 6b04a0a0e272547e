package campuscard

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RankingLimit is the number of merchants in a summary's ranking
const RankingLimit = 15

// Summarize reduces a ledger into the summary view. An empty ledger yields
// ErrNoData.
//
// Merchants with equal totals are ordered by name, which also decides the
// top merchant.
func Summarize(ledger *Ledger) (*Summary, error) {
	if ledger.IsEmpty() {
		return nil, ErrNoData
	}

	summary := &Summary{
		TotalSpent:       decimal.Zero,
		TransactionCount: ledger.Len(),
		MealDistribution: make(map[MealPeriod]decimal.Decimal, 4),
	}
	for _, m := range MealPeriods() {
		summary.MealDistribution[m] = decimal.Zero
	}

	months := make(map[string]decimal.Decimal)
	merchants := make(map[string]*MerchantTotal)

	for i, r := range ledger.Records {
		summary.TotalSpent = summary.TotalSpent.Add(r.Amount)
		if i == 0 || r.Amount.GreaterThan(summary.MaxSingleTransaction) {
			summary.MaxSingleTransaction = r.Amount
		}

		months[r.Month] = months[r.Month].Add(r.Amount)
		summary.MealDistribution[r.Meal] = summary.MealDistribution[r.Meal].Add(r.Amount)

		mt, ok := merchants[r.Merchant]
		if !ok {
			mt = &MerchantTotal{Merchant: r.Merchant, Amount: decimal.Zero}
			merchants[r.Merchant] = mt
		}
		mt.Amount = mt.Amount.Add(r.Amount)
		mt.Count++
	}

	summary.MonthlyTrend = make([]*MonthTotal, 0, len(months))
	for month, amount := range months {
		summary.MonthlyTrend = append(summary.MonthlyTrend, &MonthTotal{Month: month, Amount: amount})
	}
	sort.Slice(summary.MonthlyTrend, func(i, j int) bool {
		return summary.MonthlyTrend[i].Month < summary.MonthlyTrend[j].Month
	})

	ranking := make([]*MerchantTotal, 0, len(merchants))
	for _, mt := range merchants {
		ranking = append(ranking, mt)
	}
	sort.Slice(ranking, func(i, j int) bool {
		if c := ranking[i].Amount.Cmp(ranking[j].Amount); c != 0 {
			return c > 0
		}
		return ranking[i].Merchant < ranking[j].Merchant
	})

	summary.TopMerchant = ranking[0].Merchant
	if len(ranking) > RankingLimit {
		ranking = ranking[:RankingLimit]
	}
	summary.MerchantRanking = ranking

	return summary, nil
}
