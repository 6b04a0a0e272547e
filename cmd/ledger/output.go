package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/eshaffer321/campuscard-go/pkg/campuscard"
)

func writeJSON(w io.Writer, report *campuscard.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// writeText prints the summary followed by the newest rows of the ledger
func writeText(w io.Writer, report *campuscard.Report, rows int) error {
	fmt.Fprintf(w, "=== Campus Card Report %s .. %s ===\n", report.Start, report.End)

	switch report.Status {
	case campuscard.ReportNoRecords:
		fmt.Fprintln(w, "No records for this period. Check the date range and the credential.")
		if report.Message != "" {
			fmt.Fprintf(w, "API message: %s\n", report.Message)
		}
		return nil
	case campuscard.ReportNoConsumption:
		fmt.Fprintln(w, "Records were returned but none of them is consumption.")
		writeExclusions(w, report.Excluded)
		return nil
	}

	s := report.Summary
	if s == nil {
		return fmt.Errorf("report %s is ready but has no summary", report.ID)
	}

	fmt.Fprintf(w, "Total spent:      %s\n", s.TotalSpent.StringFixed(2))
	fmt.Fprintf(w, "Transactions:     %d\n", s.TransactionCount)
	fmt.Fprintf(w, "Top merchant:     %s\n", s.TopMerchant)
	fmt.Fprintf(w, "Largest purchase: %s\n", s.MaxSingleTransaction.StringFixed(2))
	writeExclusions(w, report.Excluded)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "\nMONTH\tAMOUNT")
	for _, m := range s.MonthlyTrend {
		fmt.Fprintf(tw, "%s\t%s\n", m.Month, m.Amount.StringFixed(2))
	}

	fmt.Fprintln(tw, "\nMEAL\tAMOUNT")
	for _, meal := range campuscard.MealPeriods() {
		fmt.Fprintf(tw, "%s (%s)\t%s\n", meal, meal.Label(), s.MealDistribution[meal].StringFixed(2))
	}

	fmt.Fprintln(tw, "\nMERCHANT\tAMOUNT\tCOUNT")
	for _, m := range s.MerchantRanking {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", m.Merchant, m.Amount.StringFixed(2), m.Count)
	}

	newest := report.Ledger.Newest()
	if rows > 0 && len(newest) > rows {
		newest = newest[:rows]
	}
	fmt.Fprintln(tw, "\nTIME\tMERCHANT\tAMOUNT\tMEAL\tTYPE")
	for _, r := range newest {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Timestamp.Format("2006-01-02 15:04"),
			r.Merchant,
			r.Amount.StringFixed(2),
			r.Meal.Label(),
			r.TradeType)
	}

	return tw.Flush()
}

func writeExclusions(w io.Writer, ex campuscard.Exclusions) {
	fmt.Fprintf(w, "Records: %d fetched, %d kept (excluded: %d by type, %d by merchant, %d by amount)\n",
		ex.Input, ex.Kept, ex.ByType, ex.ByMerchant, ex.ByAmount)
}
