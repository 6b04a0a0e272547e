package campuscard

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RawRecord is one transaction exactly as the API returned it. Field names
// vary between API versions.
type RawRecord map[string]interface{}

// RecordSet is the decrypted result of one trade list query
type RecordSet struct {
	Rows []RawRecord `json:"rows"`

	// Message is the API's msg field
	Message string `json:"message,omitempty"`

	// Decrypted is false when the payload could not be opened and the set
	// fell back to empty
	Decrypted bool `json:"decrypted"`
}

// Len returns the number of rows
func (rs *RecordSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Columns returns the sorted union of field names across all rows
func (rs *RecordSet) Columns() []string {
	if rs == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, row := range rs.Rows {
		for k := range row {
			seen[k] = struct{}{}
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// MealPeriod buckets an hour of the day
type MealPeriod string

const (
	Breakfast MealPeriod = "Breakfast"
	Lunch     MealPeriod = "Lunch"
	Dinner    MealPeriod = "Dinner"
	LateSnack MealPeriod = "LateSnack"
)

// MealPeriods returns every period in the order of the day
func MealPeriods() []MealPeriod {
	return []MealPeriod{Breakfast, Lunch, Dinner, LateSnack}
}

// Label returns the period's name in the API's locale
func (m MealPeriod) Label() string {
	switch m {
	case Breakfast:
		return "早餐"
	case Lunch:
		return "午餐"
	case Dinner:
		return "晚餐"
	case LateSnack:
		return "夜宵"
	default:
		return string(m)
	}
}

// Record is a RawRecord with its derived fields
type Record struct {
	Timestamp time.Time       `json:"timestamp"`
	Month     string          `json:"month"`
	Hour      int             `json:"hour"`
	Meal      MealPeriod      `json:"meal"`
	Amount    decimal.Decimal `json:"amount"`
	Merchant  string          `json:"merchant"`

	// TradeType is the text of the resolved type column, empty when none resolved
	TradeType string `json:"tradeType,omitempty"`

	Raw RawRecord `json:"-"`
}

// Ledger holds the records that survived classification, in input order.
// Every record has a positive amount, a merchant outside the blacklist and,
// when a type column resolved, a consumption type.
type Ledger struct {
	Records    []*Record `json:"records"`
	TypeColumn string    `json:"typeColumn,omitempty"`
}

// Len returns the number of ledger entries
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.Records)
}

// IsEmpty reports whether no record survived classification
func (l *Ledger) IsEmpty() bool {
	return l.Len() == 0
}

// Newest returns the records sorted by timestamp, most recent first
func (l *Ledger) Newest() []*Record {
	if l == nil {
		return nil
	}
	out := make([]*Record, len(l.Records))
	copy(out, l.Records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}

// Exclusions counts records removed by each classification tier
type Exclusions struct {
	Input      int `json:"input"`
	ByType     int `json:"byType"`
	ByMerchant int `json:"byMerchant"`
	ByAmount   int `json:"byAmount"`
	Kept       int `json:"kept"`
}

// MonthTotal is one point of the monthly trend
type MonthTotal struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

// MerchantTotal is one entry of the merchant ranking
type MerchantTotal struct {
	Merchant string          `json:"merchant"`
	Amount   decimal.Decimal `json:"amount"`
	Count    int             `json:"count"`
}

// Summary is the read model the presentation layer renders
type Summary struct {
	TotalSpent           decimal.Decimal                `json:"totalSpent"`
	TransactionCount     int                            `json:"transactionCount"`
	TopMerchant          string                         `json:"topMerchant"`
	MaxSingleTransaction decimal.Decimal                `json:"maxSingleTransaction"`
	MonthlyTrend         []*MonthTotal                  `json:"monthlyTrend"`
	MealDistribution     map[MealPeriod]decimal.Decimal `json:"mealDistribution"`
	MerchantRanking      []*MerchantTotal               `json:"merchantRanking"`
}

// ReportStatus tells the presentation layer which state to render
type ReportStatus string

const (
	// ReportReady means the ledger has at least one record
	ReportReady ReportStatus = "ready"

	// ReportNoRecords means the API returned nothing for the period and credential
	ReportNoRecords ReportStatus = "no_records"

	// ReportNoConsumption means records came back but none was genuine consumption
	ReportNoConsumption ReportStatus = "no_consumption"
)

// Report is the result of one report generation
type Report struct {
	ID          string       `json:"id"`
	Start       Date         `json:"start"`
	End         Date         `json:"end"`
	Status      ReportStatus `json:"status"`
	Message     string       `json:"message,omitempty"`
	TimeColumn  string       `json:"timeColumn,omitempty"`
	TypeColumn  string       `json:"typeColumn,omitempty"`
	Columns     []string     `json:"columns,omitempty"`
	Ledger      *Ledger      `json:"ledger"`
	Summary     *Summary     `json:"summary,omitempty"`
	Excluded    Exclusions   `json:"excluded"`
	GeneratedAt time.Time    `json:"generatedAt"`
}

// ReportParams selects the period and identity of a report. Empty
// credentials fall back to the client's.
type ReportParams struct {
	Start       time.Time
	End         time.Time
	IDSerial    string
	ServiceHall string
	TradeType   string
}
