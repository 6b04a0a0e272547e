package campuscard

import (
	"context"
	"time"
)

// TradeService fetches and decrypts raw trade records
type TradeService interface {
	// Query returns a trade query builder
	Query() TradeQueryBuilder
}

// TradeQueryBuilder builds trade list queries
type TradeQueryBuilder interface {
	// Between sets the inclusive date range
	Between(start, end time.Time) TradeQueryBuilder

	// WithTradeType restricts the API's trade type; "-1" means all
	WithTradeType(tradeType string) TradeQueryBuilder

	// WithCredentials overrides the client's identity and servicehall secret
	WithCredentials(idSerial, serviceHall string) TradeQueryBuilder

	// Page sets the page number and size
	Page(number, size int) TradeQueryBuilder

	// Execute runs the query
	Execute(ctx context.Context) (*RecordSet, error)
}

// ReportService turns trade records into a classified ledger and summary
type ReportService interface {
	// Generate fetches the period's records and builds a report
	Generate(ctx context.Context, params *ReportParams) (*Report, error)

	// Build runs schema resolution, normalization, classification, and
	// aggregation over an already fetched record set
	Build(rs *RecordSet) (*Report, error)
}
