package campuscard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// reportService implements the ReportService interface
type reportService struct {
	client *Client
}

// Generate fetches the period's trade records and builds a report from them.
// Empty results are reported through Report.Status, not as errors.
func (s *reportService) Generate(ctx context.Context, params *ReportParams) (*Report, error) {
	if params == nil {
		params = &ReportParams{}
	}

	reportID := uuid.New().String()
	log := s.client.logger()

	query := s.client.Trades.Query().
		Between(params.Start, params.End).
		WithCredentials(params.IDSerial, params.ServiceHall)
	if params.TradeType != "" {
		query = query.WithTradeType(params.TradeType)
	}

	rs, err := query.Execute(ctx)
	if err != nil {
		return nil, s.fail(ctx, reportID, err)
	}

	report, err := s.build(reportID, rs)
	if err != nil {
		return nil, s.fail(ctx, reportID, err)
	}
	report.Start = NewDate(params.Start)
	report.End = NewDate(params.End)

	log.Info("report generated",
		"report", reportID,
		"status", report.Status,
		"start", report.Start.String(),
		"end", report.End.String(),
		"records", report.Excluded.Input,
		"kept", report.Excluded.Kept)

	return report, nil
}

// Build runs the offline part of the pipeline over rs
func (s *reportService) Build(rs *RecordSet) (*Report, error) {
	return s.build(uuid.New().String(), rs)
}

func (s *reportService) build(reportID string, rs *RecordSet) (*Report, error) {
	log := s.client.logger()

	report := &Report{
		ID:          reportID,
		Ledger:      &Ledger{Records: []*Record{}},
		GeneratedAt: time.Now(),
	}
	if rs != nil {
		report.Message = rs.Message
	}

	if rs.Len() == 0 {
		report.Status = ReportNoRecords
		log.Info("no records for this period or credential", "report", reportID, "msg", report.Message)
		return report, nil
	}

	schema, err := ResolveSchema(rs)
	if err != nil {
		return nil, err
	}
	report.TimeColumn = schema.TimeColumn
	report.TypeColumn = schema.TypeColumn
	report.Columns = schema.Columns

	if !schema.HasTypeColumn() {
		log.Warn("no type column resolved, classifying by merchant and amount only",
			"report", reportID, "columns", schema.Columns)
	}
	log.Debug("schema resolved", "report", reportID, "time", schema.TimeColumn, "type", schema.TypeColumn)

	records, err := Normalize(rs.Rows, schema, s.client.Location())
	if err != nil {
		return nil, errors.Wrap(err, "failed to normalize records")
	}

	ledger, excluded := s.client.classifier.Classify(records, schema.TypeColumn)
	report.Ledger = ledger
	report.Excluded = excluded

	log.Debug("records classified",
		"report", reportID,
		"input", excluded.Input,
		"byType", excluded.ByType,
		"byMerchant", excluded.ByMerchant,
		"byAmount", excluded.ByAmount,
		"kept", excluded.Kept)

	if ledger.IsEmpty() {
		report.Status = ReportNoConsumption
		return report, nil
	}

	summary, err := Summarize(ledger)
	if err != nil {
		return nil, err
	}
	report.Summary = summary
	report.Status = ReportReady

	return report, nil
}

// fail logs and reports a fatal error
func (s *reportService) fail(ctx context.Context, reportID string, err error) error {
	kind := ErrorKind(err)
	s.client.logger().Error("report generation failed", "report", reportID, "kind", kind, "error", err)
	if kind != "validation" {
		s.client.captureError(ctx, reportID, err)
	}
	return err
}
