package campuscard

import (
	"context"
	"testing"

	internalTypes "github.com/eshaffer321/campuscard-go/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_Generate_EndToEnd(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	rows := []map[string]interface{}{
		{"txdate": "2024-03-01 12:10:00", "txname": "consumption", "mername": "Canteen A", "txamt": 500},
		{"txdate": "2024-03-02 09:00:00", "txname": "top-up", "mername": "Self-Service Machine", "txamt": 10000},
		{"txdate": "2024-04-05 18:30:00", "txname": "consumption", "mername": "Canteen B", "txamt": 1200},
	}
	mockTransport.On("Fetch", mock.Anything, mock.Anything).Return(sealedEnvelope(t, rows), nil)

	report, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.NoError(t, err)

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, ReportReady, report.Status)
	assert.Equal(t, "txdate", report.TimeColumn)
	assert.Equal(t, "txname", report.TypeColumn)
	assert.Equal(t, "2024-01-01", report.Start.String())
	assert.Equal(t, "2024-12-31", report.End.String())

	require.Equal(t, 2, report.Ledger.Len())
	assert.Equal(t, "Canteen A", report.Ledger.Records[0].Merchant)
	assert.Equal(t, "Canteen B", report.Ledger.Records[1].Merchant)
	assert.Equal(t, Exclusions{Input: 3, ByType: 1, Kept: 2}, report.Excluded)

	summary := report.Summary
	require.NotNil(t, summary)
	assert.Equal(t, "17.00", summary.TotalSpent.StringFixed(2))
	assert.Equal(t, 2, summary.TransactionCount)
	assert.Equal(t, "Canteen B", summary.TopMerchant)
	assert.Equal(t, "12.00", summary.MaxSingleTransaction.StringFixed(2))
	assertDecimal(t, "5", summary.MealDistribution[Lunch])
	assertDecimal(t, "12", summary.MealDistribution[Dinner])
	assertDecimal(t, "0", summary.MealDistribution[Breakfast])
	require.Len(t, summary.MonthlyTrend, 2)
	assert.Equal(t, "2024-03", summary.MonthlyTrend[0].Month)

	mockTransport.AssertExpectations(t)
}

func TestReportService_Generate_NoRecords(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Fetch", mock.Anything, mock.Anything).
		Return(&internalTypes.Envelope{Message: "no session"}, nil)

	report, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.NoError(t, err)
	assert.Equal(t, ReportNoRecords, report.Status)
	assert.Equal(t, "no session", report.Message)
	assert.True(t, report.Ledger.IsEmpty())
	assert.Nil(t, report.Summary)
}

func TestReportService_Generate_UndecryptableIsNoRecords(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Fetch", mock.Anything, mock.Anything).
		Return(&internalTypes.Envelope{Data: testKey + "@@@@", Message: "ok"}, nil)

	report, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.NoError(t, err)
	assert.Equal(t, ReportNoRecords, report.Status)
}

func TestReportService_Generate_NoConsumption(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	rows := []map[string]interface{}{
		{"occtime": "2024-03-02 09:00:00", "trantype": "充值", "mername": "圈存机", "txamt": 10000},
		{"occtime": "2024-03-03 09:00:00", "trantype": "补助", "mername": "财务处", "txamt": 20000},
	}
	mockTransport.On("Fetch", mock.Anything, mock.Anything).Return(sealedEnvelope(t, rows), nil)

	report, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.NoError(t, err)
	assert.Equal(t, ReportNoConsumption, report.Status)
	assert.Equal(t, "occtime", report.TimeColumn)
	assert.Equal(t, "trantype", report.TypeColumn)
	assert.Nil(t, report.Summary)
	assert.Equal(t, 2, report.Excluded.ByType)
}

func TestReportService_Generate_SchemaErrorListsColumns(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	rows := []map[string]interface{}{{"when": "2024-03-01", "mername": "A", "txamt": 1}}
	mockTransport.On("Fetch", mock.Anything, mock.Anything).Return(sealedEnvelope(t, rows), nil)

	_, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTimeColumn)
	assert.True(t, IsSchemaError(err))
	assert.Contains(t, err.Error(), "when")
	assert.Equal(t, "schema", ErrorKind(err))
}

func TestReportService_Generate_MalformedTimestamp(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	rows := []map[string]interface{}{{"txdate": "31/02/2024", "mername": "A", "txamt": 1}}
	mockTransport.On("Fetch", mock.Anything, mock.Anything).Return(sealedEnvelope(t, rows), nil)

	_, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedValue)
	assert.Equal(t, "parse", ErrorKind(err))
}

func TestReportService_Generate_TransportErrorPropagates(t *testing.T) {
	mockTransport := new(MockTransport)
	client := newTestClient(mockTransport)

	mockTransport.On("Fetch", mock.Anything, mock.Anything).
		Return(nil, &Error{Code: "UNEXPECTED_RESPONSE", Message: "not JSON", StatusCode: 200, Err: ErrUnexpectedResponse})

	_, err := client.Reports.Generate(context.Background(), &ReportParams{Start: yearStart, End: yearEnd})
	require.Error(t, err)
	assert.True(t, IsProtocolError(err))
	assert.False(t, IsTransportError(err))
	assert.Equal(t, "protocol", ErrorKind(err))
}

func TestReportService_Build_EmptyInput(t *testing.T) {
	client := newTestClient(new(MockTransport))

	for _, rs := range []*RecordSet{nil, {}, {Rows: []RawRecord{}}} {
		report, err := client.Reports.Build(rs)
		require.NoError(t, err)
		assert.Equal(t, ReportNoRecords, report.Status)
		assert.NotNil(t, report.Ledger)
	}
}

func TestReportService_Build_CustomRules(t *testing.T) {
	client := newTestClient(new(MockTransport))
	client.options.Rules = &Rules{ConsumptionTypes: []string{"消费"}, MerchantBlacklist: []string{"超市"}}
	client.initServices()

	rs := &RecordSet{Rows: []RawRecord{
		{"txdate": "2024-03-01 12:00:00", "txname": "消费", "mername": "紫荆超市", "txamt": 500},
		{"txdate": "2024-03-01 12:00:00", "txname": "消费", "mername": "自助洗衣", "txamt": 500},
	}}

	report, err := client.Reports.Build(rs)
	require.NoError(t, err)
	require.Equal(t, 1, report.Ledger.Len())
	assert.Equal(t, "自助洗衣", report.Ledger.Records[0].Merchant)
}
