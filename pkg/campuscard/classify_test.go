package campuscard

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(tradeType, merchant, amount string) *Record {
	return &Record{
		TradeType: tradeType,
		Merchant:  merchant,
		Amount:    decimal.RequireFromString(amount),
		Meal:      Lunch,
		Month:     "2024-03",
	}
}

func TestClassifier_TypeTier(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		tradeType string
		want      bool
	}{
		{"消费", true},
		{"POS消费", true},
		{"扣款", true},
		{"Consumption-Deduction", true},
		{"consumption", true},
		{"充值", false},
		{"圈存", false},
		{"补助发放", false},
		{"发卡", false},
		{"充值消费", false},
		{"top-up", false},
		{"Subsidy deduction", false},
		{"退款", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.tradeType, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsConsumptionType(tt.tradeType))
		})
	}
}

func TestClassifier_MerchantBlacklist(t *testing.T) {
	c := NewClassifier(DefaultRules())

	tests := []struct {
		merchant string
		want     bool
	}{
		{"Card Top-up Station", true},
		{"SELF-SERVICE Machine", true},
		{"自助充值机", true},
		{"校医院", true},
		{"财务处", true},
		{"Refund Desk", true},
		{"Canteen A", false},
		{"桃李园", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.merchant, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsBlacklistedMerchant(tt.merchant))
		})
	}
}

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(DefaultRules())

	records := []*Record{
		record("Consumption-Deduction", "Canteen A", "15.50"),
		record("消费", "Card Top-up Station", "20"),
		record("充值", "Canteen A", "100"),
		record("消费", "Canteen B", "0"),
		record("消费", "Canteen B", "-3"),
		record("扣款", "桃李园", "8.8"),
	}

	ledger, stats := c.Classify(records, "txname")

	require.Len(t, ledger.Records, 2)
	assert.Equal(t, "Canteen A", ledger.Records[0].Merchant)
	assert.Equal(t, "桃李园", ledger.Records[1].Merchant)
	assert.Equal(t, "txname", ledger.TypeColumn)
	assert.Equal(t, Exclusions{Input: 6, ByType: 1, ByMerchant: 1, ByAmount: 2, Kept: 2}, stats)
}

func TestClassifier_TopUpMerchantExcludedRegardlessOfTypeOrAmount(t *testing.T) {
	c := NewClassifier(DefaultRules())

	for _, typeColumn := range []string{"", "txname"} {
		ledger, _ := c.Classify([]*Record{record("消费", "Card Top-up Station", "999")}, typeColumn)
		assert.True(t, ledger.IsEmpty(), "typeColumn %q", typeColumn)
	}
}

func TestClassifier_NoTypeColumnSkipsTier1(t *testing.T) {
	c := NewClassifier(DefaultRules())

	records := []*Record{
		record("", "Canteen A", "5"),
		record("充值", "Canteen B", "12"),
		record("", "Self-Service Machine", "100"),
	}

	ledger, stats := c.Classify(records, "")

	require.Len(t, ledger.Records, 2)
	assert.Equal(t, 0, stats.ByType)
	assert.Equal(t, 1, stats.ByMerchant)
}

func TestClassifier_LedgerInvariant(t *testing.T) {
	c := NewClassifier(DefaultRules())
	rules := DefaultRules()

	var records []*Record
	types := []string{"消费", "扣款", "充值", "补助", "consumption", "top-up", ""}
	merchants := []string{"Canteen A", "自助服务", "Network-Fee Office", "清芬园", "Deposit", "超市"}
	amounts := []string{"-1", "0", "0.01", "12.5", "300"}
	for _, tt := range types {
		for _, m := range merchants {
			for _, a := range amounts {
				records = append(records, record(tt, m, a))
			}
		}
	}

	ledger, stats := c.Classify(records, "txname")
	assert.Equal(t, len(records), stats.ByType+stats.ByMerchant+stats.ByAmount+stats.Kept)

	for _, r := range ledger.Records {
		assert.True(t, r.Amount.IsPositive())
		assert.True(t, c.IsConsumptionType(r.TradeType))
		for _, token := range rules.MerchantBlacklist {
			assert.False(t, strings.Contains(strings.ToLower(r.Merchant), strings.ToLower(token)),
				"%s contains %s", r.Merchant, token)
		}
	}
}

func TestDefaultRules_ReturnsCopies(t *testing.T) {
	rules := DefaultRules()
	rules.MerchantBlacklist[0] = "mutated"

	assert.NotEqual(t, "mutated", DefaultRules().MerchantBlacklist[0])
}

func TestNewClassifier_CustomRules(t *testing.T) {
	c := NewClassifier(Rules{
		ConsumptionTypes:  []string{"purchase"},
		MerchantBlacklist: []string{"ATM"},
	})

	assert.True(t, c.IsConsumptionType("Card Purchase"))
	assert.False(t, c.IsConsumptionType("消费"))
	assert.True(t, c.IsBlacklistedMerchant("atm lobby"))
}
