package campuscard

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
)

// Rules are the token tables the classifier matches against. Each table
// carries the API's own locale and the English equivalents.
type Rules struct {
	// ConsumptionTypes mark a type text as spending
	ConsumptionTypes []string

	// RechargeTypes mark a type text as account management even when it
	// also looks like spending
	RechargeTypes []string

	// MerchantBlacklist marks a merchant as an account-management counter
	MerchantBlacklist []string
}

// DefaultRules returns a fresh copy of the built-in token tables
func DefaultRules() Rules {
	return Rules{
		ConsumptionTypes: []string{"消费", "扣款", "consumption", "deduction"},
		RechargeTypes:    []string{"充值", "圈存", "补助", "发卡", "top-up", "card-deposit", "subsidy", "card-issuance"},
		MerchantBlacklist: []string{
			"充值", "圈存", "缴费", "补办", "校医院", "自助", "网费", "存款", "退款", "补助", "财务", "领取",
			"recharge", "top-up", "card-deposit", "fee-payment", "card-reissue", "campus-clinic",
			"self-service", "network-fee", "deposit", "refund", "subsidy", "finance-office", "collection",
		},
	}
}

// Classifier separates genuine consumption from account-management
// transactions. It is immutable once built.
type Classifier struct {
	consumption *regexp.Regexp
	recharge    *regexp.Regexp
	blacklist   []string
}

// NewClassifier compiles rules into a classifier
func NewClassifier(rules Rules) *Classifier {
	fold := cases.Fold()
	blacklist := make([]string, 0, len(rules.MerchantBlacklist))
	for _, token := range rules.MerchantBlacklist {
		if token == "" {
			continue
		}
		blacklist = append(blacklist, fold.String(token))
	}

	return &Classifier{
		consumption: anyOf(rules.ConsumptionTypes),
		recharge:    anyOf(rules.RechargeTypes),
		blacklist:   blacklist,
	}
}

// anyOf builds a case-insensitive alternation; nil when tokens is empty
func anyOf(tokens []string) *regexp.Regexp {
	quoted := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t != "" {
			quoted = append(quoted, regexp.QuoteMeta(t))
		}
	}
	if len(quoted) == 0 {
		return nil
	}
	return regexp.MustCompile("(?i)(?:" + strings.Join(quoted, "|") + ")")
}

// Classify keeps the records that pass all three tiers:
//  1. type text is consumption and not recharge (only when typeColumn is set)
//  2. merchant matches no blacklist token
//  3. amount is positive
func (c *Classifier) Classify(records []*Record, typeColumn string) (*Ledger, Exclusions) {
	fold := cases.Fold()
	ledger := &Ledger{Records: make([]*Record, 0, len(records)), TypeColumn: typeColumn}
	stats := Exclusions{Input: len(records)}

	for _, r := range records {
		switch {
		case typeColumn != "" && !c.IsConsumptionType(r.TradeType):
			stats.ByType++
		case c.isBlacklisted(fold, r.Merchant):
			stats.ByMerchant++
		case !r.Amount.IsPositive():
			stats.ByAmount++
		default:
			ledger.Records = append(ledger.Records, r)
		}
	}

	stats.Kept = len(ledger.Records)
	return ledger, stats
}

// IsConsumptionType reports whether a type text survives tier 1
func (c *Classifier) IsConsumptionType(tradeType string) bool {
	if c.consumption == nil || !c.consumption.MatchString(tradeType) {
		return false
	}
	return c.recharge == nil || !c.recharge.MatchString(tradeType)
}

// IsBlacklistedMerchant reports whether a merchant name fails tier 2
func (c *Classifier) IsBlacklistedMerchant(merchant string) bool {
	return c.isBlacklisted(cases.Fold(), merchant)
}

func (c *Classifier) isBlacklisted(fold cases.Caser, merchant string) bool {
	folded := fold.String(merchant)
	for _, token := range c.blacklist {
		if strings.Contains(folded, token) {
			return true
		}
	}
	return false
}
