package campuscard

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// minorUnitExponent shifts API amounts (fen) to yuan
const minorUnitExponent = -2

// MealPeriodForHour maps an hour of the day onto a meal period.
// [5,10) breakfast, [10,16) lunch, [16,21) dinner, anything else late snack.
func MealPeriodForHour(hour int) MealPeriod {
	switch {
	case hour >= 5 && hour < 10:
		return Breakfast
	case hour >= 10 && hour < 16:
		return Lunch
	case hour >= 16 && hour < 21:
		return Dinner
	default:
		return LateSnack
	}
}

// MinorToMajor converts an amount in minor units to major units exactly
func MinorToMajor(minor decimal.Decimal) decimal.Decimal {
	return minor.Shift(minorUnitExponent)
}

// Normalize derives the time buckets, amount, and merchant text of every
// row. A malformed timestamp or amount aborts the whole set.
func Normalize(rows []RawRecord, schema *Schema, loc *time.Location) ([]*Record, error) {
	if schema == nil || schema.TimeColumn == "" {
		return nil, ErrNoTimeColumn
	}
	if loc == nil {
		loc = DefaultLocation()
	}

	records := make([]*Record, 0, len(rows))
	for i, row := range rows {
		ts, err := parseTimestamp(row[schema.TimeColumn], loc)
		if err != nil {
			return nil, &ParseError{Column: schema.TimeColumn, Row: i, Value: row[schema.TimeColumn], Err: err}
		}

		minor, err := parseAmount(row[AmountColumn])
		if err != nil {
			return nil, &ParseError{Column: AmountColumn, Row: i, Value: row[AmountColumn], Err: err}
		}

		hour := ts.Hour()
		record := &Record{
			Timestamp: ts,
			Month:     ts.Format("2006-01"),
			Hour:      hour,
			Meal:      MealPeriodForHour(hour),
			Amount:    MinorToMajor(minor),
			Merchant:  text(row[MerchantColumn]),
			Raw:       row,
		}
		if schema.HasTypeColumn() {
			record.TradeType = text(row[schema.TypeColumn])
		}

		records = append(records, record)
	}

	return records, nil
}

// parseAmount reads a minor-unit amount. Null counts as zero.
func parseAmount(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case float64:
		return decimal.NewFromFloat(v), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return decimal.Zero, nil
		}
		return decimal.NewFromString(s)
	default:
		return decimal.Zero, fmt.Errorf("unsupported amount of type %T", value)
	}
}

// text coerces any raw value to a string so string matching stays total
func text(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprint(v)
	}
}
