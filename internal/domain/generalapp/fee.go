package generalapp

import (
	"github.com/shopspring/decimal"
)

const (
	FreeFeeCode    = "FREE"
	FreeFeeVersion = "1"
)

var hundred = decimal.NewFromInt(100)

// Fee is the amount, code and version triple returned by the fee registry.
// AmountPence is never negative.
type Fee struct {
	AmountPence int64  `json:"calculatedAmountInPence"`
	Code        string `json:"code"`
	Version     string `json:"version"`
}

// FreeFee is the sentinel used when the free-application rule applies.
func FreeFee() Fee {
	return Fee{AmountPence: 0, Code: FreeFeeCode, Version: FreeFeeVersion}
}

func (f Fee) IsFree() bool {
	return f.Code == FreeFeeCode && f.AmountPence == 0
}

// Pounds converts the amount to pounds with two decimal places.
func (f Fee) Pounds() decimal.Decimal {
	return decimal.NewFromInt(f.AmountPence).Div(hundred)
}

// FormatPounds renders the amount as "£275.00".
func (f Fee) FormatPounds() string {
	return "£" + f.Pounds().StringFixed(2)
}

// PenceFromPounds converts a pounds amount to whole pence, rounding half up.
func PenceFromPounds(pounds decimal.Decimal) int64 {
	return pounds.Mul(hundred).Round(0).IntPart()
}

// PoundsFromPence is the inverse of PenceFromPounds.
func PoundsFromPence(pence int64) decimal.Decimal {
	return decimal.NewFromInt(pence).Div(hundred)
}

//Personal.AI order the ending
