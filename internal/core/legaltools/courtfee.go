package legaltools

import "math"

const (
	CourtFeeCap = 300000

	firstSlabLimit  = 100000
	secondSlabLimit = 500000
)

// CalculateCourtFee applies the ad valorem slabs: 7.5% up to one lakh, 3% on the next four
// lakh and 1% beyond, rounded up and capped.
func CalculateCourtFee(amount float64) int64 {
	if amount <= 0 || math.IsNaN(amount) {
		return 0
	}
	var fee float64
	switch {
	case amount <= firstSlabLimit:
		fee = amount * 0.075
	case amount <= secondSlabLimit:
		fee = 7500 + (amount-firstSlabLimit)*0.03
	default:
		fee = 19500 + (amount-secondSlabLimit)*0.01
	}
	return int64(math.Min(math.Ceil(fee), CourtFeeCap))
}
