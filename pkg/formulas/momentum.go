package formulas

// CalculateMomentum calculates the percentage change between the close
// `length` bars ago and the latest close:
//
//	(close_t - close_{t-length}) / close_{t-length} × 100
//
// Returns nil if fewer than length+1 closes are available or the reference
// close is zero.
func CalculateMomentum(closes []float64, length int) *float64 {
	if length <= 0 {
		return nil
	}
	if len(closes) < length+1 {
		return nil
	}

	ref := closes[len(closes)-1-length]
	if ref == 0 {
		return nil
	}

	result := (closes[len(closes)-1] - ref) / ref * 100
	return &result
}
