package domain

// Customer segment labels, fixed enumeration.
const (
	SegmentVIP       = "VIP Customers"
	SegmentLoyal     = "Loyal Customers"
	SegmentPotential = "Potential Customers"
	SegmentAtRisk    = "At-Risk Customers"
)

// Stock status labels, fixed enumeration.
const (
	StockHigh    = "High Stock"
	StockReorder = "Reorder Required"
	StockNormal  = "Normal Stock"
)

// segmentRule pairs a minimum R/F/M floor with its label. Rules are evaluated
// in declaration order; the first floor a customer clears wins.
type segmentRule struct {
	minR, minF, minM int
	label            string
}

var segmentRules = []segmentRule{
	{4, 4, 4, SegmentVIP},
	{3, 3, 3, SegmentLoyal},
	{2, 2, 2, SegmentPotential},
}

// AssignSegment maps R/F/M scores to a customer segment.
func AssignSegment(r, f, m int) string {
	for _, rule := range segmentRules {
		if r >= rule.minR && f >= rule.minF && m >= rule.minM {
			return rule.label
		}
	}
	return SegmentAtRisk
}

// ClassifyStock maps total sold quantity against the safety stock threshold.
// The high-stock ratio is the multiple of safety stock above which a product
// counts as overstocked.
func ClassifyStock(totalQuantity float64, safetyStock int, highStockRatio float64) string {
	switch {
	case totalQuantity > float64(safetyStock)*highStockRatio:
		return StockHigh
	case totalQuantity < float64(safetyStock):
		return StockReorder
	default:
		return StockNormal
	}
}
