package analytics

import (
	"math"
	"sort"

	"github.com/salesight/backend-go/internal/dataset"
	"github.com/salesight/backend-go/internal/domain"
)

// InventoryEngine derives per-product demand statistics and the safety-stock
// and reorder-point heuristics. The multipliers are fixed policy constants,
// not fitted parameters; they are injected so deployments can override them,
// nothing more.
type InventoryEngine struct {
	SafetyStockFactor  float64
	ReorderPointFactor float64
	HighStockRatio     float64
}

func NewInventoryEngine(safetyFactor, reorderFactor, highStockRatio float64) *InventoryEngine {
	return &InventoryEngine{
		SafetyStockFactor:  safetyFactor,
		ReorderPointFactor: reorderFactor,
		HighStockRatio:     highStockRatio,
	}
}

// Analyze groups transactions by product and computes quantity statistics,
// the stock thresholds and the three-way status for each.
func (e *InventoryEngine) Analyze(ds *dataset.Dataset) []domain.ProductInventory {
	quantities := make(map[string][]float64)
	for _, tx := range ds.Transactions {
		quantities[tx.ProductID] = append(quantities[tx.ProductID], tx.Quantity)
	}

	products := make([]string, 0, len(quantities))
	for id := range quantities {
		products = append(products, id)
	}
	sort.Strings(products)

	out := make([]domain.ProductInventory, 0, len(products))
	for _, id := range products {
		qs := quantities[id]

		var total float64
		for _, q := range qs {
			total += q
		}
		mean, std := meanStd(qs)

		safetyStock := int(math.Round(mean * e.SafetyStockFactor))
		reorderPoint := int(math.Round(mean * e.ReorderPointFactor))

		out = append(out, domain.ProductInventory{
			ProductID:      id,
			TotalQuantity:  total,
			MeanQuantity:   mean,
			StdDevQuantity: std,
			OrderCount:     len(qs),
			SafetyStock:    safetyStock,
			ReorderPoint:   reorderPoint,
			Status:         domain.ClassifyStock(total, safetyStock, e.HighStockRatio),
		})
	}
	return out
}
