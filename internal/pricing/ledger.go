package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Pratonic/ApniMandi/internal/models"
)

var ErrInvalidPrice = errors.New("price must be greater than zero")

// RecordPrice appends a new observation to the procurement price ledger.
// The ledger is append-only: a partner submission always inserts a new
// row, it never rewrites an earlier one.
func RecordPrice(gdb *gorm.DB, productID string, price decimal.Decimal) (*models.ProcurementPrice, error) {

	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	observation := models.ProcurementPrice{
		ProductID: productID,
		Price:     price,
	}

	if err := gdb.Create(&observation).Error; err != nil {
		return nil, err
	}

	return &observation, nil
}

// LatestObservations returns, for every product with at least one ledger
// entry, its most recent observation. The latest row per product is a
// pure query over the log: max by date, ties broken by id.
func LatestObservations(gdb *gorm.DB) ([]models.ProcurementPrice, error) {

	var all []models.ProcurementPrice
	if err := gdb.Order("date asc, id asc").Find(&all).Error; err != nil {
		return nil, err
	}

	latest := make(map[string]models.ProcurementPrice)
	for _, observation := range all {
		latest[observation.ProductID] = observation
	}

	out := make([]models.ProcurementPrice, 0, len(latest))
	for _, observation := range latest {
		out = append(out, observation)
	}

	return out, nil
}

// LatestPrices collapses LatestObservations into a productID -> price map.
func LatestPrices(gdb *gorm.DB) (map[string]decimal.Decimal, error) {

	observations, err := LatestObservations(gdb)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]decimal.Decimal, len(observations))
	for _, observation := range observations {
		prices[observation.ProductID] = observation.Price
	}

	return prices, nil
}
