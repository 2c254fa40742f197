package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Pratonic/ApniMandi/internal/models"
)

// ReconcileOpenOrders propagates the latest ledger prices into every
// order that is still open (PLACED, PROCURING or ON_THE_WAY). For each
// open order it overwrites line-item prices that differ from the latest
// observation and recomputes the cached total as convenience fee plus
// the sum of price x quantity. DELIVERED orders are never touched.
//
// Running it again with no new observation in between changes nothing.
func ReconcileOpenOrders(gdb *gorm.DB) error {

	latest, err := LatestPrices(gdb)
	if err != nil {
		return err
	}

	var openOrderIDs []string
	err = gdb.Model(&models.Order{}).
		Where("status IN ?", models.OpenStatuses).
		Pluck("id", &openOrderIDs).Error
	if err != nil {
		return err
	}

	for _, orderID := range openOrderIDs {
		if err := reconcileOrder(gdb, orderID, latest); err != nil {
			return err
		}
	}

	return nil
}

// reconcileOrder runs one order's item rewrite and total recompute in a
// single transaction so a crash mid-pass never leaves the total
// inconsistent with the items.
func reconcileOrder(gdb *gorm.DB, orderID string, latest map[string]decimal.Decimal) error {

	return gdb.Transaction(func(tx *gorm.DB) error {

		// Re-check the status inside the transaction: the order may have
		// been delivered since the open set was enumerated.
		var order models.Order
		err := tx.Where("id = ? AND status IN ?", orderID, models.OpenStatuses).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}

		total := models.ConvenienceFee
		for i := range items {
			price, priced := latest[items[i].ProductID]
			if priced && !items[i].Price.Equal(price) {
				items[i].Price = price
				err := tx.Model(&models.OrderItem{}).
					Where("id = ?", items[i].ID).
					Update("price", price).Error
				if err != nil {
					return err
				}
			}
			quantity := decimal.NewFromInt(int64(items[i].Quantity))
			total = total.Add(items[i].Price.Mul(quantity))
		}

		// The total is always recomputed from the items in full, never
		// patched incrementally.
		return tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			Update("total", total).Error
	})
}
