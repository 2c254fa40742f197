package pricing

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Pratonic/ApniMandi/internal/models"
	"github.com/Pratonic/ApniMandi/internal/utils"
)

// AveragePriceForDay returns the arithmetic mean of all observations for
// the product within the given local day, rounded half-up to 2 decimal
// places. A day with no observations yields 0, not an error: zero means
// "no data" and callers must not treat it as a real price.
func AveragePriceForDay(gdb *gorm.DB, productID string, day time.Time) (decimal.Decimal, error) {

	start, end := utils.DayWindow(day)

	var observations []models.ProcurementPrice
	err := gdb.
		Where("product_id = ? AND date >= ? AND date <= ?", productID, start, end).
		Find(&observations).Error
	if err != nil {
		return decimal.Zero, err
	}

	if len(observations) == 0 {
		return decimal.Zero, nil
	}

	sum := decimal.Zero
	for _, observation := range observations {
		sum = sum.Add(observation.Price)
	}

	return sum.Div(decimal.NewFromInt(int64(len(observations)))).Round(2), nil
}
