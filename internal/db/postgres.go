package db

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Pratonic/ApniMandi/internal/models"
)

var DB *gorm.DB

func Init() {

	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Kolkata",
		getEnv("POSTGRES_HOST", "localhost"),
		getEnv("POSTGRES_USER", "test"),
		getEnv("POSTGRES_PASSWORD", "test"),
		getEnv("POSTGRES_DB", "test"),
		getEnv("DB_PORT", "5432"),
	)

	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})

	if err != nil {

		log.Fatalf("Failed to connect to DB: %v", err)
	}

	err = DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.ProcurementPrice{},
		&models.Delivery{},
	)

	if err != nil {

		log.Fatalf("Failed to migrate DB: %v", err)
	}

	if err := SeedProducts(DB); err != nil {
		log.Fatalf("Failed to seed product catalog: %v", err)
	}

	log.Println("Database connected and migrated successfully")
}

// SeedProducts inserts the default procurable catalog on first run. The
// catalog is reference data: if any product already exists this is a no-op.
func SeedProducts(gdb *gorm.DB) error {

	var count int64
	if err := gdb.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Product{
		{Name: "Onions", Unit: "kg", Image: "/assets/onions.jpg"},
		{Name: "Potatoes", Unit: "kg", Image: "/assets/potatoes.jpg"},
		{Name: "Cooking Oil", Unit: "ltr", Image: "/assets/cooking-oil.jpg"},
		{Name: "Tomatoes", Unit: "kg", Image: "/assets/tomatoes.jpg"},
	}

	return gdb.Create(&defaults).Error
}

func SetTestDB(testDB *gorm.DB) {
	DB = testDB
}

func getEnv(key, fallback string) string {

	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return fallback
}
