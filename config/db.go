package config

import (
	"os"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"food-marketplace-api/models"
)

var log = zerolog.New(os.Stdout).With().Timestamp().Str("component", "db").Logger()

// OpenDB connects to Postgres when DATABASE_URL is set, otherwise to a local
// SQLite file, and migrates the schema.
func OpenDB(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	if cfg.DatabaseURL != "" {
		db, err = gorm.Open(postgres.Open(cfg.DatabaseURL), gormCfg)
	} else {
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info().Msg("database connected and migrated")
	return db, nil
}

// Migrate creates or updates all tables. Also used by the test suite against
// in-memory SQLite.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Address{},
		&models.RestaurantCategory{},
		&models.Restaurant{},
		&models.RestaurantCategoryLink{},
		&models.RestaurantHours{},
		&models.ProductCategory{},
		&models.Product{},
		&models.ProductOptionGroup{},
		&models.ProductOption{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemOption{},
		&models.Review{},
		&models.Favorite{},
		&models.Coupon{},
	)
}
