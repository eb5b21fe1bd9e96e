package database

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "modernc.org/sqlite"

	"paypalexpress/internal/domain"
)

func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	if IsPostgres(dsn) {
		log.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	log.Info("using SQLite", zap.String("dsn", dsn))

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
}

// Models lists every table owned by the service.
func Models() []interface{} {
	return []interface{}{
		&domain.Order{},
		&domain.OrderNote{},
		&domain.RecurringPayment{},
		&domain.RecurringPaymentHistory{},
		&domain.Customer{},
		&domain.Address{},
		&domain.CartItem{},
		&domain.PayPalSettings{},
		&domain.IPNDelivery{},
	}
}

// Prepare brings the schema up to date: versioned migrations on PostgreSQL,
// AutoMigrate on SQLite.
func Prepare(db *gorm.DB, dsn string, log *zap.Logger) error {
	if IsPostgres(dsn) {
		return Migrate(db, log)
	}
	return db.AutoMigrate(Models()...)
}
