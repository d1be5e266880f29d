package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/manjeshpatagar/mytradingview/internal/models"
	"github.com/manjeshpatagar/mytradingview/internal/util"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options selects and tunes the backing database.
type Options struct {
	Driver        string
	DSN           string
	Clock         util.Clock
	Log           *logrus.Logger
	SlowThreshold time.Duration
}

// Open connects through gorm. Record timestamps are taken from opts.Clock.
func Open(opts Options) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch opts.Driver {
	case DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case DriverSQLite:
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", opts.Driver)
	}

	cfg := &gorm.Config{TranslateError: true}
	if opts.Clock != nil {
		cfg.NowFunc = opts.Clock
	}
	if opts.Log != nil {
		threshold := opts.SlowThreshold
		if threshold == 0 {
			threshold = time.Second
		}
		cfg.Logger = logger.New(opts.Log, logger.Config{
			SlowThreshold:             threshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		})
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Driver, err)
	}
	return db, nil
}

// Migrate creates or updates one table per resource plus users.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.StockNews{},
		&models.MarketNews{},
		&models.IntradayStock{},
		&models.IntradayResult{},
		&models.CorporateResult{},
	)
}
