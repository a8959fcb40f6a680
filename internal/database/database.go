package database

import (
	"errors"
	"fmt"
	"log"
	"time"

	"mockbank/internal/config"
	"mockbank/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Demo data created by SeedDemoData
const (
	SeedUsername = "student"
	SeedPassword = "studentpass"
)

var seedAccounts = []struct {
	ID      string
	Balance string
}{
	{ID: "ACC1001", Balance: "1000.00"},
	{ID: "ACC2001", Balance: "250.00"},
}

type DB struct {
	*gorm.DB
	config *config.DatabaseConfig
}

func New(cfg *config.DatabaseConfig) (*DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// sqlite allows one writer; a single connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxConnections)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:     db,
		config: cfg,
	}, nil
}

func (db *DB) AutoMigrate() error {
	return db.DB.AutoMigrate(
		&models.User{},
		&models.Account{},
		&models.LedgerEntry{},
		&models.Transfer{},
		&models.TransferQueueItem{},
		&models.AuditLog{},
		&models.BlacklistedToken{},
		&models.IdempotencyRecord{},
	)
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) HealthCheck() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (db *DB) Transaction(fn func(*gorm.DB) error) error {
	return db.DB.Transaction(fn)
}

// CreateIndexes adds the postgres-only partial indexes that gorm tags cannot express
func (db *DB) CreateIndexes() error {
	if db.config != nil && db.config.Driver != DriverPostgres {
		return nil
	}

	queries := []string{
		"CREATE INDEX IF NOT EXISTS idx_transfers_processing ON transfers(created_at) WHERE status = 'PROCESSING'",
		"CREATE INDEX IF NOT EXISTS idx_transfer_queue_pending ON transfer_queue(scheduled_at) WHERE status = 'pending'",
		"CREATE INDEX IF NOT EXISTS idx_idempotency_records_expires_at ON idempotency_records(expires_at)",
		"CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at)",
	}

	for _, query := range queries {
		if err := db.DB.Exec(query).Error; err != nil {
			log.Printf("Failed to create index: %s, error: %v", query, err)
		}
	}

	return nil
}

// SeedDemoData creates the demo user and its two accounts. Existing rows are left untouched.
func (db *DB) SeedDemoData(bcryptCost int) (*models.User, error) {
	var user models.User
	err := db.DB.Where("username = ?", SeedUsername).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash seed password: %w", err)
		}
		user = models.User{Username: SeedUsername, PasswordHash: string(hash)}
		if err := db.DB.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create seed user: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("failed to look up seed user: %w", err)
	}

	for _, seed := range seedAccounts {
		var count int64
		if err := db.DB.Model(&models.Account{}).Where("id = ?", seed.ID).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to look up seed account %s: %w", seed.ID, err)
		}
		if count > 0 {
			continue
		}

		account := &models.Account{
			ID:      seed.ID,
			OwnerID: user.ID,
			Status:  models.AccountStatusActive,
			Balance: decimal.RequireFromString(seed.Balance),
		}
		if err := db.DB.Create(account).Error; err != nil {
			return nil, fmt.Errorf("failed to create seed account %s: %w", seed.ID, err)
		}
	}

	return &user, nil
}

// Initialize creates and configures the database connection
func Initialize(cfg *config.Config) (*DB, error) {
	db, err := New(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if cfg.Database.AutoMigrate {
		migrated := false
		if cfg.Database.Driver == DriverPostgres {
			if err := RunMigrations(cfg.Database.DSN()); err != nil {
				log.Printf("Warning: migration runner failed: %v", err)
				log.Println("Falling back to GORM AutoMigrate...")
			} else {
				migrated = true
			}
		}

		if !migrated {
			if err := db.AutoMigrate(); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
		}
	}

	if err := db.CreateIndexes(); err != nil {
		log.Printf("Warning: failed to create some indexes: %v", err)
	}

	if cfg.Database.Seed {
		if _, err := db.SeedDemoData(cfg.Security.BCryptCost); err != nil {
			return nil, err
		}
		log.Printf("Seeded demo user %q", SeedUsername)
	}

	log.Println("Database initialized successfully")

	return db, nil
}
