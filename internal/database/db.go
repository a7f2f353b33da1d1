package database

import (
	"fmt"
	"log"

	"backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// NewConnection initializes a new connection pool using GORM.
// SQLite is the default system of record; Postgres is available for
// deployments that already run one.
func NewConnection(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	// TranslateError maps driver-specific constraint violations onto
	// gorm's portable errors (ErrDuplicatedKey etc.) for both drivers.
	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate creates or updates the schema for all core models
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.RefreshToken{},
		&model.WriterProfile{},
		&model.ContentTopic{},
		&model.BlogPost{},
		&model.SocialMediaPost{},
		&model.Comment{},
		&model.Notification{},
		&model.ApprovalRule{},
		&model.ApprovalTemplate{},
		&model.ApprovalWorkflow{},
		&model.ApprovalStep{},
		&model.ApprovalDecision{},
		&model.AuditLog{},
	)
}
