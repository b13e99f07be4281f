// Package database owns the GORM/SQLite connection, schema migration and
// seed data. Per-aggregate repositories live in the subpackages.
package database

import (
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// defaultFeeStructures seeds one active price per fee type so that fee
// assessment works out of the box. Admins adjust amounts afterwards.
var defaultFeeStructures = []entities.FeeStructure{
	{Type: entities.FeeTypeLateReturn, Amount: decimal.NewFromFloat(5.00), Description: "Late return of a borrowed book", IsActive: true},
	{Type: entities.FeeTypeDamage, Amount: decimal.NewFromFloat(15.00), Description: "Damage to library property", IsActive: true},
	{Type: entities.FeeTypeLostBook, Amount: decimal.NewFromFloat(40.00), Description: "Replacement cost for a lost book", IsActive: true},
	{Type: entities.FeeTypeMembership, Amount: decimal.NewFromFloat(25.00), Description: "Annual membership fee", IsActive: true},
	{Type: entities.FeeTypeProcessing, Amount: decimal.NewFromFloat(2.50), Description: "Administrative processing fee", IsActive: true},
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto-migrate all entities
	err = db.AutoMigrate(
		&entities.User{},
		&entities.MembershipApplication{},
		&entities.Book{},
		&entities.Reservation{},
		&entities.FeeStructure{},
		&entities.FeeTransaction{},
		&entities.FacilityBooking{},
		&entities.NewsPost{},
		&entities.Notification{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	database := &Database{DB: db}

	if err := database.seedFeeStructures(); err != nil {
		return nil, fmt.Errorf("failed to seed fee structures: %w", err)
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return database, nil
}

// Ping verifies the underlying connection is still usable.
func (d *Database) Ping() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (d *Database) seedFeeStructures() error {
	for _, structure := range defaultFeeStructures {
		var existing entities.FeeStructure
		result := d.DB.Where("type = ?", structure.Type).First(&existing)
		if result.Error == gorm.ErrRecordNotFound {
			if err := d.DB.Create(&structure).Error; err != nil {
				return fmt.Errorf("failed to create fee structure %s: %w", structure.Type, err)
			}
			log.Printf("Created fee structure: %s (%s)", structure.Type, structure.Amount)
		}
	}
	return nil
}
