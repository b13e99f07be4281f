// Package applications provides database operations for membership
// applications.
package applications

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/derkdev976-web/davel-library-sub001/internal/entities"
)

// Repository handles membership application database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new applications repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateApplication records a new PENDING membership application.
func (r *Repository) CreateApplication(application *entities.MembershipApplication) error {
	application.Status = entities.ApplicationStatusPending
	return r.db.Create(application).Error
}

// GetApplicationByID retrieves an application by ID.
func (r *Repository) GetApplicationByID(id uint) (*entities.MembershipApplication, error) {
	var application entities.MembershipApplication
	err := r.db.First(&application, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, entities.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// ListApplications retrieves applications, newest first, optionally filtered
// by status.
func (r *Repository) ListApplications(status entities.ApplicationStatus) ([]entities.MembershipApplication, error) {
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var apps []entities.MembershipApplication
	err := query.Find(&apps).Error
	return apps, err
}

// Review moves a PENDING application to APPROVED or REJECTED with a guarded
// conditional write, so two reviewers cannot both decide it.
func (r *Repository) Review(id uint, decision entities.ApplicationStatus, notes string) (*entities.MembershipApplication, error) {
	if decision != entities.ApplicationStatusApproved && decision != entities.ApplicationStatusRejected {
		return nil, entities.NewInvalidStateError("application", string(entities.ApplicationStatusPending), string(decision))
	}

	now := time.Now()
	result := r.db.Model(&entities.MembershipApplication{}).
		Where("id = ? AND status = ?", id, entities.ApplicationStatusPending).
		Updates(map[string]any{
			"status":      decision,
			"notes":       notes,
			"reviewed_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		application, err := r.GetApplicationByID(id)
		if err != nil {
			return nil, err
		}
		return nil, entities.NewInvalidStateError("application", string(application.Status), string(decision))
	}

	return r.GetApplicationByID(id)
}

// CountPending returns the number of applications awaiting review.
func (r *Repository) CountPending() (int64, error) {
	var count int64
	err := r.db.Model(&entities.MembershipApplication{}).
		Where("status = ?", entities.ApplicationStatusPending).
		Count(&count).Error
	return count, err
}
