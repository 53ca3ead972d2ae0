package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/p2h/backend/internal/models"
)

// UserRepository provides persistence access for identity records.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository constructs a repository using the provided gorm DB.
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmployeeID returns the user keyed by employee id.
func (r *UserRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "employee_id = ?", employeeID).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &user, nil
}

// SupervisorContact returns the first supervisory user carrying a phone
// number, used as the notification target when none is configured.
func (r *UserRepository) SupervisorContact(ctx context.Context) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("role IN ? AND phone_number <> ''", []string{models.RoleSupervisor, models.RoleAdmin}).
		First(&user).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &user, nil
}

// UpdatePhoto stores the uploaded profile photo URL for a user.
func (r *UserRepository) UpdatePhoto(ctx context.Context, employeeID, photoURL string) error {
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("employee_id = ?", employeeID).
		Update("photo_url", photoURL).Error
	return errors.WithStack(err)
}
