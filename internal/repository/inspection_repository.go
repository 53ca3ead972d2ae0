package repository

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/example/p2h/backend/internal/models"
)

// InspectionRepository provides persistence access for inspection records.
type InspectionRepository struct {
	db *gorm.DB
}

// NewInspectionRepository constructs a repository using the provided gorm DB.
func NewInspectionRepository(db *gorm.DB) *InspectionRepository {
	return &InspectionRepository{db: db}
}

// Create persists a new inspection record.
func (r *InspectionRepository) Create(ctx context.Context, rec *models.Inspection) error {
	return errors.WithStack(r.db.WithContext(ctx).Create(rec).Error)
}

// FindByID returns the record by primary key.
func (r *InspectionRepository) FindByID(ctx context.Context, id uint) (*models.Inspection, error) {
	var rec models.Inspection
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &rec, nil
}

// FindByToken returns the record carrying the given approval token.
func (r *InspectionRepository) FindByToken(ctx context.Context, token string) (*models.Inspection, error) {
	var rec models.Inspection
	if err := r.db.WithContext(ctx).First(&rec, "approval_token = ?", token).Error; err != nil {
		return nil, errors.WithStack(err)
	}
	return &rec, nil
}

// List returns records ordered by creation time descending. A non-empty
// operatorID restricts the result to that operator's submissions.
func (r *InspectionRepository) List(ctx context.Context, operatorID string) ([]models.Inspection, error) {
	q := r.db.WithContext(ctx).Order("created_at desc")
	if operatorID != "" {
		q = q.Where("operator_id = ?", operatorID)
	}
	var recs []models.Inspection
	err := q.Find(&recs).Error
	return recs, errors.WithStack(err)
}

// Approve performs the one-way approval transition as a single conditional
// update. It returns the number of rows changed: 0 means the token either
// does not exist or the record was already approved; the caller
// distinguishes the two. The approved_at IS NULL guard serializes
// near-simultaneous approvals so only one can succeed.
func (r *InspectionRepository) Approve(ctx context.Context, token, signature string, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Inspection{}).
		Where("approval_token = ? AND approved_at IS NULL", token).
		Updates(map[string]any{
			"approved_at":          now,
			"supervisor_signature": signature,
			"status":               models.StatusApproved,
		})
	return res.RowsAffected, errors.WithStack(res.Error)
}

// Summary aggregates record counts for the supervisor dashboard.
type Summary struct {
	Total    int64               `json:"total"`
	Ready    int64               `json:"ready"`
	NotReady int64               `json:"not_ready"`
	Approved int64               `json:"approved"`
	Critical []models.Inspection `json:"critical"`
}

// Summarize computes dashboard statistics plus the most recent NOT READY
// units.
func (r *InspectionRepository) Summarize(ctx context.Context) (Summary, error) {
	var s Summary
	db := r.db.WithContext(ctx).Model(&models.Inspection{})

	if err := db.Count(&s.Total).Error; err != nil {
		return s, errors.WithStack(err)
	}
	counts := []struct {
		status models.InspectionStatus
		dest   *int64
	}{
		{models.StatusReady, &s.Ready},
		{models.StatusNotReady, &s.NotReady},
		{models.StatusApproved, &s.Approved},
	}
	for _, c := range counts {
		err := r.db.WithContext(ctx).Model(&models.Inspection{}).
			Where("status = ?", c.status).Count(c.dest).Error
		if err != nil {
			return s, errors.WithStack(err)
		}
	}

	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusNotReady).
		Order("created_at desc").
		Limit(5).
		Find(&s.Critical).Error
	return s, errors.WithStack(err)
}

// OperatorStats holds per-operator aggregates for the profile screen.
type OperatorStats struct {
	Count int64
	MaxHM float64
	MinHM float64
}

// StatsForOperator aggregates submissions for one operator.
func (r *InspectionRepository) StatsForOperator(ctx context.Context, employeeID string) (OperatorStats, error) {
	var row struct {
		Count int64
		MaxHM *float64
		MinHM *float64
	}
	err := r.db.WithContext(ctx).Model(&models.Inspection{}).
		Select("COUNT(*) AS count, MAX(hm_start) AS max_hm, MIN(hm_start) AS min_hm").
		Where("operator_id = ?", employeeID).
		Scan(&row).Error
	if err != nil {
		return OperatorStats{}, errors.WithStack(err)
	}
	stats := OperatorStats{Count: row.Count}
	if row.MaxHM != nil {
		stats.MaxHM = *row.MaxHM
	}
	if row.MinHM != nil {
		stats.MinHM = *row.MinHM
	}
	return stats, nil
}
