package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/samriddhi-college/chatbot-api/internal/models"
)

// QueryLogFilter narrows query log listings for the admin dashboard.
type QueryLogFilter struct {
	Page     int
	PageSize int
	Role     string
	Intent   string
	Denied   *bool
}

// QueryLogRepository persists the append-only record of answered questions.
type QueryLogRepository interface {
	Create(ctx context.Context, entry *models.QueryLog) error
	List(ctx context.Context, filter QueryLogFilter) ([]models.QueryLog, int64, error)
}

type queryLogRepository struct {
	db *gorm.DB
}

// NewQueryLogRepository constructs the query log repository.
func NewQueryLogRepository(db *gorm.DB) QueryLogRepository {
	return &queryLogRepository{db: db}
}

func (r *queryLogRepository) Create(ctx context.Context, entry *models.QueryLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *queryLogRepository) List(ctx context.Context, filter QueryLogFilter) ([]models.QueryLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.QueryLog{})

	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Intent != "" {
		query = query.Where("intent = ?", filter.Intent)
	}
	if filter.Denied != nil {
		query = query.Where("denied = ?", *filter.Denied)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	var entries []models.QueryLog
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
