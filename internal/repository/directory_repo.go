package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/samriddhi-college/chatbot-api/internal/models"
)

// StudentFilter narrows student listings for the roster and count queries.
type StudentFilter struct {
	Program string
	Batch   string
	Section string
	Limit   int
}

// DirectoryRepository provides access to the student and teacher records the
// chatbot answers from. Name matches are case-insensitive substring searches;
// results are ordered by name so ties resolve deterministically.
type DirectoryRepository interface {
	FindStudentsByName(ctx context.Context, name string) ([]models.Student, error)
	FindTeachersByName(ctx context.Context, name string) ([]models.Teacher, error)
	FindTeachersBySubject(ctx context.Context, subject string) ([]models.Teacher, error)
	FindStudentByEmail(ctx context.Context, email string) (*models.Student, error)
	ListStudents(ctx context.Context, filter StudentFilter) ([]models.Student, error)
	CountStudents(ctx context.Context, filter StudentFilter) (int64, error)
}

type directoryRepository struct {
	db *gorm.DB
}

// NewDirectoryRepository constructs a directory repository.
func NewDirectoryRepository(db *gorm.DB) DirectoryRepository {
	return &directoryRepository{db: db}
}

func (r *directoryRepository) FindStudentsByName(ctx context.Context, name string) ([]models.Student, error) {
	var students []models.Student
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		Find(&students).Error
	if err != nil {
		return nil, err
	}
	return students, nil
}

func (r *directoryRepository) FindTeachersByName(ctx context.Context, name string) ([]models.Teacher, error) {
	var teachers []models.Teacher
	pattern := "%" + strings.ToLower(strings.TrimSpace(name)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?", pattern).
		Order("name ASC").
		Find(&teachers).Error
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *directoryRepository) FindTeachersBySubject(ctx context.Context, subject string) ([]models.Teacher, error) {
	var teachers []models.Teacher
	pattern := "%" + strings.ToLower(strings.TrimSpace(subject)) + "%"
	err := r.db.WithContext(ctx).
		Where("LOWER(subject) LIKE ?", pattern).
		Order("name ASC").
		Find(&teachers).Error
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

func (r *directoryRepository) FindStudentByEmail(ctx context.Context, email string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&student).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &student, nil
}

func (r *directoryRepository) ListStudents(ctx context.Context, filter StudentFilter) ([]models.Student, error) {
	var students []models.Student
	query := applyStudentFilter(r.db.WithContext(ctx).Model(&models.Student{}), filter)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Order("name ASC").Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *directoryRepository) CountStudents(ctx context.Context, filter StudentFilter) (int64, error) {
	var total int64
	query := applyStudentFilter(r.db.WithContext(ctx).Model(&models.Student{}), filter)
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

func applyStudentFilter(query *gorm.DB, filter StudentFilter) *gorm.DB {
	if filter.Program != "" {
		query = query.Where("LOWER(program) LIKE ?", "%"+strings.ToLower(filter.Program)+"%")
	}
	if filter.Batch != "" {
		query = query.Where("LOWER(batch) = ?", strings.ToLower(filter.Batch))
	}
	if filter.Section != "" {
		query = query.Where("LOWER(section) = ?", strings.ToLower(filter.Section))
	}
	return query
}
