package repositories

import (
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"alfredoptarigan/ats-analyzer/internal/models"
)

type AnalysisRepository interface {
	Create(record *models.AnalysisRecord) error
}

type analysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) AnalysisRepository {
	return &analysisRepository{db: db}
}

func (r *analysisRepository) Create(record *models.AnalysisRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to create analysis record: %w", err)
	}
	return nil
}

// noopAnalysisRepository is used when auditing is disabled.
type noopAnalysisRepository struct{}

func NewNoopAnalysisRepository() AnalysisRepository {
	return noopAnalysisRepository{}
}

func (noopAnalysisRepository) Create(*models.AnalysisRecord) error {
	return nil
}
