package repository

import (
	"github.com/yukikurage/taker-api/internal/models"
	"gorm.io/gorm"
)

// GormPositionRepository is a GORM implementation of PositionRepository
type GormPositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a new PositionRepository
func NewPositionRepository(db *gorm.DB) PositionRepository {
	return &GormPositionRepository{db: db}
}

func (r *GormPositionRepository) FindByName(name string) (*models.Position, error) {
	var position models.Position
	if err := r.db.Where("name = ?", name).First(&position).Error; err != nil {
		return nil, err
	}
	return &position, nil
}

func (r *GormPositionRepository) List() ([]models.Position, error) {
	var positions []models.Position
	if err := r.db.Order("id ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *GormPositionRepository) Ensure(name string) (*models.Position, error) {
	position := models.Position{Name: name}
	if err := r.db.Where(models.Position{Name: name}).FirstOrCreate(&position).Error; err != nil {
		return nil, err
	}
	return &position, nil
}
