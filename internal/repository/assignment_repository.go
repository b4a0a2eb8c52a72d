package repository

import (
	"github.com/yukikurage/taker-api/internal/models"
	"gorm.io/gorm"
)

// GormAssignmentRepository is a GORM implementation of AssignmentRepository
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *gorm.DB) AssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// Create adds a user to a project
func (r *GormAssignmentRepository) Create(assignment *models.ProjectAssignment) error {
	return r.db.Create(assignment).Error
}

func (r *GormAssignmentRepository) Delete(id uint64) error {
	return r.db.Delete(&models.ProjectAssignment{}, id).Error
}

// FindByUser lists all projects a user is assigned to
func (r *GormAssignmentRepository) FindByUser(userID uint64) ([]models.ProjectAssignment, error) {
	var assignments []models.ProjectAssignment
	if err := r.db.Preload("Project").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindByProject lists all members of a project
func (r *GormAssignmentRepository) FindByProject(projectID uint64) ([]models.ProjectAssignment, error) {
	var assignments []models.ProjectAssignment
	if err := r.db.Preload("User.Position").
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *GormAssignmentRepository) FindByUserAndRole(userID uint64, role models.ProjectRole) ([]models.ProjectAssignment, error) {
	var assignments []models.ProjectAssignment
	if err := r.db.Preload("Project").
		Where("user_id = ? AND project_role = ?", userID, role).
		Order("id ASC").
		Find(&assignments).Error; err != nil {
		return nil, err
	}
	return assignments, nil
}

// FindByProjectAndUser finds a specific project assignment
func (r *GormAssignmentRepository) FindByProjectAndUser(projectID, userID uint64) (*models.ProjectAssignment, error) {
	var assignment models.ProjectAssignment
	if err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&assignment).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *GormAssignmentRepository) CountByProjectAndRole(projectID uint64, role models.ProjectRole) (int64, error) {
	var count int64
	err := r.db.Model(&models.ProjectAssignment{}).
		Where("project_id = ? AND project_role = ?", projectID, role).
		Count(&count).Error
	return count, err
}
