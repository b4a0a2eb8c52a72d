package repository

import (
	"time"

	"github.com/yukikurage/taker-api/internal/database"
	"github.com/yukikurage/taker-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Position").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Position").Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByLoginID finds a user by login id
func (r *GormUserRepository) FindByLoginID(loginID int) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Position").Where("login_id = ?", loginID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) ListIDs() ([]uint64, error) {
	var ids []uint64
	if err := r.db.Model(&models.User{}).Order("id ASC").Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormUserRepository) FindByIDs(ids []uint64) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	var users []models.User
	if err := r.db.Preload("Position").Where("id IN ?", ids).Order("id ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// List retrieves users with filtering and pagination
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	if filter.Restrict && len(filter.IDs) == 0 {
		return []models.User{}, 0, nil
	}

	query := r.db.Model(&models.User{})
	if filter.Restrict {
		query = query.Where("users.id IN ?", filter.IDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("users.id ASC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	var users []models.User
	if err := listQuery.Preload("Position").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *GormUserRepository) ExistsLoginID(loginID int) (bool, error) {
	var count int64
	if err := r.db.Model(&models.User{}).Where("login_id = ?", loginID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Omit("Position").Save(user).Error
}

func (r *GormUserRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *GormUserRepository) SaveChallenge(userID uint64, answer string, expiresAt time.Time) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"pending_answer":    answer,
			"answer_expires_at": expiresAt,
		}).Error
}

func (r *GormUserRepository) ClearChallenge(userID uint64) error {
	return r.db.Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"pending_answer":    nil,
			"answer_expires_at": nil,
		}).Error
}

// ConsumeChallenge is a compare-and-swap on pending_answer, so two requests
// racing on the same answer cannot both succeed.
func (r *GormUserRepository) ConsumeChallenge(userID uint64, answer, passwordHash string) (bool, error) {
	result := r.db.Model(&models.User{}).
		Where("id = ? AND pending_answer = ?", userID, answer).
		Updates(map[string]any{
			"password_hash":     passwordHash,
			"pending_answer":    nil,
			"answer_expires_at": nil,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteCascade deletes the user and everything referencing it in a transaction
func (r *GormUserRepository) DeleteCascade(userID uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.ProjectAssignment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("assignee_id = ?", userID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, userID).Error
	})
}
