package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/assignment-service/internal/models"
	"github.com/SAP-F-2025/assignment-service/internal/repositories"
)

type UserPostgreSQL struct {
	db *gorm.DB
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{db: db}
}

// userRow is a profile joined with its optional role binding.
type userRow struct {
	models.User
	RoleName *string `gorm:"column:role_name"`
}

func (r userRow) toModel() *models.User {
	user := r.User
	if r.RoleName != nil {
		user.Role = models.UserRole(*r.RoleName)
	}
	return &user
}

func (u *UserPostgreSQL) withRoles(ctx context.Context) *gorm.DB {
	return u.db.WithContext(ctx).
		Table("users").
		Select("users.*, user_roles.role AS role_name").
		Joins("LEFT JOIN user_roles ON user_roles.user_id = users.id")
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, id string) (*models.User, error) {
	var row userRow
	if err := u.withRoles(ctx).Where("users.id = ?", id).Take(&row).Error; err != nil {
		return nil, translateError(err, "failed to get user %s", id)
	}
	return row.toModel(), nil
}

// Create inserts the profile and, when role is set, its role binding.
func (u *UserPostgreSQL) Create(ctx context.Context, user *models.User, role models.UserRole) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return translateError(err, "failed to create user")
		}
		if role == "" {
			return nil
		}
		binding := &models.UserRoleBinding{UserID: user.ID, Role: role}
		if err := tx.Create(binding).Error; err != nil {
			return translateError(err, "failed to bind role")
		}
		user.Role = role
		return nil
	})
}

func (u *UserPostgreSQL) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	query := u.withRoles(ctx)
	if filters.Verified != nil {
		query = query.Where("users.verified = ?", *filters.Verified)
	}
	if len(filters.Roles) > 0 {
		query = query.Where("user_roles.role IN ?", filters.Roles)
	}

	var rows []userRow
	if err := query.Order("users.created_at DESC").Find(&rows).Error; err != nil {
		return nil, translateError(err, "failed to list users")
	}

	users := make([]*models.User, len(rows))
	for i, row := range rows {
		users[i] = row.toModel()
	}
	return users, nil
}

func (u *UserPostgreSQL) SetVerified(ctx context.Context, id string, verified bool) error {
	result := u.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("verified", verified)
	return checkAffected(result, "failed to update verification of user %s", id)
}

func (u *UserPostgreSQL) Delete(ctx context.Context, id string) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.UserRoleBinding{}).Error; err != nil {
			return translateError(err, "failed to delete role of user %s", id)
		}
		result := tx.Where("id = ?", id).Delete(&models.User{})
		return checkAffected(result, "failed to delete user %s", id)
	})
}
