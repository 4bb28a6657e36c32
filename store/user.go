package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kevinaaaquil/library/backend/models"
)

func (db *DB) users(ctx context.Context) *gorm.DB {
	return db.conn(ctx).Preload("Roles").Preload("Address")
}

func (db *DB) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return first[models.User](db.users(ctx).Where("email = ?", email))
}

func (db *DB) UserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return first[models.User](db.users(ctx).Where("id = ?", id))
}

func (db *DB) RolesByNames(ctx context.Context, names []string) ([]models.Role, error) {
	var roles []models.Role
	if err := db.conn(ctx).Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, err
	}
	if len(roles) != len(names) {
		return nil, fmt.Errorf("unknown role in %v", names)
	}
	return roles, nil
}

// CreateUser inserts the user, its address and its role links.
func (db *DB) CreateUser(ctx context.Context, u *models.User, roleNames ...string) error {
	roles, err := db.RolesByNames(ctx, roleNames)
	if err != nil {
		return err
	}
	u.Roles = roles
	return db.conn(ctx).Omit("Roles.*").Create(u).Error
}

func (db *DB) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return db.conn(ctx).Model(&models.User{}).Where("id = ?", id).Update("password_hash", hash).Error
}

// SetUserRoles replaces the user's role links.
func (db *DB) SetUserRoles(ctx context.Context, id uuid.UUID, roleNames []string) error {
	roles, err := db.RolesByNames(ctx, roleNames)
	if err != nil {
		return err
	}
	u := &models.User{Base: models.Base{ID: id}}
	return db.conn(ctx).Model(u).Association("Roles").Replace(roles)
}

// UsersInRoleCount counts users holding the named role.
func (db *DB) UsersInRoleCount(ctx context.Context, role string) (int64, error) {
	var n int64
	err := db.conn(ctx).Table("user_roles").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role).
		Count(&n).Error
	return n, err
}
