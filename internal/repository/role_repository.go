package repository

import (
	"errors"

	"github.com/tricol/supplierchain/internal/domain"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByName(name domain.RoleName) (*domain.Role, error)
	List() ([]domain.Role, error)
	Create(role *domain.Role, permissions []domain.Permission) error
	Count() (int64, error)
}

type GormRoleRepository struct{ db *gorm.DB }

func NewRoleRepository(db *gorm.DB) RoleRepository { return &GormRoleRepository{db: db} }

func (r *GormRoleRepository) FindByName(name domain.RoleName) (*domain.Role, error) {
	var role domain.Role
	err := r.db.Preload("Permissions").Where("name = ?", name).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *GormRoleRepository) List() ([]domain.Role, error) {
	var roles []domain.Role
	err := r.db.Preload("Permissions").Order("id").Find(&roles).Error
	return roles, err
}

func (r *GormRoleRepository) Create(role *domain.Role, permissions []domain.Permission) error {
	if err := r.db.Create(role).Error; err != nil {
		return err
	}
	if len(permissions) == 0 {
		return nil
	}
	return r.db.Model(role).Association("Permissions").Replace(permissions)
}

func (r *GormRoleRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Role{}).Count(&n).Error
	return n, err
}
