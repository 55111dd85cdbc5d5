package repository

import (
	"errors"

	"github.com/tricol/supplierchain/internal/domain"

	"gorm.io/gorm"
)

type PermissionRepository interface {
	FindByName(name domain.PermissionName) (*domain.Permission, error)
	List() ([]domain.Permission, error)
	Create(permission *domain.Permission) error
	Count() (int64, error)
}

type GormPermissionRepository struct{ db *gorm.DB }

func NewPermissionRepository(db *gorm.DB) PermissionRepository {
	return &GormPermissionRepository{db: db}
}

func (r *GormPermissionRepository) FindByName(name domain.PermissionName) (*domain.Permission, error) {
	var p domain.Permission
	err := r.db.Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormPermissionRepository) List() ([]domain.Permission, error) {
	var perms []domain.Permission
	err := r.db.Order("id").Find(&perms).Error
	return perms, err
}

func (r *GormPermissionRepository) Create(permission *domain.Permission) error {
	return r.db.Create(permission).Error
}

func (r *GormPermissionRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Permission{}).Count(&n).Error
	return n, err
}
