package repository

import (
	"errors"

	"github.com/tricol/supplierchain/internal/domain"

	"gorm.io/gorm"
)

type ProductRepository interface {
	FindByReference(reference string) (*domain.Product, error)
	ExistsByReference(reference string) (bool, error)
	List() ([]domain.Product, error)
	Create(product *domain.Product) error
	Count() (int64, error)
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByReference(reference string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.Where("reference = ?", reference).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) ExistsByReference(reference string) (bool, error) {
	var n int64
	err := r.db.Model(&domain.Product{}).Where("reference = ?", reference).Count(&n).Error
	return n > 0, err
}

func (r *GormProductRepository) List() ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.Order("reference").Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Create(product *domain.Product) error {
	return r.db.Create(product).Error
}

func (r *GormProductRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&domain.Product{}).Count(&n).Error
	return n, err
}
