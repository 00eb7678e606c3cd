package persistence

import (
	"context"
	"errors"

	"github.com/shopbot/backend/internal/domain/cart"
	"github.com/shopbot/backend/internal/domain/order"
	"github.com/shopbot/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists a new order and assigns its id
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// CreateFromCart persists the order and clears the user's cart lines in one
// transaction. If the order write fails the cart stays untouched; once it
// commits, the cart is empty.
func (r *GormOrderRepository) CreateFromCart(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(o).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", o.UserID).
			Delete(&cart.Line{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// FindByID finds an order by its ID
func (r *GormOrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	var o order.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// FindAll returns every order, newest first (descending id)
func (r *GormOrderRepository) FindAll(ctx context.Context) ([]order.Order, error) {
	var orders []order.Order
	if err := r.db.WithContext(ctx).
		Order("id DESC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ order.OrderRepository = (*GormOrderRepository)(nil)
