package persistence

import (
	"context"
	"time"

	"github.com/shopbot/backend/internal/domain/cart"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// Upsert adds the line's quantity to the (user, product) line, creating it
// when absent. ON CONFLICT keeps the merge atomic under concurrent adds.
func (r *GormCartRepository) Upsert(ctx context.Context, line *cart.Line) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("quantity + ?", line.Quantity),
				"updated_at": time.Now(),
			}),
		}).
		Create(line).Error
}

// Remove deletes the line if present; removing an absent line is a no-op
func (r *GormCartRepository) Remove(ctx context.Context, userID, productID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&cart.Line{}).Error
}

// FindByUser returns the user's lines in ascending product id order
func (r *GormCartRepository) FindByUser(ctx context.Context, userID int64) ([]cart.Line, error) {
	var lines []cart.Line
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("product_id ASC").
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

// Clear deletes all lines for the user; idempotent
func (r *GormCartRepository) Clear(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&cart.Line{}).Error
}

// Ensure GormCartRepository implements CartRepository
var _ cart.CartRepository = (*GormCartRepository)(nil)
