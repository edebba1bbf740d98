package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/thomhuang/shipzone/internal/store/model"
	"gorm.io/gorm"
)

type Order interface {
	List(ctx context.Context, filter *OrderQueryFilter, opts *OrderQueryOptions) (model.OrderList, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Create(ctx context.Context, order model.Order) (*model.Order, error)
	Count(ctx context.Context, filter *OrderQueryFilter) (int64, error)
}

type OrderStore struct {
	db *gorm.DB
}

// Make sure we conform to Order interface
var _ Order = (*OrderStore)(nil)

func NewOrder(db *gorm.DB) Order {
	return &OrderStore{db: db}
}

func (o *OrderStore) List(ctx context.Context, filter *OrderQueryFilter, opts *OrderQueryOptions) (model.OrderList, error) {
	var orders model.OrderList
	tx := o.getDB(ctx).Model(&orders)

	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}

	if opts != nil {
		for _, fn := range opts.QueryFn {
			tx = fn(tx)
		}
	}

	result := tx.Find(&orders)
	if result.Error != nil {
		return nil, result.Error
	}
	return orders, nil
}

func (o *OrderStore) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	result := o.getDB(ctx).Where("id = ?", id).First(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, result.Error
	}
	return &order, nil
}

func (o *OrderStore) Create(ctx context.Context, order model.Order) (*model.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	result := o.getDB(ctx).Create(&order)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateKey
		}
		return nil, result.Error
	}
	return &order, nil
}

func (o *OrderStore) Count(ctx context.Context, filter *OrderQueryFilter) (int64, error) {
	var count int64
	tx := o.getDB(ctx).Model(&model.Order{})
	if filter != nil {
		for _, fn := range filter.QueryFn {
			tx = fn(tx)
		}
	}
	if err := tx.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (o *OrderStore) getDB(ctx context.Context) *gorm.DB {
	tx := FromContext(ctx)
	if tx != nil {
		return tx
	}
	return o.db.WithContext(ctx)
}
