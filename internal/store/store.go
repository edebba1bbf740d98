package store

import (
	"context"

	"gorm.io/gorm"
)

type Store interface {
	NewTransactionContext(ctx context.Context) (context.Context, error)
	Order() Order
	Close() error
}

type DataStore struct {
	db    *gorm.DB
	order Order
}

func NewStore(db *gorm.DB) Store {
	return &DataStore{
		order: NewOrder(db),
		db:    db,
	}
}

func (s *DataStore) NewTransactionContext(ctx context.Context) (context.Context, error) {
	return newTransactionContext(ctx, s.db)
}

func (s *DataStore) Order() Order {
	return s.order
}

func (s *DataStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
