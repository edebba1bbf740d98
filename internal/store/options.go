package store

import (
	"gorm.io/gorm"
)

type BaseQuerier struct {
	QueryFn []func(tx *gorm.DB) *gorm.DB
}

type SortOrder int

const (
	Unsorted SortOrder = iota
	SortByCreatedTime
	SortByNewest
)

type OrderQueryFilter BaseQuerier

func NewOrderQueryFilter() *OrderQueryFilter {
	return &OrderQueryFilter{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (qf *OrderQueryFilter) ByPostalCode(code string) *OrderQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("postal_code = ?", code)
	})
	return qf
}

func (qf *OrderQueryFilter) ByEmail(email string) *OrderQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("email = ?", email)
	})
	return qf
}

func (qf *OrderQueryFilter) ByZone(label string) *OrderQueryFilter {
	qf.QueryFn = append(qf.QueryFn, func(tx *gorm.DB) *gorm.DB {
		return tx.Where("zone_label = ?", label)
	})
	return qf
}

type OrderQueryOptions BaseQuerier

func NewOrderQueryOptions() *OrderQueryOptions {
	return &OrderQueryOptions{QueryFn: make([]func(tx *gorm.DB) *gorm.DB, 0)}
}

func (o *OrderQueryOptions) WithSortOrder(sort SortOrder) *OrderQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		switch sort {
		case SortByCreatedTime:
			return tx.Order("created_at")
		case SortByNewest:
			return tx.Order("created_at DESC")
		default:
			return tx
		}
	})
	return o
}

func (o *OrderQueryOptions) WithLimit(limit int) *OrderQueryOptions {
	o.QueryFn = append(o.QueryFn, func(tx *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return tx
		}
		return tx.Limit(limit)
	})
	return o
}
