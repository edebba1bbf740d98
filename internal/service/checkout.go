package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/internal/store/model"
	"github.com/thomhuang/shipzone/pkg/metrics"
	"github.com/thomhuang/shipzone/pkg/requestid"
	"go.uber.org/zap"
)

// OrderRequest is what a buyer submits at checkout.
type OrderRequest struct {
	Email         string
	Country       string
	PostalCode    string
	WeightLbs     float64
	ItemsSubtotal decimal.Decimal
}

type OrderFilter struct {
	PostalCode string
	Email      string
	Zone       string
	Limit      int
}

// CheckoutService prices shipping for a destination and records orders
// with the quote they were charged.
type CheckoutService struct {
	store     store.Store
	estimator *shipping.Estimator
}

func NewCheckoutService(store store.Store, estimator *shipping.Estimator) *CheckoutService {
	return &CheckoutService{store: store, estimator: estimator}
}

// QuoteShipping rejects non domestic destinations and otherwise asks the
// estimator for a quote.
func (c *CheckoutService) QuoteShipping(ctx context.Context, country, postalCode string) (shipping.Quote, error) {
	if !c.estimator.IsDomestic(country) {
		metrics.IncreaseQuotesTotalMetric("", metrics.OutcomeInvalid)
		return shipping.Quote{}, fmt.Errorf("%w: %q", shipping.ErrNonDomesticDestination, country)
	}

	quote, err := c.estimator.Estimate(ctx, postalCode)
	if err != nil {
		metrics.IncreaseQuotesTotalMetric("", outcome(err))
		return shipping.Quote{}, err
	}

	metrics.IncreaseQuotesTotalMetric(quote.ZoneLabel, metrics.OutcomeSuccess)
	return quote, nil
}

// PlaceOrder quotes shipping and stores the order. An order is never
// written without a successful quote.
func (c *CheckoutService) PlaceOrder(ctx context.Context, req OrderRequest) (*model.Order, error) {
	logger := zap.S().Named("checkout_service")

	if req.WeightLbs < 0 {
		metrics.IncreaseOrdersTotalMetric(metrics.OutcomeInvalid)
		return nil, NewErrInvalidRequest("weight must not be negative: %v", req.WeightLbs)
	}
	if req.ItemsSubtotal.IsNegative() {
		metrics.IncreaseOrdersTotalMetric(metrics.OutcomeInvalid)
		return nil, NewErrInvalidRequest("items subtotal must not be negative: %s", req.ItemsSubtotal)
	}

	quote, err := c.QuoteShipping(ctx, req.Country, req.PostalCode)
	if err != nil {
		metrics.IncreaseOrdersTotalMetric(outcome(err))
		logger.Warnw("order rejected", "postal_code", req.PostalCode, "country", req.Country, "error", err, "request_id", requestid.FromContext(ctx))
		return nil, err
	}

	order := newOrderModel(req, quote)
	order.RequestID = requestid.FromContext(ctx)

	ctx, err = c.store.NewTransactionContext(ctx)
	if err != nil {
		metrics.IncreaseOrdersTotalMetric(metrics.OutcomeError)
		return nil, err
	}

	created, err := c.store.Order().Create(ctx, order)
	if err != nil {
		_, _ = store.Rollback(ctx)
		metrics.IncreaseOrdersTotalMetric(metrics.OutcomeError)
		return nil, err
	}

	if _, err := store.Commit(ctx); err != nil {
		metrics.IncreaseOrdersTotalMetric(metrics.OutcomeError)
		return nil, err
	}

	metrics.IncreaseOrdersTotalMetric(metrics.OutcomeSuccess)
	logger.Infow("order placed", "order_id", created.ID, "postal_code", created.PostalCode, "zone", created.ZoneLabel, "total", created.OrderTotal.StringFixed(2), "request_id", created.RequestID)
	return created, nil
}

func (c *CheckoutService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := c.store.Order().Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrOrderNotFound(id)
		}
		return nil, err
	}
	return order, nil
}

// ListOrders returns orders newest first.
func (c *CheckoutService) ListOrders(ctx context.Context, filter OrderFilter) (model.OrderList, error) {
	opts := store.NewOrderQueryOptions().WithSortOrder(store.SortByNewest).WithLimit(filter.Limit)
	return c.store.Order().List(ctx, orderQueryFilter(filter), opts)
}

// CountOrders returns how many orders match filter, ignoring its limit.
func (c *CheckoutService) CountOrders(ctx context.Context, filter OrderFilter) (int64, error) {
	return c.store.Order().Count(ctx, orderQueryFilter(filter))
}

func orderQueryFilter(filter OrderFilter) *store.OrderQueryFilter {
	storeFilter := store.NewOrderQueryFilter()
	if filter.PostalCode != "" {
		storeFilter = storeFilter.ByPostalCode(filter.PostalCode)
	}
	if filter.Email != "" {
		storeFilter = storeFilter.ByEmail(strings.ToLower(filter.Email))
	}
	if filter.Zone != "" {
		storeFilter = storeFilter.ByZone(filter.Zone)
	}
	return storeFilter
}

func newOrderModel(req OrderRequest, q shipping.Quote) model.Order {
	shippingCost := decimal.NewFromFloat(q.TotalCost)
	subtotal := req.ItemsSubtotal.Round(2)

	return model.Order{
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Country:        strings.ToUpper(strings.TrimSpace(req.Country)),
		PostalCode:     q.PostalCode,
		RegionCode:     q.RegionCode,
		CityName:       q.CityName,
		WeightLbs:      req.WeightLbs,
		ItemsSubtotal:  subtotal,
		ShippingCost:   shippingCost,
		BaseCost:       decimal.NewFromFloat(q.BaseCost),
		ZoneCost:       decimal.NewFromFloat(q.ZoneCost),
		Surcharge:      decimal.NewFromFloat(q.Surcharge),
		PerMileCharge:  decimal.NewFromFloat(q.PerMileCharge),
		DistanceCharge: decimal.NewFromFloat(q.DistanceCharge),
		DistanceMiles:  q.DistanceMiles,
		ZoneLabel:      q.ZoneLabel,
		OrderTotal:     subtotal.Add(shippingCost),
	}
}

func outcome(err error) string {
	switch {
	case errors.Is(err, shipping.ErrInvalidPostalCode), errors.Is(err, shipping.ErrNonDomesticDestination):
		return metrics.OutcomeInvalid
	case errors.Is(err, shipping.ErrPostalCodeNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, shipping.ErrDatasetUnavailable):
		return metrics.OutcomeUnavailable
	default:
		return metrics.OutcomeError
	}
}
