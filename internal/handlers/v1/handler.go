package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/thomhuang/shipzone/internal/handlers/validator"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
)

type ServiceHandler struct {
	checkoutSrv *service.CheckoutService
	postalSrv   *service.PostalCodeService
	estimator   *shipping.Estimator
	validator   *validator.Validator
}

func NewServiceHandler(checkoutSrv *service.CheckoutService, postalSrv *service.PostalCodeService, estimator *shipping.Estimator) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewShippingValidationRules()...)

	return &ServiceHandler{
		checkoutSrv: checkoutSrv,
		postalSrv:   postalSrv,
		estimator:   estimator,
		validator:   v,
	}
}

// Routes mounts every endpoint on router.
func (h *ServiceHandler) Routes(router chi.Router) {
	router.Get("/health", h.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/shipping/quote", h.GetShippingQuote)
		r.Get("/shipping/zones", h.ListZones)

		r.Get("/postal-codes/{code}", h.GetPostalCode)
		r.Get("/postal-codes/{code}/nearby", h.ListNearbyPostalCodes)

		r.Post("/orders", h.CreateOrder)
		r.Get("/orders", h.ListOrders)
		r.Get("/orders/{id}", h.GetOrder)
	})
}
