package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
)

const defaultNearbyRadiusMiles = 25.0

type quoteParams struct {
	PostalCode string `validate:"required,postal_code"`
	Country    string `validate:"required,country"`
}

func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, HealthReply{Status: "ok", DatasetLoaded: h.estimator.Cache().Loaded()})
}

// (GET /api/v1/shipping/quote)
func (h *ServiceHandler) GetShippingQuote(w http.ResponseWriter, r *http.Request) {
	params := quoteParams{
		PostalCode: strings.TrimSpace(r.URL.Query().Get("postal_code")),
		Country:    strings.TrimSpace(r.URL.Query().Get("country")),
	}
	if params.Country == "" {
		params.Country = h.estimator.Cache().DomesticCountry()
	}
	if err := h.validator.Struct(params); err != nil {
		renderError(w, r, err)
		return
	}

	quote, err := h.checkoutSrv.QuoteShipping(r.Context(), params.Country, params.PostalCode)
	if err != nil {
		renderError(w, r, err)
		return
	}
	_ = render.Render(w, r, QuoteReply{quote})
}

// (GET /api/v1/shipping/zones)
func (h *ServiceHandler) ListZones(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, newZonesReply(h.estimator))
}

// (GET /api/v1/postal-codes/{code})
func (h *ServiceHandler) GetPostalCode(w http.ResponseWriter, r *http.Request) {
	record, err := h.postalSrv.GetPostalCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		renderError(w, r, err)
		return
	}
	_ = render.Render(w, r, PostalCodeReply{record})
}

// (GET /api/v1/postal-codes/{code}/nearby)
func (h *ServiceHandler) ListNearbyPostalCodes(w http.ResponseWriter, r *http.Request) {
	radius := defaultNearbyRadiusMiles
	if raw := r.URL.Query().Get("radius_miles"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			renderError(w, r, service.NewErrInvalidRequest("radius_miles is not a number: %q", raw))
			return
		}
		radius = v
	}

	code, err := shipping.NormalizePostalCode(chi.URLParam(r, "code"))
	if err != nil {
		renderError(w, r, err)
		return
	}

	neighbors, err := h.postalSrv.Nearby(r.Context(), code, radius)
	if err != nil {
		renderError(w, r, err)
		return
	}
	_ = render.Render(w, r, NearbyReply{
		PostalCode:  code,
		RadiusMiles: radius,
		Nearby:      neighbors,
	})
}
