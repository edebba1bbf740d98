package v1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomhuang/shipzone/internal/service"
)

const maxListLimit = 500

type CreateOrderForm struct {
	Email         string          `json:"email" validate:"required,email"`
	Country       string          `json:"country" validate:"required,country"`
	PostalCode    string          `json:"postalCode" validate:"required,postal_code"`
	WeightLbs     float64         `json:"weightLbs" validate:"gte=0"`
	ItemsSubtotal decimal.Decimal `json:"itemsSubtotal" validate:"gte=0"`
}

func (f CreateOrderForm) toRequest() service.OrderRequest {
	return service.OrderRequest{
		Email:         f.Email,
		Country:       f.Country,
		PostalCode:    f.PostalCode,
		WeightLbs:     f.WeightLbs,
		ItemsSubtotal: f.ItemsSubtotal,
	}
}

// (POST /api/v1/orders)
func (h *ServiceHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var form CreateOrderForm
	if err := render.DecodeJSON(r.Body, &form); err != nil {
		renderError(w, r, badRequest(err))
		return
	}

	if err := h.validator.Struct(form); err != nil {
		renderError(w, r, err)
		return
	}

	order, err := h.checkoutSrv.PlaceOrder(r.Context(), form.toRequest())
	if err != nil {
		renderError(w, r, err)
		return
	}

	reply := newOrderReply(order)
	reply.status = http.StatusCreated
	_ = render.Render(w, r, reply)
}

// (GET /api/v1/orders)
func (h *ServiceHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	filter := service.OrderFilter{
		PostalCode: r.URL.Query().Get("postal_code"),
		Email:      r.URL.Query().Get("email"),
		Zone:       r.URL.Query().Get("zone"),
		Limit:      100,
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 || limit > maxListLimit {
			renderError(w, r, service.NewErrInvalidRequest("limit must be between 1 and %d: %q", maxListLimit, raw))
			return
		}
		filter.Limit = limit
	}

	orders, err := h.checkoutSrv.ListOrders(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	total, err := h.checkoutSrv.CountOrders(r.Context(), filter)
	if err != nil {
		renderError(w, r, err)
		return
	}

	reply := OrderListReply{Total: total, Orders: make([]OrderReply, 0, len(orders))}
	for i := range orders {
		reply.Orders = append(reply.Orders, newOrderReply(&orders[i]))
	}
	_ = render.Render(w, r, reply)
}

// (GET /api/v1/orders/{id})
func (h *ServiceHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderError(w, r, badRequest(err))
		return
	}

	order, err := h.checkoutSrv.GetOrder(r.Context(), id)
	if err != nil {
		renderError(w, r, err)
		return
	}
	_ = render.Render(w, r, newOrderReply(order))
}
