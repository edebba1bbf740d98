package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/thomhuang/shipzone/internal/config"
	v1 "github.com/thomhuang/shipzone/internal/handlers/v1"
	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/pkg/middleware"
	"github.com/thomhuang/shipzone/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func newRouter(s store.Store, cache *postal.Cache) *chi.Mux {
	estimator := shipping.NewEstimator(cache)
	h := v1.NewServiceHandler(
		service.NewCheckoutService(s, estimator),
		service.NewPostalCodeService(cache),
		estimator,
	)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	h.Routes(router)
	return router
}

func do(router http.Handler, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	payload := map[string]any{}
	_ = json.Unmarshal(rec.Body.Bytes(), &payload)
	return rec, payload
}

var _ = Describe("shipping handlers", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		router *chi.Mux
	)

	BeforeAll(func() {
		cfg, err := config.Load()
		Expect(err).To(BeNil())
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = ":memory:"

		db, err := store.InitDB(cfg)
		Expect(err).To(BeNil())
		Expect(migrations.MigrateStore(db, cfg)).To(Succeed())

		s = store.NewStore(db)
		gormdb = db
		router = newRouter(s, postal.NewCache(postal.SampleSource()))
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM orders;")
	})

	Context("health", func() {
		It("reports ok", func() {
			rec, payload := do(router, http.MethodGet, "/health", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["status"]).To(Equal("ok"))
		})
	})

	Context("quote", func() {
		It("returns the quote breakdown", func() {
			rec, payload := do(router, http.MethodGet, "/api/v1/shipping/quote?postal_code=11501&country=US", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["postalCode"]).To(Equal("11501"))
			Expect(payload["totalCost"]).To(Equal(37.0))
			Expect(payload["zoneLabel"]).To(Equal("Zone 1 (Local)"))
			Expect(payload["regionCode"]).To(Equal("NY"))
		})

		It("defaults the country to the domestic one", func() {
			rec, _ := do(router, http.MethodGet, "/api/v1/shipping/quote?postal_code=10001", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
		})

		It("returns 400 for malformed codes", func() {
			rec, payload := do(router, http.MethodGet, "/api/v1/shipping/quote?postal_code=ABCDE", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
			Expect(payload["requestId"]).NotTo(BeEmpty())
		})

		It("returns 400 for foreign countries", func() {
			rec, _ := do(router, http.MethodGet, "/api/v1/shipping/quote?postal_code=11501&country=CA", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("returns 404 for unknown codes", func() {
			rec, _ := do(router, http.MethodGet, "/api/v1/shipping/quote?postal_code=00000", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})

		It("returns 503 when the dataset cannot be loaded", func() {
			broken := newRouter(s, postal.NewCache(&postal.FileSource{Path: "/nonexistent/zip_codes.csv"}))
			rec, payload := do(broken, http.MethodGet, "/api/v1/shipping/quote?postal_code=11501", "")
			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			Expect(payload["message"]).NotTo(ContainSubstring("nonexistent"))
		})
	})

	Context("zones", func() {
		It("lists the zone table with an open ended last zone", func() {
			rec, payload := do(router, http.MethodGet, "/api/v1/shipping/zones", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			zones, ok := payload["zones"].([]any)
			Expect(ok).To(BeTrue())
			Expect(zones).To(HaveLen(9))
			last := zones[8].(map[string]any)
			Expect(last["upperBoundMiles"]).To(BeNil())
			Expect(last["lowerBoundMiles"]).To(Equal(2500.0))
		})
	})

	Context("postal codes", func() {
		It("returns a record", func() {
			rec, payload := do(router, http.MethodGet, "/api/v1/postal-codes/13602", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["city"]).To(Equal("Fort Drum, Watertown"))
		})

		It("lists nearby codes", func() {
			rec, payload := do(router, http.MethodGet, "/api/v1/postal-codes/11501/nearby?radius_miles=30", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			nearby := payload["nearby"].([]any)
			Expect(nearby[0].(map[string]any)["postalCode"]).To(Equal("11501"))
		})

		It("reports the requested code as the center", func() {
			rec, payload := do(router, http.MethodGet, "/api/v1/postal-codes/11501-1234/nearby?radius_miles=30", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["postalCode"]).To(Equal("11501"))
			Expect(payload["radiusMiles"]).To(Equal(30.0))
		})

		It("rejects a bad radius", func() {
			rec, _ := do(router, http.MethodGet, "/api/v1/postal-codes/11501/nearby?radius_miles=far", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("orders", func() {
		It("creates, fetches and lists an order", func() {
			rec, payload := do(router, http.MethodPost, "/api/v1/orders",
				`{"email":"buyer@example.com","country":"US","postalCode":"11501","weightLbs":2.5,"itemsSubtotal":"50.00"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			Expect(payload["orderTotal"]).To(Equal(87.0))
			id, ok := payload["id"].(string)
			Expect(ok).To(BeTrue())

			rec, payload = do(router, http.MethodGet, "/api/v1/orders/"+id, "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["shipping"].(map[string]any)["totalCost"]).To(Equal(37.0))

			rec, payload = do(router, http.MethodGet, "/api/v1/orders?postal_code=11501", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["orders"]).To(HaveLen(1))
			Expect(payload["total"]).To(Equal(1.0))

			rec, payload = do(router, http.MethodGet, "/api/v1/orders?zone=Zone+1+%28Local%29", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["orders"]).To(HaveLen(1))

			rec, payload = do(router, http.MethodGet, "/api/v1/orders?zone=Zone+9+%28Extreme+Distance%29", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["orders"]).To(BeEmpty())
			Expect(payload["total"]).To(Equal(0.0))
		})

		It("rejects an invalid body", func() {
			rec, _ := do(router, http.MethodPost, "/api/v1/orders", `{"email":"nope","country":"US","postalCode":"11501","itemsSubtotal":10}`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))

			rec, _ = do(router, http.MethodPost, "/api/v1/orders", `{not json`)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})

		It("does not create an order for an unknown code", func() {
			rec, _ := do(router, http.MethodPost, "/api/v1/orders", `{"email":"buyer@example.com","country":"US","postalCode":"00000","itemsSubtotal":10}`)
			Expect(rec.Code).To(Equal(http.StatusNotFound))

			rec, payload := do(router, http.MethodGet, "/api/v1/orders", "")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(payload["orders"]).To(BeEmpty())
		})

		It("returns 404 for unknown and 400 for malformed ids", func() {
			rec, _ := do(router, http.MethodGet, "/api/v1/orders/5f1c7f0e-8d47-4a43-9a55-0a4f7a2f6c11", "")
			Expect(rec.Code).To(Equal(http.StatusNotFound))

			rec, _ = do(router, http.MethodGet, "/api/v1/orders/not-a-uuid", "")
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})
})
