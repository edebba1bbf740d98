package service_test

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomhuang/shipzone/internal/config"
	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/pkg/migrations"
	"github.com/thomhuang/shipzone/pkg/requestid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func newTestStore() (store.Store, *gorm.DB) {
	cfg, err := config.Load()
	Expect(err).To(BeNil())
	cfg.Database.Type = "sqlite"
	cfg.Database.Name = ":memory:"

	db, err := store.InitDB(cfg)
	Expect(err).To(BeNil())
	Expect(migrations.MigrateStore(db, cfg)).To(Succeed())
	return store.NewStore(db), db
}

func countOrders(db *gorm.DB) int {
	count := -1
	Expect(db.Raw("SELECT COUNT(*) FROM orders;").Scan(&count).Error).To(BeNil())
	return count
}

var _ = Describe("checkout service", Ordered, func() {
	var (
		s      store.Store
		gormdb *gorm.DB
		srv    *service.CheckoutService
	)

	BeforeAll(func() {
		s, gormdb = newTestStore()
		srv = service.NewCheckoutService(s, shipping.NewEstimator(postal.NewCache(postal.SampleSource())))
	})

	AfterAll(func() {
		s.Close()
	})

	AfterEach(func() {
		gormdb.Exec("DELETE FROM orders;")
	})

	Context("quote", func() {
		It("quotes the origin postal code", func() {
			quote, err := srv.QuoteShipping(context.TODO(), "US", "11501")
			Expect(err).To(BeNil())
			Expect(quote.TotalCost).To(Equal(37.0))
			Expect(quote.ZoneLabel).To(Equal("Zone 1 (Local)"))
			Expect(quote.CityName).To(Equal("Mineola"))
		})

		It("accepts the country in any case", func() {
			_, err := srv.QuoteShipping(context.TODO(), "us", "11501-0001")
			Expect(err).To(BeNil())
		})

		It("rejects foreign destinations", func() {
			_, err := srv.QuoteShipping(context.TODO(), "CA", "11501")
			Expect(errors.Is(err, shipping.ErrNonDomesticDestination)).To(BeTrue())
		})

		It("rejects malformed codes", func() {
			_, err := srv.QuoteShipping(context.TODO(), "US", "ABCDE")
			Expect(errors.Is(err, shipping.ErrInvalidPostalCode)).To(BeTrue())
		})

		It("reports unknown codes", func() {
			_, err := srv.QuoteShipping(context.TODO(), "US", "00000")
			Expect(errors.Is(err, shipping.ErrPostalCodeNotFound)).To(BeTrue())
		})
	})

	Context("place order", func() {
		It("stores the order with its shipping quote", func() {
			ctx := requestid.ToContext(context.TODO(), "req-1")
			order, err := srv.PlaceOrder(ctx, service.OrderRequest{
				Email:         " Buyer@Example.com ",
				Country:       "US",
				PostalCode:    "11501",
				WeightLbs:     3.5,
				ItemsSubtotal: decimal.RequireFromString("50.00"),
			})
			Expect(err).To(BeNil())
			Expect(order.ID).NotTo(Equal(uuid.Nil))
			Expect(order.Email).To(Equal("buyer@example.com"))
			Expect(order.RequestID).To(Equal("req-1"))
			Expect(order.WeightLbs).To(Equal(3.5))
			Expect(order.ShippingCost.Equal(decimal.RequireFromString("37"))).To(BeTrue())
			Expect(order.OrderTotal.Equal(decimal.RequireFromString("87"))).To(BeTrue())
			Expect(countOrders(gormdb)).To(Equal(1))

			got, err := srv.GetOrder(context.TODO(), order.ID)
			Expect(err).To(BeNil())
			Expect(got.ZoneLabel).To(Equal("Zone 1 (Local)"))
		})

		It("writes nothing when the code is unknown", func() {
			_, err := srv.PlaceOrder(context.TODO(), service.OrderRequest{
				Email:         "buyer@example.com",
				Country:       "US",
				PostalCode:    "00000",
				ItemsSubtotal: decimal.RequireFromString("10"),
			})
			Expect(errors.Is(err, shipping.ErrPostalCodeNotFound)).To(BeTrue())
			Expect(countOrders(gormdb)).To(Equal(0))
		})

		It("writes nothing when the dataset is unavailable", func() {
			broken := service.NewCheckoutService(s, shipping.NewEstimator(postal.NewCache(&postal.FileSource{Path: "/nonexistent/zip_codes.csv"})))
			_, err := broken.PlaceOrder(context.TODO(), service.OrderRequest{
				Email:         "buyer@example.com",
				Country:       "US",
				PostalCode:    "11501",
				ItemsSubtotal: decimal.RequireFromString("10"),
			})
			Expect(errors.Is(err, shipping.ErrDatasetUnavailable)).To(BeTrue())
			Expect(countOrders(gormdb)).To(Equal(0))
		})

		It("rejects a negative weight", func() {
			_, err := srv.PlaceOrder(context.TODO(), service.OrderRequest{
				Email:         "buyer@example.com",
				Country:       "US",
				PostalCode:    "11501",
				WeightLbs:     -1,
				ItemsSubtotal: decimal.RequireFromString("10"),
			})
			var invalid *service.ErrInvalidRequest
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})
	})

	Context("get and list", func() {
		It("returns ErrResourceNotFound for unknown orders", func() {
			_, err := srv.GetOrder(context.TODO(), uuid.New())
			var notFound *service.ErrResourceNotFound
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("lists orders filtered by postal code", func() {
			for _, code := range []string{"11501", "10001", "11501"} {
				_, err := srv.PlaceOrder(context.TODO(), service.OrderRequest{
					Email:         "buyer@example.com",
					Country:       "US",
					PostalCode:    code,
					ItemsSubtotal: decimal.RequireFromString("10"),
				})
				Expect(err).To(BeNil())
			}

			orders, err := srv.ListOrders(context.TODO(), service.OrderFilter{})
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(3))

			orders, err = srv.ListOrders(context.TODO(), service.OrderFilter{PostalCode: "11501"})
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(2))

			orders, err = srv.ListOrders(context.TODO(), service.OrderFilter{Limit: 1})
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(1))
		})

		It("filters and counts orders by zone", func() {
			for _, code := range []string{"11501", "96813", "11501"} {
				_, err := srv.PlaceOrder(context.TODO(), service.OrderRequest{
					Email:         "buyer@example.com",
					Country:       "US",
					PostalCode:    code,
					ItemsSubtotal: decimal.RequireFromString("10"),
				})
				Expect(err).To(BeNil())
			}

			orders, err := srv.ListOrders(context.TODO(), service.OrderFilter{Zone: "Zone 9 (Extreme Distance)"})
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(1))
			Expect(orders[0].PostalCode).To(Equal("96813"))

			// the count ignores the page size
			count, err := srv.CountOrders(context.TODO(), service.OrderFilter{Zone: "Zone 1 (Local)", Limit: 1})
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(2)))

			count, err = srv.CountOrders(context.TODO(), service.OrderFilter{Zone: "Zone 4 (Regional)"})
			Expect(err).To(BeNil())
			Expect(count).To(BeZero())
		})
	})
})
