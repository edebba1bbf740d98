package store_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/thomhuang/shipzone/internal/config"
	st "github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/internal/store/model"
	"github.com/thomhuang/shipzone/pkg/migrations"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"
)

func newOrder(postalCode string, total string) model.Order {
	return model.Order{
		Email:         "buyer@example.com",
		Country:       "US",
		PostalCode:    postalCode,
		ItemsSubtotal: decimal.RequireFromString("50.00"),
		ShippingCost:  decimal.RequireFromString(total),
		ZoneLabel:     "Zone 1 (Local)",
		OrderTotal:    decimal.RequireFromString(total).Add(decimal.RequireFromString("50.00")),
	}
}

var _ = Describe("order store", Ordered, func() {
	var (
		store  st.Store
		gormDB *gorm.DB
	)

	BeforeAll(func() {
		cfg, err := config.Load()
		Expect(err).To(BeNil())
		cfg.Database.Type = "sqlite"
		cfg.Database.Name = ":memory:"

		db, err := st.InitDB(cfg)
		Expect(err).To(BeNil())
		Expect(migrations.MigrateStore(db, cfg)).To(Succeed())
		gormDB = db

		store = st.NewStore(db)
		Expect(store).ToNot(BeNil())
	})

	AfterAll(func() {
		store.Close()
	})

	AfterEach(func() {
		gormDB.Exec("DELETE FROM orders;")
	})

	Context("create", func() {
		It("assigns an id and keeps the amounts", func() {
			order, err := store.Order().Create(context.TODO(), newOrder("11501", "37.00"))
			Expect(err).To(BeNil())
			Expect(order.ID).NotTo(Equal(uuid.Nil))

			got, err := store.Order().Get(context.TODO(), order.ID)
			Expect(err).To(BeNil())
			Expect(got.PostalCode).To(Equal("11501"))
			Expect(got.ShippingCost.Equal(decimal.RequireFromString("37.00"))).To(BeTrue())
			Expect(got.OrderTotal.Equal(decimal.RequireFromString("87.00"))).To(BeTrue())
			Expect(got.CreatedAt).NotTo(BeZero())
		})

		It("refuses a duplicate id", func() {
			o := newOrder("11501", "37.00")
			o.ID = uuid.New()
			_, err := store.Order().Create(context.TODO(), o)
			Expect(err).To(BeNil())

			_, err = store.Order().Create(context.TODO(), o)
			Expect(err).NotTo(BeNil())
		})
	})

	Context("get", func() {
		It("returns ErrRecordNotFound for unknown ids", func() {
			_, err := store.Order().Get(context.TODO(), uuid.New())
			Expect(err).To(MatchError(st.ErrRecordNotFound))
		})
	})

	Context("list", func() {
		BeforeEach(func() {
			for _, code := range []string{"11501", "10001", "11501"} {
				_, err := store.Order().Create(context.TODO(), newOrder(code, "40.00"))
				Expect(err).To(BeNil())
				// created_at ordering needs distinct timestamps
				time.Sleep(5 * time.Millisecond)
			}
		})

		It("lists every order", func() {
			orders, err := store.Order().List(context.TODO(), st.NewOrderQueryFilter(), st.NewOrderQueryOptions())
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(3))
		})

		It("filters by postal code", func() {
			orders, err := store.Order().List(context.TODO(), st.NewOrderQueryFilter().ByPostalCode("11501"), nil)
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(2))

			count, err := store.Order().Count(context.TODO(), st.NewOrderQueryFilter().ByPostalCode("10001"))
			Expect(err).To(BeNil())
			Expect(count).To(Equal(int64(1)))
		})

		It("sorts newest first and limits", func() {
			orders, err := store.Order().List(context.TODO(), nil, st.NewOrderQueryOptions().WithSortOrder(st.SortByNewest).WithLimit(1))
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(1))
			Expect(orders[0].PostalCode).To(Equal("11501"))
		})
	})

	Context("transaction", func() {
		It("commits an order", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = store.Order().Create(ctx, newOrder("11501", "37.00"))
			Expect(err).To(BeNil())

			_, err = st.Commit(ctx)
			Expect(err).To(BeNil())

			// the finished transaction cannot be committed or rolled back again
			_, err = st.Commit(ctx)
			Expect(err).NotTo(BeNil())
			_, err = st.Rollback(ctx)
			Expect(err).NotTo(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from orders;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(1))
		})

		It("rolls an order back", func() {
			ctx, err := store.NewTransactionContext(context.TODO())
			Expect(err).To(BeNil())

			_, err = store.Order().Create(ctx, newOrder("11501", "37.00"))
			Expect(err).To(BeNil())

			// visible inside the transaction
			orders, err := store.Order().List(ctx, st.NewOrderQueryFilter(), nil)
			Expect(err).To(BeNil())
			Expect(orders).To(HaveLen(1))

			_, err = st.Rollback(ctx)
			Expect(err).To(BeNil())

			count := 0
			err = gormDB.Raw("SELECT COUNT(*) from orders;").Scan(&count).Error
			Expect(err).To(BeNil())
			Expect(count).To(Equal(0))
		})
	})
})
