package service_test

import (
	"context"
	"errors"

	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/service"
	"github.com/thomhuang/shipzone/internal/shipping"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("postal code service", func() {
	var srv *service.PostalCodeService

	BeforeEach(func() {
		srv = service.NewPostalCodeService(postal.NewCache(postal.SampleSource()))
	})

	It("looks up a code", func() {
		record, err := srv.GetPostalCode(context.TODO(), "11501-1234")
		Expect(err).To(BeNil())
		Expect(record.Code).To(Equal("11501"))
		Expect(record.StateCode).To(Equal("NY"))
	})

	It("reports unknown and malformed codes", func() {
		_, err := srv.GetPostalCode(context.TODO(), "00000")
		Expect(errors.Is(err, shipping.ErrPostalCodeNotFound)).To(BeTrue())

		_, err = srv.GetPostalCode(context.TODO(), "0000")
		Expect(errors.Is(err, shipping.ErrInvalidPostalCode)).To(BeTrue())
	})

	It("lists nearby codes closest first", func() {
		neighbors, err := srv.Nearby(context.TODO(), "11501", 30)
		Expect(err).To(BeNil())
		Expect(neighbors).NotTo(BeEmpty())
		Expect(neighbors[0].Code).To(Equal("11501"))
		for i := 1; i < len(neighbors); i++ {
			Expect(neighbors[i].DistanceMiles).To(BeNumerically(">=", neighbors[i-1].DistanceMiles))
		}
	})

	It("rejects radii out of range", func() {
		for _, radius := range []float64{0, -5, service.MaxNearbyRadiusMiles + 1} {
			_, err := srv.Nearby(context.TODO(), "11501", radius)
			var invalid *service.ErrInvalidRequest
			Expect(errors.As(err, &invalid)).To(BeTrue())
		}
	})
})
