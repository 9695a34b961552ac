package geo_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/lucaprinsss/Participium-sub003/internal/geo"
	"github.com/lucaprinsss/Participium-sub003/internal/model"
)

type fakeGeocoder struct {
	forwardFn    func(ctx context.Context, query string) (geo.Place, error)
	reverseFn    func(ctx context.Context, loc model.Location) (geo.Place, error)
	forwardCalls int
	reverseCalls int
}

func (f *fakeGeocoder) Forward(ctx context.Context, query string) (geo.Place, error) {
	f.forwardCalls++
	if f.forwardFn != nil {
		return f.forwardFn(ctx, query)
	}
	return geo.Place{}, geo.ErrNoResults
}

func (f *fakeGeocoder) Reverse(ctx context.Context, loc model.Location) (geo.Place, error) {
	f.reverseCalls++
	if f.reverseFn != nil {
		return f.reverseFn(ctx, loc)
	}
	return geo.Place{Location: loc, Address: "Piazza Castello, Torino"}, nil
}

var _ = Describe("Resolver", func() {
	var (
		ctx      context.Context
		geocoder *fakeGeocoder
		resolver *geo.Resolver
		milan    = model.Location{Latitude: 45.4642, Longitude: 9.19}
	)

	BeforeEach(func() {
		ctx = context.Background()
		geocoder = &fakeGeocoder{}
		boundary, err := geo.DefaultBoundary()
		Expect(err).NotTo(HaveOccurred())
		resolver = geo.NewResolver(geocoder, boundary)
	})

	Describe("ResolvePin", func() {
		It("accepts a pin inside the city and attaches the reverse geocoded address", func() {
			place, err := resolver.ResolvePin(ctx, model.Location{Latitude: 45.0703, Longitude: 7.6869})
			Expect(err).NotTo(HaveOccurred())
			Expect(place.Location).To(Equal(model.Location{Latitude: 45.0703, Longitude: 7.6869}))
			Expect(place.Address).To(Equal("Piazza Castello, Torino"))
		})

		It("keeps the pin when reverse geocoding fails", func() {
			geocoder.reverseFn = func(context.Context, model.Location) (geo.Place, error) {
				return geo.Place{}, errors.New("timeout")
			}
			place, err := resolver.ResolvePin(ctx, model.Location{Latitude: 45.0703, Longitude: 7.6869})
			Expect(err).NotTo(HaveOccurred())
			Expect(place.Address).To(BeEmpty())
		})

		It("rejects pins outside the boundary without geocoding", func() {
			_, err := resolver.ResolvePin(ctx, milan)
			Expect(err).To(MatchError(geo.ErrOutsideBoundary))
			Expect(geocoder.reverseCalls).To(Equal(0))
		})
	})

	Describe("ResolveText", func() {
		It("parses coordinates without forward geocoding", func() {
			place, err := resolver.ResolveText(ctx, "45.0703, 7.6869")
			Expect(err).NotTo(HaveOccurred())
			Expect(place.Location.Latitude).To(Equal(45.0703))
			Expect(place.Location.Longitude).To(Equal(7.6869))
			Expect(geocoder.forwardCalls).To(Equal(0))
		})

		It("forward geocodes addresses", func() {
			geocoder.forwardFn = func(_ context.Context, query string) (geo.Place, error) {
				Expect(query).To(Equal("Via Roma 1"))
				return geo.Place{Location: model.Location{Latitude: 45.068, Longitude: 7.683}, Address: "Via Roma 1, Torino"}, nil
			}
			place, err := resolver.ResolveText(ctx, "Via Roma 1")
			Expect(err).NotTo(HaveOccurred())
			Expect(place.Address).To(Equal("Via Roma 1, Torino"))
		})

		It("geocodes numeric addresses instead of reading them as coordinates", func() {
			geocoder.forwardFn = func(_ context.Context, query string) (geo.Place, error) {
				Expect(query).To(Equal("10 20"))
				return geo.Place{Location: model.Location{Latitude: 45.068, Longitude: 7.683}, Address: "Corso 10 20, Torino"}, nil
			}
			place, err := resolver.ResolveText(ctx, "10 20")
			Expect(err).NotTo(HaveOccurred())
			Expect(geocoder.forwardCalls).To(Equal(1))
			Expect(place.Address).To(Equal("Corso 10 20, Torino"))
		})

		It("rejects out-of-range coordinates without geocoding", func() {
			_, err := resolver.ResolveText(ctx, "145.0, 7.0")
			Expect(err).To(MatchError(geo.ErrCoordinatesOutOfRange))
			Expect(geocoder.forwardCalls).To(Equal(0))
		})

		It("passes through no-results", func() {
			_, err := resolver.ResolveText(ctx, "Nowhere street")
			Expect(err).To(MatchError(geo.ErrNoResults))
		})

		It("wraps geocoder failures", func() {
			geocoder.forwardFn = func(context.Context, string) (geo.Place, error) {
				return geo.Place{}, context.DeadlineExceeded
			}
			_, err := resolver.ResolveText(ctx, "Via Roma 1")
			Expect(err).To(MatchError(context.DeadlineExceeded))
			Expect(err).NotTo(MatchError(geo.ErrOutsideBoundary))
		})

		It("rejects outside locations the same way for coordinates and addresses", func() {
			geocoder.forwardFn = func(context.Context, string) (geo.Place, error) {
				return geo.Place{Location: milan, Address: "Piazza del Duomo, Milano"}, nil
			}

			_, pinErr := resolver.ResolvePin(ctx, milan)
			_, coordErr := resolver.ResolveText(ctx, "45.4642, 9.19")
			_, addrErr := resolver.ResolveText(ctx, "Piazza del Duomo, Milano")

			Expect(pinErr).To(MatchError(geo.ErrOutsideBoundary))
			Expect(coordErr).To(MatchError(geo.ErrOutsideBoundary))
			Expect(addrErr).To(MatchError(geo.ErrOutsideBoundary))
		})
	})
})
