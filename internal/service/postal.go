package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/shipping"
)

// MaxNearbyRadiusMiles bounds radius searches served to callers.
const MaxNearbyRadiusMiles = 500.0

// PostalCodeService answers lookups against the loaded postal code table.
type PostalCodeService struct {
	cache *postal.Cache
}

func NewPostalCodeService(cache *postal.Cache) *PostalCodeService {
	return &PostalCodeService{cache: cache}
}

func (p *PostalCodeService) GetPostalCode(ctx context.Context, code string) (*postal.Record, error) {
	key, err := shipping.NormalizePostalCode(code)
	if err != nil {
		return nil, err
	}

	idx, err := p.cache.Index(ctx)
	if err != nil {
		return nil, err
	}

	record, ok := idx.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", shipping.ErrPostalCodeNotFound, key)
	}
	return record, nil
}

// Nearby lists the codes within radiusMiles of code, closest first.
func (p *PostalCodeService) Nearby(ctx context.Context, code string, radiusMiles float64) ([]postal.Neighbor, error) {
	if radiusMiles <= 0 || radiusMiles > MaxNearbyRadiusMiles {
		return nil, NewErrInvalidRequest("radius must be in (0, %v] miles: %v", MaxNearbyRadiusMiles, radiusMiles)
	}

	key, err := shipping.NormalizePostalCode(code)
	if err != nil {
		return nil, err
	}

	idx, err := p.cache.Index(ctx)
	if err != nil {
		return nil, err
	}

	neighbors, err := idx.Within(key, radiusMiles)
	if err != nil {
		if errors.Is(err, postal.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", shipping.ErrPostalCodeNotFound, key)
		}
		return nil, err
	}
	return neighbors, nil
}
