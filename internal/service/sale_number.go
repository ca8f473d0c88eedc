package service

import (
	"fmt"

	nanoid "github.com/jaevor/go-nanoid"
)

// SaleNumberGenerator produces human-readable sale numbers. Uniqueness is not guaranteed;
// the sales table's unique index decides and checkout retries on collision.
type SaleNumberGenerator interface {
	Next() string
}

type saleNumberGenerator struct {
	clock  Clock
	digits func() string
}

// NewSaleNumberGenerator builds SALE-<YYYYMMDD>-<6 random digits> numbers dated by clock
func NewSaleNumberGenerator(clock Clock) (SaleNumberGenerator, error) {
	if clock == nil {
		clock = SystemClock
	}
	digits, err := nanoid.CustomASCII("0123456789", 6)
	if err != nil {
		return nil, fmt.Errorf("failed to build sale number generator: %w", err)
	}
	return &saleNumberGenerator{clock: clock, digits: digits}, nil
}

func (g *saleNumberGenerator) Next() string {
	return fmt.Sprintf("SALE-%s-%s", g.clock().Format("20060102"), g.digits())
}
