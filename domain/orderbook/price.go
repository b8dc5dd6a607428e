package orderbook

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Price is a fixed-point amount with two fractional digits, stored as a
// tick count (1 tick = 0.01). The zero value is the market-order sentinel.
type Price int64

const PriceScale = 100

// MarketPrice marks an order with no limit price.
const MarketPrice Price = 0

var errBadPrice = errors.New("orderbook: malformed price")

func (p Price) IsMarket() bool { return p == MarketPrice }

func (p Price) String() string {
	return fmt.Sprintf("%d.%02d", int64(p)/PriceScale, int64(p)%PriceScale)
}

// ParsePrice parses a decimal string with at most two fractional digits.
// "0" parses to the market sentinel.
func ParsePrice(s string) (Price, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units < 0 {
		return 0, errBadPrice
	}
	cents := int64(0)
	if frac != "" {
		if len(frac) > 2 {
			return 0, errBadPrice
		}
		cents, err = strconv.ParseInt(frac, 10, 64)
		if err != nil || cents < 0 {
			return 0, errBadPrice
		}
		if len(frac) == 1 {
			cents *= 10
		}
	}
	return Price(units*PriceScale + cents), nil
}
