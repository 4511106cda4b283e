// Package curve implements the linear bonding curve that prices project
// tokens. The price of the next token is basePrice + slope*supply, so every
// minted token raises the price of the one after it.
package curve

// Defaults used when a curve parameter is left unset.
const (
	DefaultBasePrice = 0.01
	DefaultSlope     = 0.0001
	DefaultMaxSteps  = 5000
)

// Curve prices tokens along price(supply) = BasePrice + Slope*supply.
// MaxSteps bounds the per-call walk of BuyQuote so a huge budget cannot
// spin the quote loop unbounded.
type Curve struct {
	BasePrice float64
	Slope     float64
	MaxSteps  int
}

// New creates a curve, substituting defaults for non-positive parameters.
func New(basePrice, slope float64, maxSteps int) Curve {
	c := Curve{BasePrice: basePrice, Slope: slope, MaxSteps: maxSteps}
	if c.BasePrice <= 0 {
		c.BasePrice = DefaultBasePrice
	}
	if c.Slope <= 0 {
		c.Slope = DefaultSlope
	}
	if c.MaxSteps <= 0 {
		c.MaxSteps = DefaultMaxSteps
	}
	return c
}

// Default returns the stock launchpad curve.
func Default() Curve {
	return New(DefaultBasePrice, DefaultSlope, DefaultMaxSteps)
}

// Price returns the cost of the next token at the given supply.
func (c Curve) Price(supply int64) float64 {
	if supply < 0 {
		supply = 0
	}
	return c.BasePrice + c.Slope*float64(supply)
}

// BuyQuote walks the curve one token at a time and returns how many whole
// tokens the funds afford starting at supply. Change smaller than the next
// token's price is not refunded. The walk stops at MaxSteps.
func (c Curve) BuyQuote(supply int64, funds float64) int64 {
	var tokens int64
	remaining := funds
	for tokens < int64(c.MaxSteps) {
		price := c.Price(supply + tokens)
		if remaining < price {
			break
		}
		remaining -= price
		tokens++
	}
	return tokens
}

// SellQuote walks the curve backward from supply-1 and returns the proceeds
// of burning tokens. Under a linear curve this is the exact inverse of the
// buy walk. The walk stops at zero supply or at MaxSteps even if tokens
// remain.
func (c Curve) SellQuote(supply, tokens int64) float64 {
	if tokens > int64(c.MaxSteps) {
		tokens = int64(c.MaxSteps)
	}
	var proceeds float64
	for i := int64(0); i < tokens; i++ {
		at := supply - 1 - i
		if at < 0 {
			break
		}
		proceeds += c.Price(at)
	}
	return proceeds
}
