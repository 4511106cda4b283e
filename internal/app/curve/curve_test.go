package curve

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPriceIsMonotonic(t *testing.T) {
	c := Default()

	prev := c.Price(0)
	for supply := int64(1); supply <= 1000; supply++ {
		p := c.Price(supply)
		require.Greater(t, p, prev, "price must rise with supply at %d", supply)
		prev = p
	}
}

func TestPriceClampsNegativeSupply(t *testing.T) {
	c := Default()
	require.Equal(t, c.Price(0), c.Price(-5))
}

func TestBuyQuoteAffordability(t *testing.T) {
	c := Default()

	supplies := []int64{0, 100, 777, 4000}
	budgets := []float64{0, 0.005, 0.01, 1, 10, 123.45}

	for _, supply := range supplies {
		for _, funds := range budgets {
			tokens := c.BuyQuote(supply, funds)

			var cost float64
			for i := int64(0); i < tokens; i++ {
				cost += c.Price(supply + i)
			}
			require.LessOrEqual(t, cost, funds, "quote overspends at supply=%d funds=%v", supply, funds)

			if tokens < int64(c.MaxSteps) {
				next := cost + c.Price(supply+tokens)
				require.Greater(t, next, funds, "quote undershoots at supply=%d funds=%v", supply, funds)
			}
		}
	}
}

func TestBuyQuoteExample(t *testing.T) {
	c := Default()
	require.Equal(t, int64(290), c.BuyQuote(100, 10))
}

func TestBuyQuoteHonorsMaxSteps(t *testing.T) {
	c := New(DefaultBasePrice, DefaultSlope, 50)
	require.Equal(t, int64(50), c.BuyQuote(0, 1e9))
}

func TestSellQuoteStopsAtZeroSupply(t *testing.T) {
	c := Default()

	proceeds := c.SellQuote(3, 10)
	want := c.Price(2) + c.Price(1) + c.Price(0)
	require.InDelta(t, want, proceeds, 1e-12)
}

func TestBuySellRoundTrip(t *testing.T) {
	c := Default()

	for _, supply := range []int64{0, 100, 2500} {
		funds := 25.0
		tokens := c.BuyQuote(supply, funds)
		require.Positive(t, tokens)

		var cost float64
		for i := int64(0); i < tokens; i++ {
			cost += c.Price(supply + i)
		}

		proceeds := c.SellQuote(supply+tokens, tokens)
		require.InDelta(t, cost, proceeds, 1e-9, "selling back must return what the buy cost")
	}
}

func TestNewSubstitutesDefaults(t *testing.T) {
	c := New(0, -1, 0)
	require.Equal(t, Default(), c)
}
