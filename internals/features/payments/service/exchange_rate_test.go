package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSubunitToUSDForNGNCharge(t *testing.T) {
	// 1,500,000 kobo = ₦15,000; at 1500 NGN/USD that is $10.00.
	got := SubunitToUSD(decimal.NewFromInt(1_500_000), "NGN", decimal.NewFromInt(1500))
	if !got.Equal(decimal.RequireFromString("10.00")) {
		t.Errorf("got %s, want 10.00", got)
	}
}

func TestSubunitToUSDForUSDCharge(t *testing.T) {
	// 1500 cents = $15.00; the rate must be ignored.
	got := SubunitToUSD(decimal.NewFromInt(1500), "USD", decimal.NewFromInt(1500))
	if !got.Equal(decimal.RequireFromString("15.00")) {
		t.Errorf("got %s, want 15.00", got)
	}
}

func TestSubunitToUSDZeroRateFallsBackToMajorUnits(t *testing.T) {
	got := SubunitToUSD(decimal.NewFromInt(2500), "NGN", decimal.Zero)
	if !got.Equal(decimal.RequireFromString("25.00")) {
		t.Errorf("got %s, want 25.00", got)
	}
}

func TestSubunitToUSDRounds(t *testing.T) {
	// ₦100.00 at 1499 NGN/USD is 0.0667... USD, rounded to cents.
	got := SubunitToUSD(decimal.NewFromInt(10_000), "NGN", decimal.NewFromInt(1499))
	if !got.Equal(decimal.RequireFromString("0.07")) {
		t.Errorf("got %s, want 0.07", got)
	}
}

func TestUSDToSubunitNGN(t *testing.T) {
	// $50 at 1500 NGN/USD = ₦75,000 = 7,500,000 kobo.
	got := USDToSubunitNGN(decimal.NewFromInt(50), decimal.NewFromInt(1500))
	if got != 7_500_000 {
		t.Errorf("got %d, want 7500000", got)
	}
}

func TestUSDRoundTripThroughNGN(t *testing.T) {
	rate := decimal.NewFromInt(1500)
	usd := decimal.RequireFromString("120.00")
	subunit := USDToSubunitNGN(usd, rate)
	back := SubunitToUSD(decimal.NewFromInt(subunit), "NGN", rate)
	if !back.Equal(usd) {
		t.Errorf("round trip %s -> %d kobo -> %s", usd, subunit, back)
	}
}
