package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

/* =========================================================
   Exchange rates

   USD→NGN rate, cached in Redis for an hour. Stale reads and
   last-write-wins are fine; when both the cache and the FX API
   are down we fall back to the configured static rate.
========================================================= */

const (
	rateCacheKey = "usd_to_ngn_rate"
	rateCacheTTL = time.Hour
	rateAPIURL   = "https://api.exchangerate-api.com/v4/latest/USD"
)

// RateSource is what the reconciler and controllers depend on.
type RateSource interface {
	USDToNGN(ctx context.Context) decimal.Decimal
}

type ExchangeRates struct {
	Redis    *redis.Client // optional; nil disables caching
	HTTP     *http.Client
	APIURL   string
	Fallback decimal.Decimal
}

func NewExchangeRates(rdb *redis.Client, fallback float64) *ExchangeRates {
	return &ExchangeRates{
		Redis:    rdb,
		HTTP:     &http.Client{Timeout: 5 * time.Second},
		APIURL:   rateAPIURL,
		Fallback: decimal.NewFromFloat(fallback),
	}
}

func (e *ExchangeRates) USDToNGN(ctx context.Context) decimal.Decimal {
	if e.Redis != nil {
		if cached, err := e.Redis.Get(ctx, rateCacheKey).Result(); err == nil {
			if rate, derr := decimal.NewFromString(cached); derr == nil && rate.IsPositive() {
				return rate
			}
		}
	}

	if rate, err := e.fetch(ctx); err == nil {
		if e.Redis != nil {
			if err := e.Redis.Set(ctx, rateCacheKey, rate.String(), rateCacheTTL).Err(); err != nil {
				log.Printf("⚠️ rate cache write failed: %v", err)
			}
		}
		log.Printf("✅ Fetched live USD→NGN rate: %s", rate)
		return rate
	} else {
		log.Printf("⚠️ FX fetch failed, using fallback rate %s: %v", e.Fallback, err)
	}

	return e.Fallback
}

func (e *ExchangeRates) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.APIURL, nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := e.HTTP.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("fx api status %d", resp.StatusCode)
	}

	var body struct {
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, err
	}
	ngn, ok := body.Rates["NGN"]
	if !ok || ngn <= 0 {
		return decimal.Zero, fmt.Errorf("NGN rate missing from fx response")
	}
	return decimal.NewFromFloat(ngn), nil
}

/* =========================================================
   Amount normalization
========================================================= */

var oneHundred = decimal.NewFromInt(100)

// SubunitToUSD converts a gateway-reported amount in the smallest
// currency subunit (kobo, cents) into ledger USD:
//
//	USD charge:  subunit / 100
//	NGN charge:  (subunit / 100) / usd_to_ngn_rate
func SubunitToUSD(subunit decimal.Decimal, currency string, usdToNGN decimal.Decimal) decimal.Decimal {
	major := subunit.Div(oneHundred)
	if currency == "USD" || usdToNGN.IsZero() {
		return major.Round(2)
	}
	return major.Div(usdToNGN).Round(2)
}

// USDToSubunitNGN converts a USD amount into NGN kobo for a charge.
func USDToSubunitNGN(amountUSD decimal.Decimal, usdToNGN decimal.Decimal) int64 {
	return amountUSD.Mul(usdToNGN).Mul(oneHundred).IntPart()
}
