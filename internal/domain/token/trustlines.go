package token

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/zinefold/zinefold-api/internal/pkg/xrpl"
)

// trustLineCacheTTL bounds how long a verified line is trusted without
// re-reading the ledger.
const trustLineCacheTTL = 10 * time.Minute

// LinesLedger is the slice of the XRPL client trust-line checks use.
type LinesLedger interface {
	AccountLines(ctx context.Context, account string) ([]xrpl.Line, error)
	SubmitTrustSet(ctx context.Context, holderSeed string, limit xrpl.Amount) (*xrpl.SubmitResult, error)
}

// TrustLines answers "does this holder accept this asset" against the
// ledger, with a cache in front because the answer only ever flips from
// no to yes here. Only positive answers are cached.
type TrustLines struct {
	ledger LinesLedger
	cache  *redis.Client
}

func NewTrustLines(ledger LinesLedger, cache *redis.Client) *TrustLines {
	return &TrustLines{ledger: ledger, cache: cache}
}

func cacheKey(holder, issuer, currency string) string {
	return fmt.Sprintf("trustline:%s:%s:%s", holder, issuer, currency)
}

// Check reports whether the holder has a trust line to the issuer for the
// asset with a positive limit.
func (t *TrustLines) Check(ctx context.Context, holderAddress, issuerAddress, assetCode string) (bool, error) {
	currency, err := xrpl.CurrencyCode(assetCode)
	if err != nil {
		return false, err
	}

	key := cacheKey(holderAddress, issuerAddress, currency)
	if t.cache != nil {
		if val, err := t.cache.Get(ctx, key).Result(); err == nil && val == "1" {
			return true, nil
		}
	}

	lines, err := t.ledger.AccountLines(ctx, holderAddress)
	if err != nil {
		return false, err
	}

	for _, line := range lines {
		if line.Account != issuerAddress || line.Currency != currency {
			continue
		}
		limit, err := decimal.NewFromString(line.Limit)
		if err != nil || !limit.IsPositive() {
			continue
		}
		t.cachePositive(ctx, key)
		return true, nil
	}
	return false, nil
}

// Establish submits a TrustSet signed by the holder and returns the
// transaction hash.
func (t *TrustLines) Establish(ctx context.Context, holderSeed, issuerAddress, assetCode string, limit int64) (string, error) {
	currency, err := xrpl.CurrencyCode(assetCode)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTrustLineFailed, err)
	}

	res, err := t.ledger.SubmitTrustSet(ctx, holderSeed, xrpl.NewAmount(currency, issuerAddress, decimal.NewFromInt(limit)))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTrustLineFailed, err)
	}
	if !res.Applied() {
		return "", fmt.Errorf("%w: %s", ErrTrustLineFailed, res.EngineResult)
	}

	if holder, derr := xrpl.DeriveAddress(holderSeed); derr == nil {
		t.cachePositive(ctx, cacheKey(holder, issuerAddress, currency))
	}
	return res.TxJSON.Hash, nil
}

// cachePositive is best effort; a cache write failure only costs a future
// ledger round-trip.
func (t *TrustLines) cachePositive(ctx context.Context, key string) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Set(ctx, key, "1", trustLineCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("trust line cache write failed")
	}
}
