package oracle

import (
	"context"
	"fmt"
	"time"

	"moneymarket/core"
	"moneymarket/pkg/resthttp"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// FeedPriceOracle prices pulled from an http ticker feed
//
// Tickers are cached for the configured ttl and concurrent pulls of the same
// asset are coalesced. A ticker older than max age is unavailable.
type FeedPriceOracle struct {
	config  core.PriceOracleConfig
	markets core.IMarketStore
	cache   gcache.Cache
	sf      *singleflight.Group
	now     func() time.Time
}

// NewFeed new feed price oracle
func NewFeed(config core.PriceOracleConfig, markets core.IMarketStore) *FeedPriceOracle {
	return &FeedPriceOracle{
		config:  config,
		markets: markets,
		cache:   gcache.New(256).LRU().Build(),
		sf:      &singleflight.Group{},
		now:     time.Now,
	}
}

// Price ticker price of the market's underlying asset
func (o *FeedPriceOracle) Price(ctx context.Context, marketID string) (decimal.Decimal, error) {
	log := logger.FromContext(ctx).WithField("market", marketID)

	market, err := o.markets.Find(ctx, marketID)
	if err != nil {
		return decimal.Zero, err
	}

	if market.ID == "" {
		return decimal.Zero, core.NewError(core.ErrMarketNotListed).WithMarket(marketID)
	}

	ticker, err := o.ticker(ctx, market.AssetID)
	if err != nil {
		log.WithError(err).Errorln("pull price ticker")
		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID).WithReason("%v", err)
	}

	if !ticker.Price.IsPositive() {
		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID).WithReason("invalid price %s", ticker.Price)
	}

	if maxAge := o.config.MaxAge; maxAge > 0 && o.now().Sub(ticker.Timestamp) > maxAge {
		return decimal.Zero, core.NewError(core.ErrPriceUnavailable).WithMarket(marketID).WithReason("stale ticker at %s", ticker.Timestamp.Format(time.RFC3339))
	}

	return ticker.Price, nil
}

func (o *FeedPriceOracle) ticker(ctx context.Context, assetID string) (*core.PriceTicker, error) {
	key := o.tickerKey(assetID)
	if v, err := o.cache.Get(key); err == nil {
		if ticker, ok := v.(*core.PriceTicker); ok {
			return ticker, nil
		}
	}

	v, err, _ := o.sf.Do(key, func() (interface{}, error) {
		ticker, err := o.PullPriceTicker(ctx, assetID)
		if err != nil {
			return nil, err
		}

		_ = o.cache.SetWithExpire(key, ticker, o.config.CacheTTL)
		return ticker, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*core.PriceTicker), nil
}

// PullPriceTicker pull price ticker
func (o *FeedPriceOracle) PullPriceTicker(ctx context.Context, assetID string) (*core.PriceTicker, error) {
	url := fmt.Sprintf("%s/api/v2/tickers/%s", o.config.EndPoint, assetID)
	logger.FromContext(ctx).Debugln("pull price:", url)

	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return nil, err
	}

	var ticker core.PriceTicker
	if err := resthttp.ParseResponse(resp, &ticker); err != nil {
		return nil, err
	}

	return &ticker, nil
}

func (o *FeedPriceOracle) tickerKey(assetID string) string {
	return fmt.Sprintf("ticker:asset:%s", assetID)
}
