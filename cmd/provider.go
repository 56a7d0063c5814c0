package cmd

import (
	"context"

	"moneymarket/config"
	"moneymarket/core"
	"moneymarket/engine"
	"moneymarket/service/account"
	"moneymarket/service/block"
	"moneymarket/service/comptroller"
	"moneymarket/service/ledger"
	marketservice "moneymarket/service/market"
	"moneymarket/service/oracle"
	"moneymarket/store/borrow"
	"moneymarket/store/event"
	"moneymarket/store/market"
	"moneymarket/store/membership"
	"moneymarket/store/supply"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
)

const comptrollerID = "unitroller"

func provideConfig() *core.Config {
	return &cfg
}

func provideDatabase() *db.DB {
	return db.MustOpen(cfg.DB)
}

// ---------------store-----------------------------------------

func provideEventStore(database *db.DB) core.EventStore {
	return event.New(database)
}

// ------------------service------------------------------------

func provideBlockService() core.IBlockService {
	return block.New(provideConfig())
}

// providePriceOracle the http feed when an end point is configured, otherwise
// a settable oracle seeded with the configured prices
func providePriceOracle(ctx context.Context, markets core.IMarketStore) core.PriceOracle {
	if cfg.PriceOracle.EndPoint != "" {
		return oracle.NewFeed(cfg.PriceOracle, markets)
	}

	simple := oracle.NewSimple()
	for _, m := range cfg.Markets {
		if m.Price.IsPositive() {
			if _, err := simple.SetUnderlyingPrice(ctx, m.ID, m.Price); err != nil {
				panic(err)
			}
		}
	}

	return simple
}

func provideRiskParams() core.RiskParams {
	return core.RiskParams{
		CloseFactor:          cfg.Risk.CloseFactor,
		LiquidationIncentive: cfg.Risk.LiquidationIncentive,
		ProtocolSeizeShare:   cfg.Risk.ProtocolSeizeShare,
	}
}

func provideLedger() *ledger.Ledger {
	return ledger.New(cfg.App.Custody)
}

// provideEngine wire the engine and list the configured markets, markets
// already stored keep their state
func provideEngine(ctx context.Context, database *db.DB, events core.EventStore, tokenLedger core.TokenLedger) *engine.Engine {
	marketStore := market.New(database)
	supplyStore := supply.New(database)
	borrowStore := borrow.New(database)
	membershipStore := membership.New(database)

	blockService := provideBlockService()
	ctr := comptroller.New(
		comptrollerID,
		provideRiskParams(),
		providePriceOracle(ctx, marketStore),
		marketStore,
		supplyStore,
		borrowStore,
		membershipStore,
	)

	e := engine.New(
		database,
		marketStore,
		borrowStore,
		marketservice.New(marketStore, supplyStore, borrowStore, blockService),
		ctr,
		account.New(marketStore, supplyStore, borrowStore, membershipStore, ctr),
		tokenLedger,
		blockService,
		events,
	)

	log := logger.FromContext(ctx)
	for _, m := range cfg.Markets {
		if _, err := e.ListMarket(ctx, config.MarketFromConfig(m)); err != nil {
			log.WithError(err).WithField("market", m.ID).Panicln("ListMarket")
		}
	}

	return e
}
