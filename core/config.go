package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
)

// Config moneymarket config
type Config struct {
	App         App               `json:"app"`
	DB          db.Config         `json:"db"`
	Risk        Risk              `json:"risk"`
	Markets     []MarketConfig    `json:"markets" valid:"required"`
	PriceOracle PriceOracleConfig `json:"price_oracle"`
	Server      Server            `json:"server"`
	Monitor     Monitor           `json:"monitor"`
}

// App app config
type App struct {
	// unix seconds of block 0
	Genesis         int64 `json:"genesis"`
	SecondsPerBlock int64 `json:"seconds_per_block"`
	// account holding the engine's underlying cash on the token ledger
	Custody string `json:"custody" valid:"required"`
}

// Risk global risk parameters
type Risk struct {
	CloseFactor          decimal.Decimal `json:"close_factor"`
	LiquidationIncentive decimal.Decimal `json:"liquidation_incentive"`
	ProtocolSeizeShare   decimal.Decimal `json:"protocol_seize_share"`
}

// MarketConfig market listed at startup
type MarketConfig struct {
	ID               string          `json:"id" valid:"required"`
	AssetID          string          `json:"asset_id" valid:"required"`
	Symbol           string          `json:"symbol" valid:"required"`
	InitExchangeRate decimal.Decimal `json:"init_exchange_rate"`
	ReserveFactor    decimal.Decimal `json:"reserve_factor"`
	CollateralFactor decimal.Decimal `json:"collateral_factor"`
	BorrowCap        decimal.Decimal `json:"borrow_cap"`
	BaseRate         decimal.Decimal `json:"base_rate"`
	Multiplier       decimal.Decimal `json:"multiplier"`
	JumpMultiplier   decimal.Decimal `json:"jump_multiplier"`
	Kink             decimal.Decimal `json:"kink"`
	// fixed price used when no price feed is configured
	Price decimal.Decimal `json:"price"`
}

// PriceOracleConfig price feed config
type PriceOracleConfig struct {
	EndPoint string        `json:"end_point" valid:"url,optional"`
	CacheTTL time.Duration `json:"cache_ttl"`
	// tickers older than this are rejected, zero disables the check
	MaxAge time.Duration `json:"max_age"`
}

// Server rest server config
type Server struct {
	Port int `json:"port" valid:"port_range"`
	// bearer token of the admin api, empty disables it
	AdminToken string `json:"admin_token"`
	// serve POST /admin/deposits crediting the in-process ledger
	Faucet bool `json:"faucet"`
}

// Monitor health monitor config
type Monitor struct {
	Interval time.Duration `json:"interval"`
}
