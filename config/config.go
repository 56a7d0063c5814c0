package config

import (
	"fmt"
	"time"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
	"github.com/shopspring/decimal"
)

func init() {
	govalidator.TagMap["port_range"] = func(str string) bool {
		return govalidator.IsPort(str)
	}
}

// Load load config file
func Load(configFile string, config *core.Config) error {
	configUtil.AutomaticLoadEnv("MONEYMARKET")
	if err := configUtil.LoadYaml(configFile, config); err != nil {
		return err
	}

	defaultConfig(config)
	return Validate(config)
}

// Validate check config values
func Validate(config *core.Config) error {
	if _, err := govalidator.ValidateStruct(config); err != nil {
		return err
	}

	risk := config.Risk
	if !compound.ValidCloseFactor(risk.CloseFactor) {
		return fmt.Errorf("risk.close_factor %s out of (0, 1]", risk.CloseFactor)
	}

	if !compound.ValidLiquidationIncentive(risk.LiquidationIncentive) {
		return fmt.Errorf("risk.liquidation_incentive %s less than 1", risk.LiquidationIncentive)
	}

	if !compound.ValidProtocolSeizeShare(risk.ProtocolSeizeShare) {
		return fmt.Errorf("risk.protocol_seize_share %s out of [0, 1)", risk.ProtocolSeizeShare)
	}

	ids := make(map[string]bool, len(config.Markets))
	for _, m := range config.Markets {
		if ids[m.ID] {
			return fmt.Errorf("duplicated market %s", m.ID)
		}
		ids[m.ID] = true

		if !compound.ValidCollateralFactor(m.CollateralFactor) {
			return fmt.Errorf("market %s: collateral_factor %s out of [0, 1)", m.ID, m.CollateralFactor)
		}

		if !compound.ValidReserveFactor(m.ReserveFactor) {
			return fmt.Errorf("market %s: reserve_factor %s out of [0, 1)", m.ID, m.ReserveFactor)
		}

		if !compound.ValidInterestRateModel(m.BaseRate, m.Multiplier, m.JumpMultiplier, m.Kink) {
			return fmt.Errorf("market %s: invalid interest rate model", m.ID)
		}

		if !m.InitExchangeRate.IsPositive() {
			return fmt.Errorf("market %s: init_exchange_rate must be positive", m.ID)
		}
	}

	return nil
}

func defaultConfig(config *core.Config) {
	if config.App.SecondsPerBlock <= 0 {
		config.App.SecondsPerBlock = compound.SecondsPerBlock
	}

	if config.Risk.CloseFactor.IsZero() {
		config.Risk.CloseFactor = compound.DefaultCloseFactor
	}

	if config.Risk.LiquidationIncentive.IsZero() {
		config.Risk.LiquidationIncentive = compound.DefaultLiquidationIncentive
	}

	if config.Risk.ProtocolSeizeShare.IsZero() {
		config.Risk.ProtocolSeizeShare = compound.DefaultProtocolSeizeShare
	}

	for i := range config.Markets {
		if config.Markets[i].InitExchangeRate.IsZero() {
			config.Markets[i].InitExchangeRate = compound.DefaultInitExchangeRate
		}
	}

	if config.PriceOracle.CacheTTL <= 0 {
		config.PriceOracle.CacheTTL = 10 * time.Second
	}

	if config.Server.Port == 0 {
		config.Server.Port = 7778
	}

	if config.Monitor.Interval <= 0 {
		config.Monitor.Interval = time.Minute
	}
}

// MarketFromConfig unlisted market built from config, listing stamps the controller and checkpoint
func MarketFromConfig(m core.MarketConfig) *core.Market {
	return &core.Market{
		ID:               m.ID,
		AssetID:          m.AssetID,
		Symbol:           m.Symbol,
		InitExchangeRate: m.InitExchangeRate,
		ReserveFactor:    m.ReserveFactor,
		CollateralFactor: m.CollateralFactor,
		BorrowCap:        m.BorrowCap,
		BaseRate:         m.BaseRate,
		Multiplier:       m.Multiplier,
		JumpMultiplier:   m.JumpMultiplier,
		Kink:             m.Kink,
		TotalCash:        decimal.Zero,
		TotalBorrows:     decimal.Zero,
		Reserves:         decimal.Zero,
		CTokens:          decimal.Zero,
		BorrowIndex:      decimal.New(1, 0),
	}
}
