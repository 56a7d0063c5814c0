package account

import (
	"context"

	"moneymarket/core"
	"moneymarket/pkg/compound"

	"github.com/fox-one/pkg/logger"
	"github.com/shopspring/decimal"
)

type accountService struct {
	marketStore core.IMarketStore
	supplyStore core.ISupplyStore
	borrowStore core.IBorrowStore
	memberships core.IMembershipStore
	comptroller core.IComptroller
}

// New new account service
func New(
	marketStore core.IMarketStore,
	supplyStore core.ISupplyStore,
	borrowStore core.IBorrowStore,
	memberships core.IMembershipStore,
	comptroller core.IComptroller,
) core.IAccountService {
	return &accountService{
		marketStore: marketStore,
		supplyStore: supplyStore,
		borrowStore: borrowStore,
		memberships: memberships,
		comptroller: comptroller,
	}
}

// Find positions and liquidity of the account, markets it never touched are omitted
func (s *accountService) Find(ctx context.Context, userID string) (*core.Account, error) {
	entered, err := s.memberships.Markets(ctx, userID)
	if err != nil {
		return nil, err
	}

	supplies, err := s.supplyStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	borrows, err := s.borrowStore.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	markets, err := s.marketStore.All(ctx)
	if err != nil {
		return nil, err
	}

	isEntered := make(map[string]bool, len(entered))
	for _, id := range entered {
		isEntered[id] = true
	}

	supplyOf := make(map[string]*core.Supply, len(supplies))
	for _, supply := range supplies {
		supplyOf[supply.MarketID] = supply
	}

	borrowOf := make(map[string]*core.Borrow, len(borrows))
	for _, borrow := range borrows {
		borrowOf[borrow.MarketID] = borrow
	}

	account := &core.Account{
		UserID:  userID,
		Markets: entered,
	}

	for _, market := range markets {
		supply, hasSupply := supplyOf[market.ID]
		borrow, hasBorrow := borrowOf[market.ID]
		if !hasSupply && !hasBorrow && !isEntered[market.ID] {
			continue
		}

		exchangeRate := compound.CurExchangeRate(market)
		position := &core.Position{
			MarketID:           market.ID,
			Entered:            isEntered[market.ID],
			CTokens:            decimal.Zero,
			ExchangeRate:       exchangeRate,
			UnderlyingBalance:  decimal.Zero,
			BorrowPrincipal:    decimal.Zero,
			BorrowIndex:        decimal.Zero,
			BorrowBalance:      decimal.Zero,
			CollateralFactor:   market.CollateralFactor,
			MarketBorrowIndex:  market.BorrowIndex,
			MarketAccrualBlock: market.BlockNumber,
		}

		if hasSupply {
			position.CTokens = supply.CTokens
			position.UnderlyingBalance = compound.Mul(supply.CTokens, exchangeRate)
		}

		if hasBorrow {
			position.BorrowPrincipal = borrow.Principal
			position.BorrowIndex = borrow.InterestIndex
			position.BorrowBalance = compound.BorrowBalance(borrow, market)
		}

		account.Positions = append(account.Positions, position)
	}

	liquidity, err := s.comptroller.AccountLiquidity(ctx, userID)
	if err != nil {
		return nil, err
	}

	account.Liquidity = *liquidity
	return account, nil
}

// ShortfallAccounts accounts with a positive shortfall, accounts whose liquidity
// cannot be priced are skipped
func (s *accountService) ShortfallAccounts(ctx context.Context) ([]*core.Account, error) {
	log := logger.FromContext(ctx)

	users, err := s.borrowStore.Users(ctx)
	if err != nil {
		return nil, err
	}

	accounts := make([]*core.Account, 0)
	for _, u := range users {
		liquidity, err := s.comptroller.AccountLiquidity(ctx, u)
		if err != nil {
			log.WithError(err).WithField("account", u).Infoln("skip account")
			continue
		}

		if !liquidity.Shortfall.IsPositive() {
			continue
		}

		account, err := s.Find(ctx, u)
		if err != nil {
			log.WithError(err).WithField("account", u).Infoln("skip account")
			continue
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}
