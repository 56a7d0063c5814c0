package supply

import (
	"context"

	"moneymarket/core"
	"moneymarket/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type supplyStore struct {
	db *db.DB
}

// New new supply store
func New(db *db.DB) core.ISupplyStore {
	return &supplyStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Supply{})
		if err := tx.AutoMigrate(core.Supply{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_supplies_market", "market_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *supplyStore) Save(ctx context.Context, supply *core.Supply) error {
	tx := store.DB(ctx, s.db).Update()

	// positions handed out by Find before the first save carry no id
	if supply.ID == 0 {
		var prev core.Supply
		err := tx.Where("user_id = ? AND market_id = ?", supply.UserID, supply.MarketID).First(&prev).Error
		if err == nil {
			supply.ID = prev.ID
			supply.CreatedAt = prev.CreatedAt
		} else if !gorm.IsRecordNotFoundError(err) {
			return err
		}
	}

	supply.Version++
	if err := tx.Save(supply).Error; err != nil {
		supply.Version--
		return err
	}

	return nil
}

func (s *supplyStore) Find(ctx context.Context, userID, marketID string) (*core.Supply, error) {
	var supply core.Supply
	if err := store.DB(ctx, s.db).View().Where("user_id = ? AND market_id = ?", userID, marketID).First(&supply).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Supply{
				UserID:   userID,
				MarketID: marketID,
				CTokens:  decimal.Zero,
			}, nil
		}

		return nil, err
	}

	return &supply, nil
}

func (s *supplyStore) FindByUser(ctx context.Context, userID string) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := store.DB(ctx, s.db).View().Where("user_id = ?", userID).Order("id").Find(&supplies).Error; err != nil {
		return nil, err
	}

	return supplies, nil
}

func (s *supplyStore) FindByMarket(ctx context.Context, marketID string) ([]*core.Supply, error) {
	var supplies []*core.Supply
	if err := store.DB(ctx, s.db).View().Where("market_id = ?", marketID).Order("id").Find(&supplies).Error; err != nil {
		return nil, err
	}

	return supplies, nil
}
