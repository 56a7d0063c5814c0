package market

import (
	"context"

	"moneymarket/core"
	"moneymarket/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type marketStore struct {
	db *db.DB
}

// New new market store
func New(db *db.DB) core.IMarketStore {
	return &marketStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Market{})
		if err := tx.AutoMigrate(core.Market{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *marketStore) Save(ctx context.Context, market *core.Market) error {
	market.Version++
	if err := store.DB(ctx, s.db).Update().Save(market).Error; err != nil {
		market.Version--
		return err
	}

	return nil
}

func (s *marketStore) Find(ctx context.Context, id string) (*core.Market, error) {
	var market core.Market
	if err := store.DB(ctx, s.db).View().Where("id = ?", id).First(&market).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Market{}, nil
		}

		return nil, err
	}

	return &market, nil
}

func (s *marketStore) All(ctx context.Context) ([]*core.Market, error) {
	var markets []*core.Market
	if err := store.DB(ctx, s.db).View().Order("created_at, id").Find(&markets).Error; err != nil {
		return nil, err
	}

	return markets, nil
}
