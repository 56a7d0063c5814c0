package borrow

import (
	"context"

	"moneymarket/core"
	"moneymarket/store"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
	"github.com/shopspring/decimal"
)

type borrowStore struct {
	db *db.DB
}

// New new borrow store
func New(db *db.DB) core.IBorrowStore {
	return &borrowStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Borrow{})
		if err := tx.AutoMigrate(core.Borrow{}).Error; err != nil {
			return err
		}

		if err := tx.AddIndex("idx_borrows_market", "market_id").Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *borrowStore) Save(ctx context.Context, borrow *core.Borrow) error {
	tx := store.DB(ctx, s.db).Update()

	if borrow.ID == 0 {
		var prev core.Borrow
		err := tx.Where("user_id = ? AND market_id = ?", borrow.UserID, borrow.MarketID).First(&prev).Error
		if err == nil {
			borrow.ID = prev.ID
			borrow.CreatedAt = prev.CreatedAt
		} else if !gorm.IsRecordNotFoundError(err) {
			return err
		}
	}

	borrow.Version++
	if err := tx.Save(borrow).Error; err != nil {
		borrow.Version--
		return err
	}

	return nil
}

func (s *borrowStore) Find(ctx context.Context, userID, marketID string) (*core.Borrow, error) {
	var borrow core.Borrow
	if err := store.DB(ctx, s.db).View().Where("user_id = ? AND market_id = ?", userID, marketID).First(&borrow).Error; err != nil {
		if gorm.IsRecordNotFoundError(err) {
			return &core.Borrow{
				UserID:        userID,
				MarketID:      marketID,
				Principal:     decimal.Zero,
				InterestIndex: decimal.Zero,
			}, nil
		}

		return nil, err
	}

	return &borrow, nil
}

func (s *borrowStore) FindByUser(ctx context.Context, userID string) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := store.DB(ctx, s.db).View().Where("user_id = ?", userID).Order("id").Find(&borrows).Error; err != nil {
		return nil, err
	}

	return borrows, nil
}

func (s *borrowStore) FindByMarket(ctx context.Context, marketID string) ([]*core.Borrow, error) {
	var borrows []*core.Borrow
	if err := store.DB(ctx, s.db).View().Where("market_id = ?", marketID).Order("id").Find(&borrows).Error; err != nil {
		return nil, err
	}

	return borrows, nil
}

func (s *borrowStore) Users(ctx context.Context) ([]string, error) {
	var users []string
	if err := store.DB(ctx, s.db).View().Model(core.Borrow{}).Group("user_id").Order("user_id").Pluck("user_id", &users).Error; err != nil {
		return nil, err
	}

	return users, nil
}
