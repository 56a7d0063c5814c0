package membership

import (
	"context"

	"moneymarket/core"
	"moneymarket/store"

	"github.com/fox-one/pkg/store/db"
)

type membershipStore struct {
	db *db.DB
}

// New new membership store
func New(db *db.DB) core.IMembershipStore {
	return &membershipStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(core.Membership{})
		if err := tx.AutoMigrate(core.Membership{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Markets entered markets of the account, in entering order
func (s *membershipStore) Markets(ctx context.Context, userID string) ([]string, error) {
	var markets []string
	if err := store.DB(ctx, s.db).View().Model(core.Membership{}).Where("user_id = ?", userID).Order("id").Pluck("market_id", &markets).Error; err != nil {
		return nil, err
	}

	return markets, nil
}

func (s *membershipStore) Has(ctx context.Context, userID, marketID string) (bool, error) {
	var count int
	if err := store.DB(ctx, s.db).View().Model(core.Membership{}).Where("user_id = ? AND market_id = ?", userID, marketID).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (s *membershipStore) Add(ctx context.Context, userID, marketID string) error {
	membership := core.Membership{
		UserID:   userID,
		MarketID: marketID,
	}

	return store.DB(ctx, s.db).Update().Where("user_id = ? AND market_id = ?", userID, marketID).FirstOrCreate(&membership).Error
}

func (s *membershipStore) Remove(ctx context.Context, userID, marketID string) error {
	return store.DB(ctx, s.db).Update().Where("user_id = ? AND market_id = ?", userID, marketID).Delete(core.Membership{}).Error
}
