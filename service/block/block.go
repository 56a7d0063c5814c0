package block

import (
	"context"
	"time"

	"moneymarket/core"
	"moneymarket/pkg/compound"
)

type service struct {
	genesis         int64
	secondsPerBlock int64
}

// New new block service
func New(config *core.Config) core.IBlockService {
	secondsPerBlock := config.App.SecondsPerBlock
	if secondsPerBlock <= 0 {
		secondsPerBlock = compound.SecondsPerBlock
	}

	return &service{
		genesis:         config.App.Genesis,
		secondsPerBlock: secondsPerBlock,
	}
}

//CurrentBlock current block
func (s *service) CurrentBlock(ctx context.Context) (int64, error) {
	return s.GetBlock(ctx, time.Now())
}

// GetBlock get block by time
func (s *service) GetBlock(ctx context.Context, t time.Time) (int64, error) {
	return compound.BlockByTime(t, s.genesis, s.secondsPerBlock)
}
