package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Twicheg/TheGameBackEnd/internal/domain"
)

// grantPrizes walks the level's prize bindings in order: resolve the prize,
// append its title to the player's rewards record, stamp the binding's
// received date. The player is persisted after every append so a failure
// leaves no partial reward set once the enclosing transaction rolls back.
func grantPrizes(ctx context.Context, st Store, bindings []domain.LevelPrize, player *domain.Player) ([]string, error) {
	var granted []string
	now := time.Now()

	for i := range bindings {
		lp := &bindings[i]

		prize, err := st.PrizeByID(ctx, lp.PrizeID, false)
		if err != nil {
			return nil, err
		}
		if prize == nil {
			// Dangling binding, already logged by the data layer.
			continue
		}

		player.Rewards = append(player.Rewards, prize.Title)
		if err := st.UpdatePlayer(ctx, player); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRewardFailed, err)
		}

		lp.ReceivedAt = &now
		if err := st.UpdateLevelPrize(ctx, lp); err != nil {
			return nil, err
		}

		granted = append(granted, prize.Title)
	}
	return granted, nil
}
