package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
)

const keyPrefix = "sergis:lock"

// PromptKey строит ключ блокировки промпта index игры game в области scope (обычно автор).
func PromptKey(scope, game string, index int) string {
	return fmt.Sprintf("%s:%s:%s:%d", keyPrefix, scope, game, index)
}

// PromptLocks захватывает наборы промптов целиком или не захватывает ничего.
type PromptLocks struct {
	locker Locker
	ttl    time.Duration
	logger *zap.Logger
}

// NewPromptLocks создает PromptLocks. Если логгер nil, используется Noop.
func NewPromptLocks(locker Locker, ttl time.Duration, logger *zap.Logger) *PromptLocks {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PromptLocks{locker: locker, ttl: ttl, logger: logger.Named("PromptLocks")}
}

// Lock захватывает все промпты indices для owner. Если хоть один занят, снимаются
// только захваченные этим вызовом; блокировки, которые owner держал раньше, остаются.
func (p *PromptLocks) Lock(ctx context.Context, scope, game, owner string, indices []int) (bool, error) {
	// Единый порядок захвата исключает взаимную блокировку двух владельцев.
	ordered := uniqueSorted(indices)
	acquired := make([]int, 0, len(ordered))

	for _, index := range ordered {
		status, err := p.locker.Acquire(ctx, PromptKey(scope, game, index), owner, p.ttl)
		if err != nil || !status.Held() {
			if rbErr := p.Unlock(context.WithoutCancel(ctx), scope, game, owner, acquired); rbErr != nil {
				p.logger.Error("Failed to roll back partial prompt lock", zap.String("game", game), zap.Error(rbErr))
			}
			if err != nil {
				return false, fmt.Errorf("error locking prompt %d: %w", index, err)
			}
			p.logger.Debug("Prompt is locked by another owner",
				zap.String("game", game), zap.Int("prompt", index), zap.String("owner", owner))
			return false, nil
		}
		if status == Acquired {
			acquired = append(acquired, index)
		}
	}
	return true, nil
}

// Unlock снимает блокировки промптов, которые держит owner.
func (p *PromptLocks) Unlock(ctx context.Context, scope, game, owner string, indices []int) error {
	var errs []error
	for _, index := range uniqueSorted(indices) {
		if err := p.locker.Release(ctx, PromptKey(scope, game, index), owner); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func uniqueSorted(indices []int) []int {
	out := slices.Clone(indices)
	slices.Sort(out)
	return slices.Compact(out)
}
