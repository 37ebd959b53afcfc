package storage

import (
	"context"
	"errors"
	"fmt"

	"sergis-author/internal/model"
)

// WithLockedPrompts захватывает блокировки промптов, выполняет fn и всегда их отпускает.
// Если хоть один промпт занят, fn не вызывается и возвращается model.ErrPromptLocked.
// Хранилище без PromptLocker просто выполняет fn.
func WithLockedPrompts(ctx context.Context, backend Backend, game string, indices []int, fn func() error) (err error) {
	locker, ok := backend.(PromptLocker)
	if !ok || len(indices) == 0 {
		return fn()
	}

	acquired, err := locker.LockPrompts(ctx, game, indices)
	if err != nil {
		return fmt.Errorf("error locking prompts %v of %q: %w", indices, game, err)
	}
	if !acquired {
		return fmt.Errorf("prompts %v of %q: %w", indices, game, model.ErrPromptLocked)
	}
	defer func() {
		// Контекст вызывающего мог быть отменен, блокировку все равно нужно снять.
		unlockErr := locker.UnlockPrompts(context.WithoutCancel(ctx), game, indices)
		if unlockErr != nil {
			err = errors.Join(err, fmt.Errorf("error unlocking prompts %v of %q: %w", indices, game, unlockErr))
		}
	}()

	return fn()
}
