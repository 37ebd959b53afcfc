package main

import (
	"context"
	"fmt"
	"strconv"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/storage"

	"github.com/spf13/cobra"
)

func (a *app) promptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Reorder or delete prompts of a stored game",
	}
	cmd.AddCommand(a.promptMoveCmd(), a.promptRemoveCmd())
	return cmd
}

func (a *app) promptMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move NAME FROM TO",
		Short: "Move a prompt, keeping goto links pointed at the same prompts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := parseIndices(args[1], args[2])
			if err != nil {
				return err
			}
			// Перемещение сдвигает все промпты между from и to.
			return a.editGame(cmd, args[0], min(from, to), max(from, to), func(game *gamedata.Game) error {
				if err := gamedata.MovePrompt(game, from, to); err != nil {
					return err
				}
				a.log.Info().Str("game", args[0]).Int("from", from).Int("to", to).Msg("Prompt moved")
				return nil
			})
		},
	}
}

func (a *app) promptRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME INDEX",
		Short: "Delete a prompt and renumber goto links",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil || index < 0 {
				return fmt.Errorf("invalid prompt index %q", args[1])
			}

			return a.editGame(cmd, args[0], index, index, func(game *gamedata.Game) error {
				dangling, err := gamedata.RemovePrompt(game, index)
				if err != nil {
					return err
				}
				if dangling > 0 {
					a.log.Warn().Str("game", args[0]).Int("links", dangling).
						Msg("Some goto actions pointed at the removed prompt; run check on the exported game")
				}
				a.log.Info().Str("game", args[0]).Int("index", index).Msg("Prompt removed")
				return nil
			})
		},
	}
}

// editGame загружает игру под блокировкой промптов first..last, применяет edit и сохраняет.
// Границы проверяются по текущей версии игры до захвата блокировок.
func (a *app) editGame(cmd *cobra.Command, name string, first, last int, edit func(game *gamedata.Game) error) error {
	return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
		current, err := backend.LoadGame(ctx, name)
		if err != nil {
			return err
		}
		if last >= len(current.PromptList) {
			return fmt.Errorf("prompt %d of %q (%d prompts): %w", last, name, len(current.PromptList), gamedata.ErrIndexOutOfRange)
		}

		return storage.WithLockedPrompts(ctx, backend, name, indexRange(first, last), func() error {
			game, err := backend.LoadGame(ctx, name)
			if err != nil {
				return err
			}
			if err := edit(game); err != nil {
				return err
			}
			return backend.SaveGame(ctx, name, game)
		})
	})
}

func parseIndices(fromArg, toArg string) (int, int, error) {
	from, err := strconv.Atoi(fromArg)
	if err != nil || from < 0 {
		return 0, 0, fmt.Errorf("invalid prompt index %q", fromArg)
	}
	to, err := strconv.Atoi(toArg)
	if err != nil || to < 0 {
		return 0, 0, fmt.Errorf("invalid prompt index %q", toArg)
	}
	return from, to, nil
}

func indexRange(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for i := lo; i <= hi; i++ {
		out = append(out, i)
	}
	return out
}
