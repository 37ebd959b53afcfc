package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sergis-author/internal/gamedata"
	"sergis-author/internal/model"
	"sergis-author/internal/storage"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func (a *app) checkCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "check FILE",
		Short: "Normalize a game file and report broken goto links",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := readGameFile(args[0])
			if err != nil {
				return err
			}
			problems := gamedata.Validate(game)
			for _, p := range problems {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], p)
			}

			if write {
				data, err := gamedata.Export(game)
				if err != nil {
					return err
				}
				if err := os.WriteFile(args[0], append(data, '\n'), 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", args[0], err)
				}
				a.log.Info().Str("file", args[0]).Msg("Normalized document written")
			}

			if len(problems) > 0 {
				return fmt.Errorf("%s: %d problem(s) found", args[0], len(problems))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (%d prompts)\n", args[0], len(game.PromptList))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the normalized document back to FILE")
	return cmd
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored games",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				list, err := backend.GetGameList(ctx)
				if err != nil {
					return err
				}
				for _, name := range list.Names() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, gamedata.NewTimestamp(list[name]))
				}
				return nil
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var (
		name  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import a game file into storage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := readGameFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = defaultGameName(args[0], game)
			}

			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				if err := backend.CheckGameName(ctx, name); err != nil {
					if !force || !errors.Is(err, model.ErrGameExists) {
						return err
					}
					a.log.Warn().Str("name", name).Msg("Overwriting existing game")
				}
				if err := backend.SaveGame(ctx, name, game); err != nil {
					return err
				}
				a.log.Info().Str("name", name).Int("prompts", len(game.PromptList)).Msg("Game imported")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "storage name (default: file name)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite a game with the same name")
	return cmd
}

func (a *app) exportCmd() *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export NAME",
		Short: "Export a stored game as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "yaml" {
				return fmt.Errorf("unknown format %q (want json or yaml)", format)
			}
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				game, err := backend.LoadGame(ctx, args[0])
				if err != nil {
					return err
				}
				data, err := encodeGame(game, format)
				if err != nil {
					return err
				}
				if output == "" {
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				a.log.Info().Str("file", output).Msg("Game exported")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "output format: json or yaml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (a *app) renameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename OLD NEW",
		Short: "Rename a stored game",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				return backend.RenameGame(ctx, args[0], args[1])
			})
		},
	}
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a stored game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				return backend.RemoveGame(ctx, args[0])
			})
		},
	}
}

type recentLister interface {
	RecentFiles(ctx context.Context) ([]string, error)
}

func (a *app) recentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show recently opened games (local storage only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				lister, ok := backend.(recentLister)
				if !ok {
					return fmt.Errorf("recent files are tracked only by the local backend")
				}
				recent, err := lister.RecentFiles(ctx)
				if err != nil {
					return err
				}
				for _, name := range recent {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func readGameFile(path string) (*gamedata.Game, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	game, err := gamedata.Import(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return game, nil
}

// defaultGameName - имя файла без расширения, а если оно недопустимо, имя из документа.
func defaultGameName(path string, game *gamedata.Game) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if storage.ValidGameName(base) || !storage.ValidGameName(game.Name) {
		return base
	}
	return game.Name
}

func encodeGame(game *gamedata.Game, format string) ([]byte, error) {
	data, err := gamedata.Export(game)
	if err != nil {
		return nil, err
	}
	if format == "json" {
		return append(data, '\n'), nil
	}

	// YAML строится из экспортированного JSON, чтобы сохранить имена полей и формат дат.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert document to yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("failed to convert document to yaml: empty document")
	}
	clearFlowStyle(doc.Content[0])
	out, err := yaml.Marshal(doc.Content[0])
	if err != nil {
		return nil, fmt.Errorf("failed to marshal yaml: %w", err)
	}
	return out, nil
}

// clearFlowStyle переводит JSON-нотацию узлов в блочный YAML.
func clearFlowStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	if n.Kind == yaml.ScalarNode && n.Style&yaml.DoubleQuotedStyle != 0 && !needsQuotes(n.Value) {
		n.Style &^= yaml.DoubleQuotedStyle
	}
	for _, c := range n.Content {
		clearFlowStyle(c)
	}
}

func needsQuotes(s string) bool {
	var v any
	// Строка, которая без кавычек прочиталась бы как не-строка, должна остаться в кавычках.
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return true
	}
	_, isString := v.(string)
	return !isString || v != s
}
