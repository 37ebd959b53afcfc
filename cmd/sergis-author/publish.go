package main

import (
	"context"
	"fmt"

	"sergis-author/internal/model"
	"sergis-author/internal/storage"

	"github.com/spf13/cobra"
)

func (a *app) previewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "preview FILE",
		Short: "Upload a game file for preview and print its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			game, err := readGameFile(args[0])
			if err != nil {
				return err
			}
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				previewer, ok := backend.(storage.Previewer)
				if !ok {
					return fmt.Errorf("%s backend does not support previews", a.backendKind)
				}
				url, err := previewer.PreviewGame(ctx, game)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
}

func (a *app) publishCmd() *cobra.Command {
	var access string
	cmd := &cobra.Command{
		Use:   "publish NAME",
		Short: "Publish a stored game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !model.Access(access).Valid() {
				return fmt.Errorf("invalid access %q (want public or private)", access)
			}
			return a.withBackend(cmd, func(ctx context.Context, backend storage.Backend) error {
				publisher, ok := backend.(storage.Publisher)
				if !ok {
					return fmt.Errorf("%s backend does not support publishing", a.backendKind)
				}
				url, err := publisher.PublishGame(ctx, args[0], model.Access(access))
				if err != nil {
					return err
				}
				a.log.Info().Str("game", args[0]).Str("access", access).Msg("Game published")
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&access, "access", string(model.AccessPublic), "who can play: public or private")
	return cmd
}
