package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rflorenc/databricks-resource-cleaner/internal/console"
	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
	"github.com/rflorenc/databricks-resource-cleaner/internal/platform"
)

func NewRunCommand(flags *globalFlags) *cobra.Command {
	in := &console.Input{}
	var insecure bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Delete resources from the terminal",
		Long: `Run a cleanup without the web page. Values not given as flags are
prompted for interactively.`,
		Example: `  dbcleaner run --host https://dbc-1234.cloud.databricks.com --category jobs --category notebooks
  DATABRICKS_TOKEN=dapi... dbcleaner run --category "All Catalogs" --yes`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := flags.load(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runCleanup(ctx, cmd, in, insecure)
		},
	}

	cmd.Flags().StringVar(&in.Host, "host", os.Getenv("DATABRICKS_HOST"), "Workspace URL (env DATABRICKS_HOST)")
	cmd.Flags().StringVar(&in.Token, "token", os.Getenv("DATABRICKS_TOKEN"), "Personal access token (env DATABRICKS_TOKEN)")
	cmd.Flags().StringArrayVar(&in.Categories, "category", nil, "Resource category to delete, by name or label (repeatable)")
	cmd.Flags().BoolVar(&in.Options.DisableFoundationModels, "disable-foundation-models", false, "Set foundation model endpoints to zero traffic instead of deleting them")
	cmd.Flags().BoolVar(&in.Options.DeleteAIBricks, "delete-ai-bricks", false, "Report endpoints held by an AI Brick with manual-deletion guidance instead of the raw error")
	cmd.Flags().BoolVarP(&in.Confirmed, "yes", "y", false, "Confirm the deletion without prompting")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "Skip TLS verification")

	return cmd
}

func runCleanup(ctx context.Context, cmd *cobra.Command, in *console.Input, insecure bool) error {
	if err := console.Prompt(ctx, in); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("aborted")
		}
		return err
	}

	req, err := in.Request()
	if err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		if errors.Is(err, models.ErrInvalidHost) {
			return errors.New(models.InvalidHostMessage)
		}
		return err
	}

	out := console.NewPrinter(cmd.OutOrStdout())
	api, err := platform.NewAPI(&models.Workspace{Host: req.Host, Token: req.Token, Insecure: insecure})
	if err != nil {
		out.Line(fmt.Sprintf("Connection error: %v", err))
		return err
	}

	log.Debug().Str("host", req.Host).Interface("categories", req.Categories.Ordered()).Msg("starting cleanup")
	out.Heading("Deletion Status")
	tallies := platform.Run(ctx, api, req.Categories.Ordered(), req.Options, out.Line)
	fmt.Fprintln(cmd.OutOrStdout())
	out.Summary(tallies)
	return ctx.Err()
}
