// Package listcmder provides the list command for enumerating ingested
// reports.
package listcmder

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/cliui"
	"github.com/namihq/knowledgebase/pkg/config"
	knowledgeutils "github.com/namihq/knowledgebase/pkg/knowledge/utils"
	"github.com/namihq/knowledgebase/pkg/logger"
)

type listCommander struct {
	configDir string
	debug     bool
	logger    *zap.Logger
}

const listLongDesc string = `List reports observed in the knowledge base.

Enumerates distinct topics from a bounded sample of the store, so very
large corpora may be listed incompletely.

Examples:
  kb list`

const listShortDesc string = "List ingested reports"

func NewListCmd() *cobra.Command {
	cmder := &listCommander{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: listShortDesc,
		Long:  listLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd.Context())
		},
	}

	return cmd
}

func (c *listCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg := config.FromViper(v)

	services, err := knowledgeutils.NewServices(cfg, c.logger)
	if err != nil {
		return err
	}
	defer services.Close()

	summaries, err := services.Retriever.ListIngestedReports(ctx)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Println("No reports ingested yet.")
		return nil
	}

	totalChunks := 0
	fmt.Println()
	for _, summary := range summaries {
		when := ""
		if !summary.CreatedAt.IsZero() {
			when = summary.CreatedAt.Format(time.DateOnly)
		}
		fmt.Printf("  %s %s %s\n",
			cliui.KeyStyle.Render(summary.Topic),
			cliui.DimStyle.Render(fmt.Sprintf("(%d chunks)", summary.Chunks)),
			cliui.DimStyle.Render(when),
		)
		totalChunks += summary.Chunks
	}
	fmt.Printf("\n  %d report(s), %d chunk(s)\n\n", len(summaries), totalChunks)

	return nil
}
