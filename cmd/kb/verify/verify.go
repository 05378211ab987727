// Package verifycmder provides the verify command for checking that an
// ingested report is retrievable.
package verifycmder

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/cliui"
	"github.com/namihq/knowledgebase/pkg/config"
	knowledgeutils "github.com/namihq/knowledgebase/pkg/knowledge/utils"
	"github.com/namihq/knowledgebase/pkg/logger"
)

type verifyCommander struct {
	topic string
	query string

	configDir string
	debug     bool
	logger    *zap.Logger
}

const verifyLongDesc string = `Verify that a report was ingested and is retrievable.

Runs a small similarity probe and checks whether the nearest chunks carry
the given topic. Reporting "not found" is a normal outcome, not an error;
the command exits non-zero only when the probe itself fails.

Examples:
  kb verify "garbage collection"
  kb verify "garbage collection" --query "tri-color mark and sweep"`

const verifyShortDesc string = "Verify a report is retrievable"

func NewVerifyCmd() *cobra.Command {
	cmder := &verifyCommander{}

	cmd := &cobra.Command{
		Use:   "verify <topic>",
		Short: verifyShortDesc,
		Long:  verifyLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.topic = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.query, "query", "q", "", "Probe query (default: the topic itself)")

	return cmd
}

func (c *verifyCommander) run(ctx context.Context) error {
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

	verify, err := services.Retriever.VerifyIngestion(ctx, c.topic, c.query)
	if err != nil {
		return err
	}

	if !verify.Found {
		fmt.Printf("\n  %s No chunks found for %s %s\n\n",
			cliui.FailMark,
			cliui.KeyStyle.Render(fmt.Sprintf("%q", c.topic)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d nearby results checked)", verify.TotalResults)),
		)
		return nil
	}

	fmt.Printf("\n  %s %s %s\n\n",
		cliui.SuccessMark,
		cliui.KeyStyle.Render(fmt.Sprintf("%q", c.topic)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d of %d probe results)", verify.ChunksFound, verify.TotalResults)),
	)

	sample := strings.ReplaceAll(verify.SampleContent, "\n", " ")
	fmt.Printf("  %s\n  %s\n\n",
		cliui.DimStyle.Render("sample:"),
		cliui.ValueStyle.Render(sample),
	)

	return nil
}
