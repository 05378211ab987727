// Package ingestcmder provides the ingest command for adding research
// reports to the knowledge base.
package ingestcmder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/cliui"
	"github.com/namihq/knowledgebase/pkg/config"
	"github.com/namihq/knowledgebase/pkg/knowledge"
	knowledgeutils "github.com/namihq/knowledgebase/pkg/knowledge/utils"
	"github.com/namihq/knowledgebase/pkg/logger"
)

type ingestCommander struct {
	files []string
	topic string
	meta  []string

	configDir string
	debug     bool
	logger    *zap.Logger
}

const ingestLongDesc string = `Ingest one or more markdown reports.

Each file is chunked, embedded, and stored in the configured vector store.
The report topic is taken from --topic, the first "# " heading in the file,
or the filename, in that order. With multiple files, ingestion continues
past individual failures and a summary is printed at the end.

Extra metadata can be attached to every chunk with repeated --meta flags.

Examples:
  kb ingest research/golang-gc.md
  kb ingest notes.md --topic "garbage collection"
  kb ingest reports/*.md --meta quality_score=0.9`

const ingestShortDesc string = "Ingest markdown reports"

func NewIngestCmd() *cobra.Command {
	cmder := &ingestCommander{}

	cmd := &cobra.Command{
		Use:   "ingest <file.md> [more files...]",
		Short: ingestShortDesc,
		Long:  ingestLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.files = args

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			if cmder.topic != "" && len(args) > 1 {
				return fmt.Errorf("--topic only applies to a single file")
			}

			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.topic, "topic", "t", "", "Report topic (default: first heading or filename)")
	cmd.Flags().StringArrayVar(&cmder.meta, "meta", nil, "Extra chunk metadata as key=value (repeatable)")

	return cmd
}

func (c *ingestCommander) run(ctx context.Context) error {
	c.logger = logger.NewLogger(c.debug)
	defer func() { _ = c.logger.Sync() }()

	v, err := config.InitViper(c.configDir)
	if err != nil {
		return err
	}
	cfg := config.FromViper(v)

	extra, err := parseMeta(c.meta)
	if err != nil {
		return err
	}

	reports := make([]knowledge.Report, 0, len(c.files))
	for _, file := range c.files {
		report, err := readReport(file, c.topic, extra)
		if err != nil {
			return err
		}
		reports = append(reports, report)
	}

	services, err := knowledgeutils.NewServices(cfg, c.logger)
	if err != nil {
		return err
	}
	defer services.Close()

	var batch knowledge.BatchResult
	err = cliui.Step(os.Stdout, fmt.Sprintf("Ingesting %d report(s)", len(reports)), func() error {
		batch = services.Ingestor.AddReports(ctx, reports)
		if batch.Successful == 0 && batch.Failed > 0 {
			return fmt.Errorf("all reports failed")
		}
		return nil
	})

	fmt.Println()
	for _, detail := range batch.Details {
		if detail.Success {
			fmt.Printf("  %s %s %s\n",
				cliui.SuccessMark,
				cliui.KeyStyle.Render(detail.Topic),
				cliui.DimStyle.Render(fmt.Sprintf("(%d chunks)", detail.ChunksAdded)),
			)
		} else {
			fmt.Printf("  %s %s %s\n",
				cliui.FailMark,
				cliui.KeyStyle.Render(detail.Topic),
				cliui.DimStyle.Render(detail.Message),
			)
		}
	}
	fmt.Printf("\n  %d succeeded, %d failed\n\n", batch.Successful, batch.Failed)

	return err
}

// readReport loads a markdown file and derives its topic: explicit flag,
// first "# " heading, or the filename without extension.
func readReport(path, topic string, extra map[string]string) (knowledge.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return knowledge.Report{}, fmt.Errorf("reading %s: %w", path, err)
	}
	content := string(data)

	if topic == "" {
		topic = headingTopic(content)
	}
	if topic == "" {
		base := filepath.Base(path)
		topic = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return knowledge.Report{
		Topic:    topic,
		Content:  content,
		Metadata: extra,
	}, nil
}

func headingTopic(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(after)
		}
	}
	return ""
}

func parseMeta(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	meta := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --meta %q, want key=value", pair)
		}
		meta[key] = value
	}
	return meta, nil
}
