// Package searchcmder provides the search command for semantic retrieval
// over ingested reports.
package searchcmder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/namihq/knowledgebase/pkg/config"
	"github.com/namihq/knowledgebase/pkg/knowledge"
	knowledgeutils "github.com/namihq/knowledgebase/pkg/knowledge/utils"
	"github.com/namihq/knowledgebase/pkg/logger"
	"github.com/namihq/knowledgebase/pkg/utils"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	topicStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// previewLen bounds the chunk preview shown per hit.
const previewLen = 150

type searchCommander struct {
	query     string
	topK      int
	fetchK    int
	lambda    float32
	lambdaSet bool
	noMMR     bool

	configDir string
	debug     bool
	logger    *zap.Logger
}

const searchLongDesc string = `Search ingested reports semantically.

The query is embedded and matched against stored chunks. By default results
are re-ranked with Maximal Marginal Relevance, trading a little relevance
for diversity across the result set. Use --no-mmr for plain similarity
ranking.

Examples:
  kb search "how does the garbage collector work"
  kb search "error handling" --top 10
  kb search "scheduler" --no-mmr
  kb search "channels" --fetch 50 --lambda 0.5`

const searchShortDesc string = "Search ingested reports"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]

			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			cmder.lambdaSet = cmd.Flags().Changed("lambda")

			return cmder.run(cmd.Context())
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", defaults.Retrieval.K, "Number of results to return")
	cmd.Flags().IntVar(&cmder.fetchK, "fetch", defaults.Retrieval.FetchK, "MMR candidate pool size")
	cmd.Flags().Float32Var(&cmder.lambda, "lambda", defaults.Retrieval.Lambda, "MMR relevance/diversity trade-off in [0,1]")
	cmd.Flags().BoolVar(&cmder.noMMR, "no-mmr", false, "Rank by plain similarity instead of MMR")

	return cmd
}

func (c *searchCommander) run(ctx context.Context) error {
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

	results, err := services.Retriever.Query(ctx, c.query, knowledge.QueryOptions{
		K:         c.topK,
		FetchK:    c.fetchK,
		Lambda:    c.lambda,
		LambdaSet: c.lambdaSet,
		NoMMR:     c.noMMR,
	})
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Results for:"),
		topicStyle.Render(fmt.Sprintf("%q", c.query)),
	)

	for i, result := range results {
		meta := knowledge.ParseChunkMeta(result.Metadata)

		fmt.Printf("  %s  %s  %s %s\n",
			rankStyle.Render(fmt.Sprintf("#%d", i+1)),
			scoreStyle.Render(fmt.Sprintf("score: %.4f", result.Score)),
			topicStyle.Render(meta.Topic),
			dimStyle.Render(fmt.Sprintf("chunk %d/%d", meta.ChunkID+1, meta.TotalChunks)),
		)

		if !meta.CreatedAt.IsZero() {
			fmt.Printf("  %s\n", dimStyle.Render("ingested "+meta.CreatedAt.Format(time.DateOnly)))
		}

		preview := strings.ReplaceAll(utils.Truncate(result.Text, previewLen), "\n", " ")
		fmt.Printf("  %s\n\n", previewStyle.Render(preview))
	}

	return nil
}
