// Package kbcmder
package kbcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/namihq/knowledgebase/cmd/kb/config"
	ingestcmder "github.com/namihq/knowledgebase/cmd/kb/ingest"
	listcmder "github.com/namihq/knowledgebase/cmd/kb/list"
	searchcmder "github.com/namihq/knowledgebase/cmd/kb/search"
	verifycmder "github.com/namihq/knowledgebase/cmd/kb/verify"
	versioncmder "github.com/namihq/knowledgebase/cmd/version"
)

const kbLongDesc string = `kb is a local knowledge base for research reports.

Ingest markdown reports, then search them semantically:
  kb ingest report.md       Chunk, embed, and store a report
  kb search "query"         Retrieve the most relevant chunks
  kb verify <topic>         Check that a report is retrievable
  kb list                   List ingested reports`

const kbShortDesc string = "kb - research report knowledge base"

func NewKBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kb",
		Short: kbShortDesc,
		Long:  kbLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override the .kb config directory")

	// Add subcommands
	cmd.AddCommand(ingestcmder.NewIngestCmd())
	cmd.AddCommand(searchcmder.NewSearchCmd())
	cmd.AddCommand(verifycmder.NewVerifyCmd())
	cmd.AddCommand(listcmder.NewListCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
