// Package configcmder provides the config command for managing persistent
// kb configuration stored in the .kb/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent kb configuration.

Configuration is stored as config.toml in the .kb/ directory and provides
default values for command flags. CLI flags and KB_* environment variables
always take precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  storage.dir, storage.collection,
  chunking.size, chunking.overlap, chunking.min_content,
  ingest.workers, ingest.report_timeout,
  retrieval.k, retrieval.fetch_k, retrieval.lambda, retrieval.use_mmr,
  vector_store.provider, vector_store.target,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions

Use subcommands to get, set, or list configuration values:
  kb config set <key> <value>    Set a configuration value
  kb config get <key>            Get a configuration value
  kb config list                 List all configuration values

Examples:
  kb config set embedding.model nomic-embed-text
  kb config set chunking.size 1500
  kb config get retrieval.k
  kb config list`

const configShortDesc string = "Manage persistent kb configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
