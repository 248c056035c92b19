package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/converter"
	"github.com/dbsmedya/jsonconv/internal/database"
)

var (
	convertRecursive bool
	convertOutputDir string
	convertFormat    string
)

var convertCmd = &cobra.Command{
	Use:   "convert <input>",
	Short: "Convert JSON files to CSV, SQL or XML",
	Long: `Convert reads a single .json file, or every .json file in a directory,
and writes one artifact per document.

  csv  header is the sorted union of all flattened keys
  sql  CREATE TABLE with inferred column types plus one INSERT per record
  xml  nested elements under a root named after the file

Artifacts are written next to each input unless --output-dir is set.
The paths of the written artifacts are printed one per line.

Example:
  jsonconv convert data/ --recursive --format sql --output-dir out/`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolVarP(&convertRecursive, "recursive", "r", false,
		"Process JSON files in subdirectories recursively")
	convertCmd.Flags().StringVarP(&convertOutputDir, "output-dir", "o", "",
		"Output directory (default: next to each input file)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "",
		"Output format: csv, sql or xml (default csv)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(config.Overrides{
		Recursive:    convertRecursive,
		OutputDir:    convertOutputDir,
		OutputFormat: convertFormat,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	conv, err := converter.New(cfg, log)
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := database.SetupSignalHandler(func(sig os.Signal) {
		log.Warnf("Received %s - stopping after the current file...", sig)
	})
	defer stop()

	result, err := conv.Convert(ctx, args[0])
	cancelled := err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err())
	if err != nil && !cancelled {
		return err
	}

	for _, path := range result.Exported() {
		fmt.Fprintln(cmd.OutOrStdout(), path)
	}
	printConvertSummary(cmd.ErrOrStderr(), result)

	if cancelled {
		log.Warn("Conversion cancelled by user")
	}
	return nil
}
