package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/jsonconv/internal/config"
	"github.com/dbsmedya/jsonconv/internal/converter"
	"github.com/dbsmedya/jsonconv/internal/database"
	"github.com/dbsmedya/jsonconv/internal/discovery"
	"github.com/dbsmedya/jsonconv/internal/loader"
)

var (
	loadRecursive bool
	loadDriver    string
	loadDSN       string
	loadReplace   bool
	loadVerify    bool
)

var loadCmd = &cobra.Command{
	Use:   "load <input>",
	Short: "Load JSON files into a MySQL or SQLite database",
	Long: `Load generates the same SQL as "convert --format sql" and executes it
against a database instead of writing it to a file. Each document becomes
one table named after its file and is loaded in its own transaction.

Example:
  jsonconv load data/ --driver sqlite --dsn out.db
  jsonconv load orders.json --driver mysql --dsn 'user:pass@tcp(localhost:3306)/imports'`,
	Args: cobra.ExactArgs(1),
	RunE: runLoad,
}

func init() {
	loadCmd.Flags().BoolVarP(&loadRecursive, "recursive", "r", false,
		"Process JSON files in subdirectories recursively")
	loadCmd.Flags().StringVar(&loadDriver, "driver", "",
		"Database driver: mysql or sqlite (default sqlite)")
	loadCmd.Flags().StringVar(&loadDSN, "dsn", "",
		"Data source name; a file path for sqlite")
	loadCmd.Flags().BoolVar(&loadReplace, "replace", false,
		"Drop existing tables before loading")
	loadCmd.Flags().BoolVar(&loadVerify, "verify", true,
		"Check each table's row count before committing")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup(config.Overrides{
		Recursive: loadRecursive,
		Driver:    loadDriver,
		DSN:       loadDSN,
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.ValidateDatabase(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}

	files, err := discovery.NewFinder(log).Find(args[0], cfg.Input.Recursive)
	if err != nil {
		return err
	}
	log.Infof("Found %d JSON files", len(files))

	// Setup context with signal handling
	ctx, stop := database.SetupSignalHandler(func(sig os.Signal) {
		log.Warnf("Received %s - rolling back the current table...", sig)
	})
	defer stop()

	dbManager := database.NewManager(&cfg.Database)
	if err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer dbManager.Close()

	l, err := loader.New(dbManager.DB, loader.Options{
		Export:       converter.ExportOptions(cfg),
		Driver:       cfg.Database.Driver,
		DropExisting: loadReplace,
		Verify:       loadVerify,
	}, log)
	if err != nil {
		return err
	}

	stats, err := l.Load(ctx, files)
	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			log.Warn("Load cancelled by user")
			printLoadSummary(cmd.ErrOrStderr(), stats)
			return nil
		}
		return err
	}

	printLoadSummary(cmd.ErrOrStderr(), stats)
	return nil
}
