// Package main provides the cherrypick CLI.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cherrypick/internal/cherrypick"
	"cherrypick/internal/db"
	_ "cherrypick/internal/db/extractors"
	"cherrypick/internal/graph"
	"cherrypick/internal/logger"
	"cherrypick/pkg/config"
)

const defaultTimeout = 10

var (
	cfgPath      string
	driverFlag   string
	dsnFlag      string
	timeoutFlag  int
	schemaFlag   string
	tableFlag    string
	columnFlag   string
	valueFlag    string
	outputFlag   string
	columnsFlag  string
	logLevelFlag string
)

var errNoDatabase = errors.New("no database configured: pass --driver and --dsn or set database.type in the config file")

var rootCmd = &cobra.Command{
	Use:   "cherrypick",
	Short: "Extract one row and every row tied to it by foreign keys",
	Long: `cherrypick fetches a seed row, follows foreign keys up to the rows it
references and down to the rows referencing it, and prints the result as
INSERT statements in dependency order or as a Graphviz digraph.

Examples:
  cherrypick --driver postgres --dsn "$PG_DSN" --table orders --column id --value 42
  cherrypick --config cherrypick.yaml --table orders --column id --value 42 --output graphviz --columns "orders:status"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runPick,
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to config YAML")
	rootCmd.Flags().StringVar(&driverFlag, "driver", "", "db driver override (postgres,pgx,mysql,sqlite,sqlserver,godror)")
	rootCmd.Flags().StringVar(&dsnFlag, "dsn", "", "dsn override")
	rootCmd.Flags().IntVar(&timeoutFlag, "timeout", 0, fmt.Sprintf("db connect timeout seconds (default %d)", defaultTimeout))
	rootCmd.Flags().StringVar(&schemaFlag, "schema", "", "schema to load (defaults to the dialect's default schema)")
	rootCmd.Flags().StringVar(&tableFlag, "table", "", "table of the seed row")
	rootCmd.Flags().StringVar(&columnFlag, "column", "", "column to match the seed row on")
	rootCmd.Flags().StringVar(&valueFlag, "value", "", "value of the seed column")
	rootCmd.Flags().StringVar(&outputFlag, "output", "", "output mode: insert-statement or graphviz")
	rootCmd.Flags().StringVar(&columnsFlag, "columns", "", `graphviz label columns, e.g. "orders:status|total,customers:name"`)
	rootCmd.Flags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error")

	for _, name := range []string{"table", "column", "value"} {
		if err := rootCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

// settings is the merged result of config file, environment and flags.
type settings struct {
	driver   string
	dsn      string
	timeout  int
	schema   string
	mode     config.OutputMode
	labels   map[string][]string
	logLevel string

	// configErr is why the config file was not loaded; the run continues
	// on environment and flags alone.
	configErr error
}

// loadSettings applies the config file, then CHERRYPICK_* variables, then flags.
func loadSettings() (settings, error) {
	var s settings

	var appCfg config.AppConfig
	if cfgPath != "" {
		c, err := config.LoadFile(cfgPath)
		if err != nil {
			s.configErr = err
		} else {
			appCfg = c
		}
	}
	if err := config.ApplyEnv(&appCfg); err != nil {
		return s, fmt.Errorf("read environment: %w", err)
	}

	// allow CLI overrides
	if driverFlag != "" && dsnFlag != "" {
		s.driver, s.dsn = config.NormalizeDriver(driverFlag), dsnFlag
	} else {
		appCfg.Database.Type = cmp.Or(driverFlag, appCfg.Database.Type)
		appCfg.Database.DSN = cmp.Or(dsnFlag, appCfg.Database.DSN)
		if appCfg.Database.Type == "" {
			return s, errNoDatabase
		}
		drv, dsn, err := config.BuildDriverAndDSN(appCfg.Database)
		if err != nil {
			return s, fmt.Errorf("build DSN: %w", err)
		}
		s.driver, s.dsn = drv, dsn
	}

	s.timeout = cmp.Or(timeoutFlag, appCfg.Pick.Timeout, defaultTimeout)
	s.schema = cmp.Or(schemaFlag, appCfg.Pick.Schema)
	s.logLevel = cmp.Or(logLevelFlag, appCfg.Pick.LogLevel)

	mode, err := config.ParseOutputMode(cmp.Or(outputFlag, appCfg.Pick.Output))
	if err != nil {
		return s, err
	}
	s.mode = mode

	labels, err := config.ParseLabelColumns(cmp.Or(columnsFlag, appCfg.Pick.LabelColumns))
	if err != nil {
		return s, err
	}
	s.labels = labels
	return s, nil
}

func runPick(cmd *cobra.Command, args []string) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}

	log, err := logger.New(s.logLevel)
	if err != nil {
		return err
	}
	defer log.Sync()
	if s.configErr != nil {
		log.Warn("config file not loaded, continuing with environment and flags", zap.String("path", cfgPath), zap.Error(s.configErr))
	}

	conn, dialect, err := db.Open(s.driver, s.dsn, s.timeout)
	if err != nil {
		return fmt.Errorf("connect %s: %w", s.driver, err)
	}
	defer conn.Close()
	log.Debug("connected", zap.String("dialect", dialect.Name), zap.Strings("registered", db.RegisteredDialects()))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()
	out, err := cherrypick.Run(ctx, conn, dialect, cherrypick.Options{
		Locator: graph.Locator{
			Schema: s.schema,
			Table:  tableFlag,
			Column: columnFlag,
			Value:  valueFlag,
		},
		Mode:         s.mode,
		LabelColumns: s.labels,
	}, log)
	if err != nil {
		return err
	}
	log.Debug("run finished", zap.Duration("elapsed", time.Since(start)))

	_, err = fmt.Fprint(cmd.OutOrStdout(), out)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
