package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/quickprep-cli/internal/config"
	"github.com/KaramelBytes/quickprep-cli/internal/prep"
	"github.com/KaramelBytes/quickprep-cli/internal/recipe"
	"github.com/KaramelBytes/quickprep-cli/internal/sink"
)

var (
	pushLoad      loadFlags
	pushSteps     stepFlags
	pushTable     string
	pushDSN       string
	pushSchema    string
	pushMode      string
	pushTimeout   time.Duration
	pushBatchSize int
)

var pushCmd = &cobra.Command{
	Use:   "push <file>",
	Short: "Load a dataset, optionally prepare it, and write it to a PostgreSQL table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := sink.ParseMode(pushMode)
		if err != nil {
			return err
		}
		name := pushTable
		if name == "" {
			base := filepath.Base(args[0])
			name = prep.StandardizeName(strings.TrimSuffix(base, filepath.Ext(base)))
		}
		if name == "" {
			return errors.New("--table is required")
		}
		dsn, schema, batch := pushDSN, pushSchema, pushBatchSize
		if cfg != nil {
			if dsn == "" {
				dsn = cfg.PostgresDSN
			}
			if schema == "" {
				schema = cfg.PostgresSchema
			}
			if batch <= 0 {
				batch = cfg.InsertBatchSize
			}
		}

		t, err := pushLoad.load(args[0])
		if err != nil {
			return err
		}
		r, err := pushSteps.build()
		if err != nil {
			return err
		}
		if r != nil {
			if t, _, err = recipe.Run(t, r, logger); err != nil {
				return err
			}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info().Str("dsn", config.MaskDSN(dsn)).Str("schema", schema).Str("table", name).Str("mode", mode.String()).Msg("connecting")
		pg, err := sink.Open(ctx, dsn, pushTimeout, logger)
		if err != nil {
			return err
		}
		defer pg.Close()
		if batch > 0 {
			pg.BatchSize = batch
		}
		n, err := pg.WriteTable(ctx, schema, name, t, mode)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return errors.New("push interrupted; transaction rolled back")
			}
			return err
		}
		successf(cmd.OutOrStdout(), "Wrote %d rows to %s (%s)", n, sink.QualifiedName(schema, name), mode)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushLoad.register(pushCmd)
	pushSteps.register(pushCmd)
	pushCmd.Flags().StringVarP(&pushTable, "table", "t", "", "destination table (default: standardized file name)")
	pushCmd.Flags().StringVar(&pushDSN, "dsn", "", "PostgreSQL DSN (default from config, QUICKPREP_POSTGRES_DSN or DATABASE_URL)")
	pushCmd.Flags().StringVar(&pushSchema, "schema", "", "destination schema (default from config)")
	pushCmd.Flags().StringVar(&pushMode, "mode", "replace", "replace|append")
	pushCmd.Flags().DurationVar(&pushTimeout, "timeout", 10*time.Second, "connection timeout")
	pushCmd.Flags().IntVar(&pushBatchSize, "batch-size", 0, "rows per INSERT statement (default from config)")
}
