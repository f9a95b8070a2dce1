package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kamanufred/reBLAST/logger"
	"github.com/kamanufred/reBLAST/pkg/blast"
	"github.com/kamanufred/reBLAST/pkg/config"
	"github.com/kamanufred/reBLAST/pkg/db"
	"github.com/kamanufred/reBLAST/pkg/handler"
	"github.com/kamanufred/reBLAST/pkg/middle"
	"github.com/kamanufred/reBLAST/pkg/model"
	"github.com/kamanufred/reBLAST/pkg/pipeline"
)

// runOptions holds the raw flag values of the root command.
type runOptions struct {
	genome1     string
	genome2     string
	molType     string
	output      string
	evalue      float64
	maxTargets  int
	threads     int
	workDir     string
	blastBinDir string
	dbPath      string
	keepWorkDir bool
	configFile  string
}

func newRootCmd() *cobra.Command {
	var opts runOptions
	var logLevel string

	cmd := &cobra.Command{
		Use:   "reblast",
		Short: "Find orthologous genes between two genomes",
		Long: `Runs BLAST in both directions between two genomes and reports the
reciprocal best hits: gene pairs that are each other's top hit.

FASTA headers must carry the gene id as the second pipe-delimited field,
e.g. ">genomeA|geneA1|contig7".`,
		Example: "  reblast -a genomeA.faa -b genomeB.faa -t prot -o orthologs.tsv",
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel == "" {
				return nil
			}
			level, err := logger.ParseLevel(logLevel)
			if err != nil {
				return fmt.Errorf("invalid --log-level: %w", err)
			}
			return logger.InitLogger(level)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.genome1, "genome1", "a", "", "first genome (FASTA)")
	flags.StringVarP(&opts.genome2, "genome2", "b", "", "second genome (FASTA)")
	flags.StringVarP(&opts.molType, "type", "t", "", "molecule type [nucl or prot]")
	flags.StringVarP(&opts.output, "output", "o", "", "output file with orthologs")
	flags.Float64Var(&opts.evalue, "evalue", blast.DefaultSearchParams.EValue, "BLAST e-value threshold")
	flags.IntVar(&opts.maxTargets, "max-target-seqs", blast.DefaultSearchParams.MaxTargetSeqs, "maximum hits kept per query")
	flags.IntVar(&opts.threads, "threads", blast.DefaultSearchParams.Threads, "threads per BLAST search")
	flags.StringVar(&opts.workDir, "work-dir", "", "parent directory of the run workspace (default: system temp dir)")
	flags.StringVar(&opts.blastBinDir, "blast-bin-dir", "", "directory holding the BLAST+ programs (default: PATH)")
	flags.StringVar(&opts.dbPath, "db", "", "sqlite file to record the run in")
	flags.BoolVar(&opts.keepWorkDir, "keep-work-dir", false, "keep BLAST databases and raw results")
	flags.StringVar(&opts.configFile, "config", "", "TOML file with search parameters")
	for _, name := range []string{"genome1", "genome2", "type", "output"} {
		_ = cmd.MarkFlagRequired(name)
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(newServeCmd(), newVersionCmd())
	return cmd
}

// buildConfig layers defaults, the params file, the environment and the
// flags that were set explicitly, in that order.
func buildConfig(cmd *cobra.Command, opts runOptions) (config.Config, error) {
	cfg := config.Default()

	var err error
	if opts.configFile != "" {
		if cfg, err = config.LoadFile(cfg, opts.configFile); err != nil {
			return cfg, err
		}
	}
	if cfg, err = config.FromEnv(cfg, os.Getenv); err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	cfg.Genome1 = opts.genome1
	cfg.Genome2 = opts.genome2
	cfg.MolType = model.MolType(opts.molType)
	cfg.Output = opts.output
	if flags.Changed("evalue") {
		cfg.Search.EValue = opts.evalue
	}
	if flags.Changed("max-target-seqs") {
		cfg.Search.MaxTargetSeqs = opts.maxTargets
	}
	if flags.Changed("threads") {
		cfg.Search.Threads = opts.threads
	}
	if flags.Changed("work-dir") {
		cfg.WorkDir = opts.workDir
	}
	if flags.Changed("blast-bin-dir") {
		cfg.BlastBinDir = opts.blastBinDir
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Changed("keep-work-dir") {
		cfg.KeepWorkDir = opts.keepWorkDir
	}

	return cfg, cfg.Validate()
}

func runPipeline(cmd *cobra.Command, opts runOptions) error {
	cfg, err := buildConfig(cmd, opts)
	if err != nil {
		return err
	}
	// Past option handling, failures are not usage errors.
	cmd.SilenceUsage = true

	var recorder pipeline.RunRecorder
	if cfg.DBPath != "" {
		store, err := db.Open(cfg.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()
		recorder = store
	}

	tools := blast.Tools{BinDir: cfg.BlastBinDir}
	res, err := pipeline.Run(cmd.Context(), cfg, tools, recorder)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\nFinal results written to %s (%d orthologs)\n\n", res.Output, len(res.Orthologs))
	return nil
}

func newServeCmd() *cobra.Command {
	var addr, dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded runs over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				dbPath = os.Getenv(config.EnvDB)
			}
			if dbPath == "" {
				return errors.New("--db (or " + config.EnvDB + ") is required")
			}
			cmd.SilenceUsage = true

			store, err := db.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			h := middle.Chain(NewRouter(&handler.RunContext{Store: store}),
				middle.RequestIDMiddleware(logger.L()),
				middle.LoggingMiddleware(logger.L()))
			srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}

			errc := make(chan error, 1)
			go func() {
				logger.Info("Server starting", zap.String("addr", addr), zap.String("db", dbPath))
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				return fmt.Errorf("error starting server: %w", err)
			case <-cmd.Context().Done():
				logger.Info("Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "0.0.0.0:8080", "listen address")
	cmd.Flags().StringVar(&dbPath, "db", "", "sqlite file written by reblast --db")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "reblast version %s\n", version)
		},
	}
}
