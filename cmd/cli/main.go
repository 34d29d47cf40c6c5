package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"goclean/adapters/estimator"
	"goclean/adapters/excel"
	"goclean/adapters/postgres"
	"goclean/adapters/rng"
	"goclean/adapters/stats/correlation"
	"goclean/app"
	"goclean/internal"
	"goclean/internal/config"
	"goclean/internal/testkit"
	"goclean/ports"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	// Optional .env for local development; real deployments set env directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "goclean",
		Short: "Domain generation and weak labeling for probabilistic data cleaning",
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newCorrelationsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRunCmd() *cobra.Command {
	var dataFile string
	var attrs []string
	var featurize bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one domain-generation session over a dataset",
		Long: `Run the full pipeline: correlation discovery, co-occurrence pruning,
domain generation, estimator-based weak labeling, and persistence.

Active attributes come from --attrs, or from the dk_cells table when a
DATABASE_URL is configured.

Example: goclean run --data hospital.csv --attrs city,state,zip`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), dataFile, attrs, featurize)
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "Dataset file (.xlsx or .csv); overrides DATA_FILE")
	cmd.Flags().StringSliceVar(&attrs, "attrs", nil, "Active attributes to generate domains for")
	cmd.Flags().BoolVar(&featurize, "featurize", false, "Assemble the co-occurrence feature tensor after generation")

	return cmd
}

func newCorrelationsCmd() *cobra.Command {
	var dataFile string
	var threshold float64

	cmd := &cobra.Command{
		Use:   "correlations [attribute]",
		Short: "Report attributes correlated with one attribute",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCorrelations(cmd.Context(), dataFile, args[0], threshold)
		},
	}

	cmd.Flags().StringVar(&dataFile, "data", "", "Dataset file (.xlsx or .csv); overrides DATA_FILE")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.05, "Minimum absolute correlation")

	return cmd
}

func runSession(ctx context.Context, dataFile string, attrs []string, featurize bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dataFile == "" {
		dataFile = cfg.Data.File
	}
	if dataFile == "" {
		return fmt.Errorf("no dataset configured: pass --data or set DATA_FILE")
	}

	reader := excel.NewDataReader(dataFile)

	var repo ports.DomainRepository
	var detector ports.ActiveAttributeSource
	if cfg.Database.URL != "" {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		repo = postgres.NewDomainRepository(db)
		detector = postgres.NewActiveAttributeSource(db)
	} else {
		internal.DefaultLogger.Warn("no DATABASE_URL configured, keeping domains in memory")
		repo = testkit.NewMemoryDomainRepository()
	}
	if len(attrs) > 0 {
		detector = &testkit.StaticAttributeSource{Attrs: attrs}
	}
	if detector == nil {
		return fmt.Errorf("no active attributes: pass --attrs or configure DATABASE_URL with a dk_cells table")
	}

	svc := app.NewDomainService(reader, detector, repo, estimator.NewNaiveBayes(), rng.NewSource(), cfg.Session)
	result, err := svc.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("session %s: %d variable cells, %d weak labels, %.2fs\n",
		result.SessionID, len(result.Records), result.WeakLabels, result.Elapsed.Seconds())
	fmt.Printf("fingerprint %s\n", result.Manifest.Fingerprint)

	if featurize {
		tensor, err := svc.FeatureTensor(ctx)
		if err != nil {
			return err
		}
		rows, cols := tensor.Dims()
		fmt.Printf("feature tensor: %d rows x %d channels\n", rows, cols)
	}
	return nil
}

func runCorrelations(ctx context.Context, dataFile, attr string, threshold float64) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if dataFile == "" {
		dataFile = cfg.Data.File
	}
	if dataFile == "" {
		return fmt.Errorf("no dataset configured: pass --data or set DATA_FILE")
	}

	ds, err := excel.NewDataReader(dataFile).Read(ctx)
	if err != nil {
		return err
	}

	analyzer := correlation.NewAnalyzer(ds)
	correlated := analyzer.CorrelatedAttributes(attr, threshold)
	if len(correlated) == 0 {
		fmt.Printf("no attributes correlated with %s above %.2f\n", attr, threshold)
		return nil
	}
	fmt.Printf("correlated with %s (>%.2f): %s\n", attr, threshold, strings.Join(correlated, ", "))
	return nil
}
