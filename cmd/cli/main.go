package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/kurihiro0119/ci-classification-metrics/internal/aggregator"
	"github.com/kurihiro0119/ci-classification-metrics/internal/config"
	"github.com/kurihiro0119/ci-classification-metrics/internal/domain"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/postgres"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/redash"
	"github.com/kurihiro0119/ci-classification-metrics/internal/source/sqlite"
	"github.com/kurihiro0119/ci-classification-metrics/pkg/client"
)

var (
	outputJSON    bool
	debug         bool
	apiKey        string
	redashURL     string
	queryID       int
	sourceType    string
	inputFile     string
	percent       int
	responseLimit int
	startDelay    int
)

var rootCmd = &cobra.Command{
	Use:   "classification-time",
	Short: "CI failure classification time tool",
	Long: `A CLI tool for measuring how long it takes until failed CI tasks get classified.

Failed task runs are grouped by push and job type, retriggers are followed until
activity stops, late backfills are ignored and the slowest classifications are
trimmed before the average and the limit classification time are reported.`,
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute the classification time report",
	Long:  `Fetch the job run table from the configured source and compute the classification time report.`,
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

var remoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Fetch the classification time report from the API server",
	Long:  `Request the classification time report from a running API server (API_ENDPOINT).`,
	Args:  cobra.NoArgs,
	RunE:  runRemote,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "turn on debug logging and list every classification time")
	rootCmd.PersistentFlags().IntVar(&percent, "percent", 95, "percentage of fastest response times to use (0..100)")
	rootCmd.PersistentFlags().IntVar(&responseLimit, "response-limit", 15*60, "time in seconds in which the job should be classified")
	rootCmd.PersistentFlags().IntVar(&startDelay, "start-delay", 4*60*60, "maximum time in seconds after a push in which a job has to start")

	reportCmd.Flags().StringVar(&apiKey, "key", "", "API key for the Redash query (default REDASH_API_KEY)")
	reportCmd.Flags().StringVar(&redashURL, "redash-url", "", "Redash base URL (default REDASH_URL)")
	reportCmd.Flags().IntVar(&queryID, "query-id", 0, "Redash query id (default REDASH_QUERY_ID)")
	reportCmd.Flags().StringVar(&sourceType, "source", "", "job run source: redash, file, sqlite or postgres (default SOURCE_TYPE)")
	reportCmd.Flags().StringVar(&inputFile, "input", "", "query result JSON file for the file source (default SOURCE_FILE)")

	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logrus.NewEntry(logger)
}

// applyFlags overrides the environment configuration with flags given on the command line
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("key") {
		cfg.RedashAPIKey = apiKey
	}
	if flags.Changed("redash-url") {
		cfg.RedashURL = redashURL
	}
	if flags.Changed("query-id") {
		cfg.RedashQueryID = queryID
	}
	if flags.Changed("source") {
		cfg.SourceType = sourceType
	}
	if flags.Changed("input") {
		cfg.SourceFile = inputFile
		if !flags.Changed("source") {
			cfg.SourceType = string(source.TypeFile)
		}
	}
	if flags.Changed("percent") {
		cfg.Percent = percent
	}
	if flags.Changed("response-limit") {
		cfg.ResponseLimit = time.Duration(responseLimit) * time.Second
	}
	if flags.Changed("start-delay") {
		cfg.StartDelayMax = time.Duration(startDelay) * time.Second
	}
	if flags.Changed("debug") {
		cfg.Debug = debug
	}
}

func getSource(cfg *config.Config, logger *logrus.Entry) (source.Source, error) {
	switch source.Type(cfg.SourceType) {
	case source.TypeFile:
		return source.NewFileSource(cfg.SourceFile), nil
	case source.TypeSQLite:
		return sqlite.NewSQLiteSource(cfg.SQLitePath)
	case source.TypePostgres:
		return postgres.NewPostgresSource(cfg.PostgresURL)
	default:
		return redash.NewRedashSource(cfg.RedashURL, cfg.RedashQueryID, cfg.RedashAPIKey, cfg.FetchTimeout, logger), nil
	}
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlags(cmd, cfg)
	debug = cfg.Debug

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := newLogger()
	src, err := getSource(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize source: %w", err)
	}
	defer src.Close()

	agg := aggregator.NewAggregator(src, logger)
	report, err := agg.ClassificationTime(context.Background(), cfg.Params(), aggregator.Options{IncludeDelays: cfg.Debug})
	if err != nil {
		return fmt.Errorf("failed to compute classification time: %w", err)
	}

	return printReport(report)
}

func runRemote(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	query := client.ReportQuery{IncludeDelays: debug}
	if cmd.Flags().Changed("percent") {
		query.Percent = &percent
	}
	if cmd.Flags().Changed("response-limit") {
		query.ResponseLimit = time.Duration(responseLimit) * time.Second
	}
	if cmd.Flags().Changed("start-delay") {
		query.StartDelayMax = time.Duration(startDelay) * time.Second
	}

	report, err := client.NewClient(cfg.APIEndpoint).GetClassificationTime(context.Background(), query)
	if err != nil {
		return fmt.Errorf("failed to get report: %w", err)
	}

	return printReport(report)
}

func printReport(report *domain.ClassificationReport) error {
	if outputJSON {
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if debug && len(report.Delays) > 0 {
		fmt.Println("\nClassification times for individual tasks")
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Position", "Seconds"})
		for i, delay := range report.Delays {
			table.Append([]string{fmt.Sprintf("%d", i), fmt.Sprintf("%.0f", delay)})
		}
		table.Render()
	}

	fmt.Printf("\nClassification Time (fastest %d%%)\n", report.Params.Percent)
	fmt.Printf("Response limit: %s, start delay: %s\n\n", report.Params.ResponseLimit, report.Params.StartDelayMax)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Metric", "Value"})
	table.Append([]string{"Job Groups", fmt.Sprintf("%d", report.GroupCount)})
	table.Append([]string{"Job Groups Fixed By Commit", fmt.Sprintf("%d", report.ExcludedGroupCount)})
	table.Append([]string{"Classifications Used For Calculation (count)", fmt.Sprintf("%d", report.Count)})
	table.Append([]string{"Classifications Averaged (count)", fmt.Sprintf("%d", report.UsedCount)})
	table.Append([]string{"Average Classification Time (s)", fmt.Sprintf("%.0f", math.RoundToEven(report.MeanSeconds))})
	table.Append([]string{"Median Classification Time (s)", fmt.Sprintf("%.0f", report.MedianSeconds)})
	table.Append([]string{"Limit Classification Time (s)", fmt.Sprintf("%.0f", report.LimitSeconds)})
	table.Render()

	return nil
}
