package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/Aryanshanu/pesto/internal/adprocessor"
	"github.com/Aryanshanu/pesto/internal/logging"
	"github.com/spf13/cobra"
)

var (
	fetchBucket    string
	fetchPrefix    string
	fetchRegion    string
	fetchSpoolDir  string
	fetchStateFile string
	fetchMinSize   int64
	fetchMaxSize   int64
	fetchTimeout   int
	fetchIngest    bool
	fetchDataType  string
	fetchSinkType  string
	fetchVerbose   bool
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch ad data deliveries from AWS S3",
	Long: `Fetch ad data delivery files stored in AWS S3 buckets.

This command discovers and downloads data files from S3 into a local spool
directory, maintaining state to enable resumable fetching and avoid
duplicates. With --ingest, each file is ingested right after download.

Examples:
  # Fetch all data files from an S3 bucket
  adprocessor fetch --bucket ad-deliveries

  # Fetch files with a specific prefix
  adprocessor fetch --bucket ad-deliveries --prefix 2024/01/

  # Fetch and ingest each file as it arrives
  adprocessor fetch --bucket ad-deliveries --ingest --sink console

  # Resume fetching from previous state
  adprocessor fetch --bucket ad-deliveries --state-file ./fetch-state.json`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchBucket, "bucket", "", "S3 bucket name (required)")
	fetchCmd.Flags().StringVar(&fetchPrefix, "prefix", "", "S3 prefix to filter objects")
	fetchCmd.Flags().StringVar(&fetchRegion, "region", "us-east-1", "AWS region")

	fetchCmd.Flags().StringVar(&fetchSpoolDir, "spool-dir", "./spool", "Local spool directory for downloaded files")
	fetchCmd.Flags().StringVar(&fetchStateFile, "state-file", "", "State file path for resumable fetching")

	fetchCmd.Flags().Int64Var(&fetchMinSize, "min-size", 0, "Minimum object size in bytes (0 disables the bound)")
	fetchCmd.Flags().Int64Var(&fetchMaxSize, "max-size", 0, "Maximum object size in bytes (0 disables the bound)")
	fetchCmd.Flags().IntVar(&fetchTimeout, "timeout", 300, "Download timeout in seconds")

	fetchCmd.Flags().BoolVar(&fetchIngest, "ingest", false, "Ingest each file after download")
	fetchCmd.Flags().StringVar(&fetchDataType, "type", "auto", "Data type for ingestion (impressions, clicks, bidrequests, auto)")
	fetchCmd.Flags().StringVar(&fetchSinkType, "sink", "console", "Storage sink for ingestion (console, discard)")
	fetchCmd.Flags().BoolVarP(&fetchVerbose, "verbose", "v", false, "Enable verbose logging")

	fetchCmd.MarkFlagRequired("bucket")
}

func runFetch(cmd *cobra.Command, args []string) error {
	fetchConfig := adprocessor.FetchConfig{
		Bucket: fetchBucket,
		Prefix: fetchPrefix,
		Region: fetchRegion,

		TimeoutSeconds: fetchTimeout,
		SpoolDir:       fetchSpoolDir,
		MinSizeBytes:   fetchMinSize,
		MaxSizeBytes:   fetchMaxSize,

		StateFilePath: fetchStateFile,

		IngestAfterFetch: fetchIngest,
		IngestConfig: adprocessor.Config{
			InputPath: "", // Will be set per file
			DataType:  adprocessor.DataType(fetchDataType),
			SinkType:  fetchSinkType,
			LogLevel:  getLogLevel(fetchVerbose),
		},
	}

	// Set default state file if not provided
	if fetchConfig.StateFilePath == "" {
		fetchConfig.StateFilePath = filepath.Join(fetchSpoolDir, fmt.Sprintf("%s-fetch-state.json", fetchBucket))
	}

	if err := fetchConfig.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, _ := logging.New("", "", getLogLevel(fetchVerbose))

	var sink adprocessor.StorageSink
	if fetchIngest {
		factory := adprocessor.NewSinkFactory()
		var err error
		sink, err = factory.CreateSink(fetchSinkType)
		if err != nil {
			return fmt.Errorf("failed to create sink: %v", err)
		}
		defer sink.Close()
	}

	manager, err := adprocessor.NewFetchManagerFromConfig(context.Background(), fetchConfig, sink, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize fetch manager: %w", err)
	}

	if err := manager.FetchBucket(fetchConfig); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	displayFetchStats(manager.GetFetchStats(), manager.LatencySummary())

	return nil
}

func getLogLevel(verbose bool) string {
	if verbose {
		return "debug"
	}
	return "info"
}

func displayFetchStats(stats adprocessor.FetchStats, latency string) {
	fmt.Println("\n=== Fetch Summary ===")
	fmt.Printf("Total objects discovered: %d\n", stats.TotalObjects)
	fmt.Printf("Objects fetched: %d\n", stats.FetchedObjects)
	fmt.Printf("Objects failed: %d\n", stats.FailedObjects)
	fmt.Printf("Objects skipped (already fetched): %d\n", stats.SkippedObjects)

	if stats.FetchedObjects > 0 {
		fmt.Printf("\nDownload statistics:\n")
		fmt.Printf("  Total fetch time: %v\n", stats.TotalFetchTime)
		fmt.Printf("  Average throughput: %.2f MB/s\n", stats.Throughput())
		fmt.Printf("  Latency: %s\n", latency)
	}

	if stats.TotalBytes > 0 {
		fmt.Printf("\nData volume:\n")
		fmt.Printf("  Total data downloaded: %.2f MB\n", float64(stats.TotalBytes)/(1024*1024))
	}
}
