package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"
	commit  = "dev"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "adprocessor",
	Short: "Ad Data Processor",
	Long: `Ad Data Processor (adprocessor) is a tool for ingesting advertising event data:
impressions (JSON), clicks and conversions (CSV) and bid requests (Avro).

Features:
  - Ingest impression, clicks/conversions and bid request files
  - Fetch data deliveries directly from AWS S3 buckets
  - Pluggable storage sinks (console, discard)
  - Transparent gzip decompression
  - Batch ingestion for multiple files
  - State tracking for resumable S3 fetching

Examples:
  adprocessor ingest -i impressions.json
  adprocessor ingest -d /path/to/deliveries/ -r
  adprocessor fetch --bucket ad-deliveries --prefix 2024/01/ --ingest
  adprocessor info impressions.json
  adprocessor version`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Ad Data Processor v%s\n", version)
		fmt.Println("Use 'adprocessor --help' for available commands")
		fmt.Println("Use 'adprocessor ingest --help' for ingestion options")
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
