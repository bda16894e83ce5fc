package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display version information",
	Long:  `Display detailed version information including build details and runtime information.`,
	Run:   runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("Ad Data Processor\n")
	fmt.Printf("=================\n\n")

	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", commit)
	fmt.Printf("Build Date: %s\n", date)
	fmt.Printf("Go Version: %s\n", runtime.Version())
	fmt.Printf("Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)

	fmt.Printf("\nFeatures:\n")
	fmt.Printf("  ✓ JSON impression ingestion with empty-entry filtering\n")
	fmt.Printf("  ✓ CSV clicks/conversions ingestion\n")
	fmt.Printf("  ✓ Avro bid request ingestion\n")
	fmt.Printf("  ✓ Pluggable storage sinks\n")
	fmt.Printf("  ✓ Batch ingestion for multiple files\n")
	fmt.Printf("  ✓ Memory-efficient gzip decompression\n")
	fmt.Printf("  ✓ Resumable S3 fetching with state tracking\n")
	fmt.Printf("  ✓ Download latency histograms\n")
}
