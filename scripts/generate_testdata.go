//go:build ignore
// +build ignore

// generate_testdata.go creates synthetic tremor datasets for benchmarking.
// Usage: go run scripts/generate_testdata.go
//
// Creates:
//
//	testdata/benchmark/small.csv   (100 records)
//	testdata/benchmark/medium.csv  (1000 records)
//	testdata/benchmark/large.csv   (10000 records)
//	testdata/benchmark/sparse.csv  (1000 records, half the demographics missing)
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vanderheijden86/tremorview/pkg/testutil"
)

type datasetSpec struct {
	name    string
	size    int
	missing float64
}

var datasets = []datasetSpec{
	{"small", 100, 0.1},
	{"medium", 1000, 0.1},
	{"large", 10000, 0.1},
	{"sparse", 1000, 0.5},
}

func main() {
	outputDir := "testdata/benchmark"
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	for _, ds := range datasets {
		fmt.Printf("Generating %s dataset (%d records)...\n", ds.name, ds.size)

		cfg := testutil.DefaultConfig()
		cfg.Seed = int64(ds.size) // reproducible per size
		cfg.MissingRate = ds.missing

		data := testutil.ToCSV(testutil.New(cfg).Records(ds.size))
		outputPath := filepath.Join(outputDir, ds.name+".csv")
		if err := os.WriteFile(outputPath, []byte(data), 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write %s: %v\n", outputPath, err)
			os.Exit(1)
		}

		fmt.Printf("  Written %s (%d bytes)\n", outputPath, len(data))
	}

	fmt.Println("\nDone! Test datasets created in", outputDir)
}
