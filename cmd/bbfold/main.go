package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bbfold/bbfold/pkg/batch"
	"github.com/bbfold/bbfold/pkg/block"
	"github.com/bbfold/bbfold/pkg/cfgstore"
	"github.com/bbfold/bbfold/pkg/fixture"
	"github.com/bbfold/bbfold/pkg/match"
	"github.com/bbfold/bbfold/pkg/prime"
	"github.com/bbfold/bbfold/pkg/result"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bbfold",
		Short: "Find duplicated/inlined control-flow subgraphs in a disassembled function",
	}

	var primesPath string
	rootCmd.PersistentFlags().StringVar(&primesPath, "primes", "", "Prime table cache file (regenerated on miss)")

	// analyze command
	var analyzeFixture string
	var analyzeFuncStr string
	var minSize int
	var minHeadSize int
	var outPath string
	var format string

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one function from a fixture and report matched classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			funcAddr, err := parseAddr(analyzeFuncStr)
			if err != nil {
				return fmt.Errorf("--func: %w", err)
			}

			f, err := fixture.Load(analyzeFixture)
			if err != nil {
				return err
			}
			primes, err := loadPrimes(primesPath)
			if err != nil {
				return err
			}

			store, err := match.BuildFromCFG(f, f, funcAddr, primes)
			if err != nil {
				return err
			}
			m := match.New(store, block.NewFingerprinter(f, primes))
			if minSize > 0 {
				m.MinFunctionSize = minSize
			}
			m.MinFunctionHeadSize = minHeadSize

			classes, err := m.Analyze()
			if err != nil {
				return err
			}
			fmt.Printf("Found %d matched classes\n", len(classes))

			return emit(classes, store, outPath, format)
		},
	}
	analyzeCmd.Flags().StringVar(&analyzeFixture, "fixture", "", "Path to JSON fixture file")
	analyzeCmd.Flags().StringVar(&analyzeFuncStr, "func", "", "Function entry address (hex, 0x prefix optional)")
	analyzeCmd.Flags().IntVar(&minSize, "min-size", 4, "Minimum matched subgraph size")
	analyzeCmd.Flags().IntVar(&minHeadSize, "min-head", 0, "Minimum head-block coverage check (0 disables)")
	analyzeCmd.Flags().StringVar(&outPath, "out", "", "Output file (default stdout)")
	analyzeCmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	_ = analyzeCmd.MarkFlagRequired("fixture")
	_ = analyzeCmd.MarkFlagRequired("func")

	// batch command
	var batchDir string
	var numWorkers int
	var verbose bool

	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every function in every fixture file under a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := os.ReadDir(batchDir)
			if err != nil {
				return err
			}
			primes, err := loadPrimes(primesPath)
			if err != nil {
				return err
			}

			var tasks []batch.Task
			for _, e := range entries {
				if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
					continue
				}
				f, err := fixture.Load(batchDir + "/" + e.Name())
				if err != nil {
					return fmt.Errorf("%s: %w", e.Name(), err)
				}
				for _, addr := range f.FunctionAddrs() {
					tasks = append(tasks, batch.Task{
						FuncAddr: addr, Decoder: f, Builder: f, Primes: primes,
						MinFunctionSize: minSize, MinFunctionHeadSize: minHeadSize,
					})
				}
			}

			fmt.Printf("Analyzing %d functions across %d workers\n", len(tasks), numWorkers)
			wp := batch.NewWorkerPool(batch.Config{NumWorkers: numWorkers, Verbose: verbose})
			outcomes := wp.Run(tasks)

			total := 0
			for _, o := range outcomes {
				if o.Err != nil {
					fmt.Fprintf(os.Stderr, "  %#x: %v\n", o.FuncAddr, o.Err)
					continue
				}
				total += len(o.Classes)
			}
			fmt.Printf("Done: %d classes found across %d functions\n", total, len(tasks))
			return nil
		},
	}
	batchCmd.Flags().StringVar(&batchDir, "fixtures", "", "Directory of JSON fixture files")
	batchCmd.Flags().IntVar(&numWorkers, "workers", 0, "Number of workers (0 = NumCPU)")
	batchCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	batchCmd.Flags().IntVar(&minSize, "min-size", 4, "Minimum matched subgraph size")
	batchCmd.Flags().IntVar(&minHeadSize, "min-head", 0, "Minimum head-block coverage check (0 disables)")
	_ = batchCmd.MarkFlagRequired("fixtures")

	// similar command
	var similarFixture string
	var similarFuncStr string
	var nodesStr string

	similarCmd := &cobra.Command{
		Use:   "similar",
		Short: "Find every matched subgraph containing a given node-id set",
		RunE: func(cmd *cobra.Command, args []string) error {
			funcAddr, err := parseAddr(similarFuncStr)
			if err != nil {
				return fmt.Errorf("--func: %w", err)
			}
			nodeIDs, err := parseIntList(nodesStr)
			if err != nil {
				return fmt.Errorf("--nodes: %w", err)
			}

			f, err := fixture.Load(similarFixture)
			if err != nil {
				return err
			}
			primes, err := loadPrimes(primesPath)
			if err != nil {
				return err
			}

			store, err := match.BuildFromCFG(f, f, funcAddr, primes)
			if err != nil {
				return err
			}
			m := match.New(store, block.NewFingerprinter(f, primes))
			if _, err := m.Analyze(); err != nil {
				return err
			}

			for _, subset := range m.FindSimilar(nodeIDs) {
				fmt.Println(subset)
			}
			return nil
		},
	}
	similarCmd.Flags().StringVar(&similarFixture, "fixture", "", "Path to JSON fixture file")
	similarCmd.Flags().StringVar(&similarFuncStr, "func", "", "Function entry address (hex, 0x prefix optional)")
	similarCmd.Flags().StringVar(&nodesStr, "nodes", "", "Comma-separated node id set")
	_ = similarCmd.MarkFlagRequired("fixture")
	_ = similarCmd.MarkFlagRequired("func")
	_ = similarCmd.MarkFlagRequired("nodes")

	// primes command
	var primeCount int
	var primeOut string

	primesCmd := &cobra.Command{
		Use:   "primes",
		Short: "Generate and cache a prime table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if primeOut == "" {
				return fmt.Errorf("--out is required")
			}
			t, err := prime.LoadOrGenerate(primeOut, primeCount)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d primes to %s\n", t.Len(), primeOut)
			return nil
		},
	}
	primesCmd.Flags().IntVar(&primeCount, "count", prime.N, "Number of primes to generate")
	primesCmd.Flags().StringVar(&primeOut, "out", "", "Output cache file path")

	rootCmd.AddCommand(analyzeCmd, batchCmd, similarCmd, primesCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadPrimes(path string) (*prime.Table, error) {
	if path == "" {
		return prime.NewTable(prime.Sieve(prime.N))
	}
	return prime.LoadOrGenerate(path, prime.N)
}

func emit(classes []match.Class, store *cfgstore.Store, outPath, format string) error {
	w := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeClasses(f, classes, store, format)
	}
	return writeClasses(w, classes, store, format)
}

func writeClasses(w *os.File, classes []match.Class, store *cfgstore.Store, format string) error {
	switch format {
	case "json":
		return result.WriteJSON(w, classes)
	case "text", "":
		return result.WriteText(w, classes, store)
	default:
		return fmt.Errorf("unknown --format %q: use text or json", format)
	}
}

func parseAddr(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	return strconv.ParseUint(s, 16, 64)
}

func parseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no node ids parsed from %q", s)
	}
	return out, nil
}
