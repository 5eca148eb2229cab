// Command mincut runs the distributed minimum-weight graph bipartition
// search against a single input file, simulating the cluster's worker
// ranks as goroutines in one process.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/wilx/mincut/internal/config"
	"github.com/wilx/mincut/internal/coordination"
	"github.com/wilx/mincut/internal/graph"
	"github.com/wilx/mincut/internal/logging"
)

var (
	configPath string
	workers    int
	seed       int64
	logLevel   string
	logFormat  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mincut <path-to-graph-file>",
		Short: "Find a minimum-weight bipartition of a graph",
		Long: `mincut partitions a weighted graph into two sets X and Y, vertex 1
fixed in X, minimizing the total weight of edges crossing the cut. It
searches exhaustively across a configurable number of worker ranks that
steal work from one another and diffuse the best bound found so far,
simulating the cluster with goroutines in a single process.`,
		Args: cobra.ExactArgs(1),
		RunE: runMincut,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to mincut.yaml (optional)")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of worker ranks (0 = use config/default)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed for weight assignment (0 = use config/default)")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "log format: text, json")

	return cmd
}

func runMincut(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("mincut: %w", err)
	}

	if workers > 0 {
		cfg.Search.Workers = workers
	}
	if seed != 0 {
		cfg.Search.Seed = seed
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFormat != "" {
		cfg.Log.Format = logFormat
	}

	log := logging.New(logging.ParseLevel(cfg.Log.Level), os.Stderr, cfg.Log.Format == "json")

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("mincut: opening %s: %w", args[0], err)
	}
	defer f.Close()

	g, err := graph.Load(f, rand.New(rand.NewSource(cfg.Search.Seed)), cfg.Graph.MinWeight, cfg.Graph.MaxWeight)
	if err != nil {
		return fmt.Errorf("mincut: loading graph: %w", err)
	}

	res, err := coordination.RunCluster(context.Background(), g, cfg.Search.Workers, log)
	if err != nil {
		return fmt.Errorf("mincut: %w", err)
	}

	printResult(res)
	return nil
}

func printResult(res *coordination.Result) {
	fmt.Printf("Weight of the best solution: %d\n", res.Weight)

	var setX, setY []int
	for i, inY := range res.Sigma {
		if inY {
			setY = append(setY, i+1)
		} else {
			setX = append(setX, i+1)
		}
	}

	fmt.Print("Set X:")
	for _, v := range setX {
		fmt.Printf(" %d", v)
	}
	fmt.Println()

	fmt.Print("Set Y:")
	for _, v := range setY {
		fmt.Printf(" %d", v)
	}
	fmt.Println()
}
