package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"taskboard/internal/merge"
	"taskboard/internal/taskcsv"
)

var (
	// Used for flags.
	basePath     string
	incomingPath string
	outputPath   string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "taskctl",
		Short: "Offline tools for taskboard CSV snapshots.",
		Long:  `Taskctl works on exported taskboard CSV snapshots without a running server: merge two snapshots with the same reconciliation rules the sync rooms use, or summarize one.`,
	}

	// mergeCmd reconciles two snapshots
	mergeCmd = &cobra.Command{
		Use:   "merge",
		Short: "Merge an incoming snapshot into a base snapshot.",
		Long:  `Merges the incoming CSV snapshot into the base snapshot using last-writer-wins reconciliation and prints the added/updated/unchanged counts. The merged snapshot is written to the output path.`,
		Run:   runMergeCommand,
	}

	// statsCmd summarizes one snapshot
	statsCmd = &cobra.Command{
		Use:   "stats [snapshot.csv]",
		Short: "Summarize a snapshot by status and project.",
		Args:  cobra.ExactArgs(1),
		Run:   runStatsCommand,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	mergeCmd.Flags().StringVar(&basePath, "base", "", "Path to the base CSV snapshot (required)")
	mergeCmd.Flags().StringVar(&incomingPath, "incoming", "", "Path to the incoming CSV snapshot (required)")
	mergeCmd.Flags().StringVarP(&outputPath, "output", "o", "merged.csv", "Path for the merged snapshot")
	mergeCmd.MarkFlagRequired("base")
	mergeCmd.MarkFlagRequired("incoming")

	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(statsCmd)
}

func loadSnapshot(path string) ([]taskcsv.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return taskcsv.Decode(f)
}

func runMergeCommand(cmd *cobra.Command, args []string) {
	base, err := loadSnapshot(basePath)
	if err != nil {
		slog.Error("could not load base snapshot", "path", basePath, "error", err)
		os.Exit(1)
	}
	incoming, err := loadSnapshot(incomingPath)
	if err != nil {
		slog.Error("could not load incoming snapshot", "path", incomingPath, "error", err)
		os.Exit(1)
	}

	result, merged := merge.Reconcile(base, incoming)

	data, err := taskcsv.Encode(merged)
	if err != nil {
		slog.Error("could not encode merged snapshot", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		slog.Error("could not write merged snapshot", "path", outputPath, "error", err)
		os.Exit(1)
	}

	fmt.Printf("Merged %d records into %s\n", result.Total(), outputPath)
	fmt.Printf("  added:     %d\n", result.Added)
	fmt.Printf("  updated:   %d\n", result.Updated)
	fmt.Printf("  unchanged: %d\n", result.Unchanged)
}

func runStatsCommand(cmd *cobra.Command, args []string) {
	records, err := loadSnapshot(args[0])
	if err != nil {
		slog.Error("could not load snapshot", "path", args[0], "error", err)
		os.Exit(1)
	}

	byStatus := map[string]int{}
	byProject := map[string]int{}
	archived := 0
	for _, rec := range records {
		byStatus[rec.Status]++
		if rec.Project != "" {
			byProject[rec.Project]++
		}
		if rec.IsArchived {
			archived++
		}
	}

	fmt.Printf("%d tasks (%d archived)\n\n", len(records), archived)

	fmt.Println("By status:")
	for _, status := range sortedKeys(byStatus) {
		fmt.Printf("  %-12s %d\n", status, byStatus[status])
	}

	if len(byProject) > 0 {
		fmt.Println("\nBy project:")
		for _, project := range sortedKeys(byProject) {
			fmt.Printf("  %-12s %d\n", project, byProject[project])
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func main() {
	Execute()
}
