package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"profnet/domain/core/entities"
	"profnet/domain/network"
	"profnet/infrastructure/config"
	"profnet/infrastructure/di"
	"profnet/infrastructure/persistence/memory"
)

var (
	dryRun    bool
	assignIDs bool
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Load and inspect the professional directory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var importCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Write the records of a JSON export to the configured store",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := memory.LoadFile(args[0])
		if err != nil {
			return err
		}
		prepared, err := prepare(records, assignIDs)
		if err != nil {
			return err
		}
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%d records valid\n", len(prepared))
			return nil
		}

		container, err := newContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		for _, p := range prepared {
			if err := container.Repository.Save(cmd.Context(), p); err != nil {
				return fmt.Errorf("save %s: %w", p.ID, err)
			}
		}
		container.Logger.Info("Import complete",
			zap.Int("records", len(prepared)),
			zap.String("storage", container.Config.StorageBackend),
		)
		return nil
	},
}

var graphCmd = &cobra.Command{
	Use:   "graph <id>",
	Short: "Print the interest network stats of one professional",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		container, err := newContainer(cmd.Context())
		if err != nil {
			return err
		}
		defer container.Close()

		center, err := container.Repository.GetByID(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		roster, err := container.Repository.All(cmd.Context())
		if err != nil {
			return err
		}
		stats := network.Build(center, roster).Stats()
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d nodes (%d professionals, %d interests), %d edges, density %.3f\n",
			center.Name(), stats.NodeCount, stats.ProfessionalCount, stats.InterestCount, stats.EdgeCount, stats.Density)
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate the file without writing")
	importCmd.Flags().BoolVar(&assignIDs, "assign-ids", false, "give records without an _id a generated one")
	rootCmd.AddCommand(importCmd, graphCmd)
}

// prepare validates records and rejects duplicate IDs within the file.
func prepare(records []*entities.Professional, assign bool) ([]*entities.Professional, error) {
	seen := make(map[string]bool, len(records))
	for i, p := range records {
		if p.ID == "" && assign {
			p.ID = uuid.NewString()
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("record %d: duplicate _id %s", i, p.ID)
		}
		seen[p.ID] = true
	}
	return records, nil
}

func newContainer(ctx context.Context) (*di.Container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return di.InitializeContainer(ctx, cfg)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}
