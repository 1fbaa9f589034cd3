package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"titlechain/infrastructure/config"
	"titlechain/infrastructure/di"
	"titlechain/infrastructure/persistence/dynamodb"
	"titlechain/infrastructure/persistence/memory"
)

var (
	tableName string
	dryRun    bool
)

var rootCmd = &cobra.Command{
	Use:   "seed-acts <acts.json>",
	Short: "Load act records from a JSON file into the acts table",
	Long: `Reads a JSON array of notarial acts and writes each one to the DynamoDB
acts table as PK=ACT#<numero_acte>, SK=METADATA. Existing items are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.Flags().StringVar(&tableName, "table", "", "acts table (defaults to ACTS_TABLE)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse the file and report without writing")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if tableName != "" {
		cfg.ActsTable = tableName
	}

	logger, err := di.ProvideLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	source, err := memory.LoadActRepository(args[0])
	if err != nil {
		return err
	}
	acts, err := source.List(ctx)
	if err != nil {
		return err
	}

	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d acts parsed from %s\n", len(acts), args[0])
		return nil
	}

	awsCfg, err := di.ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}
	repo := dynamodb.NewActRepository(di.ProvideDynamoDBClient(awsCfg), cfg.ActsTable, logger)

	written := 0
	for _, act := range acts {
		if err := repo.PutAct(ctx, act); err != nil {
			return fmt.Errorf("act %s: %w", act.NumeroActe, err)
		}
		written++
	}

	logger.Info("Seeded acts",
		zap.String("table", cfg.ActsTable),
		zap.Int("written", written),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%d acts written to %s\n", written, cfg.ActsTable)
	return nil
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
