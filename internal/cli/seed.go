package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"pdd-quiz-service/internal/bank"
	"pdd-quiz-service/internal/config"
	"pdd-quiz-service/internal/infra/file"
	"pdd-quiz-service/internal/infra/postgres"
)

// NewSeedCmd copies a JSON ticket bank into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	var bankFile string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a JSON ticket bank into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath, bankFile)
		},
	}
	cmd.Flags().StringVar(&bankFile, "file", "", "path to the JSON ticket bank (defaults to bank.file from config)")
	return cmd
}

func runSeed(ctx context.Context, configPath, bankFile string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if bankFile == "" {
		bankFile = cfg.Bank.File
	}
	if bankFile == "" {
		return fmt.Errorf("no bank file given")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	tickets, err := file.NewTicketLoader(bankFile).LoadTickets(ctx)
	if err != nil {
		return err
	}
	// Refuse to store a bank the service would not start with.
	if _, err := bank.New(tickets); err != nil {
		return err
	}

	db := postgres.OpenDB(cfg.Postgres.URL)
	defer db.Close()

	n, err := postgres.SeedTickets(ctx, db, tickets)
	if err != nil {
		return err
	}
	log.Printf("seeded %d tickets from %s", n, bankFile)
	return nil
}
