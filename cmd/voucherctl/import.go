package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fairyhunter13/lazymint/internal/config"
	"github.com/fairyhunter13/lazymint/internal/model"
	"github.com/fairyhunter13/lazymint/internal/price"
	"github.com/fairyhunter13/lazymint/internal/repository"
	"github.com/fairyhunter13/lazymint/internal/service"
	"github.com/fairyhunter13/lazymint/pkg/database"
)

func newImportCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "import <nfts.json|->",
		Short: "Load the asset catalog into the database",
		Long: `Upsert every item of an nfts.json export into the catalog table.

The import runs in one transaction. Database settings come from the
same DB_* environment variables as the API server.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readCatalog(cmd, args[0])
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			defaultPrice, err := price.ParseWei(cfg.Collection.MintPriceWei)
			if err != nil {
				return fmt.Errorf("invalid COLLECTION_MINT_PRICE_WEI: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			pool, err := database.NewPool(ctx, cfg.DB.DSN(), 3)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(ctx, pool); err != nil {
				return err
			}

			svc := service.NewNFTService(pool,
				repository.NewNFTRepository(pool),
				repository.NewMintRepository(pool),
				defaultPrice)

			count, err := svc.Import(ctx, items)
			if err != nil {
				return err
			}

			log.Info().Int("count", count).Str("source", args[0]).Msg("catalog import finished")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d items\n", count)
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "overall import deadline")
	return cmd
}

func readCatalog(cmd *cobra.Command, path string) ([]model.CatalogItem, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var items []model.CatalogItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}
	return items, nil
}
