package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/maplist-import/internal/adapter/postgres"
	"github.com/couchcryptid/maplist-import/internal/domain"
	"github.com/couchcryptid/maplist-import/internal/pipeline"
)

var (
	importCollection string
	importUser       string
	collectionOwner  string
	collectionName   string
)

func init() {
	importCmd.Flags().StringVar(&importCollection, "collection", "", "Target collection id.")
	importCmd.Flags().StringVar(&importUser, "user", "", "Id of the user the locations are imported as.")
	_ = importCmd.MarkFlagRequired("collection")
	_ = importCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(importCmd)

	createCollectionCmd.Flags().StringVar(&collectionOwner, "owner", "", "Id of the owning user.")
	createCollectionCmd.Flags().StringVar(&collectionName, "name", "", "Display name.")
	_ = createCollectionCmd.MarkFlagRequired("owner")
	collectionCmd.AddCommand(createCollectionCmd)
	rootCmd.AddCommand(collectionCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <list-url> --collection <id> --user <id>",
	Short: "Parses a shared list and imports every location into a collection.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}

		locations, err := e.newParser().Parse(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		items := make([]domain.ImportItem, len(locations))
		for i, loc := range locations {
			items[i] = domain.ImportItemFrom(loc)
		}

		return e.withStore(cmd.Context(), func(store *postgres.Store) error {
			im := pipeline.NewImporter(store, nil, e.clock, e.cfg.ImportItemDelay, e.logger, e.metrics)
			outcome, err := im.Import(cmd.Context(), importCollection, domain.Caller{ID: importUser}, items)
			renderOutcome(cmd.OutOrStdout(), outcome)
			return err
		})
	},
}

var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manages collections.",
}

var createCollectionCmd = &cobra.Command{
	Use:   "create <id> --owner <user-id>",
	Short: "Creates an empty collection.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := loadEnv()
		if err != nil {
			return err
		}
		return e.withStore(cmd.Context(), func(store *postgres.Store) error {
			if err := store.CreateCollection(cmd.Context(), args[0], collectionOwner, collectionName); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "collection %s created\n", args[0])
			return nil
		})
	},
}

// withStore opens the database, applies the schema, and runs fn against it.
func (e *env) withStore(ctx context.Context, fn func(*postgres.Store) error) error {
	if err := e.cfg.RequireDatabase(); err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, e.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}
	err = fn(postgres.NewStore(pool, e.logger))
	if errors.Is(err, domain.ErrCollectionNotFound) {
		return fmt.Errorf("%w (create it with `maplist collection create`)", err)
	}
	return err
}
