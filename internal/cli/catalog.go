package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacksolve/pkg/deps/catalog"
	"github.com/matzehuels/stacksolve/pkg/deps/mongostore"
	"github.com/matzehuels/stacksolve/pkg/errors"
)

// catalogCommand creates the catalog management command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and import TOML package catalogs",
	}

	cmd.AddCommand(c.catalogCheckCommand())
	cmd.AddCommand(c.catalogImportCommand())

	return cmd
}

// catalogCheckCommand creates the "catalog check" subcommand.
func (c *CLI) catalogCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Report unknown or self references in a catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			problems := cat.Check()
			if len(problems) == 0 {
				printSuccess("%d packages, no problems", cat.Len())
				return nil
			}
			for _, p := range problems {
				printWarning("%s", p)
			}
			return errors.New(errors.ErrCodeInvalidCatalog, "%d problem(s) in %s", len(problems), args[0])
		},
	}
}

// catalogImportCommand creates the "catalog import" subcommand.
func (c *CLI) catalogImportCommand() *cobra.Command {
	var uri, db string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Copy a catalog into MongoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if uri == "" {
				uri = cfg.Store.MongoURI
			}
			if db == "" {
				db = cfg.Store.MongoDB
			}
			if uri == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no MongoDB URI: pass --mongo-uri or set %s", envMongoURI)
			}

			cat, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			docs, err := mongostore.DocumentsFrom(ctx, cat, cat.Names())
			if err != nil {
				return err
			}

			spin := newSpinnerWithContext(ctx, "Connecting to MongoDB...")
			spin.Start()
			store, err := mongostore.Connect(ctx, uri, db)
			if err != nil {
				spin.StopWithError("Connection failed")
				return err
			}
			defer store.Close(ctx)

			spin.Update(fmt.Sprintf("Importing %d packages...", len(docs)))
			if err := store.PutAll(ctx, docs); err != nil {
				spin.StopWithError("Import failed")
				return err
			}
			spin.StopWithSuccess(fmt.Sprintf("Imported %d packages", len(docs)))
			printDetail("Store: %s", store.Name())
			return nil
		},
	}

	cmd.Flags().StringVar(&uri, "mongo-uri", "", "MongoDB URI (env "+envMongoURI+")")
	cmd.Flags().StringVar(&db, "mongo-db", "", "MongoDB database (default: "+mongostore.DefaultDatabase+")")

	return cmd
}
