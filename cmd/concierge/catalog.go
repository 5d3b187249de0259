package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/concierge/internal/adapters/driven/catalog"
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/normalisers"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and manage the venue catalog",
	}
	cmd.AddCommand(newCatalogDumpCmd(), newCatalogRefreshCmd(), newCatalogImportCmd())
	return cmd
}

func newCatalogDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the catalog records",
		Long: `Fetch every record from the configured catalog source and print it.
With --documents the normalised document text used for embedding is printed instead.`,
		Args: cobra.NoArgs,
		RunE: runCatalogDump,
	}
	cmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
	cmd.Flags().Bool("documents", false, "print normalised documents instead of raw records")
	return cmd
}

func runCatalogDump(cmd *cobra.Command, _ []string) error {
	output, _ := cmd.Flags().GetString("output")
	if output != "json" && output != "yaml" {
		return fmt.Errorf("unsupported output format %q", output)
	}
	documents, _ := cmd.Flags().GetBool("documents")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := loadApp(ctx, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.source.Fetch(ctx)
	if err != nil {
		return err
	}

	var v any = records
	if documents {
		docs, errs := normalisers.NewRecordNormaliser().NormaliseLenient(records)
		for _, err := range errs {
			a.logger.Warn("skipping catalog record", "error", err)
		}
		v = docs
	}

	return writeAs(cmd.OutOrStdout(), output, v)
}

func writeAs(w io.Writer, format string, v any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newCatalogRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Build the semantic index once and print its status",
		Long: `Fetch and normalise the catalog and embed every document, then print
the resulting index status. Useful to validate credentials and warm the
embedding cache before starting the server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.catalog.Refresh(ctx)
			if err != nil {
				return err
			}
			return writeAs(cmd.OutOrStdout(), "json", status)
		},
	}
}

func newCatalogImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the PostgreSQL venue table with records from a JSON or YAML file",
		Long: `Load records from a JSON or YAML file, validate them and replace the
contents of the venues table. Requires DATABASE_URL.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			if a.venues == nil {
				return errors.New("DATABASE_URL is required to import venues")
			}

			records, err := catalog.NewFileSource(args[0]).Fetch(ctx)
			if err != nil {
				return err
			}
			if _, err := normalisers.NewRecordNormaliser().Normalise(records); err != nil {
				var missing *domain.MissingRequiredFieldError
				if errors.As(err, &missing) {
					return fmt.Errorf("record %d (%s) is missing %s", missing.Position, missing.RecordID, missing.Field)
				}
				return err
			}

			if err := a.venues.Replace(ctx, records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d venues\n", len(records))
			return nil
		},
	}
}
