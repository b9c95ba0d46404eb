package admin

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/dzakcloud/internal/server/importer"
	"github.com/spf13/cobra"
)

func newImportCommand(opts *options) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import legacy JSON data (users, payments, contacts)",
		Long: `Reads users.json, payments.json and contacts.json from a local directory
or from s3://bucket/prefix and inserts records that are not present yet.
Running it again is harmless.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.open(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if source == "" {
				source = e.config.ImportSource
			}

			if err := e.migrate(cmd.Context()); err != nil {
				return err
			}

			src, err := importer.NewSource(cmd.Context(), e.config, source)
			if err != nil {
				return err
			}

			results, err := importer.New(e.db, e.repomanager, e.logger).Run(cmd.Context(), src)
			for _, r := range results {
				fmt.Fprintln(cmd.OutOrStdout(), r.String())
			}
			if err != nil {
				return err
			}

			var errs []error
			for _, r := range results {
				if r.Err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", r.Entity, r.Err))
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "directory or s3://bucket/prefix (default from config)")
	return cmd
}
