package cli

import (
	"context"

	"github.com/spf13/cobra"

	"gearhead/internal/app"
	"gearhead/pkg/fipe"
)

func newCatalogCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the FIPE vehicle catalog",
	}

	brands := &cobra.Command{
		Use:   "brands [query]",
		Short: "List brands, best matches first when a query is given",
		Args:  cobra.MaximumNArgs(1),
	}
	brands.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		options, err := a.Catalog.SearchBrands(ctx, cmd.Flags().Arg(0))
		if err != nil {
			return err
		}
		return printOptions(p, options)
	})

	models := &cobra.Command{
		Use:   "models <brand> [query]",
		Short: "List the models of a brand (code or name)",
		Args:  cobra.RangeArgs(1, 2),
	}
	models.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		options, err := a.Catalog.SearchModels(ctx, cmd.Flags().Arg(0), cmd.Flags().Arg(1))
		if err != nil {
			return err
		}
		return printOptions(p, options)
	})

	cmd.AddCommand(brands, models)
	return cmd
}

func printOptions(p *printer, options []fipe.Option) error {
	if len(options) == 0 {
		p.Print("No matches")
		return nil
	}
	rows := make([][]string, 0, len(options))
	for _, o := range options {
		rows = append(rows, []string{o.Code, o.Name})
	}
	return p.Table([]string{"Code", "Name"}, rows)
}
