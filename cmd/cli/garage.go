package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"gearhead/internal/app"
	garagedomain "gearhead/internal/garage/domain"
	garagedto "gearhead/internal/garage/dto"
)

func newGarageCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "garage",
		Short: "Manage your garage",
	}
	cmd.AddCommand(newGarageAddCommand(opts))
	return cmd
}

func newGarageAddCommand(opts *rootOptions) *cobra.Command {
	req := &garagedto.CreateCarRequest{}
	var (
		transmission, drivetrain, fuel string
		fromCatalog                    bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a car to your garage",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().StringVar(&req.Brand, "brand", "", "make, e.g. Honda")
	cmd.Flags().StringVar(&req.Model, "model", "", "model, e.g. Civic Si")
	cmd.Flags().IntVar(&req.Year, "year", 0, "model year")
	cmd.Flags().StringVar(&req.Color, "color", "", "color")
	cmd.Flags().StringVar(&req.Nickname, "nickname", "", "nickname")
	cmd.Flags().StringVar(&req.Trim, "trim", "", "trim level")
	cmd.Flags().StringVar(&req.Specs.Engine, "engine", "", "engine")
	cmd.Flags().IntVar(&req.Specs.Horsepower, "hp", 0, "horsepower")
	cmd.Flags().IntVar(&req.Specs.Torque, "torque", 0, "torque (kgfm)")
	cmd.Flags().StringVar(&transmission, "transmission", "", "MANUAL, AUTOMATIC, DUAL_CLUTCH or CVT")
	cmd.Flags().StringVar(&drivetrain, "drivetrain", "", "FWD, RWD or AWD")
	cmd.Flags().StringVar(&fuel, "fuel", "", "GASOLINE, ETHANOL, DIESEL, HYBRID, ELECTRIC or FLEX")
	cmd.Flags().StringSliceVar(&req.ModsList, "mod", nil, "a modification (repeatable)")
	cmd.Flags().BoolVar(&fromCatalog, "from-catalog", false, "match --brand and --model against the FIPE catalog")

	cmd.RunE = opts.withApp(func(ctx context.Context, cmd *cobra.Command, a *app.App, p *printer) error {
		if _, err := a.Auth.EnsureSession(ctx); err != nil {
			return err
		}

		req.Specs.Transmission = garagedomain.Transmission(transmission)
		req.Specs.Drivetrain = garagedomain.Drivetrain(drivetrain)
		req.Specs.FuelType = garagedomain.FuelType(fuel)

		if fromCatalog {
			if err := matchCatalog(ctx, a, req); err != nil {
				return err
			}
		}

		car, err := a.Garage.CreateCar(ctx, req)
		if err != nil {
			return err
		}
		p.Success("Added %s %s %d to your garage", car.Brand, car.Model, car.Year)
		return nil
	})
	return cmd
}

// matchCatalog replaces brand and model with their closest FIPE names.
func matchCatalog(ctx context.Context, a *app.App, req *garagedto.CreateCarRequest) error {
	brands, err := a.Catalog.SearchBrands(ctx, req.Brand)
	if err != nil {
		return err
	}
	if len(brands) == 0 {
		return fmt.Errorf("no FIPE brand matches %q", req.Brand)
	}
	models, err := a.Catalog.SearchModels(ctx, brands[0].Code, req.Model)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		return fmt.Errorf("no %s model matches %q", brands[0].Name, req.Model)
	}
	req.Brand = brands[0].Name
	req.Model = models[0].Name
	return nil
}
