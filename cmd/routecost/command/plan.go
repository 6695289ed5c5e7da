package command

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"routecost/internal/http/handlers"
	"routecost/internal/service"
	"routecost/internal/types"
)

var planFlags struct {
	origin, destination         string
	originCity, destinationCity string
	weight, length              float64
	width, height               float64
	fragile, highValue          bool
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Quote one shipment and print the JSON response",
	Example: `  routecost plan --origin "Connaught Place, New Delhi" --destination "Agra" --weight 1200
  routecost plan --origin "Andheri East" --origin-city Mumbai --destination Pune --length 120 --width 80 --height 100 --fragile`,
	RunE: runPlan,
}

func init() {
	bindPlanFlags(planCmd)
	_ = planCmd.MarkFlagRequired("origin")
	_ = planCmd.MarkFlagRequired("destination")
}

func bindPlanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&planFlags.origin, "origin", "", "origin address or place name")
	f.StringVar(&planFlags.destination, "destination", "", "destination address or place name")
	f.StringVar(&planFlags.originCity, "origin-city", "", "city hint for the origin")
	f.StringVar(&planFlags.destinationCity, "destination-city", "", "city hint for the destination")
	f.Float64Var(&planFlags.weight, "weight", 0, "total cargo weight in kg")
	f.Float64Var(&planFlags.length, "length", 0, "cargo length in cm")
	f.Float64Var(&planFlags.width, "width", 0, "cargo width in cm")
	f.Float64Var(&planFlags.height, "height", 0, "cargo height in cm")
	f.BoolVar(&planFlags.fragile, "fragile", false, "cargo is fragile")
	f.BoolVar(&planFlags.highValue, "high-value", false, "cargo is high value")
}

// cargoFromFlags only sets the measurements the user actually passed.
func cargoFromFlags(cmd *cobra.Command) *types.Cargo {
	c := &types.Cargo{IsFragile: planFlags.fragile, IsHighValue: planFlags.highValue}
	set := c.IsFragile || c.IsHighValue
	for name, dst := range map[string]**float64{
		"weight": &c.TotalWeightKg,
		"length": &c.LengthCm,
		"width":  &c.WidthCm,
		"height": &c.HeightCm,
	} {
		if cmd.Flags().Changed(name) {
			v, _ := cmd.Flags().GetFloat64(name)
			*dst = &v
			set = true
		}
	}
	if !set {
		return nil
	}
	return c
}

func runPlan(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	plan, err := a.planner.Plan(ctx, service.PlanRequest{
		Origin:          planFlags.origin,
		Destination:     planFlags.destination,
		OriginCity:      planFlags.originCity,
		DestinationCity: planFlags.destinationCity,
		Cargo:           cargoFromFlags(cmd),
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(handlers.NewRouteResponse(plan), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
