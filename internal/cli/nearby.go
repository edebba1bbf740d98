package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thomhuang/shipzone/internal/service"
)

type NearbyOptions struct {
	GlobalOptions

	RadiusMiles float64
	Output      string
}

func DefaultNearbyOptions() *NearbyOptions {
	return &NearbyOptions{
		GlobalOptions: DefaultGlobalOptions(),
		RadiusMiles:   25,
		Output:        jsonFormat,
	}
}

func NewCmdNearby() *cobra.Command {
	o := DefaultNearbyOptions()
	cmd := &cobra.Command{
		Use:   "nearby POSTAL_CODE",
		Short: "List the postal codes within a radius of a postal code.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			defer o.Close()
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *NearbyOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.Float64VarP(&o.RadiusMiles, "radius", "r", o.RadiusMiles, "Search radius in miles")
	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *NearbyOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.RadiusMiles <= 0 || o.RadiusMiles > service.MaxNearbyRadiusMiles {
		return fmt.Errorf("radius must be in (0, %v] miles", service.MaxNearbyRadiusMiles)
	}
	return validateOutput(o.Output)
}

func (o *NearbyOptions) Run(ctx context.Context, args []string) error {
	cache, err := NewCache(o.Config())
	if err != nil {
		return err
	}

	neighbors, err := service.NewPostalCodeService(cache).Nearby(ctx, args[0], o.RadiusMiles)
	if err != nil {
		return err
	}
	return printOutput(o.Out(), o.Output, neighbors)
}
