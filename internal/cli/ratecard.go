package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thomhuang/shipzone/internal/ratecard"
	"go.uber.org/zap"
)

type RateCardOptions struct {
	GlobalOptions

	Out       string
	Distances []float64
}

func DefaultRateCardOptions() *RateCardOptions {
	return &RateCardOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Out:           "rates.xlsx",
		Distances:     ratecard.DefaultDistances,
	}
}

func NewCmdRateCard() *cobra.Command {
	o := DefaultRateCardOptions()
	cmd := &cobra.Command{
		Use:   "ratecard",
		Short: "Write the zone table and sample quotes to an Excel workbook.",
		Args:  cobra.NoArgs,
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

func (o *RateCardOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVar(&o.Out, "out", o.Out, "Workbook file to write")
	fs.Float64SliceVar(&o.Distances, "distances", o.Distances, "Distances in miles to price on the quotes sheet")
}

func (o *RateCardOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	for _, d := range o.Distances {
		if d < 0 {
			return fmt.Errorf("distances must not be negative: %v", d)
		}
	}
	return nil
}

func (o *RateCardOptions) Run(ctx context.Context, args []string) error {
	// the rate card only prices distances, the dataset is never read
	estimator := NewEstimator(o.Config(), nil)

	f, err := os.Create(o.Out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", o.Out, err)
	}
	defer f.Close()

	if err := ratecard.Write(f, estimator, o.Distances); err != nil {
		return err
	}

	zap.S().Named("ratecard").Infow("rate card written", "file", o.Out, "quotes", len(o.Distances))
	return nil
}
