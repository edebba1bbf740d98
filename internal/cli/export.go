package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type ExportNearbyOptions struct {
	GlobalOptions

	RadiusMiles float64
	Workers     int
	Out         string
}

func DefaultExportNearbyOptions() *ExportNearbyOptions {
	return &ExportNearbyOptions{
		GlobalOptions: DefaultGlobalOptions(),
		RadiusMiles:   15,
		Out:           "./NearbyZipCodes.json",
	}
}

func NewCmdExportNearby() *cobra.Command {
	o := DefaultExportNearbyOptions()
	cmd := &cobra.Command{
		Use:   "export-nearby",
		Short: "Write the nearby postal codes of every postal code to a JSON file.",
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

func (o *ExportNearbyOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.Float64VarP(&o.RadiusMiles, "radius", "r", o.RadiusMiles, "Search radius in miles")
	fs.IntVarP(&o.Workers, "workers", "w", o.Workers, "Number of worker goroutines, 0 uses four per CPU")
	fs.StringVar(&o.Out, "out", o.Out, "Output file")
}

func (o *ExportNearbyOptions) Complete(cmd *cobra.Command, args []string) error {
	if err := o.GlobalOptions.Complete(cmd, args); err != nil {
		return err
	}
	if !cmd.Flags().Changed("workers") {
		o.Workers = o.Config().Service.Workers
	}
	return nil
}

func (o *ExportNearbyOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	if o.RadiusMiles <= 0 {
		return fmt.Errorf("radius must be positive: %v", o.RadiusMiles)
	}
	if o.Workers < 0 {
		return fmt.Errorf("workers must not be negative: %d", o.Workers)
	}
	if o.Out == "" {
		return fmt.Errorf("an output file is required")
	}
	return nil
}

func (o *ExportNearbyOptions) Run(ctx context.Context, args []string) error {
	logger := zap.S().Named("export")
	start := time.Now()

	cache, err := NewCache(o.Config())
	if err != nil {
		return err
	}
	idx, err := cache.Index(ctx)
	if err != nil {
		return err
	}

	nearby, err := idx.NearbyAll(ctx, o.RadiusMiles, o.Workers)
	if err != nil {
		return err
	}

	if err := writeJSONFile(o.Out, nearby); err != nil {
		return err
	}

	logger.Infow("nearby postal codes exported",
		"file", o.Out,
		"postal_codes", len(nearby),
		"radius_miles", o.RadiusMiles,
		"time_taken", time.Since(start))
	return nil
}

func writeJSONFile(path string, v any) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", path, err)
	}

	jsonFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer jsonFile.Close()

	if _, err := jsonFile.Write(jsonData); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
