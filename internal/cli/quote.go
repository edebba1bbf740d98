package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thomhuang/shipzone/internal/shipping"
)

type QuoteOptions struct {
	GlobalOptions

	Output string
}

func DefaultQuoteOptions() *QuoteOptions {
	return &QuoteOptions{
		GlobalOptions: DefaultGlobalOptions(),
		Output:        jsonFormat,
	}
}

func NewCmdQuote() *cobra.Command {
	o := DefaultQuoteOptions()
	cmd := &cobra.Command{
		Use:   "quote POSTAL_CODE [POSTAL_CODE...]",
		Short: "Estimate the shipping cost to one or more postal codes.",
		Args:  cobra.MinimumNArgs(1),
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

func (o *QuoteOptions) Bind(fs *pflag.FlagSet) {
	o.GlobalOptions.Bind(fs)

	fs.StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
}

func (o *QuoteOptions) Validate(args []string) error {
	if err := o.GlobalOptions.Validate(args); err != nil {
		return err
	}
	for _, code := range args {
		if !shipping.ValidPostalCode(code) {
			return fmt.Errorf("%w: %q", shipping.ErrInvalidPostalCode, code)
		}
	}
	return validateOutput(o.Output)
}

func (o *QuoteOptions) Run(ctx context.Context, args []string) error {
	cache, err := NewCache(o.Config())
	if err != nil {
		return err
	}
	estimator := NewEstimator(o.Config(), cache)

	quotes := make([]shipping.Quote, 0, len(args))
	for _, code := range args {
		q, err := estimator.Estimate(ctx, code)
		if err != nil {
			return fmt.Errorf("quoting %s: %w", code, err)
		}
		quotes = append(quotes, q)
	}

	if len(quotes) == 1 {
		return printOutput(o.Out(), o.Output, quotes[0])
	}
	return printOutput(o.Out(), o.Output, quotes)
}
