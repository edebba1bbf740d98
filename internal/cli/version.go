package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/thomhuang/shipzone/pkg/version"
)

type VersionOptions struct {
	Output string
}

func DefaultVersionOptions() *VersionOptions {
	return &VersionOptions{
		Output: "",
	}
}

func NewCmdVersion() *cobra.Command {
	o := DefaultVersionOptions()
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print shipzone version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if o.Output != "" {
				if err := validateOutput(o.Output); err != nil {
					return err
				}
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVarP(&o.Output, "output", "o", o.Output, fmt.Sprintf("Output format. One of: (%s).", strings.Join(legalOutputTypes, ", ")))
	return cmd
}

func (o *VersionOptions) Run(ctx context.Context, w io.Writer) error {
	versionInfo := version.Get()
	if o.Output != "" {
		return printOutput(w, o.Output, versionInfo)
	}
	_, err := fmt.Fprintf(w, "shipzone Version: %s\n", versionInfo.String())
	return err
}
