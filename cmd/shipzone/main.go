package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/thomhuang/shipzone/internal/cli"
)

func main() {
	command := NewShipzoneCommand()
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}

func NewShipzoneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shipzone [flags] [options]",
		Short: "shipzone estimates domestic shipping costs from the warehouse origin.",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
			os.Exit(1)
		},
	}
	cmd.AddCommand(cli.NewCmdServe())
	cmd.AddCommand(cli.NewCmdMigrate())
	cmd.AddCommand(cli.NewCmdQuote())
	cmd.AddCommand(cli.NewCmdNearby())
	cmd.AddCommand(cli.NewCmdExportNearby())
	cmd.AddCommand(cli.NewCmdRateCard())
	cmd.AddCommand(cli.NewCmdVersion())

	return cmd
}
