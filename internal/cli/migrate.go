package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/pkg/migrations"
	"go.uber.org/zap"
)

type MigrateOptions struct {
	GlobalOptions
}

func DefaultMigrateOptions() *MigrateOptions {
	return &MigrateOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdMigrate() *cobra.Command {
	o := DefaultMigrateOptions()
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the db",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Complete(cmd, args); err != nil {
				return err
			}
			defer o.Close()
			return o.Run(cmd.Context(), args)
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *MigrateOptions) Run(ctx context.Context, args []string) error {
	cfg := o.Config()

	zap.S().Named("migrate").Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initializing data store: %w", err)
	}

	s := store.NewStore(db)
	defer s.Close()

	if err := migrations.MigrateStore(db, cfg); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	zap.S().Named("migrate").Info("Db migrated")
	return nil
}
