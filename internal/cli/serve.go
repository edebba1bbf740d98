package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	apiserver "github.com/thomhuang/shipzone/internal/api_server"
	"github.com/thomhuang/shipzone/internal/store"
	"github.com/thomhuang/shipzone/pkg/migrations"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type ServeOptions struct {
	GlobalOptions
}

func DefaultServeOptions() *ServeOptions {
	return &ServeOptions{
		GlobalOptions: DefaultGlobalOptions(),
	}
}

func NewCmdServe() *cobra.Command {
	o := DefaultServeOptions()
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the shipping API",
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

func (o *ServeOptions) Run(ctx context.Context, args []string) error {
	logger := zap.S().Named("serve")
	logger.Info("Starting API service")
	defer logger.Info("API service stopped")

	cfg := o.Config()

	logger.Info("Initializing data store")
	db, err := store.InitDB(cfg)
	if err != nil {
		return fmt.Errorf("initializing data store: %w", err)
	}

	s := store.NewStore(db)
	defer s.Close()

	if err := migrations.MigrateStore(db, cfg); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	cache, err := NewCache(cfg)
	if err != nil {
		return fmt.Errorf("configuring postal dataset: %w", err)
	}
	estimator := NewEstimator(cfg, cache)

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
	defer cancel()

	apiListener, err := newListener(cfg.Service.Address)
	if err != nil {
		return fmt.Errorf("creating listener: %w", err)
	}
	metricsListener, err := newListener(cfg.Service.MetricsAddress)
	if err != nil {
		_ = apiListener.Close()
		return fmt.Errorf("creating metrics listener: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return apiserver.New(cfg, s, estimator, apiListener).Run(ctx)
	})
	g.Go(func() error {
		defer cancel()
		return apiserver.NewMetricServer(cfg.Service.MetricsAddress, metricsListener).Run(ctx)
	})

	return g.Wait()
}

func newListener(address string) (net.Listener, error) {
	if address == "" {
		address = "localhost:0"
	}
	return net.Listen("tcp", address)
}
