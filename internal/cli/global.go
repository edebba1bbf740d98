package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/thoas/go-funk"
	"github.com/thomhuang/shipzone/internal/config"
	"github.com/thomhuang/shipzone/internal/geo"
	"github.com/thomhuang/shipzone/internal/postal"
	"github.com/thomhuang/shipzone/internal/shipping"
	"github.com/thomhuang/shipzone/pkg/log"
	"github.com/thomhuang/shipzone/pkg/metrics"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

const (
	jsonFormat = "json"
	yamlFormat = "yaml"
)

var (
	legalOutputTypes = []string{jsonFormat, yamlFormat}
)

// GlobalOptions are the dataset and logging flags every command shares.
// Flags left empty fall back to the environment configuration.
type GlobalOptions struct {
	DatasetPath string
	DatasetURL  string
	LogLevel    string

	cfg        *config.Config
	out        io.Writer
	restoreLog func()
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.DatasetPath, "dataset", o.DatasetPath, "Path to a postal code CSV, GeoNames .txt or .zip file")
	fs.StringVar(&o.DatasetURL, "dataset-url", o.DatasetURL, fmt.Sprintf("URL to download the dataset from, e.g. %s", postal.GeoNamesURL))
	fs.StringVar(&o.LogLevel, "log-level", o.LogLevel, "Log level (debug, info, warn, error)")
}

func (o *GlobalOptions) Complete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}
	if o.DatasetPath != "" {
		cfg.Dataset.Path = o.DatasetPath
	}
	if o.DatasetURL != "" {
		cfg.Dataset.URL = o.DatasetURL
	}
	if o.LogLevel != "" {
		cfg.Service.LogLevel = o.LogLevel
	}
	o.cfg = cfg
	o.out = cmd.OutOrStdout()
	o.restoreLog = log.Setup(cfg.Service.LogLevel)
	return nil
}

func (o *GlobalOptions) Validate(args []string) error {
	return nil
}

// Close flushes the logger installed by Complete.
func (o *GlobalOptions) Close() {
	if o.restoreLog != nil {
		o.restoreLog()
	}
}

// Out is where command results are printed.
func (o *GlobalOptions) Out() io.Writer {
	return o.out
}

// Config returns the configuration resolved by Complete.
func (o *GlobalOptions) Config() *config.Config {
	return o.cfg
}

// NewCache returns a lazily loading postal cache for cfg that feeds the
// dataset gauges.
func NewCache(cfg *config.Config) (*postal.Cache, error) {
	source, err := DatasetSource(cfg)
	if err != nil {
		return nil, err
	}
	zap.S().Named("postal").Debugw("postal dataset configured", "source", source.String())
	return postal.NewCache(source,
		postal.WithDomesticCountry(cfg.Dataset.DomesticCountry),
		postal.WithLoadHook(func(idx *postal.Index) {
			metrics.UpdateDatasetMetrics(idx.Len(), idx.Report().Skipped())
		}),
	), nil
}

// NewEstimator returns the estimator configured by cfg on top of cache.
func NewEstimator(cfg *config.Config, cache *postal.Cache) *shipping.Estimator {
	return shipping.NewEstimator(cache,
		shipping.WithOrigin(geo.Point{Lat: cfg.Origin.Latitude, Lon: cfg.Origin.Longitude}),
		shipping.WithPrecomputed(cfg.Dataset.TrustPrecomputed),
	)
}

// DatasetSource picks the dataset location: a local path first, then an
// object store bucket, then a URL and finally the bundled sample.
func DatasetSource(cfg *config.Config) (postal.Source, error) {
	switch {
	case cfg.Dataset.Path != "":
		return &postal.FileSource{Path: cfg.Dataset.Path, ArchiveMember: cfg.Dataset.ArchiveMember}, nil
	case cfg.Dataset.Bucket != "":
		source, err := postal.NewMinioSource(
			postal.WithEndpoint(cfg.ObjectStore.Endpoint),
			postal.WithBucket(cfg.Dataset.Bucket),
			postal.WithObject(cfg.Dataset.Object),
			postal.WithArchiveMember(cfg.Dataset.ArchiveMember),
			postal.WithAccessKey(cfg.ObjectStore.AccessKey),
			postal.WithSecretKey(cfg.ObjectStore.SecretKey),
			postal.WithSSL(cfg.ObjectStore.UseSSL),
		)
		if err != nil {
			return nil, err
		}
		return source, nil
	case cfg.Dataset.URL != "":
		return &postal.HTTPSource{URL: cfg.Dataset.URL, CacheFile: cfg.Dataset.CacheFile, ArchiveMember: cfg.Dataset.ArchiveMember}, nil
	default:
		return postal.SampleSource(), nil
	}
}

func validateOutput(output string) error {
	if funk.ContainsString(legalOutputTypes, output) {
		return nil
	}
	return fmt.Errorf("output format must be one of %s", strings.Join(legalOutputTypes, ", "))
}

func printOutput(w io.Writer, output string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if output == yamlFormat {
		if data, err = yaml.JSONToYAML(data); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(string(data), "\n"))
	return err
}
