package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Database    *dbConfig
	Service     *svcConfig
	Dataset     *datasetConfig
	Origin      *originConfig
	ObjectStore *objectStoreConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"shipzone"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"SHIPZONE_ADDRESS" default:":8080"`
	MetricsAddress  string `envconfig:"SHIPZONE_METRICS_ADDRESS" default:":8081"`
	LogLevel        string `envconfig:"SHIPZONE_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"SHIPZONE_MIGRATIONS_FOLDER" default:""`
	Workers         int    `envconfig:"SHIPZONE_WORKERS" default:"0"`
}

// datasetConfig selects where the postal code table comes from. Path wins
// over Bucket, Bucket wins over URL and the embedded sample is used when
// nothing is set.
type datasetConfig struct {
	Path             string `envconfig:"SHIPZONE_DATASET_PATH" default:""`
	URL              string `envconfig:"SHIPZONE_DATASET_URL" default:""`
	CacheFile        string `envconfig:"SHIPZONE_DATASET_CACHE_FILE" default:"data/US.zip"`
	ArchiveMember    string `envconfig:"SHIPZONE_DATASET_ARCHIVE_MEMBER" default:"US.txt"`
	Bucket           string `envconfig:"SHIPZONE_DATASET_BUCKET" default:""`
	Object           string `envconfig:"SHIPZONE_DATASET_OBJECT" default:""`
	DomesticCountry  string `envconfig:"SHIPZONE_DOMESTIC_COUNTRY" default:"US"`
	TrustPrecomputed bool   `envconfig:"SHIPZONE_TRUST_PRECOMPUTED" default:"true"`
	Preload          bool   `envconfig:"SHIPZONE_DATASET_PRELOAD" default:"false"`
}

type originConfig struct {
	Latitude  float64 `envconfig:"SHIPZONE_ORIGIN_LAT" default:"40.7062"`
	Longitude float64 `envconfig:"SHIPZONE_ORIGIN_LON" default:"-73.6187"`
}

type objectStoreConfig struct {
	Endpoint  string `envconfig:"SHIPZONE_S3_ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"SHIPZONE_S3_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"SHIPZONE_S3_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"SHIPZONE_S3_USE_SSL" default:"false"`
}

// Load reads the environment into a fresh Config.
func Load() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
