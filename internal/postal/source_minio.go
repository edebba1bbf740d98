package postal

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

type MinioOpts func(c *minioConfig)

type minioConfig struct {
	endpoint        string
	bucket          string
	object          string
	archiveMember   string
	accessKey       string
	secretAccessKey string
	useSSL          bool
}

// MinioSource reads the table from an object in an S3 compatible bucket.
type MinioSource struct {
	cfg    *minioConfig
	client *minio.Client
}

func NewMinioSource(opts ...MinioOpts) (*MinioSource, error) {
	cfg := &minioConfig{}
	for _, o := range opts {
		o(cfg)
	}

	if cfg.bucket == "" || cfg.object == "" {
		return nil, errors.New("minio source requires a bucket and an object name")
	}

	minioClient, err := minio.New(cfg.endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.accessKey, cfg.secretAccessKey, ""),
		Secure: cfg.useSSL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating minio client")
	}

	return &MinioSource{cfg: cfg, client: minioClient}, nil
}

func (s *MinioSource) Open(ctx context.Context) (io.ReadCloser, Format, error) {
	object, err := s.client.GetObject(ctx, s.cfg.bucket, s.cfg.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, FormatCSV, errors.Wrapf(err, "getting object %s/%s", s.cfg.bucket, s.cfg.object)
	}
	defer object.Close()

	body, err := io.ReadAll(object)
	if err != nil {
		return nil, FormatCSV, errors.Wrapf(err, "reading object %s/%s", s.cfg.bucket, s.cfg.object)
	}

	return openPayload(body, s.cfg.archiveMember, formatFromName(s.cfg.object))
}

func (s *MinioSource) String() string {
	return "s3://" + s.cfg.bucket + "/" + s.cfg.object
}

func WithEndpoint(endpoint string) MinioOpts {
	return func(c *minioConfig) {
		c.endpoint = endpoint
	}
}

func WithBucket(bucket string) MinioOpts {
	return func(c *minioConfig) {
		c.bucket = bucket
	}
}

func WithObject(object string) MinioOpts {
	return func(c *minioConfig) {
		c.object = object
	}
}

func WithArchiveMember(member string) MinioOpts {
	return func(c *minioConfig) {
		c.archiveMember = member
	}
}

func WithAccessKey(accessKey string) MinioOpts {
	return func(c *minioConfig) {
		c.accessKey = accessKey
	}
}

func WithSecretKey(secretKey string) MinioOpts {
	return func(c *minioConfig) {
		c.secretAccessKey = secretKey
	}
}

func WithSSL(useSSL bool) MinioOpts {
	return func(c *minioConfig) {
		c.useSSL = useSSL
	}
}
