package postal

import (
	"archive/zip"
	"bytes"
	"context"
	_ "embed"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Source opens the raw postal code table.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, Format, error)
	String() string
}

//go:embed data/zip_codes_sample.csv
var sampleDataset []byte

var zipMagic = []byte("PK\x03\x04")

// DefaultArchiveMember is the table extracted from a GeoNames country archive.
const DefaultArchiveMember = "US.txt"

// GeoNamesURL is the public GeoNames postal code dump for the United States.
const GeoNamesURL = "https://download.geonames.org/export/zip/US.zip"

// FileSource reads a table from the local filesystem. A .zip file is
// treated as a GeoNames archive.
type FileSource struct {
	Path          string
	ArchiveMember string
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, Format, error) {
	body, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, FormatCSV, errors.Wrapf(err, "reading dataset file %s", s.Path)
	}
	return openPayload(body, s.ArchiveMember, formatFromName(s.Path))
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}

// HTTPSource downloads a table once and keeps a copy in CacheFile so later
// processes do not download it again.
type HTTPSource struct {
	URL           string
	CacheFile     string
	ArchiveMember string
	Client        *http.Client
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, Format, error) {
	logger := zap.S().Named("postal")

	// Try to use cached file first
	if s.CacheFile != "" {
		if body, err := os.ReadFile(s.CacheFile); err == nil {
			logger.Debugw("using cached dataset", "file", s.CacheFile)
			return openPayload(body, s.ArchiveMember, formatFromName(s.URL))
		}
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, FormatCSV, errors.Wrap(err, "building dataset request")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, FormatCSV, errors.Wrapf(err, "downloading dataset from %s", s.URL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, FormatCSV, errors.Errorf("downloading dataset from %s: unexpected status %d", s.URL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, FormatCSV, errors.Wrap(err, "reading dataset response body")
	}

	// Save to disk for future use
	if s.CacheFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.CacheFile), 0o755); err == nil {
			err = os.WriteFile(s.CacheFile, body, 0o644)
		}
		if err != nil {
			logger.Warnw("couldn't save dataset cache file", "file", s.CacheFile, "error", err)
		}
	}

	return openPayload(body, s.ArchiveMember, formatFromName(s.URL))
}

func (s *HTTPSource) String() string {
	return s.URL
}

// BytesSource serves a table held in memory.
type BytesSource struct {
	Name   string
	Data   []byte
	Format Format
}

// SampleSource returns the small table bundled with the binary.
func SampleSource() *BytesSource {
	return &BytesSource{Name: "embedded:zip_codes_sample.csv", Data: sampleDataset, Format: FormatCSV}
}

func (s *BytesSource) Open(ctx context.Context) (io.ReadCloser, Format, error) {
	if len(s.Data) == 0 {
		return nil, s.Format, errors.New("empty dataset")
	}
	return openPayload(s.Data, "", s.Format)
}

func (s *BytesSource) String() string {
	if s.Name == "" {
		return "memory"
	}
	return s.Name
}

func formatFromName(name string) Format {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".tsv") {
		return FormatGeoNames
	}
	return FormatCSV
}

// openPayload unwraps zip archives and picks the format of the member.
// Payloads that are not archives are returned as is with fallback as format.
func openPayload(body []byte, member string, fallback Format) (io.ReadCloser, Format, error) {
	if !bytes.HasPrefix(body, zipMagic) {
		return io.NopCloser(bytes.NewReader(body)), fallback, nil
	}

	if member == "" {
		member = DefaultArchiveMember
	}

	zipReader, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return nil, fallback, errors.Wrap(err, "could not unzip dataset")
	}

	// ignore readme.txt, only the member table matters
	for _, f := range zipReader.File {
		if f.Name != member {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fallback, errors.Wrapf(err, "could not open %s from archive", member)
		}
		return rc, formatFromName(member), nil
	}
	return nil, fallback, errors.Errorf("archive has no member %s", member)
}
