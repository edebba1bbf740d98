package postal

import (
	"context"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"
	"github.com/thomhuang/shipzone/internal/geo"
)

// nearestCandidates is how many R-tree neighbours are re-ranked by
// great-circle distance when looking for the closest record. The tree
// ranks in flat degree space, which skews east-west distances.
const nearestCandidates = 8

var milesPerDegree = geo.EarthRadiusMiles * math.Pi / 180

// Index is an immutable lookup table of postal records plus a spatial
// index over their coordinates. It is safe for concurrent reads.
type Index struct {
	records map[string]*Record
	tree    *rtreego.Rtree
	report  LoadReport
}

// NewIndex builds an index over records. The map must not be modified afterwards.
func NewIndex(records map[string]*Record, report LoadReport) *Index {
	// dim = 2D for our radius between points
	// min nodes = 25, max nodes = 50
	tree := rtreego.NewTree(2, 25, 50)
	for _, r := range records {
		tree.Insert(newItem(r))
	}
	return &Index{records: records, tree: tree, report: report}
}

// Len returns the number of records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Report returns the counters collected while parsing the dataset.
func (idx *Index) Report() LoadReport {
	return idx.report
}

// Lookup returns the record for a five digit code.
func (idx *Index) Lookup(code string) (*Record, bool) {
	r, ok := idx.records[code]
	return r, ok
}

// Codes returns every code in ascending order.
func (idx *Index) Codes() []string {
	codes := make([]string, 0, len(idx.records))
	for c := range idx.records {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Nearest returns the record closest to p, or false for an empty index.
func (idx *Index) Nearest(p geo.Point) (*Record, bool) {
	if len(idx.records) == 0 {
		return nil, false
	}
	candidates := idx.tree.NearestNeighbors(nearestCandidates, rtreego.Point{p.Lon, p.Lat})

	var (
		best     *Record
		bestDist = math.Inf(1)
	)
	for _, c := range candidates {
		it, ok := c.(*item)
		if !ok {
			continue
		}
		d := geo.DistanceMiles(p, it.record.Location)
		if d < bestDist || (d == bestDist && best != nil && it.record.Code < best.Code) {
			best, bestDist = it.record, d
		}
	}
	return best, best != nil
}

// Neighbor is a record found within a search radius.
type Neighbor struct {
	Code          string  `json:"postalCode"`
	City          string  `json:"city"`
	StateCode     string  `json:"stateCode"`
	DistanceMiles float64 `json:"distanceMiles"`
}

// Within returns every record within radiusMiles of the record for code,
// including the record itself, closest first.
func (idx *Index) Within(code string, radiusMiles float64) ([]Neighbor, error) {
	center, ok := idx.records[code]
	if !ok {
		return nil, ErrNotFound
	}
	return idx.within(center, radiusMiles), nil
}

func (idx *Index) within(center *Record, radiusMiles float64) []Neighbor {
	if radiusMiles < 0 {
		radiusMiles = 0
	}

	// bounding box first, exact great-circle check after so it's a radius and not a square
	var neighbors []Neighbor
	for _, s := range idx.tree.SearchIntersect(searchRect(center.Location, radiusMiles)) {
		it, ok := s.(*item)
		if !ok {
			continue
		}
		d := 0.0
		if it.record.Code != center.Code {
			d = geo.DistanceMiles(center.Location, it.record.Location)
			if d > radiusMiles {
				continue
			}
		}
		neighbors = append(neighbors, Neighbor{
			Code:          it.record.Code,
			City:          it.record.City,
			StateCode:     it.record.StateCode,
			DistanceMiles: d,
		})
	}

	// the center leads even when other codes share its coordinates
	sort.Slice(neighbors, func(i, j int) bool {
		if ci, cj := neighbors[i].Code == center.Code, neighbors[j].Code == center.Code; ci != cj {
			return ci
		}
		if neighbors[i].DistanceMiles == neighbors[j].DistanceMiles {
			return neighbors[i].Code < neighbors[j].Code
		}
		return neighbors[i].DistanceMiles < neighbors[j].DistanceMiles
	})
	return neighbors
}

// searchRect returns a lon/lat rectangle that contains every point within
// radiusMiles of p.
func searchRect(p geo.Point, radiusMiles float64) rtreego.Rect {
	dLat := radiusMiles/milesPerDegree + rectTolerance
	dLon := 180.0
	if c := math.Cos(p.Lat * math.Pi / 180); c > 1e-6 {
		dLon = math.Min(dLat/c, 180)
	}
	rect, _ := rtreego.NewRect(rtreego.Point{p.Lon - dLon, p.Lat - dLat}, []float64{2 * dLon, 2 * dLat})
	return rect
}

type nearbyJob struct {
	record *Record
}

type nearbyPair struct {
	code   string
	nearby []string
}

// NearbyAll computes, for every record, the codes within radiusMiles of it.
// The work is spread over workers goroutines; zero means four per CPU.
func (idx *Index) NearbyAll(ctx context.Context, radiusMiles float64, workers int) (map[string][]string, error) {
	if workers <= 0 {
		workers = runtime.NumCPU() * 4
	}

	var wg sync.WaitGroup
	// buffered so a short imbalance between producer and consumers does not block
	jobs := make(chan nearbyJob, workers*2)
	results := make(chan nearbyPair, workers*2)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				neighbors := idx.within(job.record, radiusMiles)
				codes := make([]string, 0, len(neighbors))
				for _, n := range neighbors {
					codes = append(codes, n.Code)
				}
				select {
				case results <- nearbyPair{code: job.record.Code, nearby: codes}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	// results is closed only after every worker returned
	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, r := range idx.records {
			select {
			case jobs <- nearbyJob{record: r}:
			case <-ctx.Done():
				return
			}
		}
	}()

	out := make(map[string][]string, len(idx.records))
	for res := range results {
		out[res.code] = res.nearby
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
