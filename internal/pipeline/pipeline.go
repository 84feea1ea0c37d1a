package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/Berenger2/carbu-track/internal/config"
	"github.com/Berenger2/carbu-track/internal/feed"
	"github.com/Berenger2/carbu-track/internal/metrics"
	"github.com/Berenger2/carbu-track/internal/storage"
)

// majLayouts are the accepted encodings of the feed's *_maj timestamps.
var majLayouts = []string{"2006-01-02T15:04:05", time.RFC3339}

// Fetcher downloads the raw feed.
type Fetcher interface {
	Fetch(ctx context.Context) ([]feed.Station, error)
}

// Runner executes one full ETL run: fetch, transform, filter, limit,
// ensure schema, persist. Stages run strictly sequentially and hand their
// output to the next stage as an explicit value.
type Runner struct {
	fetcher Fetcher
	store   storage.Store
	cfg     config.Config
}

// NewRunner wires a Runner from its collaborators.
func NewRunner(fetcher Fetcher, store storage.Store, cfg config.Config) *Runner {
	return &Runner{fetcher: fetcher, store: store, cfg: cfg}
}

// Run executes the pipeline once. A fetch or store-connection failure is
// returned as an error (the caller may retry the whole run); an empty stage
// output is logged as a warning and ends the run without error.
func (r *Runner) Run(ctx context.Context) (summary RunSummary, err error) {
	started := time.Now()
	summary.RunID = uuid.NewString()
	metrics.PipelineRunsTotal.Inc()
	defer func() {
		summary.Duration = time.Since(started)
	}()

	raw, err := r.fetcher.Fetch(ctx)
	if err != nil {
		log.Printf("pipeline %s: fetch failed: %v", summary.RunID, err)
		metrics.UpdateRunMetrics(started, err)
		return summary, err
	}
	summary.Fetched = len(raw)
	metrics.StageRecords.WithLabelValues("fetch").Set(float64(len(raw)))
	if len(raw) == 0 {
		log.Printf("pipeline %s: feed returned no stations, nothing to do", summary.RunID)
		metrics.UpdateRunMetrics(started, nil)
		return summary, nil
	}
	log.Printf("pipeline %s: fetched %d stations", summary.RunID, len(raw))

	transformed := Transform(raw)
	summary.Transformed = len(transformed)
	metrics.StageRecords.WithLabelValues("transform").Set(float64(len(transformed)))
	if len(transformed) == 0 {
		log.Printf("pipeline %s: no stations with priced fuels, nothing to do", summary.RunID)
		metrics.UpdateRunMetrics(started, nil)
		return summary, nil
	}

	filtered := FilterDepartment(transformed, r.cfg.Department)
	summary.Filtered = len(filtered)
	metrics.StageRecords.WithLabelValues("filter").Set(float64(len(filtered)))
	if len(filtered) == 0 {
		log.Printf("pipeline %s: no stations in department %s, nothing to persist", summary.RunID, r.cfg.Department)
		metrics.UpdateRunMetrics(started, nil)
		return summary, nil
	}

	limited := Limit(filtered, r.cfg.StationLimit)
	summary.Limited = len(limited)
	metrics.StageRecords.WithLabelValues("limit").Set(float64(len(limited)))
	log.Printf("pipeline %s: %d transformed, %d in department %s, %d kept",
		summary.RunID, len(transformed), len(filtered), r.cfg.Department, len(limited))

	if err := r.store.EnsureSchema(ctx); err != nil {
		log.Printf("pipeline %s: ensure schema failed: %v", summary.RunID, err)
		metrics.UpdateRunMetrics(started, err)
		return summary, err
	}

	summary.Persist = r.persist(ctx, summary.RunID, limited)
	metrics.UpdateRunMetrics(started, nil)
	log.Printf("pipeline %s: persisted rows inserted=%d skipped=%d failed=%d",
		summary.RunID, summary.Persist.Inserted, summary.Persist.Skipped, summary.Persist.Failed)
	return summary, nil
}

// persist writes one row per (station, fuel quote). Row failures are logged
// and counted; they never abort the remaining rows.
func (r *Runner) persist(ctx context.Context, runID string, records []StationRecord) PersistSummary {
	var sum PersistSummary
	for _, rec := range records {
		for _, quote := range rec.Prix {
			row, err := buildRow(rec, quote)
			if err == nil {
				var inserted bool
				inserted, err = r.store.InsertPriceRow(ctx, row)
				if err == nil {
					if inserted {
						sum.Inserted++
						metrics.RowsPersistedTotal.WithLabelValues("inserted").Inc()
					} else {
						sum.Skipped++
						metrics.RowsPersistedTotal.WithLabelValues("skipped").Inc()
					}
					continue
				}
			}
			sum.Failed++
			metrics.RowsPersistedTotal.WithLabelValues("failed").Inc()
			log.Printf("pipeline %s: insert station %d fuel %s failed: %v",
				runID, rec.IDStation, quote.TypeCarburant, err)
		}
	}
	return sum
}

func buildRow(rec StationRecord, quote FuelQuote) (storage.PriceRow, error) {
	maj, err := parseMAJ(quote.DateMAJ)
	if err != nil {
		return storage.PriceRow{}, err
	}
	return storage.PriceRow{
		IDStation:     rec.IDStation,
		Adresse:       rec.Adresse,
		Ville:         rec.Ville,
		Latitude:      rec.Latitude,
		Longitude:     rec.Longitude,
		TypeCarburant: quote.TypeCarburant,
		Prix:          quote.Prix,
		DateMAJ:       maj,
		Automate24:    rec.Automate24,
	}, nil
}

func parseMAJ(value string) (time.Time, error) {
	for _, layout := range majLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date_maj %q", value)
}
