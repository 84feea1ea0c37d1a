package pipeline

import "time"

// StationRecord is the pipeline-internal shape of one station. Created fresh
// each run, discarded after persistence.
type StationRecord struct {
	IDStation  int64
	Adresse    string
	Latitude   float64
	Longitude  float64
	CodePostal string
	Ville      string
	Region     string
	Automate24 string
	Prix       []FuelQuote
}

// FuelQuote is one priced fuel at a station. DateMAJ carries the feed's
// timestamp string unchanged; it is parsed at persistence time so that a
// malformed value fails only its own row.
type FuelQuote struct {
	TypeCarburant string
	Prix          float64
	DateMAJ       string
}

// PersistSummary aggregates per-row persistence outcomes for one run.
type PersistSummary struct {
	Inserted int
	Skipped  int
	Failed   int
}

// RunSummary describes one full pipeline run.
type RunSummary struct {
	RunID       string
	Fetched     int
	Transformed int
	Filtered    int
	Limited     int
	Persist     PersistSummary
	Duration    time.Duration
}
