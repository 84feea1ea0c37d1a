package storage

import "context"

// Store abstracts persistence for fuel price rows.
type Store interface {
	// EnsureSchema checks that the price table exists and creates it with
	// its composite primary key when missing. Idempotent; the pipeline
	// calls it before every persistence run.
	EnsureSchema(ctx context.Context) error

	// InsertPriceRow inserts one row, silently no-oping when a row with the
	// same (id_station, type_carburant, date_maj) already exists. Reports
	// whether a row was actually written.
	InsertPriceRow(ctx context.Context, row PriceRow) (inserted bool, err error)

	// ListPriceRows returns every row ordered by (id_station, type_carburant).
	ListPriceRows(ctx context.Context) ([]PriceRow, error)

	// ListPriceRowsByCity returns rows for one city (case-insensitive exact
	// match), ordered by (id_station, type_carburant).
	ListPriceRowsByCity(ctx context.Context, ville string) ([]PriceRow, error)

	// TopByFuel returns up to limit rows for a fuel type, cheapest first.
	TopByFuel(ctx context.Context, typeCarburant string, limit int) ([]PriceRow, error)

	// TopByCityAndFuel returns up to limit rows for a fuel type within a
	// city (case-insensitive), cheapest first.
	TopByCityAndFuel(ctx context.Context, ville, typeCarburant string, limit int) ([]PriceRow, error)

	// AveragePriceByFuel returns the mean price per fuel type across all
	// rows, rounded to 2 decimal places.
	AveragePriceByFuel(ctx context.Context) ([]FuelAverage, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources (no-op for in-memory).
	Close() error
}
