package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPoolStore is the production backend, using a pgx connection pool.
type PostgresPoolStore struct {
	pool *pgxpool.Pool
}

// OpenPostgresPool connects a pool to the given DSN.
func OpenPostgresPool(ctx context.Context, dsn string) (*PostgresPoolStore, error) {
	if dsn == "" {
		dsn = "postgres://localhost:5432/carbutrack?sslmode=disable"
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: connect: %w", err)
	}

	return &PostgresPoolStore{pool: pool}, nil
}

func (s *PostgresPoolStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresPoolStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// EnsureSchema mirrors the original job: probe information_schema, then
// create the table with its composite primary key when absent.
func (s *PostgresPoolStore) EnsureSchema(ctx context.Context) error {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_name = $1
		)`, TableName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("storage: check table existence: %w", err)
	}
	if exists {
		return nil
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE `+TableName+` (
			id_station BIGINT,
			adresse VARCHAR(255),
			ville VARCHAR(255),
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			type_carburant VARCHAR(50),
			prix DOUBLE PRECISION,
			date_maj TIMESTAMP,
			horaires_automate_24_24 VARCHAR(50),
			PRIMARY KEY (id_station, type_carburant, date_maj)
		)`)
	if err != nil {
		return fmt.Errorf("storage: create table: %w", err)
	}
	return nil
}

func (s *PostgresPoolStore) InsertPriceRow(ctx context.Context, row PriceRow) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		INSERT INTO `+TableName+` (id_station, adresse, ville, latitude, longitude, type_carburant, prix, date_maj, horaires_automate_24_24)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id_station, type_carburant, date_maj) DO NOTHING`,
		row.IDStation, row.Adresse, row.Ville, row.Latitude, row.Longitude,
		row.TypeCarburant, row.Prix, row.DateMAJ, row.Automate24)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

const priceColumns = `id_station, adresse, ville, latitude, longitude, type_carburant, prix, date_maj, horaires_automate_24_24`

func (s *PostgresPoolStore) ListPriceRows(ctx context.Context) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		ORDER BY id_station, type_carburant`)
}

func (s *PostgresPoolStore) ListPriceRowsByCity(ctx context.Context, ville string) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE LOWER(ville) = LOWER($1)
		ORDER BY id_station, type_carburant`, ville)
}

func (s *PostgresPoolStore) TopByFuel(ctx context.Context, typeCarburant string, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE type_carburant = $1
		ORDER BY prix ASC
		LIMIT $2`, typeCarburant, limit)
}

func (s *PostgresPoolStore) TopByCityAndFuel(ctx context.Context, ville, typeCarburant string, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE LOWER(ville) = LOWER($1) AND type_carburant = $2
		ORDER BY prix ASC
		LIMIT $3`, ville, typeCarburant, limit)
}

func (s *PostgresPoolStore) AveragePriceByFuel(ctx context.Context) ([]FuelAverage, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT type_carburant, ROUND(AVG(prix)::numeric, 2) AS prix_moyen
		FROM `+TableName+`
		GROUP BY type_carburant
		ORDER BY type_carburant`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FuelAverage
	for rows.Next() {
		var avg FuelAverage
		if err := rows.Scan(&avg.TypeCarburant, &avg.PrixMoyen); err != nil {
			return nil, err
		}
		out = append(out, avg)
	}
	return out, rows.Err()
}

func (s *PostgresPoolStore) queryRows(ctx context.Context, query string, args ...any) ([]PriceRow, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PriceRow
	for rows.Next() {
		var r PriceRow
		if err := rows.Scan(&r.IDStation, &r.Adresse, &r.Ville, &r.Latitude, &r.Longitude,
			&r.TypeCarburant, &r.Prix, &r.DateMAJ, &r.Automate24); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
