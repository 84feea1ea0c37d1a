package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// PostgresStore is a database/sql backend over the pgx stdlib driver. It
// serves deployments that prefer a plain *sql.DB over a pgx pool and is the
// backend exercised by the sqlmock tests.
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres opens a *sql.DB against the given DSN.
func OpenPostgres(dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = "postgres://localhost:5432/carbutrack?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open postgres: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing *sql.DB.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
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

	_, err = s.db.ExecContext(ctx, `
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

func (s *PostgresStore) InsertPriceRow(ctx context.Context, row PriceRow) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO `+TableName+` (id_station, adresse, ville, latitude, longitude, type_carburant, prix, date_maj, horaires_automate_24_24)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id_station, type_carburant, date_maj) DO NOTHING`,
		row.IDStation, row.Adresse, row.Ville, row.Latitude, row.Longitude,
		row.TypeCarburant, row.Prix, row.DateMAJ, row.Automate24)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *PostgresStore) ListPriceRows(ctx context.Context) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		ORDER BY id_station, type_carburant`)
}

func (s *PostgresStore) ListPriceRowsByCity(ctx context.Context, ville string) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE LOWER(ville) = LOWER($1)
		ORDER BY id_station, type_carburant`, ville)
}

func (s *PostgresStore) TopByFuel(ctx context.Context, typeCarburant string, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE type_carburant = $1
		ORDER BY prix ASC
		LIMIT $2`, typeCarburant, limit)
}

func (s *PostgresStore) TopByCityAndFuel(ctx context.Context, ville, typeCarburant string, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE LOWER(ville) = LOWER($1) AND type_carburant = $2
		ORDER BY prix ASC
		LIMIT $3`, ville, typeCarburant, limit)
}

func (s *PostgresStore) AveragePriceByFuel(ctx context.Context) ([]FuelAverage, error) {
	rows, err := s.db.QueryContext(ctx, `
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

func (s *PostgresStore) queryRows(ctx context.Context, query string, args ...any) ([]PriceRow, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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
