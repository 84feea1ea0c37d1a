package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a local-development backend on a single database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the sqlite database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "carbutrack.db"
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+TableName+` (
			id_station INTEGER,
			adresse TEXT,
			ville TEXT,
			latitude REAL,
			longitude REAL,
			type_carburant TEXT,
			prix REAL,
			date_maj TIMESTAMP,
			horaires_automate_24_24 TEXT,
			PRIMARY KEY (id_station, type_carburant, date_maj)
		)`)
	if err != nil {
		return fmt.Errorf("storage: create table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) InsertPriceRow(ctx context.Context, row PriceRow) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO `+TableName+` (id_station, adresse, ville, latitude, longitude, type_carburant, prix, date_maj, horaires_automate_24_24)
		VALUES (?,?,?,?,?,?,?,?,?)
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

func (s *SQLiteStore) ListPriceRows(ctx context.Context) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		ORDER BY id_station, type_carburant`)
}

func (s *SQLiteStore) ListPriceRowsByCity(ctx context.Context, ville string) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE LOWER(ville) = LOWER(?)
		ORDER BY id_station, type_carburant`, ville)
}

func (s *SQLiteStore) TopByFuel(ctx context.Context, typeCarburant string, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE type_carburant = ?
		ORDER BY prix ASC
		LIMIT ?`, typeCarburant, limit)
}

func (s *SQLiteStore) TopByCityAndFuel(ctx context.Context, ville, typeCarburant string, limit int) ([]PriceRow, error) {
	return s.queryRows(ctx, `
		SELECT `+priceColumns+`
		FROM `+TableName+`
		WHERE LOWER(ville) = LOWER(?) AND type_carburant = ?
		ORDER BY prix ASC
		LIMIT ?`, ville, typeCarburant, limit)
}

func (s *SQLiteStore) AveragePriceByFuel(ctx context.Context) ([]FuelAverage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT type_carburant, ROUND(AVG(prix), 2) AS prix_moyen
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

func (s *SQLiteStore) queryRows(ctx context.Context, query string, args ...any) ([]PriceRow, error) {
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
