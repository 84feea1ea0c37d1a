package storage

import "time"

// TableName is the single persisted table.
const TableName = "prix_carburants_lyon"

// PriceRow is one persisted (station, fuel, update-time) observation.
// Identity key = (IDStation, TypeCarburant, DateMAJ); rows are append-only.
type PriceRow struct {
	IDStation     int64     `json:"id_station"`
	Adresse       string    `json:"adresse"`
	Ville         string    `json:"ville"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	TypeCarburant string    `json:"type_carburant"`
	Prix          float64   `json:"prix"`
	DateMAJ       time.Time `json:"date_maj"`
	Automate24    string    `json:"horaires_automate_24_24"`
}

// StationPrices is the grouped API shape: one station with its fuel quotes
// nested as a list.
type StationPrices struct {
	IDStation  int64       `json:"id_station"`
	Adresse    string      `json:"adresse"`
	Ville      string      `json:"ville"`
	Latitude   float64     `json:"latitude"`
	Longitude  float64     `json:"longitude"`
	Automate24 string      `json:"horaires_automate_24_24"`
	Carburants []FuelPrice `json:"carburants"`
}

// FuelPrice is one fuel quote nested under a StationPrices.
type FuelPrice struct {
	TypeCarburant string    `json:"type_carburant"`
	Prix          float64   `json:"prix"`
	DateMAJ       time.Time `json:"date_maj"`
}

// FuelAverage is the mean price for one fuel type across all rows.
type FuelAverage struct {
	TypeCarburant string  `json:"type_carburant"`
	PrixMoyen     float64 `json:"prix_moyen"`
}

// GroupStations folds flat rows into one StationPrices per station. Rows are
// expected ordered by (id_station, type_carburant); group order follows the
// first occurrence of each station.
func GroupStations(rows []PriceRow) []StationPrices {
	var out []StationPrices
	index := make(map[int64]int)
	for _, row := range rows {
		i, ok := index[row.IDStation]
		if !ok {
			out = append(out, StationPrices{
				IDStation:  row.IDStation,
				Adresse:    row.Adresse,
				Ville:      row.Ville,
				Latitude:   row.Latitude,
				Longitude:  row.Longitude,
				Automate24: row.Automate24,
			})
			i = len(out) - 1
			index[row.IDStation] = i
		}
		out[i].Carburants = append(out[i].Carburants, FuelPrice{
			TypeCarburant: row.TypeCarburant,
			Prix:          row.Prix,
			DateMAJ:       row.DateMAJ,
		})
	}
	return out
}
