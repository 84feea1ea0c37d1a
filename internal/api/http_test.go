package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Berenger2/carbu-track/internal/storage"
)

func seedStore(t *testing.T, rows []storage.PriceRow) storage.Store {
	t.Helper()
	st := storage.NewMemory()
	for _, r := range rows {
		if _, err := st.InsertPriceRow(context.Background(), r); err != nil {
			t.Fatalf("seed insert: %v", err)
		}
	}
	return st
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

var maj = time.Date(2024, 1, 1, 7, 30, 0, 0, time.UTC)

func seedRows() []storage.PriceRow {
	return []storage.PriceRow{
		{IDStation: 1, Adresse: "a", Ville: "Lyon", TypeCarburant: "gazole", Prix: 1.85, DateMAJ: maj},
		{IDStation: 1, Adresse: "a", Ville: "Lyon", TypeCarburant: "e10", Prix: 1.79, DateMAJ: maj},
		{IDStation: 2, Adresse: "b", Ville: "Villeurbanne", TypeCarburant: "gazole", Prix: 1.70, DateMAJ: maj},
	}
}

func TestListStationsGroupsRows(t *testing.T) {
	mux := NewMux(seedStore(t, seedRows()))

	rec := get(t, mux, "/stations")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	var body struct {
		Stations []storage.StationPrices `json:"stations"`
	}
	decode(t, rec, &body)
	if len(body.Stations) != 2 {
		t.Fatalf("expected 2 grouped stations, got %d", len(body.Stations))
	}
	if body.Stations[0].IDStation != 1 || len(body.Stations[0].Carburants) != 2 {
		t.Errorf("station 1 grouping wrong: %+v", body.Stations[0])
	}
}

func TestListStationsEmptyTableIsNot404(t *testing.T) {
	mux := NewMux(storage.NewMemory())

	rec := get(t, mux, "/stations")
	if rec.Code != http.StatusOK {
		t.Fatalf("list-all has no not-found condition, got %d", rec.Code)
	}
	var body struct {
		Stations []storage.StationPrices `json:"stations"`
	}
	decode(t, rec, &body)
	if body.Stations == nil || len(body.Stations) != 0 {
		t.Errorf("expected empty stations array, got %v", body.Stations)
	}
}

func TestTopStationsFewerThanTen(t *testing.T) {
	mux := NewMux(seedStore(t, seedRows()))

	rec := get(t, mux, "/stations/top10?type_carburant=gazole")
	if rec.Code != http.StatusOK {
		t.Fatalf("fewer than 10 rows must still be 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Top []struct {
			IDStation int64   `json:"id_station"`
			Prix      float64 `json:"prix"`
		} `json:"top_10_stations"`
	}
	decode(t, rec, &body)
	if len(body.Top) != 2 {
		t.Fatalf("expected both gazole rows, got %d", len(body.Top))
	}
	if body.Top[0].Prix > body.Top[1].Prix {
		t.Errorf("rows not ascending by price: %+v", body.Top)
	}
}

func TestTopStationsUnknownFuelIs404(t *testing.T) {
	mux := NewMux(seedStore(t, seedRows()))

	rec := get(t, mux, "/stations/top10?type_carburant=unknown_fuel")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &body)
	if body.Detail == "" {
		t.Errorf("404 must carry an explanatory message")
	}
}

func TestTopStationsMissingParamIs400(t *testing.T) {
	mux := NewMux(seedStore(t, seedRows()))

	rec := get(t, mux, "/stations/top10")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing type_carburant, got %d", rec.Code)
	}
}

func TestStationsByCityCaseInsensitive(t *testing.T) {
	mux := NewMux(seedStore(t, seedRows()))

	rec := get(t, mux, "/stations/ville/LYON")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected case-insensitive match, got %d", rec.Code)
	}
	var body struct {
		Stations []storage.StationPrices `json:"stations"`
	}
	decode(t, rec, &body)
	if len(body.Stations) != 1 || body.Stations[0].IDStation != 1 {
		t.Fatalf("unexpected stations: %+v", body.Stations)
	}

	rec = get(t, mux, "/stations/ville/Paris")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for a city with no rows, got %d", rec.Code)
	}
}

func TestTopStationsByCity(t *testing.T) {
	mux := NewMux(seedStore(t, seedRows()))

	rec := get(t, mux, "/stations/ville/Villeurbanne/top10?type_carburant=gazole")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Top []struct {
			IDStation int64   `json:"id_station"`
			Ville     string  `json:"ville"`
			Prix      float64 `json:"prix"`
		} `json:"top_10_stations"`
	}
	decode(t, rec, &body)
	if len(body.Top) != 1 || body.Top[0].IDStation != 2 {
		t.Fatalf("unexpected rows: %+v", body.Top)
	}

	rec = get(t, mux, "/stations/ville/Villeurbanne/top10?type_carburant=e85")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty intersection, got %d", rec.Code)
	}
}

func TestAveragePrices(t *testing.T) {
	rows := []storage.PriceRow{
		{IDStation: 1, Ville: "Lyon", TypeCarburant: "gazole", Prix: 1.855, DateMAJ: maj},
		{IDStation: 2, Ville: "Lyon", TypeCarburant: "gazole", Prix: 1.864, DateMAJ: maj},
		{IDStation: 3, Ville: "Lyon", TypeCarburant: "e10", Prix: 1.70, DateMAJ: maj},
	}
	mux := NewMux(seedStore(t, rows))

	rec := get(t, mux, "/stats/moyennes")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body struct {
		PrixMoyens []storage.FuelAverage `json:"prix_moyens"`
	}
	decode(t, rec, &body)
	if len(body.PrixMoyens) != 2 {
		t.Fatalf("expected one entry per fuel type, got %+v", body.PrixMoyens)
	}
	for _, avg := range body.PrixMoyens {
		if avg.TypeCarburant == "gazole" && avg.PrixMoyen != 1.86 {
			t.Errorf("gazole average not rounded to 2 decimals: %v", avg.PrixMoyen)
		}
	}
}

func TestAveragePricesEmptyTableIs404(t *testing.T) {
	mux := NewMux(storage.NewMemory())

	rec := get(t, mux, "/stats/moyennes")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty table, got %d", rec.Code)
	}
}

func TestMethodGuard(t *testing.T) {
	mux := NewMux(storage.NewMemory())

	req := httptest.NewRequest(http.MethodPost, "/stations", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	mux := NewMux(storage.NewMemory())

	rec := get(t, mux, "/stations")
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected allow-all CORS, got %q", got)
	}

	req := httptest.NewRequest(http.MethodOptions, "/stations", nil)
	pre := httptest.NewRecorder()
	mux.ServeHTTP(pre, req)
	if pre.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", pre.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	mux := NewMux(storage.NewMemory())

	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		if rec := get(t, mux, path); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouteLabelCollapsesCityPaths(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"/stations", "/stations"},
		{"/stations/top10", "/stations/top10"},
		{"/stats/moyennes", "/stats/moyennes"},
		{"/stations/ville/Lyon", "/stations/ville/{ville}"},
		{"/stations/ville/Villeurbanne", "/stations/ville/{ville}"},
		{"/stations/ville/Lyon/top10", "/stations/ville/{ville}/top10"},
		{"/stations/ville/Bron/top10", "/stations/ville/{ville}/top10"},
	}
	for _, c := range cases {
		if got := routeLabel(c.path); got != c.want {
			t.Errorf("routeLabel(%q): want %q, got %q", c.path, c.want, got)
		}
	}
}
