package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchDecodesStations(t *testing.T) {
	body := `[
		{"id": 69001001, "adresse": "596 AVENUE DE L'EUROPE", "cp": "69400", "ville": "VILLEFRANCHE-SUR-SAONE",
		 "latitude": "45.99", "longitude": 4.71, "horaires_automate_24_24": "Oui",
		 "gazole_prix": 1.859, "gazole_maj": "2024-01-01T07:30:00", "sp95_prix": null}
	]`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	defer srv.Close()

	stations, err := NewClient(srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("expected 1 station, got %d", len(stations))
	}

	st := stations[0]
	if st.ID != 69001001 || st.CP != "69400" {
		t.Errorf("unexpected identity fields: %+v", st)
	}
	// latitude arrives quoted, longitude as a number; both must decode.
	if float64(st.Latitude) != 45.99 {
		t.Errorf("string latitude not decoded: %v", st.Latitude)
	}
	if float64(st.Longitude) != 4.71 {
		t.Errorf("numeric longitude not decoded: %v", st.Longitude)
	}
	if st.GazolePrix == nil || *st.GazolePrix != 1.859 {
		t.Errorf("gazole price not decoded: %v", st.GazolePrix)
	}
	if st.SP95Prix != nil {
		t.Errorf("null price must stay nil, got %v", *st.SP95Prix)
	}

	fuels := st.Fuels()
	if len(fuels) != 1 || fuels[0].Type != "gazole" {
		t.Errorf("unexpected fuels: %+v", fuels)
	}
}

func TestFetchNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broken", http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected error for non-2xx response")
	}
}

func TestFetchMalformedJSONIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not": "an array"`))
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestFetchConnectionRefusedIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use

	if _, err := NewClient(srv.URL).Fetch(context.Background()); err == nil {
		t.Fatalf("expected network error")
	}
}

func TestCoordinateToleratesGarbage(t *testing.T) {
	var c Coordinate
	if err := c.UnmarshalJSON([]byte(`"not a number"`)); err != nil {
		t.Fatalf("garbage coordinate must not fail the decode: %v", err)
	}
	if float64(c) != 0 {
		t.Errorf("expected zero coordinate, got %v", c)
	}
	if err := c.UnmarshalJSON([]byte(`null`)); err != nil {
		t.Fatalf("null coordinate must not fail the decode: %v", err)
	}
}
