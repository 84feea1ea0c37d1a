package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Berenger2/carbu-track/internal/storage"
)

// Handler serves the read API over the persisted price table. Stateless: one
// store call per request, no caching.
type Handler struct {
	store storage.Store
}

const top10Limit = 10

// topStationRow is the flat row shape of /stations/top10.
type topStationRow struct {
	IDStation     int64     `json:"id_station"`
	Adresse       string    `json:"adresse"`
	Ville         string    `json:"ville"`
	Latitude      float64   `json:"latitude"`
	Longitude     float64   `json:"longitude"`
	TypeCarburant string    `json:"type_carburant"`
	Prix          float64   `json:"prix"`
	DateMAJ       time.Time `json:"date_maj"`
}

// cityTopStationRow is the flat row shape of /stations/ville/{ville}/top10,
// which the original served without coordinates.
type cityTopStationRow struct {
	IDStation     int64     `json:"id_station"`
	Adresse       string    `json:"adresse"`
	Ville         string    `json:"ville"`
	TypeCarburant string    `json:"type_carburant"`
	Prix          float64   `json:"prix"`
	DateMAJ       time.Time `json:"date_maj"`
}

// ListStations serves GET /stations: every persisted row, grouped by station.
func (h *Handler) ListStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	rows, err := h.store.ListPriceRows(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur : "+err.Error())
		return
	}

	stations := storage.GroupStations(rows)
	if stations == nil {
		stations = []storage.StationPrices{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": stations})
}

// TopStations serves GET /stations/top10?type_carburant=X: the cheapest
// rows for one fuel type, at most 10, ascending by price.
func (h *Handler) TopStations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	typeCarburant := r.URL.Query().Get("type_carburant")
	if typeCarburant == "" {
		writeDetail(w, http.StatusBadRequest, "Le paramètre type_carburant est requis.")
		return
	}

	rows, err := h.store.TopByFuel(r.Context(), typeCarburant, top10Limit)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur : "+err.Error())
		return
	}
	if len(rows) == 0 {
		writeDetail(w, http.StatusNotFound, "Aucune station trouvée pour ce type de carburant.")
		return
	}

	out := make([]topStationRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, topStationRow{
			IDStation:     row.IDStation,
			Adresse:       row.Adresse,
			Ville:         row.Ville,
			Latitude:      row.Latitude,
			Longitude:     row.Longitude,
			TypeCarburant: row.TypeCarburant,
			Prix:          row.Prix,
			DateMAJ:       row.DateMAJ,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"top_10_stations": out})
}

// CityRoutes serves GET /stations/ville/{ville} and
// GET /stations/ville/{ville}/top10.
func (h *Handler) CityRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/stations/ville/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	switch {
	case len(parts) == 1 && parts[0] != "":
		h.stationsByCity(w, r, parts[0])
	case len(parts) == 2 && parts[0] != "" && parts[1] == "top10":
		h.topStationsByCity(w, r, parts[0])
	default:
		writeDetail(w, http.StatusNotFound, "Not Found")
	}
}

func (h *Handler) stationsByCity(w http.ResponseWriter, r *http.Request, ville string) {
	rows, err := h.store.ListPriceRowsByCity(r.Context(), ville)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur : "+err.Error())
		return
	}
	if len(rows) == 0 {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Aucune station trouvée dans la ville : %s.", ville))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stations": storage.GroupStations(rows)})
}

func (h *Handler) topStationsByCity(w http.ResponseWriter, r *http.Request, ville string) {
	typeCarburant := r.URL.Query().Get("type_carburant")
	if typeCarburant == "" {
		writeDetail(w, http.StatusBadRequest, "Le paramètre type_carburant est requis.")
		return
	}

	rows, err := h.store.TopByCityAndFuel(r.Context(), ville, typeCarburant, top10Limit)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur : "+err.Error())
		return
	}
	if len(rows) == 0 {
		writeDetail(w, http.StatusNotFound,
			fmt.Sprintf("Aucune station trouvée pour le type %s dans la ville : %s.", typeCarburant, ville))
		return
	}

	out := make([]cityTopStationRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, cityTopStationRow{
			IDStation:     row.IDStation,
			Adresse:       row.Adresse,
			Ville:         row.Ville,
			TypeCarburant: row.TypeCarburant,
			Prix:          row.Prix,
			DateMAJ:       row.DateMAJ,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"top_10_stations": out})
}
