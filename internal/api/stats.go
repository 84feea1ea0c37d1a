package api

import "net/http"

// AveragePrices serves GET /stats/moyennes: mean price per fuel type across
// every persisted row, rounded to 2 decimal places.
func (h *Handler) AveragePrices(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	averages, err := h.store.AveragePriceByFuel(r.Context())
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Erreur serveur : "+err.Error())
		return
	}
	if len(averages) == 0 {
		writeDetail(w, http.StatusNotFound, "Aucune donnée disponible pour calculer les prix moyens.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"prix_moyens": averages})
}
