package pipeline

import "github.com/Berenger2/carbu-track/internal/feed"

// Transform maps raw feed stations into StationRecords. Stations without a
// single priced fuel are dropped. No range or format validation happens
// here: the feed's values pass through unchanged.
func Transform(raw []feed.Station) []StationRecord {
	var out []StationRecord
	for _, st := range raw {
		rec := StationRecord{
			IDStation:  st.ID,
			Adresse:    st.Adresse,
			Latitude:   float64(st.Latitude),
			Longitude:  float64(st.Longitude),
			CodePostal: st.CP,
			Ville:      st.Ville,
			Region:     st.Region,
			Automate24: st.Automate24,
		}
		if rec.Adresse == "" {
			rec.Adresse = "Inconnu"
		}

		for _, f := range st.Fuels() {
			rec.Prix = append(rec.Prix, FuelQuote{
				TypeCarburant: f.Type,
				Prix:          *f.Prix,
				DateMAJ:       f.MAJ,
			})
		}

		if len(rec.Prix) == 0 {
			continue
		}
		out = append(out, rec)
	}
	return out
}
