package feed

import (
	"bytes"
	"strconv"
)

// Coordinate decodes a latitude/longitude value from the feed. The feed has
// served these both as JSON numbers and as quoted strings depending on the
// export version, so both encodings are accepted.
type Coordinate float64

func (c *Coordinate) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*c = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// Pass-through pipeline: an unparseable coordinate is kept as zero
		// rather than failing the whole feed decode.
		*c = 0
		return nil
	}
	*c = Coordinate(f)
	return nil
}

// Station is one element of the upstream JSON array. Field names follow the
// feed verbatim. Prices are pointers: a null or missing price means the
// station does not sell that fuel.
type Station struct {
	ID         int64      `json:"id"`
	Adresse    string     `json:"adresse"`
	CP         string     `json:"cp"`
	Ville      string     `json:"ville"`
	Region     string     `json:"region"`
	Latitude   Coordinate `json:"latitude"`
	Longitude  Coordinate `json:"longitude"`
	Automate24 string     `json:"horaires_automate_24_24"`

	GazolePrix *float64 `json:"gazole_prix"`
	GazoleMAJ  string   `json:"gazole_maj"`
	SP95Prix   *float64 `json:"sp95_prix"`
	SP95MAJ    string   `json:"sp95_maj"`
	E85Prix    *float64 `json:"e85_prix"`
	E85MAJ     string   `json:"e85_maj"`
	GPLcPrix   *float64 `json:"gplc_prix"`
	GPLcMAJ    string   `json:"gplc_maj"`
	E10Prix    *float64 `json:"e10_prix"`
	E10MAJ     string   `json:"e10_maj"`
	SP98Prix   *float64 `json:"sp98_prix"`
	SP98MAJ    string   `json:"sp98_maj"`
}

// Fuels returns the station's per-fuel (type, price, last-updated) triples
// in the fixed feed order. Entries with a null price are omitted.
func (s Station) Fuels() []Fuel {
	candidates := []Fuel{
		{Type: "gazole", Prix: s.GazolePrix, MAJ: s.GazoleMAJ},
		{Type: "sp95", Prix: s.SP95Prix, MAJ: s.SP95MAJ},
		{Type: "e85", Prix: s.E85Prix, MAJ: s.E85MAJ},
		{Type: "gplc", Prix: s.GPLcPrix, MAJ: s.GPLcMAJ},
		{Type: "e10", Prix: s.E10Prix, MAJ: s.E10MAJ},
		{Type: "sp98", Prix: s.SP98Prix, MAJ: s.SP98MAJ},
	}
	var out []Fuel
	for _, f := range candidates {
		if f.Prix != nil {
			out = append(out, f)
		}
	}
	return out
}

// Fuel is one priced fuel at a station as published by the feed.
type Fuel struct {
	Type string
	Prix *float64
	MAJ  string
}
