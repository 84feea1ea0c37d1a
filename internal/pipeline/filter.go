package pipeline

import "strings"

// FilterDepartment keeps stations whose postal code starts with the
// department prefix. A station with no postal code never matches. Order is
// preserved.
func FilterDepartment(records []StationRecord, department string) []StationRecord {
	var out []StationRecord
	for _, rec := range records {
		if rec.CodePostal == "" {
			continue
		}
		if strings.HasPrefix(rec.CodePostal, department) {
			out = append(out, rec)
		}
	}
	return out
}

// Limit truncates to the first n records in their incoming order. This is a
// positional cap, not a ranking.
func Limit(records []StationRecord, n int) []StationRecord {
	if n < 0 || len(records) <= n {
		return records
	}
	return records[:n]
}
