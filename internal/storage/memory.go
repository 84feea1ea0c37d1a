package storage

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
)

type rowKey struct {
	IDStation     int64
	TypeCarburant string
	DateMAJ       int64 // unix nanoseconds
}

// MemoryStore keeps rows in process memory. Used by tests and as a driver
// for running the whole system without a database.
type MemoryStore struct {
	mu   sync.RWMutex
	rows []PriceRow
	keys map[rowKey]struct{}
}

// NewMemory returns an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{keys: make(map[rowKey]struct{})}
}

func (s *MemoryStore) Close() error                   { return nil }
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) EnsureSchema(ctx context.Context) error { return nil }

func (s *MemoryStore) InsertPriceRow(ctx context.Context, row PriceRow) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rowKey{row.IDStation, row.TypeCarburant, row.DateMAJ.UnixNano()}
	if _, dup := s.keys[key]; dup {
		return false, nil
	}
	s.keys[key] = struct{}{}
	s.rows = append(s.rows, row)
	return true, nil
}

func (s *MemoryStore) ListPriceRows(ctx context.Context) ([]PriceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortByStation(s.snapshot(func(PriceRow) bool { return true })), nil
}

func (s *MemoryStore) ListPriceRowsByCity(ctx context.Context, ville string) ([]PriceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortByStation(s.snapshot(func(r PriceRow) bool {
		return strings.EqualFold(r.Ville, ville)
	})), nil
}

func (s *MemoryStore) TopByFuel(ctx context.Context, typeCarburant string, limit int) ([]PriceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot(func(r PriceRow) bool { return r.TypeCarburant == typeCarburant })
	return topByPrice(out, limit), nil
}

func (s *MemoryStore) TopByCityAndFuel(ctx context.Context, ville, typeCarburant string, limit int) ([]PriceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.snapshot(func(r PriceRow) bool {
		return strings.EqualFold(r.Ville, ville) && r.TypeCarburant == typeCarburant
	})
	return topByPrice(out, limit), nil
}

func (s *MemoryStore) AveragePriceByFuel(ctx context.Context) ([]FuelAverage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range s.rows {
		sums[r.TypeCarburant] += r.Prix
		counts[r.TypeCarburant]++
	}

	var out []FuelAverage
	for fuel, sum := range sums {
		mean := sum / float64(counts[fuel])
		out = append(out, FuelAverage{
			TypeCarburant: fuel,
			PrixMoyen:     math.Round(mean*100) / 100,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeCarburant < out[j].TypeCarburant })
	return out, nil
}

func (s *MemoryStore) snapshot(keep func(PriceRow) bool) []PriceRow {
	var out []PriceRow
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func sortByStation(rows []PriceRow) []PriceRow {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].IDStation != rows[j].IDStation {
			return rows[i].IDStation < rows[j].IDStation
		}
		return rows[i].TypeCarburant < rows[j].TypeCarburant
	})
	return rows
}

func topByPrice(rows []PriceRow, limit int) []PriceRow {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Prix < rows[j].Prix })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows
}
