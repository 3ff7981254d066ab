package stats

import (
	"context"
	"database/sql"
	"fmt"
)

// Service answers grouped read-only queries over the trees table. Stateless
// between calls; every operation is a single pooled query.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// GenusCount is one (genus, count) group. A nil Genus is the null group.
type GenusCount struct {
	Genus *string
	Count int64
}

// DistrictCount is one (district, count) group. A nil District is the null group.
type DistrictCount struct {
	District *string
	Count    int64
}

// DistrictHeight is one (district, mean height) group.
type DistrictHeight struct {
	District      string  `json:"treeDistrict"`
	AverageHeight float64 `json:"averageTreeHeight"`
}

// SpeciesCount is one (species, count) group.
type SpeciesCount struct {
	Species string `json:"treeSpecies"`
	Count   int64  `json:"treeCount"`
}

// ByGenus groups all rows by genus, null genus forming its own group.
func (s *Service) ByGenus(ctx context.Context) ([]GenusCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT arbres_genre, COUNT(*) FROM trees GROUP BY arbres_genre`)
	if err != nil {
		return nil, fmt.Errorf("trees by genus: %w", err)
	}
	defer rows.Close()

	var out []GenusCount
	for rows.Next() {
		var genus sql.NullString
		var gc GenusCount
		if err := rows.Scan(&genus, &gc.Count); err != nil {
			return nil, fmt.Errorf("trees by genus: %w", err)
		}
		if genus.Valid {
			g := genus.String
			gc.Genus = &g
		}
		out = append(out, gc)
	}
	return out, rows.Err()
}

// ByDistrict groups all rows by district, null district forming its own group.
func (s *Service) ByDistrict(ctx context.Context) ([]DistrictCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT arbres_arrondissement, COUNT(*) FROM trees GROUP BY arbres_arrondissement`)
	if err != nil {
		return nil, fmt.Errorf("trees by district: %w", err)
	}
	defer rows.Close()

	var out []DistrictCount
	for rows.Next() {
		var district sql.NullString
		var dc DistrictCount
		if err := rows.Scan(&district, &dc.Count); err != nil {
			return nil, fmt.Errorf("trees by district: %w", err)
		}
		if district.Valid {
			d := district.String
			dc.District = &d
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}

// AverageHeightByDistrict filters out rows missing district or height, then
// averages height per district.
func (s *Service) AverageHeightByDistrict(ctx context.Context) ([]DistrictHeight, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT arbres_arrondissement, AVG(arbres_hauteurenm)
FROM trees
WHERE arbres_arrondissement IS NOT NULL AND arbres_hauteurenm IS NOT NULL
GROUP BY arbres_arrondissement`)
	if err != nil {
		return nil, fmt.Errorf("average height by district: %w", err)
	}
	defer rows.Close()

	var out []DistrictHeight
	for rows.Next() {
		var dh DistrictHeight
		if err := rows.Scan(&dh.District, &dh.AverageHeight); err != nil {
			return nil, fmt.Errorf("average height by district: %w", err)
		}
		out = append(out, dh)
	}
	return out, rows.Err()
}

// TopSpecies counts rows per species, null species excluded, ordered by
// count descending.
func (s *Service) TopSpecies(ctx context.Context) ([]SpeciesCount, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT arbres_espece, COUNT(*) AS n
FROM trees
WHERE arbres_espece IS NOT NULL
GROUP BY arbres_espece
ORDER BY n DESC`)
	if err != nil {
		return nil, fmt.Errorf("top species: %w", err)
	}
	defer rows.Close()

	var out []SpeciesCount
	for rows.Next() {
		var sc SpeciesCount
		if err := rows.Scan(&sc.Species, &sc.Count); err != nil {
			return nil, fmt.Errorf("top species: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}
