package store

import (
	"context"
	"database/sql"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// SQLiteStore implements Store using modernc.org/sqlite. Distances are
// computed in Go over a bounding-box prefiltered scan; the datasets are
// city-sized, so the scan stays small.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS shelters (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	address           TEXT NOT NULL DEFAULT '',
	ward              TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL DEFAULT '',
	capacity          INTEGER NOT NULL DEFAULT 0,
	phone             TEXT NOT NULL DEFAULT '',
	opening_condition TEXT NOT NULL DEFAULT '',
	lat               REAL NOT NULL,
	lon               REAL NOT NULL,
	source            TEXT NOT NULL DEFAULT '',
	UNIQUE (name, lat, lon)
);

CREATE TABLE IF NOT EXISTS risk_points (
	id               TEXT PRIMARY KEY,
	lat              REAL NOT NULL,
	lon              REAL NOT NULL,
	flood_score      REAL,
	landslide_score  REAL,
	tsunami_score    REAL,
	overall_risk     REAL,
	risk_description TEXT NOT NULL DEFAULT '',
	elev_score       REAL,
	slope_score      REAL,
	river_score      REAL,
	UNIQUE (lat, lon)
);

CREATE INDEX IF NOT EXISTS idx_shelters_lat_lon ON shelters(lat, lon);
CREATE INDEX IF NOT EXISTS idx_risk_points_lat_lon ON risk_points(lat, lon);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) PutShelters(ctx context.Context, shelters []Shelter) (int, error) {
	if len(shelters) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO shelters (id, name, address, ward, type, capacity, phone, opening_condition, lat, lon, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name, lat, lon) DO NOTHING`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare shelter insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, sh := range shelters {
		id := sh.ID
		if id == "" {
			id = uuid.New().String()
		}
		res, err := stmt.ExecContext(ctx, id, sh.Name, sh.Address, sh.Ward, sh.Type,
			sh.Capacity, sh.Phone, sh.OpeningCondition, sh.Lat, sh.Lon, sh.Source)
		if err != nil {
			return inserted, eris.Wrapf(err, "sqlite: insert shelter %s", sh.Name)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, eris.Wrap(err, "sqlite: commit shelters")
	}
	return inserted, nil
}

func (s *SQLiteStore) NearestShelters(ctx context.Context, p geo.Point, limit int) ([]shelter.Candidate, error) {
	if !p.Valid() {
		return nil, eris.Wrapf(geo.ErrInvalidCoordinate, "lat=%v lon=%v", p.Lat, p.Lon)
	}
	if limit <= 0 {
		limit = 1
	}

	// A half-degree window comfortably covers a metropolitan dataset
	// around the query point.
	const window = 0.5
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, address, ward, type, capacity, phone, opening_condition, lat, lon
		FROM shelters
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`,
		p.Lat-window, p.Lat+window, p.Lon-window, p.Lon+window)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query shelters")
	}
	defer rows.Close()

	var out []shelter.Candidate
	for rows.Next() {
		var sh Shelter
		if err := rows.Scan(&sh.Name, &sh.Address, &sh.Ward, &sh.Type,
			&sh.Capacity, &sh.Phone, &sh.OpeningCondition, &sh.Lat, &sh.Lon); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan shelter")
		}
		dist := geo.HaversineKM(p, geo.Point{Lat: sh.Lat, Lon: sh.Lon})
		out = append(out, sh.Candidate(dist))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate shelters")
	}

	sort.Slice(out, func(i, j int) bool { return out[i].DistanceKM < out[j].DistanceKM })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *SQLiteStore) PutRiskPoints(ctx context.Context, points []RiskPoint) (int, error) {
	if len(points) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO risk_points (id, lat, lon, flood_score, landslide_score, tsunami_score,
			overall_risk, risk_description, elev_score, slope_score, river_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lat, lon) DO UPDATE SET
			flood_score = excluded.flood_score,
			landslide_score = excluded.landslide_score,
			tsunami_score = excluded.tsunami_score,
			overall_risk = excluded.overall_risk,
			risk_description = excluded.risk_description,
			elev_score = excluded.elev_score,
			slope_score = excluded.slope_score,
			river_score = excluded.river_score`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare risk point insert")
	}
	defer stmt.Close()

	for _, rp := range points {
		id := rp.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := stmt.ExecContext(ctx, id, rp.Lat, rp.Lon,
			rp.FloodScore, rp.LandslideScore, rp.TsunamiScore, rp.OverallRisk,
			rp.RiskDescription, rp.ElevScore, rp.SlopeScore, rp.RiverScore); err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert risk point (%v, %v)", rp.Lat, rp.Lon)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit risk points")
	}
	return len(points), nil
}

func (s *SQLiteStore) NearestRiskPoint(ctx context.Context, p geo.Point) (*RiskPoint, float64, error) {
	if !p.Valid() {
		return nil, 0, eris.Wrapf(geo.ErrInvalidCoordinate, "lat=%v lon=%v", p.Lat, p.Lon)
	}

	latWindow, lonWindow := riskWindow(p.Lat)
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lat, lon, flood_score, landslide_score, tsunami_score,
			overall_risk, risk_description, elev_score, slope_score, river_score
		FROM risk_points
		WHERE lat BETWEEN ? AND ? AND lon BETWEEN ? AND ?`,
		p.Lat-latWindow, p.Lat+latWindow, p.Lon-lonWindow, p.Lon+lonWindow)
	if err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: query risk points")
	}
	defer rows.Close()

	var best *RiskPoint
	bestMeters := math.Inf(1)
	for rows.Next() {
		var rp RiskPoint
		if err := rows.Scan(&rp.ID, &rp.Lat, &rp.Lon,
			&rp.FloodScore, &rp.LandslideScore, &rp.TsunamiScore, &rp.OverallRisk,
			&rp.RiskDescription, &rp.ElevScore, &rp.SlopeScore, &rp.RiverScore); err != nil {
			return nil, 0, eris.Wrap(err, "sqlite: scan risk point")
		}
		meters := geo.HaversineKM(p, geo.Point{Lat: rp.Lat, Lon: rp.Lon}) * 1000
		if meters < bestMeters {
			cp := rp
			best = &cp
			bestMeters = meters
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, eris.Wrap(err, "sqlite: iterate risk points")
	}

	if best == nil || bestMeters > MaxRiskMatchMeters {
		return nil, 0, eris.Wrapf(ErrNoRiskPoint, "lat=%v lon=%v", p.Lat, p.Lon)
	}
	return best, bestMeters, nil
}

// riskWindow converts the match radius into degree offsets around the
// given latitude.
func riskWindow(lat float64) (latDeg, lonDeg float64) {
	latDeg = MaxRiskMatchMeters / 111320.0
	cos := math.Cos(lat * math.Pi / 180)
	if cos < 0.01 {
		cos = 0.01
	}
	lonDeg = latDeg / cos
	return latDeg, lonDeg
}
