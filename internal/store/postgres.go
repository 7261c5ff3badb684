package store

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/osaka-bousai/riskpoint/internal/db"
	"github.com/osaka-bousai/riskpoint/internal/geo"
	"github.com/osaka-bousai/riskpoint/internal/shelter"
)

// PostgresStore implements Store on Postgres with PostGIS. Proximity
// ordering uses the geography KNN operator so the index does the work.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

const postgresMigration = `
CREATE EXTENSION IF NOT EXISTS postgis;

CREATE TABLE IF NOT EXISTS shelters (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	address           TEXT NOT NULL DEFAULT '',
	ward              TEXT NOT NULL DEFAULT '',
	type              TEXT NOT NULL DEFAULT '',
	capacity          INTEGER NOT NULL DEFAULT 0,
	phone             TEXT NOT NULL DEFAULT '',
	opening_condition TEXT NOT NULL DEFAULT '',
	lat               DOUBLE PRECISION NOT NULL,
	lon               DOUBLE PRECISION NOT NULL,
	source            TEXT NOT NULL DEFAULT '',
	geom              geography(Point, 4326)
		GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(lon, lat), 4326)::geography) STORED,
	UNIQUE (name, lat, lon)
);

CREATE TABLE IF NOT EXISTS risk_points (
	id               TEXT PRIMARY KEY,
	lat              DOUBLE PRECISION NOT NULL,
	lon              DOUBLE PRECISION NOT NULL,
	flood_score      DOUBLE PRECISION,
	landslide_score  DOUBLE PRECISION,
	tsunami_score    DOUBLE PRECISION,
	overall_risk     DOUBLE PRECISION,
	risk_description TEXT NOT NULL DEFAULT '',
	elev_score       DOUBLE PRECISION,
	slope_score      DOUBLE PRECISION,
	river_score      DOUBLE PRECISION,
	geom             geography(Point, 4326)
		GENERATED ALWAYS AS (ST_SetSRID(ST_MakePoint(lon, lat), 4326)::geography) STORED,
	UNIQUE (lat, lon)
);

CREATE INDEX IF NOT EXISTS idx_shelters_geom ON shelters USING GIST (geom);
CREATE INDEX IF NOT EXISTS idx_risk_points_geom ON risk_points USING GIST (geom);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

var shelterColumns = []string{
	"id", "name", "address", "ward", "type", "capacity",
	"phone", "opening_condition", "lat", "lon", "source",
}

func (s *PostgresStore) PutShelters(ctx context.Context, shelters []Shelter) (int, error) {
	rows := make([][]any, 0, len(shelters))
	for _, sh := range shelters {
		id := sh.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, sh.Name, sh.Address, sh.Ward, sh.Type,
			sh.Capacity, sh.Phone, sh.OpeningCondition, sh.Lat, sh.Lon, sh.Source})
	}

	n, err := db.CopyFrom(ctx, s.pool, "shelters", shelterColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: put shelters")
	}
	return int(n), nil
}

func (s *PostgresStore) NearestShelters(ctx context.Context, p geo.Point, limit int) ([]shelter.Candidate, error) {
	if !p.Valid() {
		return nil, eris.Wrapf(geo.ErrInvalidCoordinate, "lat=%v lon=%v", p.Lat, p.Lon)
	}
	if limit <= 0 {
		limit = 1
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.name, s.address, s.ward, s.type, s.capacity, s.phone, s.opening_condition,
			s.lat, s.lon,
			ST_Distance(s.geom, pt) / 1000 AS distance_km
		FROM shelters s,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS pt
		ORDER BY s.geom <-> pt
		LIMIT $3`, p.Lon, p.Lat, limit)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query shelters")
	}
	defer rows.Close()

	var out []shelter.Candidate
	for rows.Next() {
		var sh Shelter
		var distKM float64
		if err := rows.Scan(&sh.Name, &sh.Address, &sh.Ward, &sh.Type,
			&sh.Capacity, &sh.Phone, &sh.OpeningCondition, &sh.Lat, &sh.Lon, &distKM); err != nil {
			return nil, eris.Wrap(err, "postgres: scan shelter")
		}
		out = append(out, sh.Candidate(distKM))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate shelters")
	}
	return out, nil
}

var riskPointColumns = []string{
	"id", "lat", "lon", "flood_score", "landslide_score", "tsunami_score",
	"overall_risk", "risk_description", "elev_score", "slope_score", "river_score",
}

func (s *PostgresStore) PutRiskPoints(ctx context.Context, points []RiskPoint) (int, error) {
	rows := make([][]any, 0, len(points))
	for _, rp := range points {
		id := rp.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, rp.Lat, rp.Lon,
			rp.FloodScore, rp.LandslideScore, rp.TsunamiScore, rp.OverallRisk,
			rp.RiskDescription, rp.ElevScore, rp.SlopeScore, rp.RiverScore})
	}

	n, err := db.CopyFrom(ctx, s.pool, "risk_points", riskPointColumns, rows)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: put risk points")
	}
	return int(n), nil
}

func (s *PostgresStore) NearestRiskPoint(ctx context.Context, p geo.Point) (*RiskPoint, float64, error) {
	if !p.Valid() {
		return nil, 0, eris.Wrapf(geo.ErrInvalidCoordinate, "lat=%v lon=%v", p.Lat, p.Lon)
	}

	row := s.pool.QueryRow(ctx, `
		SELECT r.id, r.lat, r.lon, r.flood_score, r.landslide_score, r.tsunami_score,
			r.overall_risk, r.risk_description, r.elev_score, r.slope_score, r.river_score,
			ST_Distance(r.geom, pt) AS meters
		FROM risk_points r,
			ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography AS pt
		WHERE ST_DWithin(r.geom, pt, $3)
		ORDER BY r.geom <-> pt
		LIMIT 1`, p.Lon, p.Lat, MaxRiskMatchMeters)

	var rp RiskPoint
	var meters float64
	err := row.Scan(&rp.ID, &rp.Lat, &rp.Lon,
		&rp.FloodScore, &rp.LandslideScore, &rp.TsunamiScore, &rp.OverallRisk,
		&rp.RiskDescription, &rp.ElevScore, &rp.SlopeScore, &rp.RiverScore, &meters)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, eris.Wrapf(ErrNoRiskPoint, "lat=%v lon=%v", p.Lat, p.Lon)
		}
		return nil, 0, eris.Wrap(err, "postgres: nearest risk point")
	}
	if math.IsNaN(meters) {
		return nil, 0, eris.Wrapf(ErrNoRiskPoint, "lat=%v lon=%v", p.Lat, p.Lon)
	}
	return &rp, meters, nil
}
