package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// ErrDisabled is returned by FromEnv when no database is configured.
var ErrDisabled = errors.New("database not configured")

// Service is the finished-games archive.
type Service interface {
	// Health returns a map of health status information.
	Health() map[string]string

	SaveGame(ctx context.Context, record internal.GameRecord) error

	// RecentGames returns up to limit games, most recently finished first.
	RecentGames(ctx context.Context, limit int) ([]internal.GameRecord, error)

	Close() error
}

type Config struct {
	Host     string
	Port     string
	Database string
	Username string
	Password string
	Schema   string
}

// ConnString builds a postgres URL with search_path set to the schema.
func (c Config) ConnString() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.Username, c.Password),
		Host:   c.Host + ":" + c.Port,
		Path:   c.Database,
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if c.Schema != "" {
		q.Set("search_path", c.Schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ConfigFromEnv reads DB_* variables. ErrDisabled means DB_HOST is unset.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Host:     os.Getenv("DB_HOST"),
		Port:     os.Getenv("DB_PORT"),
		Database: os.Getenv("DB_DATABASE"),
		Username: os.Getenv("DB_USERNAME"),
		Password: os.Getenv("DB_PASSWORD"),
		Schema:   os.Getenv("DB_SCHEMA"),
	}
	if cfg.Host == "" {
		return cfg, ErrDisabled
	}
	if cfg.Port == "" {
		cfg.Port = "5432"
	}
	if cfg.Schema == "" {
		cfg.Schema = "public"
	}
	return cfg, nil
}

type service struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id          BIGSERIAL PRIMARY KEY,
	room_code   TEXT        NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	reason      TEXT        NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_games_finished_at ON games (finished_at DESC);
CREATE TABLE IF NOT EXISTS game_players (
	game_id  BIGINT  NOT NULL REFERENCES games (id) ON DELETE CASCADE,
	rank     INTEGER NOT NULL,
	username TEXT    NOT NULL,
	score    INTEGER NOT NULL,
	words    TEXT[]  NOT NULL DEFAULT '{}',
	PRIMARY KEY (game_id, rank)
);`

// New connects to postgres and makes sure the archive tables exist.
func New(ctx context.Context, cfg Config) (Service, error) {
	pool, err := pgxpool.New(ctx, cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Host, err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Str("schema", cfg.Schema).
		Msg("[database] connected")
	return &service{pool: pool}, nil
}

// Health checks the pool and reports its statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	stats := make(map[string]string)

	if err := s.pool.Ping(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		log.Error().Err(err).Msg("[Health] database ping failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	poolStats := s.pool.Stat()
	stats["total_connections"] = strconv.Itoa(int(poolStats.TotalConns()))
	stats["idle_connections"] = strconv.Itoa(int(poolStats.IdleConns()))
	stats["acquired_connections"] = strconv.Itoa(int(poolStats.AcquiredConns()))
	stats["max_connections"] = strconv.Itoa(int(poolStats.MaxConns()))
	stats["acquire_count"] = strconv.FormatInt(poolStats.AcquireCount(), 10)

	if poolStats.AcquiredConns() >= poolStats.MaxConns() {
		stats["message"] = "The database is experiencing heavy load."
	}
	return stats
}

// SaveGame stores the game and its ranked players in one transaction.
func (s *service) SaveGame(ctx context.Context, record internal.GameRecord) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var gameID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO games (room_code, started_at, finished_at, reason)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		record.RoomCode, record.StartedAt, record.FinishedAt, string(record.Reason),
	).Scan(&gameID)
	if err != nil {
		return fmt.Errorf("insert game %s: %w", record.RoomCode, err)
	}

	batch := &pgx.Batch{}
	for rank, p := range record.Players {
		words := p.Words
		if words == nil {
			words = []string{}
		}
		batch.Queue(
			`INSERT INTO game_players (game_id, rank, username, score, words) VALUES ($1, $2, $3, $4, $5)`,
			gameID, rank+1, p.Username, p.Score, words,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert players for game %d: %w", gameID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit game %d: %w", gameID, err)
	}
	return nil
}

func (s *service) RecentGames(ctx context.Context, limit int) ([]internal.GameRecord, error) {
	if limit <= 0 {
		limit = internal.DefaultResultsCap
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, room_code, started_at, finished_at, reason
		 FROM games ORDER BY finished_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}

	var (
		ids     []int64
		records []internal.GameRecord
	)
	for rows.Next() {
		var (
			id     int64
			rec    internal.GameRecord
			reason string
		)
		if err := rows.Scan(&id, &rec.RoomCode, &rec.StartedAt, &rec.FinishedAt, &reason); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan game: %w", err)
		}
		rec.Reason = internal.FinishReason(reason)
		rec.Players = make([]internal.PlayerResult, 0, internal.PlayersToStart)
		ids = append(ids, id)
		records = append(records, rec)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read games: %w", err)
	}
	if len(ids) == 0 {
		return records, nil
	}

	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	rows, err = s.pool.Query(ctx,
		`SELECT game_id, username, score, words FROM game_players
		 WHERE game_id = ANY($1) ORDER BY game_id, rank`, ids)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			gameID int64
			p      internal.PlayerResult
		)
		if err := rows.Scan(&gameID, &p.Username, &p.Score, &p.Words); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		i := index[gameID]
		records[i].Players = append(records[i].Players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read players: %w", err)
	}
	return records, nil
}

// Close closes the pool.
func (s *service) Close() error {
	log.Info().Msg("[database] disconnecting")
	s.pool.Close()
	return nil
}
