package internal

import (
	"context"
	"sync"
	"time"
)

const (
	GridSize          = 25
	GameDuration      = 120 * time.Second
	PlayersToStart    = 2
	DefaultUsername   = "Anonymous"
	DefaultResultsCap = 20
)

type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// FinishReason records which path ended a game.
type FinishReason string

const (
	FinishManual  FinishReason = "manual"
	FinishTimeout FinishReason = "timeout"
)

type GameTimer struct {
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
	Context   context.Context
	Cancel    context.CancelFunc
}

type Response struct {
	StatusCode    int   `json:"status_code"`
	RespStartTime int64 `json:"resp_time_start_ms"`
	RespEndTime   int64 `json:"resp_time_end_ms"`
	NetRespTime   int64 `json:"net_resp_time_ms"`
	Data          any   `json:"data"`
}

type Room struct {
	Id   string   `json:"id"`
	Grid []string `json:"grid"`

	// Game State
	Status     GameStatus `json:"status"`
	StartTime  time.Time  `json:"start_time"`
	FinishedAt time.Time  `json:"finished_at"`

	// Players keyed by connection id; PlayerOrder keeps join order
	Players     map[string]*Player `json:"players"`
	PlayerOrder []string           `json:"player_order"`

	// Termination timer, only set while playing
	Timer *GameTimer `json:"-"`

	// Closed is set once the room has been removed from the registry
	Closed bool `json:"-"`

	// Concurrency control
	Mu sync.RWMutex `json:"-"`
}

// GameRecord is a finished game as handed to the results archive.
type GameRecord struct {
	RoomCode   string         `json:"room_code"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Reason     FinishReason   `json:"reason"`
	Players    []PlayerResult `json:"players"`
}
