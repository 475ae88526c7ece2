package internal

type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Inbound event types
const (
	EventJoinGame     = "join-game"
	EventWordFound    = "word-found"
	EventGameFinished = "game-finished"
)

// Outbound event types
const (
	EventGameStarted   = "game-started"
	EventPlayerJoined  = "player-joined"
	EventGameBegin     = "game-begin"
	EventWordInvalid   = "word-invalid"
	EventWordDuplicate = "word-duplicate"
	EventWordAccepted  = "word-accepted"
	EventScoreUpdated  = "score-updated"
	EventGameResults   = "game-results"
	EventPlayerLeft    = "player-left"
	EventJoinRejected  = "join-rejected"
	EventError         = "error"
)

type JoinGameData struct {
	RoomCode string `json:"roomCode"`
	Username string `json:"username"`
}

type WordFoundData struct {
	RoomCode string `json:"roomCode"`
	Word     string `json:"word"`
}

type GameFinishedData struct {
	RoomCode string `json:"roomCode"`
}

type GameStartedData struct {
	Grid     []string `json:"grid"`
	RoomCode string   `json:"roomCode"`
	Players  []string `json:"players"`
	MyId     string   `json:"myId"`
}

type PlayerJoinedData struct {
	Username string   `json:"username"`
	Players  []string `json:"players"`
}

type GameBeginData struct {
	Grid      []string `json:"grid"`
	StartTime int64    `json:"startTime"` // unix ms
}

// WordData is the payload of word-invalid and word-duplicate.
type WordData struct {
	Word string `json:"word"`
}

type WordAcceptedData struct {
	Word       string `json:"word"`
	Score      int    `json:"score"`
	TotalScore int    `json:"totalScore"`
}

type ScoreUpdatedData struct {
	PlayerId string `json:"playerId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}

type PlayerResult struct {
	Username string   `json:"username"`
	Score    int      `json:"score"`
	Words    []string `json:"words"`
}

type PlayerLeftData struct {
	PlayerId string `json:"playerId"`
	Username string `json:"username"`
}

type JoinRejectedData struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}

type ErrorData struct {
	Message string `json:"message"`
}
