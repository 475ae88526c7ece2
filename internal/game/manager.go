package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
	"github.com/scythe504/wordsearch-backend/internal/utils"
)

var (
	ErrRoomFinished  = errors.New("game already finished in this room")
	ErrAlreadyJoined = errors.New("connection already joined this room")
)

const archiveTimeout = 5 * time.Second

// Transport delivers outbound events. Implementations must not block: the
// manager calls them while holding a room lock.
type Transport interface {
	JoinGroup(roomCode, connID string)
	LeaveGroup(roomCode, connID string)
	SendTo(connID string, msg internal.Message[any])
	// BroadcastExcept sends to every member of roomCode except exceptConnID.
	// An empty exceptConnID reaches the whole group.
	BroadcastExcept(roomCode, exceptConnID string, msg internal.Message[any])
}

type Dictionary interface {
	Contains(word string) bool
}

// ResultSink receives finished games, e.g. the postgres archive.
type ResultSink interface {
	SaveGame(ctx context.Context, record internal.GameRecord) error
}

type Options struct {
	GameDuration time.Duration
	Results      ResultSink
	NewGrid      func() []string
	Now          func() time.Time
}

// Manager is the connection router: it owns the room registry and the
// connection -> room mapping and applies every room operation under that
// room's lock.
type Manager struct {
	rooms     *Registry
	transport Transport
	dict      Dictionary
	results   ResultSink
	duration  time.Duration
	now       func() time.Time

	connsMu sync.Mutex
	conns   map[string]string // connection id -> room code
}

func NewManager(transport Transport, dict Dictionary, opts Options) *Manager {
	if opts.GameDuration <= 0 {
		opts.GameDuration = internal.GameDuration
	}
	if opts.NewGrid == nil {
		opts.NewGrid = utils.GenerateGrid
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Manager{
		rooms:     NewRegistry(opts.NewGrid),
		transport: transport,
		dict:      dict,
		results:   opts.Results,
		duration:  opts.GameDuration,
		now:       opts.Now,
		conns:     make(map[string]string),
	}
}

// Rooms exposes the registry for read-only callers such as the HTTP routes.
func (m *Manager) Rooms() *Registry {
	return m.rooms
}

func (m *Manager) roomOf(connID string) (string, bool) {
	m.connsMu.Lock()
	defer m.connsMu.Unlock()
	code, ok := m.conns[connID]
	return code, ok
}

func (m *Manager) setRoom(connID, roomCode string) {
	m.connsMu.Lock()
	m.conns[connID] = roomCode
	m.connsMu.Unlock()
}

// releaseOtherRoom drops the mapping of connID when it points at a room other
// than roomCode and returns that room.
func (m *Manager) releaseOtherRoom(connID, roomCode string) (string, bool) {
	m.connsMu.Lock()
	defer m.connsMu.Unlock()
	prev, ok := m.conns[connID]
	if !ok || prev == roomCode {
		return "", false
	}
	delete(m.conns, connID)
	return prev, true
}

func (m *Manager) takeRoom(connID string) (string, bool) {
	m.connsMu.Lock()
	defer m.connsMu.Unlock()
	code, ok := m.conns[connID]
	delete(m.conns, connID)
	return code, ok
}

// Disconnect removes connID from its room, notifies the remaining players and
// tears the room down once it can no longer host a two-player game. Calling it
// for an unknown or already removed connection does nothing.
func (m *Manager) Disconnect(connID string) {
	roomCode, ok := m.takeRoom(connID)
	if !ok {
		log.Debug().Str("conn", connID).Msg("[Disconnect] connection was not in a room")
		return
	}
	m.removePlayer(connID, roomCode)
}

func (m *Manager) send(connID, eventType string, data any) {
	m.transport.SendTo(connID, internal.Message[any]{Type: eventType, Data: data})
}

func (m *Manager) broadcastExcept(room *internal.Room, exceptConnID, eventType string, data any) {
	m.transport.BroadcastExcept(room.Id, exceptConnID, internal.Message[any]{Type: eventType, Data: data})
}

func (m *Manager) broadcast(room *internal.Room, eventType string, data any) {
	m.broadcastExcept(room, "", eventType, data)
}
