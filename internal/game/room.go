package game

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// =============================================================================
// ROOM MANAGEMENT
// =============================================================================

// Registry maps room codes to rooms. Lock order is room -> registry: the
// registry mutex is never held while a room lock is being acquired.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*internal.Room
	newGrid func() []string
}

func NewRegistry(newGrid func() []string) *Registry {
	return &Registry{
		rooms:   make(map[string]*internal.Room),
		newGrid: newGrid,
	}
}

// GetOrCreate returns the room for code, creating a waiting room with a fresh
// grid when none exists. created reports whether this call made the room.
func (r *Registry) GetOrCreate(code string) (room *internal.Room, created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if room, exists := r.rooms[code]; exists {
		return room, false
	}

	room = internal.NewRoom(code, r.newGrid())
	r.rooms[code] = room

	log.Info().Str("room", code).Msg("[GetOrCreate] created new room")
	return room, true
}

func (r *Registry) Get(code string) (*internal.Room, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Delete removes code only while it still maps to room, so a late delete can
// never drop a newer room created under the same code.
func (r *Registry) Delete(code string, room *internal.Room) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if current, ok := r.rooms[code]; !ok || current != room {
		return false
	}
	delete(r.rooms, code)
	return true
}

func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Joinable returns the code of a waiting room that needs one more player, or
// "" when there is none.
func (r *Registry) Joinable() string {
	r.mu.Lock()
	rooms := make([]*internal.Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	r.mu.Unlock()

	for _, room := range rooms {
		room.Mu.RLock()
		ok := !room.Closed && room.Status == internal.StatusWaiting &&
			room.GetPlayerCount() == internal.PlayersToStart-1
		roomID := room.Id
		room.Mu.RUnlock()

		if ok {
			log.Debug().Str("room", roomID).Msg("[Joinable] found joinable room")
			return roomID
		}
	}
	return ""
}

// Join seats connID in roomCode, creating the room on first join. A
// connection seated in another room leaves it first.
func (m *Manager) Join(connID, roomCode, username string) error {
	if prev, ok := m.releaseOtherRoom(connID, roomCode); ok {
		log.Info().Str("conn", connID).Str("from", prev).Str("to", roomCode).
			Msg("[Join] connection switching rooms")
		m.removePlayer(connID, prev)
	}

	for {
		room, _ := m.rooms.GetOrCreate(roomCode)

		room.Mu.Lock()
		if room.Closed {
			// deleted between lookup and lock; the registry no longer holds it
			room.Mu.Unlock()
			continue
		}
		err := m.addPlayerLocked(room, connID, username)
		room.Mu.Unlock()
		return err
	}
}

// addPlayerLocked expects room.Mu to be held.
func (m *Manager) addPlayerLocked(room *internal.Room, connID, username string) error {
	if room.IsFinished() {
		log.Info().Str("room", room.Id).Str("conn", connID).Msg("[AddPlayer] rejecting join to finished room")
		m.send(connID, internal.EventJoinRejected, internal.JoinRejectedData{
			RoomCode: room.Id,
			Reason:   ErrRoomFinished.Error(),
		})
		return ErrRoomFinished
	}
	if _, ok := room.GetPlayer(connID); ok {
		m.send(connID, internal.EventJoinRejected, internal.JoinRejectedData{
			RoomCode: room.Id,
			Reason:   ErrAlreadyJoined.Error(),
		})
		return ErrAlreadyJoined
	}

	player := internal.NewPlayer(connID, username)
	room.AddPlayer(player)
	m.transport.JoinGroup(room.Id, connID)
	m.setRoom(connID, room.Id)

	players := room.Usernames()

	log.Info().Str("room", room.Id).Str("conn", connID).Str("username", player.Username).
		Int("players", len(players)).Msg("[AddPlayer] player joined")

	m.send(connID, internal.EventGameStarted, internal.GameStartedData{
		Grid:     room.GridCopy(),
		RoomCode: room.Id,
		Players:  players,
		MyId:     connID,
	})
	m.broadcastExcept(room, connID, internal.EventPlayerJoined, internal.PlayerJoinedData{
		Username: player.Username,
		Players:  players,
	})

	if room.CanStartGame() {
		m.startGameLocked(room)
	}
	return nil
}

// removePlayer handles a departure from roomCode and cleans the room up when
// at most one player remains.
func (m *Manager) removePlayer(connID, roomCode string) {
	room, ok := m.rooms.Get(roomCode)
	if !ok {
		log.Debug().Str("room", roomCode).Str("conn", connID).Msg("[removePlayer] room already gone")
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed {
		return
	}

	player, ok := room.RemovePlayer(connID)
	m.transport.LeaveGroup(roomCode, connID)
	if !ok {
		log.Debug().Str("room", roomCode).Str("conn", connID).Msg("[removePlayer] player not in room")
		return
	}

	remaining := room.GetPlayerCount()
	log.Info().Str("room", roomCode).Str("conn", connID).Str("username", player.Username).
		Int("remaining", remaining).Msg("[removePlayer] player left")

	m.broadcastExcept(room, connID, internal.EventPlayerLeft, internal.PlayerLeftData{
		PlayerId: connID,
		Username: player.Username,
	})

	if remaining <= 1 {
		m.cleanupRoomLocked(room)
	}
}

// cleanupRoomLocked cancels the timer and drops the room from the registry.
// Expects room.Mu to be held.
func (m *Manager) cleanupRoomLocked(room *internal.Room) {
	cancelGameTimer(room)
	room.Closed = true

	for _, id := range room.PlayerOrder {
		m.transport.LeaveGroup(room.Id, id)
	}
	m.rooms.Delete(room.Id, room)

	log.Info().Str("room", room.Id).Msg("[CleanupRoom] room removed")
}
