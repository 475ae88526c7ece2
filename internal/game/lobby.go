package game

import (
	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// =============================================================================
// GAME FLOW - LOBBY & START
// =============================================================================

// startGameLocked moves a waiting room with two players into play: stamps the
// start time, arms the termination timer and tells every member, the joiner
// included. Expects room.Mu to be held and room.CanStartGame() to be true.
func (m *Manager) startGameLocked(room *internal.Room) {
	room.Status = internal.StatusPlaying
	room.StartTime = m.now()
	m.startGameTimer(room)

	log.Info().Str("room", room.Id).Time("start_time", room.StartTime).
		Dur("duration", m.duration).Msg("[StartGame] game started")

	m.broadcast(room, internal.EventGameBegin, internal.GameBeginData{
		Grid:      room.GridCopy(),
		StartTime: room.StartTime.UnixMilli(),
	})
}
