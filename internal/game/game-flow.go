package game

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// Finish ends the game in roomCode on request. Unknown rooms and rooms that
// are not playing are ignored, which also makes repeated calls no-ops.
func (m *Manager) Finish(roomCode string) {
	room, ok := m.rooms.Get(roomCode)
	if !ok {
		log.Debug().Str("room", roomCode).Msg("[Finish] unknown room, ignoring")
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed || !room.IsPlaying() {
		log.Debug().Str("room", roomCode).Str("status", string(room.Status)).
			Msg("[Finish] room not playing, ignoring")
		return
	}
	m.endGameLocked(room, internal.FinishManual)
}

// endGameLocked is the single playing -> finished transition. It cancels the
// timer, broadcasts the ranked results and hands them to the archive. The room
// itself stays registered until its players disconnect. Expects room.Mu to be
// held.
func (m *Manager) endGameLocked(room *internal.Room, reason internal.FinishReason) bool {
	if room.IsFinished() {
		return false
	}

	room.Status = internal.StatusFinished
	room.FinishedAt = m.now()
	cancelGameTimer(room)

	results := CalculateFinalResults(room)

	log.Info().Str("room", room.Id).Str("reason", string(reason)).
		Int("players", len(results)).Msg("[EndGame] broadcasting final results")

	m.broadcast(room, internal.EventGameResults, results)

	if m.results != nil {
		go m.archive(internal.GameRecord{
			RoomCode:   room.Id,
			StartedAt:  room.StartTime,
			FinishedAt: room.FinishedAt,
			Reason:     reason,
			Players:    results,
		})
	}
	return true
}

func (m *Manager) archive(record internal.GameRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
	defer cancel()

	if err := m.results.SaveGame(ctx, record); err != nil {
		log.Error().Err(err).Str("room", record.RoomCode).Msg("[archive] failed to save game")
		return
	}
	log.Debug().Str("room", record.RoomCode).Msg("[archive] game saved")
}
