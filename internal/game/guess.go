package game

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// =============================================================================
// WORD HANDLING
// =============================================================================

// SubmitWord validates a word claimed by connID in roomCode. Submissions
// against a missing or non-playing room, or from someone who is not seated in
// it, are dropped without a reply.
func (m *Manager) SubmitWord(connID, roomCode, word string) {
	room, ok := m.rooms.Get(roomCode)
	if !ok {
		log.Debug().Str("room", roomCode).Str("conn", connID).Msg("[SubmitWord] unknown room, ignoring")
		return
	}

	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Closed || !room.IsPlaying() {
		log.Debug().Str("room", roomCode).Str("status", string(room.Status)).
			Msg("[SubmitWord] room not playing, ignoring")
		return
	}
	player, ok := room.GetPlayer(connID)
	if !ok {
		log.Debug().Str("room", roomCode).Str("conn", connID).Msg("[SubmitWord] sender not in room, ignoring")
		return
	}

	word = strings.TrimSpace(word)

	if word == "" || !m.dict.Contains(word) {
		log.Debug().Str("room", roomCode).Str("conn", connID).Str("word", word).Msg("[SubmitWord] not in dictionary")
		m.send(connID, internal.EventWordInvalid, internal.WordData{Word: word})
		return
	}
	if player.HasFound(word) {
		log.Debug().Str("room", roomCode).Str("conn", connID).Str("word", word).Msg("[SubmitWord] already found")
		m.send(connID, internal.EventWordDuplicate, internal.WordData{Word: word})
		return
	}

	points := CalculateWordScore(word)
	total := player.AddWord(word, points)

	log.Info().Str("room", roomCode).Str("conn", connID).Str("word", word).
		Int("points", points).Int("total", total).Msg("[SubmitWord] word accepted")

	m.send(connID, internal.EventWordAccepted, internal.WordAcceptedData{
		Word:       word,
		Score:      points,
		TotalScore: total,
	})
	m.broadcastExcept(room, connID, internal.EventScoreUpdated, internal.ScoreUpdatedData{
		PlayerId: connID,
		Username: player.Username,
		Score:    total,
	})
}
