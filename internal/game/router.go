package game

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// Dispatch routes one decoded inbound envelope from connID. A payload without
// a roomCode falls back to the room the connection is seated in. Malformed
// payloads and unknown types are answered with an error event to the sender.
func (m *Manager) Dispatch(connID string, msg internal.Message[json.RawMessage]) {
	log.Debug().Str("conn", connID).Str("type", msg.Type).Msg("[Dispatch] received message")

	switch msg.Type {
	case internal.EventJoinGame:
		var data internal.JoinGameData
		if !m.decode(connID, msg, &data) {
			return
		}
		if data.RoomCode == "" {
			m.ReplyError(connID, "roomCode is required")
			return
		}
		if err := m.Join(connID, data.RoomCode, data.Username); err != nil {
			log.Info().Err(err).Str("conn", connID).Str("room", data.RoomCode).Msg("[Dispatch] join refused")
		}

	case internal.EventWordFound:
		var data internal.WordFoundData
		if !m.decode(connID, msg, &data) {
			return
		}
		m.SubmitWord(connID, m.resolveRoom(connID, data.RoomCode), data.Word)

	case internal.EventGameFinished:
		var data internal.GameFinishedData
		if !m.decode(connID, msg, &data) {
			return
		}
		m.Finish(m.resolveRoom(connID, data.RoomCode))

	default:
		log.Warn().Str("conn", connID).Str("type", msg.Type).Msg("[Dispatch] unknown message type")
		m.ReplyError(connID, fmt.Sprintf("unknown message type %q", msg.Type))
	}
}

func (m *Manager) decode(connID string, msg internal.Message[json.RawMessage], v any) bool {
	if len(msg.Data) == 0 {
		m.ReplyError(connID, fmt.Sprintf("%s: missing data", msg.Type))
		return false
	}
	if err := json.Unmarshal(msg.Data, v); err != nil {
		log.Warn().Err(err).Str("conn", connID).Str("type", msg.Type).Msg("[Dispatch] bad payload")
		m.ReplyError(connID, fmt.Sprintf("%s: invalid data", msg.Type))
		return false
	}
	return true
}

func (m *Manager) resolveRoom(connID, roomCode string) string {
	if roomCode != "" {
		return roomCode
	}
	code, _ := m.roomOf(connID)
	return code
}

// ReplyError sends an error event to connID only.
func (m *Manager) ReplyError(connID, message string) {
	m.send(connID, internal.EventError, internal.ErrorData{Message: message})
}
