package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/scythe504/wordsearch-backend/internal"
)

// =============================================================================
// TIMER MANAGEMENT
// =============================================================================

// startGameTimer arms the room's termination timer. On expiry the finish is
// applied through expire, under the room lock, never directly from the timer
// goroutine. Expects room.Mu to be held.
func (m *Manager) startGameTimer(room *internal.Room) {
	cancelGameTimer(room)

	ctx, cancel := context.WithTimeout(context.Background(), m.duration)
	room.Timer = &internal.GameTimer{
		StartTime: m.now(),
		Duration:  m.duration,
		Context:   ctx,
		Cancel:    cancel,
	}

	go func() {
		<-ctx.Done()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			m.expire(ctx, room)
		}
	}()
}

// expire is the timer's finish intent. It is a no-op unless ctx still belongs
// to the room's current timer, so a timer cancelled while in flight never
// applies.
func (m *Manager) expire(ctx context.Context, room *internal.Room) {
	room.Mu.Lock()
	defer room.Mu.Unlock()

	if room.Timer == nil || room.Timer.Context != ctx {
		log.Debug().Str("room", room.Id).Msg("[expire] stale timer, ignoring")
		return
	}
	if room.Closed || !room.IsPlaying() {
		cancelGameTimer(room)
		return
	}

	log.Info().Str("room", room.Id).Dur("after", m.duration).Msg("[expire] time is up")
	m.endGameLocked(room, internal.FinishTimeout)
}

// cancelGameTimer stops the room's timer if one is armed and reports whether
// it did. Expects room.Mu to be held.
func cancelGameTimer(room *internal.Room) bool {
	if room.Timer == nil {
		return false
	}
	if room.Timer.Cancel != nil {
		room.Timer.Cancel()
	}
	room.Timer = nil
	return true
}
