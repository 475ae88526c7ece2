package game

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scythe504/wordsearch-backend/internal"
)

var testGrid = strings.Split("ABCDEFGHIJKLMNOPQRSTUVWXY", "")

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, opts Options) (*Manager, *fakeTransport) {
	t.Helper()

	tr := newFakeTransport()
	if opts.NewGrid == nil {
		opts.NewGrid = func() []string { return append([]string(nil), testGrid...) }
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return testNow }
	}
	return NewManager(tr, newFakeDictionary("CHAT", "TABLE", "ANIMAL", "ELEPHANT"), opts), tr
}

func startedRoom(t *testing.T, m *Manager, code string) {
	t.Helper()
	require.NoError(t, m.Join("a", code, "alice"))
	require.NoError(t, m.Join("b", code, "bob"))
}

func roomStatus(t *testing.T, m *Manager, code string) internal.GameStatus {
	t.Helper()
	room, ok := m.rooms.Get(code)
	require.True(t, ok, "room %s missing", code)
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	return room.Status
}

func TestEndToEndScenario(t *testing.T) {
	m, tr := newTestManager(t, Options{})

	require.NoError(t, m.Join("a", "ABCD", "alice"))
	started := tr.events("a", internal.EventGameStarted)
	require.Len(t, started, 1)
	data := started[0].Data.(internal.GameStartedData)
	assert.Equal(t, testGrid, data.Grid)
	assert.Equal(t, []string{"alice"}, data.Players)
	assert.Equal(t, "a", data.MyId)
	assert.Equal(t, internal.StatusWaiting, roomStatus(t, m, "ABCD"))

	require.NoError(t, m.Join("b", "ABCD", "bob"))
	assert.Equal(t, []string{internal.EventGameStarted, internal.EventPlayerJoined, internal.EventGameBegin}, tr.types("a"))
	assert.Equal(t, []string{internal.EventGameStarted, internal.EventGameBegin}, tr.types("b"))

	beginA := tr.events("a", internal.EventGameBegin)[0].Data.(internal.GameBeginData)
	beginB := tr.events("b", internal.EventGameBegin)[0].Data.(internal.GameBeginData)
	assert.Equal(t, beginA, beginB)
	assert.Equal(t, testNow.UnixMilli(), beginA.StartTime)
	assert.Equal(t, testGrid, beginA.Grid)
	assert.Equal(t, internal.StatusPlaying, roomStatus(t, m, "ABCD"))

	tr.reset()
	m.SubmitWord("a", "ABCD", "TABLE")
	require.Equal(t, []string{internal.EventWordAccepted}, tr.types("a"))
	assert.Equal(t, internal.WordAcceptedData{Word: "TABLE", Score: 5, TotalScore: 5}, tr.events("a")[0].Data)
	require.Equal(t, []string{internal.EventScoreUpdated}, tr.types("b"))
	assert.Equal(t, internal.ScoreUpdatedData{PlayerId: "a", Username: "alice", Score: 5}, tr.events("b")[0].Data)

	// no cross-player duplicate conflict
	tr.reset()
	m.SubmitWord("b", "ABCD", "TABLE")
	assert.Equal(t, internal.WordAcceptedData{Word: "TABLE", Score: 5, TotalScore: 5}, tr.events("b")[0].Data)

	tr.reset()
	m.Disconnect("a")
	require.Equal(t, []string{internal.EventPlayerLeft}, tr.types("b"))
	assert.Equal(t, internal.PlayerLeftData{PlayerId: "a", Username: "alice"}, tr.events("b")[0].Data)

	_, ok := m.rooms.Get("ABCD")
	assert.False(t, ok)
	assert.Zero(t, m.rooms.Count())
	assert.Zero(t, tr.members("ABCD"))
}

func TestSubmitWordValidation(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	startedRoom(t, m, "ROOM")
	tr.reset()

	m.SubmitWord("a", "ROOM", "chat")
	m.SubmitWord("a", "ROOM", "CHAT")
	m.SubmitWord("a", "ROOM", "ZZZZZ")
	m.SubmitWord("a", "ROOM", "   ")
	m.SubmitWord("a", "ROOM", " Elephant ")

	events := tr.events("a")
	require.Len(t, events, 5)
	assert.Equal(t, internal.WordAcceptedData{Word: "chat", Score: 4, TotalScore: 4}, events[0].Data)
	assert.Equal(t, event{Type: internal.EventWordDuplicate, Data: internal.WordData{Word: "CHAT"}}, events[1])
	assert.Equal(t, event{Type: internal.EventWordInvalid, Data: internal.WordData{Word: "ZZZZZ"}}, events[2])
	assert.Equal(t, event{Type: internal.EventWordInvalid, Data: internal.WordData{Word: ""}}, events[3])
	assert.Equal(t, internal.WordAcceptedData{Word: "Elephant", Score: 13, TotalScore: 17}, events[4].Data)

	// only accepted words reach the opponent
	assert.Len(t, tr.events("b", internal.EventScoreUpdated), 2)
	assert.Len(t, tr.events("b"), 2)

	room, _ := m.rooms.Get("ROOM")
	player, _ := room.GetPlayer("a")
	assert.Equal(t, []string{"CHAT", "ELEPHANT"}, player.FoundWords)
	assert.Equal(t, 17, player.Score)
}

func TestSubmitWordIgnored(t *testing.T) {
	m, tr := newTestManager(t, Options{})

	// unknown room
	m.SubmitWord("a", "NOPE", "CHAT")
	assert.Empty(t, tr.events("a"))

	// waiting room
	require.NoError(t, m.Join("a", "ROOM", "alice"))
	tr.reset()
	m.SubmitWord("a", "ROOM", "CHAT")
	assert.Empty(t, tr.events("a"))

	require.NoError(t, m.Join("b", "ROOM", "bob"))
	tr.reset()

	// not a member
	m.SubmitWord("x", "ROOM", "CHAT")
	assert.Empty(t, tr.events("x"))
	assert.Empty(t, tr.events("a"))

	// finished room
	m.Finish("ROOM")
	tr.reset()
	m.SubmitWord("a", "ROOM", "ZZZZZ")
	assert.Empty(t, tr.events("a"))
}

func TestFinishBroadcastsResults(t *testing.T) {
	sink := &recordingSink{}
	m, tr := newTestManager(t, Options{Results: sink})
	startedRoom(t, m, "ROOM")

	m.SubmitWord("b", "ROOM", "ANIMAL")
	m.SubmitWord("a", "ROOM", "CHAT")
	tr.reset()

	m.Finish("ROOM")
	want := []internal.PlayerResult{
		{Username: "bob", Score: 8, Words: []string{"ANIMAL"}},
		{Username: "alice", Score: 4, Words: []string{"CHAT"}},
	}
	for _, conn := range []string{"a", "b"} {
		results := tr.events(conn, internal.EventGameResults)
		require.Len(t, results, 1, conn)
		assert.Equal(t, want, results[0].Data)
	}
	assert.Equal(t, internal.StatusFinished, roomStatus(t, m, "ROOM"))

	// finished rooms stay registered until players leave
	room, ok := m.rooms.Get("ROOM")
	require.True(t, ok)
	room.Mu.RLock()
	assert.Nil(t, room.Timer)
	room.Mu.RUnlock()

	// idempotent
	m.Finish("ROOM")
	assert.Len(t, tr.events("a", internal.EventGameResults), 1)

	require.Eventually(t, func() bool { return len(sink.saved()) == 1 }, time.Second, 5*time.Millisecond)
	record := sink.saved()[0]
	assert.Equal(t, "ROOM", record.RoomCode)
	assert.Equal(t, internal.FinishManual, record.Reason)
	assert.Equal(t, want, record.Players)
	assert.Equal(t, testNow, record.StartedAt)
}

func TestFinishIgnoredUnlessPlaying(t *testing.T) {
	m, tr := newTestManager(t, Options{})

	m.Finish("NOPE")

	require.NoError(t, m.Join("a", "ROOM", "alice"))
	m.Finish("ROOM")
	assert.Empty(t, tr.events("a", internal.EventGameResults))
	assert.Equal(t, internal.StatusWaiting, roomStatus(t, m, "ROOM"))
}

func TestTimerFinishesGame(t *testing.T) {
	sink := &recordingSink{}
	m, tr := newTestManager(t, Options{GameDuration: 30 * time.Millisecond, Results: sink})
	startedRoom(t, m, "ROOM")
	m.SubmitWord("a", "ROOM", "CHAT")

	require.Eventually(t, func() bool {
		return len(tr.events("a", internal.EventGameResults)) == 1 &&
			len(tr.events("b", internal.EventGameResults)) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, internal.StatusFinished, roomStatus(t, m, "ROOM"))

	require.Eventually(t, func() bool { return len(sink.saved()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, internal.FinishTimeout, sink.saved()[0].Reason)

	// a late manual finish changes nothing
	m.Finish("ROOM")
	assert.Len(t, tr.events("a", internal.EventGameResults), 1)
}

func TestManualFinishCancelsTimer(t *testing.T) {
	m, tr := newTestManager(t, Options{GameDuration: 40 * time.Millisecond})
	startedRoom(t, m, "ROOM")

	m.Finish("ROOM")
	time.Sleep(120 * time.Millisecond)

	assert.Len(t, tr.events("a", internal.EventGameResults), 1)
	assert.Len(t, tr.events("b", internal.EventGameResults), 1)
}

func TestCleanupCancelsTimer(t *testing.T) {
	m, tr := newTestManager(t, Options{GameDuration: 40 * time.Millisecond})
	startedRoom(t, m, "ROOM")

	m.Disconnect("b")
	time.Sleep(120 * time.Millisecond)

	assert.Empty(t, tr.events("a", internal.EventGameResults))
	assert.Zero(t, m.rooms.Count())
}

func TestThirdJoinerDoesNotRestart(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	startedRoom(t, m, "ROOM")
	m.SubmitWord("a", "ROOM", "CHAT")
	tr.reset()

	require.NoError(t, m.Join("c", "ROOM", "carol"))

	assert.Equal(t, []string{internal.EventGameStarted}, tr.types("c"))
	assert.Equal(t, []string{internal.EventPlayerJoined}, tr.types("a"))
	assert.Equal(t, []string{internal.EventPlayerJoined}, tr.types("b"))
	assert.Equal(t, []string{"alice", "bob", "carol"}, tr.events("c")[0].Data.(internal.GameStartedData).Players)

	room, _ := m.rooms.Get("ROOM")
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	assert.Equal(t, internal.StatusPlaying, room.Status)
	assert.Equal(t, testNow, room.StartTime)
	alice, _ := room.GetPlayer("a")
	assert.Equal(t, 4, alice.Score)
}

func TestDisconnectKeepsRoomWithTwoLeft(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	startedRoom(t, m, "ROOM")
	require.NoError(t, m.Join("c", "ROOM", "carol"))
	tr.reset()

	m.Disconnect("c")
	assert.Equal(t, []string{internal.EventPlayerLeft}, tr.types("a"))
	assert.Equal(t, []string{internal.EventPlayerLeft}, tr.types("b"))
	assert.Empty(t, tr.events("c"))

	room, ok := m.rooms.Get("ROOM")
	require.True(t, ok)
	room.Mu.RLock()
	assert.Equal(t, 2, room.GetPlayerCount())
	assert.NotNil(t, room.Timer)
	room.Mu.RUnlock()

	// repeated and unknown disconnects are no-ops
	m.Disconnect("c")
	m.Disconnect("ghost")
	assert.Len(t, tr.events("a"), 1)
}

func TestLoneWaitingPlayerLeaving(t *testing.T) {
	m, _ := newTestManager(t, Options{})
	require.NoError(t, m.Join("a", "ROOM", "alice"))

	m.Disconnect("a")
	assert.Zero(t, m.rooms.Count())

	// the code is free again and gets a fresh waiting room
	require.NoError(t, m.Join("b", "ROOM", "bob"))
	assert.Equal(t, internal.StatusWaiting, roomStatus(t, m, "ROOM"))
}

func TestJoinRejections(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	startedRoom(t, m, "ROOM")

	err := m.Join("a", "ROOM", "alice")
	require.ErrorIs(t, err, ErrAlreadyJoined)

	m.Finish("ROOM")
	tr.reset()

	err = m.Join("c", "ROOM", "carol")
	require.ErrorIs(t, err, ErrRoomFinished)
	require.Equal(t, []string{internal.EventJoinRejected}, tr.types("c"))
	assert.Equal(t, internal.JoinRejectedData{RoomCode: "ROOM", Reason: ErrRoomFinished.Error()}, tr.events("c")[0].Data)
	assert.Empty(t, tr.events("a"))

	// the rejected connection is not tracked
	m.Disconnect("c")
	assert.Empty(t, tr.events("a"))
}

func TestJoinDefaultsUsername(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	require.NoError(t, m.Join("a", "ROOM", "  "))

	data := tr.events("a", internal.EventGameStarted)[0].Data.(internal.GameStartedData)
	assert.Equal(t, []string{internal.DefaultUsername}, data.Players)
}

func TestJoinSwitchesRooms(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	startedRoom(t, m, "ONE")
	require.NoError(t, m.Join("c", "ONE", "carol"))
	tr.reset()

	require.NoError(t, m.Join("c", "TWO", "carol"))
	assert.Equal(t, []string{internal.EventPlayerLeft}, tr.types("a"))
	assert.Equal(t, []string{internal.EventGameStarted}, tr.types("c"))

	room, _ := m.rooms.Get("ONE")
	room.Mu.RLock()
	assert.Equal(t, 2, room.GetPlayerCount())
	room.Mu.RUnlock()

	code, ok := m.roomOf("c")
	require.True(t, ok)
	assert.Equal(t, "TWO", code)
}

func TestConcurrentJoinStartsOnce(t *testing.T) {
	for range 20 {
		m, tr := newTestManager(t, Options{})

		var wg sync.WaitGroup
		for _, id := range []string{"a", "b", "c", "d"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, m.Join(id, "RACE", id))
			}()
		}
		wg.Wait()

		assert.Equal(t, 1, m.rooms.Count())
		begins := 0
		for _, id := range []string{"a", "b", "c", "d"} {
			begins += len(tr.events(id, internal.EventGameBegin))
		}
		// only the first two members receive game-begin
		assert.Equal(t, 2, begins)

		m.Finish("RACE")
	}
}

func TestConcurrentSubmissions(t *testing.T) {
	m, tr := newTestManager(t, Options{})
	startedRoom(t, m, "ROOM")
	tr.reset()

	var wg sync.WaitGroup
	for range 10 {
		for _, id := range []string{"a", "b"} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.SubmitWord(id, "ROOM", "CHAT")
			}()
		}
	}
	wg.Wait()

	for _, id := range []string{"a", "b"} {
		assert.Len(t, tr.events(id, internal.EventWordAccepted), 1, id)
		assert.Len(t, tr.events(id, internal.EventWordDuplicate), 9, id)
	}
	room, _ := m.rooms.Get("ROOM")
	room.Mu.RLock()
	defer room.Mu.RUnlock()
	for _, p := range room.Players {
		assert.Equal(t, 4, p.Score)
	}
}

func TestDispatch(t *testing.T) {
	m, tr := newTestManager(t, Options{})

	raw := func(v any) json.RawMessage {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		return b
	}

	m.Dispatch("a", internal.Message[json.RawMessage]{Type: internal.EventJoinGame, Data: raw(internal.JoinGameData{RoomCode: "ROOM", Username: "alice"})})
	m.Dispatch("b", internal.Message[json.RawMessage]{Type: internal.EventJoinGame, Data: raw(internal.JoinGameData{RoomCode: "ROOM", Username: "bob"})})
	assert.Equal(t, internal.StatusPlaying, roomStatus(t, m, "ROOM"))
	tr.reset()

	// roomCode falls back to the seated room
	m.Dispatch("a", internal.Message[json.RawMessage]{Type: internal.EventWordFound, Data: raw(map[string]string{"word": "chat"})})
	assert.Equal(t, []string{internal.EventWordAccepted}, tr.types("a"))

	m.Dispatch("a", internal.Message[json.RawMessage]{Type: internal.EventWordFound, Data: json.RawMessage(`{"word": 12}`)})
	m.Dispatch("a", internal.Message[json.RawMessage]{Type: internal.EventJoinGame})
	m.Dispatch("a", internal.Message[json.RawMessage]{Type: internal.EventJoinGame, Data: raw(map[string]string{"username": "x"})})
	m.Dispatch("a", internal.Message[json.RawMessage]{Type: "draw"})
	assert.Len(t, tr.events("a", internal.EventError), 4)

	m.Dispatch("b", internal.Message[json.RawMessage]{Type: internal.EventGameFinished, Data: raw(internal.GameFinishedData{RoomCode: "ROOM"})})
	assert.Len(t, tr.events("a", internal.EventGameResults), 1)
}
