package game

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/scythe504/wordsearch-backend/internal"
)

type event struct {
	Type string
	Data any
}

// fakeTransport records every event per connection.
type fakeTransport struct {
	mu     sync.Mutex
	groups map[string]map[string]struct{}
	inbox  map[string][]event
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		groups: make(map[string]map[string]struct{}),
		inbox:  make(map[string][]event),
	}
}

func (f *fakeTransport) JoinGroup(roomCode, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.groups[roomCode] == nil {
		f.groups[roomCode] = make(map[string]struct{})
	}
	f.groups[roomCode][connID] = struct{}{}
}

func (f *fakeTransport) LeaveGroup(roomCode, connID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.groups[roomCode], connID)
}

func (f *fakeTransport) SendTo(connID string, msg internal.Message[any]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox[connID] = append(f.inbox[connID], event{Type: msg.Type, Data: msg.Data})
}

func (f *fakeTransport) BroadcastExcept(roomCode, exceptConnID string, msg internal.Message[any]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for connID := range f.groups[roomCode] {
		if connID == exceptConnID {
			continue
		}
		f.inbox[connID] = append(f.inbox[connID], event{Type: msg.Type, Data: msg.Data})
	}
}

func (f *fakeTransport) members(roomCode string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.groups[roomCode])
}

// events returns the recorded events of connID, filtered by type when given.
func (f *fakeTransport) events(connID string, types ...string) []event {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []event
	for _, e := range f.inbox[connID] {
		if len(types) == 0 || slices.Contains(types, e.Type) {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeTransport) types(connID string) []string {
	var out []string
	for _, e := range f.events(connID) {
		out = append(out, e.Type)
	}
	return out
}

func (f *fakeTransport) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbox = make(map[string][]event)
}

type fakeDictionary map[string]struct{}

func newFakeDictionary(words ...string) fakeDictionary {
	d := make(fakeDictionary)
	for _, w := range words {
		d[strings.ToUpper(w)] = struct{}{}
	}
	return d
}

func (d fakeDictionary) Contains(word string) bool {
	_, ok := d[strings.ToUpper(word)]
	return ok
}

type recordingSink struct {
	mu      sync.Mutex
	records []internal.GameRecord
}

func (s *recordingSink) SaveGame(_ context.Context, record internal.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

func (s *recordingSink) saved() []internal.GameRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]internal.GameRecord(nil), s.records...)
}
