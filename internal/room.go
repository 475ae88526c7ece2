package internal

import "slices"

// Methods (Room Struct)
// All of them expect room.Mu to be held by the caller.

func NewRoom(code string, grid []string) *Room {
	return &Room{
		Id:          code,
		Grid:        grid,
		Status:      StatusWaiting,
		Players:     make(map[string]*Player),
		PlayerOrder: make([]string, 0, PlayersToStart),
	}
}

func (r *Room) GetPlayerCount() int {
	return len(r.Players)
}

func (r *Room) GetPlayer(id string) (*Player, bool) {
	p, ok := r.Players[id]
	return p, ok
}

func (r *Room) AddPlayer(p *Player) {
	if _, exists := r.Players[p.Id]; !exists {
		r.PlayerOrder = append(r.PlayerOrder, p.Id)
	}
	r.Players[p.Id] = p
}

func (r *Room) RemovePlayer(id string) (*Player, bool) {
	p, ok := r.Players[id]
	if !ok {
		return nil, false
	}
	delete(r.Players, id)
	r.PlayerOrder = slices.DeleteFunc(r.PlayerOrder, func(s string) bool {
		return s == id
	})
	return p, true
}

// OrderedPlayers returns the roster in join order.
func (r *Room) OrderedPlayers() []*Player {
	players := make([]*Player, 0, len(r.PlayerOrder))
	for _, id := range r.PlayerOrder {
		if p, ok := r.Players[id]; ok {
			players = append(players, p)
		}
	}
	return players
}

// Usernames returns display names in join order.
func (r *Room) Usernames() []string {
	names := make([]string, 0, len(r.PlayerOrder))
	for _, p := range r.OrderedPlayers() {
		names = append(names, p.Username)
	}
	return names
}

func (r *Room) CanStartGame() bool {
	return r.Status == StatusWaiting && r.GetPlayerCount() == PlayersToStart
}

func (r *Room) IsPlaying() bool {
	return r.Status == StatusPlaying
}

func (r *Room) IsFinished() bool {
	return r.Status == StatusFinished
}

// GridCopy returns a copy safe to hand to outbound payloads.
func (r *Room) GridCopy() []string {
	return slices.Clone(r.Grid)
}
