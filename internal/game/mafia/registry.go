package mafia

// Registry holds the seats of one session in join order.
// It is not safe for concurrent use; the owning session serializes access.
type Registry struct {
	players []*Player
	index   map[int64]*Player
	sealed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[int64]*Player)}
}

// Join seats a player. It returns false without changing anything when the
// id is already seated or roles have been assigned.
func (r *Registry) Join(id int64, name string) bool {
	return r.join(&Player{ID: id, Name: name, Alive: true})
}

// JoinBot seats a bot-controlled player under the same rules as Join.
func (r *Registry) JoinBot(id int64, name string) bool {
	return r.join(&Player{ID: id, Name: name, Alive: true, Bot: true})
}

func (r *Registry) join(p *Player) bool {
	if r.sealed {
		return false
	}
	if _, ok := r.index[p.ID]; ok {
		return false
	}
	r.players = append(r.players, p)
	r.index[p.ID] = p
	return true
}

// Kill marks a player dead. Killing a dead or unknown player is a no-op.
func (r *Registry) Kill(id int64) {
	if p, ok := r.index[id]; ok {
		p.Alive = false
	}
}

// Get returns a copy of the player with the given id.
func (r *Registry) Get(id int64) (Player, bool) {
	p, ok := r.index[id]
	if !ok {
		return Player{}, false
	}
	return *p, true
}

// Has reports whether the id is seated.
func (r *Registry) Has(id int64) bool {
	_, ok := r.index[id]
	return ok
}

// Alive reports whether the id is seated and alive.
func (r *Registry) Alive(id int64) bool {
	p, ok := r.index[id]
	return ok && p.Alive
}

// All returns copies of every seat in join order, dead players included.
func (r *Registry) All() []Player {
	out := make([]Player, len(r.players))
	for i, p := range r.players {
		out[i] = *p
	}
	return out
}

// Living returns copies of the living seats in join order.
func (r *Registry) Living() []Player {
	out := make([]Player, 0, len(r.players))
	for _, p := range r.players {
		if p.Alive {
			out = append(out, *p)
		}
	}
	return out
}

// Len returns the number of seats.
func (r *Registry) Len() int {
	return len(r.players)
}

// AliveCount returns the number of living players.
func (r *Registry) AliveCount() int {
	n := 0
	for _, p := range r.players {
		if p.Alive {
			n++
		}
	}
	return n
}

// AliveCountByFaction returns the number of living players whose role
// belongs to the faction.
func (r *Registry) AliveCountByFaction(f Faction) int {
	n := 0
	for _, p := range r.players {
		if p.Alive && p.Role.Faction() == f {
			n++
		}
	}
	return n
}

// FirstAlive returns the first living player holding the role, in join order.
func (r *Registry) FirstAlive(role Role) (Player, bool) {
	for _, p := range r.players {
		if p.Alive && p.Role == role {
			return *p, true
		}
	}
	return Player{}, false
}

// seal stops further joins; called once roles are handed out.
func (r *Registry) seal() {
	r.sealed = true
}

// seats exposes the underlying records to role assignment.
func (r *Registry) seats() []*Player {
	return r.players
}
