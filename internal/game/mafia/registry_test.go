package mafia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryJoin(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Join(1, "alice"))
	assert.True(t, r.Join(2, "bob"))
	assert.False(t, r.Join(1, "alice again"), "duplicate id is a no-op")
	assert.Equal(t, 2, r.Len())

	p, ok := r.Get(1)
	require.True(t, ok)
	assert.Equal(t, "alice", p.Name)
	assert.True(t, p.Alive)
	assert.Equal(t, RoleNone, p.Role)

	r.seal()
	assert.False(t, r.Join(3, "carol"), "join after assignment is a no-op")
	assert.Equal(t, 2, r.Len())
}

func TestRegistrySeatOrder(t *testing.T) {
	r := NewRegistry()
	r.Join(30, "c")
	r.JoinBot(-1, "bot")
	r.Join(10, "a")

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int64{30, -1, 10}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[1].Bot)
}

func TestRegistryKillIsIdempotent(t *testing.T) {
	r := registryWith(RoleMafia, RoleTown, RoleTown)

	r.Kill(2)
	r.Kill(2)
	r.Kill(99)

	assert.False(t, r.Alive(2))
	assert.True(t, r.Has(2), "dead players stay seated")
	assert.Equal(t, 2, r.AliveCount())
	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.Living(), 2)
}

func TestRegistryCopiesAreDetached(t *testing.T) {
	r := registryWith(RoleMafia, RoleTown)

	all := r.All()
	all[0].Alive = false
	all[0].Role = RoleTown

	p, _ := r.Get(1)
	assert.True(t, p.Alive)
	assert.Equal(t, RoleMafia, p.Role)
}

func TestRegistryFactionCounts(t *testing.T) {
	r := registryWith(RoleMafia, RoleMafia, RoleDoctor, RoleSheriff, RoleTown)

	assert.Equal(t, 2, r.AliveCountByFaction(FactionMafia))
	assert.Equal(t, 3, r.AliveCountByFaction(FactionTown))

	r.Kill(1)
	r.Kill(4)
	assert.Equal(t, 1, r.AliveCountByFaction(FactionMafia))
	assert.Equal(t, 2, r.AliveCountByFaction(FactionTown))

	first, ok := r.FirstAlive(RoleMafia)
	require.True(t, ok)
	assert.Equal(t, int64(2), first.ID)
}
