package mafia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNightProtectCancelsKill(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown, RoleTown)

	_, err := s.CastNightAction(1, ActionKill, 4)
	require.NoError(t, err)
	_, err = s.CastNightAction(2, ActionProtect, 4)
	require.NoError(t, err)
	res, err := s.CastNightAction(3, ActionCheck, 1)
	require.NoError(t, err)

	assert.True(t, res.IsMafia)
	require.NotNil(t, res.Outcome, "last pending role resolves the night")
	assert.True(t, res.Outcome.Saved)
	assert.Nil(t, res.Outcome.Victim)
	assert.Empty(t, res.Outcome.Deaths())
	assert.False(t, res.Outcome.Forced)
	assert.Equal(t, PhaseDay, res.Outcome.Phase)
	assert.Equal(t, 5, s.Registry().AliveCount())
}

func TestNightKillLands(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown, RoleTown)

	_, err := s.CastNightAction(1, ActionKill, 4)
	require.NoError(t, err)
	_, err = s.CastNightAction(2, ActionProtect, 2)
	require.NoError(t, err, "self-protect is allowed")
	res, err := s.CastNightAction(3, ActionCheck, 5)
	require.NoError(t, err)

	assert.False(t, res.IsMafia)
	require.NotNil(t, res.Outcome)
	require.NotNil(t, res.Outcome.Victim)
	assert.Equal(t, int64(4), res.Outcome.Victim.ID)
	assert.False(t, s.Registry().Alive(4))
	assert.Equal(t, FactionNone, res.Outcome.Winner)
	assert.Equal(t, PhaseDay, s.Phase())
}

func TestNightRecastOverwrites(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown, RoleTown)

	_, err := s.CastNightAction(1, ActionKill, 4)
	require.NoError(t, err)
	_, err = s.CastNightAction(1, ActionKill, 5)
	require.NoError(t, err)

	out, err := s.ResolveNight()
	require.NoError(t, err)
	require.NotNil(t, out.Victim)
	assert.Equal(t, int64(5), out.Victim.ID)
	assert.True(t, out.Forced)
	assert.True(t, s.Registry().Alive(4))
}

func TestNightForcedWithoutTarget(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown)

	out, err := s.ResolveNight()
	require.NoError(t, err)
	assert.True(t, out.NoTarget)
	assert.False(t, out.NoAggressors)
	assert.True(t, out.Forced)
	assert.Nil(t, out.Victim)
	assert.Equal(t, 4, s.Registry().AliveCount())
	assert.Equal(t, PhaseDay, s.Phase())
}

func TestNightNoAggressors(t *testing.T) {
	r := registryWith(RoleMafia, RoleDoctor, RoleTown, RoleTown)
	buf := nightBuffer{1: {Kind: ActionKill, Target: 3}}
	r.Kill(1)

	out := resolveNight(r, buf)
	assert.True(t, out.NoAggressors)
	assert.False(t, out.NoTarget)
	assert.Nil(t, out.Victim)
	assert.Equal(t, 3, r.AliveCount())
}

func TestNightResolveTwice(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown, RoleTown)

	_, err := s.CastNightAction(1, ActionKill, 5)
	require.NoError(t, err)
	_, err = s.ResolveNight()
	require.NoError(t, err)

	_, err = s.ResolveNight()
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Equal(t, 4, s.Registry().AliveCount(), "exactly one death")
}

func TestNightEligibility(t *testing.T) {
	tests := []struct {
		name   string
		actor  int64
		kind   ActionKind
		target int64
		want   error
	}{
		{"mafia targets self", 1, ActionKill, 1, ErrIneligibleTarget},
		{"mafia targets partner", 1, ActionKill, 2, ErrIneligibleTarget},
		{"second mafia is not the acting one", 2, ActionKill, 5, ErrIneligibleActor},
		{"sheriff checks self", 4, ActionCheck, 4, ErrIneligibleTarget},
		{"town cannot kill", 5, ActionKill, 6, ErrIneligibleActor},
		{"doctor cannot check", 3, ActionCheck, 1, ErrIneligibleActor},
		{"unknown actor", 99, ActionKill, 5, ErrUnknownPlayer},
		{"unknown target", 1, ActionKill, 99, ErrUnknownPlayer},
		{"doctor protects self", 3, ActionProtect, 3, nil},
		{"sheriff checks partner mafia", 4, ActionCheck, 2, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := startedSession(t, RoleMafia, RoleMafia, RoleDoctor, RoleSheriff, RoleTown, RoleTown, RoleTown)
			_, err := s.CastNightAction(tt.actor, tt.kind, tt.target)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, IsRejection(err))
			assert.Equal(t, PhaseNight, s.Phase())
		})
	}
}

func TestNightDeadTargetRejected(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown, RoleTown, RoleTown)

	_, err := s.CastNightAction(1, ActionKill, 6)
	require.NoError(t, err)
	_, err = s.ResolveNight()
	require.NoError(t, err)
	_, err = s.ResolveDay()
	require.NoError(t, err)
	require.Equal(t, PhaseNight, s.Phase())
	assert.Equal(t, 2, s.Round())

	_, err = s.CastNightAction(1, ActionKill, 6)
	assert.ErrorIs(t, err, ErrIneligibleTarget)
	_, err = s.CastNightAction(2, ActionProtect, 6)
	assert.ErrorIs(t, err, ErrIneligibleTarget)
}

func TestNightActionsOutsideNight(t *testing.T) {
	s := daySession(t, RoleMafia, RoleDoctor, RoleSheriff, RoleTown)

	_, err := s.CastNightAction(1, ActionKill, 4)
	assert.ErrorIs(t, err, ErrInvalidPhase)
	assert.Equal(t, CodeInvalidPhase, Code(err))
}

func TestPendingNightActors(t *testing.T) {
	s := startedSession(t, RoleMafia, RoleMafia, RoleDoctor, RoleSheriff, RoleTown)

	ids := func() []int64 {
		var out []int64
		for _, p := range s.PendingNightActors() {
			out = append(out, p.ID)
		}
		return out
	}

	assert.Equal(t, []int64{1, 3, 4}, ids(), "only the first mafia member acts")

	_, err := s.CastNightAction(4, ActionCheck, 2)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids())
}
