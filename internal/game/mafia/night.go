package mafia

import "fmt"

// nightAction is one buffered night choice.
type nightAction struct {
	Kind   ActionKind
	Target int64
}

// nightBuffer maps actor id to that actor's latest choice.
type nightBuffer map[int64]nightAction

// NightOutcome is the result of resolving a night.
type NightOutcome struct {
	Round int
	// Victim is the player killed tonight, nil when nobody died.
	Victim *Player
	// Saved is set when the doctor protected the mafia's target.
	Saved bool
	// NoAggressors is set when no mafia member was alive to act.
	NoAggressors bool
	// NoTarget is set when the mafia was alive but chose nobody.
	NoTarget bool
	// Forced is set when the night was ended before every role acted.
	Forced bool
	Winner Faction
	Phase  Phase
}

// Deaths returns the players who died tonight.
func (o *NightOutcome) Deaths() []Player {
	if o.Victim == nil {
		return nil
	}
	return []Player{*o.Victim}
}

// actingAggressor returns the mafia member whose kill choice counts tonight.
func actingAggressor(r *Registry) (Player, bool) {
	return r.FirstAlive(RoleMafia)
}

// validateNightAction applies the eligibility rules for a night action.
func validateNightAction(r *Registry, actorID int64, kind ActionKind, targetID int64) error {
	role := kind.Role()
	if role == RoleNone {
		return fmt.Errorf("%w: unknown action %q", ErrIneligibleActor, kind)
	}

	actor, ok := r.Get(actorID)
	if !ok {
		return fmt.Errorf("%w: actor %d", ErrUnknownPlayer, actorID)
	}
	if !actor.Alive {
		return fmt.Errorf("%w: %s is dead", ErrIneligibleActor, actor.Name)
	}
	if actor.Role != role {
		return fmt.Errorf("%w: %s cannot %s", ErrIneligibleActor, actor.Name, kind)
	}
	if kind == ActionKill {
		if acting, ok := actingAggressor(r); !ok || acting.ID != actorID {
			return fmt.Errorf("%w: %s is not the acting mafia member", ErrIneligibleActor, actor.Name)
		}
	}

	target, ok := r.Get(targetID)
	if !ok {
		return fmt.Errorf("%w: target %d", ErrUnknownPlayer, targetID)
	}
	if !target.Alive {
		return fmt.Errorf("%w: %s is dead", ErrIneligibleTarget, target.Name)
	}

	switch kind {
	case ActionKill:
		if target.Role == RoleMafia {
			return fmt.Errorf("%w: mafia cannot target mafia", ErrIneligibleTarget)
		}
	case ActionCheck:
		if target.ID == actor.ID {
			return fmt.Errorf("%w: sheriff cannot check themself", ErrIneligibleTarget)
		}
	}
	return nil
}

// nightCandidates lists the legal targets of kind for the actor.
func nightCandidates(r *Registry, actorID int64, kind ActionKind) []Player {
	var out []Player
	for _, p := range r.Living() {
		switch kind {
		case ActionKill:
			if p.Role == RoleMafia {
				continue
			}
		case ActionCheck:
			if p.ID == actorID {
				continue
			}
		}
		out = append(out, p)
	}
	return out
}

// pendingNightActors returns the living special roles that have not acted.
// Only the acting aggressor counts for the mafia.
func pendingNightActors(r *Registry, buf nightBuffer) []Player {
	var out []Player
	acting, hasActing := actingAggressor(r)
	for _, p := range r.Living() {
		switch p.Role {
		case RoleMafia:
			if !hasActing || p.ID != acting.ID {
				continue
			}
		case RoleDoctor, RoleSheriff:
		default:
			continue
		}
		if _, ok := buf[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

// resolveNight applies the buffered actions to the registry.
// A protection on the kill target cancels the kill.
func resolveNight(r *Registry, buf nightBuffer) NightOutcome {
	var out NightOutcome

	acting, ok := actingAggressor(r)
	if !ok {
		out.NoAggressors = true
		return out
	}

	kill, ok := buf[acting.ID]
	if !ok || kill.Kind != ActionKill {
		out.NoTarget = true
		return out
	}

	for actorID, a := range buf {
		if a.Kind == ActionProtect && a.Target == kill.Target && r.Alive(actorID) {
			out.Saved = true
			return out
		}
	}

	r.Kill(kill.Target)
	victim, _ := r.Get(kill.Target)
	out.Victim = &victim
	return out
}
