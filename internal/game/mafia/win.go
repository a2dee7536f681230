package mafia

// Evaluate inspects the living seats and returns the winning faction, or
// FactionNone when the game goes on.
//
// Town wins once no mafia is left alive. Mafia wins as soon as it is no longer
// outnumbered by the living town faction.
func Evaluate(r *Registry) Faction {
	mafia := r.AliveCountByFaction(FactionMafia)
	town := r.AliveCountByFaction(FactionTown)

	if mafia == 0 && r.AliveCount() > 0 {
		return FactionTown
	}
	if mafia > 0 && mafia >= town {
		return FactionMafia
	}
	return FactionNone
}
