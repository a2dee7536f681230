package handler

import (
	"fmt"
	"strings"

	"mafia-bot/internal/game"
	"mafia-bot/internal/game/mafia"
	"mafia-bot/internal/model"
)

var rejectionMessages = map[string]string{
	mafia.CodeInvalidPhase:        "❌ That is not possible in the current phase",
	mafia.CodeUnknownPlayer:       "❌ That player is not in this game",
	mafia.CodeIneligibleTarget:    "❌ You cannot choose that target",
	mafia.CodeIneligibleActor:     "❌ You cannot do that",
	mafia.CodeGameFinished:        "❌ The game is over, use /newgame to play again",
	mafia.CodeInsufficientPlayers: "❌ Not enough players to start",
	mafia.CodeLobbyFull:           "❌ The lobby is full",
	mafia.CodeNoSession:           "❌ There is no game in this chat, use /join to open one",
	mafia.CodeUnknownVariant:      "❌ Unknown game variant, see /variants",
	mafia.CodeBusy:                "⏳ The game is busy, please try again",
}

// RejectionMessage renders a game error for the chat.
func RejectionMessage(err error) string {
	if msg, ok := rejectionMessages[mafia.Code(err)]; ok {
		return msg
	}
	return "❌ Something went wrong, please try again later"
}

var roleNames = map[mafia.Role]string{
	mafia.RoleMafia:   "🔪 Mafia",
	mafia.RoleDoctor:  "💉 Doctor",
	mafia.RoleSheriff: "⭐ Sheriff",
	mafia.RoleTown:    "🏠 Townsperson",
}

// RoleName returns the display name of a role.
func RoleName(r mafia.Role) string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "❔ Unknown"
}

// FactionName returns the display name of a faction.
func FactionName(f mafia.Faction) string {
	switch f {
	case mafia.FactionMafia:
		return "🔪 The mafia"
	case mafia.FactionTown:
		return "🏠 The town"
	}
	return "Nobody"
}

// FormatJoin formats a lobby join.
func FormatJoin(res *mafia.JoinResult) string {
	if !res.Joined {
		return fmt.Sprintf("ℹ️ %s is already in the lobby (%d players)", res.Player.Name, res.Count)
	}
	msg := fmt.Sprintf("✅ %s joined the game (%d", res.Player.Name, res.Count)
	if res.MaxPlayers > 0 {
		msg += fmt.Sprintf("/%d", res.MaxPlayers)
	}
	msg += " players)"
	if res.Count < res.MinPlayers {
		msg += fmt.Sprintf("\n👥 %d more needed to /startgame", res.MinPlayers-res.Count)
	} else {
		msg += "\n▶️ Ready, use /startgame"
	}
	return msg
}

// FormatStart announces the start. Roles stay secret.
func FormatStart(res *mafia.StartResult) string {
	var b strings.Builder
	b.WriteString("🎭 The game begins!\n")
	b.WriteString("━━━━━━━━━━━━━━━\n")
	for i, p := range res.Roster {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p.Name)
	}
	b.WriteString("━━━━━━━━━━━━━━━\n")
	if res.Winner != mafia.FactionNone {
		fmt.Fprintf(&b, "🏁 %s wins before the first night.", FactionName(res.Winner))
		return b.String()
	}
	fmt.Fprintf(&b, "🌙 Night %d falls. Check your private messages for your role.\n", res.Round)
	b.WriteString("Special roles act with /kill, /save or /check.")
	return b.String()
}

// FormatRoleDM is the private role message. Mafia members learn their
// partners.
func FormatRoleDM(p mafia.Player, roster []mafia.Player) string {
	msg := fmt.Sprintf("🎭 Your role: %s\n", RoleName(p.Role))
	switch p.Role {
	case mafia.RoleMafia:
		var partners []string
		for _, o := range roster {
			if o.Role == mafia.RoleMafia && o.ID != p.ID {
				partners = append(partners, o.Name)
			}
		}
		if len(partners) > 0 {
			msg += "🤝 Your partners: " + strings.Join(partners, ", ") + "\n"
		}
		msg += "Each night choose a victim with /kill."
	case mafia.RoleDoctor:
		msg += "Each night protect someone with /save. You may protect yourself."
	case mafia.RoleSheriff:
		msg += "Each night investigate someone with /check."
	default:
		msg += "Find the mafia and vote them out during the day."
	}
	return msg
}

// FormatNightAction confirms a night action to its actor.
func FormatNightAction(res *mafia.NightActionResult) string {
	switch res.Kind {
	case mafia.ActionCheck:
		if res.IsMafia {
			return fmt.Sprintf("🔍 %s is a member of the mafia!", res.Target.Name)
		}
		return fmt.Sprintf("🔍 %s is not mafia.", res.Target.Name)
	case mafia.ActionProtect:
		return fmt.Sprintf("💉 You will protect %s tonight.", res.Target.Name)
	default:
		return fmt.Sprintf("🔪 %s is your target tonight.", res.Target.Name)
	}
}

// FormatNightOutcome announces the end of a night.
func FormatNightOutcome(out *mafia.NightOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "☀️ Morning of day %d\n", out.Round)
	switch {
	case out.Victim != nil:
		fmt.Fprintf(&b, "💀 %s was killed during the night. They were %s.\n", out.Victim.Name, RoleName(out.Victim.Role))
	case out.Saved:
		b.WriteString("💉 The mafia struck, but the doctor saved their target!\n")
	default:
		b.WriteString("😴 A quiet night, nobody died.\n")
	}
	if out.Winner != mafia.FactionNone {
		fmt.Fprintf(&b, "🏁 %s wins!", FactionName(out.Winner))
		return b.String()
	}
	b.WriteString("🗳 Discuss and /vote. Use /endday to close the vote.")
	return b.String()
}

// FormatVote acknowledges a vote with the running tally.
func FormatVote(res *mafia.VoteResult) string {
	verb := "votes for"
	if res.Changed {
		verb = "changes their vote to"
	}
	msg := fmt.Sprintf("🗳 %s %s %s (%d/%d voted)", res.Voter.Name, verb, res.Target.Name, res.Voted, res.Alive)
	if tally := FormatTally(res.Tally); tally != "" {
		msg += "\n" + tally
	}
	return msg
}

// FormatTally renders vote counts, most votes first.
func FormatTally(tally []mafia.VoteCount) string {
	var lines []string
	for _, vc := range tally {
		if vc.Votes == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %d", vc.Target.Name, vc.Votes))
	}
	return strings.Join(lines, "\n")
}

// FormatDayOutcome announces the end of a day.
func FormatDayOutcome(out *mafia.DayOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚖️ The vote of day %d is over\n", out.Round)
	if tally := FormatTally(out.Tally); tally != "" {
		b.WriteString(tally + "\n")
	}
	switch {
	case out.Executed != nil:
		fmt.Fprintf(&b, "🪢 %s was executed. They were %s.\n", out.Executed.Name, RoleName(out.Executed.Role))
	case out.Tie:
		b.WriteString("🤝 A tie, nobody is executed.\n")
	default:
		b.WriteString("🤷 Nobody voted, nobody is executed.\n")
	}
	if out.Winner != mafia.FactionNone {
		fmt.Fprintf(&b, "🏁 %s wins!", FactionName(out.Winner))
		return b.String()
	}
	b.WriteString("🌙 Night falls. Special roles, check your private messages.")
	return b.String()
}

// FormatBotTurn summarises what the bots did. Night targets stay secret.
func FormatBotTurn(turn *mafia.BotTurn) string {
	if len(turn.Moves) == 0 {
		return "🤖 No bot had anything to do."
	}
	var b strings.Builder
	night := 0
	for _, m := range turn.Moves {
		if m.Kind == mafia.MoveVote {
			fmt.Fprintf(&b, "🤖 %s votes for %s\n", m.Bot.Name, m.Target.Name)
		} else {
			night++
		}
	}
	if night > 0 {
		fmt.Fprintf(&b, "🤖 %d bot(s) acted in the dark\n", night)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatStatus renders the public game view.
func FormatStatus(st *mafia.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎭 Mafia (%s) | %s", st.Variant, phaseLabel(st.Phase))
	if st.Round > 0 && st.Phase != mafia.PhaseFinished {
		fmt.Fprintf(&b, " %d", st.Round)
	}
	b.WriteString("\n━━━━━━━━━━━━━━━\n")
	for i, p := range st.Players {
		mark := "🙂"
		if !p.Alive {
			mark = "💀"
		}
		line := fmt.Sprintf("%d. %s %s", i+1, mark, p.Name)
		if p.Bot {
			line += " 🤖"
		}
		if p.Role != mafia.RoleNone {
			line += " (" + RoleName(p.Role) + ")"
		}
		b.WriteString(line + "\n")
	}
	if len(st.Pending) > 0 {
		fmt.Fprintf(&b, "⏳ Waiting for %d night action(s)\n", len(st.Pending))
	}
	if tally := FormatTally(st.Votes); tally != "" {
		b.WriteString("🗳 Votes:\n" + tally + "\n")
	}
	if st.Phase == mafia.PhaseFinished && st.Winner != mafia.FactionNone {
		fmt.Fprintf(&b, "🏁 Winner: %s\n", FactionName(st.Winner))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func phaseLabel(p mafia.Phase) string {
	switch p {
	case mafia.PhaseLobby:
		return "👥 Lobby"
	case mafia.PhaseNight:
		return "🌙 Night"
	case mafia.PhaseDay:
		return "☀️ Day"
	case mafia.PhaseFinished:
		return "🏁 Finished"
	}
	return p.String()
}

// FormatVariants lists the registered variants.
func FormatVariants(variants []game.Variant) string {
	var b strings.Builder
	b.WriteString("🎲 Game variants\n")
	for _, v := range variants {
		seats := fmt.Sprintf("%d+", v.MinPlayers())
		if v.MaxPlayers() > 0 {
			seats = fmt.Sprintf("%d-%d", v.MinPlayers(), v.MaxPlayers())
		}
		fmt.Fprintf(&b, "• /newgame %s: %s (%s players)\n", v.Command(), v.Description(), seats)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatStats renders one player's statistics.
func FormatStats(u *model.User) string {
	return fmt.Sprintf(
		"📊 %s\n🎮 Games: %d\n🏆 Wins: %d\n📈 Win rate: %.0f%%",
		userName(u), u.GamesPlayed, u.GamesWon, u.WinRate()*100,
	)
}

// FormatTop renders the leaderboard.
func FormatTop(users []*model.User) string {
	msg := "🏆 Top players\n━━━━━━━━━━━━━━━\n"
	if len(users) == 0 {
		return msg + "No games finished yet"
	}
	medals := []string{"🥇", "🥈", "🥉"}
	for i, u := range users {
		rank := fmt.Sprintf("%d.", i+1)
		if i < len(medals) {
			rank = medals[i]
		}
		msg += fmt.Sprintf("%s %s: %d wins / %d games\n", rank, userName(u), u.GamesWon, u.GamesPlayed)
	}
	return strings.TrimSuffix(msg, "\n")
}

func userName(u *model.User) string {
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User%d", u.TelegramID)
}

// HelpText is the reply to /start.
const HelpText = `🎭 Mafia bot

Lobby: /join, /addbot, /startgame, /newgame [variant], /variants
Night: /kill, /save, /check (target by name or number, or pick from the buttons), /endnight
Day: /vote [name], /endday
Bots: /ai_move makes every bot act
Info: /status, /stats, /top`
