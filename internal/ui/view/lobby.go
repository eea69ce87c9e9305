package view

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/skip2/go-qrcode"

	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/ui/common"
	"github.com/palemoky/spymaster/internal/ui/model"
)

const maxNameWidth = 18

// LobbyView renders the lobby: room code, join QR and team rosters.
func LobbyView(m model.Model, r room.Room) string {
	width := m.Width()
	code := m.Session().RoomCode()

	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("🏠 房间: "+code)))
	sb.WriteString("\n\n")

	left := RosterView(r, m.PlayerID())
	if qr := QRView(code); qr != "" {
		left = lipgloss.JoinHorizontal(lipgloss.Top, left, "  ", qr)
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, left))
	sb.WriteString("\n")

	hint := "R/B/S 选择红队/蓝队/观战  M 切换角色  ? 规则  Q 离开"
	if r.IsHost(m.PlayerID()) {
		hint = "Enter 开始游戏  " + hint
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.HintStyle.Render(hint)))
	return sb.String()
}

// QRView renders the room code as a terminal QR code.
func QRView(code string) string {
	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return ""
	}
	return qr.ToSmallString(false)
}

// RosterView renders the players grouped by team.
func RosterView(r room.Room, selfID string) string {
	groups := []board.Team{board.TeamRed, board.TeamBlue, board.TeamSpectator}
	boxes := make([]string, 0, len(groups))
	for _, team := range groups {
		boxes = append(boxes, common.BoxStyle.Render(TeamRoster(r, team, selfID)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// TeamRoster lists one team's players, spymasters first, then by join time.
func TeamRoster(r room.Room, team board.Team, selfID string) string {
	players := make([]room.Player, 0, len(r.Players))
	for _, id := range slices.Sorted(maps.Keys(r.Players)) {
		if p := r.Players[id]; p.Team == team {
			players = append(players, p)
		}
	}
	slices.SortStableFunc(players, func(a, b room.Player) int {
		if (a.Role == room.RoleSpymaster) != (b.Role == room.RoleSpymaster) {
			if a.Role == room.RoleSpymaster {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.JoinedAt, b.JoinedAt)
	})

	var sb strings.Builder
	sb.WriteString(common.TeamText(team).Render(fmt.Sprintf("%s (%d)", common.TeamName(team), len(players))))
	for _, p := range players {
		sb.WriteString("\n  ")
		sb.WriteString(PlayerLine(p, selfID))
	}
	return sb.String()
}

// PlayerLine renders one player entry.
func PlayerLine(p room.Player, selfID string) string {
	icon := common.OperativeIcon
	if p.Role == room.RoleSpymaster {
		icon = common.SpymasterIcon
	}
	line := icon + " " + common.TruncateName(p.Name, maxNameWidth)
	if p.IsHost {
		line += " " + common.HostIcon
	}
	if p.ID == selfID {
		line += common.SelfMarker
	}
	return line
}
