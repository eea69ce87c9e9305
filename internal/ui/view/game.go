package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/ui/common"
	"github.com/palemoky/spymaster/internal/ui/model"
)

const (
	// BoardColumns 棋盘列数
	BoardColumns = 5
	cardWidth    = 12
	maxClueLines = 8
)

// GameView renders the board, scores, clue history and rosters.
func GameView(m model.Model, r room.Room) string {
	width := m.Width()
	me, _ := r.Player(m.PlayerID())
	spymaster := me.Role == room.RoleSpymaster

	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, HeaderView(m.Session().RoomCode(), m.Latency(), r)))
	sb.WriteString("\n\n")

	if c, ok := m.ClueBanner(); ok {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, ClueBannerView(c)))
		sb.WriteString("\n")
	}

	main := lipgloss.JoinHorizontal(lipgloss.Top,
		BoardView(r.Board, spymaster, m.Cursor()),
		"  ",
		lipgloss.JoinVertical(lipgloss.Left,
			common.BoxStyle.Render(CluesView(r.Clues)),
			RosterView(r, m.PlayerID()),
		),
	)
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, main))
	sb.WriteString("\n")

	if f, ok := r.Phase().(room.Finished); ok {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, WinnerView(f.Winner, r.IsHost(m.PlayerID()))))
		sb.WriteString("\n")
	}

	if m.Focused() == model.FieldClue {
		sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "线索: "+m.ClueInput().View()))
		sb.WriteString("\n")
	}
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.HintStyle.Render(GameHint(r, me))))
	return sb.String()
}

// HeaderView renders scores and whose move it is.
// latency is in milliseconds and hidden when 0.
func HeaderView(code string, latency int64, r room.Room) string {
	scores := fmt.Sprintf("%s %d  :  %d %s",
		common.RedTextStyle.Render("红队"), r.Scores.Red,
		r.Scores.Blue, common.BlueTextStyle.Render("蓝队"))
	title := "🏠 房间: " + code
	if latency > 0 {
		title += fmt.Sprintf("  📶 %dms", latency)
	}
	return lipgloss.JoinVertical(lipgloss.Center,
		common.TitleStyle(title),
		scores,
		PhaseLine(r.Phase()),
	)
}

// PhaseLine describes the current phase.
func PhaseLine(p room.Phase) string {
	switch p := p.(type) {
	case room.AwaitingClue:
		return common.TeamText(p.Team).Render(common.TeamName(p.Team)) + " 间谍首领正在思考线索..."
	case room.Guessing:
		return fmt.Sprintf("%s 猜词中: %s %d（剩余 %d 次）",
			common.TeamText(p.Team).Render(common.TeamName(p.Team)),
			strings.ToUpper(p.Clue.Word), p.Clue.Number, p.Remaining)
	case room.Finished:
		return common.TeamText(p.Winner).Render(common.TeamName(p.Winner)) + " 获胜！"
	default:
		return "等待开始"
	}
}

// BoardView renders the 5x5 grid. Spymasters see every identity,
// operatives only the revealed ones.
func BoardView(b board.Board, spymaster bool, cursor int) string {
	rows := make([]string, 0, (len(b)+BoardColumns-1)/BoardColumns)
	for start := 0; start < len(b); start += BoardColumns {
		end := min(start+BoardColumns, len(b))
		cells := make([]string, 0, BoardColumns)
		for i := start; i < end; i++ {
			cells = append(cells, CardView(b[i], spymaster, i == cursor))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// CardView renders one card.
func CardView(c board.Card, spymaster, selected bool) string {
	word := lipgloss.PlaceHorizontal(cardWidth, lipgloss.Center, c.Word)
	style := common.HiddenStyle
	if c.Revealed || spymaster {
		style = common.CardStyle(c.Type)
	}
	if c.Revealed && spymaster {
		style = style.Inherit(common.RevealedStyle)
	}
	cell := style.Render(word)
	if selected {
		return common.CursorStyle.Render(cell)
	}
	return lipgloss.NewStyle().Border(lipgloss.HiddenBorder()).Render(cell)
}

// CluesView renders the clue history, newest first with the latest highlighted.
func CluesView(clues []room.Clue) string {
	var sb strings.Builder
	sb.WriteString("📜 线索记录")
	if len(clues) == 0 {
		sb.WriteString("\n  (暂无)")
		return sb.String()
	}
	for i := len(clues) - 1; i >= 0 && len(clues)-i <= maxClueLines; i-- {
		c := clues[i]
		line := fmt.Sprintf("%s %d", strings.ToUpper(c.Word), c.Number)
		line = common.TeamText(c.Team).Render(line)
		if i == len(clues)-1 {
			line = common.LatestClueMark.Render("▶ ") + line
		} else {
			line = "  " + line
		}
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return sb.String()
}

// WinnerView renders the game over banner.
func WinnerView(winner board.Team, isHost bool) string {
	text := "🏆 " + common.TeamName(winner) + " 获胜！"
	if isHost {
		text += "\n按 L 回到大厅"
	} else {
		text += "\n等待房主回到大厅"
	}
	return common.BoxStyle.BorderForeground(common.TeamText(winner).GetForeground()).Render(text)
}

// GameHint lists the keys that apply to this player right now.
func GameHint(r room.Room, me room.Player) string {
	var hints []string
	switch p := r.Phase().(type) {
	case room.AwaitingClue:
		if me.Team == p.Team && me.Role == room.RoleSpymaster {
			hints = append(hints, "C 给出线索")
		}
	case room.Guessing:
		if me.Team == p.Team && me.Role == room.RoleOperative {
			hints = append(hints, "方向键 移动", "Enter 翻牌", "E 结束回合")
		}
	}
	if me.IsHost {
		hints = append(hints, "L 回到大厅")
	}
	hints = append(hints, "? 规则", "Q 离开")
	return strings.Join(hints, "  ")
}
