// Package view provides UI rendering functions.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/ui/common"
	"github.com/palemoky/spymaster/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into App.
func CreateViewRenderer() func(model.Model) string {
	return func(m model.Model) string {
		var body string
		switch m.Screen() {
		case model.ScreenConnecting:
			body = ConnectingView(m)
		case model.ScreenJoin:
			body = JoinView(m)
		case model.ScreenRoom:
			if m.ShowingHelp() {
				body = RulesView(m.Width())
			} else {
				body = RoomView(m)
			}
		default:
			body = "Unknown screen"
		}
		if e := m.Error(); e != "" {
			body += "\n" + lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.ErrorStyle.Render("⚠️ "+e))
		}
		return common.DocStyle.Render(body)
	}
}

// ConnectingView renders the connecting screen.
func ConnectingView(m model.Model) string {
	return lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.TitleStyle("🔌 正在连接服务器..."))
}

// JoinView renders the join form.
func JoinView(m model.Model) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.TitleStyle("🕵 SPYMASTER")))
	sb.WriteString("\n\n")

	form := lipgloss.JoinVertical(lipgloss.Left,
		"昵称:   "+m.NameInput().View(),
		"房间号: "+m.CodeInput().View(),
	)
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.BoxStyle.Render(form)))
	sb.WriteString("\n")
	sb.WriteString(lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center,
		common.HintStyle.Render("Tab 切换  Enter 加入  Ctrl+C 退出")))
	return sb.String()
}

// RoomView renders the room according to its phase.
func RoomView(m model.Model) string {
	s := m.Session()
	if s == nil || s.Loading() {
		return lipgloss.PlaceHorizontal(m.Width(), lipgloss.Center, common.TitleStyle("⏳ 正在加载房间..."))
	}
	r := m.Snapshot()
	if _, ok := r.Phase().(room.Lobby); ok {
		return LobbyView(m, r)
	}
	return GameView(m, r)
}
