// Package common provides shared styles and utilities for the UI.
package common

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/spymaster/internal/game/board"
)

// Icon constants
const (
	HostIcon      = "👑"
	SpymasterIcon = "🕵"
	OperativeIcon = "🔎"
	SelfMarker    = " (你)"
)

// Lipgloss Styles
var (
	DocStyle    = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	BoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	PromptStyle = lipgloss.NewStyle().MarginTop(1)
	ErrorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	HintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	CursorStyle = lipgloss.NewStyle().Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("228"))

	RedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#CD0000")).Bold(true)
	BlueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#1E5BC6")).Bold(true)
	NeutralStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#D8C8A0"))
	AssassinStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("0")).Bold(true)
	HiddenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("#FFFFFF"))
	RevealedStyle  = lipgloss.NewStyle().Strikethrough(true)
	RedTextStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	BlueTextStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5F87FF")).Bold(true)
	LatestClueMark = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true)
)

// CardStyle 卡牌底色
func CardStyle(t board.CardType) lipgloss.Style {
	switch t {
	case board.CardRed:
		return RedStyle
	case board.CardBlue:
		return BlueStyle
	case board.CardAssassin:
		return AssassinStyle
	default:
		return NeutralStyle
	}
}

// TeamText 阵营文字颜色
func TeamText(t board.Team) lipgloss.Style {
	switch t {
	case board.TeamRed:
		return RedTextStyle
	case board.TeamBlue:
		return BlueTextStyle
	default:
		return HintStyle
	}
}

// TeamName 阵营中文名
func TeamName(t board.Team) string {
	switch t {
	case board.TeamRed:
		return "红队"
	case board.TeamBlue:
		return "蓝队"
	default:
		return "观战"
	}
}
