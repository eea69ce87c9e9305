// Package input handles keyboard input processing.
package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/ui/model"
	"github.com/palemoky/spymaster/internal/ui/view"
)

// HandleKeyPress handles keyboard input and returns whether it was handled.
// Unhandled keys go to the focused text input.
func HandleKeyPress(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch m.Screen() {
	case model.ScreenJoin:
		return handleJoinKeys(m, msg)
	case model.ScreenRoom:
		switch {
		case m.Focused() == model.FieldClue:
			return handleClueKeys(m, msg)
		case m.ShowingHelp():
			// 规则页打开时任意键关闭
			m.SetShowingHelp(false)
			return true, nil
		case IsHelpKey(msg):
			m.SetShowingHelp(true)
			return true, nil
		}
		return handleRoomKeys(m, msg)
	default:
		return msg.Type == tea.KeyEsc, quitOnEsc(m, msg)
	}
}

// IsHelpKey reports whether the key toggles the rules screen.
func IsHelpKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "?", "h", "H":
		return true
	}
	return false
}

func quitOnEsc(m model.Model, msg tea.KeyMsg) tea.Cmd {
	if msg.Type == tea.KeyEsc {
		return m.Quit()
	}
	return nil
}

func handleJoinKeys(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyShiftTab, tea.KeyUp, tea.KeyDown:
		if m.Focused() == model.FieldName {
			return true, m.Focus(model.FieldCode)
		}
		return true, m.Focus(model.FieldName)
	case tea.KeyEnter:
		return true, m.JoinRoom()
	case tea.KeyEsc:
		return true, m.Quit()
	}
	return false, nil
}

func handleClueKeys(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		word, number, err := ParseClue(m.ClueInput().Value())
		if err != nil {
			m.SetError(err.Error())
			return true, nil
		}
		m.Session().GiveClue(word, number)
		m.ClueInput().Reset()
		m.SetError("")
		return true, m.Focus(model.FieldNone)
	case tea.KeyEsc:
		m.ClueInput().Reset()
		return true, m.Focus(model.FieldNone)
	}
	return false, nil
}

func handleRoomKeys(m model.Model, msg tea.KeyMsg) (bool, tea.Cmd) {
	s := m.Session()
	if s == nil {
		return false, nil
	}
	r := m.Snapshot()

	switch msg.String() {
	case "q", "esc":
		return true, m.LeaveRoom()
	case "x":
		m.SetError("")
		s.ClearErr()
		return true, nil
	}

	switch r.Phase().(type) {
	case room.Lobby:
		return handleLobbyKeys(m, msg, r)
	case room.Finished:
		if msg.String() == "l" {
			s.ResetToLobby()
			return true, nil
		}
		return true, nil
	default:
		return handleGameKeys(m, msg, r)
	}
}

func handleLobbyKeys(m model.Model, msg tea.KeyMsg, r room.Room) (bool, tea.Cmd) {
	s := m.Session()
	switch msg.String() {
	case "r":
		s.SetTeam(board.TeamRed)
	case "b":
		s.SetTeam(board.TeamBlue)
	case "s":
		s.SetTeam(board.TeamSpectator)
	case "m":
		me, ok := r.Player(m.PlayerID())
		if !ok {
			return true, nil
		}
		s.SetRole(ToggleRole(me.Role))
	case "enter", "g":
		s.StartGame()
	}
	return true, nil
}

func handleGameKeys(m model.Model, msg tea.KeyMsg, r room.Room) (bool, tea.Cmd) {
	s := m.Session()
	switch key := msg.String(); key {
	case "up", "down", "left", "right":
		m.SetCursor(MoveCursor(m.Cursor(), key, len(r.Board)))
	case "l":
		s.ResetToLobby()
	case "enter", " ":
		if m.Cursor() < len(r.Board) {
			s.RevealCard(r.Board[m.Cursor()].ID)
		}
	case "c":
		if CanGiveClue(r, m.PlayerID()) {
			return true, m.Focus(model.FieldClue)
		}
	case "e":
		s.EndTurn()
	}
	return true, nil
}

// CanGiveClue reports whether the player is the spymaster the room waits on.
func CanGiveClue(r room.Room, playerID string) bool {
	phase, ok := r.Phase().(room.AwaitingClue)
	if !ok {
		return false
	}
	me, ok := r.Player(playerID)
	return ok && me.Team == phase.Team && me.Role == room.RoleSpymaster
}

// ToggleRole switches between spymaster and operative.
func ToggleRole(r room.Role) room.Role {
	if r == room.RoleSpymaster {
		return room.RoleOperative
	}
	return room.RoleSpymaster
}

// MoveCursor moves the board cursor, wrapping within a row or column.
func MoveCursor(cursor int, key string, size int) int {
	if size == 0 {
		return 0
	}
	cols := view.BoardColumns
	rows := (size + cols - 1) / cols
	row, col := cursor/cols, cursor%cols

	switch key {
	case "up":
		row = (row - 1 + rows) % rows
	case "down":
		row = (row + 1) % rows
	case "left":
		col = (col - 1 + cols) % cols
	case "right":
		col = (col + 1) % cols
	}
	return min(row*cols+col, size-1)
}
