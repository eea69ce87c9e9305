// Package model defines the core types and interfaces for the UI.
package model

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/game/session"
)

// Screen represents the current screen.
type Screen int

const (
	ScreenConnecting Screen = iota
	ScreenJoin
	ScreenRoom
)

// Field identifies a text input.
type Field int

const (
	FieldName Field = iota
	FieldCode
	FieldClue
	FieldNone
)

// Connector opens the store connection. The returned func closes it.
type Connector func(ctx context.Context) (docstore.Client, func(), error)

// --- Tea Messages ---

// ConnectedMsg indicates successful connection.
type ConnectedMsg struct {
	Store docstore.Client
	Close func()
}

// ConnectionErrorMsg indicates a connection error.
type ConnectionErrorMsg struct {
	Err error
}

// JoinedMsg indicates the room session is open.
type JoinedMsg struct {
	Session *session.Session
}

// JoinErrorMsg indicates the room could not be opened.
type JoinErrorMsg struct {
	Err error
}

// LeftMsg indicates the room session was closed.
type LeftMsg struct{}

// RoomChangedMsg carries a change notification from a session.
type RoomChangedMsg struct {
	Session *session.Session
}

// ClearErrorMsg clears error message.
type ClearErrorMsg struct{}

// ClueBannerExpiredMsg hides the banner of the clue given at Timestamp.
type ClueBannerExpiredMsg struct {
	Timestamp int64
}

// LatencyTickMsg refreshes the latency shown while in a room.
type LatencyTickMsg struct {
	Session *session.Session
}

// --- Model Interface ---

// Model is the main interface for App, used by view/input packages.
type Model interface {
	Screen() Screen
	Width() int
	Height() int

	PlayerID() string
	// Session is nil outside a room.
	Session() *session.Session
	// Snapshot is the room as last rendered.
	Snapshot() room.Room

	Error() string
	SetError(string)

	// Latency is the last measured round trip in milliseconds, 0 when unknown.
	Latency() int64
	ShowingHelp() bool
	SetShowingHelp(bool)
	// ClueBanner is the clue that just arrived, while its banner is shown.
	ClueBanner() (room.Clue, bool)

	NameInput() *textinput.Model
	CodeInput() *textinput.Model
	ClueInput() *textinput.Model
	Focused() Field
	Focus(Field) tea.Cmd

	Cursor() int
	SetCursor(int)

	JoinRoom() tea.Cmd
	LeaveRoom() tea.Cmd
	Quit() tea.Cmd
}
