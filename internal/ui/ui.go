// Package ui provides the main entry point for the UI.
package ui

import (
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/sound"
	"github.com/palemoky/spymaster/internal/ui/input"
	"github.com/palemoky/spymaster/internal/ui/model"
	"github.com/palemoky/spymaster/internal/ui/view"
)

// NewApp creates the terminal client with its view and key handler wired in.
func NewApp(connect model.Connector, machine *room.Machine, sm *sound.Manager, presetCode string) *model.App {
	app := model.NewApp(connect, machine, sm, presetCode)
	app.SetViewRenderer(view.CreateViewRenderer())
	app.SetKeyHandler(input.HandleKeyPress)
	return app
}
