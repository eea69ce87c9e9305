package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/palemoky/spymaster/internal/config"
	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/logger"
	"github.com/palemoky/spymaster/internal/sound"
	"github.com/palemoky/spymaster/internal/ui"
)

const logDir = ".spymaster"

func newCmd() *cobra.Command {
	var (
		serverAddr string
		roomCode   string
		wordsFile  string
		soundsDir  string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:           "spymaster [room]",
		Short:         "Play spymaster in the terminal.",
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				roomCode = args[0]
			}

			if err := logger.Init(logDir); err != nil {
				return err
			}
			defer logger.Close()
			logger.SetLevel(verbose)

			game := config.GameConfig{WordsFile: wordsFile}
			words, err := game.Words()
			if err != nil {
				return err
			}
			machine := room.NewMachine(board.NewGenerator(words, nil))

			url := fmt.Sprintf("ws://%s/ws", serverAddr)
			connect := func(ctx context.Context) (docstore.Client, func(), error) {
				rs, err := docstore.Dial(ctx, url)
				if err != nil {
					return nil, nil, err
				}
				return rs, rs.Close, nil
			}

			app := ui.NewApp(connect, machine, sound.NewManager(soundsDir), roomCode)
			p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("启动客户端时出错: %w", err)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&serverAddr, "server", "s", "localhost:1780", "gateway address (env: SPYMASTER_SERVER)")
	fs.StringVarP(&roomCode, "room", "r", "", "room code to pre-fill (env: SPYMASTER_ROOM)")
	fs.StringVar(&wordsFile, "words-file", "", "custom word list, one word per line (env: SPYMASTER_WORDS_FILE)")
	fs.StringVar(&soundsDir, "sounds", sound.DefaultDir, "directory with cue sounds (env: SPYMASTER_SOUNDS)")
	fs.BoolVarP(&verbose, "verbose", "v", false, "log debug output (env: SPYMASTER_VERBOSE)")
	config.BindEnv(cmd)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	return cmd
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	cobra.CheckErr(newCmd().Execute())
}
