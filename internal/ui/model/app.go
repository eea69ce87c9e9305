package model

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/spymaster/internal/docstore"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/game/session"
	"github.com/palemoky/spymaster/internal/logger"
	"github.com/palemoky/spymaster/internal/sound"
)

const (
	errorDisplay    = 3 * time.Second
	leaveTimeout    = 3 * time.Second
	bannerDisplay   = 4 * time.Second
	latencyInterval = 2 * time.Second
)

// ErrInvalidCode 房间号格式错误
var ErrInvalidCode = errors.New("房间号无效")

// latencyReporter 由能测量往返延迟的存储实现（如 docstore.RemoteStore）
type latencyReporter interface {
	Latency() int64
}

// App is the root tea.Model of the terminal client.
type App struct {
	ctx     context.Context
	cancel  context.CancelFunc
	connect Connector
	machine *room.Machine
	sound   *sound.Manager

	store      docstore.Client
	closeStore func()
	playerID   string

	screen   Screen
	joining  bool
	session  *session.Session
	snapshot room.Room
	err      string

	showingHelp bool
	clueSeen    int64 // 最近一条已提示线索的时间戳，初始为进入房间的时刻
	banner      room.Clue
	bannerOn    bool

	nameInput textinput.Model
	codeInput textinput.Model
	clueInput textinput.Model
	focused   Field
	cursor    int

	width  int
	height int

	// View renderer (injected to break circular import)
	viewRenderer func(Model) string

	// Key handler (injected to break circular import)
	keyHandler func(Model, tea.KeyMsg) (bool, tea.Cmd)
}

// NewApp creates the root model. presetCode pre-fills the room code.
func NewApp(connect Connector, machine *room.Machine, sm *sound.Manager, presetCode string) *App {
	name := textinput.New()
	name.Placeholder = "昵称（留空随机）"
	name.CharLimit = 24
	name.Width = 24
	name.Focus()

	code := textinput.New()
	code.Placeholder = "房间号（留空新建）"
	code.CharLimit = room.CodeLength
	code.Width = 24
	code.SetValue(room.NormalizeCode(presetCode))

	clue := textinput.New()
	clue.Placeholder = "线索 数字，例如 OCEAN 2"
	clue.CharLimit = 32
	clue.Width = 32

	ctx, cancel := context.WithCancel(context.Background())
	return &App{
		ctx:       ctx,
		cancel:    cancel,
		connect:   connect,
		machine:   machine,
		sound:     sm,
		playerID:  room.NewPlayerID(),
		screen:    ScreenConnecting,
		snapshot:  room.Initial(),
		nameInput: name,
		codeInput: code,
		clueInput: clue,
		focused:   FieldName,
	}
}

// SetViewRenderer injects the view renderer.
func (a *App) SetViewRenderer(r func(Model) string) { a.viewRenderer = r }

// SetKeyHandler injects the key handler.
func (a *App) SetKeyHandler(h func(Model, tea.KeyMsg) (bool, tea.Cmd)) { a.keyHandler = h }

func (a *App) Init() tea.Cmd {
	go func() {
		if err := a.sound.Init(); err != nil {
			logger.LogError("音效初始化失败: %v", err)
		}
	}()
	return tea.Batch(a.connectToStore(), textinput.Blink)
}

func (a *App) connectToStore() tea.Cmd {
	return func() tea.Msg {
		store, closeFn, err := a.connect(a.ctx)
		if err != nil {
			return ConnectionErrorMsg{Err: err}
		}
		return ConnectedMsg{Store: store, Close: closeFn}
	}
}

// listen 等待会话的下一次变化通知
func listen(s *session.Session) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-s.Changes():
			return RoomChangedMsg{Session: s}
		case <-s.Done():
			return nil
		}
	}
}

func latencyTick(s *session.Session) tea.Cmd {
	return tea.Tick(latencyInterval, func(time.Time) tea.Msg { return LatencyTickMsg{Session: s} })
}

func hideBannerAfter(ts int64) tea.Cmd {
	return tea.Tick(bannerDisplay, func(time.Time) tea.Msg { return ClueBannerExpiredMsg{Timestamp: ts} })
}

// freshClue 返回晚于 seen 的最新线索
func freshClue(r room.Room, seen int64) (room.Clue, bool) {
	if len(r.Clues) == 0 {
		return room.Clue{}, false
	}
	c := r.Clues[len(r.Clues)-1]
	if c.Timestamp <= seen {
		return room.Clue{}, false
	}
	return c, true
}

func clearErrorAfter() tea.Cmd {
	return tea.Tick(errorDisplay, func(time.Time) tea.Msg { return ClearErrorMsg{} })
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, a.Quit()
		}
		if a.keyHandler != nil {
			if handled, cmd := a.keyHandler(a, msg); handled {
				return a, cmd
			}
		}
		return a, a.updateFocused(msg)

	case ConnectedMsg:
		a.store = msg.Store
		a.closeStore = msg.Close
		a.screen = ScreenJoin
		return a, nil

	case ConnectionErrorMsg:
		a.err = "连接失败: " + msg.Err.Error()
		return a, nil

	case JoinedMsg:
		a.joining = false
		if a.session != nil && a.session != msg.Session {
			msg.Session.Close()
			return a, nil
		}
		a.session = msg.Session
		a.snapshot = msg.Session.Snapshot()
		a.screen = ScreenRoom
		a.cursor = 0
		a.clueSeen = time.Now().UnixMilli()
		a.resetOverlays()
		a.Focus(FieldNone)
		return a, tea.Batch(listen(msg.Session), latencyTick(msg.Session))

	case JoinErrorMsg:
		a.joining = false
		a.err = msg.Err.Error()
		return a, clearErrorAfter()

	case LeftMsg:
		a.session = nil
		a.snapshot = room.Initial()
		a.screen = ScreenJoin
		a.resetOverlays()
		return a, a.Focus(FieldName)

	case ClueBannerExpiredMsg:
		if a.bannerOn && a.banner.Timestamp == msg.Timestamp {
			a.bannerOn = false
		}
		return a, nil

	case LatencyTickMsg:
		if msg.Session == nil || msg.Session != a.session {
			return a, nil
		}
		return a, latencyTick(msg.Session)

	case RoomChangedMsg:
		if msg.Session != a.session {
			return a, nil
		}
		return a, a.applySnapshot()

	case ClearErrorMsg:
		a.err = ""
		if a.session != nil {
			a.session.ClearErr()
		}
		return a, nil
	}
	return a, nil
}

// applySnapshot 刷新快照并播放相应音效
func (a *App) applySnapshot() tea.Cmd {
	next := a.session.Snapshot()
	a.sound.Play(sound.CuesFor(a.snapshot, next)...)
	if next.Status != a.snapshot.Status {
		a.cursor = 0
	}
	a.snapshot = next

	cmds := []tea.Cmd{listen(a.session)}
	if c, ok := freshClue(next, a.clueSeen); ok {
		a.clueSeen = c.Timestamp
		a.banner, a.bannerOn = c, true
		cmds = append(cmds, hideBannerAfter(c.Timestamp))
	}
	if err := a.session.Err(); err != "" && err != a.err {
		a.err = err
		cmds = append(cmds, clearErrorAfter())
	}
	return tea.Batch(cmds...)
}

func (a *App) resetOverlays() {
	a.showingHelp = false
	a.banner, a.bannerOn = room.Clue{}, false
}

func (a *App) updateFocused(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch a.focused {
	case FieldName:
		a.nameInput, cmd = a.nameInput.Update(msg)
	case FieldCode:
		a.codeInput, cmd = a.codeInput.Update(msg)
	case FieldClue:
		a.clueInput, cmd = a.clueInput.Update(msg)
	}
	return cmd
}

func (a *App) View() string {
	if a.viewRenderer == nil {
		return ""
	}
	return a.viewRenderer(a)
}

// --- Model interface implementation ---

func (a *App) Screen() Screen              { return a.screen }
func (a *App) Width() int                  { return a.width }
func (a *App) Height() int                 { return a.height }
func (a *App) PlayerID() string            { return a.playerID }
func (a *App) Session() *session.Session   { return a.session }
func (a *App) Snapshot() room.Room         { return a.snapshot }
func (a *App) Error() string               { return a.err }
func (a *App) SetError(e string)           { a.err = e }
func (a *App) NameInput() *textinput.Model { return &a.nameInput }
func (a *App) CodeInput() *textinput.Model { return &a.codeInput }
func (a *App) ClueInput() *textinput.Model { return &a.clueInput }
func (a *App) Focused() Field              { return a.focused }
func (a *App) Cursor() int                 { return a.cursor }
func (a *App) SetCursor(c int)             { a.cursor = c }
func (a *App) ShowingHelp() bool           { return a.showingHelp }
func (a *App) SetShowingHelp(show bool)    { a.showingHelp = show }

// Latency reports the store's round trip when it measures one.
func (a *App) Latency() int64 {
	if l, ok := a.store.(latencyReporter); ok {
		return l.Latency()
	}
	return 0
}

// ClueBanner returns the newly arrived clue while its banner is visible.
func (a *App) ClueBanner() (room.Clue, bool) {
	return a.banner, a.bannerOn
}

// Focus moves keyboard focus to one input, or none.
func (a *App) Focus(f Field) tea.Cmd {
	a.focused = f
	a.nameInput.Blur()
	a.codeInput.Blur()
	a.clueInput.Blur()
	switch f {
	case FieldName:
		return a.nameInput.Focus()
	case FieldCode:
		return a.codeInput.Focus()
	case FieldClue:
		return a.clueInput.Focus()
	}
	return nil
}

// JoinRoom opens the room typed in the join form, creating a new code when empty.
// It does nothing while a join is in flight.
func (a *App) JoinRoom() tea.Cmd {
	if a.store == nil || a.session != nil || a.joining {
		return nil
	}
	code := room.NormalizeCode(a.codeInput.Value())
	if code == "" {
		code = room.NewCode()
	}
	if !room.ValidCode(code) {
		a.err = ErrInvalidCode.Error()
		return clearErrorAfter()
	}
	name := a.nameInput.Value()
	store, machine, playerID := a.store, a.machine, a.playerID
	a.joining = true

	return func() tea.Msg {
		s, err := session.Open(a.ctx, store, machine, code, playerID)
		if err != nil {
			return JoinErrorMsg{Err: err}
		}
		s.Join(name)
		return JoinedMsg{Session: s}
	}
}

// LeaveRoom leaves the room and removes this player from it.
func (a *App) LeaveRoom() tea.Cmd {
	s := a.session
	if s == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(a.ctx, leaveTimeout)
		defer cancel()
		if err := s.Exit(ctx); err != nil {
			logger.LogError("离开房间失败: %v", err)
		}
		return LeftMsg{}
	}
}

// Quit closes the session and the store connection, then exits.
// Pending disconnect cleanups run when the connection closes.
func (a *App) Quit() tea.Cmd {
	if a.session != nil {
		a.session.Close()
	}
	if a.closeStore != nil {
		a.closeStore()
	}
	a.sound.Close()
	a.cancel()
	return tea.Quit
}
