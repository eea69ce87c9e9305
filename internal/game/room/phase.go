package room

import "github.com/palemoky/spymaster/internal/game/board"

// Phase 房间所处阶段，由 status、winner 和 guessesRemaining 推导
type Phase interface {
	isPhase()
}

// Lobby 等待开局
type Lobby struct{}

// AwaitingClue 等待 Team 的间谍首领给出线索
type AwaitingClue struct {
	Team board.Team
}

// Guessing Team 的特工正在根据 Clue 猜词
type Guessing struct {
	Team      board.Team
	Clue      Clue
	Remaining int
}

// Finished 已分出胜负
type Finished struct {
	Winner board.Team
}

func (Lobby) isPhase()        {}
func (AwaitingClue) isPhase() {}
func (Guessing) isPhase()     {}
func (Finished) isPhase()     {}

// Phase 当前阶段，winner 优先于 currentTurn
func (r Room) Phase() Phase {
	switch {
	case r.Status != StatusPlaying:
		return Lobby{}
	case r.HasWinner():
		return Finished{Winner: r.Winner}
	case r.GuessesRemaining != nil:
		g := Guessing{Team: r.CurrentTurn, Remaining: *r.GuessesRemaining}
		if n := len(r.Clues); n > 0 {
			g.Clue = r.Clues[n-1]
		}
		return g
	default:
		return AwaitingClue{Team: r.CurrentTurn}
	}
}
