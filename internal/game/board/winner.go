package board

// CheckWinner 根据棋盘和刚刚行动的阵营判断胜者。
// 刺客被翻开时行动方立即落败，优先于全部翻开的判定。
func CheckWinner(b Board, currentTurn Team) (Team, bool) {
	for _, c := range b {
		if c.Type == CardAssassin && c.Revealed {
			return currentTurn.Other(), true
		}
	}

	if allRevealed(b, CardRed) {
		return TeamRed, true
	}
	if allRevealed(b, CardBlue) {
		return TeamBlue, true
	}
	return "", false
}

func allRevealed(b Board, t CardType) bool {
	found := false
	for _, c := range b {
		if c.Type != t {
			continue
		}
		found = true
		if !c.Revealed {
			return false
		}
	}
	return found
}
