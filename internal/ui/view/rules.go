package view

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/spymaster/internal/game/board"
	"github.com/palemoky/spymaster/internal/game/room"
	"github.com/palemoky/spymaster/internal/ui/common"
)

// RenderGameRules renders the game rules.
func RenderGameRules() string {
	var sb strings.Builder

	sb.WriteString("【游戏目标】\n")
	sb.WriteString("两队竞争，先翻开本队全部特工卡的队伍获胜\n")
	fmt.Fprintf(&sb, "先手队有 %d 张特工卡，后手队 %d 张\n\n", board.StartingTeamCards, board.OtherTeamCards)

	sb.WriteString("【角色】\n")
	sb.WriteString("• 间谍首领：能看到所有卡牌的身份，负责给出线索\n")
	sb.WriteString("• 特工：只能看到已翻开的卡牌，根据线索猜词\n")
	sb.WriteString("• 观战：不参与游戏\n\n")

	sb.WriteString("【回合流程】\n")
	sb.WriteString("1. 间谍首领给出一个词和一个数字，如 OCEAN 2\n")
	sb.WriteString("2. 本队特工最多可猜 数字+1 次\n")
	sb.WriteString("3. 猜中本队卡牌可以继续，猜到中立或对方卡牌则回合结束\n")
	sb.WriteString("4. 特工也可以随时主动结束回合\n\n")

	sb.WriteString("【刺客】\n")
	sb.WriteString("翻开刺客卡的队伍立即失败\n\n")

	sb.WriteString("【快捷键】\n")
	sb.WriteString("• 方向键 + Enter：选择并翻牌\n")
	sb.WriteString("• C：给出线索（间谍首领）\n")
	sb.WriteString("• E：结束回合\n")
	sb.WriteString("• ? / H：显示或隐藏规则\n")
	sb.WriteString("• Q：离开房间")

	return common.BoxStyle.Render(sb.String())
}

// RulesView renders the full rules screen.
func RulesView(width int) string {
	var sb strings.Builder
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.TitleStyle("📖 游戏规则")))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, RenderGameRules()))
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, common.HintStyle.Render("按任意键返回")))
	return sb.String()
}

// ClueBannerView announces a clue that just arrived.
func ClueBannerView(c room.Clue) string {
	text := fmt.Sprintf("📣 %s 的线索: %s %d", common.TeamName(c.Team), strings.ToUpper(c.Word), c.Number)
	return common.BoxStyle.
		BorderForeground(common.TeamText(c.Team).GetForeground()).
		Render(common.TeamText(c.Team).Render(text))
}
