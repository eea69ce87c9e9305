package input

import (
	"errors"
	"strconv"
	"strings"

	"github.com/palemoky/spymaster/internal/game/room"
)

var (
	errClueFormat = errors.New("格式: 线索 数字，例如 OCEAN 2")
	errClueNumber = errors.New("数字需在 0-9 之间")
)

// ParseClue splits "word number"; the word may contain spaces.
func ParseClue(s string) (string, int, error) {
	fields := strings.Fields(s)
	if len(fields) < 2 {
		return "", 0, errClueFormat
	}
	n, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return "", 0, errClueFormat
	}
	if n < 0 || n > room.MaxClueNumber {
		return "", 0, errClueNumber
	}
	return strings.Join(fields[:len(fields)-1], " "), n, nil
}
