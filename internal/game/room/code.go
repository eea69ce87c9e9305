package room

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// CodeLength 房间号长度
const CodeLength = 4

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// 随机昵称词库
var (
	adjectives = []string{
		"Clumsy", "Sneaky", "Bumbling", "Confused", "Secret", "Dramatic", "Lazy", "Hyper", "Invisible", "Wobbly",
		"Suspicious", "Giggling", "Sarcastic", "Panicked", "Dizzy", "Awkward", "Grumpy", "Sleepy", "Hungry", "Loud",
		"Whispering", "Forgetful", "Lucky", "Unlucky", "Polite", "Rude", "Fancy", "Sweaty", "Trembling", "Bold",
	}

	nouns = []string{
		"Potato", "Ninja", "Hamster", "Spy", "Ghost", "Penguin", "Toaster", "Sock", "Pickle", "Unicorn",
		"Banana", "Chicken", "Cactus", "Muffin", "Panda", "Sloth", "Wizard", "Taco", "Noodle", "Pigeon",
		"Narwhal", "Badger", "Spoon", "Lamp", "Keyboard", "Detective", "Agent", "Tourist", "Grandma", "Baby",
	}
)

// NewCode 生成房间号。不检查是否已被占用，撞号时后来者加入已有房间。
func NewCode() string {
	var b strings.Builder
	b.Grow(CodeLength)
	for range CodeLength {
		b.WriteByte(codeAlphabet[rand.IntN(len(codeAlphabet))])
	}
	return b.String()
}

// NormalizeCode 规范化用户输入的房间号
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidCode 是否为合法的房间号
func ValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := range len(code) {
		if !strings.ContainsRune(codeAlphabet, rune(code[i])) {
			return false
		}
	}
	return true
}

// NewPlayerID 生成玩家 ID
func NewPlayerID() string {
	return uuid.New().String()
}

// RandomName 生成随机昵称，如 "Sneaky Penguin 42"
func RandomName() string {
	adj := adjectives[rand.IntN(len(adjectives))]
	noun := nouns[rand.IntN(len(nouns))]
	return fmt.Sprintf("%s %s %d", adj, noun, rand.IntN(99)+1)
}
