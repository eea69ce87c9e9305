package board

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
)

//go:embed words.txt
var defaultWords string

// ErrNotEnoughWords 词库不足一盘棋
var ErrNotEnoughWords = errors.New("word list has fewer than 25 unique words")

// WordList 去重后的词库
type WordList []string

// NewWordList 规范化并去重，不足 Size 个词时返回错误
func NewWordList(words []string) (WordList, error) {
	seen := make(map[string]struct{}, len(words))
	list := make(WordList, 0, len(words))
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		list = append(list, w)
	}
	if len(list) < Size {
		return nil, fmt.Errorf("%w: got %d", ErrNotEnoughWords, len(list))
	}
	return list, nil
}

// DefaultWords 内置词库
func DefaultWords() WordList {
	list, err := NewWordList(strings.Split(defaultWords, "\n"))
	if err != nil {
		panic(err)
	}
	return list
}

// LoadWords 从文件加载词库，每行一个词
func LoadWords(path string) (WordList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取词库失败: %w", err)
	}
	return NewWordList(strings.Split(string(data), "\n"))
}
