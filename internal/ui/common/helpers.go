// Package common provides shared utilities for the UI.
package common

import "github.com/charmbracelet/x/ansi"

// nameTail 截断名字时的结尾标记
const nameTail = "…"

// TruncateName 按终端显示宽度截断名字，中文等全角字符占两列
func TruncateName(name string, maxWidth int) string {
	return ansi.Truncate(name, maxWidth, nameTail)
}
