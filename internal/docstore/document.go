// Package docstore is the shared room document store: a flat, field-addressed
// JSON document per room with partial updates, change subscriptions and
// disconnect-triggered removals.
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/palemoky/spymaster/internal/apperrors"
)

// PathSep 路径分隔符
const PathSep = "/"

// Document 扁平化的文档：叶子路径 -> JSON 值。对象被展开为子路径，数组和标量是叶子。
type Document map[string]json.RawMessage

// Patch 局部更新：路径 -> 新值。nil 删除该路径下的整棵子树，
// 非 nil 值替换该子树，未提及的路径保持不变。
type Patch map[string]any

// JoinPath 拼接路径
func JoinPath(parts ...string) string {
	return strings.Join(parts, PathSep)
}

// ValidatePath 校验路径：非空、无空段
func ValidatePath(path string) error {
	if path == "" {
		return apperrors.ErrInvalidPath
	}
	for _, seg := range strings.Split(path, PathSep) {
		if seg == "" || strings.ContainsAny(seg, " \t\r\n") {
			return apperrors.ErrInvalidPath
		}
	}
	return nil
}

// ValidateRoom 校验房间键
func ValidateRoom(room string) error {
	if room == "" || strings.ContainsAny(room, "/: \t\r\n") {
		return apperrors.ErrInvalidRoom
	}
	return nil
}

// Covers 判断 key 是否位于 path 的子树内（含 path 本身）
func Covers(path, key string) bool {
	return key == path || strings.HasPrefix(key, path+PathSep)
}

// isAncestor 判断 key 是否是 path 的严格祖先
func isAncestor(key, path string) bool {
	return strings.HasPrefix(path, key+PathSep)
}

// Flatten 将任意值编码为 JSON 并展开到 prefix 之下
func Flatten(prefix string, v any) (Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("编码 %q 失败: %w", prefix, err)
	}
	out := make(Document)
	if err := flattenRaw(prefix, raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenRaw(prefix string, raw json.RawMessage, out Document) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] != '{' {
		if prefix == "" {
			return apperrors.ErrInvalidPath
		}
		out[prefix] = append(json.RawMessage(nil), trimmed...)
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return fmt.Errorf("解析 %q 失败: %w", prefix, err)
	}
	for k, v := range obj {
		if k == "" || strings.Contains(k, PathSep) {
			return apperrors.ErrInvalidPath
		}
		child := k
		if prefix != "" {
			child = JoinPath(prefix, k)
		}
		if err := flattenRaw(child, v, out); err != nil {
			return err
		}
	}
	return nil
}

// Write 一条已编译的写操作：清空 Path 子树后写入 Leaves
type Write struct {
	Path   string
	Leaves Document
}

// Compile 校验并展开 Patch，按路径字典序返回
func Compile(p Patch) ([]Write, error) {
	writes := make([]Write, 0, len(p))
	for _, path := range slices.Sorted(maps.Keys(p)) {
		if err := ValidatePath(path); err != nil {
			return nil, fmt.Errorf("%w: %q", err, path)
		}
		leaves, err := Flatten(path, p[path])
		if err != nil {
			return nil, err
		}
		writes = append(writes, Write{Path: path, Leaves: leaves})
	}
	return writes, nil
}

// Stale 返回应用 writes 前需要删除的已有字段
func Stale(keys []string, writes []Write) []string {
	var stale []string
	for _, k := range keys {
		for _, w := range writes {
			if Covers(w.Path, k) || isAncestor(k, w.Path) {
				stale = append(stale, k)
				break
			}
		}
	}
	return stale
}

// Merge 在本地按存储语义应用 Patch，返回新文档
func Merge(doc Document, p Patch) (Document, error) {
	writes, err := Compile(p)
	if err != nil {
		return nil, err
	}
	next := maps.Clone(doc)
	if next == nil {
		next = make(Document)
	}
	for _, w := range writes {
		for _, k := range Stale(slices.Collect(maps.Keys(next)), []Write{w}) {
			delete(next, k)
		}
		maps.Copy(next, w.Leaves)
	}
	return next, nil
}

// Unmarshal 由叶子路径重建嵌套 JSON 并解码到 v
func Unmarshal(doc Document, v any) error {
	tree := make(map[string]any)
	for _, key := range slices.Sorted(maps.Keys(doc)) {
		node := tree
		segs := strings.Split(key, PathSep)
		for _, seg := range segs[:len(segs)-1] {
			child, ok := node[seg].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[seg] = child
			}
			node = child
		}
		node[segs[len(segs)-1]] = doc[key]
	}

	raw, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("重建文档失败: %w", err)
	}
	return json.Unmarshal(raw, v)
}
