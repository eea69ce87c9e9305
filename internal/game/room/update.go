package room

import (
	"maps"
	"slices"

	"github.com/palemoky/spymaster/internal/docstore"
)

// Update 一次状态迁移产生的局部更新，只包含该迁移负责的字段
type Update struct {
	patch docstore.Patch
}

func newUpdate() Update {
	return Update{patch: docstore.Patch{}}
}

func (u Update) set(path string, v any) {
	u.patch[path] = v
}

func (u Update) clear(path string) {
	u.patch[path] = nil
}

// Patch 待写入存储的局部更新
func (u Update) Patch() docstore.Patch {
	return u.patch
}

// Paths 本次更新涉及的路径
func (u Update) Paths() []string {
	return slices.Sorted(maps.Keys(u.patch))
}

// Apply 在本地按存储语义应用更新并重新规范化
func (u Update) Apply(r Room) (Room, error) {
	doc, err := r.Document()
	if err != nil {
		return r, err
	}
	merged, err := docstore.Merge(doc, u.patch)
	if err != nil {
		return r, err
	}
	return Decode(merged)
}
