package ui

import (
	"dockexplorer/internal/explorer"
)

const rootPath = ""

// rowKind 树中一行的类型
type rowKind int

const (
	rowNode rowKind = iota
	rowLoading
	rowEmpty
)

// row 展开后的一行
type row struct {
	kind   rowKind
	node   *explorer.Node
	path   string
	parent string // 所在层级的路径，根层为空
	depth  int
}

// childPath 子节点路径，由父路径和节点在同级中的标识组成
func childPath(parent string, n *explorer.Node) string {
	return parent + "/" + n.Key()
}

// flatten 按展开状态把缓存的子树展开为行
func (m *Model) flatten() []row {
	var rows []row
	var walk func(path string, depth int)
	walk = func(path string, depth int) {
		nodes, ok := m.children[path]
		if !ok {
			if path != rootPath {
				rows = append(rows, row{kind: rowLoading, path: path, parent: path, depth: depth})
			}
			return
		}
		if len(nodes) == 0 && path != rootPath {
			rows = append(rows, row{kind: rowEmpty, path: path, parent: path, depth: depth})
			return
		}
		for _, n := range nodes {
			p := childPath(path, n)
			rows = append(rows, row{kind: rowNode, node: n, path: p, parent: path, depth: depth})
			if n.Expandable() && m.expanded[p] {
				walk(p, depth+1)
			}
		}
	}
	walk(rootPath, 0)
	return rows
}

// pathOf 查找节点当前所在的路径，根节点按指针匹配
func (m *Model) pathOf(n *explorer.Node) (string, bool) {
	for path, nodes := range m.children {
		for _, c := range nodes {
			if c == n {
				return childPath(path, c), true
			}
		}
	}
	return "", false
}

// nodeAt 路径对应的节点
func (m *Model) nodeAt(path string) *explorer.Node {
	for parent, nodes := range m.children {
		for _, c := range nodes {
			if childPath(parent, c) == path {
				return c
			}
		}
	}
	return nil
}
