package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dockexplorer/internal/explorer"
)

// PrintTree 展开整棵树并逐行输出，枚举失败的子树输出一行错误
func PrintTree(ctx context.Context, w io.Writer, provider explorer.TreeDataProvider) error {
	return printChildren(ctx, w, provider, nil, 0)
}

func printChildren(ctx context.Context, w io.Writer, provider explorer.TreeDataProvider, parent *explorer.Node, depth int) error {
	nodes, err := provider.GetChildren(ctx, parent)
	if err != nil {
		nodes = []*explorer.Node{explorer.ErrorNode(err)}
	}

	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		item := provider.GetTreeItem(n)
		if _, err := fmt.Fprintf(w, "%s%s%s\n", indent, marker(item), item.Label); err != nil {
			return err
		}
		if item.Expandable() {
			if err := printChildren(ctx, w, provider, item, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func marker(n *explorer.Node) string {
	switch n.Category {
	case explorer.CategoryContainerRunning:
		return "● "
	case explorer.CategoryContainerStopped:
		return "○ "
	case explorer.CategoryError:
		return "✗ "
	}
	if n.Expandable() {
		return "▾ "
	}
	return "- "
}
