package selector

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/xlab/treeprint"
)

// Tree renders the selected files as an ASCII directory tree rooted at ".",
// used by the <tree> placeholder and the --tree mode. Directories sort
// before files; names compare case-insensitively.
func (s *Selection) Tree() string {
	root := newTreeNode()
	absRoot, err := filepath.Abs(s.Root)
	if err != nil {
		absRoot = s.Root
	}

	for _, f := range s.Files {
		rel, relErr := filepath.Rel(absRoot, f.AbsPath)
		if relErr != nil || strings.HasPrefix(rel, "..") {
			rel = f.Path
		}
		root.insert(strings.Split(filepath.ToSlash(rel), "/"))
	}

	tree := treeprint.New()
	tree.SetValue(".")
	root.graft(tree)
	return strings.TrimRight(tree.String(), "\n")
}

// treeNode is an intermediate nested structure; treeprint branches must be
// added in display order, so children are collected first and sorted.
type treeNode struct {
	children map[string]*treeNode
}

func newTreeNode() *treeNode {
	return &treeNode{children: map[string]*treeNode{}}
}

func (n *treeNode) insert(components []string) {
	if len(components) == 0 {
		return
	}
	child, ok := n.children[components[0]]
	if !ok {
		child = newTreeNode()
		n.children[components[0]] = child
	}
	child.insert(components[1:])
}

func (n *treeNode) graft(branch treeprint.Tree) {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		di, dj := len(n.children[names[i]].children) > 0, len(n.children[names[j]].children) > 0
		if di != dj {
			return di // directories before files
		}
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})

	for _, name := range names {
		child := n.children[name]
		if len(child.children) > 0 {
			child.graft(branch.AddBranch(name))
		} else {
			branch.AddNode(name)
		}
	}
}
