package transcode

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Digital-Shane/season-remux/internal/media"
	"github.com/Digital-Shane/treeview"
)

const discoverTraversalCap = 2000000

// Directories at this depth below the root are listed but not opened.
var discoverMaxDepth = 64

type treeBuilderFunc func(context.Context, string, bool, ...treeview.Option[treeview.FileInfo]) (*treeview.Tree[treeview.FileInfo], error)

var discoverTreeBuilder treeBuilderFunc = treeview.NewTreeFromFileSystem

// Discover returns every remux source under root, sorted. Completed subtrees
// are included. Symlinks are not followed. Directories too deep to search are
// returned in truncated so the caller can report them.
func Discover(ctx context.Context, root string) (files, truncated []string, err error) {
	t, err := discoverTreeBuilder(ctx, root, false,
		treeview.WithMaxDepth[treeview.FileInfo](discoverMaxDepth),
		treeview.WithTraversalCap[treeview.FileInfo](discoverTraversalCap),
		treeview.WithFilterFunc(func(fi treeview.FileInfo) bool {
			if fi.IsDir() {
				return true
			}
			return fi.FileInfo.Mode().IsRegular() && media.IsRenameTarget(fi.Name())
		}),
	)
	if errors.Is(err, treeview.ErrTraversalLimit) {
		return nil, nil, fmt.Errorf("index %s: more than %d entries: %w", root, discoverTraversalCap, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("index %s: %w", root, err)
	}

	for info, err := range t.All(ctx) {
		if err != nil {
			return nil, nil, err
		}
		fi := info.Node.Data()
		if fi.IsDir() {
			if info.Depth >= discoverMaxDepth {
				truncated = append(truncated, fi.Path)
			}
			continue
		}
		files = append(files, fi.Path)
	}
	sort.Strings(files)
	sort.Strings(truncated)
	return files, truncated, nil
}
