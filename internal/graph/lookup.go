package graph

import (
	"context"
	"sort"
)

// DocsFor returns, for each given symbol ID, the documents whose sections
// reference it, in anchor order. Symbols nothing references get no entry.
func DocsFor(ctx context.Context, st Store, ids []string) (map[string][]DocNode, error) {
	if len(ids) == 0 {
		return map[string][]DocNode{}, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	edges, err := st.GetAllEdges(ctx)
	if err != nil {
		return nil, err
	}
	anchors := make(map[string][]string)
	for _, e := range edges {
		if e.Kind == EdgeKindReferences && want[e.TargetID] {
			anchors[e.TargetID] = append(anchors[e.TargetID], e.SourceID)
		}
	}

	// Documents repeat across symbols, so resolve each anchor once.
	cache := make(map[string]*DocNode)
	out := make(map[string][]DocNode, len(anchors))
	for id, srcs := range anchors {
		sort.Strings(srcs)
		for _, anchor := range srcs {
			doc, ok := cache[anchor]
			if !ok {
				doc, err = st.GetDoc(ctx, anchor)
				if err != nil {
					return nil, err
				}
				cache[anchor] = doc
			}
			if doc == nil {
				continue
			}
			out[id] = append(out[id], *doc)
		}
	}
	return out, nil
}
