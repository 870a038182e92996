package model

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Node is one node of a regression tree stored in a flat slice.
type Node struct {
	Leaf        bool
	Feature     int
	Threshold   float64 // x <= Threshold => left
	DefaultLeft bool    // branch taken by NaN
	Left        int
	Right       int
	Value       float64 // leaf output, already scaled by the learning rate
	Cover       float64 // hessian sum of the training rows that reached the node

	bin int // split bin, only meaningful while training
}

// Tree is a regression tree over raw margins. Nodes[0] is the root.
type Tree struct {
	Nodes []Node
}

func (t *Tree) predict(x []float64) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		v := x[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case v <= n.Threshold:
			i = n.Left
		default:
			i = n.Right
		}
	}
}

func (t *Tree) predictBinned(bins [][]uint16, m *binMapper, row int) float64 {
	i := 0
	for {
		n := &t.Nodes[i]
		if n.Leaf {
			return n.Value
		}
		b := int(bins[n.Feature][row])
		switch {
		case b == m.missingBin(n.Feature):
			if n.DefaultLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case b <= n.bin:
			i = n.Left
		default:
			i = n.Right
		}
	}
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var walk func(i int) int
	walk = func(i int) int {
		n := t.Nodes[i]
		if n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	if len(t.Nodes) == 0 {
		return 0
	}
	return walk(0)
}

// treeBuilder grows one tree on gradient statistics using histogram splits.
type treeBuilder struct {
	bins     [][]uint16
	mapper   *binMapper
	grad     []float64
	hess     []float64
	features []int

	maxDepth       int
	lambda         float64
	minChildWeight float64
	eta            float64

	tree *Tree
}

// splitResult holds the best split found on one feature.
type splitResult struct {
	gain        float64
	feature     int
	bin         int
	defaultLeft bool
}

const minSplitGain = 1e-6

func (b *treeBuilder) build(ctx context.Context, idx []int) (*Tree, error) {
	b.tree = &Tree{}
	if _, err := b.buildNode(ctx, idx, 0); err != nil {
		return nil, err
	}
	return b.tree, nil
}

func (b *treeBuilder) buildNode(ctx context.Context, idx []int, depth int) (int, error) {
	var G, H float64
	for _, i := range idx {
		G += b.grad[i]
		H += b.hess[i]
	}
	id := len(b.tree.Nodes)
	b.tree.Nodes = append(b.tree.Nodes, Node{Cover: H})

	leaf := func() (int, error) {
		b.tree.Nodes[id].Leaf = true
		b.tree.Nodes[id].Value = -G / (H + b.lambda) * b.eta
		return id, nil
	}
	if depth >= b.maxDepth || len(idx) < 2 || H < 2*b.minChildWeight {
		return leaf()
	}

	best, err := b.findBestSplit(ctx, idx, G, H)
	if err != nil {
		return 0, err
	}
	if best.feature < 0 || best.gain <= minSplitGain {
		return leaf()
	}

	missing := b.mapper.missingBin(best.feature)
	col := b.bins[best.feature]
	leftIdx := make([]int, 0, len(idx))
	rightIdx := make([]int, 0, len(idx))
	for _, i := range idx {
		bb := int(col[i])
		if (bb == missing && best.defaultLeft) || (bb != missing && bb <= best.bin) {
			leftIdx = append(leftIdx, i)
		} else {
			rightIdx = append(rightIdx, i)
		}
	}

	n := &b.tree.Nodes[id]
	n.Feature = best.feature
	n.Threshold = b.mapper.cuts[best.feature][best.bin]
	n.DefaultLeft = best.defaultLeft
	n.bin = best.bin

	left, err := b.buildNode(ctx, leftIdx, depth+1)
	if err != nil {
		return 0, err
	}
	right, err := b.buildNode(ctx, rightIdx, depth+1)
	if err != nil {
		return 0, err
	}
	b.tree.Nodes[id].Left = left
	b.tree.Nodes[id].Right = right
	return id, nil
}

// findBestSplit searches every sampled feature in parallel. Ties go to the
// feature that comes first in b.features so the result does not depend on
// scheduling.
func (b *treeBuilder) findBestSplit(ctx context.Context, idx []int, G, H float64) (splitResult, error) {
	results := make([]splitResult, len(b.features))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for k, f := range b.features {
		k, f := k, f
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[k] = b.bestSplitForFeature(idx, f, G, H)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return splitResult{}, err
	}

	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}
	return best, nil
}

// bestSplitForFeature builds the gradient histogram of feature f over idx and
// scans it left to right, trying the missing bin on either side.
func (b *treeBuilder) bestSplitForFeature(idx []int, f int, G, H float64) splitResult {
	result := splitResult{feature: -1}
	missing := b.mapper.missingBin(f)
	gh := make([]float64, missing+1)
	hh := make([]float64, missing+1)
	col := b.bins[f]
	for _, i := range idx {
		bb := col[i]
		gh[bb] += b.grad[i]
		hh[bb] += b.hess[i]
	}
	gm, hm := gh[missing], hh[missing]
	parent := G * G / (H + b.lambda)

	try := func(gl, hl float64, bin int, defaultLeft bool) {
		gr, hr := G-gl, H-hl
		if hl < b.minChildWeight || hr < b.minChildWeight {
			return
		}
		gain := 0.5 * (gl*gl/(hl+b.lambda) + gr*gr/(hr+b.lambda) - parent)
		if gain > result.gain {
			result = splitResult{gain: gain, feature: f, bin: bin, defaultLeft: defaultLeft}
		}
	}

	var gl, hl float64
	for bin := 0; bin < missing-1; bin++ {
		gl += gh[bin]
		hl += hh[bin]
		try(gl, hl, bin, false)
		if hm > 0 {
			try(gl+gm, hl+hm, bin, true)
		}
	}
	return result
}
