package tree

import (
	"math/rand/v2"

	"github.com/emirpasic/gods/stacks/arraystack"

	"github.com/matzehuels/arborist/pkg/errors"
)

// MaxLevels bounds the number of levels [Generate] accepts. A tree with L
// levels allocates 2^L - 1 nodes and is drawn on a surface 2^(L-1) nodes
// wide, so anything beyond this is refused instead of exhausting memory.
const MaxLevels = 20

// Source produces uniform values in [0, 1). *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// SourceFunc adapts a plain function to [Source].
type SourceFunc func() float64

// Float64 calls f.
func (f SourceFunc) Float64() float64 { return f() }

// NewSource returns a seeded PCG source so generations can be reproduced.
func NewSource(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// NewRandomSource returns a source seeded from the runtime's entropy.
func NewRandomSource() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// Option configures [Generate].
type Option func(*generator)

// WithConsumeOnAttach pops a pool candidate only when its branch check
// succeeds, so a rejected left child stays available for the right side.
// By default every check consumes a candidate whether or not it attaches.
func WithConsumeOnAttach() Option {
	return func(g *generator) { g.consumeOnAttach = true }
}

type generator struct {
	src             Source
	left, right     float64
	consumeOnAttach bool
}

// Generate builds a random tree with the given number of levels.
//
// leftProb and rightProb are the independent chances that a node at a
// non-bottom level receives a left or right child from the pool. They are
// not validated here; callers resolve them to [0, 1] first.
//
// levels == 0 yields a nil root and no error.
func Generate(levels int, leftProb, rightProb float64, src Source, opts ...Option) (*Node, error) {
	if err := errors.ValidateLevels(levels, MaxLevels); err != nil {
		return nil, err
	}
	if levels == 0 {
		return nil, nil
	}
	if src == nil {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "random source is nil")
	}

	g := generator{src: src, left: leftProb, right: rightProb}
	for _, opt := range opts {
		opt(&g)
	}
	return g.build(levels), nil
}

func (g *generator) build(levels int) *Node {
	pool := arraystack.New()
	label := 0

	for level := levels; level > 0; level-- {
		built := arraystack.New()
		for i := 0; i < 1<<(level-1); i++ {
			label++
			n := &Node{Label: label}
			if pool.Size() >= 2 {
				n.Left = g.draw(pool, g.left)
				n.Right = g.draw(pool, g.right)
			}
			built.Push(n)
		}
		pool = built
	}

	root, _ := pool.Pop()
	return root.(*Node)
}

// draw flips the branch coin and takes the candidate at the end of the pool.
func (g *generator) draw(pool *arraystack.Stack, p float64) *Node {
	hit := g.src.Float64() < p
	if !hit && g.consumeOnAttach {
		return nil
	}
	v, ok := pool.Pop()
	if !ok || !hit {
		return nil
	}
	return v.(*Node)
}
