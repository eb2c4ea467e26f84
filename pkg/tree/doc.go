// Package tree builds random binary trees and answers shape questions about
// them.
//
// # Generation
//
// [Generate] constructs a tree bottom-up. Level L (counting the root as
// level 1) gets 2^(L-1) fresh nodes labelled with a counter that runs across
// the whole generation, so the deepest level holds labels 1..2^(L-1) and the
// root carries the highest label. Nodes of the previous, deeper level form a
// pool that each new node draws its children from, one independent coin flip
// per side:
//
//	src := tree.NewSource(42)
//	root, err := tree.Generate(4, 0.8, 0.6, src)
//
// Candidates left in the pool when a level is finished are dropped and never
// become reachable from the root.
//
// # Shape
//
// [MaxDepth] sizes drawings, [Count] and [Labels] summarize a tree, and
// [Walk] visits nodes in pre-order, left before right.
package tree
