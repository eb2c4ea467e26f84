// Package layout computes surface size and node positions for layered
// binary tree drawings.
//
// # Sizing
//
// Space is reserved as if the tree were perfect: a tree of depth D gets room
// for 2^(D-1) circles side by side on its widest level, whether or not those
// slots are filled. [Geometry.Size] returns
//
//	width  = 2^(D-1)·2r + (2^(D-1)-1)·h
//	height = D·2r + (D-1)·v + 2p
//
// for radius r, horizontal spacing h, vertical spacing v and padding p.
//
// # Placement
//
// The root sits at the horizontal center, r+p from the top, with a
// half-spread of width/4. Each child moves half-spread to the left or right,
// one level (2r+v) down, and hands half of its parent's half-spread to its
// own children. Because the spread halves exactly as the reserved width
// does, subtrees never overlap. [Walk] visits placements in drawing order:
// pre-order, left before right.
package layout
