// Package recognizer implements the segment tree that maps request paths to
// registered values.
//
// Each registered pattern contributes one value. Patterns share tree nodes
// segment by segment: static segments become labelled children, captures
// share a single capture child per node, and a wildcard becomes a terminal
// child absorbing the remaining path. Lookup walks the tree one segment at a
// time, preferring a static child over the capture child over the wildcard
// child at every step, with no backtracking, so results depend only on the
// registered pattern set and never on registration order.
//
// A failed lookup distinguishes two outcomes. ErrNotMatched means the tree
// holds nothing relevant: the walk never left the root, or it stopped on an
// unconsumed trailing slash, which names a different resource rather than a
// partial form of one. A PartialMatchError means the walk consumed at least
// one real segment before failing; it carries the indexes of every value
// reachable below the deepest node reached, which callers use to attribute
// the miss to the routing scope those values share.
//
// Capture values are reported as byte offsets into the looked-up path, so a
// successful lookup allocates nothing beyond the capture list itself.
package recognizer
