package tree

import "fmt"

// ValidateMove checks a reparent for cycles before any path is rewritten.
// moving is the node's current path, newParent the prospective parent's path;
// the zero newParent promotes the node to a root and is always valid. The
// check is pure string work on the two paths, no I/O.
func ValidateMove(moving, newParent Path) error {
	if newParent.IsZero() {
		return nil
	}
	if moving.IsZero() {
		return fmt.Errorf("%w: moving node has no path", ErrInvalidPath)
	}
	if moving == newParent || moving.IsAncestorOf(newParent) {
		return fmt.Errorf("%w: %s cannot move under %s", ErrCircularReference, moving, newParent)
	}
	return nil
}
