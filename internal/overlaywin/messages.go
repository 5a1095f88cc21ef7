// Package overlaywin implements the Window Manager (spec §4.9): it watches
// the game-state broadcast for window position/size changes and computes
// the clamped overlay pose the host should apply to the actual OS window.
// The window handle itself is owned by the foreground thread outside this
// package, the same way internal/render's Frame is consumed by an external
// renderer this module never touches directly.
package overlaywin

// Pose is the clamped position and size the overlay window should be set
// to, published once per change (spec §4.9).
type Pose struct {
	X      int32
	Y      int32
	Width  int32
	Height int32
}
