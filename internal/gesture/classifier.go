// Package gesture interprets hand landmarks as discrete drawing gestures.
package gesture

import "github.com/grusso/airdraw/internal/detector"

// Gesture is the per-frame interpretation of a hand pose.
type Gesture int

const (
	// Idle means no hand, or no recognized finger pattern.
	Idle Gesture = iota
	// Drawing means only the index finger is raised; the index fingertip
	// paints onto the canvas.
	Drawing
	// Selecting means only the pinky is raised; the index fingertip picks
	// UI controls. Pinky-up is a deliberate menu pose that cannot be hit
	// accidentally while drawing.
	Selecting
)

// String returns a human-readable gesture name.
func (g Gesture) String() string {
	switch g {
	case Drawing:
		return "drawing"
	case Selecting:
		return "selecting"
	default:
		return "idle"
	}
}

// Result is a classified frame: the gesture plus the fingertip the rest of
// the pipeline acts on. Tip is meaningless when Gesture is Idle.
type Result struct {
	Gesture Gesture
	Tip     detector.Point3D
}

// finger holds the landmark indices used to decide extension.
// The thumb is excluded: its tip-to-wrist distance barely changes between
// open and tucked poses, so it only adds noise.
type finger struct {
	tip, dip, pip int
}

var fingers = [4]finger{
	{detector.IndexTip, detector.IndexDIP, detector.IndexPIP},
	{detector.MiddleTip, detector.MiddleDIP, detector.MiddlePIP},
	{detector.RingTip, detector.RingDIP, detector.RingPIP},
	{detector.PinkyTip, detector.PinkyDIP, detector.PinkyPIP},
}

// Classify maps a detected hand to a gesture for the current frame.
// A nil hand (nothing detected) classifies as Idle. Ambiguous patterns -
// no fingers raised, or more than one - also classify as Idle rather than
// guessing, so a half-open hand never draws.
func Classify(hand *detector.HandLandmarks) Result {
	if hand == nil {
		return Result{Gesture: Idle}
	}

	extendedCount := 0
	extendedTip := -1
	for _, f := range fingers {
		if isExtended(hand, f) {
			extendedCount++
			extendedTip = f.tip
		}
	}

	if extendedCount != 1 {
		return Result{Gesture: Idle}
	}

	switch extendedTip {
	case detector.IndexTip:
		return Result{Gesture: Drawing, Tip: hand.Points[detector.IndexTip]}
	case detector.PinkyTip:
		// Hit-testing uses the index tip as the reference point even in
		// menu mode; the raised pinky is only the mode switch.
		return Result{Gesture: Selecting, Tip: hand.Points[detector.IndexTip]}
	default:
		return Result{Gesture: Idle}
	}
}

// isExtended reports whether a finger is raised: the tip must sit farther
// from the wrist than both of its upper joints. Comparing wrist distances
// keeps the test invariant to hand position, size, and rotation in plane.
func isExtended(hand *detector.HandLandmarks, f finger) bool {
	tipDist := hand.WristDistance(f.tip)
	return tipDist > hand.WristDistance(f.dip) && tipDist > hand.WristDistance(f.pip)
}
