// Package detector provides hand landmark detection interfaces and types.
package detector

import (
	"image"
	"math"
)

// Hand landmark indices following the MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a single landmark position. X and Y are normalized to the
// 0..1 range relative to the frame; Z is depth relative to the wrist.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pixel projects the normalized point into frame-pixel coordinates.
func (p Point3D) Pixel(width, height int) image.Point {
	return image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// HandLandmarks is one detected hand: the 21 landmark points plus
// handedness and the detector's confidence score.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// WristDistance returns the Euclidean distance from the wrist to the
// landmark at index i. Finger extension heuristics compare tip and joint
// wrist distances, which makes them invariant to hand position and size.
func (h *HandLandmarks) WristDistance(i int) float64 {
	return Distance(h.Points[Wrist], h.Points[i])
}

// BestHand returns the hand with the highest detection score, or nil if
// the slice is empty. The pipeline tracks a single hand; extra detections
// are discarded for the frame.
func BestHand(hands []HandLandmarks) *HandLandmarks {
	if len(hands) == 0 {
		return nil
	}
	best := &hands[0]
	for i := 1; i < len(hands); i++ {
		if hands[i].Score > best.Score {
			best = &hands[i]
		}
	}
	return best
}
