package camera

import (
	gomath "math"

	"github.com/Faultbox/roam/pkg/math"
)

// OrbitCamera circles a center point. It scripts flights over a landscape.
type OrbitCamera struct {
	Center math.Vec3

	// Spherical coordinates
	Distance float32
	Pitch    float32 // radians above the horizon
	Yaw      float32 // radians around +Y

	MinDistance float32
	MaxDistance float32
	MinPitch    float32
	MaxPitch    float32

	DragSensitivity float32
	ZoomSensitivity float32
}

// NewOrbitCamera creates an orbit camera with default settings.
func NewOrbitCamera() *OrbitCamera {
	return &OrbitCamera{
		Distance:        200.0,
		Pitch:           0.5,
		MinDistance:     10.0,
		MaxDistance:     5000.0,
		MinPitch:        0.05,
		MaxPitch:        1.5,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
	}
}

// Position returns the camera position in world space.
func (c *OrbitCamera) Position() math.Vec3 {
	cosPitch := gomath.Cos(float64(c.Pitch))
	return c.Center.Add(math.Vec3{
		X: c.Distance * float32(cosPitch*gomath.Sin(float64(c.Yaw))),
		Y: c.Distance * float32(gomath.Sin(float64(c.Pitch))),
		Z: c.Distance * float32(cosPitch*gomath.Cos(float64(c.Yaw))),
	})
}

// Direction returns the normalised gaze toward the center.
func (c *OrbitCamera) Direction() math.Vec3 {
	return c.Center.Sub(c.Position()).Normalize()
}

// ViewMatrix returns the view matrix for this camera.
func (c *OrbitCamera) ViewMatrix() math.Mat4 {
	return math.LookAt(c.Position(), c.Center, math.Vec3{Y: 1})
}

// HandleDrag updates rotation from a drag delta.
func (c *OrbitCamera) HandleDrag(deltaX, deltaY float32) {
	c.Yaw -= deltaX * c.DragSensitivity
	c.Pitch = math.Clamp(c.Pitch+deltaY*c.DragSensitivity, c.MinPitch, c.MaxPitch)
}

// HandleZoom updates distance from a scroll delta.
func (c *OrbitCamera) HandleZoom(delta float32) {
	c.Distance = math.Clamp(c.Distance-delta*c.Distance*c.ZoomSensitivity, c.MinDistance, c.MaxDistance)
}

// HandleMovement pans the center relative to the current yaw. Speed scales
// with distance.
func (c *OrbitCamera) HandleMovement(forward, right, up float32) {
	speed := c.Distance * 0.01

	sin := float32(gomath.Sin(float64(c.Yaw)))
	cos := float32(gomath.Cos(float64(c.Yaw)))

	// Forward moves away from the eye, into the scene.
	c.Center.X += (-sin*forward + cos*right) * speed
	c.Center.Z += (-cos*forward - sin*right) * speed
	c.Center.Y += up * speed
}

// FitToBounds centers the camera over a box and backs off to see it.
func (c *OrbitCamera) FitToBounds(lo, hi math.Vec3) {
	c.Center = lo.Mid(hi)
	c.Distance = math.Clamp(max(hi.X-lo.X, hi.Z-lo.Z)*0.6, c.MinDistance, c.MaxDistance)
	c.Pitch = math.Clamp(0.6, c.MinPitch, c.MaxPitch)
	c.Yaw = 0
}
