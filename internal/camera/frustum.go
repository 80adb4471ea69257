// Package camera provides the viewers that drive landscape refinement.
package camera

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/roam/pkg/math"
)

// ErrFrustum reports an unusable projection.
var ErrFrustum = errors.New("invalid view frustum")

// Frustum is a perspective viewer. It culls bounding spheres against its six
// clip planes and measures error as the angle a vertical deviation subtends
// at the eye.
type Frustum struct {
	fovY   float32 // radians
	aspect float32
	near   float32
	far    float32

	eye      math.Vec3
	dir      math.Vec3
	viewProj math.Mat4
	planes   [6]math.Plane
}

// NewFrustum creates a frustum with a vertical field of view in degrees.
func NewFrustum(fovDeg, aspect, near, far float32) (*Frustum, error) {
	if fovDeg <= 0 || fovDeg >= 180 {
		return nil, fmt.Errorf("%w: fov %v", ErrFrustum, fovDeg)
	}
	if aspect <= 0 || near <= 0 || far <= near {
		return nil, fmt.Errorf("%w: aspect %v near %v far %v", ErrFrustum, aspect, near, far)
	}
	f := &Frustum{
		fovY:   math.Radians(fovDeg),
		aspect: aspect,
		near:   near,
		far:    far,
	}
	f.Look(math.Vec3{}, math.Vec3{Z: -1})
	return f, nil
}

// Look places the eye and rebuilds the clip planes.
func (f *Frustum) Look(position, direction math.Vec3) {
	dir := direction.Normalize()
	if dir.Length() == 0 {
		dir = math.Vec3{Z: -1}
	}
	up := math.Vec3{Y: 1}
	if math.Abs(dir.Y) > 0.99 {
		up = math.Vec3{Z: -1}
	}
	f.eye, f.dir = position, dir
	view := math.LookAt(position, position.Add(dir), up)
	f.viewProj = math.Perspective(f.fovY, f.aspect, f.near, f.far).Mul(view)
	f.planes = f.viewProj.FrustumPlanes()
}

// Eye returns the last eye position.
func (f *Frustum) Eye() math.Vec3 { return f.eye }

// Direction returns the normalised gaze.
func (f *Frustum) Direction() math.Vec3 { return f.dir }

// ViewProjection returns projection × view.
func (f *Frustum) ViewProjection() math.Mat4 { return f.viewProj }

// Visible reports whether a sphere touches the frustum.
func (f *Frustum) Visible(center math.Vec3, radius float32) bool {
	for _, pl := range f.planes {
		if pl.Distance(center) < -radius {
			return false
		}
	}
	return true
}

// Error returns the screen-space angle of variance seen from the eye at the
// near edge of the sphere. Spheres outside the frustum have no error.
func (f *Frustum) Error(center math.Vec3, radius, variance float32) float32 {
	if variance <= 0 || !f.Visible(center, radius) {
		return 0
	}
	d := max(center.Distance(f.eye)-radius, f.near)
	return float32(stdmath.Atan2(float64(variance), float64(d)))
}
