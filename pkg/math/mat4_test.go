package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	for i := 0; i < 16; i++ {
		want := float32(0)
		if i%5 == 0 {
			want = 1
		}
		if m[i] != want {
			t.Errorf("Identity[%d] = %v, want %v", i, m[i], want)
		}
	}
}

func TestMulIdentity(t *testing.T) {
	m := Perspective(1, 1.5, 0.1, 100)
	got := m.Mul(Identity())
	if got != m {
		t.Errorf("m * I = %v, want %v", got, m)
	}
}

func TestPerspective(t *testing.T) {
	m := Perspective(float32(math.Pi/4), 1, 0.1, 100)

	if m[0] == 0 || m[5] == 0 {
		t.Error("Perspective should have non-zero elements")
	}
	if m[15] != 0 {
		t.Errorf("Perspective [15] should be 0, got %f", m[15])
	}
	if m[11] != -1 {
		t.Errorf("Perspective [11] should be -1, got %f", m[11])
	}
}

func TestLookAtMovesEyeToOrigin(t *testing.T) {
	eye := Vec3{3, 4, 5}
	m := LookAt(eye, Vec3{}, Vec3{0, 1, 0})

	got := m.TransformVec3(eye)
	if got.Length() > 1e-4 {
		t.Errorf("LookAt(eye) * eye = %v, want origin", got)
	}
}

func TestFrustumPlanes(t *testing.T) {
	view := LookAt(Vec3{0, 0, 5}, Vec3{}, Vec3{0, 1, 0})
	proj := Perspective(float32(math.Pi/2), 1, 0.1, 100)
	planes := proj.Mul(view).FrustumPlanes()

	inside := Vec3{}
	for i, pl := range planes {
		if d := pl.Distance(inside); d <= 0 {
			t.Errorf("plane %d: origin distance %v, want > 0", i, d)
		}
	}

	behind := Vec3{0, 0, 10}
	if d := planes[4].Distance(behind); d >= 0 {
		t.Errorf("near plane: point behind eye distance %v, want < 0", d)
	}

	farAway := Vec3{0, 0, -200}
	if d := planes[5].Distance(farAway); d >= 0 {
		t.Errorf("far plane: distant point distance %v, want < 0", d)
	}

	left := Vec3{-50, 0, 0}
	if d := planes[0].Distance(left); d >= 0 {
		t.Errorf("left plane: point far left distance %v, want < 0", d)
	}
}

func TestFrustumPlanesNormalised(t *testing.T) {
	view := LookAt(Vec3{10, 20, 30}, Vec3{}, Vec3{0, 1, 0})
	proj := Perspective(1.2, 1.6, 1, 1000)
	for i, pl := range proj.Mul(view).FrustumPlanes() {
		if l := pl.Normal.Length(); abs(l-1) > 1e-4 {
			t.Errorf("plane %d normal length = %v, want 1", i, l)
		}
	}
}

func abs(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
