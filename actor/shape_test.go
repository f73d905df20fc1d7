package actor

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSphereComputeInertia(t *testing.T) {
	tests := []struct {
		name   string
		radius float64
		mass   float64
		want   float64
	}{
		{"unit sphere", 1, 1, 0.4},
		{"vertebra collider", 0.25, 0.3, 0.4 * 0.3 * 0.0625},
		{"zero mass", 2, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inertia := (&Sphere{Radius: tt.radius}).ComputeInertia(tt.mass)
			for i, want := range []float64{tt.want, tt.want, tt.want} {
				if got := inertia.At(i, i); math.Abs(got-want) > epsilon {
					t.Errorf("I[%d][%d] = %v, want %v", i, i, got, want)
				}
			}
			if inertia.At(0, 1) != 0 || inertia.At(1, 2) != 0 {
				t.Errorf("off diagonal terms should be zero: %v", inertia)
			}
		})
	}
}

func TestSphereComputeAABB(t *testing.T) {
	sphere := &Sphere{Radius: 0.5}
	sphere.ComputeAABB(NewTransformAt(mgl64.Vec3{1, -1, 2}))

	aabb := sphere.GetAABB()
	if !vecAlmostEqual(aabb.Min, mgl64.Vec3{0.5, -1.5, 1.5}, epsilon) {
		t.Errorf("Min = %v", aabb.Min)
	}
	if !vecAlmostEqual(aabb.Max, mgl64.Vec3{1.5, -0.5, 2.5}, epsilon) {
		t.Errorf("Max = %v", aabb.Max)
	}
}

func TestSphereRaycast(t *testing.T) {
	sphere := &Sphere{Radius: 1}
	transform := NewTransformAt(mgl64.Vec3{0, 0, 5})

	tests := []struct {
		name      string
		origin    mgl64.Vec3
		direction mgl64.Vec3
		wantHit   bool
		wantT     float64
	}{
		{"head on", mgl64.Vec3{}, mgl64.Vec3{0, 0, 1}, true, 4},
		{"grazing miss", mgl64.Vec3{0, 1.01, 0}, mgl64.Vec3{0, 0, 1}, false, 0},
		{"pointing away", mgl64.Vec3{}, mgl64.Vec3{0, 0, -1}, false, 0},
		{"from inside", mgl64.Vec3{0, 0, 5}, mgl64.Vec3{1, 0, 0}, true, 0},
		{"off axis", mgl64.Vec3{0, 0.6, 0}, mgl64.Vec3{0, 0, 1}, true, 5 - 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := sphere.Raycast(transform, tt.origin, tt.direction)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestPlaneSignedDistance(t *testing.T) {
	// y = -5
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 5}
	transform := NewTransform()

	if p := plane.PointOnPlane(transform); !vecAlmostEqual(p, mgl64.Vec3{0, -5, 0}, epsilon) {
		t.Errorf("PointOnPlane() = %v, want (0, -5, 0)", p)
	}

	tests := []struct {
		point mgl64.Vec3
		want  float64
	}{
		{mgl64.Vec3{0, 0, 0}, 5},
		{mgl64.Vec3{3, -5, 7}, 0},
		{mgl64.Vec3{0, -6, 0}, -1},
	}
	for _, tt := range tests {
		if got := plane.SignedDistance(transform, tt.point); math.Abs(got-tt.want) > epsilon {
			t.Errorf("SignedDistance(%v) = %v, want %v", tt.point, got, tt.want)
		}
	}
}

func TestPlaneComputeAABB(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 0}
	plane.ComputeAABB(NewTransform())
	aabb := plane.GetAABB()

	if aabb.Max.Y() != 0 || aabb.Min.Y() != -1 {
		t.Errorf("Y bounds = [%v, %v], want [-1, 0]", aabb.Min.Y(), aabb.Max.Y())
	}
	if aabb.Max.X() < 1e9 || aabb.Min.Z() > -1e9 {
		t.Errorf("plane AABB should be unbounded along X and Z: %v", aabb)
	}
}

func TestPlaneComputeMassAndInertia(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}}

	if !math.IsInf(plane.ComputeMass(1), 1) {
		t.Error("plane mass should be infinite")
	}
	if plane.ComputeInertia(1) != (mgl64.Mat3{}) {
		t.Error("plane inertia should be zero")
	}
}

func TestPlaneRaycast(t *testing.T) {
	plane := &Plane{Normal: mgl64.Vec3{0, 1, 0}, Distance: 5}

	tests := []struct {
		name      string
		origin    mgl64.Vec3
		direction mgl64.Vec3
		wantHit   bool
		wantT     float64
	}{
		{"straight down", mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, -1, 0}, true, 10},
		{"parallel", mgl64.Vec3{0, 5, 0}, mgl64.Vec3{1, 0, 0}, false, 0},
		{"away", mgl64.Vec3{0, 5, 0}, mgl64.Vec3{0, 1, 0}, false, 0},
		{"diagonal", mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, -1, 0}.Normalize(), true, 5 * math.Sqrt2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := plane.Raycast(NewTransform(), tt.origin, tt.direction)
			if ok != tt.wantHit {
				t.Fatalf("hit = %v, want %v", ok, tt.wantHit)
			}
			if ok && math.Abs(got-tt.wantT) > 1e-9 {
				t.Errorf("t = %v, want %v", got, tt.wantT)
			}
		})
	}
}

func TestTransform_RoundTrip(t *testing.T) {
	transform := NewTransformAt(mgl64.Vec3{1, 2, 3})
	transform.Rotation = mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{0, 1, 0})

	local := mgl64.Vec3{0.5, -0.25, 2}
	back := transform.ToLocal(transform.ToWorld(local))

	if !vecAlmostEqual(back, local, 1e-9) {
		t.Errorf("ToLocal(ToWorld(p)) = %v, want %v", back, local)
	}
}
