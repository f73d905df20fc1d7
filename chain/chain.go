// Package chain turns the ordered parts of a segmented mesh into a hanging
// chain of rigid bodies linked by point-to-point joints.
package chain

import (
	"errors"
	"fmt"
	"sort"

	"github.com/akmonengine/spine"
	"github.com/akmonengine/spine/actor"
	"github.com/akmonengine/spine/constraint"
	"github.com/akmonengine/spine/mesh"
	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrEmptyChain = errors.New("chain: no parts to build from")
)

// PivotMode selects where consecutive segments are pinned together
type PivotMode int

const (
	// PivotOrigin pins both body origins together
	PivotOrigin PivotMode = iota
	// PivotMidpoint pins the point halfway between both rest centers
	PivotMidpoint
)

func (m PivotMode) String() string {
	switch m {
	case PivotOrigin:
		return "origin"
	case PivotMidpoint:
		return "midpoint"
	default:
		return fmt.Sprintf("PivotMode(%d)", int(m))
	}
}

// ParsePivotMode reads "origin" or "midpoint"
func ParsePivotMode(s string) (PivotMode, error) {
	switch s {
	case "origin", "":
		return PivotOrigin, nil
	case "midpoint":
		return PivotMidpoint, nil
	default:
		return PivotOrigin, fmt.Errorf("unknown pivot mode %q", s)
	}
}

type Options struct {
	// SegmentMass is the mass of every segment but the first one, which is static
	SegmentMass float64
	// RadiusDivisor shrinks the bounding sphere into the collider sphere
	RadiusDivisor float64
	Pivot         PivotMode

	JointCompliance  float64
	JointDamping     float64
	CollideConnected bool

	LinearDamping  float64
	AngularDamping float64
}

func DefaultOptions() Options {
	return Options{
		SegmentMass:     0.3,
		RadiusDivisor:   2,
		Pivot:           PivotOrigin,
		JointCompliance: constraint.DefaultJointCompliance,
	}
}

// Segment is one vertebra: its mesh part, its body and the transform the
// visual copies from the body each frame
type Segment struct {
	Index int
	Part  *mesh.Part
	// Rest is the bounding sphere of the part as loaded
	Rest mesh.Sphere
	Body *actor.RigidBody

	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// ToWorld maps a vertex of the part, in model space, to its current world position
func (s *Segment) ToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return s.Rotation.Rotate(p.Sub(s.Rest.Center)).Add(s.Position)
}

func (s *Segment) Name() string {
	return s.Part.Name
}

type Chain struct {
	Segments []*Segment
	// Joints[i] links Segments[i] to Segments[i+1]
	Joints []*constraint.PointToPoint
}

// SortParts orders parts by bounding sphere center height, highest first.
// Parts at the same height keep their file order.
func SortParts(parts []*mesh.Part) []*mesh.Part {
	type keyed struct {
		part   *mesh.Part
		height float64
	}

	items := make([]keyed, len(parts))
	for i, part := range parts {
		items[i] = keyed{part: part, height: part.BoundingSphere().Center.Y()}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].height > items[j].height
	})

	sorted := make([]*mesh.Part, len(items))
	for i, item := range items {
		sorted[i] = item.part
	}

	return sorted
}

// Build sorts the parts, creates one body per part and links each body to the previous one
func Build(world *spine.World, parts []*mesh.Part, opts Options) (*Chain, error) {
	if len(parts) == 0 {
		return nil, ErrEmptyChain
	}
	if opts.RadiusDivisor <= 0 {
		return nil, fmt.Errorf("chain: radius divisor must be positive, got %v", opts.RadiusDivisor)
	}
	if opts.SegmentMass <= 0 && len(parts) > 1 {
		return nil, fmt.Errorf("chain: segment mass must be positive, got %v", opts.SegmentMass)
	}

	c := &Chain{}
	for i, part := range SortParts(parts) {
		sphere := part.BoundingSphere()

		mass := opts.SegmentMass
		if i == 0 {
			mass = 0
		}

		body := actor.NewRigidBodyWithMass(
			actor.NewTransformAt(sphere.Center),
			&actor.Sphere{Radius: sphere.Radius / opts.RadiusDivisor},
			mass,
		)
		body.Name = part.Name
		body.Material.LinearDamping = opts.LinearDamping
		body.Material.AngularDamping = opts.AngularDamping
		world.AddBody(body)

		segment := &Segment{
			Index:    i,
			Part:     part,
			Rest:     sphere,
			Body:     body,
			Position: sphere.Center,
			Rotation: mgl64.QuatIdent(),
		}
		c.Segments = append(c.Segments, segment)

		if i > 0 {
			joint := c.link(c.Segments[i-1], segment, opts)
			world.AddJoint(joint)
			c.Joints = append(c.Joints, joint)
		}
	}

	return c, nil
}

func (c *Chain) link(prev, next *Segment, opts Options) *constraint.PointToPoint {
	var pivotA, pivotB mgl64.Vec3
	if opts.Pivot == PivotMidpoint {
		mid := prev.Rest.Center.Add(next.Rest.Center).Mul(0.5)
		pivotA = prev.Body.Transform.ToLocal(mid)
		pivotB = next.Body.Transform.ToLocal(mid)
	}

	joint := constraint.NewPointToPoint(prev.Body, pivotA, next.Body, pivotB)
	joint.Compliance = opts.JointCompliance
	joint.Damping = opts.JointDamping
	joint.CollideConnected = opts.CollideConnected

	return joint
}

// Sync copies every body position, and the rotation when asked, onto its segment
func (c *Chain) Sync(withRotation bool) {
	for _, s := range c.Segments {
		s.Position = s.Body.Transform.Position
		if withRotation {
			s.Rotation = s.Body.Transform.Rotation
		}
	}
}

// SegmentOf returns the segment owning body
func (c *Chain) SegmentOf(body *actor.RigidBody) (*Segment, bool) {
	for _, s := range c.Segments {
		if s.Body == body {
			return s, true
		}
	}

	return nil, false
}

// Validate checks the structural invariants of the chain
func (c *Chain) Validate() error {
	if len(c.Joints) != max(0, len(c.Segments)-1) {
		return fmt.Errorf("chain: %d joints for %d segments", len(c.Joints), len(c.Segments))
	}

	for i, joint := range c.Joints {
		if joint.BodyA != c.Segments[i].Body || joint.BodyB != c.Segments[i+1].Body {
			return fmt.Errorf("chain: joint %d does not link segment %d to segment %d", i, i, i+1)
		}
	}

	for i, s := range c.Segments {
		static := s.Body.BodyType == actor.BodyTypeStatic
		if (i == 0) != static {
			return fmt.Errorf("chain: segment %d static=%v", i, static)
		}
	}

	return nil
}

// JointError sums the pivot separation of every joint
func (c *Chain) JointError() float64 {
	total := 0.0
	for _, joint := range c.Joints {
		total += joint.Error()
	}

	return total
}
