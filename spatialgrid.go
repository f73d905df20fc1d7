package spine

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/spine/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies overlapping it
type Cell struct {
	bodyIndices []int
}

// Pair is a couple of bodies that may be colliding
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hashed grid used by the broad phase.
// Planes are never inserted: their AABB is unbounded, they are paired with every body instead.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// NewSpatialGrid creates a grid; numCells is rounded up to a power of two
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert adds the body index to every cell its AABB covers
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	sg.forEachCell(body.Shape.GetAABB(), func(cellIdx int) {
		sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
	})
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairsParallel streams candidate pairs. Each pair is emitted once, with the
// lower index as BodyA. skip filters pairs that must never collide.
func (sg *SpatialGrid) FindPairsParallel(bodies []*actor.RigidBody, numWorkers int, skip func(a, b *actor.RigidBody) bool) <-chan Pair {
	numWorkers = max(1, numWorkers)
	pairsChan := make(chan Pair, numWorkers*10)

	bodiesPerWorker := max(1, (len(bodies)+numWorkers-1)/numWorkers)

	var wg sync.WaitGroup
	for start := 0; start < len(bodies); start += bodiesPerWorker {
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()

			seen := make([]bool, len(bodies))
			for bodyIdx := start; bodyIdx < end; bodyIdx++ {
				clear(seen)
				bodyA := bodies[bodyIdx]

				if isPlane(bodyA) {
					for otherIdx := bodyIdx + 1; otherIdx < len(bodies); otherIdx++ {
						if !isPlane(bodies[otherIdx]) && candidate(bodyA, bodies[otherIdx], skip) {
							pairsChan <- Pair{BodyA: bodyA, BodyB: bodies[otherIdx]}
						}
					}
					continue
				}

				sg.forEachCell(bodyA.Shape.GetAABB(), func(cellIdx int) {
					for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
						if otherIdx <= bodyIdx || seen[otherIdx] {
							continue
						}
						seen[otherIdx] = true

						bodyB := bodies[otherIdx]
						if candidate(bodyA, bodyB, skip) && bodyA.Shape.GetAABB().Overlaps(bodyB.Shape.GetAABB()) {
							pairsChan <- Pair{BodyA: bodyA, BodyB: bodyB}
						}
					}
				})

				// Planes listed before this body were already paired from their side
				for otherIdx := bodyIdx + 1; otherIdx < len(bodies); otherIdx++ {
					if isPlane(bodies[otherIdx]) && candidate(bodyA, bodies[otherIdx], skip) {
						pairsChan <- Pair{BodyA: bodyA, BodyB: bodies[otherIdx]}
					}
				}
			}
		}(start, min(start+bodiesPerWorker, len(bodies)))
	}

	go func() {
		wg.Wait()
		close(pairsChan)
	}()

	return pairsChan
}

func candidate(a, b *actor.RigidBody, skip func(a, b *actor.RigidBody) bool) bool {
	if a.BodyType == actor.BodyTypeStatic && b.BodyType == actor.BodyTypeStatic {
		return false
	}
	if a.IsSleeping && b.IsSleeping {
		return false
	}

	return skip == nil || !skip(a, b)
}

func isPlane(body *actor.RigidBody) bool {
	return body.Shape.Type() == actor.ShapeTypePlane
}

func (sg *SpatialGrid) forEachCell(aabb actor.AABB, fn func(cellIdx int)) {
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				fn(sg.hashCell(CellKey{x, y, z}))
			}
		}
	}
}

func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
