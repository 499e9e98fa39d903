package geometry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/core"
	"github.com/Kuuro-neko/HAI719-Raytracing/pkg/material"
)

// randomMesh builds a soup of small triangles scattered in a cube
func randomMesh(random *rand.Rand, count int, spread float64) *Mesh {
	vertices := make([]Vertex, 0, count*3)
	faces := make([][3]int, 0, count)

	for i := 0; i < count; i++ {
		center := core.NewVec3(
			(random.Float64()*2-1)*spread,
			(random.Float64()*2-1)*spread,
			(random.Float64()*2-1)*spread,
		)
		for j := 0; j < 3; j++ {
			offset := core.NewVec3(random.Float64()-0.5, random.Float64()-0.5, random.Float64()-0.5)
			vertices = append(vertices, Vertex{Position: center.Add(offset)})
		}
		faces = append(faces, [3]int{3 * i, 3*i + 1, 3*i + 2})
	}

	return NewMesh(vertices, faces, material.NewDiffuse(core.NewVec3(0.5, 0.5, 0.5)))
}

func randomRay(random *rand.Rand, spread float64) core.Ray {
	origin := core.NewVec3(
		(random.Float64()*2-1)*spread*2,
		(random.Float64()*2-1)*spread*2,
		(random.Float64()*2-1)*spread*2,
	)
	target := core.NewVec3(
		(random.Float64()*2-1)*spread,
		(random.Float64()*2-1)*spread,
		(random.Float64()*2-1)*spread,
	)
	return core.NewRay(origin, target.Subtract(origin), 0)
}

func checkTreeMatchesLinear(t *testing.T, mesh *Mesh, ray core.Ray) {
	t.Helper()

	treeHit := mesh.Tree().Intersect(ray, 0)
	linearHit := mesh.IntersectLinear(ray, 0)

	if treeHit.Exists != linearHit.Exists {
		t.Fatalf("Ray %v: tree hit=%v, linear hit=%v (linear t=%f)", ray, treeHit.Exists, linearHit.Exists, linearHit.T)
	}
	if linearHit.Exists && math.Abs(treeHit.T-linearHit.T) > 1e-9 {
		t.Fatalf("Ray %v: tree t=%f, linear t=%f", ray, treeHit.T, linearHit.T)
	}
}

func TestPartitionTree_MatchesLinearScan(t *testing.T) {
	tests := []struct {
		name      string
		triangles int
		spread    float64
		config    TreeConfig
	}{
		{name: "Below leaf size", triangles: 30, spread: 3, config: DefaultTreeConfig()},
		{name: "Default config", triangles: 600, spread: 5, config: DefaultTreeConfig()},
		{name: "Tiny leaves", triangles: 300, spread: 4, config: TreeConfig{MaxDepth: 100, LeafSize: 1}},
		{name: "Dense cluster", triangles: 500, spread: 0.5, config: TreeConfig{MaxDepth: 20, LeafSize: 4}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			random := rand.New(rand.NewSource(int64(100 + i)))
			mesh := randomMesh(random, tt.triangles, tt.spread)
			mesh.TreeConfig = tt.config

			hits := 0
			for r := 0; r < 2000; r++ {
				ray := randomRay(random, tt.spread)
				checkTreeMatchesLinear(t, mesh, ray)
				if mesh.IntersectLinear(ray, 0).Exists {
					hits++
				}
			}
			if hits == 0 {
				t.Fatalf("No ray hit the mesh; the comparison is vacuous")
			}
		})
	}
}

func TestPartitionTree_ReportsSourceIndex(t *testing.T) {
	random := rand.New(rand.NewSource(5))
	mesh := randomMesh(random, 200, 3)
	mesh.TreeConfig = TreeConfig{MaxDepth: 100, LeafSize: 2}

	for r := 0; r < 1000; r++ {
		ray := randomRay(random, 3)
		treeHit := mesh.Tree().Intersect(ray, 0)
		if !treeHit.Exists {
			continue
		}

		triangle := mesh.Triangle(treeHit.TriangleIndex)
		direct := triangle.Intersect(ray)
		if !direct.Exists || direct.T != treeHit.T {
			t.Fatalf("Source index %d does not identify the hit triangle", treeHit.TriangleIndex)
		}
	}
}

func TestPartitionTree_CoincidentTrianglesTerminate(t *testing.T) {
	var vertices []Vertex
	var faces [][3]int
	for i := 0; i < 500; i++ {
		base := len(vertices)
		vertices = append(vertices,
			Vertex{Position: core.NewVec3(0, 0, 0)},
			Vertex{Position: core.NewVec3(1, 0, 0)},
			Vertex{Position: core.NewVec3(0, 1, 0)},
		)
		faces = append(faces, [3]int{base, base + 1, base + 2})
	}
	// Degenerate point triangles as well
	for i := 0; i < 100; i++ {
		base := len(vertices)
		p := core.NewVec3(0.3, 0.3, 0)
		vertices = append(vertices, Vertex{Position: p}, Vertex{Position: p}, Vertex{Position: p})
		faces = append(faces, [3]int{base, base + 1, base + 2})
	}

	mesh := NewMesh(vertices, faces, material.NewDiffuse(core.NewVec3(1, 1, 1)))
	mesh.TreeConfig = TreeConfig{MaxDepth: 100, LeafSize: 4}

	stats := mesh.Prepare()
	if stats.Leaves == 0 {
		t.Fatalf("Expected at least one leaf, got %+v", stats)
	}
	if stats.MaxDepth > mesh.TreeConfig.MaxDepth+1 {
		t.Errorf("Tree depth %d exceeds bound %d", stats.MaxDepth, mesh.TreeConfig.MaxDepth+1)
	}

	hit := mesh.Intersect(core.NewRay(core.NewVec3(0.2, 0.2, 1), core.NewVec3(0, 0, -1), 0), 0)
	if !hit.Exists || math.Abs(hit.T-1) > 1e-9 {
		t.Errorf("Expected hit at t=1 through coincident triangles, got %+v", hit)
	}
}

func TestPartitionTree_DepthBound(t *testing.T) {
	random := rand.New(rand.NewSource(11))
	mesh := randomMesh(random, 400, 5)
	mesh.TreeConfig = TreeConfig{MaxDepth: 3, LeafSize: 1}

	stats := mesh.Prepare()
	if stats.MaxDepth > 4 {
		t.Errorf("Expected depth at most 4, got %d", stats.MaxDepth)
	}
	if stats.TriangleRefs < len(mesh.Triangles) {
		t.Errorf("Leaves reference %d triangles, expected at least %d", stats.TriangleRefs, len(mesh.Triangles))
	}

	for r := 0; r < 500; r++ {
		checkTreeMatchesLinear(t, mesh, randomRay(random, 5))
	}
}

func TestPartitionTree_EmptyMesh(t *testing.T) {
	mesh := NewMesh(nil, nil, material.NewDiffuse(core.NewVec3(1, 1, 1)))

	if mesh.Tree() != nil {
		t.Errorf("Expected no tree for an empty mesh")
	}
	hit := mesh.Intersect(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1), 0), 0)
	if hit.Exists || !math.IsInf(hit.T, 1) {
		t.Errorf("Expected miss with t=+Inf, got %+v", hit)
	}

	tree := BuildPartitionTree(nil, nil, core.AABB{}, DefaultTreeConfig())
	if tree.Root != nil {
		t.Errorf("Expected nil root for an empty triangle list")
	}
}

func FuzzTreeMatchesLinear(f *testing.F) {
	f.Add(int64(1), uint8(50), uint8(4))
	f.Add(int64(2), uint8(200), uint8(1))
	f.Add(int64(3), uint8(120), uint8(40))

	f.Fuzz(func(t *testing.T, seed int64, count uint8, leafSize uint8) {
		random := rand.New(rand.NewSource(seed))
		mesh := randomMesh(random, int(count)+1, 2)
		mesh.TreeConfig = TreeConfig{MaxDepth: 30, LeafSize: int(leafSize%64) + 1}

		for r := 0; r < 64; r++ {
			checkTreeMatchesLinear(t, mesh, randomRay(random, 2))
		}
	})
}
