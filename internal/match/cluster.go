package match

import "github.com/freightlens/shipdedup/internal/model"

// unionFind is a disjoint-set forest with union by rank and path
// compression. Naive "copy one cluster ID to the other record" propagation
// silently fails to merge two established clusters when a later pair links
// them; the forest keeps transitivity under any pair ordering.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{
		parent: make([]int, n),
		rank:   make([]int, n),
	}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

// find returns the root of x, compressing the path on the way.
func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// union merges the sets containing x and y.
func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// BuildClusters assigns each of n records a cluster ID from the matched
// pairs. Records i and j end in the same cluster if and only if some chain
// of matched pairs connects them, for any arrival order of the pairs.
// Records with no matching pair keep model.Unassigned.
//
// Cluster IDs are densified in increasing order of first discovery: the
// cluster containing the earliest emitted pair gets ID 0, and so on. The
// values carry no meaning beyond identity.
func BuildClusters(n int, matches []model.PairScore) model.ClusterAssignment {
	uf := newUnionFind(n)
	for _, m := range matches {
		uf.union(int(m.I), int(m.J))
	}

	assignment := make(model.ClusterAssignment, n)
	for i := range assignment {
		assignment[i] = model.Unassigned
	}

	// Label final roots in emission order so IDs reflect first discovery.
	labels := make(map[int]model.ClusterID)
	next := model.ClusterID(0)
	for _, m := range matches {
		root := uf.find(int(m.I))
		if _, ok := labels[root]; !ok {
			labels[root] = next
			next++
		}
	}

	for i := range assignment {
		if label, ok := labels[uf.find(i)]; ok {
			assignment[i] = label
		}
	}

	return assignment
}
