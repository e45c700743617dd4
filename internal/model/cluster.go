package model

// ClusterID identifies a group of records judged to denote the same
// real-world entity. IDs are assigned in increasing order of first discovery
// and carry no meaning beyond identity.
type ClusterID int

// Unassigned marks a record with no matching pair. Singletons are a normal
// outcome, not an error.
const Unassigned ClusterID = -1

// ClusterAssignment maps each record (by ordinal position) to its cluster.
// Records i and j share a ClusterID if and only if they are connected by
// some chain of matched pairs, regardless of the order in which the pairs
// were discovered.
type ClusterAssignment []ClusterID

// ClusterCount returns the number of distinct clusters, not counting
// unassigned singletons.
func (a ClusterAssignment) ClusterCount() int {
	maxID := Unassigned
	for _, id := range a {
		if id > maxID {
			maxID = id
		}
	}
	return int(maxID) + 1
}

// Singletons returns the number of records left unassigned.
func (a ClusterAssignment) Singletons() int {
	n := 0
	for _, id := range a {
		if id == Unassigned {
			n++
		}
	}
	return n
}
