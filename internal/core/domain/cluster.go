package domain

// TopicCluster is a batch-local group of emails sharing a recurring
// named entity and subject category. Clusters are computed fresh per
// batch and discarded once their assignments are consumed.
type TopicCluster struct {
	Entity   string
	Category string
	Members  []int
	Size     int
}

// ClusterResult pairs the retained clusters with a per-email assignment
// array; -1 means the email goes to the main feed.
type ClusterResult struct {
	Clusters    []TopicCluster
	Assignments []int
}

// NoCluster marks an email that belongs to no retained cluster.
const NoCluster = -1

// EmptyClusterResult returns the all-unassigned result for a batch of n
// emails.
func EmptyClusterResult(n int) ClusterResult {
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = NoCluster
	}
	return ClusterResult{Assignments: assignments}
}
