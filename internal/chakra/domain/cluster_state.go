package domain

import (
	"sort"

	"github.com/romilbhardwaj/chakra/internal/common/resource"
)

// ClusterState maps node names to the resources still available on that node
// (allocatable minus requests of pods assigned to it). Snapshots are built
// wholesale by the cluster state service and never mutated after publication.
type ClusterState map[string]resource.Vector

// NodeNames returns the node names in sorted order, so callers iterating a
// snapshot see a deterministic order within a single call.
func (s ClusterState) NodeNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s ClusterState) DeepCopy() ClusterState {
	result := make(ClusterState, len(s))
	for name, resources := range s {
		result[name] = resources.DeepCopy()
	}
	return result
}
