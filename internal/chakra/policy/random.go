package policy

import (
	"math/rand"

	v1 "k8s.io/api/core/v1"

	"github.com/romilbhardwaj/chakra/internal/chakra/domain"
)

// RandomPolicy uniformly selects a node without checking whether it has
// enough resources. It exists as a trivial baseline and can over-schedule.
type RandomPolicy struct{}

func NewRandomPolicy() *RandomPolicy {
	return &RandomPolicy{}
}

func (p *RandomPolicy) Name() string {
	return RandomPolicyName
}

func (p *RandomPolicy) GetAllocation(clusterState domain.ClusterState, pod *v1.Pod) (string, error) {
	nodeNames := clusterState.NodeNames()
	if len(nodeNames) == 0 {
		return "", ErrNoNodesAvailable
	}
	return nodeNames[rand.Intn(len(nodeNames))], nil
}
