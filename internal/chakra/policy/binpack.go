package policy

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"

	"github.com/romilbhardwaj/chakra/internal/chakra/domain"
	"github.com/romilbhardwaj/chakra/internal/common/resource"
)

// BestFitBinpackPolicy places each pod on the feasible node that would be
// left with the least spare capacity on the configured resource, packing
// pods as tightly as possible.
type BestFitBinpackPolicy struct {
	binpackingResource string
}

func NewBestFitBinpackPolicy(binpackingResource string) (*BestFitBinpackPolicy, error) {
	switch binpackingResource {
	case resource.ResourceCpu, resource.ResourceMemory, resource.ResourceGpu:
	default:
		return nil, errors.Errorf("invalid binpacking resource %q, must be one of %s, %s, %s",
			binpackingResource, resource.ResourceCpu, resource.ResourceMemory, resource.ResourceGpu)
	}
	return &BestFitBinpackPolicy{binpackingResource: binpackingResource}, nil
}

func (p *BestFitBinpackPolicy) Name() string {
	return BinpackPolicyName
}

func (p *BestFitBinpackPolicy) GetAllocation(clusterState domain.ClusterState, pod *v1.Pod) (string, error) {
	requests, err := resource.PodRequests(pod)
	if err != nil {
		return "", err
	}

	// The dimension packed on falls back to cpu for this decision when the
	// pod does not request the configured resource.
	binpackingResource := p.binpackingResource
	requested, ok := requests[binpackingResource]
	if !ok {
		requested, ok = requests[resource.ResourceCpu]
		if !ok {
			return "", ErrMissingCpuRequest
		}
		log.Warnf("Pod %s has no resource request for %s, falling back to cpu", pod.Name, binpackingResource)
		binpackingResource = resource.ResourceCpu
	}

	bestFitNode := ""
	bestFitRemaining := float64(0)
	for _, nodeName := range clusterState.NodeNames() {
		available := clusterState[nodeName]
		if !fits(available, requests) {
			continue
		}
		remaining := available[binpackingResource] - requested
		if remaining >= 0 && (bestFitNode == "" || remaining < bestFitRemaining) {
			bestFitNode = nodeName
			bestFitRemaining = remaining
		}
	}

	if bestFitNode == "" {
		return "", ErrNoFittingNode
	}
	return bestFitNode, nil
}

// fits reports whether every resource the pod explicitly requests is
// available in the requested quantity. Dimensions the pod does not request
// impose no constraint.
func fits(available resource.Vector, requests resource.Vector) bool {
	for resourceName, requested := range requests {
		if available[resourceName] < requested {
			return false
		}
	}
	return true
}
