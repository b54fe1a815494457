package policy

import (
	"github.com/pkg/errors"
	v1 "k8s.io/api/core/v1"

	"github.com/romilbhardwaj/chakra/internal/chakra/configuration"
	"github.com/romilbhardwaj/chakra/internal/chakra/domain"
)

const (
	RandomPolicyName  = "random"
	BinpackPolicyName = "binpack"
)

var (
	// ErrNoNodesAvailable is returned when the cluster state snapshot contains no nodes.
	ErrNoNodesAvailable = errors.New("no nodes in cluster state")
	// ErrNoFittingNode is returned when no node passes the feasibility check.
	ErrNoFittingNode = errors.New("no node has enough resources to fit the pod")
	// ErrMissingCpuRequest is returned when the pod requests neither the
	// configured binpacking resource nor cpu.
	ErrMissingCpuRequest = errors.New("pod does not have a resource request for cpu")
)

// Policy decides which node a pod should run on given a cluster state snapshot.
// Implementations are read-only after construction and shared across attempts.
type Policy interface {
	Name() string
	GetAllocation(clusterState domain.ClusterState, pod *v1.Pod) (string, error)
}

// CreatePolicy builds the policy named in the configuration. Unknown policy
// names and invalid policy arguments are construction-time errors; the
// process should not start on them.
func CreatePolicy(config configuration.PolicyConfiguration) (Policy, error) {
	switch config.Name {
	case RandomPolicyName:
		return NewRandomPolicy(), nil
	case BinpackPolicyName:
		return NewBestFitBinpackPolicy(config.BinpackingResource)
	default:
		return nil, errors.Errorf("policy %q not supported, currently supported: %s, %s", config.Name, RandomPolicyName, BinpackPolicyName)
	}
}
