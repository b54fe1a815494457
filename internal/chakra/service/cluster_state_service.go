package service

import (
	"context"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"

	chakraContext "github.com/romilbhardwaj/chakra/internal/chakra/context"
	"github.com/romilbhardwaj/chakra/internal/chakra/domain"
	"github.com/romilbhardwaj/chakra/internal/chakra/util"
	"github.com/romilbhardwaj/chakra/internal/common/resource"
)

const (
	listRetryAttempts = 3
	listRetryDelay    = 500 * time.Millisecond
	refreshTimeout    = 30 * time.Second
)

// ClusterStateProvider exposes the most recently published cluster state
// snapshot. Returns nil until the first refresh has completed.
type ClusterStateProvider interface {
	GetClusterState() domain.ClusterState
}

// ClusterStateService maintains a fresh view of per-node available resources.
// It is the sole writer of the snapshot; the scheduler loop is the sole
// reader. Snapshots are built wholesale and replaced in a single assignment,
// so readers always see one internally consistent polling cycle.
type ClusterStateService struct {
	clusterContext chakraContext.ClusterContext
	namespace      string
	logInterval    time.Duration

	mutex        sync.RWMutex
	currentState domain.ClusterState

	lastLogTime time.Time
}

func NewClusterStateService(
	clusterContext chakraContext.ClusterContext,
	namespace string,
	logInterval time.Duration,
) *ClusterStateService {
	return &ClusterStateService{
		clusterContext: clusterContext,
		namespace:      namespace,
		logInterval:    logInterval,
	}
}

func (s *ClusterStateService) GetClusterState() domain.ClusterState {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.currentState
}

func (s *ClusterStateService) publish(state domain.ClusterState) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.currentState = state
}

// PerformStateRefresh runs one full poll cycle: list nodes and pods, compute
// per-node availability and publish the result. Transport failures leave the
// previous snapshot standing; unparseable resource quantities terminate the
// process, as nothing sensible can be scheduled against them.
func (s *ClusterStateService) PerformStateRefresh() {
	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()

	state, err := s.fetchClusterState(ctx)
	if err != nil {
		if errors.Is(err, resource.ErrInvalidQuantity) {
			log.Fatalf("Failed to refresh cluster state: %s", err)
		}
		log.Errorf("Failed to refresh cluster state: %s", err)
		return
	}

	s.publish(state)

	if time.Since(s.lastLogTime) > s.logInterval {
		log.Infof("Cluster state: %v", state)
		s.lastLogTime = time.Now()
	}
}

func (s *ClusterStateService) fetchClusterState(ctx context.Context) (domain.ClusterState, error) {
	var nodes []*v1.Node
	err := retry.Do(
		func() error {
			var listErr error
			nodes, listErr = s.clusterContext.GetNodes(ctx)
			return listErr
		},
		retry.Attempts(listRetryAttempts), retry.Delay(listRetryDelay), retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list nodes")
	}

	var pods []*v1.Pod
	err = retry.Do(
		func() error {
			var listErr error
			pods, listErr = s.clusterContext.GetAllPods(ctx)
			return listErr
		},
		retry.Attempts(listRetryAttempts), retry.Delay(listRetryDelay), retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to list pods")
	}

	return computeAvailableResources(nodes, pods, s.namespace)
}

// computeAvailableResources returns allocatable minus requested for every
// node, counting requests of pods assigned to the node with phase Running or
// Pending in the scheduled namespace. Availability is deliberately not
// clamped at zero: a negative value marks an oversubscribed node, which
// feasibility checks must reject.
func computeAvailableResources(nodes []*v1.Node, pods []*v1.Pod, namespace string) (domain.ClusterState, error) {
	activePods := util.FilterPods(pods, func(pod *v1.Pod) bool {
		return pod.Namespace == namespace && util.HasNodeAssigned(pod) && util.IsActive(pod)
	})

	usedByNode := map[string]resource.Vector{}
	for _, pod := range activePods {
		requests, err := resource.PodRequests(pod)
		if err != nil {
			return nil, err
		}
		if _, ok := usedByNode[pod.Spec.NodeName]; !ok {
			usedByNode[pod.Spec.NodeName] = resource.Vector{}
		}
		usedByNode[pod.Spec.NodeName].Add(requests)
	}

	state := make(domain.ClusterState, len(nodes))
	for _, node := range nodes {
		allocatable, err := resource.NodeAllocatable(node)
		if err != nil {
			return nil, err
		}
		available := allocatable.DeepCopy()
		available.Sub(usedByNode[node.Name])
		state[node.Name] = available
	}
	return state, nil
}
