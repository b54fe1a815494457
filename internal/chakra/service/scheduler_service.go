package service

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/watch"

	chakraContext "github.com/romilbhardwaj/chakra/internal/chakra/context"
	"github.com/romilbhardwaj/chakra/internal/chakra/metrics"
	"github.com/romilbhardwaj/chakra/internal/chakra/policy"
	"github.com/romilbhardwaj/chakra/internal/chakra/util"
)

const (
	clusterStatePollInterval = time.Second
	watchRetryAttempts       = 5
	watchRetryDelay          = time.Second
)

var (
	eventsReceivedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ChakraMetricsPrefix + "pod_events_received_total",
		Help: "Number of pod events received from the watch stream",
	})
	podsBoundCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ChakraMetricsPrefix + "pods_bound_total",
		Help: "Number of pods successfully bound to a node",
	})
	placementFailuresCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ChakraMetricsPrefix + "placement_failures_total",
		Help: "Number of placement attempts that found no node and were re-queued",
	})
	bindFailuresCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: metrics.ChakraMetricsPrefix + "bind_failures_total",
		Help: "Number of binding requests rejected by the cluster API",
	})
)

// SchedulerService consumes pod events for pods requesting this scheduler
// and commits placement decisions through the cluster API. Pods that cannot
// be placed yet wait in a FIFO queue which is re-attempted in full on every
// received event.
type SchedulerService struct {
	clusterContext chakraContext.ClusterContext
	stateProvider  ClusterStateProvider
	policy         policy.Policy
	schedulerName  string
	waitQueue      *WaitQueue
}

func NewSchedulerService(
	clusterContext chakraContext.ClusterContext,
	stateProvider ClusterStateProvider,
	allocationPolicy policy.Policy,
	schedulerName string,
) *SchedulerService {
	return &SchedulerService{
		clusterContext: clusterContext,
		stateProvider:  stateProvider,
		policy:         allocationPolicy,
		schedulerName:  schedulerName,
		waitQueue:      NewWaitQueue(),
	}
}

// Run blocks on the pod event stream until the context is cancelled,
// re-establishing the watch whenever the stream closes.
func (s *SchedulerService) Run(ctx context.Context) error {
	if err := s.waitForClusterState(ctx); err != nil {
		return err
	}
	log.Infof("Cluster state populated, starting scheduler %s with policy %s", s.schedulerName, s.policy.Name())

	for {
		watcher, err := s.openPodWatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.consumeEvents(ctx, watcher)
		if ctx.Err() != nil {
			return nil
		}
		log.Info("Pod event stream closed, re-establishing watch")
	}
}

// No scheduling attempts happen before the first cluster state snapshot is
// available.
func (s *SchedulerService) waitForClusterState(ctx context.Context) error {
	for s.stateProvider.GetClusterState() == nil {
		log.Info("Waiting for cluster state to be populated")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(clusterStatePollInterval):
		}
	}
	return nil
}

func (s *SchedulerService) openPodWatch(ctx context.Context) (watch.Interface, error) {
	var watcher watch.Interface
	err := retry.Do(
		func() error {
			var watchErr error
			watcher, watchErr = s.clusterContext.WatchPods(ctx)
			return watchErr
		},
		retry.Attempts(watchRetryAttempts), retry.Delay(watchRetryDelay), retry.LastErrorOnly(true),
	)
	return watcher, err
}

func (s *SchedulerService) consumeEvents(ctx context.Context, watcher watch.Interface) {
	defer watcher.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.ResultChan():
			if !ok {
				return
			}
			s.handleEvent(ctx, event)
		}
	}
}

func (s *SchedulerService) handleEvent(ctx context.Context, event watch.Event) {
	eventsReceivedCounter.Inc()

	if pod, ok := event.Object.(*v1.Pod); ok {
		if s.isEligible(pod) {
			log.Infof("Received pod %s (event %s), adding to wait queue", pod.Name, event.Type)
			s.waitQueue.Enqueue(pod)
		} else {
			log.Infof("Ignoring event %s for pod %s", event.Type, pod.Name)
		}
	} else {
		log.Warnf("Received non-pod object in event of type %s", event.Type)
	}

	// Any event implies cluster API activity, so the whole backlog is worth
	// re-attempting even if this particular event was discarded.
	s.drainWaitQueue(ctx)
}

func (s *SchedulerService) isEligible(pod *v1.Pod) bool {
	return util.IsPending(pod) &&
		!util.HasNodeAssigned(pod) &&
		util.IsManagedBySchedulerPod(pod, s.schedulerName)
}

// drainWaitQueue processes exactly the entries present at pass start. Pods
// re-queued by failed attempts land at the tail and are deferred to the next
// pass, so a pass never grows under its own failures.
func (s *SchedulerService) drainWaitQueue(ctx context.Context) {
	numWaiting := s.waitQueue.Len()
	log.Infof("Current wait queue length = %d", numWaiting)
	for i := 0; i < numWaiting; i++ {
		pod := s.waitQueue.Dequeue()
		if err := s.schedulePod(ctx, pod); err != nil {
			log.Errorf("Unable to allocate %s: %s, adding it back to the wait queue", pod.Name, err)
			placementFailuresCounter.Inc()
			s.waitQueue.Enqueue(pod)
		}
	}
}

// schedulePod decides a node for the pod against the current snapshot and
// commits the decision. A policy failure is returned so the pod is re-queued;
// a rejected bind is only logged, as the pod stays unassigned and reappears
// via later watch events.
func (s *SchedulerService) schedulePod(ctx context.Context, pod *v1.Pod) error {
	clusterState := s.stateProvider.GetClusterState()

	nodeName, err := s.policy.GetAllocation(clusterState, pod)
	if err != nil {
		return err
	}

	log.Infof("Scheduling pod %s on node %s", pod.Name, nodeName)
	if err := s.clusterContext.BindPod(ctx, pod.Name, nodeName); err != nil {
		bindFailuresCounter.Inc()
		log.Warnf("Failed to bind pod %s to node %s: %s", pod.Name, nodeName, err)
		return nil
	}

	podsBoundCounter.Inc()
	return nil
}
