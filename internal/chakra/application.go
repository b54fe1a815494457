package chakra

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	log "github.com/sirupsen/logrus"

	"github.com/romilbhardwaj/chakra/internal/chakra/cluster"
	"github.com/romilbhardwaj/chakra/internal/chakra/configuration"
	chakraContext "github.com/romilbhardwaj/chakra/internal/chakra/context"
	"github.com/romilbhardwaj/chakra/internal/chakra/metrics"
	"github.com/romilbhardwaj/chakra/internal/chakra/policy"
	"github.com/romilbhardwaj/chakra/internal/chakra/service"
)

// StartUp wires the scheduler together and starts its two loops: the cluster
// state refresh task and the watch-and-drain scheduling loop. It returns a
// shutdown function and a WaitGroup that is released once shutdown completes.
func StartUp(ctx context.Context, config configuration.SchedulerConfiguration) (func(), *sync.WaitGroup, error) {
	if err := configuration.ValidateSchedulerConfiguration(config); err != nil {
		return nil, nil, errors.WithMessage(err, "invalid configuration")
	}

	allocationPolicy, err := policy.CreatePolicy(config.Policy)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("Using policy %s", allocationPolicy.Name())

	clientProvider, err := cluster.NewKubernetesClientProvider(&config.Kubernetes)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "failed to connect to kubernetes")
	}

	clusterContext := chakraContext.NewClusterContext(config.Application.Namespace, clientProvider)

	clusterStateService := service.NewClusterStateService(
		clusterContext,
		config.Application.Namespace,
		config.Task.ClusterStateLogInterval)

	schedulerService := service.NewSchedulerService(
		clusterContext,
		clusterStateService,
		allocationPolicy,
		config.Application.SchedulerName)

	wg := &sync.WaitGroup{}
	wg.Add(1)

	tasks := make([]chan bool, 0)
	tasks = append(tasks, scheduleBackgroundTask(clusterStateService.PerformStateRefresh, config.Task.ClusterStateUpdateInterval, "cluster_state_refresh", wg))

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := schedulerService.Run(ctx); err != nil {
			log.Errorf("Scheduler loop stopped: %s", err)
		}
	}()

	return func() {
		stopTasks(tasks)
		wg.Done()
		if waitForShutdownCompletion(wg, 2*time.Second) {
			log.Warnf("Graceful shutdown timed out")
		}
		log.Infof("Shutdown complete")
	}, wg, nil
}

func scheduleBackgroundTask(task func(), interval time.Duration, metricName string, wg *sync.WaitGroup) chan bool {
	stop := make(chan bool)

	var taskDurationHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    metrics.ChakraMetricsPrefix + metricName + "_latency_seconds",
			Help:    "Background loop " + metricName + " latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		})

	wg.Add(1)
	go func() {
		start := time.Now()
		task()
		taskDurationHistogram.Observe(time.Since(start).Seconds())

		for {
			select {
			case <-time.After(interval):
			case <-stop:
				wg.Done()
				return
			}
			innerStart := time.Now()
			task()
			taskDurationHistogram.Observe(time.Since(innerStart).Seconds())
		}
	}()

	return stop
}

func waitForShutdownCompletion(wg *sync.WaitGroup, timeout time.Duration) bool {
	c := make(chan struct{})
	go func() {
		defer close(c)
		wg.Wait()
	}()
	select {
	case <-c:
		return false // completed normally
	case <-time.After(timeout):
		return true // timed out
	}
}

func stopTasks(taskChannels []chan bool) {
	for _, channel := range taskChannels {
		channel <- true
	}
}
