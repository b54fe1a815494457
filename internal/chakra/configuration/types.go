package configuration

import (
	"time"
)

type ApplicationConfiguration struct {
	// Name pods must set in spec.schedulerName to be scheduled by this instance.
	SchedulerName string
	// Namespace pods are watched and bound in.
	Namespace   string
	MetricsPort uint16
}

type KubernetesConfiguration struct {
	// Path to a kubeconfig file. Empty means in-cluster configuration,
	// falling back to the default client configuration loading rules.
	KubeConfigPath string
}

type PolicyConfiguration struct {
	// One of the registered policy names (random, binpack).
	Name string
	// Resource the binpack policy packs on (cpu, memory or gpu).
	BinpackingResource string
}

type TaskConfiguration struct {
	ClusterStateUpdateInterval time.Duration
	ClusterStateLogInterval    time.Duration
}

type SchedulerConfiguration struct {
	Application ApplicationConfiguration
	Kubernetes  KubernetesConfiguration
	Policy      PolicyConfiguration
	Task        TaskConfiguration
}
