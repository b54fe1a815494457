package configuration

import (
	"fmt"
)

func ValidateSchedulerConfiguration(config SchedulerConfiguration) error {
	if config.Application.SchedulerName == "" {
		return fmt.Errorf("application.schedulerName must not be empty")
	}
	if config.Application.Namespace == "" {
		return fmt.Errorf("application.namespace must not be empty")
	}
	if config.Policy.Name == "" {
		return fmt.Errorf("policy.name must not be empty")
	}
	if config.Task.ClusterStateUpdateInterval <= 0 {
		return fmt.Errorf("task.clusterStateUpdateInterval must be positive, got %s", config.Task.ClusterStateUpdateInterval)
	}
	if config.Task.ClusterStateLogInterval <= 0 {
		return fmt.Errorf("task.clusterStateLogInterval must be positive, got %s", config.Task.ClusterStateLogInterval)
	}
	return nil
}
