package util

import (
	v1 "k8s.io/api/core/v1"
)

func IsPending(pod *v1.Pod) bool {
	return pod.Status.Phase == v1.PodPending
}

func HasNodeAssigned(pod *v1.Pod) bool {
	return pod.Spec.NodeName != ""
}

// IsActive reports whether the pod currently holds (or will shortly hold)
// the resources it requests on its node.
func IsActive(pod *v1.Pod) bool {
	return pod.Status.Phase == v1.PodRunning || pod.Status.Phase == v1.PodPending
}

// IsManagedBySchedulerPod reports whether the pod asked to be scheduled by the
// scheduler instance with the given name.
func IsManagedBySchedulerPod(pod *v1.Pod, schedulerName string) bool {
	return pod.Spec.SchedulerName == schedulerName
}

func FilterPods(pods []*v1.Pod, filter func(pod *v1.Pod) bool) []*v1.Pod {
	result := make([]*v1.Pod, 0, len(pods))
	for _, pod := range pods {
		if filter(pod) {
			result = append(result, pod)
		}
	}
	return result
}
