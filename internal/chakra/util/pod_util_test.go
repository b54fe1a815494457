package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	v1 "k8s.io/api/core/v1"
)

func TestIsPending_ShouldReturnTrueWhenPodInPendingPhase(t *testing.T) {
	pod := v1.Pod{
		Status: v1.PodStatus{
			Phase: v1.PodPending,
		},
	}

	assert.True(t, IsPending(&pod))
}

func TestIsPending_ShouldReturnFalseWhenPodInRunningPhase(t *testing.T) {
	pod := v1.Pod{
		Status: v1.PodStatus{
			Phase: v1.PodRunning,
		},
	}

	assert.False(t, IsPending(&pod))
}

func TestHasNodeAssigned(t *testing.T) {
	pod := v1.Pod{}
	assert.False(t, HasNodeAssigned(&pod))

	pod.Spec.NodeName = "node1"
	assert.True(t, HasNodeAssigned(&pod))
}

func TestIsActive_ShouldReturnTrueForRunningAndPendingPhases(t *testing.T) {
	for _, phase := range []v1.PodPhase{v1.PodRunning, v1.PodPending} {
		pod := v1.Pod{Status: v1.PodStatus{Phase: phase}}
		assert.True(t, IsActive(&pod))
	}
}

func TestIsActive_ShouldReturnFalseForTerminalPhases(t *testing.T) {
	for _, phase := range []v1.PodPhase{v1.PodSucceeded, v1.PodFailed} {
		pod := v1.Pod{Status: v1.PodStatus{Phase: phase}}
		assert.False(t, IsActive(&pod))
	}
}

func TestIsManagedBySchedulerPod(t *testing.T) {
	pod := v1.Pod{Spec: v1.PodSpec{SchedulerName: "chakra"}}

	assert.True(t, IsManagedBySchedulerPod(&pod, "chakra"))
	assert.False(t, IsManagedBySchedulerPod(&pod, "default-scheduler"))
}

func TestFilterPods(t *testing.T) {
	pending := &v1.Pod{Status: v1.PodStatus{Phase: v1.PodPending}}
	running := &v1.Pod{Status: v1.PodStatus{Phase: v1.PodRunning}}

	filtered := FilterPods([]*v1.Pod{pending, running}, IsPending)

	assert.Len(t, filtered, 1)
	assert.Equal(t, pending, filtered[0])
}
