package resource

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestParseCpuQuantity(t *testing.T) {
	tests := map[string]float64{
		"500m": 0.5,
		"2":    2.0,
		"100m": 0.1,
		"2K":   2000,
		"4000": 4000,
	}

	for input, expected := range tests {
		result, err := ParseCpuQuantity(input)
		assert.NoError(t, err)
		assert.Equal(t, expected, result, "input %q", input)
	}
}

func TestParseMemoryQuantity(t *testing.T) {
	tests := map[string]float64{
		"128Mi":   128,
		"1Gi":     1024,
		"1024Ki":  1,
		"1Ti":     1024 * 1024,
		"1048576": 1,
	}

	for input, expected := range tests {
		result, err := ParseMemoryQuantity(input)
		assert.NoError(t, err)
		assert.Equal(t, expected, result, "input %q", input)
	}
}

func TestParseQuantity_ShouldFailWhenNoNumericComponent(t *testing.T) {
	_, err := ParseCpuQuantity("lots")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))

	_, err = ParseMemoryQuantity("")
	assert.True(t, errors.Is(err, ErrInvalidQuantity))
}

func TestVector_SubCanGoNegative(t *testing.T) {
	available := Vector{ResourceCpu: 1, ResourceMemory: 512, ResourceGpu: 0}
	available.Sub(Vector{ResourceCpu: 2})

	assert.Equal(t, float64(-1), available[ResourceCpu])
	assert.Equal(t, float64(512), available[ResourceMemory])
}

func TestVector_DeepCopyIsIndependent(t *testing.T) {
	original := Vector{ResourceCpu: 1}
	copied := original.DeepCopy()
	copied[ResourceCpu] = 5

	assert.Equal(t, float64(1), original[ResourceCpu])
}

func TestNodeAllocatable(t *testing.T) {
	node := &v1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: "node1"},
		Status: v1.NodeStatus{
			Allocatable: v1.ResourceList{
				v1.ResourceCPU:        resource.MustParse("3500m"),
				v1.ResourceMemory:     resource.MustParse("2Gi"),
				NvidiaGpuResourceName: resource.MustParse("2"),
			},
		},
	}

	allocatable, err := NodeAllocatable(node)
	assert.NoError(t, err)
	assert.Equal(t, Vector{ResourceCpu: 3.5, ResourceMemory: 2048, ResourceGpu: 2}, allocatable)
}

func TestNodeAllocatable_GpuDefaultsToZero(t *testing.T) {
	node := &v1.Node{
		Status: v1.NodeStatus{
			Allocatable: v1.ResourceList{
				v1.ResourceCPU:    resource.MustParse("2"),
				v1.ResourceMemory: resource.MustParse("128Mi"),
			},
		},
	}

	allocatable, err := NodeAllocatable(node)
	assert.NoError(t, err)
	assert.Equal(t, float64(0), allocatable[ResourceGpu])
}

func TestPodRequests_IsSparse(t *testing.T) {
	pod := makePod(v1.ResourceList{
		v1.ResourceCPU: resource.MustParse("500m"),
	})

	requests, err := PodRequests(pod)
	assert.NoError(t, err)
	assert.Equal(t, Vector{ResourceCpu: 0.5}, requests)
	_, hasMemory := requests[ResourceMemory]
	assert.False(t, hasMemory)
}

func TestPodRequests_SumsAcrossContainers(t *testing.T) {
	pod := makePod(v1.ResourceList{
		v1.ResourceCPU:    resource.MustParse("1"),
		v1.ResourceMemory: resource.MustParse("128Mi"),
	})
	pod.Spec.Containers = append(pod.Spec.Containers, v1.Container{
		Resources: v1.ResourceRequirements{
			Requests: v1.ResourceList{
				v1.ResourceCPU:        resource.MustParse("500m"),
				NvidiaGpuResourceName: resource.MustParse("1"),
			},
		},
	})

	requests, err := PodRequests(pod)
	assert.NoError(t, err)
	assert.Equal(t, Vector{ResourceCpu: 1.5, ResourceMemory: 128, ResourceGpu: 1}, requests)
}

func makePod(requests v1.ResourceList) *v1.Pod {
	return &v1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "pod1"},
		Spec: v1.PodSpec{
			Containers: []v1.Container{
				{
					Resources: v1.ResourceRequirements{
						Requests: requests,
					},
				},
			},
		},
	}
}
