package resource

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	v1 "k8s.io/api/core/v1"
)

const (
	ResourceCpu    = "cpu"
	ResourceMemory = "memory"
	ResourceGpu    = "gpu"

	// Resource name nodes and pods advertise GPUs under.
	NvidiaGpuResourceName = "nvidia.com/gpu"
)

// ErrInvalidQuantity is returned when a resource quantity string contains no numeric component.
var ErrInvalidQuantity = errors.New("resource quantity has no numeric component")

var cpuUnitMultipliers = map[string]float64{
	"m": 1e-3,
	"K": 1e3,
}

var memoryUnitMultipliers = map[string]float64{
	"Ki": 1 << 10,
	"Mi": 1 << 20,
	"Gi": 1 << 30,
	"Ti": 1 << 40,
}

var quantityValuePattern = regexp.MustCompile(`^[0-9]+`)

func splitQuantity(quantityStr string) (float64, string, error) {
	value := quantityValuePattern.FindString(quantityStr)
	if value == "" {
		return 0, "", errors.Wrapf(ErrInvalidQuantity, "cannot parse %q", quantityStr)
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, "", errors.Wrapf(ErrInvalidQuantity, "cannot parse %q", quantityStr)
	}
	return parsed, quantityStr[len(value):], nil
}

// ParseCpuQuantity converts a cpu quantity string to a core count, e.g. "500m" -> 0.5.
// Unrecognised unit suffixes are treated as whole cores.
func ParseCpuQuantity(quantityStr string) (float64, error) {
	value, unit, err := splitQuantity(quantityStr)
	if err != nil {
		return 0, err
	}
	if multiplier, ok := cpuUnitMultipliers[unit]; ok {
		return value * multiplier, nil
	}
	return value, nil
}

// ParseMemoryQuantity converts a memory quantity string to megabytes, e.g. "1Gi" -> 1024.
// Values without a recognised binary suffix are treated as raw bytes.
func ParseMemoryQuantity(quantityStr string) (float64, error) {
	value, unit, err := splitQuantity(quantityStr)
	if err != nil {
		return 0, err
	}
	multiplier, ok := memoryUnitMultipliers[unit]
	if !ok {
		multiplier = 1
	}
	return value * multiplier / (1 << 20), nil
}

// Vector holds normalised per-resource quantities: cpu in cores, memory in megabytes, gpu as a count.
type Vector map[string]float64

func (a Vector) Add(b Vector) {
	for k, v := range b {
		a[k] = a[k] + v
	}
}

func (a Vector) Sub(b Vector) {
	for k, v := range b {
		a[k] = a[k] - v
	}
}

func (a Vector) DeepCopy() Vector {
	result := make(Vector, len(a))
	for k, v := range a {
		result[k] = v
	}
	return result
}

func (a Vector) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// NodeAllocatable returns the node's allocatable capacity as a normalised vector.
// Nodes that do not advertise GPUs report gpu 0.
func NodeAllocatable(node *v1.Node) (Vector, error) {
	cpu, err := ParseCpuQuantity(node.Status.Allocatable.Cpu().String())
	if err != nil {
		return nil, errors.WithMessagef(err, "allocatable cpu of node %s", node.Name)
	}
	memory, err := ParseMemoryQuantity(node.Status.Allocatable.Memory().String())
	if err != nil {
		return nil, errors.WithMessagef(err, "allocatable memory of node %s", node.Name)
	}
	gpu := int64(0)
	if quantity, ok := node.Status.Allocatable[NvidiaGpuResourceName]; ok {
		gpu = quantity.Value()
	}
	return Vector{
		ResourceCpu:    cpu,
		ResourceMemory: memory,
		ResourceGpu:    float64(gpu),
	}, nil
}

// PodRequests returns the pod's explicit resource requests summed over all containers.
// The result is sparse: dimensions no container requests are absent.
func PodRequests(pod *v1.Pod) (Vector, error) {
	requests := Vector{}
	for _, container := range pod.Spec.Containers {
		if container.Resources.Requests == nil {
			continue
		}
		if quantity, ok := container.Resources.Requests[v1.ResourceCPU]; ok {
			cpu, err := ParseCpuQuantity(quantity.String())
			if err != nil {
				return nil, errors.WithMessagef(err, "cpu request of pod %s", pod.Name)
			}
			requests[ResourceCpu] = requests[ResourceCpu] + cpu
		}
		if quantity, ok := container.Resources.Requests[v1.ResourceMemory]; ok {
			memory, err := ParseMemoryQuantity(quantity.String())
			if err != nil {
				return nil, errors.WithMessagef(err, "memory request of pod %s", pod.Name)
			}
			requests[ResourceMemory] = requests[ResourceMemory] + memory
		}
		if quantity, ok := container.Resources.Requests[NvidiaGpuResourceName]; ok {
			requests[ResourceGpu] = requests[ResourceGpu] + float64(quantity.Value())
		}
	}
	return requests, nil
}
