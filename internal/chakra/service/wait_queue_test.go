package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func TestWaitQueue_PreservesFifoOrder(t *testing.T) {
	queue := NewWaitQueue()
	queue.Enqueue(queuedPod("pod1"))
	queue.Enqueue(queuedPod("pod2"))
	queue.Enqueue(queuedPod("pod3"))

	assert.Equal(t, 3, queue.Len())
	assert.Equal(t, "pod1", queue.Dequeue().Name)
	assert.Equal(t, "pod2", queue.Dequeue().Name)
	assert.Equal(t, "pod3", queue.Dequeue().Name)
	assert.Equal(t, 0, queue.Len())
}

func TestWaitQueue_RequeuedPodsMoveToTail(t *testing.T) {
	queue := NewWaitQueue()
	queue.Enqueue(queuedPod("pod1"))
	queue.Enqueue(queuedPod("pod2"))

	requeued := queue.Dequeue()
	queue.Enqueue(requeued)

	assert.Equal(t, "pod2", queue.Dequeue().Name)
	assert.Equal(t, "pod1", queue.Dequeue().Name)
}

func TestWaitQueue_DequeueOnEmptyReturnsNil(t *testing.T) {
	queue := NewWaitQueue()
	assert.Nil(t, queue.Dequeue())
}

func queuedPod(name string) *v1.Pod {
	return &v1.Pod{ObjectMeta: metav1.ObjectMeta{Name: name}}
}
