package service

import (
	v1 "k8s.io/api/core/v1"
)

// WaitQueue holds pods awaiting a node in FIFO order. It is owned and
// mutated exclusively by the scheduler loop's goroutine and is therefore
// not safe for concurrent use.
type WaitQueue struct {
	items []*v1.Pod
}

func NewWaitQueue() *WaitQueue {
	return &WaitQueue{}
}

func (q *WaitQueue) Enqueue(pod *v1.Pod) {
	q.items = append(q.items, pod)
}

// Dequeue removes and returns the oldest pod, or nil if the queue is empty.
func (q *WaitQueue) Dequeue() *v1.Pod {
	if len(q.items) == 0 {
		return nil
	}
	pod := q.items[0]
	q.items = q.items[1:]
	return pod
}

func (q *WaitQueue) Len() int {
	return len(q.items)
}
