package parking

// WaitQueue holds vehicles that arrived while no compatible space was free.
// Strict FIFO: vehicles leave in arrival order. It is not safe for
// concurrent use; the engine serializes access under its own lock.
type WaitQueue struct {
	items []*Vehicle
}

func NewWaitQueue() *WaitQueue {
	return &WaitQueue{}
}

func (q *WaitQueue) Enqueue(v *Vehicle) {
	q.items = append(q.items, v)
}

func (q *WaitQueue) Dequeue() (*Vehicle, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	v := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return v, true
}

// PushFront returns a vehicle to the head after a failed placement so it
// keeps its position in line.
func (q *WaitQueue) PushFront(v *Vehicle) {
	q.items = append([]*Vehicle{v}, q.items...)
}

func (q *WaitQueue) Peek() (*Vehicle, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	return q.items[0], true
}

func (q *WaitQueue) Len() int {
	return len(q.items)
}
