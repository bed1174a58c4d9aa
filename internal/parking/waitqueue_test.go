package parking

import "testing"

func TestWaitQueueFIFO(t *testing.T) {
	q := NewWaitQueue()

	if q.Len() != 0 {
		t.Errorf("Expected empty queue, got length %d", q.Len())
	}
	if _, ok := q.Dequeue(); ok {
		t.Error("Expected dequeue on empty queue to fail")
	}
	if _, ok := q.Peek(); ok {
		t.Error("Expected peek on empty queue to fail")
	}

	q.Enqueue(testVehicle("v1", ClassCar))
	q.Enqueue(testVehicle("v2", ClassSUV))
	q.Enqueue(testVehicle("v3", ClassTruck))

	if q.Len() != 3 {
		t.Errorf("Expected length 3, got %d", q.Len())
	}

	head, ok := q.Peek()
	if !ok || head.ID != "v1" {
		t.Errorf("Expected head v1, got %v", head)
	}

	for i, want := range []string{"v1", "v2", "v3"} {
		v, ok := q.Dequeue()
		if !ok {
			t.Fatalf("Expected dequeue %d to succeed", i)
		}
		if v.ID != want {
			t.Errorf("Expected %s at position %d, got %s", want, i, v.ID)
		}
	}
}

func TestWaitQueuePushFront(t *testing.T) {
	q := NewWaitQueue()
	q.Enqueue(testVehicle("v1", ClassCar))
	q.Enqueue(testVehicle("v2", ClassCar))

	head, _ := q.Dequeue()
	q.PushFront(head)

	next, ok := q.Peek()
	if !ok || next.ID != "v1" {
		t.Errorf("Expected v1 back at the head, got %v", next)
	}
	if q.Len() != 2 {
		t.Errorf("Expected length 2 after push back, got %d", q.Len())
	}
}
