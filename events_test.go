package puenktlich

import (
	"testing"
	"time"
)

func TestErrorFanoutDeliversToAllSubscribers(t *testing.T) {
	t.Parallel()
	f := newErrorFanout()
	a, unsubA := f.subscribe(1)
	b, unsubB := f.subscribe(1)
	defer unsubA()
	defer unsubB()

	je := &JobError{Context: ExecutionContext{Data: "job"}}
	f.publish(je)

	for _, ch := range []<-chan *JobError{a, b} {
		select {
		case got := <-ch:
			if got != je {
				t.Fatalf("got %v, want %v", got, je)
			}
		case <-time.After(time.Second):
			t.Fatal("subscriber missed event")
		}
	}
}

func TestErrorFanoutDropsWhenBufferFull(t *testing.T) {
	t.Parallel()
	f := newErrorFanout()
	ch, unsub := f.subscribe(1)
	defer unsub()

	f.publish(&JobError{Context: ExecutionContext{Data: 1}})
	f.publish(&JobError{Context: ExecutionContext{Data: 2}})

	got := <-ch
	if got.Context.Data != 1 {
		t.Fatalf("first event = %v, want 1", got.Context.Data)
	}
	select {
	case extra := <-ch:
		t.Fatalf("overflow event delivered: %v", extra.Context.Data)
	default:
	}
}

func TestErrorFanoutUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	f := newErrorFanout()
	ch, unsub := f.subscribe(1)
	unsub()
	unsub() // second call is a no-op

	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}
	// Publishing after unsubscribe must not panic.
	f.publish(&JobError{})
}

func TestErrorFanoutClose(t *testing.T) {
	t.Parallel()
	f := newErrorFanout()
	ch, _ := f.subscribe(1)
	f.close()

	if _, open := <-ch; open {
		t.Fatal("channel still open after close")
	}
	late, _ := f.subscribe(1)
	if _, open := <-late; open {
		t.Fatal("subscription after close returned an open channel")
	}
}
