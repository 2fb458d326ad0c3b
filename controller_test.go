package netsim

import (
	"math"
	"testing"

	"github.com/abasso/netsim/internal"
	"github.com/abasso/netsim/internal/optional"
)

func TestControllerRunsFiniteRenoFlowToCompletion(t *testing.T) {
	ctl := NewController(1.0)
	ctl.SetLogger(&internal.NullLogger{})

	link := NewLink("L1", 1e6, 0.01, 64*1024)
	ctl.AddLink(link)
	a := NewHost("A", link)
	b := NewHost("B", link)
	ctl.AddHost(a)
	ctl.AddHost(b)
	ctl.BindLink("L1", "A", "B")

	const numBytes = 20 * 1024
	flow := NewFlow(ctl, "A", "B", "f0", "reno", optional.Some(numBytes))
	ctl.AddFlow(flow, 0)

	ctl.Run(math.Inf(1))

	if len(ctl.flows) != 0 {
		t.Fatalf("expected the finite flow to be removed, %d flows remain", len(ctl.flows))
	}

	receiverFlow, ok := b.flows["f0"]
	if !ok {
		t.Fatal("expected B to have a receiver-side flow for f0")
	}
	wantMax := int64(numBytes/DataPacketSize - 1)
	if receiverFlow.maxContiguousSequenceNumber != wantMax {
		t.Fatalf("maxContiguousSequenceNumber = %v, want %v", receiverFlow.maxContiguousSequenceNumber, wantMax)
	}
}

func TestControllerRunStopsAtDeadline(t *testing.T) {
	ctl := NewController(1.0)
	ctl.SetLogger(&internal.NullLogger{})

	link := NewLink("L1", 1e6, 0.01, 64*1024)
	ctl.AddLink(link)
	a := NewHost("A", link)
	b := NewHost("B", link)
	ctl.AddHost(a)
	ctl.AddHost(b)
	ctl.BindLink("L1", "A", "B")

	flow := NewFlow(ctl, "A", "B", "f0", "reno", optional.None[int]()) // infinite flow
	ctl.AddFlow(flow, 0)

	ctl.Run(0.01)

	// One event dispatched at or after the deadline is expected (the run
	// loop checks the bound between dispatches, not before each one), but
	// the clock should not run away arbitrarily far past it.
	if ctl.now > 0.01+DataPacketSize/1e6 {
		t.Fatalf("clock advanced too far past the deadline: now=%v", ctl.now)
	}
	if len(ctl.flows) == 0 {
		t.Fatal("an infinite flow must not be auto-removed by hitting the deadline")
	}
}

func TestControllerVirtualTimeIsMonotone(t *testing.T) {
	ctl := NewController(1.0)
	ctl.SetLogger(&internal.NullLogger{})

	link := NewLink("L1", 1e6, 0.01, 64*1024)
	ctl.AddLink(link)
	a := NewHost("A", link)
	b := NewHost("B", link)
	ctl.AddHost(a)
	ctl.AddHost(b)
	ctl.BindLink("L1", "A", "B")

	flow := NewFlow(ctl, "A", "B", "f0", "reno", optional.Some(4*1024))
	ctl.AddFlow(flow, 0)

	last := -1.0
	for !ctl.sched.isEmpty() && len(ctl.flows) > 0 {
		ev := ctl.sched.pop()
		if ev.time < last {
			t.Fatalf("virtual time went backwards: %v after %v", ev.time, last)
		}
		last = ev.time
		ctl.now = ev.time
		ctl.dispatch(ev)
	}
}
