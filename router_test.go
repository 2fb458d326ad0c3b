package netsim

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRouterDropsPacketToUnknownDestination(t *testing.T) {
	ctl := NewController(1.0)
	l1 := NewLink("L1", 1e6, 0.01, 64*1024)
	ctl.AddLink(l1)
	r := NewRouter("R1", map[LinkID]*Link{"L1": l1}, 0, nil)
	h := NewHost("A", l1)
	ctl.AddRouter(r)
	ctl.AddHost(h)
	ctl.BindLink("L1", "A", "R1")

	packet := NewDataPacket("A", "Nobody", DataPacketSize, 0, "f0", 0)
	r.ReceivePacket(l1, packet) // should silently drop: no routing entry

	if l1.NumPacketsInBuffers() != 0 {
		t.Fatal("no packet should have been queued for forwarding")
	}
}

func TestRouterForwardsAccordingToStaticRoutingTable(t *testing.T) {
	ctl := NewController(1.0)
	lAR := NewLink("L-AR", 1e6, 0.01, 64*1024)
	lRB := NewLink("L-RB", 1e6, 0.01, 64*1024)
	ctl.AddLink(lAR)
	ctl.AddLink(lRB)

	a := NewHost("A", lAR)
	b := NewHost("B", lRB)
	r := NewRouter("R1", map[LinkID]*Link{"L-AR": lAR, "L-RB": lRB}, 0, map[DeviceID]LinkID{"B": "L-RB"})
	ctl.AddHost(a)
	ctl.AddHost(b)
	ctl.AddRouter(r)
	ctl.BindLink("L-AR", "A", "R1")
	ctl.BindLink("L-RB", "R1", "B")

	packet := NewDataPacket("A", "B", DataPacketSize, 0, "f0", 0)
	r.ReceivePacket(lAR, packet)

	if lRB.NumPacketsInBuffers() != 1 {
		t.Fatalf("expected packet forwarded onto L-RB, buffers has %d", lRB.NumPacketsInBuffers())
	}
}

func TestRouterBellmanFordRoundAdvertisesAttachedHostCost(t *testing.T) {
	ctl := NewController(1.0)
	lAR1 := NewLink("L-A-R1", 1e6, 0.02, 64*1024)
	lR1R2 := NewLink("L-R1-R2", 1e6, 0.01, 64*1024)
	ctl.AddLink(lAR1)
	ctl.AddLink(lR1R2)

	a := NewHost("A", lAR1)
	r1 := NewRouter("R1", map[LinkID]*Link{"L-A-R1": lAR1, "L-R1-R2": lR1R2}, 0, nil)
	r2 := NewRouter("R2", map[LinkID]*Link{"L-R1-R2": lR1R2}, 0, map[DeviceID]LinkID{"A": "L-R1-R2"})
	ctl.AddHost(a)
	ctl.AddRouter(r1)
	ctl.AddRouter(r2)
	ctl.BindLink("L-A-R1", "A", "R1")
	ctl.BindLink("L-R1-R2", "R1", "R2")

	r1.routingTable["A"] = "L-A-R1"
	r1.costTable["A"] = math.Inf(1)

	r1.startBellmanFordRound()

	if lR1R2.NumPacketsInBuffers() != 1 {
		t.Fatalf("expected a routing-update queued toward R2, got %d packets", lR1R2.NumPacketsInBuffers())
	}
	if r1.costTable["A"] != 0 {
		t.Fatalf("R1's cost to A = %v, want 0 (idle link)", r1.costTable["A"])
	}
}

func TestRouterAcceptsRoutingUpdateForHostWithNoCostTableEntry(t *testing.T) {
	ctl := NewController(1.0)
	lR1R2 := NewLink("L-R1-R2", 1e6, 0.01, 64*1024)
	ctl.AddLink(lR1R2)

	// R2 has never heard of "A": no routing-table entry, and so no
	// cost-table entry either. An absent entry must be treated as +Inf,
	// not as Go's zero-value 0.0, or R2 would never accept its first
	// advertisement for a host it hasn't seen directly.
	r1 := NewRouter("R1", map[LinkID]*Link{"L-R1-R2": lR1R2}, 0, nil)
	r2 := NewRouter("R2", map[LinkID]*Link{"L-R1-R2": lR1R2}, 0, nil)
	ctl.AddRouter(r1)
	ctl.AddRouter(r2)
	ctl.BindLink("L-R1-R2", "R1", "R2")

	update := NewRoutingUpdatePacket("R1", "A", 0.02)
	r2.ReceivePacket(lR1R2, update)

	wantRoutingTable := map[DeviceID]LinkID{"A": "L-R1-R2"}
	if diff := cmp.Diff(wantRoutingTable, r2.routingTable); diff != "" {
		t.Fatalf("routingTable mismatch (-want +got):\n%s", diff)
	}
	wantCost := 0.02 + lR1R2.EstimateCost("R2")
	if r2.costTable["A"] != wantCost {
		t.Fatalf("costTable[A] = %v, want %v", r2.costTable["A"], wantCost)
	}
}
