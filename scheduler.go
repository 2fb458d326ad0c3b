package netsim

import "container/heap"

//
// Event scheduler
//
// The original implementation dispatches scheduled callbacks as bound
// methods placed directly on a heap. Go has no closure-free equivalent
// that survives a switch-based dispatcher cleanly, so events here are
// tagged records: an eventKind plus the handful of fields each kind
// needs. Controller.Run pops the earliest event and switches on its
// kind.
//

// eventKind discriminates the payload carried by an [event].
type eventKind int

const (
	// eventSendNextPacket asks a flow to construct and send its next
	// window-permitting packet.
	eventSendNextPacket eventKind = iota

	// eventPacketOnWire marks a packet as having finished transmission
	// onto a link in a given direction, making it available to the
	// receiving endpoint after propagation delay.
	eventPacketOnWire

	// eventReceivePacket delivers a packet to a device.
	eventReceivePacket

	// eventBellmanFordRound fires a router's periodic routing-table
	// advertisement.
	eventBellmanFordRound

	// eventRetransmitCheck fires a flow's retransmission timer.
	eventRetransmitCheck
)

// linkDirection names one of the two directions of a [Link].
type linkDirection int

const (
	dirLeftToRight linkDirection = iota
	dirRightToLeft
)

// event is a tagged record for one scheduled occurrence. Only the fields
// relevant to Kind are meaningful; the rest are zero.
type event struct {
	time float64
	seq  uint64 // insertion sequence, breaks time ties in FIFO order
	kind eventKind

	flow *Flow
	link *Link
	dir  linkDirection
	dev  Device
	from *Link
	pkt  *Packet

	router *Router

	// retransmit-check fields: the sequence number outstanding and the
	// ssthresh value to fall back on if the timer is still live.
	seqNum    uint64
	ssthresh  float64
}

// eventHeap implements container/heap.Interface over events ordered by
// (time, seq), matching the reference's FIFO tie-break on simultaneous
// events.
type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(*event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// scheduler is the virtual-time priority queue driving [Controller.Run].
type scheduler struct {
	heap    eventHeap
	nextSeq uint64
}

// newScheduler returns an empty scheduler.
func newScheduler() *scheduler {
	s := &scheduler{}
	heap.Init(&s.heap)
	return s
}

// schedule enqueues ev to fire at ev.time, assigning it the next
// insertion sequence for tie-breaking.
func (s *scheduler) schedule(ev *event) {
	ev.seq = s.nextSeq
	s.nextSeq++
	heap.Push(&s.heap, ev)
}

// pop removes and returns the earliest-scheduled event.
func (s *scheduler) pop() *event {
	return heap.Pop(&s.heap).(*event)
}

// isEmpty reports whether no events remain scheduled.
func (s *scheduler) isEmpty() bool {
	return s.heap.Len() == 0
}
