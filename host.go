package netsim

import "github.com/abasso/netsim/internal/optional"

//
// Host device
//

// Host is an endpoint device with exactly one attached [Link] and a set
// of [Flow]s it is either sending or receiving.
type Host struct {
	id   DeviceID
	link *Link

	// flows is keyed by flow id for both sender- and receiver-side
	// flows, matching the reference device's single flows map.
	flows map[FlowID]*Flow

	ctl *Controller
}

// NewHost constructs a host attached to a single link.
func NewHost(id DeviceID, link *Link) *Host {
	return &Host{
		id:    id,
		link:  link,
		flows: make(map[FlowID]*Flow),
	}
}

// DeviceID returns the host's identifier.
func (h *Host) DeviceID() DeviceID { return h.id }

// Links returns the host's single attached link, keyed by link id.
func (h *Host) Links() map[LinkID]*Link {
	return map[LinkID]*Link{h.link.ID(): h.link}
}

// Link returns the host's single attached link.
func (h *Host) Link() *Link {
	return h.link
}

// AddFlow registers a flow under the host, either because the host is
// its sender (at topology build time) or because a first packet for an
// unseen flow just arrived (on the receiver side).
func (h *Host) AddFlow(flow *Flow) {
	h.flows[flow.ID()] = flow
}

// SendNextPacket is the periodic sender-side pump: if the flow's window
// has room and the outbound link buffer isn't full, construct and queue
// one data packet, then reschedule itself one packet-transmission-time
// later. A finished finite flow is unregistered from the controller and
// stops rescheduling itself.
func (h *Host) SendNextPacket(flow *Flow) {
	if !h.link.BufferIsFull(h.id, DataPacketSize) && !flow.WindowIsFull() {
		if packet := flow.ConstructNextDataPacket(); packet != nil {
			h.link.QueuePacket(h.id, packet)
			if !flow.IsInfinite() && flow.RemainingBytes() <= 0 {
				h.ctl.removeFlow(flow.ID())
				return
			}
		}
	}
	t := h.ctl.now + DataPacketSize/h.link.throughput
	h.ctl.scheduleEvent(&event{
		time: t,
		kind: eventSendNextPacket,
		flow: flow,
	})
}

// ReceivePacket accepts a TCP packet arriving on sendingLink: an ack
// updates the sender-side flow state, a data packet updates the
// receiver-side flow state and triggers an ack in reply.
func (h *Host) ReceivePacket(sendingLink *Link, packet *Packet) {
	if !packet.IsTCP() {
		panic("netsim: host received a non-TCP packet")
	}

	flow, ok := h.flows[packet.FlowID]
	if !ok {
		// A receiver-side flow exists purely to track reassembly state
		// and emit acks; it never sends data, so its byte budget is
		// irrelevant.
		flow = NewFlow(h.ctl, packet.SrcID, h.id, packet.FlowID, "reno", optional.Some(0))
		h.AddFlow(flow)
	}

	if packet.IsTCPAck() {
		flow.ReceiveAck(packet)
		return
	}

	flow.ReceiveData(packet)
	ack := flow.ConstructNextAckPacket(packet.DataTime)
	if !h.link.QueuePacket(h.id, ack) {
		panic("netsim: ack buffer overflow")
	}
}
