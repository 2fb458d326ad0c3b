package netsim

import (
	"math"

	"github.com/abasso/netsim/internal/optional"
)

//
// Flow — shared state for a TCP transfer between two hosts.
//
// Congestion-control-specific behavior (receive-ack handling) lives in
// flowreno.go and flowfast.go; this file holds the state, accounting and
// packet construction common to both algorithms, grounded on the
// reference Flow.
//

// flowState names a TCP Reno sub-state. FAST-TCP doesn't use these; a
// FAST flow stays in flowFast for its whole lifetime.
type flowState int

const (
	flowRenoSlowStart1 flowState = iota
	flowRenoSlowStart2
	flowRenoFastRecovery
	flowRenoCongestionAvoidance
	flowFast
)

const (
	numAcksThreshold          = 3
	renoSlowStartTimeout      = 1.0
	fastAlpha                 = 0.5
	fastRecoveryRetransmitDur = 0.5
	noBaseRTT                 = -1.0
)

// Flow represents one data transfer from a source host to a destination
// host, tracked on both the sending and the receiving side under the
// same type: a receiver-side Flow only ever sees ReceiveData and
// ConstructNextAckPacket.
type Flow struct {
	ctl    *Controller
	srcID  DeviceID
	dstID  DeviceID
	id     FlowID
	tcp    string // "reno" or "fast"
	state  flowState

	numRemainingBytes optional.Value[int] // empty means infinite
	sentBytes         int

	tcpSequenceNumber     uint64
	lastAckNumberReceived uint64
	numAcksRepeated       int
	windowSize            float64
	windowStart           uint64
	ssThreshold           float64

	// fastRecoverySequenceNumber, when set, is the sequence number the
	// next constructed data packet must retransmit instead of advancing
	// tcpSequenceNumber.
	fastRecoverySequenceNumber optional.Value[uint64]

	// oldWindowSize is the window size saved when entering fast
	// recovery, used to compute the post-recovery window.
	oldWindowSize float64

	// FAST-TCP state.
	fastBaseRTT float64

	// maxContiguousSequenceNumber is the highest sequence number n such
	// that every data packet with sequence <= n has been received.
	maxContiguousSequenceNumber int64
	uncountedSequenceNumbers    map[uint64]bool
}

// NewFlow constructs a flow. numBytes empty denotes an infinite flow.
func NewFlow(ctl *Controller, srcID, dstID DeviceID, id FlowID, tcp string, numBytes optional.Value[int]) *Flow {
	var state flowState
	switch tcp {
	case "reno":
		state = flowRenoSlowStart1
	case "fast":
		state = flowFast
	default:
		panic("netsim: unsupported congestion control algorithm " + tcp)
	}
	return &Flow{
		ctl:                         ctl,
		srcID:                       srcID,
		dstID:                       dstID,
		id:                          id,
		tcp:                         tcp,
		state:                       state,
		numRemainingBytes:           numBytes,
		windowSize:                  1.0,
		ssThreshold:                 math.Inf(1),
		fastRecoverySequenceNumber:  optional.None[uint64](),
		fastBaseRTT:                 noBaseRTT,
		maxContiguousSequenceNumber: -1,
		uncountedSequenceNumbers:    make(map[uint64]bool),
	}
}

// ID returns the flow's identifier.
func (f *Flow) ID() FlowID { return f.id }

// SrcID returns the flow's source host id.
func (f *Flow) SrcID() DeviceID { return f.srcID }

// DstID returns the flow's destination host id.
func (f *Flow) DstID() DeviceID { return f.dstID }

// IsInfinite reports whether the flow has no byte budget and should
// continue sending indefinitely.
func (f *Flow) IsInfinite() bool {
	return f.numRemainingBytes.Empty()
}

// RemainingBytes returns the number of bytes left to send. Calling it on
// an infinite flow panics; callers must check [Flow.IsInfinite] first.
func (f *Flow) RemainingBytes() int {
	return f.numRemainingBytes.Unwrap()
}

// ReceiveData folds a newly received data packet's sequence number into
// the contiguous-delivery accounting used to build cumulative acks.
func (f *Flow) ReceiveData(packet *Packet) {
	f.ctl.logSample("flow-rate", string(f.id), float64(packet.Size), aggMbps)

	f.uncountedSequenceNumbers[packet.SeqNum] = true
	for f.uncountedSequenceNumbers[uint64(f.maxContiguousSequenceNumber+1)] {
		f.maxContiguousSequenceNumber++
		delete(f.uncountedSequenceNumbers, uint64(f.maxContiguousSequenceNumber))
	}
}

// ConstructNextAckPacket builds the cumulative ack for all contiguously
// received data, referencing dataPackTime (the acked packet's creation
// time) so the sender can compute an RTT sample.
func (f *Flow) ConstructNextAckPacket(dataPackTime float64) *Packet {
	ackNum := uint64(f.maxContiguousSequenceNumber + 1)
	return NewAckPacket(f.dstID, f.srcID, ackNum, f.id, dataPackTime, f.ctl.now)
}

// WindowIsFull reports whether the send window currently admits no more
// outstanding data.
func (f *Flow) WindowIsFull() bool {
	if f.tcp == "reno" {
		return float64(f.lastAckNumberReceived)+f.windowSize <= float64(f.tcpSequenceNumber)
	}
	return float64(f.windowStart)+f.windowSize <= float64(f.tcpSequenceNumber)
}

// ConstructNextDataPacket builds the next outbound data packet per the
// flow's congestion control algorithm, or nil if there is nothing left
// to send.
func (f *Flow) ConstructNextDataPacket() *Packet {
	if !f.IsInfinite() && f.RemainingBytes() <= 0 {
		return nil
	}

	userBytes := DataPacketSize
	if !f.IsInfinite() {
		if remaining := f.RemainingBytes(); remaining < userBytes {
			userBytes = remaining
		}
		f.numRemainingBytes = optional.Some(f.RemainingBytes() - userBytes)
	}
	f.sentBytes += userBytes

	var seqNum uint64
	if !f.fastRecoverySequenceNumber.Empty() {
		seqNum = f.fastRecoverySequenceNumber.Unwrap()
		f.fastRecoverySequenceNumber = optional.None[uint64]()
	} else {
		seqNum = f.tcpSequenceNumber
		f.tcpSequenceNumber++
	}

	return NewDataPacket(f.srcID, f.dstID, userBytes, seqNum, f.id, f.ctl.now)
}

// ReceiveAck dispatches an incoming ack to the Reno or FAST state
// machine, then emits a window-size sample.
func (f *Flow) ReceiveAck(ack *Packet) {
	switch f.tcp {
	case "reno":
		f.receiveAckReno(ack)
	case "fast":
		f.receiveAckFast(ack)
	}
	f.ctl.logSample("window-size", string(f.id), f.windowSize, aggMean)
}

// transitionToRetransmit is the fast-recovery retransmit timer: it only
// fires if the saved sequence number is still ahead of the last ack
// received, i.e. fast recovery never completed on its own.
func (f *Flow) transitionToRetransmit(nextSeqNum uint64, ssThreshold float64) {
	if nextSeqNum > f.lastAckNumberReceived {
		f.ssThreshold = ssThreshold
		f.windowSize = 1.0
		f.state = flowRenoSlowStart2
		f.tcpSequenceNumber = f.lastAckNumberReceived
		f.numAcksRepeated = 0
	}
}
