package netsim

import "github.com/abasso/netsim/internal/optional"

//
// TCP Reno congestion control — SS1 -> SS2 -> CA, with fast recovery on
// triple duplicate acks. States and transition arithmetic are grounded
// on the reference Reno state machine.
//

func (f *Flow) receiveAckReno(ack *Packet) {
	ackNumber := ack.AckNum

	switch f.state {
	case flowRenoSlowStart1:
		f.handleRenoSS1(ackNumber)
	case flowRenoSlowStart2:
		f.handleRenoSS2(ackNumber)
	case flowRenoCongestionAvoidance:
		f.handleRenoCA(ackNumber)
	case flowRenoFastRecovery:
		f.handleRenoFR(ackNumber)
	}

	if ackNumber > f.tcpSequenceNumber {
		f.tcpSequenceNumber = ackNumber
		f.numAcksRepeated = 0
	}
	f.lastAckNumberReceived = ackNumber
}

// handleRenoSS1 implements slow start before the first loss: window
// grows by one packet per ack until a duplicate ack is observed, at
// which point ssthresh is set to half the current window and slow start
// resumes from window 1 (SS2).
func (f *Flow) handleRenoSS1(ackNumber uint64) {
	if f.lastAckNumberReceived == ackNumber {
		f.ssThreshold = f.windowSize / 2
		f.windowSize = 1.0
		f.state = flowRenoSlowStart2
		f.tcpSequenceNumber = ackNumber
	} else {
		f.windowSize++
	}
}

// handleRenoSS2 implements slow start after a timeout-driven reset:
// window grows by one packet per ack until it reaches ssthresh, at which
// point the flow enters congestion avoidance.
func (f *Flow) handleRenoSS2(ackNumber uint64) {
	if f.windowSize < f.ssThreshold {
		f.windowSize++
	} else {
		f.state = flowRenoCongestionAvoidance
	}
}

// handleDuplicateAck counts repeated acks of the same number; on the
// third (numAcksThreshold - 1 repeats past the first), it sets the
// window to half its value plus numAcksThreshold - 1, latches the
// sequence number to retransmit, and arms a self-cancelling retransmit
// timer.
func (f *Flow) handleDuplicateAck(ackNumber uint64) {
	if f.lastAckNumberReceived != ackNumber {
		return
	}
	f.numAcksRepeated++
	if f.numAcksRepeated != numAcksThreshold-1 {
		return
	}

	f.fastRecoverySequenceNumber = optional.Some(ackNumber)
	f.oldWindowSize = f.windowSize
	f.windowSize = f.windowSize/2 + float64(numAcksThreshold-1)
	f.state = flowRenoFastRecovery
	f.tcpSequenceNumber--

	transitionTime := f.ctl.now + fastRecoveryRetransmitDur
	retransmitSeq := f.tcpSequenceNumber
	ssThreshold := f.oldWindowSize / 2
	f.ctl.scheduleEvent(&event{
		time:     transitionTime,
		kind:     eventRetransmitCheck,
		flow:     f,
		seqNum:   retransmitSeq,
		ssthresh: ssThreshold,
	})
}

// handleRenoFR implements fast recovery: repeated duplicate acks inflate
// the window by one packet each; a fresh ack ends recovery, resetting
// the window to oldWindowSize/2.5 and returning to congestion avoidance.
func (f *Flow) handleRenoFR(ackNumber uint64) {
	switch {
	case f.lastAckNumberReceived == ackNumber:
		f.numAcksRepeated++
		if f.numAcksRepeated > numAcksThreshold-1 {
			f.windowSize++
		}
	case f.numAcksRepeated >= numAcksThreshold-1:
		f.windowSize = f.oldWindowSize / 2.5
		f.state = flowRenoCongestionAvoidance
		f.numAcksRepeated = 0
	}
}

// handleRenoCA implements additive increase: the window grows by
// 1/window per ack, then duplicate acks are counted toward entering fast
// recovery. Only this state feeds acks to handleDuplicateAck.
func (f *Flow) handleRenoCA(ackNumber uint64) {
	f.windowSize += 1.0 / f.windowSize
	f.handleDuplicateAck(ackNumber)
}
