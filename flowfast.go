package netsim

//
// FAST-TCP congestion control — base-RTT-anchored window update.
// Grounded on the reference receive_ack_fast.
//

// receiveAckFast slides the window start forward on a new cumulative
// ack, then adjusts the window size by the ratio of the recorded base
// RTT to the just-observed RTT, converging the window toward
// baseRTT/RTT * window + alpha. The first ack anchors the base RTT.
func (f *Flow) receiveAckFast(ack *Packet) {
	ackNumber := ack.AckNum
	f.lastAckNumberReceived = ackNumber
	if ackNumber > f.windowStart {
		f.windowStart = ackNumber
	}

	rtt := f.ctl.now - ack.DataTime

	if f.fastBaseRTT == noBaseRTT {
		f.windowSize += fastAlpha
		f.fastBaseRTT = rtt
		return
	}

	f.windowSize = (f.fastBaseRTT/rtt)*f.windowSize + fastAlpha
	if f.fastBaseRTT > rtt {
		f.fastBaseRTT = rtt
	}
}
