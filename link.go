package netsim

//
// Link model — store-and-forward with finite per-direction buffers.
//
// Grounded directly on the reference Link: packets wait in a FIFO buffer
// until the previous packet in that direction has finished transmitting,
// then occupy the wire for size/throughput seconds before propagation
// delay carries them to the far end.
//

// Link connects two [Device]s and carries [Packet]s in both directions.
// Each direction has its own FIFO buffer, bounded by BufferSize bytes;
// packets that don't fit are dropped rather than blocking the sender.
type Link struct {
	id         LinkID
	left       Device
	right      Device
	throughput float64 // bytes per second
	delay      float64 // propagation delay, seconds
	bufferSize int     // bytes, per direction

	rightward []*Packet
	leftward  []*Packet

	// nextStart[dir] is the earliest time a packet queued in direction
	// dir may start transmitting, i.e. the cursor past the end of
	// whatever is already occupying the wire in that direction.
	nextStart [2]float64

	ctl *Controller
}

// NewLink constructs a link with the given id, throughput (bytes/sec),
// propagation delay (seconds), and per-direction buffer size (bytes).
// Endpoints are attached afterwards with [Controller.BindLink].
func NewLink(id LinkID, throughput, delay float64, bufferSize int) *Link {
	return &Link{
		id:         id,
		throughput: throughput,
		delay:      delay,
		bufferSize: bufferSize,
	}
}

// ID returns the link's identifier.
func (l *Link) ID() LinkID {
	return l.id
}

// Left returns the device bound to the link's left endpoint.
func (l *Link) Left() Device {
	return l.left
}

// Right returns the device bound to the link's right endpoint.
func (l *Link) Right() Device {
	return l.right
}

func (l *Link) directionOf(fromID DeviceID) (linkDirection, bool) {
	switch {
	case l.left != nil && fromID == l.left.DeviceID():
		return dirLeftToRight, true
	case l.right != nil && fromID == l.right.DeviceID():
		return dirRightToLeft, true
	default:
		return 0, false
	}
}

// OppositeDevice returns the device on the end of the link opposite
// fromID. Routers use this to learn which attached peers are hosts
// versus other routers.
func (l *Link) OppositeDevice(fromID DeviceID) Device {
	dir, ok := l.directionOf(fromID)
	if !ok {
		panic("netsim: unknown device id on link " + string(l.id))
	}
	if dir == dirLeftToRight {
		return l.right
	}
	return l.left
}

func bufferBytes(buf []*Packet) int {
	total := 0
	for _, p := range buf {
		total += p.Size
	}
	return total
}

// BufferIsFull reports whether a packet of the given size, submitted by
// fromID, would not fit in that direction's buffer.
func (l *Link) BufferIsFull(fromID DeviceID, size int) bool {
	dir, ok := l.directionOf(fromID)
	if !ok {
		panic("netsim: unknown device id on link " + string(l.id))
	}
	return l.bufferSize-bufferBytes(l.bufferOf(dir)) < size
}

func (l *Link) bufferOf(dir linkDirection) []*Packet {
	if dir == dirLeftToRight {
		return l.rightward
	}
	return l.leftward
}

// NumPacketsInBuffers returns the combined packet count of both
// direction buffers, used for the buffer-occupancy sample series.
func (l *Link) NumPacketsInBuffers() int {
	return len(l.rightward) + len(l.leftward)
}

// EstimateCost returns the estimated time, in seconds, to push a packet
// from fromID across this link right now: the remaining time before the
// wire in that same direction is free. Routers use it both as a
// directly-attached host's advertised cost and to translate a peer
// router's advertised cost into a local one.
func (l *Link) EstimateCost(fromID DeviceID) float64 {
	dir, ok := l.directionOf(fromID)
	if !ok {
		panic("netsim: unknown device id on link " + string(l.id))
	}
	cost := l.nextStart[dir] - l.ctl.now
	if cost < 0 {
		return 0
	}
	return cost
}

// QueuePacket admits packet into the buffer in the direction leaving
// fromID, scheduling an eventPacketOnWire for when its transmission
// completes. It returns false, dropping the packet, if the buffer has
// no room.
func (l *Link) QueuePacket(fromID DeviceID, packet *Packet) bool {
	now := l.ctl.now

	// Re-anchor both cursors to now in case the link has been idle;
	// this keeps EstimateCost meaningful after a long quiet period and
	// keeps the two directions' cursors coupled the way the reference
	// couples them below.
	if l.nextStart[dirLeftToRight] < now {
		l.nextStart[dirLeftToRight] = now
	}
	if l.nextStart[dirRightToLeft] < now {
		l.nextStart[dirRightToLeft] = now
	}

	l.ctl.logSample("buffer-occupancy", string(l.id), float64(l.NumPacketsInBuffers()), aggMean)

	dir, ok := l.directionOf(fromID)
	if !ok {
		panic("netsim: unknown device id on link " + string(l.id))
	}

	buf := l.bufferOf(dir)
	if l.bufferSize-bufferBytes(buf) < packet.Size {
		l.ctl.logSample("packet-loss", string(l.id), 1, aggSum)
		return false
	}
	l.ctl.logSample("packet-loss", string(l.id), 0, aggSum)

	transmissionTime := float64(packet.Size) / l.throughput
	if dir == dirLeftToRight {
		l.rightward = append(l.rightward, packet)
		l.nextStart[dirLeftToRight] += transmissionTime
		l.nextStart[dirRightToLeft] = l.nextStart[dirLeftToRight] + l.delay
		l.ctl.scheduleEvent(&event{
			time: l.nextStart[dirLeftToRight],
			kind: eventPacketOnWire,
			link: l,
			dir:  dirLeftToRight,
		})
	} else {
		l.leftward = append(l.leftward, packet)
		l.nextStart[dirRightToLeft] += transmissionTime
		l.nextStart[dirLeftToRight] = l.nextStart[dirRightToLeft] + l.delay
		l.ctl.scheduleEvent(&event{
			time: l.nextStart[dirRightToLeft],
			kind: eventPacketOnWire,
			link: l,
			dir:  dirRightToLeft,
		})
	}
	return true
}

// packetOnWire pops the head of the buffer for dir and schedules its
// delivery after the link's propagation delay.
func (l *Link) packetOnWire(dir linkDirection) {
	receiveTime := l.delay + l.ctl.now

	var packet *Packet
	var dst Device
	if dir == dirLeftToRight {
		packet, l.rightward = l.rightward[0], l.rightward[1:]
		dst = l.right
	} else {
		packet, l.leftward = l.leftward[0], l.leftward[1:]
		dst = l.left
	}

	l.ctl.logSample("link-rate", string(l.id), float64(packet.Size), aggMbps)

	l.ctl.scheduleEvent(&event{
		time: receiveTime,
		kind: eventReceivePacket,
		dev:  dst,
		from: l,
		pkt:  packet,
	})
}
