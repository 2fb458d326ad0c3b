package netsim

//
// Data model
//

// DeviceID identifies a [Host] or a [Router] in a topology.
type DeviceID string

// LinkID identifies a [Link] in a topology.
type LinkID string

// FlowID identifies a [Flow] between two hosts.
type FlowID string

// Logger is the logger used for operational messages about the
// simulator's own execution (run lifecycle, dropped packets, routing
// convergence). It is distinct from the sample time series produced by
// the logging sink (see [Controller.Series]), which is domain data, not
// an operational log.
type Logger interface {
	// Debugf formats and emits a debug message.
	Debugf(format string, v ...any)

	// Debug emits a debug message.
	Debug(message string)

	// Infof formats and emits an informational message.
	Infof(format string, v ...any)

	// Info emits an informational message.
	Info(message string)

	// Warnf formats and emits a warning message.
	Warnf(format string, v ...any)

	// Warn emits a warning message.
	Warn(message string)
}

// Device is the capability set shared by [Host] and [Router]: something
// that owns a set of [Link]s and can accept a packet arriving on one of
// them. Bellman-Ford routing distinguishes the two concrete types by a
// type switch on the peer returned by [Link.OppositeDevice] rather than
// through a capability exposed here, since only routers need to know.
type Device interface {
	// DeviceID returns this device's identifier.
	DeviceID() DeviceID

	// Links returns the links attached to this device, keyed by link id.
	Links() map[LinkID]*Link

	// ReceivePacket handles a packet that arrived on sendingLink.
	ReceivePacket(sendingLink *Link, packet *Packet)
}
