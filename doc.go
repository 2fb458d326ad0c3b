// Package netsim is a discrete-event simulator of a packet-switched IP
// network. It exercises congestion-control algorithms (TCP Reno and
// FAST-TCP) against a topology of [Host]s, [Router]s, and [Link]s with
// finite buffers.
//
// The simulator never touches real sockets, real TCP/IP headers, or real
// wall-clock time. A [Controller] owns a virtual clock and a priority
// queue of scheduled events; advancing the clock means popping the next
// event and dispatching it, which may itself enqueue further events
// (packet transmission completion, packet reception, periodic routing
// rounds, retransmission timers). The run loop stops when the queue
// empties, a time bound is reached, or every finite flow has completed.
//
// Build a topology with [NewController] and the constructors on
// [Controller] ([Controller.AddLink], [Controller.AddHost],
// [Controller.AddRouter], [Controller.AddFlow]), wire left/right endpoints
// with [Controller.BindLink], then call [Controller.Run]. Time series for
// window size, link throughput, buffer occupancy, packet loss, and flow
// data rate are available afterwards through [Controller.Series].
//
// Parsing a JSON topology description into these constructor calls is not
// part of this package; see the sibling internal/topology package and the
// cmd/netsim command for that external, non-core concern.
package netsim
