package netsim

import "github.com/apex/log"

//
// Controller — virtual clock, topology registries, and the event loop
// that drives the whole simulation. Grounded on the reference
// Controller, restructured so that scheduled callbacks are tagged
// [event] records dispatched from a switch rather than bound methods
// placed directly on the heap.
//

// Controller owns a topology (links, hosts, routers, flows) and the
// virtual-time event queue that drives it. Build a topology with the
// Add* methods and [Controller.BindLink], then call [Controller.Run].
type Controller struct {
	now float64

	links   map[LinkID]*Link
	devices map[DeviceID]Device
	flows   map[FlowID]bool // live flow ids; emptying this can end a run

	sched *scheduler
	log   *logSink

	logger Logger
}

// NewController returns an empty controller. intervalLength is the
// bucket width, in simulated seconds, used by the sample log sink
// returned from [Controller.Series]; values <= 0 default to 1.0,
// matching the reference controller's default log_interval_length.
func NewController(intervalLength float64) *Controller {
	return &Controller{
		links:   make(map[LinkID]*Link),
		devices: make(map[DeviceID]Device),
		flows:   make(map[FlowID]bool),
		sched:   newScheduler(),
		log:     newLogSink(intervalLength),
		logger:  log.Log,
	}
}

// SetLogger overrides the operational logger used for run lifecycle and
// drop/route warnings. The default is apex/log's package-level logger;
// tests typically pass an [internal.NullLogger].
func (c *Controller) SetLogger(logger Logger) {
	c.logger = logger
}

// WatchSeries restricts the sample log sink to the given link and flow
// ids, mirroring the reference's show_on_plot selection. Call before
// [Controller.Run]. Samples for subjects not named here are discarded, so
// an empty or never-called selection retains no series.
func (c *Controller) WatchSeries(subjects ...string) {
	c.log.watchOnly(subjects)
}

// AddLink registers a link with no endpoints bound yet.
func (c *Controller) AddLink(link *Link) {
	link.ctl = c
	c.links[link.id] = link
}

// BindLink attaches leftID and rightID as the left and right endpoints
// of an already-registered link. Both devices must already be
// registered via [Controller.AddHost] or [Controller.AddRouter].
func (c *Controller) BindLink(linkID LinkID, leftID, rightID DeviceID) {
	link, ok := c.links[linkID]
	if !ok {
		panic("netsim: unknown link id " + string(linkID))
	}
	left, ok := c.devices[leftID]
	if !ok {
		panic("netsim: unknown device id " + string(leftID))
	}
	right, ok := c.devices[rightID]
	if !ok {
		panic("netsim: unknown device id " + string(rightID))
	}
	link.left = left
	link.right = right
}

// AddHost registers a host.
func (c *Controller) AddHost(host *Host) {
	host.ctl = c
	c.devices[host.id] = host
}

// AddRouter registers a router and, if it has a nonzero Bellman-Ford
// frequency, schedules its first periodic round.
func (c *Controller) AddRouter(router *Router) {
	router.ctl = c
	c.devices[router.id] = router
	router.startBellmanFordRounds(c.now)
}

// AddFlow registers flow under its source host and schedules its first
// send at startTime.
func (c *Controller) AddFlow(flow *Flow, startTime float64) {
	src, ok := c.devices[flow.srcID]
	if !ok {
		panic("netsim: unknown source host id " + string(flow.srcID))
	}
	host, ok := src.(*Host)
	if !ok {
		panic("netsim: flow source " + string(flow.srcID) + " is not a host")
	}
	host.AddFlow(flow)
	c.flows[flow.id] = true
	c.scheduleEvent(&event{
		time: startTime,
		kind: eventSendNextPacket,
		flow: flow,
	})
}

// removeFlow drops flow from the set of live flows; [Controller.Run]
// stops as soon as that set empties, even if events are still queued.
func (c *Controller) removeFlow(id FlowID) {
	delete(c.flows, id)
}

func (c *Controller) scheduleEvent(ev *event) {
	c.sched.schedule(ev)
}

// logSample forwards one raw sample to the bucketing sink.
func (c *Controller) logSample(logType, subject string, value float64, agg aggregator) {
	c.log.record(c.now, logType, subject, value, agg)
}

// Series returns the reduced (time, value) points collected for one
// sample series, e.g. Series("window-size", "F1") or
// Series("link-rate", "L1"). Call after [Controller.Run] returns.
func (c *Controller) Series(logType, subject string) []Sample {
	return c.log.seriesFor(logType, subject)
}

// Now returns the controller's current virtual time.
func (c *Controller) Now() float64 {
	return c.now
}

// Run drains the event queue, advancing the virtual clock to each
// event's time before dispatching it, until the queue empties, the
// clock reaches deadline, or every flow has finished. Pass
// math.Inf(1) to run until the topology has nothing left to do.
func (c *Controller) Run(deadline float64) {
	c.logger.Infof("netsim: starting run, deadline=%v", deadline)
	for !c.sched.isEmpty() && c.now < deadline && len(c.flows) > 0 {
		ev := c.sched.pop()
		c.now = ev.time
		c.dispatch(ev)
	}
	c.log.flush(c.now)
	c.logger.Infof("netsim: run finished at t=%v", c.now)
}

func (c *Controller) dispatch(ev *event) {
	switch ev.kind {
	case eventSendNextPacket:
		host, ok := c.devices[ev.flow.srcID].(*Host)
		if !ok {
			c.logger.Warnf("netsim: send-next-packet for unknown host %v", ev.flow.srcID)
			return
		}
		host.SendNextPacket(ev.flow)

	case eventPacketOnWire:
		ev.link.packetOnWire(ev.dir)

	case eventReceivePacket:
		ev.dev.ReceivePacket(ev.from, ev.pkt)

	case eventBellmanFordRound:
		ev.router.startBellmanFordRound()

	case eventRetransmitCheck:
		ev.flow.transitionToRetransmit(ev.seqNum, ev.ssthresh)

	default:
		c.logger.Warnf("netsim: unknown event kind %v", ev.kind)
	}
}
