package netsim

import "math"

//
// Router device — distance-vector (Bellman-Ford) routing.
//

// Router forwards TCP packets according to a routing table built by
// periodic Bellman-Ford rounds, and can also be seeded with a static
// routing table at construction time.
type Router struct {
	id    DeviceID
	links map[LinkID]*Link

	// routingTable maps a destination host id to the link that should
	// be used to reach it.
	routingTable map[DeviceID]LinkID

	// costTable maps a destination host id to this router's current
	// best-known cost to reach it.
	costTable map[DeviceID]float64

	bfFreq float64 // Bellman-Ford rounds per second; 0 disables rounds

	ctl *Controller
}

// NewRouter constructs a router attached to links, running Bellman-Ford
// rounds bfFreq times per second (0 disables periodic rounds, relying
// entirely on the supplied static routingTable).
func NewRouter(id DeviceID, links map[LinkID]*Link, bfFreq float64, routingTable map[DeviceID]LinkID) *Router {
	if routingTable == nil {
		routingTable = make(map[DeviceID]LinkID)
	}
	costTable := make(map[DeviceID]float64, len(routingTable))
	for hostID := range routingTable {
		costTable[hostID] = math.Inf(1)
	}
	return &Router{
		id:           id,
		links:        links,
		routingTable: routingTable,
		costTable:    costTable,
		bfFreq:       bfFreq,
	}
}

// DeviceID returns the router's identifier.
func (r *Router) DeviceID() DeviceID { return r.id }

// Links returns the router's attached links, keyed by link id.
func (r *Router) Links() map[LinkID]*Link {
	return r.links
}

// startBellmanFordRounds schedules the router's first periodic round, if
// bfFreq is nonzero. Called once by [Controller.AddRouter] when the router
// is registered.
func (r *Router) startBellmanFordRounds(now float64) {
	if r.bfFreq == 0 {
		return
	}
	r.ctl.scheduleEvent(&event{
		time:   now + 1.0/r.bfFreq,
		kind:   eventBellmanFordRound,
		router: r,
	})
}

// bellmanFordUpdate records a new best cost to hostID reached via
// mappedLink, then advertises it to every adjacent router other than the
// one mappedLink leads to (hosts don't participate in Bellman-Ford).
func (r *Router) bellmanFordUpdate(hostID DeviceID, cost float64, mappedLink *Link) {
	r.routingTable[hostID] = mappedLink.ID()
	r.costTable[hostID] = cost

	for _, link := range r.links {
		if link == mappedLink {
			continue
		}
		if _, isHost := link.OppositeDevice(r.id).(*Host); isHost {
			continue
		}
		update := NewRoutingUpdatePacket(r.id, hostID, cost)
		link.QueuePacket(r.id, update)
	}
}

// startBellmanFordRound reevaluates the cost to every directly attached
// host and reschedules itself for the next round.
func (r *Router) startBellmanFordRound() {
	r.ctl.scheduleEvent(&event{
		time:   r.ctl.now + 1.0/r.bfFreq,
		kind:   eventBellmanFordRound,
		router: r,
	})

	for hostID := range r.routingTable {
		r.costTable[hostID] = math.Inf(1)
	}

	for _, link := range r.links {
		peer := link.OppositeDevice(r.id)
		host, isHost := peer.(*Host)
		if !isHost {
			continue
		}
		cost := link.EstimateCost(r.id)
		r.bellmanFordUpdate(host.DeviceID(), cost, link)
	}
}

// ReceivePacket routes a TCP packet toward its destination, or applies a
// routing-update packet to the cost/routing tables if it improves on the
// router's current knowledge.
func (r *Router) ReceivePacket(sendingLink *Link, packet *Packet) {
	switch {
	case packet.IsTCP():
		linkID, ok := r.routingTable[packet.DstID]
		if !ok {
			return // no route: drop
		}
		r.links[linkID].QueuePacket(r.id, packet)

	case packet.IsRoutingUpdate():
		hostCost := packet.Cost + sendingLink.EstimateCost(r.id)
		currentCost, ok := r.costTable[packet.HostID]
		if !ok {
			currentCost = math.Inf(1)
		}
		if hostCost < currentCost {
			r.bellmanFordUpdate(packet.HostID, hostCost, sendingLink)
		}

	default:
		panic("netsim: router received an unsupported packet kind")
	}
}
