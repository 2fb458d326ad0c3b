// Package topology parses the JSON network description (§6 of the
// external interface: hosts, routers, links, flows) into a built
// [netsim.Controller]. This is deliberately kept outside the netsim
// package itself: parsing and validating an external file format is not
// part of the simulation kernel.
package topology

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/abasso/netsim"
	"github.com/abasso/netsim/internal/optional"
)

type jsonTopology struct {
	Hosts   []jsonHost   `json:"hosts"`
	Routers []jsonRouter `json:"routers"`
	Links   []jsonLink   `json:"links"`
	Flows   []jsonFlow   `json:"flows"`
}

type jsonHost struct {
	ID    string   `json:"id"`
	Links []string `json:"links"`
}

type jsonRouter struct {
	ID           string            `json:"id"`
	Links        []string          `json:"links"`
	BFfreq       float64           `json:"BFfreq"`
	RoutingTable map[string]string `json:"routing_table"`
}

type jsonLink struct {
	ID            string  `json:"id"`
	LeftDeviceID  string  `json:"left_device_id"`
	RightDeviceID string  `json:"right_device_id"`
	Throughput    float64 `json:"throughput"`
	LinkDelay     float64 `json:"link_delay"`
	BufferSize    int     `json:"buffer_size"`
	ShowOnPlot    bool    `json:"show_on_plot"`
}

type jsonFlow struct {
	ID         string  `json:"id"`
	SrcID      string  `json:"src_id"`
	DstID      string  `json:"dst_id"`
	NumBytes   *int    `json:"num_bytes"`
	StartTime  float64 `json:"start_time"`
	TCP        string  `json:"tcp"`
	ShowOnPlot bool    `json:"show_on_plot"`
}

// Result is a fully built controller plus the set of link/flow ids
// flagged show_on_plot in the source file, ready to pass to
// [netsim.Controller.WatchSeries].
type Result struct {
	Controller *netsim.Controller
	ShowOnPlot []string
}

// LoadFile opens path and parses it as a topology, building a
// controller whose sample log sink buckets at intervalLength seconds.
func LoadFile(path string, intervalLength float64) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("topology: cannot open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f, intervalLength)
}

// Load parses r as a topology and builds the corresponding controller.
//
// Internally the device/link wiring passes use [netsim.Must0] and
// friends to turn a missing id into an immediate panic rather than
// threading an error through every resolution step; this function
// recovers that panic and reports it as a normal error so callers never
// observe it.
func Load(r io.Reader, intervalLength float64) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("topology: %v", r)
		}
	}()

	var doc jsonTopology
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("topology: invalid JSON: %w", err)
	}

	ctl := netsim.NewController(intervalLength)
	var showOnPlot []string

	// Pass 1: links, with endpoints bound later once devices exist.
	linkByID := make(map[string]*netsim.Link, len(doc.Links))
	for _, jl := range doc.Links {
		link := netsim.NewLink(netsim.LinkID(jl.ID), jl.Throughput, jl.LinkDelay, jl.BufferSize)
		ctl.AddLink(link)
		linkByID[jl.ID] = link
		if jl.ShowOnPlot {
			showOnPlot = append(showOnPlot, jl.ID)
		}
	}

	resolveLinks := func(ids []string) (map[netsim.LinkID]*netsim.Link, error) {
		out := make(map[netsim.LinkID]*netsim.Link, len(ids))
		for _, id := range ids {
			link, ok := linkByID[id]
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownLink, id)
			}
			out[netsim.LinkID(id)] = link
		}
		return out, nil
	}

	// Pass 2: devices.
	for _, jh := range doc.Hosts {
		if len(jh.Links) != 1 {
			return nil, fmt.Errorf("%w: %s", ErrInvalidHost, jh.ID)
		}
		links := netsim.Must1(resolveLinks(jh.Links))
		link := links[netsim.LinkID(jh.Links[0])]
		ctl.AddHost(netsim.NewHost(netsim.DeviceID(jh.ID), link))
	}

	for _, jr := range doc.Routers {
		links := netsim.Must1(resolveLinks(jr.Links))
		routingTable := make(map[netsim.DeviceID]netsim.LinkID, len(jr.RoutingTable))
		for hostID, linkID := range jr.RoutingTable {
			if _, ok := linkByID[linkID]; !ok {
				return nil, fmt.Errorf("%w: %s", ErrUnknownLink, linkID)
			}
			routingTable[netsim.DeviceID(hostID)] = netsim.LinkID(linkID)
		}
		ctl.AddRouter(netsim.NewRouter(netsim.DeviceID(jr.ID), links, jr.BFfreq, routingTable))
	}

	// Pass 3: bind link endpoints now that every device exists.
	deviceExists := make(map[string]bool, len(doc.Hosts)+len(doc.Routers))
	for _, jh := range doc.Hosts {
		deviceExists[jh.ID] = true
	}
	for _, jr := range doc.Routers {
		deviceExists[jr.ID] = true
	}
	for _, jl := range doc.Links {
		if !deviceExists[jl.LeftDeviceID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, jl.LeftDeviceID)
		}
		if !deviceExists[jl.RightDeviceID] {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, jl.RightDeviceID)
		}
		ctl.BindLink(netsim.LinkID(jl.ID), netsim.DeviceID(jl.LeftDeviceID), netsim.DeviceID(jl.RightDeviceID))
	}

	// Pass 4: flows.
	for _, jf := range doc.Flows {
		var numBytes optional.Value[int]
		if jf.NumBytes != nil {
			numBytes = optional.Some(*jf.NumBytes)
		} else {
			numBytes = optional.None[int]()
		}
		if jf.TCP != "reno" && jf.TCP != "fast" {
			return nil, fmt.Errorf("%w: %s", ErrInvalidTCP, jf.TCP)
		}
		flow := netsim.NewFlow(ctl, netsim.DeviceID(jf.SrcID), netsim.DeviceID(jf.DstID), netsim.FlowID(jf.ID), jf.TCP, numBytes)
		ctl.AddFlow(flow, jf.StartTime)
		if jf.ShowOnPlot {
			showOnPlot = append(showOnPlot, jf.ID)
		}
	}

	return &Result{Controller: ctl, ShowOnPlot: showOnPlot}, nil
}
