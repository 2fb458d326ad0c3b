package topology

import "errors"

// ErrUnknownLink indicates a host or router named a link id that no
// links[] entry defines.
var ErrUnknownLink = errors.New("topology: unknown link id")

// ErrUnknownDevice indicates a links[] entry named an endpoint device id
// that no hosts[]/routers[] entry defines. Flow and routing-table device
// ids are not checked against it.
var ErrUnknownDevice = errors.New("topology: unknown device id")

// ErrInvalidHost indicates a hosts[] entry did not name exactly one
// link, violating the one-link-per-host invariant.
var ErrInvalidHost = errors.New("topology: host must have exactly one link")

// ErrInvalidTCP indicates a flows[] entry named an unsupported
// congestion control algorithm.
var ErrInvalidTCP = errors.New("topology: unsupported tcp algorithm")
