// Command netsim runs a discrete-event network simulation described by
// a JSON topology file and reports its sample log series.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/apex/log"
	apexcli "github.com/apex/log/handlers/cli"

	"github.com/abasso/netsim/internal/topology"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fset := flag.NewFlagSet("netsim", flag.ContinueOnError)
	filename := fset.String("f", "", "topology JSON file")
	interval := fset.Float64("i", 1.0, "log bucket length in seconds, must be > 0")
	debug := fset.Bool("debug", false, "enable debug logging")
	quiet := fset.Bool("q", false, "suppress status messages")
	if err := fset.Parse(args); err != nil {
		return 2
	}

	if *filename == "" {
		fmt.Fprintln(os.Stderr, "netsim: -f <file> is required")
		return 2
	}
	if *interval <= 0 {
		fmt.Fprintln(os.Stderr, "netsim: -i must be > 0")
		return 2
	}

	log.SetHandler(apexcli.Default)
	switch {
	case *quiet:
		log.SetLevel(log.ErrorLevel)
	case *debug:
		log.SetLevel(log.DebugLevel)
	default:
		log.SetLevel(log.InfoLevel)
	}

	result, err := topology.LoadFile(*filename, *interval)
	if err != nil {
		log.WithError(err).Error("netsim: failed to load topology")
		return 2
	}

	ctl := result.Controller
	ctl.SetLogger(log.Log)
	ctl.WatchSeries(result.ShowOnPlot...)

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("netsim: fatal: %v", r)
			os.Exit(1)
		}
	}()

	ctl.Run(math.Inf(1))

	for _, subject := range result.ShowOnPlot {
		for _, logType := range []string{"flow-rate", "window-size", "link-rate", "buffer-occupancy", "packet-loss"} {
			for _, sample := range ctl.Series(logType, subject) {
				fmt.Printf("%s\t%s\t%f\t%f\n", logType, subject, sample.Time, sample.Value)
			}
		}
	}

	return 0
}
