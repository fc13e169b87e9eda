// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command tracefab-relay listens on a UDP socket for the network wire
// format (§6.3) and relays decoded events or samples to a configured
// sink and formatter. It is a thin operational front end over the net
// and format packages, flag-configured rather than file-configured:
// no config framework, just flag.Parse.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"code.hybscloud.com/tracefab"
	"code.hybscloud.com/tracefab/format"
	"code.hybscloud.com/tracefab/metrics"
	tfnet "code.hybscloud.com/tracefab/net"
	"code.hybscloud.com/tracefab/sink"
)

func main() {
	var (
		listenAddr     = flag.String("listen", ":9401", "UDP address to listen on")
		path           = flag.String("path", "events", "relay path: events or samples")
		sinkKind       = flag.String("sink", "stdout", "sink kind: stdout, rollingfile")
		formatterKind  = flag.String("formatter", "plaintext", "formatter kind: plaintext, lineprotocol")
		rollingDir     = flag.String("rollingfile.dir", "./tracefab-logs", "rolling file sink directory")
		rollingPrefix  = flag.String("rollingfile.prefix", "relay-", "rolling file name prefix")
		rollingMaxSize = flag.Int64("rollingfile.max-size", 64*1024*1024, "rolling file max size in bytes before rotation")
		rollingMaxAge  = flag.Duration("rollingfile.max-age", time.Hour, "rolling file max age before rotation")
		measurement    = flag.String("lineprotocol.measurement", "sample", "line protocol measurement name")
		metricsAddr    = flag.String("metrics.listen", "", "address to serve Prometheus metrics on (empty disables)")
	)
	flag.Parse()

	s, err := buildSink(*sinkKind, *rollingDir, *rollingPrefix, *rollingMaxSize, *rollingMaxAge)
	if err != nil {
		log.Fatalf("tracefab-relay: building sink: %v", err)
	}

	if *metricsAddr != "" {
		reg := metrics.NewRegistry()
		promReg := prometheus.NewRegistry()
		if err := reg.RegisterAll(promReg); err != nil {
			log.Fatalf("tracefab-relay: registering metrics: %v", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil {
				log.Printf("tracefab-relay: metrics server stopped: %v", err)
			}
		}()
	}

	if err := run(*listenAddr, *path, *formatterKind, *measurement, s); err != nil {
		log.Fatalf("tracefab-relay: %v", err)
	}
}

func buildSink(kind, dir, prefix string, maxSize int64, maxAge time.Duration) (tracefab.Sink, error) {
	switch kind {
	case "stdout":
		return sink.NewStream(os.Stdout), nil
	case "rollingfile":
		return sink.NewRollingFile(dir, prefix, maxSize, maxAge, 5*time.Second)
	default:
		return nil, fmt.Errorf("unknown sink kind %q", kind)
	}
}

func run(listenAddr, path, formatterKind, measurement string, s tracefab.Sink) error {
	switch path {
	case "events":
		f, err := eventFormatter(formatterKind)
		if err != nil {
			return err
		}
		recv, err := tfnet.ListenEvents(listenAddr, s, f)
		if err != nil {
			return err
		}
		defer recv.Close()
		log.Printf("tracefab-relay: listening for events on %s", listenAddr)
		for {
			if err := recv.TryProcessOne(); err != nil {
				return err
			}
		}
	case "samples":
		f, err := sampleFormatter(formatterKind, measurement)
		if err != nil {
			return err
		}
		recv, err := tfnet.ListenSamples(listenAddr, s, f)
		if err != nil {
			return err
		}
		defer recv.Close()
		log.Printf("tracefab-relay: listening for samples on %s", listenAddr)
		for {
			if err := recv.TryProcessOne(); err != nil {
				return err
			}
		}
	default:
		return errors.New(`path must be "events" or "samples"`)
	}
}

func eventFormatter(kind string) (tracefab.EventFormatter, error) {
	switch kind {
	case "plaintext":
		return format.PlainText{}, nil
	default:
		return nil, fmt.Errorf("formatter %q does not support the events path", kind)
	}
}

func sampleFormatter(kind, measurement string) (tracefab.SampleFormatter, error) {
	switch kind {
	case "plaintext":
		return format.PlainText{}, nil
	case "lineprotocol":
		return &format.LineProtocol{Measurement: measurement}, nil
	default:
		return nil, fmt.Errorf("unknown formatter kind %q", kind)
	}
}
