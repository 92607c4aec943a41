// Package adapter connects transport endpoints to external systems:
// Prometheus, HTTP health probes, OpenTelemetry and reopen policies.
package adapter

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/srediag/shmemdev/pkg/transport"
)

// StatsSource is implemented by transport.Reader and transport.Writer.
type StatsSource interface {
	Stats() transport.Stats
}

const namespace = "shmemdev"

var labels = []string{"path"}

// Collector exports the stats of one or more endpoints as Prometheus metrics.
type Collector struct {
	sources []StatsSource

	framesRead     *prometheus.Desc
	framesRepeated *prometheus.Desc
	framesWritten  *prometheus.Desc
	stalls         *prometheus.Desc
	wouldBlock     *prometheus.Desc
	fps            *prometheus.Desc
	lastFrame      *prometheus.Desc
	closed         *prometheus.Desc
}

// NewPrometheusCollector returns a collector reading sources at scrape time.
func NewPrometheusCollector(sources ...StatsSource) *Collector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Collector{
		sources:        sources,
		framesRead:     desc("frames_read_total", "Frames returned to the consumer, repeated frames included."),
		framesRepeated: desc("frames_repeated_total", "Frames delivered again after a producer stall."),
		framesWritten:  desc("frames_written_total", "Frames published by the producer."),
		stalls:         desc("stalls_total", "Semaphore waits that timed out."),
		wouldBlock:     desc("would_block_total", "Non-blocking calls that found no frame."),
		fps:            desc("fps", "Measured rate of fresh frames."),
		lastFrame:      desc("last_frame_timestamp_seconds", "Unix time of the last fresh frame."),
		closed:         desc("closed", "1 once the session is closed or failed."),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.framesRead
	ch <- c.framesRepeated
	ch <- c.framesWritten
	ch <- c.stalls
	ch <- c.wouldBlock
	ch <- c.fps
	ch <- c.lastFrame
	ch <- c.closed
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, src := range c.sources {
		st := src.Stats()
		counter := func(d *prometheus.Desc, v uint64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v), st.Path)
		}
		gauge := func(d *prometheus.Desc, v float64) {
			ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, st.Path)
		}
		counter(c.framesRead, st.FramesRead)
		counter(c.framesRepeated, st.FramesRepeated)
		counter(c.framesWritten, st.FramesWritten)
		counter(c.stalls, st.Stalls)
		counter(c.wouldBlock, st.WouldBlock)
		gauge(c.fps, st.FPS)
		var last float64
		if !st.LastFrame.IsZero() {
			last = float64(st.LastFrame.UnixNano()) / 1e9
		}
		gauge(c.lastFrame, last)
		var closed float64
		if st.Closed {
			closed = 1
		}
		gauge(c.closed, closed)
	}
}

var _ prometheus.Collector = (*Collector)(nil)
