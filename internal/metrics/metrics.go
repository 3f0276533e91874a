// Package metrics instruments the reader/writer with Prometheus
// collectors. The library itself never serves HTTP (spec §1 non-goal);
// it only registers collectors into the default registry so a host
// process can expose them however it likes.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	FramesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asdcp", Name: "frames_written_total",
		Help: "Total essence frames written across all track files.",
	})
	FramesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asdcp", Name: "frames_read_total",
		Help: "Total essence frames read across all track files.",
	})
	BytesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asdcp", Name: "bytes_written_total",
		Help: "Total essence bytes written.",
	})
	HMACFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "asdcp", Name: "hmac_failures_total",
		Help: "Total frames that failed HMAC integrity verification on read.",
	})
	OpenHandles = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "asdcp", Name: "open_track_files",
		Help: "Number of currently open TrackFileWriter instances; readers are not counted.",
	})
)

func init() {
	prometheus.MustRegister(FramesWritten, FramesRead, BytesWritten, HMACFailures, OpenHandles)
}
