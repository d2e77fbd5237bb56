package runlog

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noamteyssier/pipspeak/internal/pipeline"
)

const namespace = "pipspeak"

// Registry exposes a finished run's statistics as prometheus metrics.
func Registry(s pipeline.Summary) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	total := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_total",
		Help:      "Read pairs processed.",
	})
	passing := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_passing_total",
		Help:      "Read pairs matching all four barcodes.",
	})
	filtered := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_filtered_total",
		Help:      "Read pairs dropped, by the barcode stage that missed.",
	}, []string{"stage"})
	shortUMI := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reads_short_umi_total",
		Help:      "Read pairs matching all four barcodes but too short for the UMI, included in stage 4.",
	})
	fraction := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "fraction_passing",
		Help:      "Fraction of read pairs matching all four barcodes.",
	})
	whitelist := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "whitelist_size",
		Help:      "Distinct barcode and UMI constructs.",
	})
	reg.MustRegister(total, passing, filtered, shortUMI, fraction, whitelist)

	total.Add(float64(s.TotalReads))
	passing.Add(float64(s.PassingReads))
	for i, n := range s.Filtered() {
		filtered.WithLabelValues(strconv.Itoa(i + 1)).Add(float64(n))
	}
	shortUMI.Add(float64(s.NumShortUMI))
	fraction.Set(s.FractionPassing)
	whitelist.Set(float64(s.WhitelistSize))
	return reg
}

// WriteMetrics writes the run's metrics in the node_exporter textfile format.
func WriteMetrics(filename string, s pipeline.Summary) error {
	return prometheus.WriteToTextfile(filename, Registry(s))
}
