package database

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/event"
)

type poolStat struct {
	desc  *prometheus.Desc
	kind  prometheus.ValueType
	value func(*pgxpool.Stat) float64
}

// PoolStatsCollector implements prometheus.Collector for pgxpool connection
// metrics of the directory database.
type PoolStatsCollector struct {
	pool    *pgxpool.Pool
	service string
	stats   []poolStat
}

// NewPoolStatsCollector creates a collector exporting pgxpool statistics.
func NewPoolStatsCollector(pool *pgxpool.Pool, service string) *PoolStatsCollector {
	labels := []string{"service"}
	gauge := func(name, help string, fn func(*pgxpool.Stat) float64) poolStat {
		return poolStat{prometheus.NewDesc(name, help, labels, nil), prometheus.GaugeValue, fn}
	}
	counter := func(name, help string, fn func(*pgxpool.Stat) float64) poolStat {
		return poolStat{prometheus.NewDesc(name, help, labels, nil), prometheus.CounterValue, fn}
	}

	return &PoolStatsCollector{
		pool:    pool,
		service: service,
		stats: []poolStat{
			gauge("db_pool_acquired_connections", "Number of currently acquired connections",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquiredConns()) }),
			gauge("db_pool_idle_connections", "Number of currently idle connections",
				func(s *pgxpool.Stat) float64 { return float64(s.IdleConns()) }),
			gauge("db_pool_total_connections", "Total number of connections in the pool",
				func(s *pgxpool.Stat) float64 { return float64(s.TotalConns()) }),
			gauge("db_pool_max_connections", "Maximum number of connections allowed",
				func(s *pgxpool.Stat) float64 { return float64(s.MaxConns()) }),
			counter("db_pool_acquire_count_total", "Total number of connection acquires",
				func(s *pgxpool.Stat) float64 { return float64(s.AcquireCount()) }),
			counter("db_pool_acquire_duration_seconds_total", "Total time spent acquiring connections in seconds",
				func(s *pgxpool.Stat) float64 { return s.AcquireDuration().Seconds() }),
			counter("db_pool_canceled_acquire_count_total", "Total number of canceled connection acquires",
				func(s *pgxpool.Stat) float64 { return float64(s.CanceledAcquireCount()) }),
			counter("db_pool_empty_acquire_count_total", "Total number of acquires that had to wait for a connection",
				func(s *pgxpool.Stat) float64 { return float64(s.EmptyAcquireCount()) }),
		},
	}
}

// Describe implements prometheus.Collector.
func (c *PoolStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, s := range c.stats {
		ch <- s.desc
	}
}

// Collect implements prometheus.Collector.
func (c *PoolStatsCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	for _, s := range c.stats {
		ch <- prometheus.MustNewConstMetric(s.desc, s.kind, s.value(stat), c.service)
	}
}

// MongoPoolMetrics tracks connection pool events of the document store.
type MongoPoolMetrics struct {
	Open        prometheus.Gauge
	CheckedOut  prometheus.Gauge
	CheckoutErr prometheus.Counter
}

// NewMongoPoolMetrics creates and registers the Mongo pool metrics with reg.
func NewMongoPoolMetrics(reg prometheus.Registerer, service string) *MongoPoolMetrics {
	labels := prometheus.Labels{"service": service}
	m := &MongoPoolMetrics{
		Open: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "mongo_pool_open_connections",
			Help:        "Number of open connections to MongoDB",
			ConstLabels: labels,
		}),
		CheckedOut: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "mongo_pool_checked_out_connections",
			Help:        "Number of connections currently checked out of the pool",
			ConstLabels: labels,
		}),
		CheckoutErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "mongo_pool_checkout_failures_total",
			Help:        "Total number of failed connection checkouts",
			ConstLabels: labels,
		}),
	}
	reg.MustRegister(m.Open, m.CheckedOut, m.CheckoutErr)
	return m
}

// Monitor returns a driver pool monitor feeding these metrics.
func (m *MongoPoolMetrics) Monitor() *event.PoolMonitor {
	return &event.PoolMonitor{
		Event: func(e *event.PoolEvent) {
			switch e.Type {
			case event.ConnectionCreated:
				m.Open.Inc()
			case event.ConnectionClosed:
				m.Open.Dec()
			case event.GetSucceeded:
				m.CheckedOut.Inc()
			case event.ConnectionReturned:
				m.CheckedOut.Dec()
			case event.GetFailed:
				m.CheckoutErr.Inc()
			}
		},
	}
}

// RegisterPoolMetrics registers a pgxpool collector with reg.
func RegisterPoolMetrics(reg prometheus.Registerer, pool *pgxpool.Pool, service string) {
	reg.MustRegister(NewPoolStatsCollector(pool, service))
}
