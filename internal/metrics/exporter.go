package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/annel0/voxel-world/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot - мгновенное состояние мира для периодического экспорта
type Snapshot struct {
	ResidentChunks  int
	PendingUpdaters int
	PoolSize        int
}

// StatsProvider отдаёт снимок состояния. Вызывается из горутины экспортера,
// поэтому реализация должна быть потокобезопасной.
type StatsProvider interface {
	Snapshot() Snapshot
}

// Exporter управляет HTTP-эндпоинтом Prometheus и периодически обновляет gauge-метрики.
type Exporter struct {
	gatherer prometheus.Gatherer
	provider StatsProvider
	process  *ProcessStats
	interval time.Duration

	rss      prometheus.Gauge
	heap     prometheus.Gauge
	cpu      prometheus.Gauge
	resident prometheus.Gauge
	pending  prometheus.Gauge
	pool     prometheus.Gauge

	server *http.Server
	quit   chan struct{}
	done   chan struct{}
}

// NewExporter создаёт экспортер, но не запускает HTTP-сервер.
func NewExporter(reg *prometheus.Registry, provider StatsProvider) *Exporter {
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Subsystem: "process", Name: name, Help: help})
	}
	e := &Exporter{
		gatherer: reg,
		provider: provider,
		process:  NewProcessStats(),
		interval: time.Second,
		rss:      gauge("rss_megabytes", "Резидентная память процесса."),
		heap:     gauge("heap_megabytes", "Занятая куча Go."),
		cpu:      gauge("cpu_percent", "Загрузка CPU процессом."),
		resident: gauge("snapshot_resident_chunks", "Загруженные чанки по последнему снимку."),
		pending:  gauge("snapshot_pending_updaters", "Обработчики планировщика по последнему снимку."),
		pool:     gauge("snapshot_pool_size", "Размер пула по последнему снимку."),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	reg.MustRegister(e.rss, e.heap, e.cpu, e.resident, e.pending, e.pool)
	return e
}

// Handler возвращает HTTP-обработчик /metrics
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.gatherer, promhttp.HandlerOpts{})
}

// StartHTTP запускает HTTP-эндпоинт Prometheus на указанном адресе (например, ":2112").
// Метод неблокирующий: HTTP-сервер стартует в отдельной горутине.
func (e *Exporter) StartHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	e.server = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logging.Info("📈 Prometheus /metrics доступен по адресу %s", addr)
		if err := e.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Ошибка Prometheus HTTP сервера: %v", err)
		}
	}()
	go e.loop()
}

// Stop останавливает обновление метрик и HTTP-сервер
func (e *Exporter) Stop(ctx context.Context) error {
	if e.server == nil {
		return nil
	}
	close(e.quit)
	<-e.done
	return e.server.Shutdown(ctx)
}

// Refresh обновляет gauge-метрики один раз
func (e *Exporter) Refresh() {
	if e.provider != nil {
		s := e.provider.Snapshot()
		e.resident.Set(float64(s.ResidentChunks))
		e.pending.Set(float64(s.PendingUpdaters))
		e.pool.Set(float64(s.PoolSize))
	}
	e.heap.Set(e.process.GetMemoryUsage())
	if rss, err := e.process.GetRSS(); err == nil {
		e.rss.Set(rss)
	}
	if cpu, err := e.process.GetCPUUsage(); err == nil {
		e.cpu.Set(cpu)
	}
}

func (e *Exporter) loop() {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	defer close(e.done)

	for {
		select {
		case <-ticker.C:
			e.Refresh()
		case <-e.quit:
			return
		}
	}
}
