// Package metrics содержит Prometheus-метрики подсистемы чанков.
// Все методы Collectors безопасны для nil-получателя: компоненты без метрик
// просто передают nil.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "voxel"

// Collectors инкапсулирует Prometheus-метрики мира
type Collectors struct {
	poolHits      prometheus.Counter
	poolMisses    prometheus.Counter
	poolEvictions prometheus.Counter
	poolEdits     *prometheus.CounterVec
	poolSize      prometheus.Gauge

	loaderTasks   *prometheus.CounterVec
	loaderMerges  prometheus.Counter
	loaderSeconds prometheus.Histogram

	resident      prometheus.Gauge
	lightWrites   prometheus.Counter
	modelsRebuilt prometheus.Counter

	updatersExecuted prometheus.Counter
	updatersPending  prometheus.Gauge
	tickSeconds      prometheus.Histogram
}

// New создаёт метрики и регистрирует их в reg. При reg == nil метрики не регистрируются.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		poolHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool",
			Name: "hits_total",
			Help: "Попадания в пул блочных данных.",
		}),
		poolMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool",
			Name: "misses_total",
			Help: "Промахи пула блочных данных.",
		}),
		poolEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool",
			Name: "evictions_total",
			Help: "Чанки, вытесненные из пула по LRU.",
		}),
		poolEdits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "pool",
			Name: "edits_total",
			Help: "Отложенные правки пула по результату (applied/skipped).",
		}, []string{"result"}),
		poolSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "pool",
			Name: "size",
			Help: "Число чанков в пуле.",
		}),
		loaderTasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "loader",
			Name: "tasks_total",
			Help: "Выполненные задачи загрузчика по виду (load/forward/unload).",
		}, []string{"kind"}),
		loaderMerges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "loader",
			Name: "merges_total",
			Help: "Запросы, слитые с уже ожидающей задачей.",
		}),
		loaderSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "loader",
			Name:    "load_seconds",
			Help:    "Длительность генерации и освещения чанка.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		resident: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "chunks",
			Name: "resident",
			Help: "Загруженные чанки менеджера.",
		}),
		lightWrites: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "chunks",
			Name: "light_writes_total",
			Help: "Изменения освещённости при инкрементальном обновлении.",
		}),
		modelsRebuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "chunks",
			Name: "models_rebuilt_total",
			Help: "Перестроенные модели секций.",
		}),
		updatersExecuted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scheduler",
			Name: "updaters_executed_total",
			Help: "Выполненные отложенные обработчики блоков.",
		}),
		updatersPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "scheduler",
			Name: "updaters_pending",
			Help: "Обработчики в очереди планировщика.",
		}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "runtime",
			Name:    "tick_seconds",
			Help:    "Длительность игрового тика.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	if reg != nil {
		reg.MustRegister(
			c.poolHits, c.poolMisses, c.poolEvictions, c.poolEdits, c.poolSize,
			c.loaderTasks, c.loaderMerges, c.loaderSeconds,
			c.resident, c.lightWrites, c.modelsRebuilt,
			c.updatersExecuted, c.updatersPending, c.tickSeconds,
		)
	}
	return c
}

func (c *Collectors) PoolHit() {
	if c != nil {
		c.poolHits.Inc()
	}
}

func (c *Collectors) PoolMiss() {
	if c != nil {
		c.poolMisses.Inc()
	}
}

func (c *Collectors) PoolEvicted(n int) {
	if c != nil && n > 0 {
		c.poolEvictions.Add(float64(n))
	}
}

// PoolEdit учитывает отложенную правку: применена или пропущена
func (c *Collectors) PoolEdit(applied bool) {
	if c == nil {
		return
	}
	if applied {
		c.poolEdits.WithLabelValues("applied").Inc()
	} else {
		c.poolEdits.WithLabelValues("skipped").Inc()
	}
}

func (c *Collectors) PoolSize(n int) {
	if c != nil {
		c.poolSize.Set(float64(n))
	}
}

func (c *Collectors) LoaderTask(kind string) {
	if c != nil {
		c.loaderTasks.WithLabelValues(kind).Inc()
	}
}

func (c *Collectors) LoaderMerge() {
	if c != nil {
		c.loaderMerges.Inc()
	}
}

func (c *Collectors) ObserveLoad(d time.Duration) {
	if c != nil {
		c.loaderSeconds.Observe(d.Seconds())
	}
}

func (c *Collectors) ResidentChunks(n int) {
	if c != nil {
		c.resident.Set(float64(n))
	}
}

func (c *Collectors) LightWrites(n int) {
	if c != nil && n > 0 {
		c.lightWrites.Add(float64(n))
	}
}

func (c *Collectors) ModelsRebuilt(n int) {
	if c != nil && n > 0 {
		c.modelsRebuilt.Add(float64(n))
	}
}

func (c *Collectors) UpdatersExecuted(n int) {
	if c != nil && n > 0 {
		c.updatersExecuted.Add(float64(n))
	}
}

func (c *Collectors) UpdatersPending(n int) {
	if c != nil {
		c.updatersPending.Set(float64(n))
	}
}

func (c *Collectors) ObserveTick(d time.Duration) {
	if c != nil {
		c.tickSeconds.Observe(d.Seconds())
	}
}
