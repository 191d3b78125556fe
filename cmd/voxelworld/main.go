package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/voxel-world/internal/app"
	"github.com/annel0/voxel-world/internal/config"
	"github.com/annel0/voxel-world/internal/logging"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/annel0/voxel-world/internal/observability"
	"github.com/annel0/voxel-world/internal/vec"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "", "путь к конфигурации (YAML или TOML), иначе VOXEL_CONFIG")
	maxTicks := flag.Int64("ticks", 0, "остановиться после N тиков (0 - до сигнала)")
	walkEvery := flag.Int64("walk", 100, "сдвигать наблюдателя на чанк каждые N тиков (0 - стоять на месте)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	if err := logging.InitDefaultLoggerWithOptions("voxelworld", logging.Options{
		Dir:          cfg.Logging.Dir,
		ConsoleLevel: logging.ParseLevel(cfg.Logging.ConsoleLevel),
		FileLevel:    logging.ParseLevel(cfg.Logging.FileLevel),
	}); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("🧱 Запуск voxel-world: генератор %s, дальности %d/%d/%d",
		cfg.World.Generator, cfg.World.RenderDistance, cfg.World.LoadDistance, cfg.World.UnloadDistance)

	// === МЕТРИКИ ===
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collectorsSet := metrics.New(reg)

	rt, err := app.NewRuntime(cfg, collectorsSet, nil)
	if err != nil {
		logging.Error("❌ Ошибка создания мира: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === ТРАССИРОВКА ===
	var shutdownTelemetry func(context.Context) error
	if cfg.Telemetry.Enabled {
		shutdownTelemetry, err = observability.InitTelemetry(ctx, cfg.Telemetry.ServiceName, rt.ID().String())
		if err != nil {
			logging.Warn("OpenTelemetry недоступен: %v", err)
		}
	}

	exporter := metrics.NewExporter(reg, rt)
	if cfg.Metrics.Enabled {
		exporter.StartHTTP(cfg.Metrics.GetAddr())
	}

	// === ИГРОВОЙ ЦИКЛ ===
	viewer := vec.Vec3{Y: 64}
	rt.MoveViewer(viewer)

	period := time.Second / time.Duration(cfg.Scheduler.TicksPerSecond)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	statsEvery := int64(cfg.Scheduler.TicksPerSecond) * 5

loop:
	for {
		select {
		case <-ctx.Done():
			logging.Info("📡 Получен сигнал завершения")
			break loop
		case <-ticker.C:
		}

		st := rt.Tick()
		if *walkEvery > 0 && st.Tick%*walkEvery == 0 {
			viewer.X += 16
			rt.MoveViewer(viewer)
			logging.Debug("наблюдатель перемещён в %s", viewer)
		}
		if st.Tick%statsEvery == 0 {
			s := rt.Stats()
			logging.Info("тик %d: чанков %d, обработчиков %d, пул %d/%d (попадания %.0f%%)",
				s.Tick, s.ResidentChunks, s.PendingUpdaters, s.Pool.Size, s.Pool.Capacity, s.Pool.HitRatio*100)
		}
		if *maxTicks > 0 && st.Tick >= *maxTicks {
			break loop
		}
	}

	// === GRACEFUL SHUTDOWN ===
	rt.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if cfg.Metrics.Enabled {
		if err := exporter.Stop(shutdownCtx); err != nil {
			logging.Error("❌ Ошибка остановки экспортера метрик: %v", err)
		}
	}
	if shutdownTelemetry != nil {
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logging.Warn("Ошибка остановки OpenTelemetry: %v", err)
		}
	}

	logging.Info("👋 voxel-world остановлен")
}
