package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/annel0/voxel-world/internal/cache"
	"github.com/annel0/voxel-world/internal/metrics"
	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"
)

// Переменные окружения
const (
	EnvConfigPath  = "VOXEL_CONFIG"
	EnvMetricsAddr = "VOXEL_METRICS_ADDR"
)

// ErrInvalidConfig оборачивает все ошибки проверки
var ErrInvalidConfig = errors.New("некорректная конфигурация")

// Config корневая структура конфигурации приложения.
type Config struct {
	World     WorldConfig     `yaml:"world" toml:"world"`
	Loader    LoaderConfig    `yaml:"loader" toml:"loader"`
	Scheduler SchedulerConfig `yaml:"scheduler" toml:"scheduler"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
	Telemetry TelemetryConfig `yaml:"telemetry" toml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging" toml:"logging"`
}

type WorldConfig struct {
	// Generator: flat, perlin или simplex
	Generator      string `yaml:"generator" toml:"generator"`
	Seed           int64  `yaml:"seed" toml:"seed"`
	FlatHeight     int    `yaml:"flat_height" toml:"flat_height"`
	RenderDistance int    `yaml:"render_distance" toml:"render_distance"`
	LoadDistance   int    `yaml:"load_distance" toml:"load_distance"`
	UnloadDistance int    `yaml:"unload_distance" toml:"unload_distance"`
}

type LoaderConfig struct {
	// Threads = 0 - по числу ядер
	Threads      int `yaml:"threads" toml:"threads"`
	PoolCapacity int `yaml:"pool_capacity" toml:"pool_capacity"`
}

type SchedulerConfig struct {
	TicksPerSecond int `yaml:"ticks_per_second" toml:"ticks_per_second"`
	// TickBudget - максимум обработчиков за тик, 0 - без ограничения
	TickBudget int `yaml:"tick_budget" toml:"tick_budget"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled"`
	Addr    string `yaml:"addr" toml:"addr"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled" toml:"enabled"`
	ServiceName string `yaml:"service_name" toml:"service_name"`
}

type LoggingConfig struct {
	Dir          string `yaml:"dir" toml:"dir"`
	ConsoleLevel string `yaml:"console_level" toml:"console_level"`
	FileLevel    string `yaml:"file_level" toml:"file_level"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Generator:      "perlin",
			Seed:           42,
			FlatHeight:     40,
			RenderDistance: 4,
			LoadDistance:   6,
			UnloadDistance: 8,
		},
		Loader: LoaderConfig{
			PoolCapacity: cache.DefaultPoolCapacity,
		},
		Scheduler: SchedulerConfig{
			TicksPerSecond: 20,
			TickBudget:     4096,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Addr:    ":2112",
		},
		Telemetry: TelemetryConfig{
			ServiceName: "voxel-world",
		},
		Logging: LoggingConfig{
			Dir:          "logs",
			ConsoleLevel: "INFO",
			FileLevel:    "DEBUG",
		},
	}
}

// GetThreads возвращает число воркеров загрузчика
func (l *LoaderConfig) GetThreads() int {
	if l.Threads > 0 {
		return l.Threads
	}
	return metrics.DefaultWorkerCount()
}

// PoolConfig возвращает конфигурацию пула блочных данных
func (l *LoaderConfig) PoolConfig() cache.PoolConfig {
	return cache.PoolConfig{Capacity: l.PoolCapacity}
}

// GetAddr возвращает адрес метрик с приоритетом: env -> config -> default
func (m *MetricsConfig) GetAddr() string {
	if v := os.Getenv(EnvMetricsAddr); v != "" {
		return v
	}
	if m.Addr != "" {
		return m.Addr
	}
	return ":2112"
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	w := c.World
	switch w.Generator {
	case "flat", "perlin", "simplex", "":
	default:
		return fmt.Errorf("%w: неизвестный генератор %q", ErrInvalidConfig, w.Generator)
	}
	if w.RenderDistance < 0 || w.RenderDistance >= w.LoadDistance || w.LoadDistance >= w.UnloadDistance {
		return fmt.Errorf("%w: требуется render < load < unload, получено %d, %d, %d",
			ErrInvalidConfig, w.RenderDistance, w.LoadDistance, w.UnloadDistance)
	}
	if w.Generator == "flat" && (w.FlatHeight < 0 || w.FlatHeight >= 128) {
		return fmt.Errorf("%w: высота плоского мира %d вне [0, 128)", ErrInvalidConfig, w.FlatHeight)
	}
	if c.Loader.PoolCapacity <= 0 {
		return fmt.Errorf("%w: ёмкость пула должна быть положительной", ErrInvalidConfig)
	}
	if c.Loader.Threads < 0 {
		return fmt.Errorf("%w: отрицательное число потоков", ErrInvalidConfig)
	}
	if c.Scheduler.TicksPerSecond <= 0 {
		return fmt.Errorf("%w: ticks_per_second должен быть положительным", ErrInvalidConfig)
	}
	return nil
}

// Load читает файл конфигурации (YAML или TOML по расширению) поверх значений
// по умолчанию. Если path == "", используется VOXEL_CONFIG; если и он пуст,
// возвращается конфигурация по умолчанию.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("разбор %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
