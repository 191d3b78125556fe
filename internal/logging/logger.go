package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из строки конфигурации. Неизвестное значение даёт INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Options задаёт параметры создания логгера.
type Options struct {
	// Dir: каталог для файловых логов. Пустая строка отключает запись в файл.
	Dir            string
	ConsoleLevel   LogLevel
	FileLevel      LogLevel
	ConsoleWriter  io.Writer
	DisableConsole bool
}

// Logger представляет систему логирования компонента
type Logger struct {
	mu              sync.Mutex
	component       string
	consoleLogger   *log.Logger
	fileLogger      *log.Logger
	file            *os.File
	minConsoleLevel LogLevel
	minFileLevel    LogLevel
}

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
	defaultOpts   = Options{ConsoleLevel: INFO, FileLevel: DEBUG, DisableConsole: true}
)

// NewLogger создаёт логгер компонента с параметрами по умолчанию
func NewLogger(component string) (*Logger, error) {
	defaultMu.RLock()
	opts := defaultOpts
	defaultMu.RUnlock()
	return NewLoggerWithOptions(component, opts)
}

// NewLoggerWithOptions создаёт логгер компонента
func NewLoggerWithOptions(component string, opts Options) (*Logger, error) {
	l := &Logger{
		component:       component,
		minConsoleLevel: opts.ConsoleLevel,
		minFileLevel:    opts.FileLevel,
	}

	if !opts.DisableConsole {
		w := opts.ConsoleWriter
		if w == nil {
			w = os.Stdout
		}
		l.consoleLogger = log.New(w, "", log.LstdFlags)
	}

	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0755); err != nil {
			return nil, fmt.Errorf("ошибка создания директории %s: %w", opts.Dir, err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		filename := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", component, timestamp))

		file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания файла логов: %w", err)
		}
		l.file = file
		l.fileLogger = log.New(file, "", log.LstdFlags)
	}

	return l, nil
}

// Close закрывает файл логов
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// Component возвращает имя компонента
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) Trace(format string, args ...interface{}) { l.log(TRACE, format, args...) }
func (l *Logger) Debug(format string, args ...interface{}) { l.log(DEBUG, format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.log(INFO, format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.log(WARN, format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.log(ERROR, format, args...) }

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	toFile := l.fileLogger != nil && level >= l.minFileLevel
	toConsole := l.consoleLogger != nil && level >= l.minConsoleLevel
	if !toFile && !toConsole {
		return
	}

	message := fmt.Sprintf("[%s] [%s] %s", level.String(), l.component, fmt.Sprintf(format, args...))

	if toFile {
		l.fileLogger.Println(message)
	}
	if toConsole {
		l.consoleLogger.Println(message)
	}
}

// InitDefaultLogger инициализирует глобальный логгер
func InitDefaultLogger(component string) error {
	return InitDefaultLoggerWithOptions(component, Options{Dir: "logs", ConsoleLevel: INFO, FileLevel: DEBUG})
}

// InitDefaultLoggerWithOptions инициализирует глобальный логгер с явными параметрами.
// Параметры запоминаются и используются менеджером для логгеров компонентов.
func InitDefaultLoggerWithOptions(component string, opts Options) error {
	l, err := NewLoggerWithOptions(component, opts)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	old := defaultLogger
	defaultLogger = l
	defaultOpts = opts
	defaultMu.Unlock()

	if old != nil {
		_ = old.Close()
	}
	return nil
}

// CloseDefaultLogger закрывает глобальный логгер и логгеры компонентов
func CloseDefaultLogger() {
	defaultMu.Lock()
	l := defaultLogger
	defaultLogger = nil
	defaultOpts = Options{ConsoleLevel: INFO, FileLevel: DEBUG, DisableConsole: true}
	defaultMu.Unlock()

	if l != nil {
		_ = l.Close()
	}
	_ = GetLoggerManager().CloseAll()
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Функции глобального логгера. До InitDefaultLogger сообщения отбрасываются.

func Trace(format string, args ...interface{}) { current().log(TRACE, format, args...) }
func Debug(format string, args ...interface{}) { current().log(DEBUG, format, args...) }
func Info(format string, args ...interface{})  { current().log(INFO, format, args...) }
func Warn(format string, args ...interface{})  { current().log(WARN, format, args...) }
func Error(format string, args ...interface{}) { current().log(ERROR, format, args...) }
