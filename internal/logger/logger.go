package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var log zerolog.Logger

func Init(level string, pretty bool) {
	// Parse log level
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zerolog.SetGlobalLevel(lvl)

	var output io.Writer = os.Stdout
	if pretty {
		output = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	log = zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}

func Get() *zerolog.Logger {
	return &log
}

func WithComponent(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// WithQueue tags a logger with the queue it belongs to. Callers inside
// internal/taskqueue use this instead of WithComponent so every log line
// a given Queue emits carries its own name, not just "taskqueue".
func WithQueue(name string) zerolog.Logger {
	return log.With().Str("queue", name).Logger()
}

// WithWorker tags a logger with a worker goroutine's number within its
// pool. Worker identity in this queue is a plain incrementing int
// (spawnWorkerLocked's live count), not a string ID.
func WithWorker(workerNum int) zerolog.Logger {
	return log.With().Int("worker_id", workerNum).Logger()
}

// WithTask tags a logger with a task's ID. Task IDs in this queue are
// caller-supplied int64s, not strings.
func WithTask(taskID int64) zerolog.Logger {
	return log.With().Int64("task_id", taskID).Logger()
}

// Convenience methods
func Debug() *zerolog.Event {
	return log.Debug()
}

func Info() *zerolog.Event {
	return log.Info()
}

func Warn() *zerolog.Event {
	return log.Warn()
}

func Error() *zerolog.Event {
	return log.Error()
}

func Fatal() *zerolog.Event {
	return log.Fatal()
}
