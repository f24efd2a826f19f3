package logger

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// Logger - глобальный экземпляр логгера сервиса
var Logger = logrus.New()

// Options - параметры логгера
type Options struct {
	Service string
	Level   string    // debug, info, warn, error; пусто - info
	Format  string    // json (по умолчанию) или text
	Output  io.Writer // по умолчанию os.Stdout
}

// Init инициализирует глобальный структурированный логгер.
// Уровень берётся из LOG_LEVEL.
func Init(serviceName string) *logrus.Logger {
	Logger = New(Options{
		Service: serviceName,
		Level:   os.Getenv("LOG_LEVEL"),
	})
	return Logger
}

// New создаёт логгер без изменения глобального
func New(opts Options) *logrus.Logger {
	l := logrus.New()

	if opts.Output != nil {
		l.SetOutput(opts.Output)
	} else {
		l.SetOutput(os.Stdout)
	}

	if opts.Format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "ts",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}

	l.SetLevel(logrus.InfoLevel)
	if opts.Level != "" {
		if lvl, err := logrus.ParseLevel(opts.Level); err == nil {
			l.SetLevel(lvl)
		}
	}

	// Поле service во всех записях
	if opts.Service != "" {
		l.AddHook(serviceHook{service: opts.Service})
	}

	return l
}

type serviceHook struct {
	service string
}

func (h serviceHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = h.service
	}
	return nil
}

// WithRequestID добавляет request-id в контекст логгера
func WithRequestID(logger *logrus.Logger, requestID string) *logrus.Entry {
	if requestID == "" {
		return logrus.NewEntry(logger)
	}
	return logger.WithField("request_id", requestID)
}
