// Package logger registro estructurado del servicio de CMV sobre zerolog.
// Cada línea lleva el servicio y, vía Component, el módulo que la emite;
// los casos de uso añaden venue_id, year y week.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config salida y nivel del registro.
type Config struct {
	Env     string // development: consola legible; cualquier otro: JSON
	Level   string // trace, debug, info, warn, error (desconocido: info)
	Service string // valor del campo service; vacío lo omite
}

// Logger se inyecta en los casos de uso; nunca se usa el global de zerolog.
type Logger struct {
	zl zerolog.Logger
}

// New arma el logger del proceso y lo deja también como global de zerolog
// para las librerías que escriben ahí.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	ctx := zerolog.New(w).Level(parseLevel(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	zl := ctx.Logger()
	log.Logger = zl

	return &Logger{zl: zl}
}

func parseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Nop descarta todo; lo usan los tests de los casos de uso.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Trace, Debug, Info, Warn, Error y Fatal abren un evento en el nivel indicado.
func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// Component devuelve un sublogger etiquetado con el componente que emite
// (weekly_sync, bulk_recalc, retro_sync, ...).
func (l *Logger) Component(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", name).Logger()}
}
