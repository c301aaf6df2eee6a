package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options selects the log output. An empty Format is human readable in
// development and JSON otherwise; an empty Level is debug in development and
// info otherwise.
type Options struct {
	Format string
	Level  string
	Dev    bool
}

// New builds a timestamped logger writing to w. An unknown level falls back
// to the default and is reported as an error.
func New(w io.Writer, o Options) (zerolog.Logger, zerolog.Level, error) {
	output := w
	if o.Format == "human" || (o.Format == "" && o.Dev) {
		output = zerolog.ConsoleWriter{Out: w}
	}

	level := zerolog.InfoLevel
	if o.Dev {
		level = zerolog.DebugLevel
	}

	var err error
	if o.Level != "" {
		parsed, perr := zerolog.ParseLevel(o.Level)
		if perr != nil || parsed == zerolog.NoLevel {
			err = fmt.Errorf("unknown log level %q", o.Level)
		} else {
			level = parsed
		}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Logger()
	return logger, level, err
}

// Setup installs the logger as the global zerolog logger on stdout.
func Setup(o Options) error {
	logger, level, err := New(os.Stdout, o)
	zerolog.SetGlobalLevel(level)
	log.Logger = logger
	return err
}
