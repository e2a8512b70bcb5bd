// Package obs provides the structured-logging wrapper used across the
// module, a thin layer over zerolog matching the console-writer setup the
// rest of the retrieval pack standardises on.
package obs

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init configures the package-global zerolog logger for component and
// returns it for callers that want a local handle instead of the global.
func Init(component string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("component", component).Logger()
	log.Logger = logger
	return logger
}
