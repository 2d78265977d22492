package main

import (
	"os"

	_ "github.com/jimmicro/version"
	"github.com/jimyag/pvetpl/pkg/opserror"
	"github.com/rs/zerolog"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	if err := newRootCmd().Execute(); err != nil {
		logger.Error().Err(err).Msg("Provisioning failed")
		os.Exit(opserror.ExitCodeOf(err))
	}
}
