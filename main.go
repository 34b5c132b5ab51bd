package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/acheong08/FlatpeakAuth/auth"
	"github.com/acheong08/FlatpeakAuth/config"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file read when a setting is not in the environment")
	flag.Parse()

	os.Exit(run(*envFile))
}

func run(envFile string) int {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load(envFile)
	if err != nil {
		logger.Error().Err(err).Msg("load config")
		return 2
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}
	logger = logger.With().Str("run_id", uuid.NewString()).Logger()

	prompt := auth.NewPromptCode()
	prompt.Notice = "Enter the one-time password sent to " + cfg.Email + " and press Enter."
	var codes auth.CodeSource = prompt
	if cfg.OtpCode != "" {
		codes = auth.StaticCode(cfg.OtpCode)
	}

	authenticator, err := auth.NewAuthenticator(cfg.Email, cfg.Auth(), codes, logger)
	if err != nil {
		logger.Error().Err(err).Msg("create authenticator")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := authenticator.Run(ctx)
	if err != nil {
		println("Error: " + err.Error())
		var authErr *auth.Error
		if errors.As(err, &authErr) && authErr.StatusCode != 0 {
			println("Status code: " + fmt.Sprint(authErr.StatusCode))
			println("Body: " + authErr.Body)
		}
		if errors.Is(err, auth.ErrExtractionIncomplete) && result != nil {
			println("Raw response: " + string(result.Raw))
		}
		return 1
	}

	fmt.Println("Account ID: " + result.Credentials.AccountID)
	fmt.Println("Test secret key: " + result.Credentials.TestSecretKey)
	return 0
}
