// Command authshim is the Lambda entry point that fronts the GoTrue binary.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/valislegal/valis/internal/authproxy"
)

func main() {
	cfg, err := authproxy.LoadConfig()
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	launcher := authproxy.NewExecLauncher(cfg, logger)
	supervisor := authproxy.NewSupervisor(launcher, cfg.GracePeriod, logger)
	proxy := authproxy.NewProxy(supervisor, nil, logger)

	lambda.Start(authproxy.NewHandler(proxy).Handle)
}
