package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/cratedex/internal/services"
	"github.com/desertthunder/cratedex/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	configPath := defaultConfigPath
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	var spotifyService services.Service
	spotify := &config.Credentials.Spotify
	if spotify.ClientID != "" && spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(spotify.Map()); err == nil {
			if token := spotify.Token(); token.AccessToken != "" || token.RefreshToken != "" {
				if err := svc.AuthenticateToken(context.Background(), token); err != nil {
					logger.Warn("stored token rejected", "error", err)
				}
			}
			spotifyService = svc
		} else {
			logger.Warn("failed to create spotify service", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Spotify:    spotifyService,
		Logger:     logger,
	})

	if svc, ok := spotifyService.(*services.SpotifyService); ok {
		svc.SetTokenRefreshCallback(func(token *oauth2.Token) {
			if err := runner.saveTokens(token); err != nil {
				logger.Warn("failed to persist refreshed token", "error", err)
			}
		})
	}

	app := &cli.Command{
		Name:     "cratedex",
		Usage:    "Export your Spotify liked songs with audio features to CSV",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
