package main

import (
	"context"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/germanamz/taskify/cmd/taskify/internal/tui"
	"github.com/germanamz/taskify/pkg/chats/message"
	"github.com/germanamz/taskify/pkg/engine"
	"github.com/germanamz/taskify/pkg/relay"
)

const defaultConfigFile = "taskify.yaml"

// loadDotEnv loads environment variables from path. Missing files are ignored.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// resolveConfigPath returns the config file to use: the explicit flag, then
// taskify.yaml when it exists. Empty means the built-in defaults.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(defaultConfigFile); err == nil {
		return defaultConfigFile
	}
	return ""
}

// loadConfig loads the .env file and then the configuration, so that
// ${VAR} references in the YAML see its values.
func loadConfig(c *commonFlags) (engine.Config, error) {
	if err := loadDotEnv(c.envFile); err != nil {
		return engine.Config{}, err
	}

	path := resolveConfigPath(c.config)
	if path == "" {
		return engine.DefaultConfig(), nil
	}

	return engine.LoadConfig(path)
}

type chatter interface {
	Chat(ctx context.Context, turns []message.Message) (relay.Envelope, error)
}

func remoteSender(c chatter) tui.Sender {
	return tui.SenderFunc(func(ctx context.Context, turns []message.Message) (tui.Reply, error) {
		env, err := c.Chat(ctx, turns)
		if err != nil {
			return tui.Reply{}, err
		}
		return tui.Reply{Text: env.Text(), Model: env.Model}, nil
	})
}

func localSender(r relay.Relayer) tui.Sender {
	return tui.SenderFunc(func(ctx context.Context, turns []message.Message) (tui.Reply, error) {
		resp, err := r.Chat(ctx, turns, nil)
		if err != nil {
			return tui.Reply{}, err
		}
		return tui.Reply{Text: resp.Text, Model: resp.ModelUsed}, nil
	})
}
