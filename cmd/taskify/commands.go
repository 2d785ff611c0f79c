package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/germanamz/taskify/cmd/taskify/internal/styles"
	"github.com/germanamz/taskify/cmd/taskify/internal/tui"
	"github.com/germanamz/taskify/cmd/taskify/internal/wizard"
	"github.com/germanamz/taskify/pkg/engine"
	"github.com/germanamz/taskify/pkg/relay"
	"github.com/germanamz/taskify/pkg/tools/mcpserver"
)

func runServe(ctx context.Context, args []string) error {
	fs, common := newFlagSet("serve", "Run the HTTP relay.")
	listen := fs.String("listen", "", "listen address (overrides the config)")
	_ = fs.Parse(args)

	cfg, err := loadConfig(common)
	if err != nil {
		return err
	}
	if *listen != "" {
		cfg.Listen = *listen
	}

	log, err := engine.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}

	log.Info("relay starting", "listen", cfg.Listen, "candidates", len(eng.Candidates()), "version", version)

	return relay.New(eng, relay.OptionsFrom(eng)).ListenAndServe(ctx, cfg.Listen)
}

func runMCP(ctx context.Context, args []string) error {
	fs, common := newFlagSet("mcp", "Serve the relay as an MCP \"chat\" tool over stdio.")
	_ = fs.Parse(args)

	cfg, err := loadConfig(common)
	if err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr.
	log, err := engine.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, engine.WithLogger(log))
	if err != nil {
		return err
	}

	srv := mcpserver.New("taskify", version)
	srv.RegisterBox(relay.Tools(eng, log))

	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

func runChat(ctx context.Context, args []string) error {
	fs, common := newFlagSet("chat", "Chat from the terminal, in-process or against a running relay.")
	url := fs.String("url", "", "relay base URL (default: run the fallback sequence in-process)")
	_ = fs.Parse(args)

	dir, err := os.Getwd()
	if err != nil {
		return err
	}

	opts := tui.Options{Dir: dir}

	if *url != "" {
		if err := loadDotEnv(common.envFile); err != nil {
			return err
		}
		opts.Sender = remoteSender(relay.NewClient(*url, nil))
		opts.Target = *url
	} else {
		cfg, err := loadConfig(common)
		if err != nil {
			return err
		}
		// The terminal owns the screen, so the in-process engine stays quiet.
		eng, err := engine.New(cfg, engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
		if err != nil {
			return err
		}
		opts.Sender = localSender(eng)
		opts.Target = "in-process · " + strconv.Itoa(len(eng.Candidates())) + " models"
	}

	return tui.Run(ctx, opts)
}

func runInit(args []string) error {
	fs, _ := newFlagSet("init", "Write a starter configuration interactively.")
	out := fs.String("out", defaultConfigFile, "file to write")
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(args)

	if _, err := os.Stat(*out); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", *out)
	}

	answers, err := wizard.Run()
	if err != nil {
		return err
	}

	data, err := wizard.Render(answers)
	if err != nil {
		return err
	}

	if err := os.WriteFile(*out, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Wrote %s\n", *out)

	return nil
}

func runModels(ctx context.Context, args []string) error {
	fs, common := newFlagSet("models", "List the model candidates in fallback order.")
	url := fs.String("url", "", "ask a running relay instead of the local configuration")
	_ = fs.Parse(args)

	var models []relay.ModelInfo

	if *url != "" {
		var err error
		if models, err = relay.NewClient(*url, nil).Models(ctx); err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig(common)
		if err != nil {
			return err
		}
		cs, err := cfg.ModelCandidates()
		if err != nil {
			return err
		}
		models = relay.ModelInfos(cs)
	}

	if len(models) == 0 {
		return errors.New("no model candidates configured")
	}

	fmt.Println(modelsTable(models))

	return nil
}

func modelsTable(models []relay.ModelInfo) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.Dim).
		Headers("#", "NAME", "ID", "BACKEND", "TEMPLATE", "WINDOW")

	for i, m := range models {
		t.Row(strconv.Itoa(i+1), m.Name, m.ID, m.Backend, string(m.Template), strconv.Itoa(m.Window))
	}

	return t.Render()
}
