package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const version = "0.1.0"

const usage = `Usage: taskify [command] [flags]

Commands:
  serve   Run the HTTP relay (default)
  chat    Chat from the terminal
  mcp     Serve the relay as an MCP tool over stdio
  init    Write a starter taskify.yaml interactively
  models  List the configured model candidates

Run "taskify <command> -h" for command flags.
`

func main() {
	args := os.Args[1:]
	name := "serve"
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		name, args = args[0], args[1:]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch name {
	case "serve":
		err = runServe(ctx, args)
	case "chat":
		err = runChat(ctx, args)
	case "mcp":
		err = runMCP(ctx, args)
	case "init":
		err = runInit(args)
	case "models":
		err = runModels(ctx, args)
	case "version":
		fmt.Println("taskify " + version)
	case "help":
		fmt.Fprint(os.Stderr, usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", name, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// commonFlags are shared by every command that loads a configuration.
type commonFlags struct {
	config  string
	envFile string
}

func newFlagSet(name, summary string) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: taskify %s [flags]\n\n%s\n\nFlags:\n", name, summary)
		fs.PrintDefaults()
	}

	c := &commonFlags{}
	fs.StringVar(&c.config, "config", "", "path to configuration file (default: "+defaultConfigFile+" when present)")
	fs.StringVar(&c.envFile, "env", ".env", "path to .env file (ignored if missing)")

	return fs, c
}
