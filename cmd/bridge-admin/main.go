// bridge-admin is an operator CLI for poking a running workflow bridge:
// submit a callback, clear the result slot, poll once, or wait for a result.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/leadgrid/workflow-bridge/client"
	"github.com/leadgrid/workflow-bridge/config"
	"github.com/leadgrid/workflow-bridge/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
}

const defaultRequestTimeout = 10 * time.Second

func main() {
	logger := bootstrap.InitLogger()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cmdName := os.Args[1]
	cmd, ok := commands()[cmdName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", cmdName)
		printUsage()
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	cmdCtx := &commandContext{
		Ctx:    context.Background(),
		Logger: logger,
		Config: cfg,
	}
	if runErr := cmd.run(cmdCtx, os.Args[2:]); runErr != nil {
		logger.ErrorContext(cmdCtx.Ctx, "command failed", "command", cmdName, "error", runErr)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

func commands() map[string]command {
	return map[string]command{
		"submit": {
			name:        "submit",
			description: "Post a workflow result callback to the bridge",
			run:         runSubmit,
		},
		"clear": {
			name:        "clear",
			description: "Clear any stored result from the slot",
			run:         runClear,
		},
		"poll": {
			name:        "poll",
			description: "Query the slot once and print the result or pending",
			run:         runPoll,
		},
		"wait": {
			name:        "wait",
			description: "Block until a result arrives via push or pull",
			run:         runWait,
		},
	}
}

func printUsage() {
	fmt.Fprintf(os.Stdout, "Usage: bridge-admin <command> [flags]\n\n")
	fmt.Fprintf(os.Stdout, "Available commands:\n")
	for _, c := range commands() {
		fmt.Fprintf(os.Stdout, "  %-10s %s\n", c.name, c.description)
	}
}

func runSubmit(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ContinueOnError)
	baseURL := fs.String("url", ctx.Config.HTTP.BaseURL, "bridge base URL")
	status := fs.String("status", "success", "status field of the callback")
	message := fs.String("message", "", "message field of the callback")
	failedNode := fs.String("failed-node", "", "failed_node field for failure callbacks")
	fromStdin := fs.Bool("stdin", false, "read the raw JSON body from stdin instead of flags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var body []byte
	if *fromStdin {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		body = raw
	} else {
		payload := map[string]string{
			"status":    *status,
			"message":   *message,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}
		if *failedNode != "" {
			payload["failed_node"] = *failedNode
		}
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode payload: %w", err)
		}
		body = encoded
	}

	reqCtx, cancel := context.WithTimeout(ctx.Ctx, defaultRequestTimeout)
	defer cancel()

	endpoint := strings.TrimRight(*baseURL, "/") + "/webhook/status"
	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("submit callback: %w", err)
	}
	defer resp.Body.Close()

	ack, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned %d: %s", resp.StatusCode, strings.TrimSpace(string(ack)))
	}
	fmt.Fprintf(os.Stdout, "%s\n", strings.TrimSpace(string(ack)))
	return nil
}

func runClear(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("clear", flag.ContinueOnError)
	baseURL := fs.String("url", ctx.Config.HTTP.BaseURL, "bridge base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pollClient, err := client.NewPollClient(*baseURL)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx.Ctx, defaultRequestTimeout)
	defer cancel()

	if err := pollClient.Invalidate(reqCtx); err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, "slot cleared")
	return nil
}

func runPoll(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("poll", flag.ContinueOnError)
	baseURL := fs.String("url", ctx.Config.HTTP.BaseURL, "bridge base URL")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pollClient, err := client.NewPollClient(*baseURL)
	if err != nil {
		return err
	}

	reqCtx, cancel := context.WithTimeout(ctx.Ctx, defaultRequestTimeout)
	defer cancel()

	result, err := pollClient.Poll(reqCtx)
	if err != nil {
		return err
	}
	if result == nil {
		fmt.Fprintln(os.Stdout, "pending")
		return nil
	}
	fmt.Fprintf(os.Stdout, "%s\n", result.Payload)
	return nil
}
