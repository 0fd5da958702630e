package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leadgrid/workflow-bridge/client"
)

// runWait blocks until a result arrives, racing both delivery paths: an SSE
// subscription and a poll session. Whichever produces a result first wins and
// cancels the other.
func runWait(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("wait", flag.ContinueOnError)
	baseURL := fs.String("url", ctx.Config.HTTP.BaseURL, "bridge base URL")
	interval := fs.Duration("interval", ctx.Config.Workflow.PollInterval, "poll cadence")
	timeout := fs.Duration("timeout", ctx.Config.Workflow.PollTimeout, "overall wait deadline")
	if err := fs.Parse(args); err != nil {
		return err
	}

	pollClient, err := client.NewPollClient(*baseURL,
		client.WithInterval(*interval),
		client.WithTimeout(*timeout),
		client.WithLogger(ctx.Logger),
	)
	if err != nil {
		return err
	}

	waitCtx, cancel := context.WithCancel(ctx.Ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(waitCtx)
	results := make(chan string, 2)

	g.Go(func() error {
		payload, streamErr := streamFirstEvent(gctx, *baseURL)
		if streamErr != nil {
			// Push is best-effort here, the poll loop covers the result.
			ctx.Logger.Debug("event stream ended without a result", "error", streamErr)
			return nil
		}
		results <- payload
		cancel()
		return nil
	})

	g.Go(func() error {
		session := pollClient.Start()
		defer session.Cancel()

		select {
		case <-gctx.Done():
			return nil
		case outcome := <-session.Result():
			if outcome.Err != nil {
				if errors.Is(outcome.Err, client.ErrCanceled) {
					return nil
				}
				return outcome.Err
			}
			results <- string(outcome.Result.Payload)
			cancel()
			return nil
		}
	})

	if err := g.Wait(); err != nil {
		return err
	}

	select {
	case payload := <-results:
		fmt.Fprintf(os.Stdout, "%s\n", payload)
		return nil
	default:
		return errors.New("wait ended without a result")
	}
}

// streamFirstEvent subscribes to the SSE endpoint and returns the payload of
// the first data frame, skipping keep-alive comments.
func streamFirstEvent(ctx context.Context, baseURL string) (string, error) {
	endpoint := strings.TrimRight(baseURL, "/") + "/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build events request: %w", err)
	}

	// No client timeout: the stream stays open until a result or ctx cancel.
	httpClient := &http.Client{Timeout: 0}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("open event stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("event stream returned %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if payload, ok := strings.CutPrefix(line, "data: "); ok {
			return payload, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("read event stream: %w", err)
	}
	return "", errors.New("event stream closed before a result arrived")
}
