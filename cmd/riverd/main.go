// Command riverd runs the reference River HTTP server: a chat-style demo
// stream (grounded on original_source's chat_demo) registered against the
// Redis backend, served over riverhttp.
//
// Adapted from matgreaves/rig's cmd/rigd: listen, serve in the background,
// shut down on signal or serve error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/leonj1/river"
	"github.com/leonj1/river/redislog"
	"github.com/leonj1/river/resume"
	"github.com/leonj1/river/riverhttp"
	"github.com/leonj1/river/router"
	"github.com/leonj1/river/runner"
	"github.com/leonj1/river/schema"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "listen address")
	flag.Parse()

	cfg, err := riverhttp.ParseConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "riverd: %v\n", err)
		os.Exit(1)
	}

	backend, err := redislog.Connect(redislog.Config{
		BackendURL:    cfg.RedisURL,
		KeyPrefix:     cfg.KeyPrefix,
		BlockDuration: cfg.BlockDuration,
		ReadCountCap:  cfg.ReadCountCap,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "riverd: connect redis: %v\n", err)
		os.Exit(1)
	}

	chatStream := river.NewStreamDefinition(
		schema.New(chatInputSchema),
		backend,
		"chat",
		chatRunner,
	)

	rt := router.New(
		map[string]river.StreamDefinition{"chat": chatStream},
		runner.Options{Logger: slog.Default()},
		resume.Options{IterationCap: cfg.ResumeIterationCap},
	)

	srv := riverhttp.NewServer(rt)

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "riverd: listen: %v\n", err)
		os.Exit(1)
	}

	slog.Info("riverd listening", "addr", ln.Addr())

	httpSrv := &http.Server{Handler: srv}

	serveErr := make(chan error, 1)
	go func() { serveErr <- httpSrv.Serve(ln) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("riverd: received signal, shutting down", "signal", sig)
	case err := <-serveErr:
		fmt.Fprintf(os.Stderr, "riverd: serve error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpSrv.Shutdown(ctx)
}

var chatInputSchema = &jsonschema.Schema{
	Type:     "object",
	Required: []string{"prompt"},
	Properties: map[string]*jsonschema.Schema{
		"prompt": {Type: "string"},
	},
}

// chatRunner simulates an AI response, streaming it word by word with a
// short delay between chunks (grounded on original_source's chat_demo
// server.py chat_runner).
func chatRunner(sctx *river.StreamContext) error {
	input := sctx.Input.(map[string]any)
	prompt, _ := input["prompt"].(string)

	response := fmt.Sprintf(
		"You asked: %q. The river library makes it easy to build durable, "+
			"resumable streams. This demo streams word by word and persists "+
			"every chunk to Redis. You can disconnect and resume at any time.",
		prompt,
	)

	words := strings.Fields(response)
	for i, word := range words {
		chunk := word
		if i > 0 {
			chunk = " " + word
		}
		if err := sctx.Stream.AppendChunk(sctx.Context, chunk); err != nil {
			return err
		}

		select {
		case <-time.After(50 * time.Millisecond):
		case <-sctx.Context.Done():
			return sctx.Context.Err()
		}
	}

	return nil
}
