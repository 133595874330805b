// Command mcp-server exposes image generation as MCP tools over
// streamable HTTP. It drives the same engine as the gateway, so agent
// frameworks can generate images without speaking the pipe protocol.
//
// Tools:
//
//	generate_image - generates an image from a prompt, returns markdown
//	list_models    - lists the routable model menu
//
// Configuration is shared with the gateway (see cmd/server); the listen
// port comes from FALPIPE_MCP_PORT (default: 8081).
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bmertz/falpipe/pkg/api"
	"github.com/bmertz/falpipe/pkg/config"
	"github.com/bmertz/falpipe/pkg/debug"
	"github.com/bmertz/falpipe/pkg/engine"
	"github.com/bmertz/falpipe/pkg/provider/fal"
	"github.com/bmertz/falpipe/pkg/registry"
	"github.com/bmertz/falpipe/pkg/settings"
	"github.com/bmertz/falpipe/pkg/settings/memory"
	"github.com/bmertz/falpipe/pkg/settings/postgres"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("mcp server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	debug.Init(cfg.Observability.Logging.Debug, cfg.Observability.Logging.Level)

	port := os.Getenv("FALPIPE_MCP_PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()

	var store settings.Store
	if cfg.Storage.Type == "postgres" {
		pg, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			MaxConnLifetime: cfg.Storage.Postgres.MaxConnLifetime,
			MigrateOnStart:  cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return fmt.Errorf("connecting to postgres: %w", err)
		}
		if err := pg.EnsureDefault(ctx, cfg.Pipe.Initial); err != nil {
			pg.Close()
			return fmt.Errorf("seeding settings: %w", err)
		}
		store = pg
	} else {
		store = memory.New(cfg.Pipe.Initial)
	}
	defer store.Close()

	prov := fal.New(fal.Config{
		QueueURL:     cfg.Backend.QueueURL,
		Timeout:      cfg.Backend.Timeout,
		PollInterval: cfg.Backend.PollInterval,
	})
	defer prov.Close()

	reg := registry.Default()
	eng, err := engine.New(reg, prov, store)
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	menu := reg.List()
	defaultModel := menu[0].ID

	server := mcp.NewServer(
		&mcp.Implementation{Name: "falpipe-mcp", Version: "v1.0.0"},
		nil,
	)

	// Add "generate_image" tool.
	type GenerateInput struct {
		Prompt string `json:"prompt" jsonschema_description:"Text description of the image to generate"`
		Model  string `json:"model,omitempty" jsonschema_description:"Menu model to route through (defaults to the first menu entry)"`
	}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_image",
		Description: "Generates an image from a text prompt and returns a markdown image link",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input GenerateInput) (*mcp.CallToolResult, struct{}, error) {
		model := input.Model
		if model == "" {
			model = defaultModel
		}
		result := eng.Pipe(ctx, &api.ChatRequest{
			Model: model,
			Messages: []api.Message{
				{Role: api.RoleUser, Content: api.StringContent(input.Prompt)},
			},
		}, nil)
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Content}},
			IsError: result.Status == api.PipeStatusFailed,
		}, struct{}{}, nil
	})

	// Add "list_models" tool.
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_models",
		Description: "Lists the model identifiers that generate_image accepts",
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, struct{}, error) {
		var sb strings.Builder
		for _, m := range menu {
			fmt.Fprintf(&sb, "%s - %s\n", m.ID, m.Name)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: sb.String()}},
		}, struct{}{}, nil
	})

	// Serve via streamable HTTP on /mcp.
	handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)

	httpMux := http.NewServeMux()
	httpMux.Handle("/mcp", handler)
	httpMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok\n"))
	})

	slog.Info("mcp server starting", "port", port, "queue", cfg.Backend.QueueURL)
	return http.ListenAndServe(":"+port, httpMux)
}
