// Command falpipe is a terminal client for a running falpipe gateway.
//
//	falpipe models
//	falpipe generate "a sunset over mountains" --model falai-flux-ultra
//	falpipe generate "a cat" --stream
//
// The gateway address comes from --url or FALPIPE_URL (default:
// http://localhost:8080). When FALPIPE_API_KEY is set it is sent as a
// bearer token.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bmertz/falpipe/pkg/api"
)

func main() {
	cobra.CheckErr(NewCLI().Execute())
}

func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "falpipe",
		Short: "Image generation gateway client",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	rootCmd.PersistentFlags().String("url", defaultGatewayURL(), "gateway base URL")

	cobra.EnableCommandSorting = false

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List routable models",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(cmd)
			var list api.ModelList
			if err := c.getJSON("/v1/models", &list); err != nil {
				return err
			}
			for _, m := range list.Data {
				fmt.Printf("%-20s %s\n", m.ID, m.Name)
			}
			return nil
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate [prompt]",
		Short: "Generate an image and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, _ := cmd.Flags().GetString("model")
			stream, _ := cmd.Flags().GetBool("stream")

			c := newClient(cmd)
			req := &api.ChatRequest{
				Model: model,
				Messages: []api.Message{
					{Role: api.RoleUser, Content: api.StringContent(args[0])},
				},
				Stream: stream,
			}
			if stream {
				return c.generateStream(req)
			}
			return c.generate(req)
		},
	}
	generateCmd.Flags().StringP("model", "m", "falai-z-image", "menu model to route through")
	generateCmd.Flags().Bool("stream", false, "print status events while the generation runs")

	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show the gateway's current settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			c := newClient(cmd)
			var doc map[string]any
			if err := c.getJSON("/v1/settings", &doc); err != nil {
				return err
			}
			out, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	rootCmd.AddCommand(
		modelsCmd,
		generateCmd,
		settingsCmd,
	)

	return rootCmd
}

func defaultGatewayURL() string {
	if v := os.Getenv("FALPIPE_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

// --- Gateway client ---

type client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func newClient(cmd *cobra.Command) *client {
	url, _ := cmd.Flags().GetString("url")
	return &client{
		baseURL: strings.TrimRight(url, "/"),
		apiKey:  os.Getenv("FALPIPE_API_KEY"),
		// Generations can take minutes on congested queues.
		http: &http.Client{Timeout: 5 * time.Minute},
	}
}

func (c *client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

func (c *client) getJSON(path string, out any) error {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gatewayError(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *client) postPipe(chatReq *api.ChatRequest) (*http.Response, error) {
	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/v1/pipe", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, gatewayError(resp)
	}
	return resp, nil
}

func (c *client) generate(chatReq *api.ChatRequest) error {
	resp, err := c.postPipe(chatReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var pipeResp api.PipeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pipeResp); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}

	fmt.Println(pipeResp.Content)
	if pipeResp.Status == api.PipeStatusFailed {
		return errors.New("generation failed")
	}
	return nil
}

// generateStream consumes the SSE stream, echoing status descriptions to
// stderr as they arrive and the final content to stdout.
func (c *client) generateStream(chatReq *api.ChatRequest) error {
	resp, err := c.postPipe(chatReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	var event string
	var failed, sawResult bool

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			if data == "[DONE]" {
				if failed {
					return errors.New("generation failed")
				}
				return nil
			}
			switch event {
			case string(api.EventStatus):
				var ev api.StatusEvent
				if err := json.Unmarshal([]byte(data), &ev); err != nil {
					continue
				}
				fmt.Fprintln(os.Stderr, ev.Description)
			case string(api.EventResult):
				var res api.PipeResponse
				if err := json.Unmarshal([]byte(data), &res); err != nil {
					continue
				}
				fmt.Println(res.Content)
				failed = res.Status == api.PipeStatusFailed
				sawResult = true
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if !sawResult {
		return errors.New("stream ended without a result")
	}
	if failed {
		return errors.New("generation failed")
	}
	return nil
}

func gatewayError(resp *http.Response) error {
	var er api.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err == nil && er.Error != nil {
		return fmt.Errorf("gateway error: %s", er.Error.Message)
	}
	return fmt.Errorf("gateway returned HTTP %d", resp.StatusCode)
}
