// Command evaluate posts one listing to a running validator and prints the decision.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type envConfig struct {
	ServerURL string        `env:"VALIDATOR_URL,default=http://localhost:8000"`
	APIKey    string        `env:"API_KEY"`
	Timeout   time.Duration `env:"VALIDATOR_TIMEOUT,default=3m"`
}

func main() {
	ctx := context.Background()
	_ = godotenv.Load()

	var env envConfig
	if err := envconfig.Process(ctx, &env); err != nil {
		clog.FatalContextf(ctx, "Failed to process environment: %v", err)
	}

	var (
		imagePath    = flag.String("image", "", "path to the product image")
		title        = flag.String("title", "", "listing title")
		description  = flag.String("description", "", "listing description")
		llmOnly      = flag.Bool("llm-only", false, "skip similarities and ask the vision model directly")
		simLow       = flag.Float64("sim-low", -1, "override sim_low")
		simHigh      = flag.Float64("sim-high", -1, "override sim_high")
		embeddingDim = flag.Int("embedding-dim", 0, "override embedding_dim")
	)
	flag.Parse()

	if *imagePath == "" || *title == "" || *description == "" {
		flag.Usage()
		os.Exit(2)
	}

	fields := map[string]string{
		"title":       *title,
		"description": *description,
	}
	if *simLow >= 0 {
		fields["sim_low"] = strconv.FormatFloat(*simLow, 'g', -1, 64)
	}
	if *simHigh >= 0 {
		fields["sim_high"] = strconv.FormatFloat(*simHigh, 'g', -1, 64)
	}
	if *embeddingDim > 0 {
		fields["embedding_dim"] = strconv.Itoa(*embeddingDim)
	}

	endpoint := "/evaluate"
	if *llmOnly {
		endpoint = "/evaluate/llm-only"
	}

	status, body, err := post(ctx, env, endpoint, *imagePath, fields)
	if err != nil {
		clog.FatalContextf(ctx, "Request failed: %v", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		pretty.Write(body)
	}
	fmt.Printf("%s %s\n%s\n", endpoint, http.StatusText(status), pretty.String())
	if status != http.StatusOK {
		os.Exit(1)
	}
}

func post(ctx context.Context, env envConfig, endpoint, imagePath string, fields map[string]string) (int, []byte, error) {
	image, err := os.ReadFile(imagePath)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read image: %w", err)
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filepath.Base(imagePath))
	if err != nil {
		return 0, nil, err
	}
	if _, err := part.Write(image); err != nil {
		return 0, nil, err
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return 0, nil, err
		}
	}
	if err := w.Close(); err != nil {
		return 0, nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, env.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, env.ServerURL+endpoint, &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if env.APIKey != "" {
		req.Header.Set("x-api-key", env.APIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
