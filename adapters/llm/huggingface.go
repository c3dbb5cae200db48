package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shovelbot/shovel/domain"
)

const (
	DefaultBaseURL = "https://api-inference.huggingface.co"
	DefaultModel   = "Qwen/Qwen2.5-Coder-32B-Instruct"

	DefaultTemperature = 0.5
	DefaultMaxTokens   = 512
	DefaultTopP        = 0.7
)

// Config is the fixed sampling setup for one client. Zero values fall
// back to the defaults above.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// HuggingFaceClient calls the hosted text-generation inference endpoint.
// It is stateless: every Generate call sends only the given prompt.
type HuggingFaceClient struct {
	apiKey string
	config Config
	client *http.Client
}

var _ domain.Llm = (*HuggingFaceClient)(nil)

func NewHuggingFaceClient(apiKey string, config Config) *HuggingFaceClient {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.TopP == 0 {
		config.TopP = DefaultTopP
	}
	return &HuggingFaceClient{
		apiKey: apiKey,
		config: config,
		client: http.DefaultClient,
	}
}

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	Temperature  float64 `json:"temperature"`
	MaxNewTokens int     `json:"max_new_tokens"`
	TopP         float64 `json:"top_p"`
}

func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			Temperature:  c.config.Temperature,
			MaxNewTokens: c.config.MaxTokens,
			TopP:         c.config.TopP,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", c.config.BaseURL, c.config.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling inference endpoint: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.RequestError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return decodeGeneratedText(raw)
}

// decodeGeneratedText accepts the two recognized success shapes: a list
// whose first element carries generated_text, or a bare object carrying
// it directly. Anything else is a DecodingError holding the raw body.
func decodeGeneratedText(raw []byte) (string, error) {
	var asList []struct {
		GeneratedText *string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &asList); err == nil {
		if len(asList) > 0 && asList[0].GeneratedText != nil {
			return *asList[0].GeneratedText, nil
		}
		return "", &domain.DecodingError{Body: string(raw)}
	}

	var asObject struct {
		GeneratedText *string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &asObject); err == nil && asObject.GeneratedText != nil {
		return *asObject.GeneratedText, nil
	}

	return "", &domain.DecodingError{Body: string(raw)}
}
