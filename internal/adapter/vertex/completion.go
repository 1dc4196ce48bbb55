package vertex

import (
	"fmt"
	"net/http"
	"time"

	"rag/internal/port"
)

// Completer generates text through the Vertex AI prediction REST API for
// publisher text generation models.
type Completer struct {
	token      string
	model      string
	baseURL    string
	projectID  string
	region     string
	httpClient *http.Client
}

type completionRequest struct {
	Instances  []completionInstance `json:"instances"`
	Parameters completionParameters `json:"parameters"`
}

type completionInstance struct {
	Prompt string `json:"prompt"`
}

type completionParameters struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type completionResponse struct {
	Predictions []struct {
		Content string `json:"content"`
	} `json:"predictions"`
	Error *apiError `json:"error,omitempty"`
}

// NewCompleter builds a completion client for the given project, region
// and model.
func NewCompleter(projectID, region, model, credentialsFile, tokenEnv string) (*Completer, error) {
	token, err := loadToken(credentialsFile, tokenEnv)
	if err != nil {
		return nil, err
	}

	return &Completer{
		token:     token,
		model:     model,
		baseURL:   fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", region),
		projectID: projectID,
		region:    region,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Complete returns the generated text for the prompt. An empty result with
// a nil error means the model produced no output.
func (c *Completer) Complete(prompt string, params port.GenerationParams) (string, error) {
	reqBody := completionRequest{
		Instances: []completionInstance{{Prompt: prompt}},
		Parameters: completionParameters{
			Temperature:     params.Temperature,
			MaxOutputTokens: params.MaxOutputTokens,
			TopP:            params.TopP,
			TopK:            params.TopK,
		},
	}

	reqURL := fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:predict",
		c.baseURL, c.projectID, c.region, c.model)

	var compResp completionResponse
	if err := postJSON(c.httpClient, c.token, reqURL, reqBody, &compResp); err != nil {
		return "", err
	}
	if compResp.Error != nil {
		return "", fmt.Errorf("completion API error: %s", compResp.Error.Message)
	}

	if len(compResp.Predictions) == 0 {
		return "", nil
	}
	return compResp.Predictions[0].Content, nil
}

// ModelName returns the name of the completion model.
func (c *Completer) ModelName() string {
	return c.model
}
