package vertex

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"rag/internal/port"
)

// Embedder generates text embeddings through the Vertex AI prediction REST
// API for publisher text-embedding models.
type Embedder struct {
	token      string
	model      string
	baseURL    string
	projectID  string
	region     string
	httpClient *http.Client
}

type embedRequest struct {
	Instances []embedInstance `json:"instances"`
}

type embedInstance struct {
	Content  string `json:"content"`
	TaskType string `json:"task_type"`
}

type embedResponse struct {
	Predictions []struct {
		Embeddings struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	} `json:"predictions"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// NewEmbedder builds an embedder for the given project, region and model.
// Fails fast when credentials are missing so a bad setup is caught before
// the first document is touched.
func NewEmbedder(projectID, region, model, credentialsFile, tokenEnv string) (*Embedder, error) {
	token, err := loadToken(credentialsFile, tokenEnv)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		token:     token,
		model:     model,
		baseURL:   fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", region),
		projectID: projectID,
		region:    region,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// Embed generates one embedding per input text with the given intent,
// preserving input order. A nil entry means the model produced no vector
// for that specific text.
func (e *Embedder) Embed(texts []string, intent port.Intent) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	reqBody := embedRequest{Instances: make([]embedInstance, len(texts))}
	for i, text := range texts {
		reqBody.Instances[i] = embedInstance{Content: text, TaskType: string(intent)}
	}

	reqURL := fmt.Sprintf("%s/projects/%s/locations/%s/publishers/google/models/%s:predict",
		e.baseURL, e.projectID, e.region, e.model)

	var embResp embedResponse
	if err := postJSON(e.httpClient, e.token, reqURL, reqBody, &embResp); err != nil {
		return nil, err
	}
	if embResp.Error != nil {
		return nil, fmt.Errorf("embedding API error: %s", embResp.Error.Message)
	}

	vectors := make([][]float32, len(texts))
	for i, pred := range embResp.Predictions {
		if i >= len(vectors) {
			break
		}
		if len(pred.Embeddings.Values) > 0 {
			vectors[i] = pred.Embeddings.Values
		}
	}
	return vectors, nil
}

// ModelName returns the name of the embedding model.
func (e *Embedder) ModelName() string {
	return e.model
}

// loadToken verifies the service account key exists and reads the bearer
// token from the environment.
func loadToken(credentialsFile, tokenEnv string) (string, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return "", fmt.Errorf("service account key not found at %s: %w", credentialsFile, err)
	}
	token := os.Getenv(tokenEnv)
	if token == "" {
		return "", fmt.Errorf("access token not found in environment variable: %s", tokenEnv)
	}
	return token, nil
}

// postJSON sends an authorized JSON POST and decodes the JSON response.
func postJSON(client *http.Client, token, reqURL string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, reqURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		preview := string(respBody)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return fmt.Errorf("failed to parse response (body: %s): %w", preview, err)
	}
	return nil
}
