package vectorsearch

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

// Client talks to a deployed Vertex AI Vector Search index over REST.
// Upserts go to the index resource; neighbor queries go to the endpoint
// the index is deployed on.
type Client struct {
	token           string
	baseURL         string
	projectID       string
	region          string
	indexID         string
	indexEndpointID string
	deployedIndexID string
	httpClient      *http.Client
}

// Config carries the resource identifiers of a deployed index.
type Config struct {
	ProjectID       string
	Region          string
	IndexID         string
	IndexEndpointID string
	DeployedIndexID string
	CredentialsFile string
	TokenEnv        string
}

type upsertRequest struct {
	Datapoints []datapoint `json:"datapoints"`
}

type datapoint struct {
	DatapointID   string        `json:"datapointId"`
	FeatureVector []float32     `json:"featureVector"`
	Restricts     []restriction `json:"restricts,omitempty"`
}

type restriction struct {
	Namespace string   `json:"namespace"`
	AllowList []string `json:"allowList"`
}

type findNeighborsRequest struct {
	DeployedIndexID string          `json:"deployedIndexId"`
	Queries         []neighborQuery `json:"queries"`
}

type neighborQuery struct {
	Datapoint     queryDatapoint `json:"datapoint"`
	NeighborCount int            `json:"neighborCount"`
}

type queryDatapoint struct {
	FeatureVector []float32 `json:"featureVector"`
}

type findNeighborsResponse struct {
	NearestNeighbors []struct {
		Neighbors []struct {
			Datapoint struct {
				DatapointID string `json:"datapointId"`
			} `json:"datapoint"`
			Distance float64 `json:"distance"`
		} `json:"neighbors"`
	} `json:"nearestNeighbors"`
}

// NewClient builds a vector search client. Construction fails when the
// credentials file or bearer token is missing.
func NewClient(cfg Config) (*Client, error) {
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		return nil, fmt.Errorf("service account key not found at %s: %w", cfg.CredentialsFile, err)
	}
	token := os.Getenv(cfg.TokenEnv)
	if token == "" {
		return nil, fmt.Errorf("access token not found in environment variable: %s", cfg.TokenEnv)
	}

	return &Client{
		token:           token,
		baseURL:         fmt.Sprintf("https://%s-aiplatform.googleapis.com/v1", cfg.Region),
		projectID:       cfg.ProjectID,
		region:          cfg.Region,
		indexID:         cfg.IndexID,
		indexEndpointID: cfg.IndexEndpointID,
		deployedIndexID: cfg.DeployedIndexID,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Upsert writes all records to the index in one batch. Attributes become
// restriction namespaces so they stay queryable on the index side.
func (c *Client) Upsert(records []port.Record) error {
	if len(records) == 0 {
		return nil
	}

	req := upsertRequest{Datapoints: make([]datapoint, 0, len(records))}
	for _, rec := range records {
		dp := datapoint{
			DatapointID:   rec.ID,
			FeatureVector: rec.Vector,
		}
		for key, value := range rec.Attributes {
			dp.Restricts = append(dp.Restricts, restriction{Namespace: key, AllowList: []string{value}})
		}
		req.Datapoints = append(req.Datapoints, dp)
	}

	reqURL := fmt.Sprintf("%s/projects/%s/locations/%s/indexes/%s:upsertDatapoints",
		c.baseURL, c.projectID, c.region, c.indexID)

	if err := c.postJSON(reqURL, req, nil); err != nil {
		return fmt.Errorf("upsert of %d datapoints failed: %w", len(records), err)
	}
	return nil
}

// FindNeighbors returns the k nearest datapoints, sorted by ascending
// distance as the API delivers them.
func (c *Client) FindNeighbors(vector []float32, k int) ([]port.Neighbor, error) {
	req := findNeighborsRequest{
		DeployedIndexID: c.deployedIndexID,
		Queries: []neighborQuery{{
			Datapoint:     queryDatapoint{FeatureVector: vector},
			NeighborCount: k,
		}},
	}

	reqURL := fmt.Sprintf("%s/projects/%s/locations/%s/indexEndpoints/%s:findNeighbors",
		c.baseURL, c.projectID, c.region, c.indexEndpointID)

	var resp findNeighborsResponse
	if err := c.postJSON(reqURL, req, &resp); err != nil {
		return nil, fmt.Errorf("neighbor query failed: %w", err)
	}

	if len(resp.NearestNeighbors) == 0 {
		return nil, nil
	}
	// One query was sent, so only the first result set matters.
	matches := resp.NearestNeighbors[0].Neighbors
	neighbors := make([]port.Neighbor, 0, len(matches))
	for _, m := range matches {
		neighbors = append(neighbors, port.Neighbor{
			ID:       m.Datapoint.DatapointID,
			Distance: m.Distance,
		})
	}
	return neighbors, nil
}

func (c *Client) postJSON(reqURL string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
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

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}
