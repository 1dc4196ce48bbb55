package gcs

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
	"unicode/utf8"
)

// Client is a minimal REST client for the Cloud Storage JSON API.
type Client struct {
	token      string
	baseURL    string
	uploadURL  string
	httpClient *http.Client
}

type listResponse struct {
	Items []struct {
		Name string `json:"name"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

// NewClient builds a storage client authenticated with the bearer token
// found in the given environment variable. Construction fails fast when the
// credentials file is missing or the token is not set, so a misconfigured
// run never reaches the bucket.
func NewClient(credentialsFile, tokenEnv string) (*Client, error) {
	if _, err := os.Stat(credentialsFile); err != nil {
		return nil, fmt.Errorf("service account key not found at %s: %w", credentialsFile, err)
	}

	token := os.Getenv(tokenEnv)
	if token == "" {
		return nil, fmt.Errorf("access token not found in environment variable: %s", tokenEnv)
	}

	return &Client{
		token:     token,
		baseURL:   "https://storage.googleapis.com/storage/v1",
		uploadURL: "https://storage.googleapis.com/upload/storage/v1",
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}, nil
}

// DownloadText fetches an object and decodes it as UTF-8. A missing object
// or content that is not valid UTF-8 is reported as absent, not an error.
func (c *Client) DownloadText(bucket, name string) (string, bool, error) {
	reqURL := fmt.Sprintf("%s/b/%s/o/%s?alt=media", c.baseURL, url.PathEscape(bucket), url.PathEscape(name))

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return "", false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false, fmt.Errorf("download of %q failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", false, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", false, fmt.Errorf("failed to read object %q: %w", name, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", false, fmt.Errorf("storage API returned status %d for %q: %s", resp.StatusCode, name, string(body))
	}

	if !utf8.Valid(body) {
		return "", false, nil
	}
	return string(body), true, nil
}

// Upload stores a local file under the given object name.
func (c *Client) Upload(bucket, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	reqURL := fmt.Sprintf("%s/b/%s/o?uploadType=media&name=%s",
		c.uploadURL, url.PathEscape(bucket), url.QueryEscape(name))

	req, err := http.NewRequest(http.MethodPost, reqURL, f)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload of %q failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("storage API returned status %d for upload of %q: %s", resp.StatusCode, name, string(body))
	}
	return nil
}

// List returns the names of all objects under the given prefix, following
// pagination to the end.
func (c *Client) List(bucket, prefix string) ([]string, error) {
	var names []string
	pageToken := ""

	for {
		reqURL := fmt.Sprintf("%s/b/%s/o?prefix=%s", c.baseURL, url.PathEscape(bucket), url.QueryEscape(prefix))
		if pageToken != "" {
			reqURL += "&pageToken=" + url.QueryEscape(pageToken)
		}

		var page listResponse
		if err := c.getJSON(reqURL, &page); err != nil {
			return nil, fmt.Errorf("failed to list bucket %q: %w", bucket, err)
		}

		for _, item := range page.Items {
			names = append(names, item.Name)
		}

		if page.NextPageToken == "" {
			return names, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *Client) getJSON(reqURL string, out any) error {
	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storage API returned status %d: %s", resp.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
