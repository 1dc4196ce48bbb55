package vectorsearch

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rag/internal/port"
)

func testRESTClient(serverURL string) *Client {
	return &Client{
		token:           "test-token",
		baseURL:         serverURL,
		projectID:       "proj",
		region:          "us-east1",
		indexID:         "idx-1",
		indexEndpointID: "ep-1",
		deployedIndexID: "dep-1",
		httpClient:      &http.Client{Timeout: 5 * time.Second},
	}
}

func TestClientUpsertBuildsDatapoints(t *testing.T) {
	var got upsertRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/indexes/idx-1:upsertDatapoints") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatal(err)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	records := []port.Record{{
		ID:     "doc.txt_chunk_0_aa",
		Vector: []float32{0.1, 0.2},
		Attributes: map[string]string{
			"source_document_name": "doc.txt",
		},
	}}
	if err := testRESTClient(server.URL).Upsert(records); err != nil {
		t.Fatal(err)
	}

	if len(got.Datapoints) != 1 {
		t.Fatalf("expected 1 datapoint, got %d", len(got.Datapoints))
	}
	dp := got.Datapoints[0]
	if dp.DatapointID != "doc.txt_chunk_0_aa" {
		t.Errorf("datapoint ID = %q", dp.DatapointID)
	}
	if len(dp.Restricts) != 1 || dp.Restricts[0].Namespace != "source_document_name" {
		t.Errorf("unexpected restricts: %+v", dp.Restricts)
	}
	if dp.Restricts[0].AllowList[0] != "doc.txt" {
		t.Errorf("unexpected allow list: %v", dp.Restricts[0].AllowList)
	}
}

func TestClientUpsertEmptyBatchIsNoop(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an empty batch")
	}))
	defer server.Close()

	if err := testRESTClient(server.URL).Upsert(nil); err != nil {
		t.Fatal(err)
	}
}

func TestClientFindNeighborsParsesMatches(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/indexEndpoints/ep-1:findNeighbors") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req findNeighborsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.DeployedIndexID != "dep-1" {
			t.Errorf("deployed index = %q", req.DeployedIndexID)
		}
		if len(req.Queries) != 1 || req.Queries[0].NeighborCount != 2 {
			t.Errorf("unexpected queries: %+v", req.Queries)
		}
		fmt.Fprint(w, `{"nearestNeighbors":[{"neighbors":[
			{"datapoint":{"datapointId":"a_chunk_0_x"},"distance":0.12},
			{"datapoint":{"datapointId":"b_chunk_3_y"},"distance":0.48}
		]}]}`)
	}))
	defer server.Close()

	neighbors, err := testRESTClient(server.URL).FindNeighbors([]float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 2 {
		t.Fatalf("expected 2 neighbors, got %d", len(neighbors))
	}
	if neighbors[0].ID != "a_chunk_0_x" || neighbors[0].Distance != 0.12 {
		t.Errorf("unexpected first neighbor: %+v", neighbors[0])
	}
}

func TestClientFindNeighborsEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer server.Close()

	neighbors, err := testRESTClient(server.URL).FindNeighbors([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors, got %d", len(neighbors))
	}
}
