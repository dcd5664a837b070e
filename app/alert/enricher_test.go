package alert

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnricherFollowsRedirectsAndRecordsProvenance(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/detail", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/hop", http.StatusFound)
	})
	mux.HandleFunc("/hop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, server.URL+"/final", http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		w.Write([]byte(`{"properties":{"event":"Flood Warning"}}`))
	})

	feature := Feature{"id": server.URL + "/detail"}

	enricher := NewEnricher(&http.Client{}, "test-agent")
	enricher.Run(context.Background(), feature)

	if _, hasErr := feature[DetailFetchErrorKey]; hasErr {
		t.Fatalf("Expected no fetch error, got: %v", feature[DetailFetchErrorKey])
	}

	info, ok := feature[DetailFetchKey].(FetchInfo)
	if !ok {
		t.Fatal("Expected detail fetch provenance on feature")
	}
	if info.FetchedURL != server.URL+"/final" {
		t.Errorf("Expected fetched URL %s, got: %s", server.URL+"/final", info.FetchedURL)
	}
	if info.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got: %d", info.StatusCode)
	}
	if len(info.Redirects) != 2 {
		t.Fatalf("Expected 2 redirects, got: %d (%v)", len(info.Redirects), info.Redirects)
	}
	if info.Redirects[0] != server.URL+"/detail" {
		t.Errorf("Expected first redirect %s, got: %s", server.URL+"/detail", info.Redirects[0])
	}
	if info.Redirects[1] != server.URL+"/hop" {
		t.Errorf("Expected second redirect %s, got: %s", server.URL+"/hop", info.Redirects[1])
	}

	detail, ok := feature[DetailKey].(map[string]interface{})
	if !ok {
		t.Fatal("Expected parsed detail document on feature")
	}
	if _, ok := detail["properties"]; !ok {
		t.Error("Expected properties in detail document")
	}
}

func TestEnricherSkipsNonURLIdentifier(t *testing.T) {
	feature := Feature{"id": "urn:oid:2.49.0.1.840.0.test-1"}

	enricher := NewEnricher(&http.Client{}, "test-agent")
	enricher.Run(context.Background(), feature)

	if _, ok := feature[DetailFetchKey]; ok {
		t.Error("Expected no detail fetch for non-URL identifier")
	}
	if _, ok := feature[DetailFetchErrorKey]; ok {
		t.Error("Expected no detail fetch error for non-URL identifier")
	}
}

func TestEnricherAnnotatesFailureWithoutFailing(t *testing.T) {
	// Closed server: the fetch must fail but only annotate the feature.
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	feature := Feature{"id": url + "/gone"}

	enricher := NewEnricher(&http.Client{}, "test-agent")
	enricher.Run(context.Background(), feature)

	if _, ok := feature[DetailFetchErrorKey]; !ok {
		t.Fatal("Expected detail fetch error annotation")
	}
	if _, ok := feature[DetailKey]; ok {
		t.Error("Expected no detail document after failed fetch")
	}
}

func TestEnricherKeepsExistingDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"fresh":true}`))
	}))
	defer server.Close()

	feature := Feature{
		"id":      server.URL,
		DetailKey: map[string]interface{}{"existing": true},
	}

	enricher := NewEnricher(&http.Client{}, "test-agent")
	enricher.Run(context.Background(), feature)

	detail, ok := feature[DetailKey].(map[string]interface{})
	if !ok {
		t.Fatal("Expected detail document to remain")
	}
	if _, ok := detail["existing"]; !ok {
		t.Error("Expected existing detail to be kept, not overwritten")
	}
}

func TestEnricherRecordsNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("not found"))
	}))
	defer server.Close()

	feature := Feature{"id": server.URL}

	enricher := NewEnricher(&http.Client{}, "test-agent")
	enricher.Run(context.Background(), feature)

	info, ok := feature[DetailFetchKey].(FetchInfo)
	if !ok {
		t.Fatal("Expected detail fetch provenance on feature")
	}
	if info.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 recorded, got: %d", info.StatusCode)
	}
	if _, ok := feature[DetailKey]; ok {
		t.Error("Expected no detail document for non-JSON body")
	}
}
