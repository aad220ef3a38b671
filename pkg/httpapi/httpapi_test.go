package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"fishserver/pkg/ocean"
	"fishserver/pkg/racing"
)

func TestLivenessRoute(t *testing.T) {
	api := New(ocean.NewSimulator(), racing.NewWorld())
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET / error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestOceanMetaWithoutIDRejected(t *testing.T) {
	api := New(ocean.NewSimulator(), racing.NewWorld())
	srv := httptest.NewServer(api.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/meta")
	if err != nil {
		t.Fatalf("GET /ws/meta error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 without an id query param, got %d", resp.StatusCode)
	}
}
