package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fundwallet/fundwallet-backend/internal/model"
	"github.com/fundwallet/fundwallet-backend/internal/pipeline"
	"github.com/fundwallet/fundwallet-backend/internal/testutil"
)

func setupSystemHandler(t *testing.T, raw []byte) (*SystemHandler, *testutil.Services) {
	t.Helper()
	svcs := testutil.NewTestServices(t, raw, 1)
	return NewSystemHandler(svcs.System, svcs.Funds), svcs
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("returns healthy status when database is connected", func(t *testing.T) {
		handler, _ := setupSystemHandler(t, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		var response HealthResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&response)

		if response.Status != "healthy" {
			t.Errorf("Expected status 'healthy', got '%s'", response.Status)
		}
		if response.Database != "connected" {
			t.Errorf("Expected database 'connected', got '%s'", response.Database)
		}
		if response.Error != "" {
			t.Errorf("Expected no error, got '%s'", response.Error)
		}
	})

	t.Run("returns 503 when database is disconnected", func(t *testing.T) {
		handler, svcs := setupSystemHandler(t, nil)

		// Close the database connection to simulate failure
		svcs.DB.Close()

		req := httptest.NewRequest(http.MethodGet, "/api/system/health", nil)
		w := httptest.NewRecorder()

		handler.Health(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected 503, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestSystemHandler_Version(t *testing.T) {
	handler, _ := setupSystemHandler(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/system/version", nil)
	w := httptest.NewRecorder()

	handler.Version(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var response model.VersionInfo
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.AppVersion == "" {
		t.Error("Expected app version to be set")
	}
	if response.CacheVersion != testutil.TestCacheVersion {
		t.Errorf("Expected cache version %q, got %q", testutil.TestCacheVersion, response.CacheVersion)
	}
	if !response.Features["search"] {
		t.Error("Expected search feature to be enabled")
	}
}

func TestSystemHandler_StatusAndRefresh(t *testing.T) {
	handler, svcs := setupSystemHandler(t, testutil.EndToEndPayload().JSON(t))

	status := func() model.PipelineStatus {
		t.Helper()
		w := httptest.NewRecorder()
		handler.Status(w, httptest.NewRequest(http.MethodGet, "/api/system/status", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var s model.PipelineStatus
		if err := json.NewDecoder(w.Body).Decode(&s); err != nil {
			t.Fatalf("Failed to decode status: %v", err)
		}
		return s
	}

	if s := status(); s.Generation != 0 || s.DataURL != testutil.DataURL {
		t.Errorf("Unexpected initial status: %+v", s)
	}

	w := httptest.NewRecorder()
	handler.Refresh(w, httptest.NewRequest(http.MethodPost, "/api/system/refresh", nil))
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp RefreshResponse
	//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.TaskID == "" {
		t.Error("Expected a task id")
	}

	deadline := time.Now().Add(5 * time.Second)
	for svcs.Pipeline.Status().State != pipeline.StateReady && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if s := status(); s.Generation != 1 || s.State != "ready" {
		t.Errorf("Expected ready at generation 1, got %+v", s)
	}
}

func TestSystemHandler_ClearCache(t *testing.T) {
	handler, svcs := setupSystemHandler(t, testutil.EndToEndPayload().JSON(t))

	if _, err := svcs.Funds.Funds(t.Context()); err != nil {
		t.Fatalf("Failed to load funds: %v", err)
	}

	w := httptest.NewRecorder()
	handler.ClearCache(w, httptest.NewRequest(http.MethodPost, "/api/system/cache/clear", nil))

	if w.Code != http.StatusNoContent {
		t.Errorf("Expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", w.Body.String())
	}

	if _, err := svcs.Funds.Funds(t.Context()); err != nil {
		t.Fatalf("Failed to reload funds: %v", err)
	}
	if calls := svcs.Fetcher.TotalCalls(); calls != 2 {
		t.Errorf("Expected 2 downloads after clearing, got %d", calls)
	}
}

func TestSystemHandler_DataURL(t *testing.T) {
	put := func(t *testing.T, handler *SystemHandler, body string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodPut, "/api/system/settings/data-url", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.UpdateDataURL(w, req)
		return w
	}

	t.Run("returns configured url by default", func(t *testing.T) {
		handler, _ := setupSystemHandler(t, nil)

		w := httptest.NewRecorder()
		handler.DataURL(w, httptest.NewRequest(http.MethodGet, "/api/system/settings/data-url", nil))

		var resp DataURLResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.URL != testutil.DataURL {
			t.Errorf("Expected %q, got %q", testutil.DataURL, resp.URL)
		}
	})

	t.Run("stores a valid url", func(t *testing.T) {
		handler, _ := setupSystemHandler(t, nil)

		w := put(t, handler, `{"url":"https://mirror.example.test/funds.b64"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}

		w = httptest.NewRecorder()
		handler.DataURL(w, httptest.NewRequest(http.MethodGet, "/api/system/settings/data-url", nil))
		var resp DataURLResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.URL != "https://mirror.example.test/funds.b64" {
			t.Errorf("Expected stored url, got %q", resp.URL)
		}
	})

	t.Run("empty url restores the default", func(t *testing.T) {
		handler, _ := setupSystemHandler(t, nil)
		put(t, handler, `{"url":"https://mirror.example.test/funds.b64"}`)

		w := put(t, handler, `{"url":""}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp DataURLResponse
		//nolint:errcheck // Test assertion - decode failure would cause test to fail anyway
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.URL != testutil.DataURL {
			t.Errorf("Expected default url, got %q", resp.URL)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		handler, _ := setupSystemHandler(t, nil)

		tests := []struct {
			name string
			body string
		}{
			{name: "malformed json", body: `{"url":`},
			{name: "not a url", body: `{"url":"not a url"}`},
			{name: "wrong scheme", body: `{"url":"ftp://example.test/data.b64"}`},
			{name: "wrong extension", body: `{"url":"https://example.test/data.json"}`},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := put(t, handler, tt.body)
				if w.Code != http.StatusBadRequest {
					t.Errorf("Expected 400, got %d: %s", w.Code, w.Body.String())
				}
			})
		}
	})
}
