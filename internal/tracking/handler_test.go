package tracking

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func testRouter(repo *memoryRepo) http.Handler {
	handler := NewHandler(nil, NewService(repo, nil, nil))
	r := chi.NewRouter()
	r.Route("/api/drawer-status", handler.MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRecordEndpointCreated(t *testing.T) {
	repo := newMemoryRepo()
	drawer := repo.addDrawer()
	batch := repo.addBatch("BATCH-001", 50)
	router := testRouter(repo)

	body := fmt.Sprintf(`{"drawer_id":%q,"batch_id":%q,"quantity":25,"status":"partial"}`, drawer, batch)
	rec := postJSON(t, router, "/api/drawer-status", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "success", payload["status"])
	require.NotContains(t, payload, "warning")
}

func TestRecordEndpointMultiStatusOnStacking(t *testing.T) {
	repo := newMemoryRepo()
	drawer := repo.addDrawer()
	batch1 := repo.addBatch("BATCH-001", 50)
	batch2 := repo.addBatch("BATCH-002", 50)
	router := testRouter(repo)

	body := fmt.Sprintf(`{"drawer_id":%q,"batch_id":%q,"quantity":25,"status":"partial"}`, drawer, batch1)
	require.Equal(t, http.StatusCreated, postJSON(t, router, "/api/drawer-status", body).Code)

	body = fmt.Sprintf(`{"drawer_id":%q,"batch_id":%q,"quantity":25,"status":"full"}`, drawer, batch2)
	rec := postJSON(t, router, "/api/drawer-status", body)
	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var payload struct {
		Status  string `json:"status"`
		Warning struct {
			Code            string          `json:"code"`
			Message         string          `json:"message"`
			ExistingBatches []ExistingBatch `json:"existing_batches"`
		} `json:"warning"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "success_with_warning", payload.Status)
	require.Equal(t, WarningCodeStacking, payload.Warning.Code)
	require.Equal(t, "1 batch(es) already loaded without depletion", payload.Warning.Message)
	require.Len(t, payload.Warning.ExistingBatches, 1)
}

func TestRecordEndpointValidation(t *testing.T) {
	router := testRouter(newMemoryRepo())

	rec := postJSON(t, router, "/api/drawer-status", `{"drawer_id":"not-a-uuid","batch_id":"x","quantity":1,"status":"full"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "VALIDATION_ERROR", payload["error"]["code"])
}

func TestRecordEndpointUnknownDrawer(t *testing.T) {
	repo := newMemoryRepo()
	batch := repo.addBatch("BATCH-001", 50)
	router := testRouter(repo)

	body := fmt.Sprintf(`{"drawer_id":"11111111-2222-4333-8444-555555555555","batch_id":%q,"quantity":1,"status":"full"}`, batch)
	rec := postJSON(t, router, "/api/drawer-status", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var payload map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, "NOT_FOUND", payload["error"]["code"])
}

func TestUUIDParamRejected(t *testing.T) {
	router := testRouter(newMemoryRepo())

	req := httptest.NewRequest("GET", "/api/drawer-status/drawer/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid UUID format for drawerID")
}
