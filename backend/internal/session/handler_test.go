package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	apperrors "graph-explorer/backend/pkg/errors"
)

func newTestRouter(env *testEnv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(env.session).Register(router.Group("/api"))
	return router
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestHandler_GetGraph(t *testing.T) {
	env := newTestEnv()
	router := newTestRouter(env)

	w := doJSON(router, http.MethodGet, "/api/graph", "")

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, []interface{}{}, response["nodes"])
	assert.Equal(t, false, response["busy"])
}

func TestHandler_Expand(t *testing.T) {
	env := newTestEnv()
	env.fetcher.on("Publication", "9693", publicationNeighborhood())
	router := newTestRouter(env)

	w := doJSON(router, http.MethodPost, "/api/graph/expand", `{"node_id": "Publication#___#9693"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Outcome  string            `json:"outcome"`
		Nodes    []json.RawMessage `json:"nodes"`
		Expanded []string          `json:"expanded"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "expanded", response.Outcome)
	assert.Len(t, response.Nodes, 3)
	assert.Equal(t, []string{pubID}, response.Expanded)

	w = doJSON(router, http.MethodPost, "/api/graph/expand", `{"node_id": "Publication#___#9693"}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "already_expanded", response.Outcome)

	w = doJSON(router, http.MethodPost, "/api/graph/expand", `{"node_id": "opaque"}`)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "invalid_trigger", response.Outcome)
}

func TestHandler_ExpandInvalidRequest(t *testing.T) {
	router := newTestRouter(newTestEnv())

	w := doJSON(router, http.MethodPost, "/api/graph/expand", `{}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ExpandFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		text   string
	}{
		{"transport", apperrors.NewTransport("http://backend", 500, nil), http.StatusBadGateway, "500"},
		{"malformed", apperrors.NewMalformedResponse("missing nodes", nil), http.StatusBadGateway, "missing nodes"},
		{"timeout", apperrors.NewFetchTimeout("graph API request", 10*time.Second, context.DeadlineExceeded), http.StatusGatewayTimeout, "timed out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			env.fetcher.failWith(tt.err)
			router := newTestRouter(env)

			w := doJSON(router, http.MethodPost, "/api/graph/expand", `{"node_id": "Publication#___#9693"}`)

			assert.Equal(t, tt.status, w.Code)
			var response map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.Contains(t, response["error"], tt.text)
			assert.False(t, env.session.Busy())
		})
	}
}

func TestHandler_Load(t *testing.T) {
	env := newTestEnv()
	env.fetcher.on("Publication", "9693", publicationNeighborhood())
	router := newTestRouter(env)

	w := doJSON(router, http.MethodPost, "/api/graph/load", `{"query": "9693", "node_type": "Publication"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Nodes []json.RawMessage `json:"nodes"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Nodes, 3)

	w = doJSON(router, http.MethodPost, "/api/graph/load", `{"node_type": "Publication"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_LabelView(t *testing.T) {
	router := newTestRouter(newTestEnv())
	w := doJSON(router, http.MethodGet, "/api/labels/Author", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	env := newTestEnv(WithLabelViewer(&labelFetcher{fragment: publicationNeighborhood()}, 100))
	router = newTestRouter(env)
	w = doJSON(router, http.MethodGet, "/api/labels/Author", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Positions []json.RawMessage `json:"positions"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Positions, 3)

	env = newTestEnv(WithLabelViewer(&labelFetcher{err: apperrors.NewTransport("bolt://db", 0, nil)}, 100))
	router = newTestRouter(env)
	w = doJSON(router, http.MethodGet, "/api/labels/Author", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}
