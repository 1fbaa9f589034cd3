package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"titlechain/application/commands/bus"
	commandhandlers "titlechain/application/commands/handlers"
	"titlechain/application/ports"
	querybus "titlechain/application/queries/bus"
	queryhandlers "titlechain/application/queries/handlers"
	"titlechain/application/services"
	"titlechain/domain/core/entities"
	"titlechain/infrastructure/messaging"
	"titlechain/infrastructure/persistence/memory"
)

type mapCache struct {
	mu    sync.Mutex
	items map[string]interface{}
}

func (c *mapCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *mapCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *mapCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

func (c *mapCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]interface{}{}
	return nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()

	acts := []entities.Act{
		{ID: "r100", NumeroActe: "100", NumerosActesAnterieurs: []string{"50"}, Notaire: "Me Roy", Acheteurs: []string{"Tremblay"}, Vendeurs: []string{"Gagnon"}},
		{ID: "r50", NumeroActe: "50", Acheteurs: []string{"Gagnon"}, Vendeurs: []string{"Roy"}},
	}
	catalog := services.NewActCatalogService(memory.NewActRepository(acts), &mapCache{items: map[string]interface{}{}}, 0, logger)
	store := memory.NewCanvasStore(0, 0, logger)
	t.Cleanup(func() { _ = store.Close() })

	commandBus := bus.NewCommandBus()
	canvasHandler := commandhandlers.NewCanvasHandler(store, catalog, ports.StaticLayout{}, messaging.NewLogPublisher(logger), logger)
	for _, cmd := range canvasHandler.Commands() {
		require.NoError(t, commandBus.Register(cmd, canvasHandler))
	}

	queryBus := querybus.NewQueryBus()
	canvasQueries := queryhandlers.NewCanvasQueryHandler(store)
	for _, q := range canvasQueries.Queries() {
		require.NoError(t, queryBus.Register(q, canvasQueries))
	}
	actQueries := queryhandlers.NewActQueryHandler(catalog)
	for _, q := range actQueries.Queries() {
		require.NoError(t, queryBus.Register(q, actQueries))
	}

	router := NewRouter(commandBus, queryBus, nil, logger, RouterOptions{EnableCORS: true})
	server := httptest.NewServer(router.Setup())
	t.Cleanup(server.Close)
	return server
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

type canvasBody struct {
	ID    string `json:"id"`
	Nodes []struct {
		ID  string `json:"id"`
		Act struct {
			NumeroActe string `json:"numero_acte"`
		} `json:"act"`
		Buyer struct {
			X float64 `json:"x"`
			Y float64 `json:"y"`
		} `json:"buyer"`
	} `json:"nodes"`
	Connections []struct {
		Kind string `json:"kind"`
	} `json:"connections"`
	Tools struct {
		Zoom float64 `json:"zoom"`
	} `json:"tools"`
}

func do(t *testing.T, server *httptest.Server, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

func createCanvas(t *testing.T, server *httptest.Server) string {
	t.Helper()
	resp, env := do(t, server, http.MethodPost, "/api/v2/canvases", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var canvas canvasBody
	require.NoError(t, json.Unmarshal(env.Data, &canvas))
	require.NotEmpty(t, canvas.ID)
	return canvas.ID
}

func TestRouter_PlaceAndSnapshotRoundTrip(t *testing.T) {
	server := newTestServer(t)
	id := createCanvas(t, server)

	resp, env := do(t, server, http.MethodPost, "/api/v2/canvases/"+id+"/acts", map[string]interface{}{
		"numero_acte": "100", "x": 200, "y": 200,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, env = do(t, server, http.MethodGet, "/api/v2/canvases/"+id, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var canvas canvasBody
	require.NoError(t, json.Unmarshal(env.Data, &canvas))
	assert.Equal(t, id, canvas.ID)
	require.Len(t, canvas.Nodes, 2)
	assert.Equal(t, "100", canvas.Nodes[0].Act.NumeroActe)
	assert.Equal(t, 200.0, canvas.Nodes[0].Buyer.X)
	assert.Equal(t, "50", canvas.Nodes[1].Act.NumeroActe)
	assert.Equal(t, 600.0, canvas.Nodes[1].Buyer.Y)
	require.Len(t, canvas.Connections, 1)
	assert.Equal(t, "auto-chain", canvas.Connections[0].Kind)
	assert.Equal(t, 1.0, canvas.Tools.Zoom)
}

func TestRouter_ErrorStatuses(t *testing.T) {
	server := newTestServer(t)
	id := createCanvas(t, server)

	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown canvas", http.MethodGet, "/api/v2/canvases/6a1f4b9e-0c0e-4a55-8d7e-3f1d2c3b4a59", nil, http.StatusNotFound},
		{"canvas id not a uuid", http.MethodPost, "/api/v2/canvases/abc/clear", nil, http.StatusBadRequest},
		{"unknown act", http.MethodPost, "/api/v2/canvases/" + id + "/acts", map[string]interface{}{"numero_acte": "999"}, http.StatusNotFound},
		{"unknown body field", http.MethodPost, "/api/v2/canvases/" + id + "/zoom", map[string]interface{}{"speed": 2}, http.StatusBadRequest},
		{"bad connection index", http.MethodDelete, "/api/v2/canvases/" + id + "/connections/first", nil, http.StatusBadRequest},
		{"bad connection kind", http.MethodDelete, "/api/v2/canvases/" + id + "/connections?kind=dotted", nil, http.StatusBadRequest},
		{"unknown act lookup", http.MethodGet, "/api/v2/acts/404", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := do(t, server, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestRouter_DropAndZoom(t *testing.T) {
	server := newTestServer(t)
	id := createCanvas(t, server)

	resp, _ := do(t, server, http.MethodPost, "/api/v2/canvases/"+id+"/zoom", map[string]interface{}{"delta_y": -1, "modifier": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := do(t, server, http.MethodPost, "/api/v2/canvases/"+id+"/drop", map[string]interface{}{
		"payload": map[string]interface{}{"numero_acte": "50", "acheteurs": []string{"Gagnon"}, "vendeurs": []string{"Roy"}},
		"pointer": map[string]float64{"x": 320, "y": 160},
		"origin":  map[string]float64{"x": 100, "y": 50},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var update struct {
		Canvas canvasBody `json:"canvas"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &update))
	assert.Equal(t, 1.1, update.Canvas.Tools.Zoom)
	require.Len(t, update.Canvas.Nodes, 1)
	assert.InDelta(t, 200.0, update.Canvas.Nodes[0].Buyer.X, 1e-9)
	assert.InDelta(t, 100.0, update.Canvas.Nodes[0].Buyer.Y, 1e-9)
}

func TestRouter_ActsAndLifecycle(t *testing.T) {
	server := newTestServer(t)

	resp, env := do(t, server, http.MethodGet, "/api/v2/acts?q=roy", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acts []entities.Act
	require.NoError(t, json.Unmarshal(env.Data, &acts))
	assert.Len(t, acts, 2)

	_, env = do(t, server, http.MethodGet, "/api/v2/acts?q=roy&page=2&page_size=1", nil)
	require.NoError(t, json.Unmarshal(env.Data, &acts))
	assert.Len(t, acts, 1)

	id := createCanvas(t, server)
	resp, _ = do(t, server, http.MethodDelete, "/api/v2/canvases/"+id, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, server, http.MethodGet, "/api/v2/canvases/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_HealthAndReady(t *testing.T) {
	server := newTestServer(t)

	resp, _ := do(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, server, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
