package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/boldorider4/kvfront"
	"github.com/boldorider4/kvfront/backend/memory"
	kvhttp "github.com/boldorider4/kvfront/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockService is a mock implementation of http.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Put(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

func (m *MockService) Get(ctx context.Context, name string) (string, error) {
	args := m.Called(ctx, name)
	return args.String(0), args.Error(1)
}

func (m *MockService) Record(ctx context.Context, name, value string) error {
	args := m.Called(ctx, name, value)
	return args.Error(0)
}

func (m *MockService) List(ctx context.Context, source kvfront.ListSource) ([]string, error) {
	args := m.Called(ctx, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func newMockRouter(t *testing.T, cfg kvhttp.HandlerConfig) (http.Handler, *MockService, *MockService) {
	t.Helper()
	keys := new(MockService)
	files := new(MockService)
	t.Cleanup(func() {
		keys.AssertExpectations(t)
		files.AssertExpectations(t)
	})
	return kvhttp.NewHandler(&cfg, keys, files).Router(), keys, files
}

// newMemoryRouter wires both collections to registries over one shared
// memory store, as the server does.
func newMemoryRouter(t *testing.T, cfg kvhttp.HandlerConfig) (http.Handler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()

	keys, err := kvfront.NewRegistry(store, kvfront.RegistryConfig{
		IndexKey: kvfront.DefaultKeysIndex,
		Reserved: []string{kvfront.DefaultFilesIndex},
	})
	require.NoError(t, err)
	files, err := kvfront.NewRegistry(store, kvfront.RegistryConfig{
		IndexKey: kvfront.DefaultFilesIndex,
		Reserved: []string{kvfront.DefaultKeysIndex},
	})
	require.NoError(t, err)

	return kvhttp.NewHandler(&cfg, keys, files).Router(), store
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandler_Home(t *testing.T) {
	router, _, _ := newMockRouter(t, kvhttp.HandlerConfig{})

	w := serve(router, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Homepage")
}

func TestHandler_Token(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		header   string
		contains string
	}{
		{name: "header", target: "/token", header: "Bearer abc123", contains: "abc123"},
		{name: "query", target: "/token?token=from-query", contains: "from-query"},
		{name: "path", target: "/token/from-path", contains: "from-path"},
		{name: "header wins over path", target: "/token/from-path", header: "Bearer from-header", contains: "from-header"},
		{name: "absent", target: "/token", contains: "No Bearer token provided."},
		{name: "blank header", target: "/token", header: "Bearer    ", contains: "No Bearer token provided."},
		{name: "wrong scheme", target: "/token", header: "Basic abc", contains: "No Bearer token provided."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _, _ := newMockRouter(t, kvhttp.HandlerConfig{})

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(router, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Body.String(), tt.contains)
		})
	}
}

func TestHandler_Token_JSON(t *testing.T) {
	router, _, _ := newMockRouter(t, kvhttp.HandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	req.Header.Set("Accept", "application/json")
	w := serve(router, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Token   string `json:"token"`
		Present bool   `json:"present"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc123", body.Token)
	assert.True(t, body.Present)
}

func TestHandler_List(t *testing.T) {
	t.Run("renders links", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("List", mock.Anything, kvfront.SourceNative).Return([]string{"alpha", "beta"}, nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(),
			`<ul><li><a href="/keys/alpha">alpha</a></li><li><a href="/keys/beta">beta</a></li></ul>`)
	})

	t.Run("trailing slash", func(t *testing.T) {
		router, _, files := newMockRouter(t, kvhttp.HandlerConfig{})
		files.On("List", mock.Anything, kvfront.SourceNative).Return([]string{"a.txt"}, nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/files/", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `<a href="/files/a.txt">a.txt</a>`)
	})

	t.Run("empty list", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("List", mock.Anything, kvfront.SourceNative).Return([]string{}, nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "<ul></ul>")
	})

	t.Run("configured source", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{Listing: kvfront.SourceIndexed})
		keys.On("List", mock.Anything, kvfront.SourceIndexed).Return([]string{"alpha"}, nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("names are escaped", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("List", mock.Anything, kvfront.SourceNative).Return([]string{"<script>"}, nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys", nil))

		assert.NotContains(t, w.Body.String(), "<script>")
		assert.Contains(t, w.Body.String(), "&lt;script&gt;")
	})

	t.Run("json", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("List", mock.Anything, kvfront.SourceNative).Return([]string{"alpha"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/keys", nil)
		req.Header.Set("Accept", "application/json")
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"names":["alpha"]}`, w.Body.String())
	})

	t.Run("backend error", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("List", mock.Anything, kvfront.SourceNative).Return(nil, errors.New("connection refused"))

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Internal server error", w.Body.String())
	})
}

func TestHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		body       string
		setup      func(keys, files *MockService)
		wantStatus int
		wantBody   string
	}{
		{
			name:   "key with name field",
			target: "/keys",
			body:   `{"name":"alpha","content":"one"}`,
			setup: func(keys, _ *MockService) {
				keys.On("Put", mock.Anything, "alpha", "one").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Key alpha created",
		},
		{
			name:   "key with keyname alias",
			target: "/keys",
			body:   `{"keyname":"alpha","content":"one"}`,
			setup: func(keys, _ *MockService) {
				keys.On("Put", mock.Anything, "alpha", "one").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Key alpha created",
		},
		{
			name:   "file with filename alias",
			target: "/files",
			body:   `{"filename":"a.txt","content":"hello"}`,
			setup: func(_, files *MockService) {
				files.On("Put", mock.Anything, "a.txt", "hello").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "File a.txt created",
		},
		{
			name:   "empty content is allowed",
			target: "/keys",
			body:   `{"name":"alpha","content":""}`,
			setup: func(keys, _ *MockService) {
				keys.On("Put", mock.Anything, "alpha", "").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Key alpha created",
		},
		{
			name:       "filename alias is not a key alias",
			target:     "/keys",
			body:       `{"filename":"alpha","content":"one"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing name or content",
		},
		{
			name:       "missing content",
			target:     "/keys",
			body:       `{"name":"alpha"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing name or content",
		},
		{
			name:       "missing name",
			target:     "/files",
			body:       `{"content":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing name or content",
		},
		{
			name:       "empty object",
			target:     "/keys",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing name or content",
		},
		{
			name:       "invalid json",
			target:     "/keys",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid JSON",
		},
		{
			name:       "trailing data after object",
			target:     "/keys",
			body:       `{"name":"alpha","content":"one"} garbage`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid JSON",
		},
		{
			name:       "two objects",
			target:     "/keys",
			body:       `{"name":"alpha","content":"one"}{"name":"beta","content":"two"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid JSON",
		},
		{
			name:   "trailing whitespace is allowed",
			target: "/keys",
			body:   "{\"name\":\"alpha\",\"content\":\"one\"}\n  ",
			setup: func(keys, _ *MockService) {
				keys.On("Put", mock.Anything, "alpha", "one").Return(nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "Key alpha created",
		},
		{
			name:       "invalid name",
			target:     "/keys",
			body:       `{"name":"..","content":"x"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid name",
		},
		{
			name:   "reserved name",
			target: "/keys",
			body:   `{"name":"keys","content":"x"}`,
			setup: func(keys, _ *MockService) {
				keys.On("Put", mock.Anything, "keys", "x").
					Return(errors.Join(kvfront.ErrInvalidInput, errors.New("reserved")))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid name",
		},
		{
			name:   "backend failure",
			target: "/keys",
			body:   `{"name":"alpha","content":"one"}`,
			setup: func(keys, _ *MockService) {
				keys.On("Put", mock.Anything, "alpha", "one").Return(errors.New("disk full"))
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, keys, files := newMockRouter(t, kvhttp.HandlerConfig{})
			if tt.setup != nil {
				tt.setup(keys, files)
			}

			w := serve(router, postJSON(tt.target, tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestHandler_Create_BodyTooLarge(t *testing.T) {
	router, _, _ := newMockRouter(t, kvhttp.HandlerConfig{MaxBodySize: 16})

	w := serve(router, postJSON("/keys", `{"name":"alpha","content":"far too long for the limit"}`))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandler_Get(t *testing.T) {
	t.Run("renders escaped content", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Get", mock.Anything, "alpha").Return("<b>one</b>", nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys/alpha", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "&lt;b&gt;one&lt;/b&gt;")
	})

	t.Run("escaped name", func(t *testing.T) {
		router, _, files := newMockRouter(t, kvhttp.HandlerConfig{})
		files.On("Get", mock.Anything, "dir/a b.txt").Return("x", nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/files/dir%2Fa%20b.txt", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("not found", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Get", mock.Anything, "missing").Return("", kvfront.ErrNotFound)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/keys/missing", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "404 Not Found")
	})

	t.Run("json", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Get", mock.Anything, "alpha").Return("one", nil)

		req := httptest.NewRequest(http.MethodGet, "/keys/alpha", nil)
		req.Header.Set("Accept", "application/json")
		w := serve(router, req)

		assert.JSONEq(t, `{"name":"alpha","content":"one"}`, w.Body.String())
	})
}

func TestHandler_Measure(t *testing.T) {
	t.Run("put records token", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Record", mock.Anything, "fake-token-00001", "fake-token-00001").Return(nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/measure/put/fake-token-00001", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-KV-Write-Ms"))
		assert.Regexp(t, `KV write timing is \d+ ms`, w.Body.String())
	})

	t.Run("measure without token", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Record", mock.Anything, kvfront.NoTokenKey, kvfront.NoTokenKey).Return(nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/measure", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("put with header token", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Record", mock.Anything, "abc", "abc").Return(nil)

		req := httptest.NewRequest(http.MethodGet, "/measure/put/", nil)
		req.Header.Set("Authorization", "Bearer abc")
		w := serve(router, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("get reads token", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Get", mock.Anything, "abc").Return("abc", nil)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/measure/get/abc", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Header().Get("X-KV-Read-Ms"))
		assert.Regexp(t, `KV read timing is \d+ ms`, w.Body.String())
	})

	t.Run("get missing token", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Get", mock.Anything, "abc").Return("", kvfront.ErrNotFound)

		w := serve(router, httptest.NewRequest(http.MethodGet, "/measure/get/abc", nil))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("put failure", func(t *testing.T) {
		router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
		keys.On("Record", mock.Anything, "abc", "abc").Return(errors.New("timeout"))

		w := serve(router, httptest.NewRequest(http.MethodGet, "/measure/put/abc", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestHandler_NotFound(t *testing.T) {
	tests := []struct {
		method string
		target string
	}{
		{http.MethodGet, "/unknown"},
		{http.MethodGet, "/keys/alpha/../../etc"},
		{http.MethodDelete, "/keys/alpha"},
		{http.MethodPut, "/files"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			router, keys, _ := newMockRouter(t, kvhttp.HandlerConfig{})
			keys.On("Get", mock.Anything, mock.Anything).Return("", kvfront.ErrNotFound).Maybe()

			w := serve(router, httptest.NewRequest(tt.method, tt.target, nil))

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, w.Body.String(), "404 Not Found")
		})
	}
}

func TestHandler_CORS(t *testing.T) {
	router, _, _ := newMockRouter(t, kvhttp.HandlerConfig{
		CORS: kvhttp.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"https://example.com"},
			AllowedMethods: []string{"GET", "POST"},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://example.com")
	w := serve(router, req)

	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_MemoryBackend(t *testing.T) {
	t.Run("native listing shows index and token entries", func(t *testing.T) {
		router, _ := newMemoryRouter(t, kvhttp.HandlerConfig{RecordRequests: true})

		req := postJSON("/keys", `{"keyname":"alpha","content":"one"}`)
		req.Header.Set("Authorization", "Bearer tok")
		w := serve(router, req)
		require.Equal(t, http.StatusOK, w.Code)

		w = serve(router, httptest.NewRequest(http.MethodGet, "/keys", nil))
		require.Equal(t, http.StatusOK, w.Code)

		body := w.Body.String()
		assert.Contains(t, body, `<a href="/keys/alpha">alpha</a>`)
		assert.Contains(t, body, `<a href="/keys/keys">keys</a>`)
		assert.Contains(t, body, `<a href="/keys/tok">tok</a>`)
		assert.Contains(t, body, `<a href="/keys/no-token">no-token</a>`)
	})

	t.Run("indexed listing shows only created entries", func(t *testing.T) {
		router, _ := newMemoryRouter(t, kvhttp.HandlerConfig{
			Listing:        kvfront.SourceIndexed,
			RecordRequests: true,
		})

		w := serve(router, postJSON("/files", `{"filename":"a.txt","content":"hello"}`))
		require.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/files", nil)
		req.Header.Set("Accept", "application/json")
		w = serve(router, req)

		assert.JSONEq(t, `{"names":["a.txt"]}`, w.Body.String())

		w = serve(router, httptest.NewRequest(http.MethodGet, "/files/a.txt", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "hello")
	})

	t.Run("measure round trip", func(t *testing.T) {
		router, store := newMemoryRouter(t, kvhttp.HandlerConfig{})

		w := serve(router, httptest.NewRequest(http.MethodGet, "/measure/get/fake-token-00000", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = serve(router, httptest.NewRequest(http.MethodGet, "/measure/put/fake-token-00000", nil))
		require.Equal(t, http.StatusOK, w.Code)

		w = serve(router, httptest.NewRequest(http.MethodGet, "/measure/get/fake-token-00000", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		value, err := store.Get(context.Background(), "fake-token-00000")
		require.NoError(t, err)
		assert.Equal(t, "fake-token-00000", value)
	})
	t.Run("collections cannot overwrite each other's index", func(t *testing.T) {
		router, store := newMemoryRouter(t, kvhttp.HandlerConfig{
			Listing:        kvfront.SourceIndexed,
			RecordRequests: true,
		})

		w := serve(router, postJSON("/files", `{"name":"a","content":"1"}`))
		require.Equal(t, http.StatusOK, w.Code)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer files")
		w = serve(router, req)
		assert.Equal(t, http.StatusOK, w.Code)

		w = serve(router, httptest.NewRequest(http.MethodGet, "/?token=keys", nil))
		assert.Equal(t, http.StatusOK, w.Code)

		w = serve(router, httptest.NewRequest(http.MethodGet, "/measure/put/files", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid name", w.Body.String())

		w = serve(router, postJSON("/keys", `{"name":"files","content":"x"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid name", w.Body.String())

		w = serve(router, postJSON("/files", `{"name":"keys","content":"x"}`))
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = serve(router, postJSON("/files", `{"name":"b","content":"2"}`))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "File b created")

		req = httptest.NewRequest(http.MethodGet, "/files", nil)
		req.Header.Set("Accept", "application/json")
		w = serve(router, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"names":["a","b"]}`, w.Body.String())

		index, err := store.Get(context.Background(), kvfront.DefaultFilesIndex)
		require.NoError(t, err)
		assert.Equal(t, `["a","b"]`, index)
	})
}
