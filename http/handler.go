package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/boldorider4/kvfront"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxBodySize caps POST bodies when HandlerConfig.MaxBodySize is unset.
const DefaultMaxBodySize int64 = 1 << 20

// Service is the registry-backed store a collection is served from.
// *kvfront.Registry implements it.
type Service interface {
	Put(ctx context.Context, name, value string) error
	Get(ctx context.Context, name string) (string, error)
	Record(ctx context.Context, name, value string) error
	List(ctx context.Context, source kvfront.ListSource) ([]string, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Listing        kvfront.ListSource
	CORS           CORSConfig
	RecordRequests bool
	MaxBodySize    int64
}

// collection describes one of the two name spaces served by the handler.
type collection struct {
	service Service
	prefix  string
	title   string
	label   string
	alias   string
}

// Handler serves the HTML front-end for the keys and files collections.
type Handler struct {
	config   HandlerConfig
	keys     collection
	files    collection
	validate *validator.Validate
}

// NewHandler creates a new Handler. keys backs /keys, token recording and
// the /measure endpoints; files backs /files.
func NewHandler(config *HandlerConfig, keys, files Service) *Handler {
	cfg := *config
	if cfg.Listing == "" {
		cfg.Listing = kvfront.SourceNative
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = DefaultMaxBodySize
	}

	return &Handler{
		config: cfg,
		keys: collection{
			service: keys,
			prefix:  "/keys",
			title:   "Keys",
			label:   "Key",
			alias:   "keyname",
		},
		files: collection{
			service: files,
			prefix:  "/files",
			title:   "Files",
			label:   "File",
			alias:   "filename",
		},
		validate: newValidator(),
	}
}

// Router returns an http.Handler with all routes and middleware configured.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger)

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Use(TokenMiddleware)
	if h.config.RecordRequests {
		r.Use(RecordTokenMiddleware(h.keys.service))
	}

	r.Get("/", h.handleHome)
	r.Get("/token", h.handleToken)
	r.Get("/token/*", h.handleToken)

	r.Get("/measure", h.handleMeasurePut)
	r.Get("/measure/put", h.handleMeasurePut)
	r.Get("/measure/put/*", h.handleMeasurePut)
	r.Get("/measure/get", h.handleMeasureGet)
	r.Get("/measure/get/*", h.handleMeasureGet)

	for _, c := range []collection{h.keys, h.files} {
		r.Route(c.prefix, func(r chi.Router) {
			r.Get("/", h.handleList(c))
			r.Post("/", h.handleCreate(c))
			r.Get("/*", h.handleGet(c))
		})
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w)
	})

	return r
}

func (h *Handler) handleHome(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, http.StatusOK, "message", messagePage{Title: "kvfront", Message: "Homepage"})
}

func (h *Handler) handleToken(w http.ResponseWriter, r *http.Request) {
	token, ok := TokenFromContext(r.Context())

	if wantsJSON(r) {
		_ = WriteJSON(w, http.StatusOK, tokenResponse{Token: token, Present: ok})
		return
	}

	renderPage(w, http.StatusOK, "token", tokenPage{Token: token, Present: ok})
}

func (h *Handler) handleMeasurePut(w http.ResponseWriter, r *http.Request) {
	key := recordKey(r.Context())

	start := time.Now()
	err := h.keys.service.Record(r.Context(), key, key)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("X-KV-Write-Ms", strconv.FormatInt(elapsed, 10))
	renderPage(w, http.StatusOK, "message", messagePage{
		Title:   "Measure",
		Message: fmt.Sprintf("KV write timing is %d ms", elapsed),
	})
}

func (h *Handler) handleMeasureGet(w http.ResponseWriter, r *http.Request) {
	key := recordKey(r.Context())

	start := time.Now()
	_, err := h.keys.service.Get(r.Context(), key)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		HandleError(w, err)
		return
	}

	w.Header().Set("X-KV-Read-Ms", strconv.FormatInt(elapsed, 10))
	renderPage(w, http.StatusOK, "message", messagePage{
		Title:   "Measure",
		Message: fmt.Sprintf("KV read timing is %d ms", elapsed),
	})
}

func (h *Handler) handleList(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := c.service.List(r.Context(), h.config.Listing)
		if err != nil {
			HandleError(w, err)
			return
		}

		if wantsJSON(r) {
			_ = WriteJSON(w, http.StatusOK, listResponse{Names: names})
			return
		}

		renderPage(w, http.StatusOK, "list", newListPage(c.title, c.prefix, names))
	}
}

func (h *Handler) handleGet(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := entryName(r)
		if err != nil || name == "" {
			writeNotFound(w)
			return
		}

		content, err := c.service.Get(r.Context(), name)
		if err != nil {
			HandleError(w, err)
			return
		}

		if wantsJSON(r) {
			_ = WriteJSON(w, http.StatusOK, entryResponse{Name: name, Content: content})
			return
		}

		renderPage(w, http.StatusOK, "entry", entryPage{Name: name, Content: content})
	}
}

func (h *Handler) handleCreate(c collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodySize)

		var req createRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
				return
			}
			WriteError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		input := entryInput{Name: req.entryName(c.alias), Content: req.Content}
		if err := h.validate.Struct(input); err != nil {
			WriteError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		if err := c.service.Put(r.Context(), input.Name, *input.Content); err != nil {
			HandleError(w, err)
			return
		}

		message := fmt.Sprintf("%s %s created", c.label, input.Name)
		if wantsJSON(r) {
			_ = WriteJSON(w, http.StatusOK, createdResponse{Name: input.Name, Message: message})
			return
		}

		renderPage(w, http.StatusOK, "message", messagePage{Title: c.title, Message: message})
	}
}

// entryName returns the unescaped wildcard segment of an entry route.
// chi matches on the raw path when the request carries escapes.
func entryName(r *http.Request) (string, error) {
	name := chi.URLParam(r, "*")
	if r.URL.RawPath == "" {
		return name, nil
	}
	return url.PathUnescape(name)
}
