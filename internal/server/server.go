package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/atlas/internal/config"
	"github.com/agenthands/atlas/internal/core"
	"github.com/agenthands/atlas/internal/core/model"
	"github.com/agenthands/atlas/internal/core/reconcile"
	"github.com/agenthands/atlas/internal/core/tagger"
	"github.com/agenthands/atlas/internal/extract"
	"github.com/agenthands/atlas/internal/geocode"
	"github.com/agenthands/atlas/internal/llm"
	"github.com/agenthands/atlas/internal/render"
	"github.com/agenthands/atlas/internal/store"
	"github.com/agenthands/atlas/internal/textsource"
)

type Server struct {
	Atlas    *core.Atlas
	Store    *store.Store
	Resolver *geocode.GoogleResolver
	Config   *config.Config
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override config with env vars if present
	if envProvider := os.Getenv("LLM_PROVIDER"); envProvider != "" {
		cfg.LLM.Provider = envProvider
	}
	if envModel := os.Getenv("LLM_MODEL"); envModel != "" {
		cfg.LLM.Model = envModel
	}
	if envAPIKey := os.Getenv("LLM_API_KEY"); envAPIKey != "" {
		cfg.LLM.APIKey = envAPIKey
	}
	if envBaseURL := os.Getenv("LLM_BASE_URL"); envBaseURL != "" {
		cfg.LLM.BaseURL = envBaseURL
	}
	if envMapsKey := os.Getenv("GOOGLE_MAPS_API_KEY"); envMapsKey != "" {
		cfg.Geocoder.APIKey = envMapsKey
	}
	if envDataDir := os.Getenv("DATA_DIR"); envDataDir != "" {
		cfg.Storage.DataDir = envDataDir
	}

	// Default to Ollama if provider is empty
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "ollama"
		cfg.LLM.Model = "gpt-oss:latest"
		cfg.LLM.BaseURL = "http://localhost:11434"
	}

	llmClient, err := llm.NewClient(context.Background(), cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to initialize LLM client: %v", err)
	}

	extractors := map[model.Source]extract.Extractor{
		model.SourceLLM: extract.NewLLMExtractor(llmClient, cfg.Extraction.Prompt),
	}
	if cfg.Extraction.NERModel != "" {
		ner, err := extract.NewNERExtractor(cfg.Extraction.NERModel, cfg.Extraction.ModelDir)
		if err != nil {
			log.Printf("Warning: NER backend unavailable, serving with LLM extraction only: %v", err)
		} else {
			extractors[model.SourceNER] = ner
		}
	}

	tg, err := tagger.FromConfig(cfg.Tagger)
	if err != nil {
		log.Fatalf("Failed to build tagger: %v", err)
	}

	mapStore, err := store.New(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("Failed to open map store: %v", err)
	}

	resolver := geocode.NewGoogleResolver(cfg.Geocoder)

	return New(core.NewAtlas(extractors, resolver, reconcile.NewReconciler(tg), mapStore), mapStore, resolver, cfg)
}

func New(atlas *core.Atlas, mapStore *store.Store, resolver *geocode.GoogleResolver, cfg *config.Config) *Server {
	return &Server{
		Atlas:    atlas,
		Store:    mapStore,
		Resolver: resolver,
		Config:   cfg,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/extract", s.Extract)
	r.GET("/maps", s.ListMaps)
	r.GET("/maps/:name", s.GetMap)
	r.DELETE("/maps/:name", s.DeleteMap)
	r.POST("/maps/:name/ingest", s.Ingest)
	r.PATCH("/maps/:name/places/:id", s.EditPlace)
	r.DELETE("/maps/:name/places/:id", s.DeletePlace)
	r.GET("/maps/:name/html", s.MapHTML)
	r.POST("/route", s.Route)

	return r
}

func parseBackends(raw []string) ([]model.Source, bool) {
	var backends []model.Source
	for _, b := range raw {
		switch model.Source(b) {
		case model.SourceNER, model.SourceLLM:
			backends = append(backends, model.Source(b))
		default:
			return nil, false
		}
	}
	return backends, true
}

type ExtractRequest struct {
	Text     string   `json:"text"`
	Backends []string `json:"backends"`
}

func (s *Server) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	backends, ok := parseBackends(req.Backends)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown extraction backend"})
		return
	}

	mentions, backendErrs, err := s.Atlas.ExtractMentions(c.Request.Context(), req.Text, backends)
	if err != nil {
		log.Printf("Extraction failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"mentions": mentions, "backend_errors": backendErrs})
}

type IngestRequest struct {
	Text     string   `json:"text"`
	URL      string   `json:"url"`
	Backends []string `json:"backends"`
}

func (s *Server) Ingest(c *gin.Context) {
	var req IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	backends, ok := parseBackends(req.Backends)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown extraction backend"})
		return
	}

	text := req.Text
	if text == "" && req.URL != "" {
		fetched, err := textsource.FromURL(c.Request.Context(), req.URL)
		if err != nil {
			log.Printf("Failed to fetch %q: %v", req.URL, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		text = fetched
	}
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either text or url is required"})
		return
	}

	session := core.NewSession(c.Param("name"))
	result, err := s.Atlas.Ingest(c.Request.Context(), session, c.Param("name"), text, backends)
	if err != nil {
		var exErr *extract.ExtractionError
		if errors.As(err, &exErr) {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		log.Printf("Ingest failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process text"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"session_id": session.ID, "result": result})
}

func (s *Server) ListMaps(c *gin.Context) {
	names, err := s.Store.List()
	if err != nil {
		log.Printf("Failed to list maps: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list maps"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"maps": names})
}

func (s *Server) GetMap(c *gin.Context) {
	m, err := s.Store.Load(c.Param("name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
			return
		}
		log.Printf("Failed to load map: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load map"})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) DeleteMap(c *gin.Context) {
	if err := s.Store.Delete(c.Param("name")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
			return
		}
		log.Printf("Failed to delete map: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete map"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type EditPlaceRequest struct {
	Note      *string `json:"note"`
	Sentiment *string `json:"sentiment"`
}

func (s *Server) EditPlace(c *gin.Context) {
	var req EditPlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	edit := reconcile.PlaceEdit{Note: req.Note}
	if req.Sentiment != nil {
		sent := model.ParseSentiment(*req.Sentiment)
		edit.Sentiment = &sent
	}

	m, err := s.Atlas.EditPlace(c.Request.Context(), c.Param("name"), c.Param("id"), edit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) DeletePlace(c *gin.Context) {
	m, err := s.Atlas.DeletePlace(c.Request.Context(), c.Param("name"), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) MapHTML(c *gin.Context) {
	m, err := s.Store.Load(c.Param("name"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Map not found"})
			return
		}
		log.Printf("Failed to load map: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load map"})
		return
	}

	page, err := render.HTML(m, s.Config.Geocoder.APIKey)
	if err != nil {
		log.Printf("Failed to render map: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render map"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (s *Server) Route(c *gin.Context) {
	var req geocode.RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	route, err := s.Resolver.Directions(c.Request.Context(), req)
	if err != nil {
		log.Printf("Directions failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, route)
}
