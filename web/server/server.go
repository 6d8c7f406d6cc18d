package server

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/df07/go-geomquery/pkg/bvh"
	"github.com/df07/go-geomquery/pkg/core"
	"github.com/df07/go-geomquery/pkg/geometry"
	"github.com/df07/go-geomquery/pkg/mbvh"
	"github.com/df07/go-geomquery/pkg/query"
	"github.com/df07/go-geomquery/pkg/scene"
	"github.com/golang/geo/r3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
)

// Server answers spatial queries over the built-in scenes. Indices are built
// on first use and kept for later requests.
type Server struct {
	port    int
	mu      sync.Mutex
	indices map[IndexRequest]*mbvh.Mbvh
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, indices: make(map[IndexRequest]*mbvh.Mbvh)}
}

// IndexRequest selects the scene and build parameters of an index
type IndexRequest struct {
	Scene      string `json:"scene"`
	Primitives int    `json:"primitives"`
	Seed       int64  `json:"seed"`
	Heuristic  string `json:"heuristic"`
	Branching  int    `json:"branching"`
}

// IndexResponse describes a built index
type IndexResponse struct {
	ID      string        `json:"id"`
	Request IndexRequest  `json:"request"`
	Bounds  [2][3]float64 `json:"bounds"`
	Stats   mbvh.Stats    `json:"stats"`
}

// Hit is one interaction of a query response
type Hit struct {
	Distance       float64    `json:"distance"`
	Point          [3]float64 `json:"point"`
	PrimitiveIndex int        `json:"primitiveIndex"`
}

// QueryResponse is the answer to a single query
type QueryResponse struct {
	IndexID      string `json:"indexId"`
	Kind         string `json:"kind"`
	Found        bool   `json:"found"`
	Count        int    `json:"count"`
	NodesVisited int    `json:"nodesVisited"`
	Hits         []Hit  `json:"hits"`
}

// Handler returns the routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/index", s.handleIndex)
	mux.HandleFunc("/api/query", s.handleQuery)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	logs.WithTag("addr", addr).Info("starting server")
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the built-in scenes
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListScenes())
}

// handleIndex builds or fetches an index and returns its statistics
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	req, err := parseIndexRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	index, err := s.index(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	bounds := index.BoundingBox()
	writeJSON(w, http.StatusOK, IndexResponse{
		ID:      index.ID,
		Request: req,
		Bounds:  [2][3]float64{vectorArray(bounds.Min), vectorArray(bounds.Max)},
		Stats:   index.Stats(),
	})
}

// handleQuery runs one query against an index
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	req, err := parseIndexRequest(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	task, err := parseTask(values)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	index, err := s.index(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	results, _ := query.RunBatch(index, []query.Task{task}, 1)
	result := results[0]
	if result.Error != nil {
		writeError(w, http.StatusBadRequest, result.Error)
		return
	}

	response := QueryResponse{
		IndexID:      index.ID,
		Kind:         result.Kind.String(),
		Found:        result.Found,
		Count:        result.Count,
		NodesVisited: result.NodesVisited,
		Hits:         []Hit{},
	}
	hits := result.Hits
	if task.Kind == query.ClosestPoint && result.Found {
		hits = []geometry.Interaction{result.Closest}
	}
	for _, i := range hits {
		response.Hits = append(response.Hits, Hit{
			Distance:       i.Distance,
			Point:          vectorArray(i.Point),
			PrimitiveIndex: i.PrimitiveIndex,
		})
	}
	writeJSON(w, http.StatusOK, response)
}

// index returns the cached index for req, building it when needed
func (s *Server) index(req IndexRequest) (*mbvh.Mbvh, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index, ok := s.indices[req]; ok {
		return index, nil
	}

	heuristic, err := bvh.ParseCostHeuristic(req.Heuristic)
	if err != nil {
		return nil, err
	}
	sc, err := scene.New(req.Scene, req.Primitives, req.Seed)
	if err != nil {
		return nil, err
	}

	config := bvh.DefaultConfig()
	config.CostHeuristic = heuristic
	tree, err := bvh.New(sc.Primitives, config)
	if err != nil {
		return nil, err
	}
	index, err := mbvh.New(tree, mbvh.Config{BranchingFactor: req.Branching})
	if err != nil {
		return nil, err
	}

	s.indices[req] = index
	return index, nil
}

func parseIndexRequest(values url.Values) (IndexRequest, error) {
	req := IndexRequest{
		Scene:     values.Get("scene"),
		Heuristic: values.Get("heuristic"),
	}
	if req.Scene == "" {
		req.Scene = "segments"
	}
	if req.Heuristic == "" {
		req.Heuristic = bvh.DefaultConfig().CostHeuristic.String()
	}

	var err error
	if req.Primitives, err = parseIntParam(values, "primitives", 1000, 0, 1000000); err != nil {
		return req, err
	}
	seed, err := parseIntParam(values, "seed", 1, math.MinInt32, math.MaxInt32)
	if err != nil {
		return req, err
	}
	req.Seed = int64(seed)
	if req.Branching, err = parseIntParam(values, "branching", mbvh.DefaultConfig().BranchingFactor, 2, 16); err != nil {
		return req, err
	}
	return req, nil
}

func parseTask(values url.Values) (query.Task, error) {
	kind := query.ClosestHit
	if name := values.Get("kind"); name != "" {
		var err error
		if kind, err = query.ParseKind(name); err != nil {
			return query.Task{}, err
		}
	}

	origin, err := parseVectorParam(values, "o", r3.Vector{})
	if err != nil {
		return query.Task{}, err
	}
	if kind == query.ClosestPoint {
		r2, err := parseFloatParam(values, "r2", math.Inf(1), 0, math.Inf(1))
		if err != nil {
			return query.Task{}, err
		}
		return query.ClosestPointTask(0, core.NewBoundingSphere(origin, r2), r3.Vector{}), nil
	}

	direction, err := parseVectorParam(values, "d", r3.Vector{X: 1})
	if err != nil {
		return query.Task{}, err
	}
	return query.RayTask(0, kind, core.NewRay(origin, direction)), nil
}

// parseVectorParam parses the components prefix+"x", prefix+"y" and
// prefix+"z". Missing components take the default.
func parseVectorParam(values url.Values, prefix string, defaultValue r3.Vector) (r3.Vector, error) {
	var v r3.Vector
	var err error
	if v.X, err = parseFloatParam(values, prefix+"x", defaultValue.X, math.Inf(-1), math.Inf(1)); err != nil {
		return v, err
	}
	if v.Y, err = parseFloatParam(values, prefix+"y", defaultValue.Y, math.Inf(-1), math.Inf(1)); err != nil {
		return v, err
	}
	if v.Z, err = parseFloatParam(values, prefix+"z", defaultValue.Z, math.Inf(-1), math.Inf(1)); err != nil {
		return v, err
	}
	return v, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, errors.New("invalid parameter").
				WithType(core.ErrTypeInvalidConfig).
				WithTag("key", key).
				WithTag("value", value)
		}
		if parsed < min || parsed > max {
			return 0, errors.New("parameter out of range").
				WithType(core.ErrTypeInvalidConfig).
				WithTag("key", key).
				WithTag("value", parsed).
				WithTag("min", min).
				WithTag("max", max)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(parsed) {
			return 0, errors.New("invalid parameter").
				WithType(core.ErrTypeInvalidConfig).
				WithTag("key", key).
				WithTag("value", value)
		}
		if parsed < min || parsed > max {
			return 0, errors.New("parameter out of range").
				WithType(core.ErrTypeInvalidConfig).
				WithTag("key", key).
				WithTag("value", parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func vectorArray(v r3.Vector) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logs.Warn(errors.New("writing response failed").Wrap(err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	logs.WithTag("status", status).Debug(err)
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"type":  errors.Type(err),
	})
}
