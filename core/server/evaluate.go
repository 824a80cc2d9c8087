package server

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"slices"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"example.com/water-quality/base/metrics"
	"example.com/water-quality/core/config"
	"example.com/water-quality/core/engine"
	"example.com/water-quality/core/simulation"
)

const EvaluatePath = "/evaluate"

type serverMetrics struct {
	reqsReceived prometheus.Counter
	reqsServed   prometheus.Counter
	reqsFailed   prometheus.Counter
	cacheHits    prometheus.Counter
	cacheEntries prometheus.Gauge
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	f := promauto.With(reg)
	return &serverMetrics{
		reqsReceived: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.ServerReqsReceivedN,
			Help: metrics.ServerReqsReceivedH,
		}),
		reqsServed: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.ServerReqsServedN,
			Help: metrics.ServerReqsServedH,
		}),
		reqsFailed: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.ServerReqsFailedN,
			Help: metrics.ServerReqsFailedH,
		}),
		cacheHits: f.NewCounter(prometheus.CounterOpts{
			Name: metrics.ServerCacheHitsN,
			Help: metrics.ServerCacheHitsH,
		}),
		cacheEntries: f.NewGauge(prometheus.GaugeOpts{
			Name: metrics.ServerCacheEntriesN,
			Help: metrics.ServerCacheEntriesH,
		}),
	}
}

type Options struct {
	// CacheSize bounds the number of cached responses. Zero disables the
	// cache.
	CacheSize int
	// Verdict, if set, is applied to the output variable VerdictOutput.
	Verdict       *config.Verdict
	VerdictOutput string
	// Registerer receives the server and simulation metrics. Nil means
	// prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// Response is the JSON body returned by the evaluation endpoint.
type Response struct {
	Inputs   map[string]float64 `json:"inputs"`
	Outputs  map[string]float64 `json:"outputs,omitempty"`
	Verdict  string             `json:"verdict,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
	Error    string             `json:"error,omitempty"`
}

// Server answers evaluation requests over HTTP. Every request is computed by
// a private Simulation; successful responses are cached by their inputs.
type Server struct {
	log     *zap.Logger
	sys     *engine.System
	opts    Options
	cache   *lru.Cache
	mtrcs   *serverMetrics
	simMtrc *simulation.Metrics
}

func New(log *zap.Logger, sys *engine.System, opts Options) (*Server, error) {
	if opts.Registerer == nil {
		opts.Registerer = prometheus.DefaultRegisterer
	}
	s := &Server{
		log:     log,
		sys:     sys,
		opts:    opts,
		mtrcs:   newServerMetrics(opts.Registerer),
		simMtrc: simulation.NewMetrics(opts.Registerer),
	}
	if opts.CacheSize > 0 {
		c, err := lru.New(opts.CacheSize)
		if err != nil {
			return nil, err
		}
		s.cache = c
	}
	return s, nil
}

// Handler returns the HTTP handler serving EvaluatePath.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(EvaluatePath, s.handleEvaluate)
	return mux
}

var (
	errMethod     = errors.New("method not allowed")
	errNoInputs   = errors.New("no inputs given")
	errDuplicated = errors.New("input given more than once")
)

// handleEvaluate serves GET /evaluate?<input>=<value>&...
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	s.mtrcs.reqsReceived.Inc()
	if r.Method != http.MethodGet {
		s.fail(w, http.StatusMethodNotAllowed, nil, nil, errMethod)
		return
	}

	inputs, key, err := parseInputs(r.URL.Query())
	if err != nil {
		s.fail(w, http.StatusBadRequest, inputs, nil, err)
		return
	}

	if s.cache != nil {
		if body, ok := s.cache.Get(key); ok {
			s.mtrcs.cacheHits.Inc()
			s.write(w, http.StatusOK, body.([]byte))
			s.mtrcs.reqsServed.Inc()
			return
		}
	}

	sim := simulation.New(s.log, s.sys, simulation.WithMetrics(s.simMtrc))
	for _, name := range sortedKeys(inputs) {
		if err := sim.SetInput(name, inputs[name]); err != nil {
			s.fail(w, http.StatusBadRequest, inputs, nil, err)
			return
		}
	}
	outputs, err := sim.Compute()
	if err != nil {
		s.fail(w, http.StatusUnprocessableEntity, inputs, warnings(sim), err)
		return
	}

	resp := Response{Inputs: inputs, Outputs: outputs}
	if s.opts.Verdict != nil {
		if q, ok := outputs[s.opts.VerdictOutput]; ok {
			resp.Verdict = s.opts.Verdict.Message(q)
		}
	}
	resp.Warnings = warnings(sim)
	body, err := json.Marshal(resp)
	if err != nil {
		s.fail(w, http.StatusInternalServerError, inputs, nil, err)
		return
	}
	if s.cache != nil {
		s.cache.Add(key, body)
		s.mtrcs.cacheEntries.Set(float64(s.cache.Len()))
	}
	s.write(w, http.StatusOK, body)
	s.mtrcs.reqsServed.Inc()
}

func (s *Server) fail(w http.ResponseWriter, code int, inputs map[string]float64,
	warnings []string, err error) {
	s.mtrcs.reqsFailed.Inc()
	s.log.Debug("failed to evaluate request", zap.Int("status", code), zap.Error(err))
	body, _ := json.Marshal(Response{Inputs: inputs, Warnings: warnings, Error: err.Error()})
	s.write(w, code, body)
}

func warnings(sim *simulation.Simulation) []string {
	var ws []string
	for _, dw := range sim.Warnings() {
		ws = append(ws, dw.String())
	}
	return ws
}

func (s *Server) write(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err := w.Write(body)
	if err != nil {
		s.log.Info("failed to write response", zap.Error(err))
	}
}

// parseInputs converts query parameters to crisp inputs and returns them with
// a canonical cache key.
func parseInputs(q map[string][]string) (map[string]float64, string, error) {
	if len(q) == 0 {
		return nil, "", errNoInputs
	}
	inputs := make(map[string]float64, len(q))
	for name, vs := range q {
		if len(vs) != 1 {
			return nil, "", errDuplicated
		}
		x, err := strconv.ParseFloat(vs[0], 64)
		if err != nil {
			return nil, "", err
		}
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil, "", simulation.ErrInvalidInput
		}
		inputs[name] = x
	}
	var b strings.Builder
	for i, name := range sortedKeys(inputs) {
		if i != 0 {
			b.WriteByte('&')
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(inputs[name], 'g', -1, 64))
	}
	return inputs, b.String(), nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
