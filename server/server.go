// Package server exposes simulators over HTTP so that a suite running in
// another process can drive them
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/sim"
	"github.com/qwirky-yuzu/custom-sim-example/suite"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"golang.org/x/exp/slices"
)

// ErrUnknownEnv is returned for ids that were never created or already closed
var ErrUnknownEnv = errors.New("unknown environment")

type instance struct {
	simulator string
	env       *suite.Synchronized
	created   time.Time
}

// Server holds the simulator instances created by its clients
type Server struct {
	Addr   string
	server *http.Server
	logger *log.Logger

	factories map[string]suite.Factory

	lock    *sync.Mutex
	envs    map[string]*instance
	created int
}

// Option configures the server
type Option func(*Server)

func WithLogger(logger *log.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server able to build the simulators of factories, keyed by name
func New(addr string, factories map[string]suite.Factory, opts ...Option) *Server {
	s := &Server{
		Addr:      addr,
		logger:    log.New(io.Discard),
		factories: factories,
		lock:      new(sync.Mutex),
		envs:      make(map[string]*instance),
	}
	for _, o := range opts {
		o(s)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/simulators", s.handleSimulators)
	r.POST("/envs", s.handleCreate)
	r.GET("/envs", s.handleList)
	r.POST("/envs/:id/reset", s.handleReset)
	r.POST("/envs/:id/step", s.handleStep)
	r.GET("/envs/:id/render", s.handleRender)
	r.DELETE("/envs/:id", s.handleClose)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler serving the API
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start listens in the background until ctx is done
func (s *Server) Start(ctx context.Context) {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("server stopped", "addr", s.Addr, "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.server.Shutdown(shutdownCtx)
		s.Close()
	}()
}

// Close every remaining simulator
func (s *Server) Close() error {
	s.lock.Lock()
	envs := s.envs
	s.envs = make(map[string]*instance)
	s.lock.Unlock()

	var first error
	for id, inst := range envs {
		if err := inst.env.Close(); err != nil {
			s.logger.Warn("closing environment", "id", id, "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// Len is the number of open simulators
func (s *Server) Len() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.envs)
}

func (s *Server) get(id string) (*instance, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	inst, ok := s.envs[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEnv, "id %s", id)
	}
	return inst, nil
}

func (s *Server) create(simulator string, opts suite.Options) (string, *instance, error) {
	factory, ok := s.factories[simulator]
	if !ok {
		return "", nil, errors.Wrapf(types.ErrConfiguration, "unknown simulator %q", simulator)
	}
	config, err := suite.ParseOptions(opts)
	if err != nil {
		return "", nil, err
	}

	s.lock.Lock()
	index := s.created
	s.created += 1
	s.lock.Unlock()

	fn, err := factory(index, config)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()
	adapter, err := suite.NewWithConfig(fn, config, sim.WithLogger(s.logger.With("env", id)))
	if err != nil {
		return "", nil, err
	}
	// human rendering is returned to the client, never printed by the server
	adapter.SetOutput(nil)

	inst := &instance{simulator: simulator, env: suite.NewSynchronized(adapter), created: time.Now()}
	s.lock.Lock()
	s.envs[id] = inst
	s.lock.Unlock()
	return id, inst, nil
}

func (s *Server) remove(id string) (*instance, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	inst, ok := s.envs[id]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownEnv, "id %s", id)
	}
	delete(s.envs, id)
	return inst, nil
}

// status code of an error returned by the simulator stack
func errorStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnknownEnv):
		return http.StatusNotFound
	case errors.Is(err, types.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrIllegalState):
		return http.StatusConflict
	case errors.Is(err, types.ErrInvalidAction):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.FullPath(), "err", err)
	} else {
		s.logger.Debug("request rejected", "path", c.FullPath(), "status", status, "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleSimulators(c *gin.Context) {
	names := make([]string, 0, len(s.factories))
	for name := range s.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	c.JSON(http.StatusOK, gin.H{"simulators": names})
}
