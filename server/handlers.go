package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/suite"
	"github.com/qwirky-yuzu/custom-sim-example/types"
	"golang.org/x/exp/slices"
)

type createRequest struct {
	Simulator string        `json:"simulator"`
	Options   suite.Options `json:"options"`
}

type resetRequest struct {
	Seed *uint64 `json:"seed"`
}

type stepRequest struct {
	Action *int `json:"action"`
}

// ActionsResponse describes the legal actions of the current state
type ActionsResponse struct {
	Actions   []types.ActionID `json:"actions"`
	Truncated int              `json:"truncated"`
}

func newActionsResponse(set types.ActionSet) ActionsResponse {
	actions := set.Actions
	if actions == nil {
		actions = []types.ActionID{}
	}
	return ActionsResponse{Actions: actions, Truncated: set.Truncated}
}

type ResetResponse struct {
	Observation types.Observation `json:"observation"`
	ActionsResponse
}

type StepResponse struct {
	Observation types.Observation `json:"observation"`
	Reward      float64           `json:"reward"`
	Done        bool              `json:"done"`
	Terminated  bool              `json:"terminated"`
	Truncated   bool              `json:"truncated"`
	Info        types.Info        `json:"info"`
	Next        ActionsResponse   `json:"next"`
}

func (s *Server) handleCreate(c *gin.Context) {
	req := createRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, errors.Wrapf(types.ErrConfiguration, "bad request: %s", err))
		return
	}
	id, inst, err := s.create(req.Simulator, req.Options)
	if err != nil {
		s.fail(c, err)
		return
	}
	config := inst.env.Config()
	s.logger.Info("environment created", "id", id, "simulator", req.Simulator)
	c.JSON(http.StatusCreated, gin.H{
		"id":                    id,
		"simulator":             req.Simulator,
		"max_action_space_size": config.MaxActionSpaceSize,
		"eps_end_timestep":      config.EpsEndTimestep,
		"render_mode":           config.RenderMode,
		"agent":                 config.Agent,
	})
}

func (s *Server) handleList(c *gin.Context) {
	s.lock.Lock()
	ids := make([]string, 0, len(s.envs))
	for id := range s.envs {
		ids = append(ids, id)
	}
	s.lock.Unlock()
	slices.Sort(ids)
	c.JSON(http.StatusOK, gin.H{"envs": ids})
}

func (s *Server) handleReset(c *gin.Context) {
	inst, err := s.get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	req := resetRequest{}
	// an empty body resets without a seed
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.fail(c, errors.Wrapf(types.ErrConfiguration, "bad request: %s", err))
			return
		}
	}

	var obs types.Observation
	var set types.ActionSet
	if req.Seed != nil {
		obs, set, err = inst.env.ResetWithSeed(*req.Seed)
	} else {
		obs, set, err = inst.env.Reset()
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ResetResponse{Observation: obs, ActionsResponse: newActionsResponse(set)})
}

func (s *Server) handleStep(c *gin.Context) {
	inst, err := s.get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == nil {
		s.fail(c, errors.Wrap(types.ErrInvalidAction, "request must carry an integer action"))
		return
	}
	res, err := inst.env.Step(types.ActionID(*req.Action))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, StepResponse{
		Observation: res.Observation,
		Reward:      res.Reward,
		Done:        res.Done,
		Terminated:  res.Terminated(),
		Truncated:   res.Truncated(),
		Info:        res.Info,
		Next:        newActionsResponse(res.Actions),
	})
}

func (s *Server) handleRender(c *gin.Context) {
	inst, err := s.get(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := inst.env.Render()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"render": out, "mode": inst.env.Config().RenderMode})
}

func (s *Server) handleClose(c *gin.Context) {
	inst, err := s.remove(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := inst.env.Close(); err != nil {
		s.fail(c, err)
		return
	}
	s.logger.Info("environment closed", "id", c.Param("id"), "simulator", inst.simulator)
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
