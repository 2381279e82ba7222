package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/qwirky-yuzu/custom-sim-example/grid"
	"github.com/qwirky-yuzu/custom-sim-example/rlhr"
	"github.com/qwirky-yuzu/custom-sim-example/suite"
	"github.com/qwirky-yuzu/custom-sim-example/types"
)

func testServer() *Server {
	return New("", map[string]suite.Factory{
		"grid": func(_ int, _ types.Config) (types.TransitionFunction, error) {
			return grid.NewGridEnvironment(3, 3, 1), nil
		},
		"rlhr": rlhr.Factory(15, 3),
	})
}

func do(t *testing.T, s *Server, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		bs, _ := json.Marshal(body)
		reader = bytes.NewReader(bs)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	out := make(map[string]interface{})
	json.Unmarshal(w.Body.Bytes(), &out)
	return w.Code, out
}

func create(t *testing.T, s *Server, simulator string, opts map[string]interface{}) string {
	t.Helper()
	code, out := do(t, s, http.MethodPost, "/envs", map[string]interface{}{"simulator": simulator, "options": opts})
	if code != http.StatusCreated {
		t.Fatalf("create %s: %d %v", simulator, code, out)
	}
	return out["id"].(string)
}

func TestCreateValidatesOptions(t *testing.T) {
	s := testServer()
	code, _ := do(t, s, http.MethodPost, "/envs", map[string]interface{}{
		"simulator": "grid",
		"options":   map[string]interface{}{"max_action_space_size": 0, "eps_end_timestep": 3},
	})
	if code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", code)
	}
	code, _ = do(t, s, http.MethodPost, "/envs", map[string]interface{}{"simulator": "chess", "options": map[string]interface{}{}})
	if code != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown simulator, got %d", code)
	}
	if s.Len() != 0 {
		t.Errorf("failed creations should not leave environments")
	}
	_, out := do(t, s, http.MethodGet, "/simulators", nil)
	if names := out["simulators"].([]interface{}); len(names) != 2 || names[0] != "grid" {
		t.Errorf("unexpected simulators %v", names)
	}
}

func TestEpisodeOverHTTP(t *testing.T) {
	s := testServer()
	id := create(t, s, "grid", map[string]interface{}{"max_action_space_size": 6, "eps_end_timestep": 2})

	code, _ := do(t, s, http.MethodPost, "/envs/"+id+"/step", map[string]interface{}{"action": 0})
	if code != http.StatusConflict {
		t.Errorf("step before reset: expected 409, got %d", code)
	}
	code, out := do(t, s, http.MethodPost, "/envs/"+id+"/reset", nil)
	if code != http.StatusOK || len(out["actions"].([]interface{})) != 4 {
		t.Fatalf("reset: %d %v", code, out)
	}
	code, _ = do(t, s, http.MethodPost, "/envs/"+id+"/step", map[string]interface{}{"action": int(grid.MovementDown)})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("illegal action: expected 422, got %d", code)
	}
	code, _ = do(t, s, http.MethodPost, "/envs/"+id+"/step", map[string]interface{}{})
	if code != http.StatusUnprocessableEntity {
		t.Errorf("missing action: expected 422, got %d", code)
	}

	for i := 0; i < 2; i++ {
		code, out = do(t, s, http.MethodPost, "/envs/"+id+"/step", map[string]interface{}{"action": int(grid.MovementUp)})
		if code != http.StatusOK {
			t.Fatalf("step %d: %d %v", i, code, out)
		}
	}
	if out["done"] != true || out["truncated"] != true || out["terminated"] != false {
		t.Errorf("expected a truncated end, got %v", out)
	}
	info := out["info"].(map[string]interface{})
	if info[types.InfoTimestep] != 2.0 {
		t.Errorf("unexpected info %v", info)
	}

	code, out = do(t, s, http.MethodGet, "/envs/"+id+"/render", nil)
	if code != http.StatusOK || out["render"] == "" {
		t.Errorf("render: %d %v", code, out)
	}

	code, _ = do(t, s, http.MethodDelete, "/envs/"+id, nil)
	if code != http.StatusOK {
		t.Errorf("close: %d", code)
	}
	code, _ = do(t, s, http.MethodPost, "/envs/"+id+"/reset", nil)
	if code != http.StatusNotFound {
		t.Errorf("closed env: expected 404, got %d", code)
	}
}

func TestRLHROverHTTP(t *testing.T) {
	s := testServer()
	id := create(t, s, "rlhr", map[string]interface{}{"max_action_space_size": 10, "eps_end_timestep": 5, "seed": 7})
	code, out := do(t, s, http.MethodPost, "/envs/"+id+"/reset", map[string]interface{}{"seed": 11})
	if code != http.StatusOK {
		t.Fatalf("reset: %d %v", code, out)
	}
	if out["truncated"] != 5.0 || len(out["actions"].([]interface{})) != 10 {
		t.Errorf("expected 10 actions with 5 truncated, got %v %v", out["actions"], out["truncated"])
	}
	obs := out["observation"].(map[string]interface{})
	if mask := obs["action_mask"].([]interface{}); len(mask) != 10 {
		t.Errorf("unexpected mask %v", mask)
	}
	code, out = do(t, s, http.MethodPost, "/envs/"+id+"/step", map[string]interface{}{"action": 9})
	if code != http.StatusOK || out["reward"] != 1.0 {
		t.Errorf("step: %d %v", code, out)
	}
	if err := s.Close(); err != nil || s.Len() != 0 {
		t.Errorf("close should drop every environment")
	}
}

func TestErrorStatus(t *testing.T) {
	cases := map[error]int{
		errors.Wrap(types.ErrConfiguration, "x"): http.StatusBadRequest,
		errors.Wrap(types.ErrIllegalState, "x"):  http.StatusConflict,
		errors.Wrap(types.ErrInvalidAction, "x"): http.StatusUnprocessableEntity,
		errors.Wrap(ErrUnknownEnv, "x"):          http.StatusNotFound,
		errors.New("boom"):                       http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := errorStatus(err); got != want {
			t.Errorf("%v: expected %d, got %d", err, want, got)
		}
	}
}
