package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Test helper: a DAG that counts words and then fails on demand
func testDAG(failSecond bool) pipeline.DAG {
	return pipeline.DAG{
		Name: "test_dag",
		Tasks: []pipeline.Task{
			{Name: "words", Run: func(_ context.Context, _ json.RawMessage) (any, error) {
				return []string{"a", "b", "c"}, nil
			}},
			{Name: "count", Run: func(_ context.Context, input json.RawMessage) (any, error) {
				if failSecond {
					return nil, errors.New("count exploded")
				}
				var words []string
				if err := pipeline.Decode(input, &words); err != nil {
					return nil, err
				}
				return map[string]int{"count": len(words)}, nil
			}},
		},
	}
}

// Test helper: create a test router
func setupTestRouter(failSecond bool) *gin.Engine {
	server := NewTaskAPIServer(testDAG(failSecond), pipeline.NewRunner(logger.NewNop()), logger.NewNop())
	return server.SetupRouter()
}

// Test helper: perform a request against the router
func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestHandleListTasks verifies task names are listed in order
func TestHandleListTasks(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodGet, "/api/v1/tasks", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp ListTasksResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test_dag", resp.DAG)
	assert.Equal(t, []string{"words", "count"}, resp.Tasks)
}

// TestHandleRunTask_FirstTask verifies a task without input runs
func TestHandleRunTask_FirstTask(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodPost, "/api/v1/tasks/words", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"task":"words","output":["a","b","c"]}`, w.Body.String())
}

// TestHandleRunTask_WithInput verifies the body is passed as task input
func TestHandleRunTask_WithInput(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodPost, "/api/v1/tasks/count", `["x","y"]`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"task":"count","output":{"count":2}}`, w.Body.String())
}

// TestHandleRunTask_MissingInput verifies a task that needs input fails
func TestHandleRunTask_MissingInput(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodPost, "/api/v1/tasks/count", "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "task_failed")
}

// TestHandleRunTask_InvalidJSON verifies malformed bodies are rejected
func TestHandleRunTask_InvalidJSON(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodPost, "/api/v1/tasks/count", `["x"`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bad_request")
}

// TestHandleRunTask_NotFound verifies unknown task names return 404
func TestHandleRunTask_NotFound(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodPost, "/api/v1/tasks/nope", "")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

// TestHandleRunDAG_Success verifies the whole DAG runs
func TestHandleRunDAG_Success(t *testing.T) {
	w := doRequest(setupTestRouter(false), http.MethodPost, "/api/v1/runs", "")

	require.Equal(t, http.StatusOK, w.Code)
	var resp RunDAGResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "test_dag", resp.DAG)
	require.Len(t, resp.Results, 2)
	assert.JSONEq(t, `{"count":3}`, string(resp.Results[1].Output))
}

// TestHandleRunDAG_Failure verifies partial results accompany the error
func TestHandleRunDAG_Failure(t *testing.T) {
	w := doRequest(setupTestRouter(true), http.MethodPost, "/api/v1/runs", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
		Results []pipeline.TaskResult `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "task_failed", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "count exploded")
	assert.Len(t, resp.Results, 1)
}

// Test helper: a one-task DAG that blocks until release is closed
func blockingDAG(started chan<- struct{}, release <-chan struct{}) pipeline.DAG {
	return pipeline.DAG{
		Name: "blocking_dag",
		Tasks: []pipeline.Task{
			{Name: "wait", Run: func(_ context.Context, _ json.RawMessage) (any, error) {
				started <- struct{}{}
				<-release
				return "done", nil
			}},
		},
	}
}

// TestHandleRunDAG_Conflict verifies a second run is refused while one is active
func TestHandleRunDAG_Conflict(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	server := NewTaskAPIServer(blockingDAG(started, release), pipeline.NewRunner(logger.NewNop()), logger.NewNop())
	router := server.SetupRouter()

	first := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		first <- doRequest(router, http.MethodPost, "/api/v1/runs", "")
	}()
	<-started

	w := doRequest(router, http.MethodPost, "/api/v1/runs", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "conflict")

	w = doRequest(router, http.MethodPost, "/api/v1/tasks/wait", "")
	assert.Equal(t, http.StatusConflict, w.Code, "single tasks share the run guard")

	close(release)
	assert.Equal(t, http.StatusOK, (<-first).Code)

	// The guard is released once the run finishes
	w = doRequest(router, http.MethodPost, "/api/v1/tasks/wait", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestHandleRunDAG_OutlivesRequest verifies a cancelled request does not cancel the run
func TestHandleRunDAG_OutlivesRequest(t *testing.T) {
	dag := pipeline.DAG{
		Name: "ctx_dag",
		Tasks: []pipeline.Task{
			{Name: "check", Run: func(ctx context.Context, _ json.RawMessage) (any, error) {
				if err := ctx.Err(); err != nil {
					return nil, err
				}
				return "alive", nil
			}},
		},
	}
	router := NewTaskAPIServer(dag, pipeline.NewRunner(logger.NewNop()), logger.NewNop()).SetupRouter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, path := range []string{"/api/v1/runs", "/api/v1/tasks/check"} {
		req := httptest.NewRequest(http.MethodPost, path, nil).WithContext(ctx)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "alive", path)
	}
}
