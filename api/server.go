// Package api exposes pipeline tasks over HTTP so an external scheduler can
// run them one at a time.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/pevans/newsfetch/logger"
	"github.com/pevans/newsfetch/pipeline"
)

// TaskAPIServer serves the tasks of one DAG. Only one task or DAG run is
// active at a time; a request arriving during a run gets 409.
type TaskAPIServer struct {
	dag     pipeline.DAG
	runner  *pipeline.Runner
	log     logger.Logger
	running sync.Mutex
}

// NewTaskAPIServer creates a new task API server.
func NewTaskAPIServer(dag pipeline.DAG, runner *pipeline.Runner, log logger.Logger) *TaskAPIServer {
	return &TaskAPIServer{
		dag:    dag,
		runner: runner,
		log:    log,
	}
}

// SetupRouter configures the Gin router with the task API routes.
func (s *TaskAPIServer) SetupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	api.GET("/tasks", s.HandleListTasks)
	api.POST("/tasks/:name", s.HandleRunTask)
	api.POST("/runs", s.HandleRunDAG)

	return router
}

// ListTasksResponse represents the response for GET /api/v1/tasks.
type ListTasksResponse struct {
	DAG   string   `json:"dag"`
	Tasks []string `json:"tasks"`
}

// RunTaskResponse represents the response for POST /api/v1/tasks/{name}.
type RunTaskResponse struct {
	Task   string          `json:"task"`
	Output json.RawMessage `json:"output"`
}

// RunDAGResponse represents the response for POST /api/v1/runs.
type RunDAGResponse struct {
	DAG     string                `json:"dag"`
	Results []pipeline.TaskResult `json:"results"`
}

// errorResponse creates a standardized error response.
func errorResponse(code, message string) gin.H {
	return gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// runContext detaches a run from the request so a client that disconnects
// does not kill publish commands halfway through.
func runContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

// conflict reports that another run holds the server.
func conflict(c *gin.Context) {
	c.JSON(http.StatusConflict, errorResponse("conflict", "A pipeline run is already in progress"))
}

// HandleListTasks handles GET /api/v1/tasks.
func (s *TaskAPIServer) HandleListTasks(c *gin.Context) {
	c.JSON(http.StatusOK, ListTasksResponse{
		DAG:   s.dag.Name,
		Tasks: s.dag.Names(),
	})
}

// HandleRunTask handles POST /api/v1/tasks/{name}. The request body is the
// previous task's output and may be empty for the first task.
func (s *TaskAPIServer) HandleRunTask(c *gin.Context) {
	name := c.Param("name")
	task, ok := s.dag.Task(name)
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse("not_found", "Unknown task: "+name))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("bad_request", err.Error()))
		return
	}

	var input json.RawMessage
	if len(body) > 0 {
		if !json.Valid(body) {
			c.JSON(http.StatusBadRequest, errorResponse("bad_request", "Request body must be JSON"))
			return
		}
		input = body
	}

	if !s.running.TryLock() {
		conflict(c)
		return
	}
	defer s.running.Unlock()

	s.log.Info("Running task "+name+" via API", logger.String("task", name))
	output, err := pipeline.RunTask(runContext(c), task, input)
	if err != nil {
		s.log.Error("Task failed", logger.String("task", name), logger.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse("task_failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, RunTaskResponse{Task: name, Output: output})
}

// HandleRunDAG handles POST /api/v1/runs.
func (s *TaskAPIServer) HandleRunDAG(c *gin.Context) {
	if !s.running.TryLock() {
		conflict(c)
		return
	}
	defer s.running.Unlock()

	results, err := s.runner.Run(runContext(c), s.dag)
	if err != nil {
		var taskErr *pipeline.TaskError
		code := "run_failed"
		if errors.As(err, &taskErr) {
			code = "task_failed"
		}
		resp := errorResponse(code, err.Error())
		resp["dag"] = s.dag.Name
		resp["results"] = results
		c.JSON(http.StatusInternalServerError, resp)
		return
	}

	c.JSON(http.StatusOK, RunDAGResponse{DAG: s.dag.Name, Results: results})
}
