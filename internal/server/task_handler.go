package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

type createTaskRequest struct {
	Title             string     `json:"title" binding:"required"`
	Description       string     `json:"description"`
	Status            string     `json:"status"`
	ParentTaskID      *string    `json:"parentTaskId"`
	AssigneeID        *string    `json:"assigneeId"`
	TeamID            *string    `json:"teamId"`
	WatcherIDs        []string   `json:"watcherIds"`
	PlannedFinishTime *time.Time `json:"plannedFinishTime"`
	RepeatType        *string    `json:"repeatType"`
	RepeatInterval    int        `json:"repeatInterval"`
	RepeatEndDate     *time.Time `json:"repeatEndDate"`
}

type updateTaskRequest struct {
	Title             *string    `json:"title"`
	Description       *string    `json:"description"`
	Status            *string    `json:"status"`
	PlannedFinishTime *time.Time `json:"plannedFinishTime"`
	RepeatType        *string    `json:"repeatType"`
	RepeatInterval    *int       `json:"repeatInterval"`
	RepeatEndDate     *time.Time `json:"repeatEndDate"`
}

func (s *Server) createTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), currentUserID(c), service.TaskInput{
		Title:             req.Title,
		Description:       req.Description,
		Status:            req.Status,
		ParentTaskID:      req.ParentTaskID,
		AssigneeID:        req.AssigneeID,
		TeamID:            req.TeamID,
		WatcherIDs:        req.WatcherIDs,
		PlannedFinishTime: req.PlannedFinishTime,
		RepeatType:        req.RepeatType,
		RepeatInterval:    req.RepeatInterval,
		RepeatEndDate:     req.RepeatEndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) listTasks(c *gin.Context) {
	q := repository.TaskQuery{
		CreatorID:  c.Query("creatorId"),
		AssigneeID: c.Query("assigneeId"),
		OrderBy:    c.Query("orderBy"),
		OrderDesc:  c.Query("orderDirection") != "ASC",
	}
	if raw := c.Query("startTime"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.StartTime = &t
		}
	}
	if raw := c.Query("endTime"); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			q.EndTime = &t
		}
	}

	tasks, err := s.tasks.List(c.Request.Context(), currentUserID(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) getTask(c *gin.Context) {
	task, err := s.tasks.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) updateTask(c *gin.Context) {
	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.Update(c.Request.Context(), currentUserID(c), c.Param("id"), service.TaskUpdate{
		Title:             req.Title,
		Description:       req.Description,
		Status:            req.Status,
		PlannedFinishTime: req.PlannedFinishTime,
		RepeatType:        req.RepeatType,
		RepeatInterval:    req.RepeatInterval,
		RepeatEndDate:     req.RepeatEndDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) assignTask(c *gin.Context) {
	var req struct {
		AssigneeID string `json:"assigneeId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.Assign(c.Request.Context(), currentUserID(c), c.Param("id"), req.AssigneeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) addWatchers(c *gin.Context) {
	var req struct {
		WatcherIDs []string `json:"watcherIds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := s.tasks.AddWatchers(c.Request.Context(), currentUserID(c), c.Param("id"), req.WatcherIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) removeWatcher(c *gin.Context) {
	task, err := s.tasks.RemoveWatcher(c.Request.Context(), currentUserID(c), c.Param("id"), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
