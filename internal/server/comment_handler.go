package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) createComment(c *gin.Context) {
	var req struct {
		TaskID  string `json:"taskId" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := s.comments.Create(c.Request.Context(), currentUserID(c), req.TaskID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) listComments(c *gin.Context) {
	comments, err := s.comments.ListByTask(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) deleteComment(c *gin.Context) {
	if err := s.comments.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
