package server

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"taskboard/internal/repository"
	"taskboard/internal/service"
)

// Server wires the REST API over the service layer.
type Server struct {
	auth          *service.AuthService
	userRepo      *repository.UserRepository
	tasks         *service.TaskService
	teams         *service.TeamService
	comments      *service.CommentService
	notifications *service.NotificationService

	engine *gin.Engine
}

func New(
	auth *service.AuthService,
	userRepo *repository.UserRepository,
	tasks *service.TaskService,
	teams *service.TeamService,
	comments *service.CommentService,
	notifications *service.NotificationService,
) *Server {
	s := &Server{
		auth:          auth,
		userRepo:      userRepo,
		tasks:         tasks,
		teams:         teams,
		comments:      comments,
		notifications: notifications,
		engine:        gin.Default(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.Use(cors.Default())

	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "taskboard api is running"})
	})

	s.engine.POST("/users/register", s.register)
	s.engine.POST("/users/login", s.login)

	authed := s.engine.Group("/", s.authMiddleware())

	authed.GET("/users/profile", s.profile)
	authed.GET("/users/list", s.listUsers)

	authed.POST("/tasks", s.createTask)
	authed.GET("/tasks", s.listTasks)
	authed.GET("/tasks/:id", s.getTask)
	authed.PATCH("/tasks/:id", s.updateTask)
	authed.DELETE("/tasks/:id", s.deleteTask)
	authed.POST("/tasks/:id/assign", s.assignTask)
	authed.POST("/tasks/:id/watchers", s.addWatchers)
	authed.DELETE("/tasks/:id/watchers/:userId", s.removeWatcher)
	authed.GET("/tasks/:id/comments", s.listComments)

	authed.POST("/teams", s.createTeam)
	authed.GET("/teams", s.listTeams)
	authed.GET("/teams/:id", s.getTeam)
	authed.PATCH("/teams/:id", s.updateTeam)
	authed.DELETE("/teams/:id", s.deleteTeam)
	authed.GET("/teams/:id/members", s.teamMembers)
	authed.POST("/teams/:id/members", s.addTeamMember)
	authed.DELETE("/teams/:id/members/:userId", s.removeTeamMember)

	authed.POST("/comments", s.createComment)
	authed.DELETE("/comments/:id", s.deleteComment)

	authed.GET("/notifications", s.listNotifications)
	authed.GET("/notifications/unread-count", s.unreadCount)
	authed.PATCH("/notifications/:id/read", s.markNotificationRead)
	authed.PATCH("/notifications/read-all", s.markAllNotificationsRead)
	authed.DELETE("/notifications/:id", s.deleteNotification)
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// respondError maps service errors onto HTTP status codes.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
