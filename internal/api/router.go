// internal/api/router.go
package api

import (
	"context"
	"net/http"

	"recruitflow/internal/auth"
	apperrors "recruitflow/internal/common/errors"
	"recruitflow/internal/common/logger"
	"recruitflow/internal/cv"
	"recruitflow/internal/models"
	"recruitflow/internal/pipeline"
	"recruitflow/internal/search"
	"recruitflow/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the route layer wires into handlers.
type Deps struct {
	Store     store.Store
	StoreMode store.Mode
	Pipeline  *pipeline.Service
	Sessions  *auth.SessionStore
	Indexer   *search.Indexer
	Extractor *cv.Extractor
	Logger    logger.Logger
}

// NewRouter builds the gin engine with all routes registered.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(deps.Logger))

	router.GET("/healthz", healthHandler(deps.StoreMode))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandlers := &AuthHandlers{store: deps.Store, sessions: deps.Sessions, logger: deps.Logger}
	vacancyHandlers := &VacancyHandlers{store: deps.Store, logger: deps.Logger}
	agentHandlers := &AgentHandlers{store: deps.Store, logger: deps.Logger}
	userHandlers := &UserHandlers{store: deps.Store, logger: deps.Logger}
	candidateHandlers := &CandidateHandlers{
		store:     deps.Store,
		pipeline:  deps.Pipeline,
		indexer:   deps.Indexer,
		extractor: deps.Extractor,
		logger:    deps.Logger,
	}

	v1 := router.Group("/api/v1")
	v1.POST("/auth/login", authHandlers.Login)

	authed := v1.Group("")
	authed.Use(Authenticated(&sessionResolver{sessions: deps.Sessions}))

	authed.POST("/auth/logout", authHandlers.Logout)
	authed.GET("/auth/me", authHandlers.Me)

	readers := authed.Group("")
	readers.Use(RequireRole(models.RoleRecruiter, models.RoleViewer))
	readers.GET("/vacancies", vacancyHandlers.List)
	readers.GET("/vacancies/:id", vacancyHandlers.Get)
	readers.GET("/agents", agentHandlers.List)
	readers.GET("/agents/:id", agentHandlers.Get)
	readers.GET("/candidates", candidateHandlers.List)
	readers.GET("/candidates/:id", candidateHandlers.Get)
	readers.GET("/candidates/search", candidateHandlers.Search)

	recruiters := authed.Group("")
	recruiters.Use(RequireRole(models.RoleRecruiter))
	recruiters.POST("/vacancies", vacancyHandlers.Create)
	recruiters.PUT("/vacancies/:id", vacancyHandlers.Update)
	recruiters.DELETE("/vacancies/:id", vacancyHandlers.Delete)
	recruiters.POST("/agents", agentHandlers.Create)
	recruiters.POST("/candidates", candidateHandlers.Create)
	recruiters.POST("/candidates/:id/evaluate", candidateHandlers.Evaluate)
	recruiters.PUT("/candidates/:id/status", candidateHandlers.UpdateStatus)
	recruiters.POST("/candidates/:id/notify", candidateHandlers.Notify)

	admins := authed.Group("")
	admins.Use(RequireRole())
	admins.POST("/users", userHandlers.Create)
	admins.GET("/users", userHandlers.List)
	admins.PUT("/users/:id", userHandlers.Update)

	return router
}

func healthHandler(mode store.Mode) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"storeMode": string(mode),
		})
	}
}

type sessionResolver struct {
	sessions *auth.SessionStore
}

func (r *sessionResolver) Resolve(c *gin.Context) (string, string, string, error) {
	token := BearerToken(c)
	if token == "" {
		return "", "", "", apperrors.NewSessionInvalid()
	}
	session, err := r.sessions.Get(contextOf(c), token)
	if err != nil {
		return "", "", "", err
	}
	return session.UserID, session.Email, session.Role, nil
}

func contextOf(c *gin.Context) context.Context {
	return c.Request.Context()
}
