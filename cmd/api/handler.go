package api

import (
	accountUsecasePkg "agendamail-backend/internal/account/usecase"
	agendaUsecasePkg "agendamail-backend/internal/agenda/usecase"
	authUsecasePkg "agendamail-backend/internal/auth/usecase"
	emailUsecasePkg "agendamail-backend/internal/email/usecase"
	"agendamail-backend/internal/usage"
	"agendamail-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase    authUsecasePkg.AuthUsecase
	accountUsecase accountUsecasePkg.AccountUsecase
	agendaUsecase  agendaUsecasePkg.AgendaUsecase
	emailUsecase   emailUsecasePkg.EmailUsecase
	usageTracker   *usage.Tracker
	config         *config.Config
}

func NewHandler(authUc authUsecasePkg.AuthUsecase, accountUc accountUsecasePkg.AccountUsecase, agendaUc agendaUsecasePkg.AgendaUsecase, emailUc emailUsecasePkg.EmailUsecase, usageTracker *usage.Tracker, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:    authUc,
		accountUsecase: accountUc,
		agendaUsecase:  agendaUc,
		emailUsecase:   emailUc,
		usageTracker:   usageTracker,
		config:         cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.accountUsecase, h.agendaUsecase, h.emailUsecase, h.usageTracker)

	return r.Run(addr)
}
