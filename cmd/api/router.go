package api

import (
	"net/http"

	accountDelivery "agendamail-backend/internal/account/delivery"
	accountUsecasePkg "agendamail-backend/internal/account/usecase"
	agendaDelivery "agendamail-backend/internal/agenda/delivery"
	agendaUsecasePkg "agendamail-backend/internal/agenda/usecase"
	"agendamail-backend/internal/auth/delivery"
	authUsecasePkg "agendamail-backend/internal/auth/usecase"
	emailDelivery "agendamail-backend/internal/email/delivery"
	emailUsecasePkg "agendamail-backend/internal/email/usecase"
	"agendamail-backend/internal/usage"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecasePkg.AuthUsecase, accountUsecase accountUsecasePkg.AccountUsecase, agendaUsecase agendaUsecasePkg.AgendaUsecase, emailUsecase emailUsecasePkg.EmailUsecase, usageTracker *usage.Tracker) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	accountHandler := accountDelivery.NewAccountHandler(accountUsecase)
	agendaHandler := agendaDelivery.NewAgendaHandler(agendaUsecase)
	emailHandler := emailDelivery.NewEmailHandler(emailUsecase)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleSignIn)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", delivery.AuthMiddleware(authUsecase), authHandler.Me)
		}

		// Account routes (protected)
		accounts := api.Group("/accounts")
		accounts.Use(delivery.AuthMiddleware(authUsecase))
		{
			accounts.GET("", accountHandler.ListAccounts)
			accounts.POST("/link", accountHandler.LinkAccount)
			accounts.DELETE("/:id", accountHandler.UnlinkAccount)
		}

		api.POST("/redirect-to-app", delivery.AuthMiddleware(authUsecase), accountHandler.RedirectToApp)

		// Agenda routes (protected)
		agenda := api.Group("/agenda")
		agenda.Use(delivery.AuthMiddleware(authUsecase))
		{
			agenda.GET("", agendaHandler.ListAgenda)
			agenda.POST("/sync", agendaHandler.SyncAgenda)
		}

		// Gmail routes (protected)
		google := api.Group("/google")
		google.Use(delivery.AuthMiddleware(authUsecase))
		{
			google.GET("/threads", emailHandler.GetThreads)
			google.GET("/messages/:messageId", emailHandler.GetMessage)
			google.POST("/send", emailHandler.SendEmail)
			google.POST("/messages/:messageId/reply", emailHandler.ReplyToMessage)
			google.POST("/watch", emailHandler.WatchMailbox)
			google.DELETE("/watch", emailHandler.StopWatchMailbox)
		}

		// Voice assistant routes (protected). GET because voice clients
		// fire simple link-style requests.
		voice := api.Group("/voice")
		voice.Use(delivery.AuthMiddleware(authUsecase))
		{
			voice.GET("/send", emailHandler.SendDraft)
		}

		// Usage routes (protected)
		if usageTracker != nil {
			usageHandler := usage.NewUsageHandler(usageTracker)
			api.GET("/usage", delivery.AuthMiddleware(authUsecase), usageHandler.GetUsage)
		}
	}
}
