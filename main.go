package main

import (
	"context"
	"log"
	"strings"

	api "agendamail-backend/cmd/api"
	accountDomain "agendamail-backend/internal/account/domain"
	accountRepo "agendamail-backend/internal/account/repository"
	accountUsecase "agendamail-backend/internal/account/usecase"
	agendaDomain "agendamail-backend/internal/agenda/domain"
	agendaRepo "agendamail-backend/internal/agenda/repository"
	agendaUsecase "agendamail-backend/internal/agenda/usecase"
	authdomain "agendamail-backend/internal/auth/domain"
	authRepo "agendamail-backend/internal/auth/repository"
	authUsecase "agendamail-backend/internal/auth/usecase"
	emailUsecase "agendamail-backend/internal/email/usecase"
	"agendamail-backend/internal/notification"
	"agendamail-backend/internal/usage"
	"agendamail-backend/pkg/calendar"
	"agendamail-backend/pkg/config"
	"agendamail-backend/pkg/database"
	"agendamail-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(&authdomain.User{}, &authdomain.RefreshToken{}, &accountDomain.EmailAccount{}, &accountDomain.AccountLink{}, &agendaDomain.AgendaItem{}); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	accountRepository := accountRepo.NewAccountRepository(db)
	agendaRepository := agendaRepo.NewAgendaRepository(db)

	// Initialize Google service wrappers
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)
	calendarService := calendar.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	accountUsecaseInstance := accountUsecase.NewAccountUsecase(accountRepository, cfg)
	agendaUsecaseInstance := agendaUsecase.NewAgendaUsecase(agendaRepository, accountUsecaseInstance, gmailService, calendarService)
	accountUsecaseInstance.SetAgendaCleaner(agendaRepository)
	emailUsecaseInstance := emailUsecase.NewEmailUsecase(gmailService, accountUsecaseInstance, cfg)

	// Initialize usage tracker (optional, API works without it)
	var usageTracker *usage.Tracker
	if cfg.RedisAddr != "" {
		usageTracker, err = usage.NewTracker(usage.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Printf("[WARN] Usage tracking disabled: %v", err)
		} else {
			agendaUsecaseInstance.SetUsageRecorder(usageTracker)
			emailUsecaseInstance.SetUsageRecorder(usageTracker)
		}
	}

	// Initialize Notification Service (Pub/Sub)
	// Only start if project ID is configured
	if cfg.GoogleProjectID != "" {
		// Extract short topic name from full resource name if necessary
		topicName := cfg.GooglePubSubTopic
		if parts := strings.Split(topicName, "/"); len(parts) > 1 {
			topicName = parts[len(parts)-1]
		}
		if topicName == "" {
			topicName = "gmail-updates"
		}

		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, cfg.GoogleCredentials, accountUsecaseInstance, agendaUsecaseInstance)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize notification service: %v", err)
		} else {
			go notifService.Start(context.Background())
		}
	} else {
		log.Printf("[WARN] GoogleProjectID not configured, notification service disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, accountUsecaseInstance, agendaUsecaseInstance, emailUsecaseInstance, usageTracker, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
