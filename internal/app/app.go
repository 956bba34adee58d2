package app

import (
	"context"
	"errors"
	"fmt"

	"auction_backend/database"
	"auction_backend/internal/auth"
	"auction_backend/internal/config"
	"auction_backend/internal/email"
	"auction_backend/internal/handlers"
	"auction_backend/internal/logger"
	"auction_backend/internal/middleware"
	"auction_backend/internal/models"
	"auction_backend/internal/repositories"
	"auction_backend/internal/routes"
	"auction_backend/internal/services"
	"auction_backend/internal/validator"
	"auction_backend/internal/visibility"
	"auction_backend/internal/workers"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...", "driver", cfg.Database.Driver)
	gormDB, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(gormDB); err != nil {
			logger.Fatal("Failed to migrate database", "error", err)
		}
	}

	if err := seedFirstCounty(gormDB, cfg, repositories.NewUserRepository()); err != nil {
		logger.Fatal("Failed to seed first county user", "error", err)
	}

	worker := workers.NewAuctionWorker(
		gormDB,
		repositories.NewPropertyRepository(),
		repositories.NewBidRepository(),
		repositories.NewLinkedBidderRepository(),
		cfg.CloseInterval(),
	)
	worker.Start(context.Background())

	ginRouter, err := SetupRouter(cfg, gormDB)
	if err != nil {
		logger.Fatal("Failed to set up router", "error", err)
	}

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

// SetupRouter builds the gin engine with every service, handler and route wired.
func SetupRouter(cfg *config.Config, gormDB *gorm.DB) (*gin.Engine, error) {
	emailProvider := email.NewProvider(smtpConfig(cfg))
	if err := emailProvider.Validate(); err != nil {
		return nil, fmt.Errorf("email provider: %w", err)
	}

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.TokenTTL())

	serviceContainer := initializeServices(cfg, emailProvider, tokens)
	appHandlers := initializeHandlers(serviceContainer)

	ginRouter := initializeGinRouter(gormDB, cfg.App.CORSOrigins)
	routes.RegisterRoutes(ginRouter, appHandlers, middleware.AuthMiddleware(tokens))

	return ginRouter, nil
}

// smtpConfig layers the configured relay over email.DefaultConfig.
func smtpConfig(cfg *config.Config) *email.SMTPConfig {
	c := email.DefaultConfig()
	c.Host = cfg.Email.SMTPHost
	if cfg.Email.SMTPPort > 0 {
		c.Port = cfg.Email.SMTPPort
	}
	c.Username = cfg.Email.SMTPUsername
	c.Password = cfg.Email.SMTPPassword
	c.FromEmail = cfg.Email.FromEmail
	c.FromName = cfg.Email.FromName
	c.UseTLS = cfg.Email.UseTLS
	if timeout := cfg.SendTimeout(); timeout > 0 {
		c.Timeout = timeout
	}
	return c
}

func initializeServices(cfg *config.Config, emailProvider email.Provider, tokens *auth.TokenManager) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	propertyRepo := repositories.NewPropertyRepository()
	bidRepo := repositories.NewBidRepository()
	linkRepo := repositories.NewLinkedBidderRepository()
	alertRepo := repositories.NewAlertRepository()
	notificationRepo := repositories.NewNotificationRepository()

	dispatcher := services.NewAlertDispatcher(emailProvider, email.NewTemplateManager(), services.DispatcherConfig{
		BaseURL:     cfg.App.BaseURL,
		SendTimeout: cfg.SendTimeout(),
		MaxParallel: cfg.Email.MaxParallel,
	})
	notificationService := services.NewNotificationService(notificationRepo)
	resolver := services.NewRecipientResolver(linkRepo, userRepo)

	return &services.ServiceContainer{
		AuthService:         services.NewAuthService(userRepo, tokens, int(cfg.TokenTTL().Seconds())),
		PropertyService:     services.NewPropertyService(propertyRepo, bidRepo, linkRepo, userRepo),
		AlertService:        services.NewAlertService(propertyRepo, alertRepo, resolver, dispatcher, notificationService),
		ProfileService:      services.NewProfileService(userRepo),
		NotificationService: notificationService,
	}
}

func initializeHandlers(svc *services.ServiceContainer) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, svc.AuthService),
		PropertyHandler:     handlers.NewPropertyHandler(baseHandler, svc.PropertyService),
		AlertHandler:        handlers.NewAlertHandler(baseHandler, svc.AlertService),
		ProfileHandler:      handlers.NewProfileHandler(baseHandler, svc.ProfileService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, svc.NotificationService),
	}
}

func initializeGinRouter(db *gorm.DB, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware(corsOrigins))
	router.Use(middleware.DBMiddleware(db))
	return router
}

// seedFirstCounty creates the configured county account when no user has that email.
func seedFirstCounty(db *gorm.DB, cfg *config.Config, userRepo repositories.UserRepository) error {
	countyEmail := cfg.Seed.CountyEmail
	countyPassword := cfg.Seed.CountyPassword

	if countyEmail == "" || countyPassword == "" {
		logger.Warn("Seed county email or password is not set. Skipping county seeding.")
		return nil
	}

	_, err := userRepo.FindByEmail(db, countyEmail)
	if err == nil {
		logger.Info("County user already exists. Skipping creation.", "email", countyEmail)
		return nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return fmt.Errorf("failed to check for county user: %w", err)
	}

	if err := auth.ValidatePassword(countyPassword); err != nil {
		return fmt.Errorf("seed county password: %w", err)
	}
	hashedPassword, err := auth.HashPassword(countyPassword)
	if err != nil {
		return fmt.Errorf("failed to hash county password: %w", err)
	}

	logger.Warn("No county user found with specified email. Creating first county user...", "email", countyEmail)
	county := &models.User{
		Name:                  cfg.Seed.CountyName,
		Email:                 countyEmail,
		PasswordHash:          hashedPassword,
		Role:                  models.UserRoleCounty,
		Status:                models.UserStatusActive,
		VisibilityPreferences: visibility.Defaults(),
	}
	if err := userRepo.Create(db, county); err != nil {
		return fmt.Errorf("failed to create county user: %w", err)
	}

	logger.Info("Created first county user", "email", countyEmail, "user_id", county.ID)
	return nil
}
