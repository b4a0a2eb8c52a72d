package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yukikurage/taker-api/internal/config"
	"github.com/yukikurage/taker-api/internal/constants"
	"github.com/yukikurage/taker-api/internal/database"
	"github.com/yukikurage/taker-api/internal/handlers"
	"github.com/yukikurage/taker-api/internal/middleware"
	"github.com/yukikurage/taker-api/internal/models"
	"github.com/yukikurage/taker-api/internal/repository"
	"github.com/yukikurage/taker-api/internal/seed"
	"github.com/yukikurage/taker-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	db := database.GetDB()

	// Run migrations
	if err := database.Migrate(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	if err := database.MigrateDatabase(db, cfg.DBDriver); err != nil {
		slog.Error("Failed to create indexes", "error", err)
		os.Exit(1)
	}

	// Repositories and services
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	positionRepo := repository.NewPositionRepository(db)

	mailer, err := services.NewMailer(cfg)
	if err != nil {
		slog.Error("Failed to create mailer", "error", err)
		os.Exit(1)
	}
	aiService := services.NewAIService(cfg.OpenAIAPIKey)
	if aiService == nil {
		slog.Info("OPENAI_API_KEY not set, task suggestions disabled")
	}

	access := services.NewAccessService(userRepo, projectRepo, assignmentRepo, taskRepo)
	assignments := services.NewAssignmentService(userRepo, projectRepo, assignmentRepo)
	authService := services.NewAuthService(userRepo, positionRepo, mailer)
	userService := services.NewUserService(userRepo, projectRepo, assignmentRepo, taskRepo, positionRepo, access, assignments)
	projectService := services.NewProjectService(projectRepo, assignmentRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, projectRepo, access, aiService)

	if err := seed.Run(positionRepo, userService, seed.InitialAdmin{
		Email:    cfg.InitialAdminEmail,
		Password: cfg.InitialAdminPassword,
		FullName: cfg.InitialAdminName,
	}); err != nil {
		slog.Error("Failed to seed database", "error", err)
		os.Exit(1)
	}

	// Initialize Gin router
	r := gin.New()
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		slog.Error("Invalid TRUSTED_PROXIES", "error", err)
		os.Exit(1)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		cfg.RedisPassword,
		[]byte(cfg.SessionSecret),
	)
	if err != nil {
		slog.Error("Failed to create Redis store", "error", err)
		os.Exit(1)
	}
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	healthHandler := handlers.NewHealthHandler(db, redisClient)

	resetLimiter := middleware.NewIPRateLimiter(cfg.ResetRatePerMinute)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleManager)

	r.GET("/health", healthHandler.Live)

	api := r.Group("/api")
	{
		api.GET("/health/ready", healthHandler.Ready)

		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/forgot-password", middleware.RateLimit(resetLimiter), authHandler.ForgotPassword)
			auth.POST("/reset-password", middleware.RateLimit(resetLimiter), authHandler.ResetPassword)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		protected := api.Group("")
		protected.Use(middleware.RequireAuth(), middleware.LoadActor(access))

		users := protected.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/count", userHandler.CountUsers)
			users.POST("", staff, userHandler.CreateUser)

			users.GET("/team-leader/projects", userHandler.LeaderProjects)
			users.GET("/team-leader/team-members", userHandler.LeaderTeamMembers)
			users.GET("/team-leader/team-manager", userHandler.LeaderManager)
			users.GET("/team-leader/assignable", userHandler.AssignableUsers)
			users.GET("/member/projects", userHandler.MemberProjects)
			users.GET("/member/contacts", userHandler.MemberContacts)

			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id/role", staff, userHandler.AssignRole)
			users.POST("/:id/assign-project", staff, userHandler.AssignToProject)
			users.PATCH("/:id/profile", userHandler.UpdateProfile)
			users.DELETE("/:id", userHandler.KickUser)
		}

		projects := protected.Group("/projects")
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", staff, projectHandler.CreateProject)
			projects.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), projectHandler.DeleteProject)
			projects.GET("/:id/team", projectHandler.GetTeam)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/assign", taskHandler.AssignTask)
			tasks.POST("/suggest", taskHandler.SuggestTasks)
			tasks.PATCH("/:id/status", middleware.RequireTaskMutation(access), taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", middleware.RequireTaskMutation(access), taskHandler.DeleteTask)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
