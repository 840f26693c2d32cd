package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/discord"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/repository"
	"taskboard/internal/translate"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	// Setup GORM
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Println("✅ Connected to database")

	if err := runMigrations(db, cfg.MigrationsDir); err != nil {
		return nil, fmt.Errorf("❌ failed to run migrations: %w", err)
	}
	log.Println("✅ Database schema up to date")

	// Setup Gin
	r := gin.Default()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	checklistRepo := repository.NewChecklistRepository(db)
	sprintRepo := repository.NewSprintRepository(db)
	assigneeRepo := repository.NewAssigneeRepository(db)
	roomRepo := repository.NewRoomRepository(db)

	// Initialize handlers
	userHandler := handler.NewUserHandler(userRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, sprintRepo, translate.NewClient())
	checklistHandler := handler.NewChecklistHandler(checklistRepo, taskRepo)
	sprintHandler := handler.NewSprintHandler(sprintRepo, taskRepo)
	assigneeHandler := handler.NewAssigneeHandler(assigneeRepo)
	syncHandler := handler.NewSyncHandler(roomRepo)
	exportHandler := handler.NewExportHandler(taskRepo, discord.NewClient())

	// Public routes
	r.POST("/register", userHandler.Register)
	r.POST("/login", userHandler.Login)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	{
		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.List)
		authorized.GET("/tasks/:id", taskHandler.GetByID)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.POST("/tasks/:id/archive", taskHandler.Archive)
		authorized.GET("/tasks/:id/branch", taskHandler.Branch)
		authorized.POST("/tasks/:id/assignees/:assignee_id", taskHandler.AddAssignee)
		authorized.DELETE("/tasks/:id/assignees/:assignee_id", taskHandler.RemoveAssignee)
		authorized.POST("/tasks/:id/discord", exportHandler.DiscordExport)

		// Checklist routes
		authorized.POST("/tasks/:id/checklist", checklistHandler.Create)
		authorized.PUT("/checklist/:id", checklistHandler.Update)
		authorized.POST("/checklist/:id/toggle", checklistHandler.Toggle)
		authorized.DELETE("/checklist/:id", checklistHandler.Delete)

		// Sprint routes
		authorized.POST("/sprints", sprintHandler.Create)
		authorized.GET("/sprints", sprintHandler.GetAll)
		authorized.GET("/sprints/:id", sprintHandler.GetByID)
		authorized.PUT("/sprints/:id", sprintHandler.Update)
		authorized.DELETE("/sprints/:id", sprintHandler.Delete)
		authorized.POST("/sprints/:id/activate", sprintHandler.Activate)
		authorized.POST("/sprints/:id/complete", sprintHandler.Complete)
		authorized.GET("/sprints/:id/tasks", sprintHandler.GetTasks)

		// Assignee routes
		authorized.POST("/assignees", assigneeHandler.Create)
		authorized.GET("/assignees", assigneeHandler.GetAll)
		authorized.PUT("/assignees/:id", assigneeHandler.Update)
		authorized.DELETE("/assignees/:id", assigneeHandler.Delete)

		// Dataset routes
		authorized.GET("/export", exportHandler.Export)
		authorized.POST("/import", exportHandler.Import)
		authorized.GET("/stats", exportHandler.Stats)

		// Sync room routes
		authorized.POST("/sync/rooms", syncHandler.CreateRoom)
		authorized.POST("/sync/rooms/join", syncHandler.JoinRoom)
		authorized.GET("/sync/rooms/:code/peers", syncHandler.GetPeers)
		authorized.GET("/sync/rooms/:code/document", syncHandler.GetDocument)
		authorized.POST("/sync/rooms/:code/document", syncHandler.PushDocument)
		authorized.POST("/sync/rooms/:code/merge", syncHandler.MergeDocument)
	}
	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
	}, nil
}

func runMigrations(db *gorm.DB, migrationsDir string) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsDir, "postgres", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}
	return nil
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %s", err)
	}

	log.Println("✅ Server exited properly")
}
