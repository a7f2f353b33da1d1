package main

import (
	_ "backend/api/swagger" // swagger docs
	"backend/internal/database"
	"backend/internal/handler"
	"backend/internal/middleware"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/websocket"
	"log"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Content Approval API
// @version         1.0
// @description     Multi-tenant content management with rule-driven approval workflows.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = database.DriverSQLite
	}

	var dsn string
	switch driver {
	case database.DriverSQLite:
		dsn = os.Getenv("DB_PATH")
		if dsn == "" {
			dsn = "data/app.db"
		}
	case database.DriverPostgres:
		dbHost := os.Getenv("DB_HOST")
		dbPort := os.Getenv("DB_PORT")
		dbUser := os.Getenv("DB_USER")
		dbPassword := os.Getenv("DB_PASSWORD")
		dbName := os.Getenv("DB_NAME")
		dbSslMode := os.Getenv("DB_SSLMODE")

		if dbHost == "" {
			dbHost = "localhost"
		}
		if dbPort == "" {
			dbPort = "5432"
		}
		if dbUser == "" {
			dbUser = "postgres"
		}
		if dbPassword == "" {
			dbPassword = "postgres"
		}
		if dbName == "" {
			dbName = "postgres"
		}
		if dbSslMode == "" {
			dbSslMode = "disable"
		}

		dsn = "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode
	}

	db, err := database.NewConnection(driver, dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Printf("Connected to %s successfully.", driver)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	topicRepo := repository.NewTopicRepository(db)
	blogRepo := repository.NewBlogPostRepository(db)
	socialRepo := repository.NewSocialPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	userService := service.NewUserService(db, userRepo, companyRepo)
	companyService := service.NewCompanyService(companyRepo)
	profileService := service.NewWriterProfileService(db, userRepo)
	topicService := service.NewTopicService(topicRepo)
	blogService := service.NewBlogService(blogRepo, topicRepo, auditRepo)
	socialService := service.NewSocialService(socialRepo, auditRepo)
	commentService := service.NewCommentService(commentRepo, blogRepo, socialRepo, notificationRepo, wsHub)
	notificationService := service.NewNotificationService(notificationRepo)
	workflowService := service.NewWorkflowService(db, userRepo, ruleRepo, templateRepo, companyRepo, wsHub)
	ruleService := service.NewRuleService(ruleRepo, auditRepo)
	templateService := service.NewTemplateService(templateRepo, auditRepo, txManager)
	auditService := service.NewAuditService(auditRepo)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	companyHandler := handler.NewCompanyHandler(companyService)
	profileHandler := handler.NewWriterProfileHandler(profileService)
	topicHandler := handler.NewTopicHandler(topicService)
	blogHandler := handler.NewBlogHandler(blogService)
	socialHandler := handler.NewSocialHandler(socialService)
	commentHandler := handler.NewCommentHandler(commentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	workflowHandler := handler.NewWorkflowHandler(workflowService)
	ruleHandler := handler.NewRuleHandler(ruleService)
	templateHandler := handler.NewTemplateHandler(templateService)
	auditHandler := handler.NewAuditHandler(auditService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	companyHandler.RegisterRoutes(router.Group(""))
	profileHandler.RegisterRoutes(router.Group(""))
	topicHandler.RegisterRoutes(router.Group(""))
	blogHandler.RegisterRoutes(router.Group(""))
	socialHandler.RegisterRoutes(router.Group(""))
	commentHandler.RegisterRoutes(router.Group(""))
	notificationHandler.RegisterRoutes(router.Group(""))
	workflowHandler.RegisterRoutes(router.Group(""))
	ruleHandler.RegisterRoutes(router.Group(""))
	templateHandler.RegisterRoutes(router.Group(""))
	auditHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
