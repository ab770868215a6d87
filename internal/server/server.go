// Package server contains the HTTP handlers and route wiring for the API.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"booklink/internal/authz"
	"booklink/internal/cache"
	"booklink/internal/config"
	"booklink/internal/database"
	"booklink/internal/mailer"
	"booklink/internal/middleware"
	"booklink/internal/models"
	"booklink/internal/repository"
	"booklink/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "booklink-api"
	tokenAudience = "booklink-client"
)

// Server holds all dependencies and provides handlers.
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus
	readerRepo     repository.ReaderRepository
	bookRepo       repository.BookRepository
	mail           mailer.Sender
	moderation     *service.ModerationService
	admin          *service.AdminService
}

// NewServer creates a new server instance with all dependencies.
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisOpts, err := cfg.RedisOptions()
	if err != nil {
		return nil, fmt.Errorf("redis configuration invalid: %w", err)
	}
	cache.InitRedis(redisOpts)

	return NewServerWithDeps(cfg, db, cache.GetClient(), mailer.New(cfg))
}

// NewServerWithDeps creates a Server from already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, mail mailer.Sender) (*Server, error) {
	if mail == nil {
		mail = mailer.Noop{}
	}

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("booklink-api"),
		readerRepo:     repository.NewReaderRepository(db),
		bookRepo:       repository.NewBookRepository(db),
		mail:           mail,
		moderation:     service.NewModerationService(db, mail),
		admin:          service.NewAdminService(db),
	}, nil
}

// SetupMiddleware configures middleware for the Fiber app.
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context middleware to propagate request ID and reader ID
	app.Use(middleware.ContextMiddleware())

	// Prometheus metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))
}

// SetupRoutes configures all routes for the application.
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Reader auth routes
	readers := api.Group("/readers")
	readers.Post("/register", s.Register)
	readers.Post("/login", s.Login)
	readers.Get("/me", s.AuthRequired(), s.Me)

	// Public book routes
	publicBooks := api.Group("/books")
	publicBooks.Get("/", s.GetBooks)
	publicBooks.Get("/featured", s.GetFeaturedBooks)
	publicBooks.Get("/:id", s.GetBook)

	// Public reviews (per book)
	api.Get("/reviews/:bookId", s.GetBookReviews)

	// Marketplace actions require an approved, active account.
	member := api.Group("", s.AuthRequired(), s.Gate(authz.RequireApproved))
	member.Post("/books", s.CreateBook)
	member.Delete("/books/:id", s.DeleteOwnBook)
	member.Post("/transactions", s.CreateTransaction)
	member.Get("/transactions", s.GetMyTransactions)
	member.Put("/transactions/:id/status", s.UpdateTransactionStatus)
	member.Post("/reviews/:bookId", s.CreateReview)
	member.Delete("/reviews/:id", s.DeleteReview)

	// Admin routes
	admin := api.Group("/admin", s.AuthRequired())
	admin.Get("/dashboard/stats", s.Gate(authz.RequireAdmin), s.GetDashboardStats)

	adminUsers := admin.Group("/users")
	adminUsers.Get("/pending", s.Gate(authz.RequireModerator), s.GetPendingReaders)
	adminUsers.Get("/", s.Gate(authz.RequireAdmin), s.GetReaders)
	adminUsers.Put("/:id/approve", s.Gate(authz.RequireModerator), s.ApproveReader)
	adminUsers.Put("/:id/toggle-status", s.Gate(authz.RequireAdmin), s.ToggleReaderStatus)
	adminUsers.Delete("/:id", s.Gate(authz.RequireAdmin), s.DeleteReader)

	adminBooks := admin.Group("/books")
	adminBooks.Get("/pending", s.Gate(authz.RequireModerator), s.GetPendingBooks)
	adminBooks.Get("/", s.Gate(authz.RequireModerator), s.GetAdminBooks)
	adminBooks.Put("/:id/approve", s.Gate(authz.RequireModerator), s.ApproveBook)
	adminBooks.Put("/:id/reject", s.Gate(authz.RequireModerator), s.RejectBook)
	adminBooks.Put("/:id/toggle-featured", s.Gate(authz.RequireAdmin), s.ToggleBookFeatured)
	adminBooks.Delete("/:id", s.Gate(authz.RequireAdmin), s.DeleteBook)

	admin.Get("/transactions", s.Gate(authz.RequireAdmin), s.GetAdminTransactions)
	admin.Get("/reviews", s.Gate(authz.RequireModerator), s.GetAdminReviews)
	admin.Delete("/reviews/:id", s.Gate(authz.RequireModerator), s.DeleteAdminReview)
}

// LivenessCheck reports that the process is up.
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "alive"})
}

// ReadinessCheck reports whether the server's dependencies are reachable.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "ready",
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AuthRequired returns the authentication middleware. It validates the bearer
// token and resolves the reader through the cache-aside repository so gates
// downstream see the current approval and active flags.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Authorization required"))
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid token claims"))
		}

		if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid token issuer"))
		}
		if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid token audience"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid subject claim"))
		}

		readerID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Invalid reader ID in token"))
		}

		reader, err := s.readerRepo.GetByID(c.UserContext(), uint(readerID))
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthenticatedError("Account no longer exists"))
		}

		c.Locals("readerID", reader.ID)
		c.Locals("identity", &authz.Identity{
			ID:         reader.ID,
			Role:       reader.Role,
			IsApproved: reader.IsApproved,
			IsActive:   reader.IsActive,
		})

		return c.Next()
	}
}

// Gate adapts a pure authorization gate into Fiber middleware. The identity
// is the one resolved by AuthRequired; a missing identity denies with 401.
func (s *Server) Gate(g authz.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var identity *authz.Identity
		if v := c.Locals("identity"); v != nil {
			identity, _ = v.(*authz.Identity)
		}

		d := g(identity)
		if !d.Allowed {
			if d.Status == fiber.StatusUnauthorized {
				return models.RespondWithError(c, d.Status,
					models.NewUnauthenticatedError(d.Reason))
			}
			return models.RespondWithError(c, d.Status,
				models.NewForbiddenError(d.Reason))
		}
		return c.Next()
	}
}

// generateToken creates a JWT token for the given reader ID.
func (s *Server) generateToken(readerID uint) (string, error) {
	if s.config.JWTSecret == "" {
		return "", fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(readerID), 10),
		"iss": tokenIssuer,
		"aud": tokenAudience,
		"exp": now.Add(time.Hour * 24 * 7).Unix(),
		"iat": now.Unix(),
		"nbf": now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// Shutdown releases the server's external resources.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", "error", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr)
		}
	}

	middleware.Logger.InfoContext(ctx, "server shutdown complete")
	return nil
}
