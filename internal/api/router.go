package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence"
	absenceHttp "github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence/http"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/availability"
	availabilityHttp "github.com/AutoForge-Systems/pbl-scheduler-student/internal/availability/http"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/booking"
	bookingHttp "github.com/AutoForge-Systems/pbl-scheduler-student/internal/booking/http"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/metrics"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
	slotHttp "github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot/http"
)

// Config holds everything the router needs to assemble the HTTP surface.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	SlotService         slot.Service
	BookingService      booking.Service
	AbsenceService      absence.Service
	AvailabilityService availability.Service

	JWTManager *auth.JWTManager
	// PBLSchedulerSecret guards the availability summary feed. Empty means
	// the feed is unconfigured.
	PBLSchedulerSecret string

	Metrics *metrics.Metrics
}

// NewRouter assembles middleware (CORS, logging, auth, metrics) and registers
// routes for all modules under /api/v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", auth.SharedSecretHeader}
	r.Use(cors.New(corsConfig))

	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
		r.GET("/metrics", cfg.Metrics.Handler())
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	secretMiddleware := auth.SharedSecretRequired(cfg.PBLSchedulerSecret)

	slotHandler := slotHttp.NewHandler(cfg.SlotService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	absenceHandler := absenceHttp.NewHandler(cfg.AbsenceService)
	availabilityHandler := availabilityHttp.NewHandler(cfg.AvailabilityService)

	v1 := r.Group("/api/v1")
	{
		slotHttp.RegisterRoutes(v1, slotHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		absenceHttp.RegisterRoutes(v1, absenceHandler, authMiddleware)
		availabilityHttp.RegisterRoutes(v1, availabilityHandler, authMiddleware, secretMiddleware)
	}

	return r
}
