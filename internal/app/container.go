package app

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/absence"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/api"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/auth"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/availability"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/booking"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/metrics"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/pkg/txmanager"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/slot"
	"github.com/AutoForge-Systems/pbl-scheduler-student/internal/subject"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	Logger       *zap.Logger

	JWTSecret string
	JWTTTL    time.Duration

	PBLSchedulerSecret string
	Subjects           []string

	CancellationWindow time.Duration
	RebookCooldown     time.Duration

	MetricsEnabled bool
	ServiceName    string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	subjects := subject.NewSet(cfg.Subjects)
	txManager := txmanager.New(cfg.DBPool)

	// Slot module
	slotRepo := slot.NewPgxRepository(cfg.DBPool)
	slotService := slot.NewService(slotRepo, subjects, cfg.Logger)

	// Absence module
	absenceRepo := absence.NewPgxRepository(cfg.DBPool)
	absenceService := absence.NewService(absenceRepo, subjects, cfg.Logger)

	// Booking module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(
		bookingRepo,
		slotRepo,
		absenceRepo,
		txManager,
		subjects,
		booking.Rules{
			CancellationWindow: cfg.CancellationWindow,
			RebookCooldown:     cfg.RebookCooldown,
		},
		cfg.Logger,
	)

	// Availability module
	availabilityService := availability.NewService(slotRepo, absenceRepo, subjects, cfg.Logger)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New(cfg.ServiceName)
	}

	router := api.NewRouter(api.Config{
		IsProduction:        cfg.IsProduction,
		ProdOrigins:         cfg.ProdOrigins,
		SlotService:         slotService,
		BookingService:      bookingService,
		AbsenceService:      absenceService,
		AvailabilityService: availabilityService,
		JWTManager:          jwtManager,
		PBLSchedulerSecret:  cfg.PBLSchedulerSecret,
		Metrics:             m,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}
}
