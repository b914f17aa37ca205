package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/agrocontrol/agrocontrol-api/internal/application/auth"
	"github.com/agrocontrol/agrocontrol-api/internal/application/dto"
	"github.com/agrocontrol/agrocontrol-api/internal/application/inventory"
	"github.com/agrocontrol/agrocontrol-api/internal/application/usecase"
	"github.com/agrocontrol/agrocontrol-api/internal/application/workflow"
	"github.com/agrocontrol/agrocontrol-api/internal/domain"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/entity"
	"github.com/agrocontrol/agrocontrol-api/internal/domain/repository"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/csvexport"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/memory"
	infrapdf "github.com/agrocontrol/agrocontrol-api/internal/infrastructure/pdf"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/postgres"
	"github.com/agrocontrol/agrocontrol-api/internal/infrastructure/telemetry"
	httpRouter "github.com/agrocontrol/agrocontrol-api/internal/interfaces/http"
	"github.com/agrocontrol/agrocontrol-api/pkg/config"
	"github.com/agrocontrol/agrocontrol-api/pkg/jwt"
	"github.com/agrocontrol/agrocontrol-api/pkg/logger"
)

const serviceVersion = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Str("lock_strategy", cfg.Inventory.LockStrategy).
		Msg("iniciando aplicación")

	ctx := context.Background()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg.Telemetry, cfg.App.Name, serviceVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar OpenTelemetry")
	}

	strategy, err := inventory.ParseLockStrategy(cfg.Inventory.LockStrategy)
	if err != nil {
		log.Fatal().Err(err).Msg("INVENTORY_LOCK_STRATEGY")
	}

	// Almacenamiento: PostgreSQL o memoria (desarrollo y demos).
	var (
		txRunner inventory.TxRunner
		repos    inventory.Repos
		userRepo repository.UserRepository
	)
	switch cfg.DB.Driver {
	case config.DriverMemory:
		store := memory.NewStore()
		txRunner, repos, userRepo = store, store.Repos(), store.Users()
		log.Warn().Msg("DB_DRIVER=memory: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("aplicar migraciones")
			}
		}
		txRunner, repos, userRepo = postgres.NewTxRunner(pool), postgres.NewRepos(pool), postgres.NewUserRepository(pool)
	}

	consumption := inventory.NewConsumptionService(txRunner, inventory.ConsumptionConfig{
		Strategy:   strategy,
		MaxRetries: cfg.Inventory.MaxRetries,
	}, log.Component("inventory"))

	tokens, err := jwt.NewSigner(jwt.Config{
		Secret: cfg.JWT.Secret,
		Issuer: cfg.JWT.Issuer,
		TTL:    time.Duration(cfg.JWT.Expiration) * time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("JWT_SECRET")
	}
	authUC := auth.NewAuthUseCase(userRepo, tokens)
	if cfg.DB.Driver == config.DriverMemory {
		bootstrapAdmin(ctx, log, authUC, cfg.Bootstrap)
	}

	reportUC := inventory.NewReportUseCase(repos.Movements,
		infrapdf.NewMarotoPDFGenerator(cfg.App.Name),
		csvexport.NewExporter(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, traceparent",
	}))
	app.Use(httpRouter.Tracing())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat("./docs/swagger.json"); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "AgroControl API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "db_driver": cfg.DB.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		UserUC:           usecase.NewUserUseCase(userRepo),
		ProductUC:        usecase.NewProductUseCase(repos.Products, consumption),
		EquipmentUC:      usecase.NewEquipmentUseCase(repos.Equipment, consumption),
		FieldUC:          usecase.NewFieldUseCase(repos.Fields),
		RegisterMovement: inventory.NewRegisterMovementUseCase(consumption, repos.Movements),
		Replenishment:    inventory.NewReplenishmentUseCase(repos.Products, repos.Equipment),
		Reports:          reportUC,
		Applications:     workflow.NewApplicationUseCase(consumption, repos.Applications, userRepo),
		Irrigations:      workflow.NewIrrigationUseCase(consumption, repos.Irrigations, userRepo),
		Maintenances:     workflow.NewMaintenanceUseCase(consumption, repos.Maintenances, userRepo),
		WorkOrders:       workflow.NewWorkOrderUseCase(repos.Applications, repos.Irrigations, repos.Maintenances, repos.Fields),
		Tokens:           tokens,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado de OpenTelemetry")
	}

	log.Info().Msg("aplicación detenida")
}

// bootstrapAdmin crea el administrador inicial en el almacenamiento en memoria.
func bootstrapAdmin(ctx context.Context, log *logger.Logger, authUC *auth.AuthUseCase, cfg config.BootstrapConfig) {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		log.Warn().Msg("SEED_ADMIN_EMAIL/SEED_ADMIN_PASSWORD no definidos: no hay usuario para iniciar sesión")
		return
	}
	_, err := authUC.RegisterUser(ctx, dto.CreateUserRequest{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     "Administrador",
		Role:     entity.RoleAdmin,
	})
	if err != nil && err != domain.ErrEmailAlreadyExists {
		log.Fatal().Err(err).Msg("crear administrador inicial")
	}
	log.Info().Str("email", cfg.AdminEmail).Msg("administrador inicial disponible")
}
