package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	"github.com/open-teleop/turtlebridge/domain/diagnostic"
	"github.com/open-teleop/turtlebridge/domain/pose"
	"github.com/open-teleop/turtlebridge/domain/teleop"
	"github.com/open-teleop/turtlebridge/pkg/api"
	"github.com/open-teleop/turtlebridge/pkg/bridge"
	"github.com/open-teleop/turtlebridge/pkg/config"
	customlog "github.com/open-teleop/turtlebridge/pkg/log"
	"github.com/open-teleop/turtlebridge/pkg/queue"
	"github.com/open-teleop/turtlebridge/pkg/sim"
	"github.com/open-teleop/turtlebridge/pkg/zeromq"
	"github.com/open-teleop/turtlebridge/services"
)

const shutdownTimeout = 5 * time.Second

var (
	configFile string
	configDir  string
)

var rootCmd = &cobra.Command{
	Use:   "turtlebridge",
	Short: "Headless turtle simulation bridged to a ZeroMQ pub/sub network",
	Long: `turtlebridge runs a fixed-rate turtle simulation whose local joystick
commands are published as CDR-encoded Twist messages, and applies velocity
commands received from the network. Remote log entries are printed.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, source, err := loadConfig()
		if err != nil {
			return err
		}
		return run(cfg, source)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is <config-dir>/"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config", "directory searched for "+config.DefaultConfigFile)
	rootCmd.AddCommand(brokerCmd)
}

func loadConfig() (*config.Config, string, error) {
	if configFile != "" {
		cfg, err := config.LoadConfig(configFile)
		return cfg, configFile, err
	}
	return config.LoadFromDir(configDir)
}

func newLogger(cfg *config.Config) (customlog.Logger, error) {
	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

func run(cfg *config.Config, source string) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	if source != "" {
		logger.Infof("Loaded configuration from %s", source)
	} else {
		logger.Infof("No configuration file found, using defaults")
	}

	outbound := queue.New[teleop.MovementCommand]()
	inbound := queue.New[teleop.MovementCommand]()

	bridgeLoop := bridge.NewLoop(bridge.Options{
		Topics:            cfg.Topics,
		ConnectRetries:    cfg.ZeroMQ.ConnectRetries,
		ReconnectInterval: cfg.ZeroMQ.ReconnectInterval(),
		Dial: func(ctx context.Context) (bridge.Session, error) {
			s, err := zeromq.Open(ctx, cfg.ZeroMQ, logger.WithField("component", "zeromq"))
			if err != nil {
				return nil, err
			}
			return s, nil
		},
		Outbound: outbound,
		Inbound:  inbound,
		Logger:   logger.WithField("component", "bridge"),
	})
	logger.Infof("Bridge session %s", bridgeLoop.ID())

	teleopService := teleop.NewTeleopService()
	simLoop := sim.NewLoop(
		sim.ParamsFromConfig(cfg.Simulation),
		teleopService,
		bridge.NewTickAdapter(inbound, outbound),
		logger.WithField("component", "sim"),
	)

	configService, err := services.NewConfigService(cfg, source, logger)
	if err != nil {
		return err
	}
	diagnosticService := diagnostic.NewDiagnosticService(bridgeLoop)
	poseService := pose.NewPoseService(simLoop, cfg.Simulation.PoseStreamHz, logger.WithField("component", "pose"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	bridgeDone := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(bridgeDone)
		if err := bridgeLoop.Run(ctx); err != nil {
			logger.Errorf("Bridge stopped: %v. Simulation continues without network.", err)
		}
	}()

	stopSim := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		simLoop.Run(stopSim)
	}()

	app := newApp(logger, configService, diagnosticService, poseService, teleopService)
	if cfg.Server.HTTPPort > 0 {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
			logger.Infof("Server starting on %s", addr)
			if err := app.Listen(addr); err != nil {
				logger.Errorf("HTTP server error: %v", err)
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down...")

	// Stop the tick first, then close the outbound queue so the bridge
	// publishes what is left and stops on its own.
	close(stopSim)
	outbound.Close()
	select {
	case <-bridgeDone:
	case <-time.After(shutdownTimeout):
		logger.Warnf("Bridge did not drain within %v, cancelling", shutdownTimeout)
		cancel()
	}
	wg.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Infof("Turtlebridge exited properly")
	return nil
}

func newApp(
	log customlog.Logger,
	configService services.ConfigService,
	diagnosticService *diagnostic.DiagnosticService,
	poseService *pose.PoseService,
	teleopService *teleop.TeleopService,
) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "turtlebridge",
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: true,
	})

	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "turtlebridge",
		})
	})
	app.Get("/health", diagnosticService.HealthHandler)

	apiGroup := app.Group("/api")
	apiGroup.Get("/diagnostics", diagnosticService.GetMetricsHandler)
	apiGroup.Get("/pose", poseService.GetPoseHandler)
	apiGroup.Post("/teleop/command", teleopService.CommandHandler)
	api.RegisterConfigRoutes(app, configService, log)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		api.ControlWebSocketHandler(conn, log, teleopService)
	}))
	app.Get("/ws/pose", websocket.New(poseService.StreamHandler))

	return app
}

// Custom error handler
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
