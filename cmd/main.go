package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/YelzhanWeb/floreria/internal/adapter/api"
	"github.com/YelzhanWeb/floreria/internal/adapter/console"
	"github.com/YelzhanWeb/floreria/internal/adapter/logger"
	"github.com/YelzhanWeb/floreria/internal/adapter/postgres"
	"github.com/YelzhanWeb/floreria/internal/adapter/rabbitmq"
	"github.com/YelzhanWeb/floreria/internal/app/inventory"
	"github.com/YelzhanWeb/floreria/internal/app/lifecycle"
	"github.com/YelzhanWeb/floreria/internal/app/reservation"
	"github.com/YelzhanWeb/floreria/internal/app/tracking"
	"github.com/YelzhanWeb/floreria/internal/config"
	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/YelzhanWeb/floreria/internal/interfaces"
	"github.com/YelzhanWeb/floreria/internal/metrics"
	"github.com/YelzhanWeb/floreria/internal/session"
	"github.com/YelzhanWeb/floreria/internal/tracing"

	amqpAdapter "github.com/YelzhanWeb/floreria/internal/adapter/amqp"
	httpAdapter "github.com/YelzhanWeb/floreria/internal/adapter/http"
)

// infra holds the optional side channels. Either may be missing; the shop API
// stays the source of truth.
type infra struct {
	db        postgres.DB
	mq        rabbitmq.Connection
	statusLog interfaces.StatusLogRepository
	publisher interfaces.MessagePublisher
}

func (i *infra) Close() {
	if i.mq != nil {
		i.mq.Close()
	}
	if i.db != nil {
		i.db.Close()
	}
}

func main() {
	mode := flag.String("mode", "", "Service mode: order-desk, status-cli, notification-subscriber, login")
	configPath := flag.String("config", "config.yaml", "Path to config file")
	port := flag.Int("port", 3000, "HTTP port (order-desk)")
	orderID := flag.Int("order-id", 0, "Order id (status-cli)")
	status := flag.String("status", "", "Target status label or id (status-cli)")
	token := flag.String("token", "", "Login token, defaults to $FLORERIA_TOKEN (status-cli)")
	email := flag.String("email", "", "Account email (login)")
	passwordEnv := flag.String("password-env", "FLORERIA_PASSWORD", "Environment variable holding the password (login)")
	queue := flag.String("queue", "", "Durable queue name, empty for a private queue (notification-subscriber)")
	flag.Parse()

	if *mode == "" {
		log.Fatal("--mode flag is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lgr := logger.New(*mode)
	if *mode == "status-cli" || *mode == "login" {
		// stdout belongs to the prompt and the result
		lgr = logger.NewWithWriter(*mode, os.Stderr)
	}

	shutdownTracing, err := tracing.Init(ctx, "floreria-"+*mode, cfg.Tracing)
	if err != nil {
		lgr.Error("tracing_init_failed", "Tracing disabled", "startup", nil, err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownTracing(flushCtx)
	}()

	switch *mode {
	case "order-desk":
		runOrderDesk(ctx, cfg, lgr, *port)

	case "status-cli":
		if *token == "" {
			*token = os.Getenv("FLORERIA_TOKEN")
		}
		if err := runStatusCLI(ctx, cfg, lgr, *token, *orderID, *status); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}

	case "notification-subscriber":
		runNotificationSubscriber(ctx, cfg, lgr, *queue)

	case "login":
		if err := runLogin(ctx, cfg, *email, os.Getenv(*passwordEnv)); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}

	default:
		log.Fatalf("Invalid mode: %s", *mode)
	}
}

// connectInfra opens Postgres and RabbitMQ when they are reachable.
func connectInfra(ctx context.Context, cfg *config.Config, lgr logger.Logger) *infra {
	i := &infra{}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	db, err := postgres.Connect(connectCtx, cfg.Database)
	if err != nil {
		lgr.Error("db_unavailable", "Status history disabled", "startup", nil, err)
	} else {
		i.db = db
		i.statusLog = postgres.NewStatusLogRepository(db)
		lgr.Info("db_connected", "Connected to PostgreSQL database", "startup", map[string]interface{}{
			"host": cfg.Database.Host,
			"db":   cfg.Database.Database,
		})
	}

	mq, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		lgr.Error("rabbitmq_unavailable", "Status notifications disabled", "startup", nil, err)
	} else {
		i.mq = mq
		i.publisher = rabbitmq.NewPublisher(mq)
		lgr.Info("rabbitmq_connected", "Connected to RabbitMQ", "startup", map[string]interface{}{
			"host": cfg.RabbitMQ.Host,
		})
	}

	return i
}

func lifecycleOptions(i *infra, m *metrics.Metrics, cfg *config.Config) []lifecycle.Option {
	opts := []lifecycle.Option{
		lifecycle.WithMetrics(m),
		lifecycle.WithRequestTimeout(cfg.API.RequestTimeout),
	}
	if i.statusLog != nil {
		opts = append(opts, lifecycle.WithStatusLog(i.statusLog))
	}
	if i.publisher != nil {
		opts = append(opts, lifecycle.WithPublisher(i.publisher))
	}
	return opts
}

func runOrderDesk(ctx context.Context, cfg *config.Config, lgr logger.Logger, port int) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	i := connectInfra(ctx, cfg, lgr)
	defer i.Close()

	apiFactory := api.NewFactory(cfg.API.BaseURL, nil, m)

	lifecycleService := lifecycle.NewService(apiFactory.Orders, lgr, lifecycleOptions(i, m, cfg)...)
	trackingService := tracking.NewService(apiFactory.Orders, i.statusLog, lgr)
	reservationService := reservation.NewService(apiFactory.Catalog, apiFactory.Orders, i.statusLog, i.publisher, lgr)
	inventoryService := inventory.NewService(apiFactory.Catalog, lgr)
	authService := api.NewAuthService(apiFactory.Client(session.Anonymous()))

	orderHandler := httpAdapter.NewOrderHandler(lifecycleService, trackingService, lgr)
	customerHandler := httpAdapter.NewCustomerHandler(authService, reservationService, lgr)
	inventoryHandler := httpAdapter.NewInventoryHandler(inventoryService, lgr)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      httpAdapter.NewRouter(orderHandler, customerHandler, inventoryHandler, m, lgr),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.API.RequestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lgr.Info("service_started", fmt.Sprintf("Order Desk started on port %d", port), "startup", map[string]interface{}{
		"port":     port,
		"api":      cfg.API.BaseURL,
		"timeout":  cfg.API.RequestTimeout.String(),
		"history":  i.statusLog != nil,
		"notifier": i.publisher != nil,
	})

	// Graceful shutdown
	go func() {
		<-ctx.Done()

		lgr.Info("shutdown_initiated", "Shutting down Order Desk", "shutdown", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			lgr.Error("shutdown_error", "Error during shutdown", "shutdown", nil, err)
		}
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		lgr.Error("server_error", "Server error", "runtime", nil, err)
	}
}

func runStatusCLI(ctx context.Context, cfg *config.Config, lgr logger.Logger, token string, orderID int, target string) error {
	if orderID <= 0 {
		return fmt.Errorf("--order-id is required")
	}
	sess, err := session.FromToken(token)
	if err != nil {
		return fmt.Errorf("invalid token: %w", err)
	}

	i := connectInfra(ctx, cfg, logger.Nop())
	defer i.Close()

	apiFactory := api.NewFactory(cfg.API.BaseURL, nil, nil)
	trackingService := tracking.NewService(apiFactory.Orders, i.statusLog, lgr)
	lifecycleService := lifecycle.NewService(apiFactory.Orders, lgr, lifecycleOptions(i, nil, cfg)...)

	view, err := trackingService.GetOrder(ctx, sess, orderID)
	if err != nil {
		return err
	}
	printOrder(view.Order)

	if len(view.AvailableTransitions) == 0 {
		fmt.Printf("No status changes available for role %s.\n", sess.Role)
		return nil
	}
	fmt.Print("Available: ")
	for n, s := range view.AvailableTransitions {
		if n > 0 {
			fmt.Print(", ")
		}
		fmt.Printf("%s (%d)", s, s.ID())
	}
	fmt.Println()

	if target == "" {
		return nil
	}
	status, err := domain.ParseStatus(target)
	if err != nil {
		return err
	}

	result, err := lifecycleService.RequestTransition(ctx, sess, view.Order, status, console.NewConfirmer())
	if err != nil {
		return err
	}
	if !result.Applied {
		fmt.Println("Cancelled, status unchanged.")
		return nil
	}
	fmt.Printf("Order #%d is now %s.\n", result.Order.ID, result.Order.Status)
	return nil
}

func printOrder(o domain.Order) {
	fmt.Printf("Order #%d  %s\n", o.ID, o.Status)
	fmt.Printf("  Customer: %s\n", o.CustomerName)
	fmt.Printf("  Address:  %s\n", o.CustomerAddress)
	fmt.Printf("  Phone:    %s\n", o.CustomerPhone)
	fmt.Printf("  Price:    $%s\n", o.Price.StringFixed(2))
	fmt.Printf("  Date:     %s\n", o.RequestDate)
	if o.DeliveryManID != nil {
		fmt.Printf("  Delivery: %d\n", *o.DeliveryManID)
	}
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, lgr logger.Logger, queue string) {
	mqConn, err := rabbitmq.Connect(cfg.RabbitMQ)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer mqConn.Close()

	consumer := rabbitmq.NewConsumer(mqConn, lgr, queue)
	notificationHandler := amqpAdapter.NewNotificationHandler(lgr, os.Stdout)

	lgr.Info("service_started", "Notification Subscriber started", "startup", map[string]interface{}{
		"exchange": rabbitmq.StatusExchange,
	})

	if err := consumer.ConsumeNotifications(ctx, notificationHandler.HandleNotification); err != nil && !errors.Is(err, context.Canceled) {
		lgr.Error("consumer_error", "Error consuming notifications", "runtime", nil, err)
	}

	lgr.Info("shutdown_initiated", "Shutting down Notification Subscriber", "shutdown", nil)
}

func runLogin(ctx context.Context, cfg *config.Config, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("--email and a password in --password-env are required")
	}

	apiFactory := api.NewFactory(cfg.API.BaseURL, nil, nil)

	callCtx, cancel := context.WithTimeout(ctx, cfg.API.RequestTimeout)
	defer cancel()

	res, err := api.NewAuthService(apiFactory.Client(session.Anonymous())).Login(callCtx, email, password)
	if err != nil {
		return err
	}

	fmt.Printf("role:    %s\n", res.Session.Role)
	fmt.Printf("landing: %s\n", res.Landing)
	fmt.Printf("token:   %s\n", res.Session.Token)
	return nil
}
