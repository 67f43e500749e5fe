package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/clothstore/storefront/internal/auth"
	"github.com/clothstore/storefront/internal/cache"
	"github.com/clothstore/storefront/internal/client"
	"github.com/clothstore/storefront/internal/config"
	"github.com/clothstore/storefront/internal/db"
	"github.com/clothstore/storefront/internal/discovery"
	"github.com/clothstore/storefront/internal/handlers"
	"github.com/clothstore/storefront/internal/inventory"
	"github.com/clothstore/storefront/internal/messaging"
	"github.com/clothstore/storefront/internal/metrics"
	"github.com/clothstore/storefront/internal/notify"
	"github.com/clothstore/storefront/internal/orders"
	"github.com/clothstore/storefront/internal/payment"
	"github.com/clothstore/storefront/internal/publisher"
)

const (
	serviceName = "storefront"
	serviceID   = "storefront-1"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	// Connect to PostgreSQL
	database, err := db.NewPostgresDB(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Connect to Redis
	redisCache, err := cache.NewRedisCache(cfg.RedisHost, cfg.RedisPort, cfg.CacheTTL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisCache.Close()

	// Connect to RabbitMQ
	rabbitMQ, err := messaging.NewRabbitMQ(cfg.RabbitHost, cfg.RabbitPort, cfg.RabbitUser, cfg.RabbitPassword)
	if err != nil {
		log.Fatalf("Failed to connect to RabbitMQ: %v", err)
	}
	defer rabbitMQ.Close()

	// Connect to Consul and register
	consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort)
	if err != nil {
		log.Fatalf("Failed to connect to Consul: %v", err)
	}

	err = consul.Register(discovery.ServiceConfig{
		Name: serviceName,
		ID:   serviceID,
		Port: cfg.Port,
		Tags: []string{"api", "orders", "products"},
	})
	if err != nil {
		log.Fatalf("Failed to register service: %v", err)
	}

	// Deregister on shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		consul.Deregister(serviceID)
		os.Exit(0)
	}()

	// Event publisher and notification sender
	orderPublisher, err := publisher.NewOrderPublisher(rabbitMQ)
	if err != nil {
		log.Fatalf("Failed to create publisher: %v", err)
	}
	notifier, err := notify.NewQueueSender(rabbitMQ)
	if err != nil {
		log.Fatalf("Failed to create notification sender: %v", err)
	}

	// Identity collaborator, discovered through Consul
	identityURL, err := consul.GetServiceURL(cfg.IdentityService)
	if err != nil {
		log.Fatalf("Failed to locate identity service: %v", err)
	}
	identity := client.NewIdentityClient(identityURL)

	// Repositories and services
	productRepo := db.NewProductRepository(database)
	cachedProducts := db.NewCachedProductRepository(productRepo, redisCache)
	orderRepo := db.NewOrderRepository(database)
	ledger := inventory.NewLedger()

	orderService := orders.NewService(database, orderRepo, ledger, orderPublisher, cachedProducts)
	verifier := payment.NewVerifier(cfg.PaymentGatewaySecret)
	gateway := payment.NewGateway(verifier, orderService, notifier)

	orderHandler := handlers.NewOrderHandler(orderService)
	productHandler := handlers.NewProductHandler(cachedProducts)
	paymentHandler := handlers.NewPaymentHandler(gateway)

	// Setup router
	serverMetrics := metrics.NewServerMetrics("api")
	router := gin.Default()
	router.Use(serverMetrics.Middleware())

	router.GET("/health", orderHandler.HealthCheck)
	router.GET("/metrics", metrics.Handler())

	router.GET("/products", productHandler.ListProducts)
	router.GET("/products/:id", productHandler.GetProduct)

	authed := router.Group("/", auth.Middleware(identity))
	{
		authed.POST("/orders", orderHandler.Checkout)
		authed.GET("/orders", orderHandler.ListMine)
		authed.GET("/orders/:id", orderHandler.GetOrder)
		authed.PUT("/orders/:id/cancel", orderHandler.Cancel)
		authed.POST("/payments/verify", paymentHandler.Verify)
	}

	admin := router.Group("/admin", auth.Middleware(identity), auth.RequireAdmin())
	{
		admin.GET("/orders", orderHandler.ListAllOrders)
		admin.GET("/revenue", orderHandler.Revenue)
		admin.PUT("/orders/:id/status", orderHandler.UpdateStatus)
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
	}

	log.Printf("🚀 %s starting on http://localhost:%d", serviceName, cfg.Port)
	router.Run(fmt.Sprintf(":%d", cfg.Port))
}
