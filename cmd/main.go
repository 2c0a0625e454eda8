package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"

	storefront_controller "storefront-service/internal/controller"
	storefront_events "storefront-service/internal/events"
	storefront_handler_http "storefront-service/internal/handler"
	storefront_repository "storefront-service/internal/repository"
	"storefront-service/pkg/consul"
)

func main() {
	var err error
	var ctx context.Context

	var port int
	var controller *storefront_controller.Controller_Storefront
	var handler *storefront_handler_http.Handler_Storefront
	var publisher *storefront_events.Publisher_SQS

	// -------------------------------------------------------------------
	// variable initialization
	// -------------------------------------------------------------------
	// getting the service port from environment variable or defaulting to 8000
	port, err = strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8000
	}
	log.Printf("Storefront service starting on port %d", port)
	// initializing context
	ctx = context.Background()
	// per-operation storage timeout
	timeoutSeconds, err := strconv.Atoi(os.Getenv("DB_TIMEOUT_SECONDS"))
	if err != nil {
		timeoutSeconds = 5
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	// optional placed-order event queue
	if queueURL := os.Getenv("SQS_QUEUE_URL"); queueURL != "" {
		publisher, err = storefront_events.New(ctx, os.Getenv("AWS_REGION"), queueURL)
		if err != nil {
			log.Fatalf("Failed to initialize SQS publisher: %v", err)
		}
		log.Printf("Placed-order events will be published to %s", queueURL)
	}
	// data repository: Postgres when DATABASE_URL is set, volatile otherwise
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		var db *sql.DB
		db, err = sql.Open("postgres", databaseURL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.Close()
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		datarepo := storefront_repository.New(db, timeout)
		if err = datarepo.Init_Schema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		if publisher != nil {
			controller = storefront_controller.New(datarepo, publisher)
		} else {
			controller = storefront_controller.New(datarepo, nil)
		}
	} else {
		log.Printf("DATABASE_URL not set, using volatile data repository")
		datarepo := storefront_repository.New_Volatile()
		if publisher != nil {
			controller = storefront_controller.New(datarepo, publisher)
		} else {
			controller = storefront_controller.New(datarepo, nil)
		}
	}
	// handler
	handler = storefront_handler_http.New(controller)
	// -------------------------------------------------------------------

	// -------------------------------------------------------------------
	// service endpoints
	// -------------------------------------------------------------------
	r := mux.NewRouter()
	// CORS preflight (OPTIONS) requests for all endpoints
	r.PathPrefix("/api").Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		storefront_handler_http.AddCORSHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})).ServeHTTP(w, r)
	})
	// GET all products
	r.Handle("/api/products", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Get_AllProducts))).Methods(http.MethodGet)
	// GET product by ID
	r.Handle("/api/products/{productId}", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Get_ProductByID))).Methods(http.MethodGet)
	// PUT set product quantity (admin path)
	r.Handle("/api/products/{productId}/quantity", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Set_ProductQuantity))).Methods(http.MethodPut)
	// GET all orders
	r.Handle("/api/orders", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Get_AllOrders))).Methods(http.MethodGet)
	// GET order by ID
	r.Handle("/api/orders/{orderId}", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Get_ByOrderID))).Methods(http.MethodGet)
	// POST place order
	r.Handle("/api/orders", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Create_Order))).Methods(http.MethodPost)
	// POST complete order
	r.Handle("/api/orders/{orderId}/complete", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(handler.Complete_Order))).Methods(http.MethodPost)
	// -------------------------------------------------------------------
	// health check endpoint
	r.Handle("/health", storefront_handler_http.AddCORSHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Storefront service is healthy")
	}))).Methods(http.MethodGet)
	// -------------------------------------------------------------------

	// -------------------------------------------------------------------
	// service registration (optional)
	// -------------------------------------------------------------------
	if consulHost := os.Getenv("CONSUL_HOST"); consulHost != "" {
		serviceName := os.Getenv("SERVICE_NAME")
		if serviceName == "" {
			serviceName = "storefront-service"
		}

		consulClient, err := consul.NewClient(consulHost, serviceName, port)
		if err != nil {
			log.Fatalf("Failed to create consul client: %v", err)
		}
		if err = consulClient.WaitForConsul(10); err != nil {
			log.Fatalf("%v", err)
		}
		if err = consulClient.RegisterService(); err != nil {
			log.Fatalf("%v", err)
		}
		defer consulClient.DeregisterService()
	}
	// -------------------------------------------------------------------

	// -------------------------------------------------------------------
	// exposing the service
	// -------------------------------------------------------------------
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// waiting for shutdown signal so Consul deregistration and the DB
	// close still run
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	// -------------------------------------------------------------------
}
