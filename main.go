package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealcheck/pkg/api"
	"mealcheck/pkg/collection"
	"mealcheck/pkg/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	verbose := flag.Bool("v", false, "Verbose logging")
	configFile := flag.String("config", "", "Optional TOML config file, created with defaults if missing")
	listen := flag.String("listen", "", "Listen address, overrides the config")

	flag.Parse()
	if *verbose {
		// Set the log level to debug
		log.SetLevel(log.DebugLevel)
	}
	// Set the log format to include a leading timestamp in ISO8601 format
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})

	cfg, err := config.New(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *listen != "" {
		cfg.Store.Server.ListenAddress = *listen
	}

	// Credentials are checked per request so a misconfigured server still
	// starts and reports the problem to its users.
	if err := cfg.Credentials().Validate(); err != nil {
		log.Warnf("Spreadsheet access is not configured: %v", err)
	}

	svc := collection.NewService(collection.Connect(cfg.Credentials()))
	router := api.GetRouter(svc, api.Options{
		LookupRate:     cfg.Store.Server.LookupRate,
		LookupBurst:    cfg.Store.Server.LookupBurst,
		Users:          cfg.Store.Auth.Users,
		IdentityHeader: cfg.Store.Auth.IdentityHeader,
	})

	go startServer(cfg.Store.Server.ListenAddress, router)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	<-signalChan
	log.Info("Signalled, shutting down")
}

func startServer(addr string, router http.Handler) {
	server := http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
	}
	log.Infof("listening for HTTP on: %s", server.Addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("ListenAndServe: %v", err)
	}
}
