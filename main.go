package main

import (
	"errors"
	"log"
	"net/http"
	"os"

	"finance/src/api"
	"finance/src/config"
	"finance/src/utils"
)

func main() {
	cfg, err := config.LoadConfig("./settings", os.Getenv("ENV"))
	if err != nil {
		log.Println(err, "Error while loading config")
		return
	}
	errC, err := run(cfg)
	if err != nil {
		log.Println(err, "Couldn't run")
		return
	}

	if err := <-errC; err != nil {
		log.Println(err, "Error while running")
	}
}

func run(cfg *config.Config) (<-chan error, error) {
	errC := make(chan error, 1)

	logger := utils.NewLogger(cfg.Logging.Level)

	server, err := api.NewServer(cfg, logger)
	if err != nil {
		return nil, err
	}
	httpServer := api.NewHTTPServer(server, cfg.Service.Port)

	go func() {
		logger.WithField("port", cfg.Service.Port).Info("starting server")

		// "ListenAndServe always returns a non-nil error. After Shutdown or Close, the returned error is
		// ErrServerClosed."
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			server.Close()
			errC <- err
		}
	}()
	return errC, nil
}
