package routes

import (
	"context"
	"log"
	"net/http"
	"time"

	"simpleboard/app/controllers"
	"simpleboard/app/middleware"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// ShutdownTimeout bounds how long in-flight requests may run after a stop signal.
const ShutdownTimeout = 10 * time.Second

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(controller *controllers.BoardController) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.HandleFunc("/", controller.Index).Methods("GET")
	router.HandleFunc("/health", controller.Health).Methods("GET")

	// Web routes. Registered on the root router so a wrong method on any of
	// them answers 405.
	router.HandleFunc("/list", controller.List).Methods("GET")
	router.HandleFunc("/list/writeform", controller.WriteForm).Methods("GET")
	router.HandleFunc("/list/writeform", controller.Write).Methods("POST")
	router.HandleFunc("/list/view", controller.View).Methods("GET")
	router.HandleFunc("/list/deleteform", controller.DeleteForm).Methods("GET")
	router.HandleFunc("/list/delete", controller.Delete).Methods("POST")
	router.HandleFunc("/list/updateform", controller.UpdateForm).Methods("GET")
	router.HandleFunc("/list/update", controller.Update).Methods("POST")

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)
	api.HandleFunc("/list", controller.APIList).Methods("GET")
	api.HandleFunc("/list/{id}", controller.APIShow).Methods("GET")

	return router
}

// StartServer serves handler on addr until ctx is cancelled, then drains
// in-flight requests for up to ShutdownTimeout.
func StartServer(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server error")
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down server")
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server error")
	}
	return nil
}
