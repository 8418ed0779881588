package service

import (
	"context"
	"log"

	"simpleboard/app/controllers"
	"simpleboard/app/flash"
	"simpleboard/app/repositories"
	"simpleboard/app/routes"
	"simpleboard/app/services"
	"simpleboard/app/views"

	"github.com/pkg/errors"
)

// RunAppServer opens storage, brings the schema up to date and serves the
// board until ctx is cancelled.
func RunAppServer(ctx context.Context, cfg Config) error {
	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.MigrateUp(db); err != nil {
		return err
	}

	store, err := flash.OpenBadgerStore(cfg.FlashDir)
	if err != nil {
		return err
	}
	defer store.Close()

	renderer, err := views.New()
	if err != nil {
		return errors.Wrap(err, "failed to load views")
	}

	postService := services.NewPostService(repositories.NewSQLPostRepository(db))
	controller := controllers.NewBoardController(postService, renderer, flash.NewManager(store, cfg.FlashTTL))

	log.Printf("Starting board on %s (%s)", cfg.Addr, cfg.DBDriver)
	return routes.StartServer(ctx, cfg.Addr, routes.SetupRoutes(controller))
}
