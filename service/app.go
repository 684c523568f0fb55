package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"board/app/database"
	"board/app/routes"
	"board/app/services"
	"board/logger"
)

// NewHandler wires the services over store into the HTTP router.
func NewHandler(store database.Store) http.Handler {
	postService := services.NewPostService(store.Posts())
	commentService := services.NewCommentService(store.Comments(), store.Posts())
	return routes.SetupRoutes(postService, commentService)
}

// Serve serves handler on ln until ctx is done, then shuts the server down,
// waiting up to shutdownTimeout for in-flight requests.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Log.Infof("Listening on %s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
