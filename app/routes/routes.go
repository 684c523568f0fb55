package routes

import (
	"encoding/json"
	"net/http"

	"board/app/controllers"
	"board/app/dto"
	"board/app/middleware"
	"board/app/services"
	"board/logger"

	"github.com/gorilla/mux"
)

// SetupRoutes defines the application's routes and returns a router.
func SetupRoutes(postService *services.PostService, commentService *services.CommentService) *mux.Router {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.NotFoundHandler = middleware.Logger(jsonError(http.StatusNotFound, "no route matches the request"))
	router.MethodNotAllowedHandler = middleware.Logger(jsonError(http.StatusMethodNotAllowed, "method not allowed"))

	router.HandleFunc("/health", health).Methods("GET")

	postController := controllers.NewPostController(postService)
	commentController := controllers.NewCommentController(commentService)

	// API routes with JSON content type
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.ContentTypeJSON)

	// Posts API endpoints
	posts := api.PathPrefix("/posts").Subrouter()
	posts.HandleFunc("", postController.Index).Methods("GET")
	posts.HandleFunc("/search", postController.Search).Methods("GET")
	posts.HandleFunc("", postController.Create).Methods("POST")
	posts.HandleFunc("/{id}", postController.Show).Methods("GET")
	posts.HandleFunc("/{id}", postController.Edit).Methods("PUT")
	posts.HandleFunc("/{id}", postController.Delete).Methods("DELETE")

	// Comments API endpoints
	posts.HandleFunc("/{postId}/comments", commentController.Index).Methods("GET")
	posts.HandleFunc("/{postId}/comments", commentController.Create).Methods("POST")
	api.HandleFunc("/comments", commentController.ByAuthor).Methods("GET")
	api.HandleFunc("/comments/{id}", commentController.Show).Methods("GET")
	api.HandleFunc("/comments/{id}", commentController.Edit).Methods("PUT")
	api.HandleFunc("/comments/{id}", commentController.Delete).Methods("DELETE")

	return router
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write([]byte(`{"status":"ok"}` + "\n")); err != nil {
		logger.Log.Errorf("write health response: %v", err)
	}
}

func jsonError(status int, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if err := json.NewEncoder(w).Encode(dto.NewErrorResponse(status, message)); err != nil {
			logger.Log.Errorf("encode response: %v", err)
		}
	})
}
