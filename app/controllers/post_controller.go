package controllers

import (
	"net/http"
	"strings"

	"board/app/dto"
	"board/app/services"
)

// PostController handles HTTP requests for board posts
type PostController struct {
	postService *services.PostService
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService) *PostController {
	return &PostController{postService: postService}
}

// Index lists one page of posts, optionally filtered by author
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	req, err := pageRequest(r)
	if err != nil {
		sendError(w, r, err)
		return
	}

	var list *dto.PostListResponse
	if author := r.URL.Query().Get("author"); author != "" {
		list, err = pc.postService.ListPostsByAuthor(r.Context(), author, req)
	} else {
		list, err = pc.postService.ListPosts(r.Context(), req)
	}
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, list)
}

// Search lists posts whose title or body contains the keyword query parameter
func (pc *PostController) Search(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if strings.TrimSpace(keyword) == "" {
		sendError(w, r, badRequest("keyword is required"))
		return
	}
	req, err := pageRequest(r)
	if err != nil {
		sendError(w, r, err)
		return
	}

	list, err := pc.postService.SearchPosts(r.Context(), keyword, req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, list)
}

// Show returns a post with its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.GetPost(r.Context(), id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.CreatePost(r.Context(), req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Edit handles updating a post
func (pc *PostController) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}
	var req dto.UpdatePostRequest
	if err := decodeJSON(r, &req); err != nil {
		sendError(w, r, err)
		return
	}

	post, err := pc.postService.UpdatePost(r.Context(), id, req)
	if err != nil {
		sendError(w, r, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		sendError(w, r, err)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		sendError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
