package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"simpleboard/app/models"
	"simpleboard/app/repositories"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// APIList returns one page of posts as JSON
func (bc *BoardController) APIList(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", models.DefaultPageSize)

	posts, err := bc.postService.ListPosts(r.Context(), page, size)
	if err != nil {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		bc.sendError(w, "Failed to fetch posts", http.StatusInternalServerError)
		return
	}
	bc.sendJSON(w, http.StatusOK, posts)
}

// APIShow returns a single post as JSON
func (bc *BoardController) APIShow(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		bc.sendError(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := bc.postService.GetPost(r.Context(), id)
	if errors.Is(err, repositories.ErrNotFound) {
		bc.sendError(w, MsgNotFound, http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		bc.sendError(w, "Failed to fetch post", http.StatusInternalServerError)
		return
	}
	bc.sendJSON(w, http.StatusOK, post)
}

func (bc *BoardController) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func (bc *BoardController) sendError(w http.ResponseWriter, message string, status int) {
	bc.sendJSON(w, status, map[string]string{"error": message})
}
