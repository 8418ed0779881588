package controllers

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strconv"

	"simpleboard/app/flash"
	"simpleboard/app/models"
	"simpleboard/app/repositories"
	"simpleboard/app/services"
	"simpleboard/app/views"

	"github.com/pkg/errors"
)

// Messages shown after a redirect.
const (
	MsgCreated          = "Post created."
	MsgUpdated          = "Post updated."
	MsgDeleted          = "Post deleted."
	MsgPasswordMismatch = "Password does not match."
	MsgNotFound         = "Post not found."
)

// Renderer writes a named view for a model.
type Renderer interface {
	Render(w io.Writer, name string, model map[string]any) error
}

// Flasher carries one-shot messages across a redirect.
type Flasher interface {
	Add(w http.ResponseWriter, r *http.Request, f flash.Flash) error
	Pop(r *http.Request) (flash.Flash, error)
}

// BoardController handles HTTP requests for the message board
type BoardController struct {
	postService *services.PostService
	views       Renderer
	flashes     Flasher
}

// NewBoardController creates a new BoardController
func NewBoardController(postService *services.PostService, renderer Renderer, flashes Flasher) *BoardController {
	return &BoardController{
		postService: postService,
		views:       renderer,
		flashes:     flashes,
	}
}

// Index sends the site root to the listing
func (bc *BoardController) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/list", http.StatusSeeOther)
}

// Health answers liveness checks
func (bc *BoardController) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// List shows one page of posts, newest first
func (bc *BoardController) List(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 0)
	size := queryInt(r, "size", models.DefaultPageSize)

	posts, err := bc.postService.ListPosts(r.Context(), page, size)
	if err != nil {
		bc.handleError(w, r, err)
		return
	}
	bc.render(w, r, http.StatusOK, views.List, map[string]any{"boardsPage": posts})
}

// WriteForm displays the form for creating a new post
func (bc *BoardController) WriteForm(w http.ResponseWriter, r *http.Request) {
	bc.render(w, r, http.StatusOK, views.WriteForm, map[string]any{"board": &models.Post{}})
}

// Write handles creating a new post
func (bc *BoardController) Write(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		bc.renderError(w, r, http.StatusBadRequest, "Failed to parse form")
		return
	}
	post := &models.Post{
		Name:     r.PostForm.Get("name"),
		Title:    r.PostForm.Get("title"),
		Password: r.PostForm.Get("password"),
		Content:  r.PostForm.Get("content"),
	}

	if err := bc.postService.CreatePost(r.Context(), post); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			post.Password = ""
			bc.render(w, r, http.StatusBadRequest, views.WriteForm, map[string]any{"board": post, "errors": ve.Fields})
			return
		}
		bc.handleError(w, r, err)
		return
	}

	bc.redirectWith(w, r, "/list", flash.Flash{Message: MsgCreated})
}

// View displays a single post
func (bc *BoardController) View(w http.ResponseWriter, r *http.Request) {
	bc.showPost(w, r, views.Detail)
}

// DeleteForm asks for the password before deleting a post
func (bc *BoardController) DeleteForm(w http.ResponseWriter, r *http.Request) {
	bc.showPost(w, r, views.DeleteForm)
}

// UpdateForm displays the edit form for a post
func (bc *BoardController) UpdateForm(w http.ResponseWriter, r *http.Request) {
	bc.showPost(w, r, views.Edit)
}

func (bc *BoardController) showPost(w http.ResponseWriter, r *http.Request, view string) {
	id, ok := parseID(r.URL.Query().Get("id"))
	if !ok {
		bc.renderError(w, r, http.StatusBadRequest, "Invalid post ID")
		return
	}

	post, err := bc.postService.GetPost(r.Context(), id)
	if err != nil {
		bc.handleError(w, r, err)
		return
	}
	bc.render(w, r, http.StatusOK, view, map[string]any{"board": post})
}

// Delete removes a post when the submitted password matches. Any failure
// sends the browser back to the confirmation form with an error message.
func (bc *BoardController) Delete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		bc.renderError(w, r, http.StatusBadRequest, "Failed to parse form")
		return
	}
	id, ok := parseID(r.PostForm.Get("id"))
	if !ok {
		bc.renderError(w, r, http.StatusBadRequest, "Invalid post ID")
		return
	}

	err := bc.postService.DeletePostWithPassword(r.Context(), id, r.PostForm.Get("password"))
	switch {
	case err == nil:
		bc.redirectWith(w, r, "/list", flash.Flash{Message: MsgDeleted})
	case errors.Is(err, services.ErrPasswordMismatch):
		bc.redirectWith(w, r, deleteFormURL(id), flash.Flash{Error: MsgPasswordMismatch})
	case errors.Is(err, repositories.ErrNotFound):
		bc.redirectWith(w, r, deleteFormURL(id), flash.Flash{Error: MsgNotFound})
	default:
		bc.handleError(w, r, err)
	}
}

// Update applies an edit to an existing post
func (bc *BoardController) Update(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		bc.renderError(w, r, http.StatusBadRequest, "Failed to parse form")
		return
	}
	id, ok := parseID(r.PostForm.Get("id"))
	if !ok {
		bc.renderError(w, r, http.StatusBadRequest, "Invalid post ID")
		return
	}
	post := &models.Post{
		ID:      id,
		Name:    r.PostForm.Get("name"),
		Title:   r.PostForm.Get("title"),
		Content: r.PostForm.Get("content"),
	}

	if err := bc.postService.UpdatePost(r.Context(), post); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			bc.render(w, r, http.StatusBadRequest, views.Edit, map[string]any{"board": post, "errors": ve.Fields})
			return
		}
		bc.handleError(w, r, err)
		return
	}

	bc.redirectWith(w, r, "/list/view?id="+strconv.FormatInt(id, 10), flash.Flash{Message: MsgUpdated})
}

// Helper methods for consistent response handling

// render pops any pending flash into model and writes the view. Output is
// buffered so a template failure still produces a clean 500.
func (bc *BoardController) render(w http.ResponseWriter, r *http.Request, status int, view string, model map[string]any) {
	if f, err := bc.flashes.Pop(r); err != nil {
		log.Printf("failed to read flash: %v", err)
	} else {
		if f.Message != "" {
			model["message"] = f.Message
		}
		if f.Error != "" {
			model["error"] = f.Error
		}
	}

	var buf bytes.Buffer
	if err := bc.views.Render(&buf, view, model); err != nil {
		log.Printf("failed to render %s: %v", view, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

func (bc *BoardController) renderError(w http.ResponseWriter, r *http.Request, status int, detail string) {
	bc.render(w, r, status, views.Error, map[string]any{
		"status":     status,
		"statusText": http.StatusText(status),
		"detail":     detail,
	})
}

func (bc *BoardController) handleError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, repositories.ErrNotFound) {
		bc.renderError(w, r, http.StatusNotFound, MsgNotFound)
		return
	}
	log.Printf("%s %s: %v", r.Method, r.URL.Path, err)
	bc.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

func (bc *BoardController) redirectWith(w http.ResponseWriter, r *http.Request, url string, f flash.Flash) {
	if err := bc.flashes.Add(w, r, f); err != nil {
		log.Printf("failed to store flash: %v", err)
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func deleteFormURL(id int64) string {
	return "/list/deleteform?id=" + strconv.FormatInt(id, 10)
}

// parseID accepts positive decimal ids only.
func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back to def when it is
// missing or malformed.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
