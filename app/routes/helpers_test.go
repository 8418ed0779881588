package routes

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"simpleboard/app/controllers"
	"simpleboard/app/flash"
	"simpleboard/app/models"
	"simpleboard/app/repositories"
	"simpleboard/app/services"
	"simpleboard/app/views"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	models.PasswordCost = bcrypt.MinCost
}

func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := repositories.Open(repositories.DriverSQLite, filepath.Join(t.TempDir(), "board.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repositories.MigrateUp(db))
	return db
}

func setupTestRouter(t *testing.T, db *sqlx.DB) (*mux.Router, *services.PostService) {
	postService := services.NewPostService(repositories.NewSQLPostRepository(db))

	renderer, err := views.New()
	require.NoError(t, err)

	store, err := flash.OpenBadgerStore("")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	controller := controllers.NewBoardController(postService, renderer, flash.NewManager(store, 0))
	return SetupRoutes(controller), postService
}

// client keeps the session cookie between requests.
type client struct {
	handler http.Handler
	cookies []*http.Cookie
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	if set := w.Result().Cookies(); len(set) > 0 {
		c.cookies = set
	}
	return w
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (c *client) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}
