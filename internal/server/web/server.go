// Package web serves the journal as HTML over HTTP.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/johnsonjew/learning-journal/internal/logging"
	"github.com/johnsonjew/learning-journal/internal/server/models"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	maxFormBytes = 1 << 20
)

// EntryStore is what the handlers need from the entry service.
type EntryStore interface {
	Write(ctx context.Context, title, text string) (*models.Entry, error)
	Change(ctx context.Context, id int64, title, text string) (*models.Entry, error)
	Get(ctx context.Context, id int64) (*models.Entry, error)
	ListAll(ctx context.Context) ([]*models.Entry, error)
	RenderMarkup(entry *models.Entry) template.HTML
}

// AuthGate is what the handlers need from the auth service.
type AuthGate interface {
	AttemptLogin(ctx context.Context, userName, password string) (bool, error)
	IssueSession(userName string) (string, error)
	IsAuthenticated(token string) (string, bool)
	SessionCookie(token string) *http.Cookie
	RevokeSession() *http.Cookie
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type StyleSheet interface {
	WriteCSS(w io.Writer) error
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	entries   EntryStore
	auth      AuthGate
	db        Pinger
	css       []byte
	templates map[string]*template.Template
	handler   http.Handler
}

func NewHTTPServer(a string, l logging.Logger, es EntryStore, as AuthGate, db Pinger, css StyleSheet) (*HTTPServer, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := css.WriteCSS(&buf); err != nil {
		return nil, fmt.Errorf("error generating stylesheet: %w", err)
	}

	s := &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		entries:   es,
		auth:      as,
		db:        db,
		css:       buf.Bytes(),
		templates: templates,
	}
	s.handler = s.routes()

	return s, nil
}

// Handler returns the fully wired router, middleware included.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

func (s *HTTPServer) routes() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.listEntries).Methods(http.MethodGet)
	r.HandleFunc("/details/{id}", s.entryDetails).Methods(http.MethodGet)
	r.Handle("/newpost", s.requireAdmin(http.HandlerFunc(s.newPostForm))).Methods(http.MethodGet)
	r.Handle("/add", s.requireAdmin(http.HandlerFunc(s.addEntry))).Methods(http.MethodPost)
	r.Handle("/edit/{id}", s.requireAdmin(http.HandlerFunc(s.editForm))).Methods(http.MethodGet)
	r.Handle("/edit_post/{id}", s.requireAdmin(http.HandlerFunc(s.editEntry))).Methods(http.MethodPost)
	r.HandleFunc("/login", s.loginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.login).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.logout).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.healthz).Methods(http.MethodGet)
	r.HandleFunc("/static/highlight.css", s.stylesheet).Methods(http.MethodGet)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(staticFiles()))).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(s.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	// mux only runs its own middleware on matched routes, so the chain wraps
	// the whole router to cover 404 and 405 replies too.
	return s.requestLogger(s.recoverer(s.session(r)))
}

func (s *HTTPServer) Run(ctx context.Context) error {

	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-done
}
