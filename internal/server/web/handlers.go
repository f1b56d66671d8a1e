package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/johnsonjew/learning-journal/internal/common"
	"github.com/johnsonjew/learning-journal/internal/server/models"
)

type entryReply struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

func (s *HTTPServer) listEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.entries.ListAll(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, pageList, pageData{Entries: entries})
}

func (s *HTTPServer) entryDetails(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, pageDetails, pageData{Entry: entry, Body: s.entries.RenderMarkup(entry)})
}

func (s *HTTPServer) newPostForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageNewPost, pageData{})
}

func (s *HTTPServer) addEntry(w http.ResponseWriter, r *http.Request) {
	form, ok := s.parseEntryForm(w, r)
	if !ok {
		return
	}

	entry, err := s.entries.Write(r.Context(), form.Title, form.Text)
	if err != nil {
		if msg, ok := common.UserMessage(err); ok {
			s.render(w, r, http.StatusOK, pageNewPost, pageData{Form: form, Error: msg})
			return
		}
		s.internalError(w, r, err)
		return
	}

	userName, _ := userNameFromContext(r.Context())
	s.logger.Info(r.Context(), "Entry created", "id", entry.ID, "username", userName)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) editForm(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.loadEntry(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, pageEdit, pageData{Entry: entry, Form: formData{Title: entry.Title, Text: entry.Text}})
}

func (s *HTTPServer) editEntry(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(r)
	if !ok {
		s.notFound(w, r)
		return
	}

	form, ok := s.parseEntryForm(w, r)
	if !ok {
		return
	}

	entry, err := s.entries.Change(r.Context(), id, form.Title, form.Text)
	if err != nil {
		s.editFailed(w, r, id, form, err)
		return
	}

	userName, _ := userNameFromContext(r.Context())
	s.logger.Info(r.Context(), "Entry changed", "id", entry.ID, "username", userName)

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, entryReply{
			ID:    entry.ID,
			Title: entry.Title,
			Text:  string(s.entries.RenderMarkup(entry)),
		})
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) editFailed(w http.ResponseWriter, r *http.Request, id int64, form formData, err error) {
	msg, invalid := common.UserMessage(err)

	if wantsJSON(r) {
		switch {
		case invalid:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		case errors.Is(err, common.ErrorNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		default:
			s.logger.Error(r.Context(), err.Error(), "request_id", requestIDFromContext(r.Context()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	switch {
	case invalid:
		s.render(w, r, http.StatusOK, pageEdit, pageData{Entry: &models.Entry{ID: id}, Form: form, Error: msg})
	case errors.Is(err, common.ErrorNotFound):
		s.notFound(w, r)
	default:
		s.internalError(w, r, err)
	}
}

func (s *HTTPServer) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, pageLogin, pageData{})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return
	}

	userName := r.PostFormValue("username")
	password := r.PostFormValue("password")
	form := formData{UserName: userName}

	ok, err := s.auth.AttemptLogin(r.Context(), userName, password)
	if err != nil {
		if msg, invalid := common.UserMessage(err); invalid {
			s.render(w, r, http.StatusOK, pageLogin, pageData{Form: form, Error: msg})
			return
		}
		s.internalError(w, r, err)
		return
	}
	if !ok {
		s.logger.Warn(r.Context(), "Login failed", "username", userName)
		s.render(w, r, http.StatusOK, pageLogin, pageData{Form: form, Error: "Login Failed"})
		return
	}

	token, err := s.auth.IssueSession(userName)
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Logged in", "username", userName)
	http.SetCookie(w, s.auth.SessionCookie(token))
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.auth.RevokeSession())
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *HTTPServer) healthz(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error(r.Context(), "database ping failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) stylesheet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	_, _ = w.Write(s.css)
}

func (s *HTTPServer) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, pageNotFound, pageData{})
}

// internalError logs err and answers with a body that reveals nothing about it.
func (s *HTTPServer) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error(r.Context(), err.Error(), "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// loadEntry resolves the {id} route variable, answering 404 itself when the
// id is malformed or unknown.
func (s *HTTPServer) loadEntry(w http.ResponseWriter, r *http.Request) (*models.Entry, bool) {
	id, ok := entryID(r)
	if !ok {
		s.notFound(w, r)
		return nil, false
	}

	entry, err := s.entries.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.notFound(w, r)
			return nil, false
		}
		s.internalError(w, r, err)
		return nil, false
	}
	return entry, true
}

func (s *HTTPServer) parseEntryForm(w http.ResponseWriter, r *http.Request) (formData, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "malformed form", http.StatusBadRequest)
		return formData{}, false
	}
	return formData{Title: r.PostFormValue("title"), Text: r.PostFormValue("text")}, true
}

func entryID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
