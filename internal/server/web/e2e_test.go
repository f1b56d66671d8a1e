package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/johnsonjew/learning-journal/internal/common"
	"github.com/johnsonjew/learning-journal/internal/dbx"
	"github.com/johnsonjew/learning-journal/internal/logging"
	"github.com/johnsonjew/learning-journal/internal/markup"
	"github.com/johnsonjew/learning-journal/internal/server/auth"
	"github.com/johnsonjew/learning-journal/internal/server/config"
	"github.com/johnsonjew/learning-journal/internal/server/repositories/repomanager"
	"github.com/johnsonjew/learning-journal/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journal struct {
	ts      *httptest.Server
	entries *services.EntryService
}

// newJournal runs the whole application stack against a private in-memory
// SQLite database.
func newJournal(t *testing.T) *journal {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, dialect, err := dbx.Open(fmt.Sprintf("file:e2e_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	m := repomanager.NewSQLRepositoryManager(dialect, logging.Nop{})
	require.NoError(t, m.RunMigrations(context.Background(), db))

	hash, err := auth.HashPassword("secret")
	require.NoError(t, err)

	cfg := &config.Config{
		SecretKey:               "e2e-secret",
		SessionValidityDuration: time.Hour,
		AdminUserName:           "admin",
		AdminPasswordHash:       hash,
	}

	renderer := markup.NewRenderer("")
	es := services.NewEntryService(db, m, renderer)
	s, err := NewHTTPServer("", logging.Nop{}, es, services.NewAuthService(cfg), db, renderer)
	require.NoError(t, err)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)

	return &journal{ts: ts, entries: es}
}

// client returns a browser-like client that keeps cookies and does not
// follow redirects, so each hop can be inspected.
func (j *journal) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (j *journal) login(t *testing.T, c *http.Client) {
	t.Helper()
	resp, err := c.PostForm(j.ts.URL+"/login", url.Values{"username": {"admin"}, "password": {"secret"}})
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestE2E_AnonymousAddCreatesNothing(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)

	resp, err := c.PostForm(j.ts.URL+"/add", url.Values{"title": {"T"}, "text": {"hello"}})
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))

	list, err := j.entries.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestE2E_LoginWriteAndRead(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)
	j.login(t, c)

	resp, err := c.PostForm(j.ts.URL+"/add", url.Values{"title": {"older"}, "text": {"first"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = c.PostForm(j.ts.URL+"/add", url.Values{"title": {"T"}, "text": {"hello **world**"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	resp, err = http.Get(j.ts.URL + "/")
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Less(t, strings.Index(body, ">T<"), strings.Index(body, ">older<"), "newest entry comes first")

	list, err := j.entries.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "T", list[0].Title)

	resp, err = http.Get(fmt.Sprintf("%s/details/%d", j.ts.URL, list[0].ID))
	require.NoError(t, err)
	body = readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<strong>world</strong>")
}

func TestE2E_EditKeepsIDAndDate(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)
	j.login(t, c)

	created, err := j.entries.Write(context.Background(), "before", "old")
	require.NoError(t, err)

	resp, err := c.PostForm(fmt.Sprintf("%s/edit_post/%d", j.ts.URL, created.ID), url.Values{"title": {"after"}, "text": {"new"}})
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	got, err := j.entries.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, "new", got.Text)
	assert.True(t, got.Date.Equal(created.Date))
}

func TestE2E_InlineEditReturnsRenderedText(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)
	j.login(t, c)

	created, err := j.entries.Write(context.Background(), "before", "old")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/edit_post/%d", j.ts.URL, created.ID),
		strings.NewReader(url.Values{"title": {"after"}, "text": {"*em*"}}.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.Do(req)
	require.NoError(t, err)
	body := readBody(t, resp)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply entryReply
	require.NoError(t, json.Unmarshal([]byte(body), &reply))
	assert.Equal(t, created.ID, reply.ID)
	assert.Equal(t, "after", reply.Title)
	assert.Contains(t, reply.Text, "<em>em</em>")
}

func TestE2E_FailedLoginSetsNoCookie(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)

	resp, err := c.PostForm(j.ts.URL+"/login", url.Values{"username": {"admin"}, "password": {"wrong"}})
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Login Failed")
	assert.Empty(t, resp.Cookies())

	resp, err = c.Get(j.ts.URL + "/newpost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
}

func TestE2E_LogoutEndsSession(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)
	j.login(t, c)

	resp, err := c.Get(j.ts.URL + "/newpost")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.Get(j.ts.URL + "/logout")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	u, err := url.Parse(j.ts.URL)
	require.NoError(t, err)
	for _, cookie := range c.Jar.Cookies(u) {
		assert.NotEqual(t, common.SessionCookieName, cookie.Name, "session cookie must be gone")
	}

	resp, err = c.Get(j.ts.URL + "/newpost")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestE2E_UnknownEntry(t *testing.T) {
	j := newJournal(t)
	c := j.client(t)
	j.login(t, c)

	for _, path := range []string{"/details/12345", "/edit/12345"} {
		resp, err := c.Get(j.ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)
	}
}

func TestE2E_Healthz(t *testing.T) {
	j := newJournal(t)

	resp, err := http.Get(j.ts.URL + "/healthz")
	require.NoError(t, err)
	body := readBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, body)
}
