package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/d60-Lab/birdnest/config"
	"github.com/d60-Lab/birdnest/internal/api/handler"
	"github.com/d60-Lab/birdnest/internal/model"
	"github.com/d60-Lab/birdnest/internal/otp"
	"github.com/d60-Lab/birdnest/internal/repository"
	"github.com/d60-Lab/birdnest/internal/secret"
	"github.com/d60-Lab/birdnest/internal/service"
	"github.com/d60-Lab/birdnest/internal/view"
)

const (
	owner      = "cccccccbcjdf"
	goodToken  = owner + "ltnrhvhjrvdkdhcguhebbcujtnjcbjlk"
	otherToken = "vvvvvvvvvvvv" + "ltnrhvhjrvdkdhcguhebbcujtnjcbjlk"
)

type stubValidator struct {
	accept bool
	calls  int
}

func (s *stubValidator) Verify(ctx context.Context, token string) (bool, error) {
	s.calls++
	return s.accept, nil
}

type testEnv struct {
	router    *gin.Engine
	posts     service.PostService
	repo      repository.PostRepository
	validator *stubValidator
	secrets   *miniredis.Miniredis
	logs      *observer.ObservedLogs
	now       time.Time
}

func (e *testEnv) do(method, target string, form url.Values, header ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func setupRouter(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{Mode: gin.TestMode, BaseURL: "https://blog.example.com/"},
		Secrets: config.SecretsConfig{Bucket: "creds", OwnerKey: "yubikey_key_id", CredentialsKey: "yubico"},
		Feed:    config.FeedConfig{Title: "birdnest", Description: "notes", Limit: 10},
	}
	for _, fn := range mutate {
		fn(cfg)
	}

	db, err := repository.OpenBadger("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := repository.NewBadgerPostRepository(db, "posts")

	env := &testEnv{
		repo:      repo,
		validator: &stubValidator{accept: true},
		secrets:   miniredis.RunT(t),
		now:       time.Date(2021, 3, 14, 15, 9, 26, 0, time.UTC),
	}
	env.posts = service.NewPostService(repo, service.WithClock(func() time.Time { return env.now }))

	require.NoError(t, env.secrets.Set("creds/yubikey_key_id", owner))
	require.NoError(t, env.secrets.Set("creds/yubico", "4242,c2VjcmV0a2V5"))
	client := redis.NewClient(&redis.Options{Addr: env.secrets.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	factory := func(string, string) (otp.TokenValidator, error) { return env.validator, nil }
	verifier := otp.NewVerifier(secret.NewRedisLoader(client), cfg.Secrets, factory, nil)

	renderer, err := view.NewRenderer(cfg.Feed.Title)
	require.NoError(t, err)

	core, logs := observer.New(zap.InfoLevel)
	env.logs = logs
	env.router = SetupRouter(cfg, handler.NewHandler(env.posts, verifier, renderer, cfg, handler.WithLogger(zap.New(core))))
	return env
}

func postForm(token, title, content string) url.Values {
	return url.Values{"otp": {token}, "title": {title}, "content": {content}}
}

func TestCreateAndView(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/new", postForm(goodToken, "  Hello  ", "**hi**"))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "=)", w.Body.String())
	assert.Equal(t, 1, env.validator.calls)

	id := strconv.FormatInt(env.now.Unix(), 10)
	for _, path := range []string{"/post/" + id, "/" + id} {
		w = env.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), "<strong>hi</strong>")

		doc, err := goquery.NewDocumentFromReader(w.Body)
		require.NoError(t, err)
		assert.Equal(t, "Hello", doc.Find("h2.title").Text())
		assert.Equal(t, "2021-03-14", doc.Find("span.date").Text())
	}

	stored, err := env.posts.Get(context.Background(), env.now.Unix())
	require.NoError(t, err)
	assert.Equal(t, "Hello", stored.Title)
	assert.Equal(t, "**hi**", stored.Content)
	assert.Empty(t, stored.Edit)
}

func TestCreateDenied(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/new", postForm(otherToken, "t", "c"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 0, env.validator.calls)

	env.validator.accept = false
	w = env.do(http.MethodPost, "/new", postForm(goodToken, "t", "c"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, 1, env.validator.calls)

	posts, err := env.posts.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreateInvalidForm(t *testing.T) {
	env := setupRouter(t)

	cases := map[string]url.Values{
		"missing otp":     {"title": {"t"}, "content": {"c"}},
		"non modhex otp":  postForm("0123456789abcdef", "t", "c"),
		"missing title":   {"otp": {goodToken}, "content": {"c"}},
		"missing content": {"otp": {goodToken}, "title": {"t"}},
	}
	for name, form := range cases {
		t.Run(name, func(t *testing.T) {
			env.logs.TakeAll()
			w := env.do(http.MethodPost, "/new", form)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, w.Body.String())

			entries := env.logs.FilterMessage("Rejected malformed form").All()
			require.Len(t, entries, 1)
			assert.Equal(t, form.Get("otp"), entries[0].ContextMap()["token"])
			assert.NotEmpty(t, entries[0].ContextMap()["error"])
		})
	}
	assert.Equal(t, 0, env.validator.calls)

	w := env.do(http.MethodPost, "/new", postForm(goodToken, "", ""))
	assert.Equal(t, http.StatusOK, w.Code, "empty title and content are accepted")
}

func TestDeleteNonModHexLogged(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/post/1/delete", url.Values{"otp": {"0123456789abcdef"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	entries := env.logs.FilterMessage("Rejected malformed form").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "0123456789abcdef", entries[0].ContextMap()["token"])
	assert.Contains(t, entries[0].ContextMap()["error"], "modhex")
	assert.Equal(t, 0, env.validator.calls)
}

func TestSecretUnavailable(t *testing.T) {
	env := setupRouter(t)
	env.secrets.Del("creds/yubico")

	w := env.do(http.MethodPost, "/new", postForm(goodToken, "t", "c"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, 0, env.validator.calls)
}

func TestViewNotFound(t *testing.T) {
	env := setupRouter(t)

	for _, path := range []string{"/999", "/post/999", "/post/999/edit", "/999/edit", "/posts/999/edit"} {
		w := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Empty(t, w.Body.String(), path)
	}
}

func TestMalformedID(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodGet, "/post/abc", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestEdit(t *testing.T) {
	env := setupRouter(t)
	ctx := context.Background()

	created, err := env.posts.Create(ctx, "first", "body")
	require.NoError(t, err)
	id := strconv.FormatInt(created.ID, 10)

	w := env.do(http.MethodGet, "/post/"+id+"/edit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	value, _ := doc.Find(`input[name="title"]`).Attr("value")
	assert.Equal(t, "first", value)

	for i, path := range []string{"/post/" + id + "/edit", "/posts/" + id + "/edit", "/" + id + "/edit"} {
		env.now = env.now.AddDate(0, 0, 1)
		title := "edited " + strconv.Itoa(i)

		w = env.do(http.MethodPost, path, postForm(goodToken, " "+title+" ", "new body"))
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "=)", w.Body.String())

		got, err := env.posts.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "2021-03-14", got.Date)
		assert.Equal(t, env.now.Format(model.DateLayout), got.Edit)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, "new body", got.Content)
	}
}

func TestEditDenied(t *testing.T) {
	env := setupRouter(t)
	ctx := context.Background()

	created, err := env.posts.Create(ctx, "first", "body")
	require.NoError(t, err)

	w := env.do(http.MethodPost, "/"+strconv.FormatInt(created.ID, 10)+"/edit", postForm(otherToken, "x", "y"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got, err := env.posts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
	assert.Empty(t, got.Edit)
}

func TestEditMissingDoesNotCreate(t *testing.T) {
	env := setupRouter(t)

	w := env.do(http.MethodPost, "/post/777/edit", postForm(goodToken, "ghost", "boo"))
	assert.Equal(t, http.StatusOK, w.Code)

	_, err := env.posts.Get(context.Background(), 777)
	assert.ErrorIs(t, err, repository.ErrPostNotFound)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/777", nil).Code)
}

func TestDelete(t *testing.T) {
	env := setupRouter(t)

	created, err := env.posts.Create(context.Background(), "bye", "")
	require.NoError(t, err)
	id := strconv.FormatInt(created.ID, 10)

	w := env.do(http.MethodGet, "/post/"+id+"/delete", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = env.do(http.MethodPost, "/post/"+id+"/delete", url.Values{"otp": {otherToken}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/"+id, nil).Code)

	for _, path := range []string{"/post/" + id + "/delete", "/" + id + "/delete"} {
		w = env.do(http.MethodPost, path, url.Values{"otp": {goodToken}})
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "=)", w.Body.String())
	}
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/"+id, nil).Code)
}

func TestHealth(t *testing.T) {
	env := setupRouter(t)

	for _, path := range []string{"/health", "/health/"} {
		w := env.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "=)", w.Body.String(), path)
	}
}

func TestListOrderAndETag(t *testing.T) {
	env := setupRouter(t)
	ctx := context.Background()

	for _, p := range []*model.Post{
		{ID: 1, Date: "2021-01-01", Title: "jan"},
		{ID: 2, Date: "2021-06-01", Title: "jun"},
		{ID: 3, Date: "2020-12-31", Title: "dec"},
	} {
		require.NoError(t, env.repo.Put(ctx, p))
	}

	w := env.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	etag := w.Header().Get("ETag")
	require.NotEmpty(t, etag)

	doc, err := goquery.NewDocumentFromReader(w.Body)
	require.NoError(t, err)
	var titles []string
	doc.Find("li.post a").Each(func(_ int, s *goquery.Selection) {
		titles = append(titles, s.Text())
	})
	assert.Equal(t, []string{"jun", "jan", "dec"}, titles)

	w = env.do(http.MethodGet, "/", nil, "If-None-Match", etag)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestFeed(t *testing.T) {
	env := setupRouter(t)
	ctx := context.Background()

	require.NoError(t, env.repo.Put(ctx, &model.Post{ID: 1, Date: "2021-01-01", Title: "older", Content: "*a*"}))
	require.NoError(t, env.repo.Put(ctx, &model.Post{ID: 2, Date: "2021-06-01", Edit: "2021-07-01", Title: "newer", Content: "b"}))

	w := env.do(http.MethodGet, "/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/rss+xml")
	body := w.Body.String()
	assert.Contains(t, body, "<rss")
	assert.Contains(t, body, "https://blog.example.com/post/2")
	assert.Less(t, strings.Index(body, "newer"), strings.Index(body, "older"))

	w = env.do(http.MethodGet, "/feed?format=atom", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/atom+xml")
	assert.Contains(t, w.Body.String(), "<feed")
}

func TestFeedLimit(t *testing.T) {
	env := setupRouter(t, func(cfg *config.Config) { cfg.Feed.Limit = 1 })
	ctx := context.Background()

	require.NoError(t, env.repo.Put(ctx, &model.Post{ID: 1, Date: "2021-01-01", Title: "older"}))
	require.NoError(t, env.repo.Put(ctx, &model.Post{ID: 2, Date: "2021-06-01", Title: "newer"}))

	body := env.do(http.MethodGet, "/feed", nil).Body.String()
	assert.Contains(t, body, "newer")
	assert.NotContains(t, body, "older")
}

func TestWriteRateLimited(t *testing.T) {
	env := setupRouter(t, func(cfg *config.Config) {
		cfg.RateLimit = config.RateLimitConfig{RPS: 0.0001, Burst: 1}
	})

	assert.Equal(t, http.StatusOK, env.do(http.MethodPost, "/new", postForm(goodToken, "a", "b")).Code)
	assert.Equal(t, http.StatusTooManyRequests, env.do(http.MethodPost, "/new", postForm(goodToken, "a", "b")).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", nil).Code)
	assert.Equal(t, 1, env.validator.calls)
}
