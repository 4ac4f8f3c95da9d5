package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"mindweaver-server/internal/database/dbtest"
	"mindweaver-server/internal/handler"
	"mindweaver-server/internal/identity"
	"mindweaver-server/internal/logger"
	"mindweaver-server/internal/repository"
	"mindweaver-server/internal/server"
	"mindweaver-server/internal/service"
	"mindweaver-server/internal/session"
	"mindweaver-server/pkg/jwt"
)

const (
	testSecret  = "router-test-secret"
	cookieName  = "mindweaver_session"
	frontendURL = "http://127.0.0.1:5500/index.html"
)

type stubGenerator struct {
	story string
	err   error
}

func (g *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return g.story, g.err
}

type stubProvider struct{}

func (stubProvider) AuthCodeURL(state string) string {
	return "https://accounts.example.com/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (stubProvider) Authenticate(_ context.Context, code string) (*identity.Profile, error) {
	switch code {
	case "alice":
		return &identity.Profile{ID: "g-1", Email: "alice@example.com", Name: "Alice"}, nil
	case "bob":
		return &identity.Profile{ID: "g-2", Email: "bob@example.com", Name: "Bob", Picture: "https://example.com/b.png"}, nil
	}
	return nil, errors.New("invalid_grant")
}

// brokenStore fails every operation, like a session backend that is down.
type brokenStore struct{}

func (brokenStore) Save(context.Context, *session.Record) error {
	return errors.New("redis: connection refused")
}

func (brokenStore) Get(context.Context, string) (*session.Record, error) {
	return nil, errors.New("redis: connection refused")
}

func (brokenStore) Delete(context.Context, string) error {
	return errors.New("redis: connection refused")
}

type testServer struct {
	router http.Handler
	gen    *stubGenerator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.New(t)
	return newTestServerWithStore(t, db, session.NewDBStore(repository.NewSessionRepository(db)))
}

func newTestServerWithStore(t *testing.T, db *gorm.DB, store session.Store) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := logger.NewNop()

	sessions := session.NewManager(store, jwt.NewJWTService(testSecret, time.Hour))
	convs := repository.NewConversationRepository(db)
	msgs := repository.NewMessageRepository(db, convs)
	gen := &stubGenerator{story: "The lantern-keeper of Eldmoor listened."}

	authService := service.NewAuthService(repository.NewAccountRepository(db), stubProvider{}, sessions, log)
	chatService := service.NewChatService(convs, msgs, gen, 10, log)

	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins: []string{"http://127.0.0.1:5500"},
		CookieName:     cookieName,
		Sessions:       authService,
		Auth:           handler.NewAuthHandler(authService, handler.CookieConfig{Name: cookieName}, frontendURL, log),
		Chat:           handler.NewChatHandler(chatService, log),
		Health:         handler.NewHealthHandler(nil),
		Log:            log,
	})
	return &testServer{router: router, gen: gen}
}

func (s *testServer) do(t *testing.T, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func findCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// login runs the full redirect flow and returns the session cookie.
func (s *testServer) login(t *testing.T, code string) *http.Cookie {
	t.Helper()

	w := s.do(t, http.MethodGet, "/auth/google", "")
	if w.Code != http.StatusFound {
		t.Fatalf("GET /auth/google = %d", w.Code)
	}
	state := findCookie(w, "oauth_state")
	if state == nil || state.Value == "" {
		t.Fatal("no oauth_state cookie")
	}
	loc, _ := url.Parse(w.Header().Get("Location"))
	if got := loc.Query().Get("state"); got != state.Value {
		t.Fatalf("redirect state %q, cookie %q", got, state.Value)
	}

	w = s.do(t, http.MethodGet, "/auth/google/callback?code="+code+"&state="+state.Value, "", state)
	if w.Code != http.StatusFound {
		t.Fatalf("callback = %d: %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Location"); got != frontendURL {
		t.Fatalf("callback redirects to %q", got)
	}
	sess := findCookie(w, cookieName)
	if sess == nil || sess.Value == "" {
		t.Fatal("no session cookie after login")
	}
	if !sess.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	return &http.Cookie{Name: cookieName, Value: sess.Value}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestHealthAndIndex(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
	var health map[string]string
	decode(t, w, &health)
	if health["status"] != "healthy" {
		t.Errorf("health body = %v", health)
	}

	w = s.do(t, http.MethodGet, "/", "")
	var index struct {
		Message   string            `json:"message"`
		Endpoints map[string]string `json:"endpoints"`
	}
	decode(t, w, &index)
	if index.Message != "MindWeaver Saga API" || index.Endpoints["POST /generate-story"] == "" {
		t.Errorf("index body = %+v", index)
	}
}

func TestHealthReportsDependencies(t *testing.T) {
	h := handler.NewHealthHandler(map[string]handler.Pinger{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/health", h.Health)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, liveness must stay 200", w.Code)
	}
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, w, &body)
	if body.Status != "degraded" {
		t.Errorf("status = %q", body.Status)
	}
	if body.Checks["database"] != "ok" || body.Checks["redis"] != "unavailable" {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		method, target, body string
	}{
		{http.MethodPost, "/generate-story", `{"user_input":"hi"}`},
		{http.MethodGet, "/chats", ""},
		{http.MethodGet, "/chats/1/messages", ""},
	}
	for _, tc := range cases {
		for _, cookie := range []*http.Cookie{nil, {Name: cookieName, Value: "garbage"}} {
			var w *httptest.ResponseRecorder
			if cookie == nil {
				w = s.do(t, tc.method, tc.target, tc.body)
			} else {
				w = s.do(t, tc.method, tc.target, tc.body, cookie)
			}
			if w.Code != http.StatusUnauthorized {
				t.Errorf("%s %s = %d, want 401", tc.method, tc.target, w.Code)
				continue
			}
			var body map[string]string
			decode(t, w, &body)
			if body["error"] != "Authentication required" {
				t.Errorf("%s %s body = %v", tc.method, tc.target, body)
			}
		}
	}
}

func TestStatusAndLogout(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/auth/status", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d", w.Code)
	}
	var anon map[string]interface{}
	decode(t, w, &anon)
	if anon["authenticated"] != false {
		t.Errorf("anonymous status body = %v", anon)
	}

	cookie := s.login(t, "bob")

	w = s.do(t, http.MethodGet, "/auth/status", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var status service.StatusResponse
	decode(t, w, &status)
	if !status.Authenticated || status.User == nil || status.User.Email != "bob@example.com" {
		t.Fatalf("status body = %s", w.Body.String())
	}
	if status.User.Picture == nil || *status.User.Picture != "https://example.com/b.png" {
		t.Errorf("picture = %v", status.User.Picture)
	}

	w = s.do(t, http.MethodPost, "/auth/logout", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("logout = %d", w.Code)
	}
	if c := findCookie(w, cookieName); c == nil || c.MaxAge >= 0 {
		t.Error("logout must clear the session cookie")
	}

	// the old cookie is dead even if the browser keeps sending it
	if w := s.do(t, http.MethodGet, "/chats", "", cookie); w.Code != http.StatusUnauthorized {
		t.Errorf("chats after logout = %d", w.Code)
	}
	// logging out twice is fine
	if w := s.do(t, http.MethodPost, "/auth/logout", "", cookie); w.Code != http.StatusOK {
		t.Errorf("second logout = %d", w.Code)
	}
	if w := s.do(t, http.MethodPost, "/auth/logout", ""); w.Code != http.StatusOK {
		t.Errorf("logout without cookie = %d", w.Code)
	}
}

func TestCallbackFailures(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/auth/google/callback", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing code = %d", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Authorization code not provided" {
		t.Errorf("missing code body = %v", body)
	}

	w = s.do(t, http.MethodGet, "/auth/google/callback?code=alice&state=whatever", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("callback without state cookie = %d", w.Code)
	}

	state := &http.Cookie{Name: "oauth_state", Value: "expected"}
	w = s.do(t, http.MethodGet, "/auth/google/callback?code=alice&state=forged", "", state)
	if w.Code != http.StatusBadRequest {
		t.Errorf("state mismatch = %d", w.Code)
	}
	if findCookie(w, cookieName) != nil {
		t.Error("no session cookie on a failed login")
	}

	w = s.do(t, http.MethodGet, "/auth/google/callback?code=unknown&state=expected", "", state)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad code = %d", w.Code)
	}
	decode(t, w, &body)
	if body["error"] != "Failed to get access token" {
		t.Errorf("bad code body = %v", body)
	}
}

func TestGenerateStoryFlow(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "alice")

	w := s.do(t, http.MethodPost, "/generate-story", `{"user_input":"I feel lost at work"}`, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("generate = %d: %s", w.Code, w.Body.String())
	}
	var first service.StoryResult
	decode(t, w, &first)
	if first.Story != s.gen.story || first.ChatID == 0 {
		t.Fatalf("generate body = %+v", first)
	}

	body := `{"user_input":"and tired","chat_id":` + jsonInt(first.ChatID) + `}`
	w = s.do(t, http.MethodPost, "/generate-story", body, cookie)
	var second service.StoryResult
	decode(t, w, &second)
	if second.ChatID != first.ChatID {
		t.Fatalf("continued chat id = %d, want %d", second.ChatID, first.ChatID)
	}

	w = s.do(t, http.MethodGet, "/chats", "", cookie)
	var chats []service.ConversationResponse
	decode(t, w, &chats)
	if len(chats) != 1 || chats[0].Title == nil || *chats[0].Title != "I feel lost at work" {
		t.Fatalf("chats = %s", w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/chats/"+jsonInt(first.ChatID)+"/messages", "", cookie)
	var messages []service.MessageResponse
	decode(t, w, &messages)
	if len(messages) != 4 {
		t.Fatalf("messages = %s", w.Body.String())
	}
	roles := []string{"user", "assistant", "user", "assistant"}
	for i, m := range messages {
		if m.Role != roles[i] {
			t.Errorf("message %d role = %q, want %q", i, m.Role, roles[i])
		}
	}
}

func TestGenerateStoryBadInput(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "alice")

	for _, body := range []string{`{"user_input":"   "}`, `{}`, `not json`} {
		w := s.do(t, http.MethodPost, "/generate-story", body, cookie)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q = %d, want 400", body, w.Code)
			continue
		}
		var resp map[string]string
		decode(t, w, &resp)
		if resp["error"] != "No input provided" {
			t.Errorf("body %q error = %q", body, resp["error"])
		}
	}
}

func TestGenerateStoryModelFailure(t *testing.T) {
	s := newTestServer(t)
	cookie := s.login(t, "alice")
	s.gen.err = errors.New("quota exceeded")

	w := s.do(t, http.MethodPost, "/generate-story", `{"user_input":"hello"}`, cookie)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["error"] != "Failed to generate story. Please try again." {
		t.Errorf("error = %q", resp["error"])
	}
	if strings.Contains(w.Body.String(), "quota") {
		t.Error("provider error leaked to the client")
	}
}

func TestOtherAccountsChatIsNotFound(t *testing.T) {
	s := newTestServer(t)
	alice := s.login(t, "alice")
	bob := s.login(t, "bob")

	w := s.do(t, http.MethodPost, "/generate-story", `{"user_input":"private"}`, alice)
	var res service.StoryResult
	decode(t, w, &res)
	id := jsonInt(res.ChatID)

	for _, target := range []string{"/chats/" + id + "/messages", "/chats/999999/messages", "/chats/abc/messages"} {
		w = s.do(t, http.MethodGet, target, "", bob)
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", target, w.Code)
			continue
		}
		var body map[string]string
		decode(t, w, &body)
		if body["error"] != "Chat not found" {
			t.Errorf("GET %s body = %v", target, body)
		}
	}

	w = s.do(t, http.MethodPost, "/generate-story", `{"user_input":"hijack","chat_id":`+id+`}`, bob)
	if w.Code != http.StatusNotFound {
		t.Errorf("continue other account's chat = %d, want 404", w.Code)
	}

	w = s.do(t, http.MethodGet, "/chats", "", bob)
	var chats []service.ConversationResponse
	decode(t, w, &chats)
	if len(chats) != 0 {
		t.Errorf("bob sees %d chats", len(chats))
	}
}

func TestCORSAllowsCredentials(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/chats", nil)
	req.Header.Set("Origin", "http://127.0.0.1:5500")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:5500" {
		t.Errorf("allow origin = %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("allow credentials = %q", got)
	}
}

func jsonInt(n int64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestStatusKeepsCookieWhenStoreFails(t *testing.T) {
	s := newTestServerWithStore(t, dbtest.New(t), brokenStore{})

	token, _, err := jwt.NewJWTService(testSecret, time.Hour).GenerateSessionToken("sess-1", 1, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	cookie := &http.Cookie{Name: cookieName, Value: token}

	w := s.do(t, http.MethodGet, "/auth/status", "", cookie)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status with failing store = %d: %s", w.Code, w.Body.String())
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "Internal server error" {
		t.Errorf("body = %v", body)
	}
	if strings.Contains(w.Body.String(), "redis") {
		t.Error("store error leaked to the client")
	}
	if findCookie(w, cookieName) != nil {
		t.Error("session cookie must survive a store outage")
	}

	// protected routes answer the same way
	if w := s.do(t, http.MethodGet, "/chats", "", cookie); w.Code != http.StatusInternalServerError {
		t.Errorf("chats with failing store = %d", w.Code)
	}
}
