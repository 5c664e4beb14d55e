package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ooker777/breadcrumbs/internal/indexservice"
	"github.com/ooker777/breadcrumbs/internal/testutil"
)

var family = map[string]string{
	"Root.md":     "# Root\n",
	"Kid.md":      "---\nup: \"[[Root]]\"\naliases: [Junior]\n---\nThe kid.\n",
	"Grandkid.md": "parent:: [[Kid]]\n",
}

// testEnv indexes the family vault and returns its router.
func testEnv(t *testing.T, authToken string) http.Handler {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	t.Helper()
	_, db := testutil.SyncedVault(t, family)
	svc := indexservice.New(db, 0, testutil.Logger())
	return NewRouter(svc, db, indexservice.Options{}, authEnabled, token, sseHandler)
}

func get(t *testing.T, router http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func TestLocalIndex(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/index/local?note=Root")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	res := decode[IndexResponse](t, w)
	if want := "- Grandkid\n  - Kid\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if res.BuildID == "" || res.Note != "Root" || res.Paths != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestLocalIndex_Options(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/index/local?note=%5B%5BRoot%5D%5D&wikilinks=true&aliases=1")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	res := decode[IndexResponse](t, w)
	if want := "- [[Grandkid]]\n  - [[Kid]] (Junior)\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
}

func TestLocalIndex_TextFormat(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/index/local?note=Root&format=text")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.HasPrefix(w.Header().Get("Content-Type"), "text/markdown") {
		t.Errorf("content type = %q", w.Header().Get("Content-Type"))
	}
	if w.Header().Get("X-Build-Id") == "" {
		t.Error("missing build id header")
	}
	if w.Body.String() != "- Grandkid\n  - Kid\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestLocalIndex_BadRequests(t *testing.T) {
	router := testEnv(t, "")

	for _, target := range []string{
		"/index/local",
		"/index/local?note=Root&wikilinks=maybe",
		"/index/local?note=Root&scope=sideways",
	} {
		if w := get(t, router, target); w.Code != http.StatusBadRequest {
			t.Errorf("%s = %d, want 400", target, w.Code)
		}
	}
}

func TestLocalIndex_UnknownNoteIsEmpty(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/index/local?note=Nobody")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if res := decode[IndexResponse](t, w); res.Text != "" {
		t.Errorf("text = %q, want empty", res.Text)
	}
}

func TestGlobalIndex(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/index/global?scope=global")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	res := decode[IndexResponse](t, w)
	if want := "Root\n- Grandkid\n  - Kid\n\n"; res.Text != want {
		t.Errorf("text = %q, want %q", res.Text, want)
	}
	if len(res.Sinks) != 1 || res.Sinks[0] != "Root" {
		t.Errorf("sinks = %v", res.Sinks)
	}
}

func TestParseIndex(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/index/parse", strings.NewReader("- A\n  - B\n\n"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, `{"prefix":"","label":"A"},{"prefix":"  ","label":"B"}`) {
		t.Errorf("body = %s", got)
	}

	req = httptest.NewRequest(http.MethodPost, "/index/parse?flat=true", strings.NewReader("  - B\n"))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	resp := decode[ParseResponse](t, w)
	if len(resp.Pairs) != 1 || resp.Pairs[0].Prefix != "" || resp.Pairs[0].Label != "B" {
		t.Errorf("flat pairs = %+v", resp.Pairs)
	}
}

func TestParseIndex_EmptyBody(t *testing.T) {
	router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/index/parse", strings.NewReader(""))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"pairs":[]`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestHierarchyEndpoint(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/hierarchy")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	resp := decode[HierarchyResponse](t, w)
	if len(resp.Nodes) != 3 {
		t.Errorf("nodes = %v", resp.Nodes)
	}
	// Two declared up links and their implied downs.
	if len(resp.Edges) != 4 {
		t.Errorf("edges = %+v, want 4", resp.Edges)
	}
}

func TestResolveNote(t *testing.T) {
	router := testEnv(t, "")

	w := get(t, router, "/notes/resolve?link=Kid")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	n := decode[NoteResponse](t, w)
	if n.Path != "Kid.md" || len(n.Aliases) != 1 || n.Aliases[0] != "Junior" {
		t.Errorf("note = %+v", n)
	}

	if w := get(t, router, "/notes/resolve?link=Ghost"); w.Code != http.StatusNotFound {
		t.Errorf("missing note = %d, want 404", w.Code)
	}
	if w := get(t, router, "/notes/resolve"); w.Code != http.StatusBadRequest {
		t.Errorf("no link = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/index/global", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	router := testEnv(t, "secret123")

	if w := get(t, router, "/index/global"); w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/index/global", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	router := testEnv(t, "")

	if w := get(t, router, "/index/global"); w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// blockingSSE writes headers and blocks until the request is cancelled.
var blockingSSE = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	router := testEnvWithSSE(t, true, "secret", blockingSSE)

	if w := get(t, router, "/events"); w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	router := testEnvWithSSE(t, true, "tok", blockingSSE)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("SSE with valid token = %d, want 200", w.Code)
	}
}
