package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/willdavis/bananagrams/internal/config"
	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/store"
)

// newTestServer builds a Server with a tiny in-memory dictionary and no
// database, suitable for anonymous (guest) request coverage. Handlers only
// touch s.db when a request carries an authenticated user, which none of
// these requests do.
func newTestServer(t *testing.T) *Server {
	t.Helper()
	dict, err := dictionary.Load(
		[]string{"cat", "cats", "at", "tan", "an", "ta"},
		[]string{"cat", "cats", "at", "tan", "an", "ta"},
	)
	if err != nil {
		t.Fatalf("dictionary.Load: %v", err)
	}
	if err := config.Set(config.Settings{ExtraLettersAllowed: 1, MaxIterations: 2_000_000}); err != nil {
		t.Fatalf("config.Set: %v", err)
	}
	return New(store.NewMemoryStore(), nil, dict)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rdr = bytes.NewReader(b)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("body = %v, want ok:true", body)
	}
}

func TestSolveEndpointSolvesSimpleHand(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/solve", solveReq{Hand: map[string]int{"C": 1, "A": 1, "T": 1}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var res solveRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Solved {
		t.Fatalf("response = %+v, want Solved=true", res)
	}
	if len(res.Board) != 1 || res.Board[0] != "CAT" {
		t.Fatalf("board = %v, want [CAT]", res.Board)
	}
}

func TestSolveEndpointRejectsTooFewLetters(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/solve", solveReq{Hand: map[string]int{"C": 1}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", rec.Code, rec.Body.String())
	}
}

func TestSolveEndpointRejectsBagOverflow(t *testing.T) {
	s := newTestServer(t)
	// The standard bag holds far fewer than 99 Qs.
	rec := doJSON(t, s, http.MethodPost, "/solve", solveReq{Hand: map[string]int{"Q": 99, "A": 1}})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", rec.Code, rec.Body.String())
	}
}

func TestSolveEndpointReportsNoSolution(t *testing.T) {
	s := newTestServer(t)
	// X and Z never appear in this test dictionary's words.
	rec := doJSON(t, s, http.MethodPost, "/solve", solveReq{Hand: map[string]int{"X": 1, "Z": 1}})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var res solveRes
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Solved {
		t.Fatalf("response = %+v, want Solved=false", res)
	}
}

func TestPlayableEndpointListsWords(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/playable?letters=CAT", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	var body struct {
		Words []string `json:"words"`
		Count int      `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	found := false
	for _, w := range body.Words {
		if w == "CAT" {
			found = true
		}
	}
	if !found {
		t.Fatalf("words = %v, want CAT present", body.Words)
	}
}

func TestPlayableEndpointRejectsNonLetters(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/playable?letters=CAT1", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body=%s", rec.Code, rec.Body.String())
	}
}

func TestSettingsGetReflectsCurrentValues(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/settings", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got config.Settings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ExtraLettersAllowed != 1 || got.MaxIterations != 2_000_000 {
		t.Fatalf("settings = %+v, want ExtraLettersAllowed=1, MaxIterations=2000000", got)
	}
}

func TestSettingsPostUpdatesAndRejectsInvalid(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodPost, "/settings", config.Settings{ExtraLettersAllowed: 4, MaxIterations: 5000})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", rec.Code, rec.Body.String())
	}
	if got := config.Get(); got.ExtraLettersAllowed != 4 || got.MaxIterations != 5000 {
		t.Fatalf("config after POST = %+v, want ExtraLettersAllowed=4, MaxIterations=5000", got)
	}

	rec = doJSON(t, s, http.MethodPost, "/settings", config.Settings{ExtraLettersAllowed: -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for invalid settings, body=%s", rec.Code, rec.Body.String())
	}
}

func TestSolveThenResetForcesColdSolveAgain(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/solve", solveReq{Hand: map[string]int{"C": 1, "A": 1, "T": 1}})
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("expected an anonymous session cookie to be set")
	}

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("reset status = %d, want 200", rr.Code)
	}
	var body map[string]bool
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode reset response: %v", err)
	}
	if !body["ok"] {
		t.Fatalf("reset body = %v, want ok:true", body)
	}

	// With the session cleared, a superset hand must be cold-solved rather
	// than replayed from the forgotten CAT board.
	req = httptest.NewRequest(http.MethodPost, "/solve", bytes.NewReader([]byte(`{"hand":{"C":1,"A":1,"T":1,"S":1}}`)))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	var res solveRes
	if err := json.Unmarshal(rr.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode solve response: %v", err)
	}
	if res.Strategy != "cold_solve" {
		t.Fatalf("strategy after reset = %q, want cold_solve", res.Strategy)
	}
}

func TestNotFoundRouteReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doJSON(t, s, http.MethodGet, "/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
