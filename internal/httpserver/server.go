// Package httpserver wires the Bananagrams solver core to an HTTP API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/dictionary".
//   - Solve endpoints (optional auth): POST /solve, GET /playable, POST /reset.
//   - Settings endpoints (no auth middleware): GET/POST /settings.
//   - Daily Hand Challenge endpoints (optional auth): mounted under /daily.
//   - Auth + profile/history endpoints (require auth): /auth/*, /stats/me, /history/mine.
//   - JWT + cookie handling, anonymous session cookie, account CRUD via recordstore.
package httpserver

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"github.com/willdavis/bananagrams/internal/alphabet"
	"github.com/willdavis/bananagrams/internal/board"
	"github.com/willdavis/bananagrams/internal/config"
	"github.com/willdavis/bananagrams/internal/dictionary"
	"github.com/willdavis/bananagrams/internal/recordstore"
	"github.com/willdavis/bananagrams/internal/replay"
	"github.com/willdavis/bananagrams/internal/solver"
	"github.com/willdavis/bananagrams/internal/solvererr"
	"github.com/willdavis/bananagrams/internal/store"
)

// Server bundles router, session store, dictionary, and DB handle.
type Server struct {
	r    *chi.Mux
	st   store.Store
	db   *sql.DB
	dict *dictionary.Dictionary
}

// New constructs a Server, installs middleware, and registers routes.
func New(st store.Store, db *sql.DB, dict *dictionary.Dictionary) *Server {
	s := &Server{r: chi.NewRouter(), st: st, db: db, dict: dict}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(jsonContentType)
	s.r.Use(corsFromEnv)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"bananagrams-solver","endpoints":["/health","POST /solve","GET /playable","POST /reset","GET /settings","POST /settings","/daily/*","/auth/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	s.r.Get("/debug/dictionary", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{
			"short": s.dict.Short.Count(),
			"full":  s.dict.Full.Count(),
		})
	})

	// Solve endpoints — OPTIONAL AUTH (guests can solve)
	s.r.With(s.withOptionalAuth()).Post("/solve", s.handleSolve)
	s.r.With(s.withOptionalAuth()).Get("/playable", s.handlePlayable)
	s.r.With(s.withOptionalAuth()).Post("/reset", s.handleReset)

	// Settings — no auth middleware (process-wide, not per-user)
	s.r.Get("/settings", s.handleGetSettings)
	s.r.Post("/settings", s.handleSetSettings)

	// Daily Hand Challenge — OPTIONAL AUTH
	s.mountDaily(s.r.With(s.withOptionalAuth()))

	// Auth + profile/history (require auth)
	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFromEnv enables credentialed CORS for a single origin, read from
// CLIENT_ORIGIN (defaults to a local Vite dev server).
func corsFromEnv(next http.Handler) http.Handler {
	origin := getEnv("CLIENT_ORIGIN", "http://localhost:5173")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ------------------------------- solve ---------------------------------------

type solveReq struct {
	Hand                map[string]int `json:"hand"`
	ExtraLettersAllowed *int           `json:"extraLettersAllowed,omitempty"`
	UseFullDictionary   *bool          `json:"useFullDictionary,omitempty"`
}

type solveRes struct {
	Solved      bool     `json:"solved"`
	Board       []string `json:"board,omitempty"`
	PlacedTiles int      `json:"placedTiles,omitempty"`
	HandTiles   int      `json:"handTiles"`
	Strategy    string   `json:"strategy"`
	ElapsedMs   int64    `json:"elapsedMs"`
}

// handleSolve parses a hand, validates it, and either replays the
// caller's previous board (if one is on record and the new hand is a
// strict superset) or runs a cold parallel solve. The resulting board is
// recorded so a later superset hand can replay from it.
func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req solveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	hand, err := alphabet.ParseHand(req.Hand)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_hand", err.Error())
		return
	}
	if hand.Total() < 2 {
		writeSolverErr(w, solvererr.New(solvererr.TooFewLetters, "hand must hold at least 2 tiles"))
		return
	}
	if ok, letter, available, requested := alphabet.ValidateAgainstBag(hand); !ok {
		writeSolverErr(w, solvererr.New(solvererr.LetterCountExceedsAvailable, alphabet.DescribeExceeded(letter, available, requested)))
		return
	}

	cfg := config.Get()
	if req.ExtraLettersAllowed != nil {
		cfg.ExtraLettersAllowed = *req.ExtraLettersAllowed
	}
	if req.UseFullDictionary != nil {
		cfg.UseFullDictionary = *req.UseFullDictionary
	}
	idx := s.dict.Select(cfg.UseFullDictionary)
	settings := solver.Settings{ExtraLettersAllowed: cfg.ExtraLettersAllowed, MaxIterations: cfg.MaxIterations}

	key := s.sessionKey(w, r)
	start := time.Now()

	var b *board.Board
	strategy := "cold_solve"
	if prev, err := s.st.Get(r.Context(), key); err == nil && hand.IsSuperset(prev.Hand) && hand != prev.Hand {
		res := replay.Replay(prev.Board, prev.Hand, hand, idx, settings)
		b, strategy = res.Board, res.Strategy
	} else {
		b = solver.Dispatch(hand, idx, settings)
	}
	elapsed := time.Since(start)

	if b == nil {
		_ = json.NewEncoder(w).Encode(solveRes{Solved: false, HandTiles: hand.Total(), Strategy: "no_solution", ElapsedMs: elapsed.Milliseconds()})
		return
	}
	_ = s.st.Save(r.Context(), &store.Session{ID: key, Board: b, Hand: hand})

	placed := placedTileCount(b)
	if me := userFromContext(r); me != nil {
		rows, cols := boardDims(b)
		_ = recordstore.InsertSolveRecord(r.Context(), s.db, recordstore.SolveRecord{
			UserID: me.ID, Hand: hand.String(), Rows: rows, Cols: cols, ElapsedMs: elapsed.Milliseconds(),
		})
		if err := recordstore.BumpSolveStats(r.Context(), s.db, me.ID, int(elapsed.Milliseconds())); err != nil {
			log.Warn().Err(err).Msg("bump solve stats")
		}
	}

	_ = json.NewEncoder(w).Encode(solveRes{
		Solved: true, Board: b.ToStrings(), PlacedTiles: placed, HandTiles: hand.Total(),
		Strategy: strategy, ElapsedMs: elapsed.Milliseconds(),
	})
}

func boardDims(b *board.Board) (rows, cols int) {
	if !b.Box.Valid {
		return 0, 0
	}
	return b.Box.MaxRow - b.Box.MinRow + 1, b.Box.MaxCol - b.Box.MinCol + 1
}

func placedTileCount(b *board.Board) int {
	n := 0
	for _, row := range b.ToMatrix() {
		for _, c := range row {
			if c != ' ' {
				n++
			}
		}
	}
	return n
}

// handlePlayable lists every dictionary word playable from a letter run
// given in the "letters" query parameter (e.g. "?letters=AACTB"), subject
// to an optional "extra" override of extra-letters-allowed.
func (s *Server) handlePlayable(w http.ResponseWriter, r *http.Request) {
	letters := strings.ToUpper(r.URL.Query().Get("letters"))
	hand, err := parseLetters(letters)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_letters", err.Error())
		return
	}
	cfg := config.Get()
	extra := cfg.ExtraLettersAllowed
	if v := r.URL.Query().Get("extra"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			extra = n
		}
	}
	idx := s.dict.Select(cfg.UseFullDictionary)
	words := idx.Playable(hand, extra)
	texts := make([]string, len(words))
	for i, word := range words {
		texts[i] = word.Text
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"words": texts, "count": len(texts)})
}

func parseLetters(s string) (alphabet.Hand, error) {
	var h alphabet.Hand
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			return alphabet.Hand{}, solvererr.New(solvererr.InvalidConfiguration, "letters must be A-Z")
		}
		h.Add(alphabet.Code(c))
	}
	return h, nil
}

// handleReset forgets the caller's last solved board, forcing the next
// /solve call to start from an empty board.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	key := s.sessionKey(w, r)
	_ = s.st.Clear(r.Context(), key)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// ------------------------------ settings -------------------------------------

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	_ = json.NewEncoder(w).Encode(config.Get())
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	var cfg config.Settings
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if err := config.Set(cfg); err != nil {
		writeSolverErr(w, err)
		return
	}
	_ = json.NewEncoder(w).Encode(config.Get())
}

// ------------------------------- errors --------------------------------------

func writeError(w http.ResponseWriter, status int, kind, detail string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "detail": detail})
}

// writeSolverErr maps a solvererr.Kind to an HTTP status: caller mistakes
// (too few letters, bag overflow, bad settings) are 400s; NoSolution is a
// normal outcome reported at 200.
func writeSolverErr(w http.ResponseWriter, err error) {
	se, ok := solvererr.As(err)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
		return
	}
	if se.Kind == solvererr.NoSolution {
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(solveRes{Solved: false, Strategy: "no_solution"})
		return
	}
	writeError(w, http.StatusBadRequest, string(se.Kind), se.Detail)
}

// ------------------------------- AUTH --------------------------------------

type signupReq struct{ Username, Password string }
type loginReq struct{ Username, Password string }

// authUser is placed into request context by auth middleware.
type authUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// mountAuthRoutes registers authentication + gated routes.
func (s *Server) mountAuthRoutes() {
	s.r.Post("/auth/signup", s.handleSignup)
	s.r.Post("/auth/login", s.handleLogin)
	s.r.Post("/auth/logout", s.handleLogout)

	s.r.With(s.requireAuth()).Get("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		me := userFromContext(r)
		if me == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		_ = json.NewEncoder(w).Encode(me)
	})

	s.r.With(s.requireAuth()).Get("/stats/me", func(w http.ResponseWriter, r *http.Request) {
		me := userFromContext(r)
		if me == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		u, err := recordstore.FindUserByID(r.Context(), s.db, me.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "not_found", err.Error())
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            u.ID,
			"solvesRun":     u.SolvesRun,
			"bestElapsedMs": u.BestElapsedMs,
			"dailyStreak":   u.DailyStreak,
		})
	})

	s.r.With(s.requireAuth()).Get("/history/mine", func(w http.ResponseWriter, r *http.Request) {
		me := userFromContext(r)
		if me == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "")
			return
		}
		limit := 20
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}
		rows, err := recordstore.ListSolveHistory(r.Context(), s.db, me.ID, limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "db_error", err.Error())
			return
		}
		_ = json.NewEncoder(w).Encode(rows)
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body signupReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	username := normalizeUsername(body.Username)
	if err := validateSignup(username, body.Password); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_signup", err.Error())
		return
	}
	u, err := recordstore.CreateUser(r.Context(), s.db, genID(), username, body.Password)
	if err != nil {
		if err == recordstore.ErrUsernameTaken {
			writeError(w, http.StatusConflict, "username_taken", "")
			return
		}
		writeError(w, http.StatusInternalServerError, "create_failed", err.Error())
		return
	}
	tok, exp, err := signJWT(u.ID, u.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed", err.Error())
		return
	}
	setAuthCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username, "createdAt": u.CreatedAt})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	u, err := recordstore.FindUserByUsername(r.Context(), s.db, strings.TrimSpace(body.Username))
	if err != nil || !recordstore.CheckPassword(u.PasswordHash, body.Password) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "")
		return
	}
	tok, exp, err := signJWT(u.ID, u.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign_failed", err.Error())
		return
	}
	setAuthCookie(w, tok, exp)
	_ = json.NewEncoder(w).Encode(map[string]any{"id": u.ID, "username": u.Username})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	clearAuthCookie(w)
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

func normalizeUsername(u string) string { return strings.TrimSpace(u) }

func validateSignup(u, p string) error {
	if len(u) < 3 || len(u) > 24 {
		return solvererr.New(solvererr.InvalidConfiguration, "username must be 3-24 chars")
	}
	for _, r := range u {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return solvererr.New(solvererr.InvalidConfiguration, "username: letters, numbers, underscore only")
		}
	}
	if len(p) < 8 || len(p) > 100 {
		return solvererr.New(solvererr.InvalidConfiguration, "password must be 8-100 chars")
	}
	return nil
}

// --------------------------- optional / required auth ------------------------

// withOptionalAuth decorates requests with user context if a valid JWT is
// present. It never 401s; used for routes where guests are allowed.
func (s *Server) withOptionalAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tok := bearerOrCookie(r); tok != "" {
				if id, username, ok := parseJWT(tok); ok {
					if _, err := recordstore.FindUserByID(r.Context(), s.db, id); err == nil {
						ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Username: username})
						r = r.WithContext(ctx)
					}
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requireAuth enforces a valid JWT and injects authUser into request context.
func (s *Server) requireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := bearerOrCookie(r)
			if tok == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "")
				return
			}
			id, username, ok := parseJWT(tok)
			if !ok {
				writeError(w, http.StatusUnauthorized, "invalid_token", "")
				return
			}
			if _, err := recordstore.FindUserByID(r.Context(), s.db, id); err != nil {
				writeError(w, http.StatusUnauthorized, "invalid_token", "")
				return
			}
			ctx := context.WithValue(r.Context(), ctxUserKey{}, &authUser{ID: id, Username: username})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type ctxUserKey struct{}

func userFromContext(r *http.Request) *authUser {
	u, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return u
}

func parseJWT(tok string) (id, username string, ok bool) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(getEnv("JWT_SECRET", "dev_secret_change_me")), nil
	})
	if err != nil || !t.Valid {
		return "", "", false
	}
	id, _ = claims["id"].(string)
	username, _ = claims["username"].(string)
	if id == "" || username == "" {
		return "", "", false
	}
	return id, username, true
}

// ------------------------------ JWT & cookies --------------------------------

func signJWT(id, username string) (string, time.Time, error) {
	secret := getEnv("JWT_SECRET", "dev_secret_change_me")
	days := 14
	if v := os.Getenv("JWT_EXPIRES_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			days = n
		}
	}
	exp := time.Now().Add(time.Duration(days) * 24 * time.Hour)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": id, "username": username, "exp": exp.Unix(), "iat": time.Now().Unix(),
	})
	ss, err := t.SignedString([]byte(secret))
	return ss, exp, err
}

func cookieSameSite() (secure bool, sameSite http.SameSite) {
	secure = os.Getenv("NODE_ENV") == "production"
	if secure {
		return secure, http.SameSiteNoneMode
	}
	return secure, http.SameSiteLaxMode
}

func setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure, sameSite := cookieSameSite()
	http.SetCookie(w, &http.Cookie{
		Name: getEnv("COOKIE_NAME", "bananagrams_token"), Value: token, Path: "/",
		HttpOnly: true, Secure: secure, SameSite: sameSite, Expires: exp,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	secure, sameSite := cookieSameSite()
	http.SetCookie(w, &http.Cookie{
		Name: getEnv("COOKIE_NAME", "bananagrams_token"), Value: "", Path: "/",
		HttpOnly: true, Secure: secure, SameSite: sameSite, MaxAge: -1,
	})
}

func bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(getEnv("COOKIE_NAME", "bananagrams_token")); err == nil {
		return c.Value
	}
	return ""
}

// ------------------------- anonymous session identity -------------------------

const anonCookieName = "bananagrams_anon"

// sessionKey returns the caller's store.Session key: the authenticated
// user ID if signed in, otherwise a stable anonymous cookie ID.
func (s *Server) sessionKey(w http.ResponseWriter, r *http.Request) string {
	if me := userFromContext(r); me != nil {
		return "u:" + me.ID
	}
	return "a:" + s.ensureAnonID(w, r)
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(anonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := genID()
	secure, sameSite := cookieSameSite()
	http.SetCookie(w, &http.Cookie{
		Name: anonCookieName, Value: id, Path: "/", HttpOnly: true,
		Secure: secure, SameSite: sameSite, Expires: time.Now().Add(180 * 24 * time.Hour),
	})
	return id
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	out := base64.URLEncoding.WithPadding(base64.NoPadding).EncodeToString(b[:])
	if len(out) > 22 {
		return out[:22]
	}
	return out
}

// ---------------------------- small util --------------------------------

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
