// internal/httpserver/server.go
//
// HTTP server wiring for the Wordle backend.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs, access log).
//   - Public endpoints: "/", "/health", "/debug/words".
//   - Game endpoints (optional auth): POST /game/new, POST /game/guess, GET /game/{id}.
//   - Daily endpoints (optional auth): mounted under /daily.
//   - Auth endpoints: /auth/*.
//
// Notes:
//   - Every round belongs to a player: "u:<id>" when signed in, else "a:<id>" from an
//     anonymous cookie. Guessing on someone else's round is forbidden.
//   - Guesses are checked against the allowed list here, before the engine sees them.
//   - Evaluate runs inside Store.Update, which serializes guesses on one round.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/rs/zerolog/log"

	"github.com/davidcallanan/wordle/internal/auth"
	"github.com/davidcallanan/wordle/internal/config"
	"github.com/davidcallanan/wordle/internal/game"
	"github.com/davidcallanan/wordle/internal/store"
	"github.com/davidcallanan/wordle/internal/words"
)

// Deps are the collaborators a Server needs.
type Deps struct {
	Config  *config.Config
	Store   store.Store
	Words   *words.List
	Factory *game.Factory
	Users   *auth.Users
	Logger  *zerolog.Logger  // defaults to the global logger
	Now     func() time.Time // defaults to time.Now
}

// Server bundles router and dependencies.
type Server struct {
	r       *chi.Mux
	cfg     *config.Config
	store   store.Store
	words   *words.List
	factory *game.Factory
	users   *auth.Users
	tokens  auth.Tokens
	now     func() time.Time
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps) *Server {
	s := &Server{
		r:       chi.NewRouter(),
		cfg:     d.Config,
		store:   d.Store,
		words:   d.Words,
		factory: d.Factory,
		users:   d.Users,
		tokens:  auth.Tokens{Secret: []byte(d.Config.JWTSecret), TTL: d.Config.JWTTTL},
		now:     d.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	logger := log.Logger
	if d.Logger != nil {
		logger = *d.Logger
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(hlog.NewHandler(logger))         // request-scoped logger
	s.r.Use(accessLog)                       // one line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(corsFor(s.cfg.ClientOrigin))     // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"service":   "wordle-go",
			"endpoints": []string{"/health", "POST /game/new", "POST /game/guess", "GET /game/{id}", "/daily/*", "/auth/*"},
		})
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := s.words.Stats()
		writeJSON(w, http.StatusOK, map[string]int{"answers": a, "allowed": g, "size": s.words.Size()})
	})

	// Game endpoints: optional auth, guests can play
	s.r.Group(func(r chi.Router) {
		r.Use(s.withOptionalAuth())
		r.Post("/game/new", s.handleNewGame)
		r.Post("/game/guess", s.handleGuess)
		r.Get("/game/{id}", s.handleGetGame)
		s.mountDaily(r)
	})

	s.mountAuthRoutes()

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})

	return s
}

// ServeHTTP makes Server an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.r.ServeHTTP(w, r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// corsFor enables credentialed CORS for a single origin.
func corsFor(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
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
}

// accessLog writes one zerolog line per request.
var accessLog = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("req_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
})

// ------------------------------ GAME ---------------------------------------

// newGameReq/Res payloads for POST /game/new.
type newGameReq struct {
	Answer string `json:"answer"` // fixed answer; honoured only with ALLOW_FIXED_ANSWER
}
type newGameRes struct {
	GameID      string `json:"gameId"`
	WordSize    int    `json:"wordSize"`
	MaxAttempts int    `json:"maxAttempts"`
}

// handleNewGame starts a round with a random solution and stores it for the caller.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req) // empty body is fine

	var (
		g   *game.Session
		err error
	)
	if req.Answer != "" && s.cfg.AllowFixedAnswer {
		g, err = s.factory.WithSolution(req.Answer)
	} else {
		g, err = s.factory.NewSession()
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_answer")
		return
	}
	g.Owner = s.player(w, r)
	if err := s.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	hlog.FromRequest(r).Debug().Str("gameId", g.ID).Str("owner", g.Owner).Msg("game started")
	writeJSON(w, http.StatusOK, newGameRes{GameID: g.ID, WordSize: g.Size(), MaxAttempts: g.MaxAttempts})
}

// guessReq/Res payloads for POST /game/guess.
type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}
type guessRes struct {
	Marks     []game.Mark `json:"marks"`
	State     game.State  `json:"state"` // "playing" | "won" | "lost"
	Remaining int         `json:"remaining"`
	Guesses   int         `json:"guesses"`
	Solution  string      `json:"solution,omitempty"` // revealed once the round is over
}

// handleGuess validates a guess and applies it to the caller's round.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	s.applyGuess(w, r, req.GameID, req.Guess)
}

var errForbidden = errors.New("forbidden")

// applyGuess is shared by /game/guess and /daily/guess.
func (s *Server) applyGuess(w http.ResponseWriter, r *http.Request, gameID, guess string) {
	guess = strings.ToLower(strings.TrimSpace(guess))
	if !s.words.IsAllowed(guess) {
		writeError(w, http.StatusBadRequest, "not_in_word_list")
		return
	}

	owner := s.player(w, r)
	var marks []game.Mark
	g, err := s.store.Update(r.Context(), gameID, func(g *game.Session) error {
		if g.Owner != owner {
			return errForbidden
		}
		var err error
		marks, _, err = g.Evaluate(guess)
		return err
	})
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found")
		return
	case errors.Is(err, errForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
		return
	case errors.Is(err, game.ErrSessionFinished):
		writeError(w, http.StatusConflict, "game_finished")
		return
	case errors.Is(err, game.ErrNoAttemptsRemaining):
		writeError(w, http.StatusConflict, "no_attempts_remaining")
		return
	case errors.Is(err, game.ErrLengthMismatch):
		writeError(w, http.StatusBadRequest, "invalid_guess")
		return
	default:
		hlog.FromRequest(r).Error().Err(err).Str("gameId", gameID).Msg("apply guess")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}

	res := guessRes{Marks: marks, State: g.State, Remaining: g.Remaining, Guesses: len(g.Guesses)}
	if g.Terminal() {
		res.Solution = g.Solution
		hlog.FromRequest(r).Info().Str("gameId", g.ID).Str("state", string(g.State)).
			Int("guesses", len(g.Guesses)).Msg("game finished")
	}
	writeJSON(w, http.StatusOK, res)
}

// gameView is the GET /game/{id} payload.
type gameView struct {
	GameID      string     `json:"gameId"`
	State       game.State `json:"state"`
	WordSize    int        `json:"wordSize"`
	MaxAttempts int        `json:"maxAttempts"`
	Remaining   int        `json:"remaining"`
	Rows        []guessRow `json:"rows"`
	Solution    string     `json:"solution,omitempty"`
}
type guessRow struct {
	Guess string      `json:"guess"`
	Marks []game.Mark `json:"marks"`
}

// handleGetGame replays the caller's round so a client can redraw the board.
func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	g, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	if g.Owner != s.player(w, r) {
		writeError(w, http.StatusForbidden, "forbidden")
		return
	}
	writeJSON(w, http.StatusOK, viewOf(g))
}

func viewOf(g *game.Session) gameView {
	v := gameView{
		GameID:      g.ID,
		State:       g.State,
		WordSize:    g.Size(),
		MaxAttempts: g.MaxAttempts,
		Remaining:   g.Remaining,
		Rows:        make([]guessRow, 0, len(g.Guesses)),
	}
	for _, guess := range g.Guesses {
		v.Rows = append(v.Rows, guessRow{Guess: guess, Marks: game.Score(g.Solution, guess)})
	}
	if g.Terminal() {
		v.Solution = g.Solution
	}
	return v
}

// --------------------------- identity --------------------------------------

// ctxUserKey is the context key type for storing *auth.User.
type ctxUserKey struct{}

func userFrom(ctx context.Context) *auth.User {
	u, _ := ctx.Value(ctxUserKey{}).(*auth.User)
	return u
}

// player returns the owner key for the caller, minting an anonymous cookie if needed.
func (s *Server) player(w http.ResponseWriter, r *http.Request) string {
	if u := userFrom(r.Context()); u != nil {
		return "u:" + u.ID
	}
	return "a:" + s.ensureAnonID(w, r)
}

// ensureAnonID returns an existing anon cookie or sets a new one.
func (s *Server) ensureAnonID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.cfg.AnonCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	id := auth.GenID()
	http.SetCookie(w, s.cookie(s.cfg.AnonCookieName, id, s.now().Add(180*24*time.Hour)))
	// later calls within the same request must see the same identity
	r.AddCookie(&http.Cookie{Name: s.cfg.AnonCookieName, Value: id})
	return id
}

// ------------------------------- small util --------------------------------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
