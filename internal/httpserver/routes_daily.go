// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new   → start (or resume) today's round
//   - POST /daily/guess → submit a guess for today's round
//
// Everyone gets the same date-derived solution. Each player has at most one
// daily round per date; it lives in the session store like any other round.

package httpserver

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/davidcallanan/wordle/internal/daily"
	"github.com/davidcallanan/wordle/internal/game"
)

// dailyServer wraps dependencies for /daily endpoints.
type dailyServer struct {
	srv  *Server
	salt string

	mu    sync.Mutex        // guards date and games
	date  string            // date the games map belongs to
	games map[string]string // player → game ID for date
}

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	dd := &dailyServer{
		srv:   s,
		salt:  s.cfg.DailySalt,
		games: make(map[string]string),
	}
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", dd.handleNew)
		r.Post("/guess", dd.handleGuess)
	})
}

// today returns today's date key and answer.
func (d *dailyServer) today() (date, answer string) {
	date, _, answer = daily.Pick(d.srv.now(), d.salt, d.srv.words.Answers())
	return date, answer
}

// lookup returns the player's game ID for date, dropping entries from earlier dates.
func (d *dailyServer) lookup(date, player string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.date != date {
		d.date = date
		d.games = make(map[string]string)
	}
	id, ok := d.games[player]
	return id, ok
}

func (d *dailyServer) remember(date, player, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.date == date {
		d.games[player] = id
	}
}

// dailyNewRes is returned by /daily/new.
type dailyNewRes struct {
	GameID      string     `json:"gameId"`
	Date        string     `json:"date"`
	WordSize    int        `json:"wordSize"`
	MaxAttempts int        `json:"maxAttempts"`
	State       game.State `json:"state"`
	Played      bool       `json:"played"` // today's round already finished
}

// handleNew creates or resumes the caller's round for the current date.
func (d *dailyServer) handleNew(w http.ResponseWriter, r *http.Request) {
	player := d.srv.player(w, r)
	date, answer := d.today()

	if id, ok := d.lookup(date, player); ok {
		g, err := d.srv.store.Get(r.Context(), id)
		if err != nil {
			// swept after it finished; today's round is spent
			writeJSON(w, http.StatusOK, dailyNewRes{Date: date, Played: true})
			return
		}
		writeJSON(w, http.StatusOK, dailyNewRes{
			GameID: g.ID, Date: date, WordSize: g.Size(), MaxAttempts: g.MaxAttempts,
			State: g.State, Played: g.Terminal(),
		})
		return
	}

	g, err := d.srv.factory.WithSolution(answer)
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("date", date).Msg("daily answer")
		writeError(w, http.StatusInternalServerError, "no_daily_word")
		return
	}
	g.Owner = player
	if err := d.srv.store.Save(r.Context(), g); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("save daily game")
		writeError(w, http.StatusInternalServerError, "save_failed")
		return
	}
	d.remember(date, player, g.ID)

	writeJSON(w, http.StatusOK, dailyNewRes{
		GameID: g.ID, Date: date, WordSize: g.Size(), MaxAttempts: g.MaxAttempts, State: g.State,
	})
}

// dailyGuessReq is the request payload for /daily/guess.
type dailyGuessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

// handleGuess applies a guess to the caller's round for today.
// A game ID from another day (or another player) is a conflict.
func (d *dailyServer) handleGuess(w http.ResponseWriter, r *http.Request) {
	var p dailyGuessReq
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return
	}
	date, _ := d.today()
	if id, ok := d.lookup(date, d.srv.player(w, r)); !ok || id != p.GameID {
		writeError(w, http.StatusConflict, "no_session")
		return
	}
	d.srv.applyGuess(w, r, p.GameID, p.Guess)
}
