package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/davidcallanan/wordle/assets"
	"github.com/davidcallanan/wordle/internal/auth"
	"github.com/davidcallanan/wordle/internal/config"
	"github.com/davidcallanan/wordle/internal/daily"
	"github.com/davidcallanan/wordle/internal/db"
	"github.com/davidcallanan/wordle/internal/game"
	"github.com/davidcallanan/wordle/internal/store"
	"github.com/davidcallanan/wordle/internal/words"
)

var testAnswers = []string{"allow", "crane", "ghost"}

var testAllowed = []string{"lolly", "plumb", "fizzy", "eerie", "speed"}

type fixture struct {
	ts   *httptest.Server
	cfg  *config.Config
	st   store.Store
	list *words.List
	now  atomic.Int64 // unix nanos served to the handlers
}

func (f *fixture) clock() time.Time { return time.Unix(0, f.now.Load()).UTC() }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	if err := db.Migrate(conn, assets.Migrations()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	list, err := words.New(testAnswers, testAllowed, 5)
	if err != nil {
		t.Fatalf("words: %v", err)
	}
	factory, err := game.NewFactory(list.Answers(), 3, rand.NewPCG(1, 1))
	if err != nil {
		t.Fatalf("factory: %v", err)
	}

	cfg := &config.Config{
		ClientOrigin:     "http://localhost:5173",
		CookieName:       "wordle_token",
		AnonCookieName:   "wordle_anon",
		JWTSecret:        "test-secret",
		JWTTTL:           time.Hour,
		DailySalt:        "salt",
		AllowFixedAnswer: true,
	}
	f := &fixture{
		cfg:  cfg,
		st:   store.NewMemoryStore(),
		list: list,
	}
	f.now.Store(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano())
	logger := zerolog.Nop()
	srv := New(Deps{
		Config:  cfg,
		Store:   f.st,
		Words:   list,
		Factory: factory,
		Users:   auth.NewUsers(conn),
		Logger:  &logger,
		Now:     f.clock,
	})
	f.ts = httptest.NewServer(srv)
	t.Cleanup(f.ts.Close)
	return f
}

// client returns an HTTP client with its own cookie jar, i.e. its own player.
func (f *fixture) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

func (f *fixture) do(t *testing.T, c *http.Client, method, path string, body, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, f.ts.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return res.StatusCode
}

func (f *fixture) newGame(t *testing.T, c *http.Client, answer string) newGameRes {
	t.Helper()
	var res newGameRes
	if code := f.do(t, c, http.MethodPost, "/game/new", newGameReq{Answer: answer}, &res); code != http.StatusOK {
		t.Fatalf("new game status = %d", code)
	}
	return res
}

type errBody struct {
	Error string `json:"error"`
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	var body map[string]bool
	if code := f.do(t, f.client(t), http.MethodGet, "/health", nil, &body); code != http.StatusOK || !body["ok"] {
		t.Fatalf("health = %d %v", code, body)
	}
	var stats map[string]int
	f.do(t, f.client(t), http.MethodGet, "/debug/words", nil, &stats)
	if diff := cmp.Diff(map[string]int{"answers": 3, "allowed": 8, "size": 5}, stats); diff != "" {
		t.Fatalf("debug words mismatch (-want +got):\n%s", diff)
	}
}

func TestGuessFlowWin(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	g := f.newGame(t, c, "allow")
	if g.WordSize != 5 || g.MaxAttempts != 3 || g.GameID == "" {
		t.Fatalf("new game = %+v", g)
	}

	var res guessRes
	if code := f.do(t, c, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "LOLLY"}, &res); code != http.StatusOK {
		t.Fatalf("guess status = %d", code)
	}
	want := guessRes{
		Marks:     []game.Mark{game.MarkPresent, game.MarkPresent, game.MarkExact, game.MarkAbsent, game.MarkAbsent},
		State:     game.StatePlaying,
		Remaining: 2,
		Guesses:   1,
	}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Fatalf("guess mismatch (-want +got):\n%s", diff)
	}

	res = guessRes{}
	f.do(t, c, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "allow"}, &res)
	if res.State != game.StateWon || res.Solution != "allow" || !game.AllExact(res.Marks) {
		t.Fatalf("winning guess = %+v", res)
	}

	var eb errBody
	if code := f.do(t, c, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "crane"}, &eb); code != http.StatusConflict || eb.Error != "game_finished" {
		t.Fatalf("guess after win = %d %s", code, eb.Error)
	}

	var view gameView
	f.do(t, c, http.MethodGet, "/game/"+g.GameID, nil, &view)
	if view.State != game.StateWon || len(view.Rows) != 2 || view.Solution != "allow" || view.Remaining != 1 {
		t.Fatalf("view = %+v", view)
	}
	if diff := cmp.Diff(want.Marks, view.Rows[0].Marks); diff != "" {
		t.Fatalf("replayed marks mismatch (-want +got):\n%s", diff)
	}
}

func TestGuessFlowLose(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	g := f.newGame(t, c, "crane")

	var res guessRes
	for _, w := range []string{"ghost", "plumb", "fizzy"} {
		res = guessRes{}
		if code := f.do(t, c, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: w}, &res); code != http.StatusOK {
			t.Fatalf("guess %s status = %d", w, code)
		}
	}
	if res.State != game.StateLost || res.Remaining != 0 || res.Solution != "crane" {
		t.Fatalf("final guess = %+v", res)
	}

	var view gameView
	f.do(t, c, http.MethodGet, "/game/"+g.GameID, nil, &view)
	if view.State != game.StateLost {
		t.Fatalf("view state = %s", view.State)
	}
}

func TestGuessRejectedBeforeEvaluate(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	g := f.newGame(t, c, "crane")

	for _, w := range []string{"zzzzz", "cran", "cranes"} {
		var eb errBody
		if code := f.do(t, c, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: w}, &eb); code != http.StatusBadRequest || eb.Error != "not_in_word_list" {
			t.Fatalf("guess %q = %d %s", w, code, eb.Error)
		}
	}
	var view gameView
	f.do(t, c, http.MethodGet, "/game/"+g.GameID, nil, &view)
	if view.Remaining != 3 || len(view.Rows) != 0 || view.Solution != "" {
		t.Fatalf("rejected guesses changed the round: %+v", view)
	}
}

func TestGuessOwnership(t *testing.T) {
	f := newFixture(t)
	alice, bob := f.client(t), f.client(t)
	g := f.newGame(t, alice, "crane")

	var eb errBody
	if code := f.do(t, bob, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "ghost"}, &eb); code != http.StatusForbidden {
		t.Fatalf("foreign guess status = %d", code)
	}
	if code := f.do(t, bob, http.MethodGet, "/game/"+g.GameID, nil, nil); code != http.StatusForbidden {
		t.Fatalf("foreign view status = %d", code)
	}
	if code := f.do(t, alice, http.MethodPost, "/game/guess", guessReq{GameID: "missing", Guess: "ghost"}, &eb); code != http.StatusNotFound {
		t.Fatalf("missing game status = %d", code)
	}
}

func TestDaily(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	_, _, answer := daily.Pick(f.clock(), "salt", f.list.Answers())

	var first, second dailyNewRes
	f.do(t, c, http.MethodPost, "/daily/new", nil, &first)
	f.do(t, c, http.MethodPost, "/daily/new", nil, &second)
	if first.GameID == "" || first.GameID != second.GameID || first.Date != "2024-03-01" {
		t.Fatalf("daily new = %+v then %+v", first, second)
	}

	var res guessRes
	if code := f.do(t, c, http.MethodPost, "/daily/guess", dailyGuessReq{GameID: first.GameID, Guess: answer}, &res); code != http.StatusOK {
		t.Fatalf("daily guess status = %d", code)
	}
	if res.State != game.StateWon {
		t.Fatalf("daily guess = %+v", res)
	}

	var again dailyNewRes
	f.do(t, c, http.MethodPost, "/daily/new", nil, &again)
	if !again.Played || again.GameID != first.GameID {
		t.Fatalf("daily new after win = %+v", again)
	}

	// the finished round is swept, but it still counts as played
	if _, err := f.st.Sweep(context.Background(), time.Now()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	var swept dailyNewRes
	f.do(t, c, http.MethodPost, "/daily/new", nil, &swept)
	if !swept.Played || swept.GameID != "" {
		t.Fatalf("daily new after sweep = %+v", swept)
	}

	// a new day means a new round; yesterday's ID is no longer accepted
	f.now.Add(int64(24 * time.Hour))
	var eb errBody
	if code := f.do(t, c, http.MethodPost, "/daily/guess", dailyGuessReq{GameID: first.GameID, Guess: answer}, &eb); code != http.StatusConflict {
		t.Fatalf("stale daily guess status = %d", code)
	}
	var tomorrow dailyNewRes
	f.do(t, c, http.MethodPost, "/daily/new", nil, &tomorrow)
	if tomorrow.GameID == first.GameID || tomorrow.Played || tomorrow.Date != "2024-03-02" {
		t.Fatalf("next day = %+v", tomorrow)
	}
}

func TestAuthFlow(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	if code := f.do(t, c, http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me before signup = %d", code)
	}

	var u auth.User
	if code := f.do(t, c, http.MethodPost, "/auth/signup", credentials{Username: "alice", Password: "password1"}, &u); code != http.StatusOK {
		t.Fatalf("signup status = %d", code)
	}
	var eb errBody
	if code := f.do(t, f.client(t), http.MethodPost, "/auth/signup", credentials{Username: "Alice", Password: "password1"}, &eb); code != http.StatusConflict {
		t.Fatalf("duplicate signup = %d %s", code, eb.Error)
	}

	var me auth.User
	if code := f.do(t, c, http.MethodGet, "/auth/me", nil, &me); code != http.StatusOK || me.ID != u.ID {
		t.Fatalf("me = %d %+v", code, me)
	}

	// rounds started while signed in belong to the account
	g := f.newGame(t, c, "crane")
	stored, err := f.st.Get(context.Background(), g.GameID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Owner != "u:"+u.ID {
		t.Fatalf("owner = %s", stored.Owner)
	}

	// a second device logging in can continue the round
	other := f.client(t)
	if code := f.do(t, other, http.MethodPost, "/auth/login", credentials{Username: "ALICE", Password: "password1"}, nil); code != http.StatusOK {
		t.Fatalf("login status = %d", code)
	}
	if code := f.do(t, other, http.MethodPost, "/game/guess", guessReq{GameID: g.GameID, Guess: "ghost"}, nil); code != http.StatusOK {
		t.Fatalf("guess from second device = %d", code)
	}
	if code := f.do(t, other, http.MethodPost, "/auth/login", credentials{Username: "alice", Password: "wrong-pass"}, nil); code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", code)
	}

	f.do(t, c, http.MethodPost, "/auth/logout", nil, nil)
	if code := f.do(t, c, http.MethodGet, "/auth/me", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("me after logout = %d", code)
	}
}
