package httpserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Caliovent/korean-party-functions/internal/catalog"
	"github.com/Caliovent/korean-party-functions/internal/daily"
	"github.com/Caliovent/korean-party-functions/internal/game"
	"github.com/Caliovent/korean-party-functions/internal/store"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	srv      *Server
	db       *sql.DB
	profiles store.Store
}

func newTestEnv(t *testing.T, cat catalog.Provider) *testEnv {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := store.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if cat == nil {
		c, err := catalog.Default()
		if err != nil {
			t.Fatalf("catalog: %v", err)
		}
		cat = c
	}

	profiles := store.NewSQLiteStore(db)
	seed := uint64(0)
	srv := New(Options{
		JWTSecret:    "test_secret",
		DailySalt:    "test_salt",
		StartingMana: 100,
	}, Deps{
		Catalog:  cat,
		Profiles: profiles,
		Accounts: store.NewAccounts(db),
		Daily:    daily.NewStore(db),
		Rand: func() game.Rand {
			seed++
			return rand.New(rand.NewPCG(seed, 2))
		},
		Now: func() time.Time { return testNow },
	})
	return &testEnv{srv: srv, db: db, profiles: profiles}
}

func (e *testEnv) do(t *testing.T, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

// signup registers a player and returns its id and auth cookie.
func (e *testEnv) signup(t *testing.T, username string) (string, *http.Cookie) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", `{"username":"`+username+`","password":"password123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201, got %d: %s", rec.Code, rec.Body)
	}
	var p struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatalf("signup body: %v", err)
	}
	for _, c := range rec.Result().Cookies() {
		if c.Name == "kp_token" {
			return p.ID, c
		}
	}
	t.Fatal("signup: no auth cookie")
	return "", nil
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Errorf("Unexpected health response %d %s", rec.Code, rec.Body)
	}
}

func TestDebugCatalog(t *testing.T) {
	e := newTestEnv(t, nil)
	rec := e.do(t, http.MethodGet, "/debug/catalog", "")
	var got map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["market"] != 8 || got["food"] != 9 || got["poem"] != 2 || got["color"] != 8 {
		t.Errorf("Unexpected catalog stats %v", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	e.do(t, http.MethodPost, "/games/color/round", "")
	rec := e.do(t, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "kp_rounds_generated_total") {
		t.Errorf("Expected round counter in /metrics, got %d", rec.Code)
	}
}

func TestRoundEndpoints(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodPost, "/games/market/round", "")
	var mr game.MarketRound
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &mr) != nil {
		t.Fatalf("market: %d %s", rec.Code, rec.Body)
	}
	if len(mr.DisplayItems) < 4 || mr.CorrectItem.ID == "" {
		t.Errorf("Unexpected market round %+v", mr)
	}

	rec = e.do(t, http.MethodPost, "/games/food/round", `{"mode":"recognition"}`)
	var fr game.FoodRound
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &fr) != nil {
		t.Fatalf("food: %d %s", rec.Code, rec.Body)
	}
	if fr.Question.ID != fr.CorrectAnswerID {
		t.Errorf("Unexpected food round %+v", fr)
	}

	rec = e.do(t, http.MethodPost, "/games/poem/round", "")
	if rec.Code != http.StatusOK || strings.Contains(rec.Body.String(), "solutions") {
		t.Errorf("poem: expected round without solutions, got %d %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodPost, "/games/color/round", "")
	var cr game.ColorRound
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &cr) != nil {
		t.Fatalf("color: %d %s", rec.Code, rec.Body)
	}
	if len(cr.Palette) < 3 || cr.TargetHangeul == "" {
		t.Errorf("Unexpected color round %+v", cr)
	}
	if strings.Contains(rec.Body.String(), `"hangeul"`) {
		t.Error("Expected palette swatches without hangeul")
	}
}

func TestRoundErrors(t *testing.T) {
	small, err := catalog.New(nil, []catalog.FoodItem{{ID: "a"}, {ID: "b"}}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	e := newTestEnv(t, small)

	tests := []struct {
		path, body string
		want       int
		code       string
	}{
		{"/games/chess/round", "", http.StatusNotFound, "unknown_game"},
		{"/games/food/round", `{"mode":"listening"}`, http.StatusBadRequest, "unsupported_mode"},
		{"/games/food/round", "", http.StatusServiceUnavailable, "insufficient_content"},
		{"/games/market/round", "", http.StatusServiceUnavailable, "insufficient_content"},
		{"/games/food/round", `{"mode":`, http.StatusBadRequest, "bad_json"},
	}
	for _, tt := range tests {
		rec := e.do(t, http.MethodPost, tt.path, tt.body)
		if rec.Code != tt.want || !strings.Contains(rec.Body.String(), `"error":"`+tt.code+`"`) {
			t.Errorf("%s %s: expected %d %s, got %d %s", tt.path, tt.body, tt.want, tt.code, rec.Code, rec.Body)
		}
	}
}

func TestDailyRoundIsStable(t *testing.T) {
	e := newTestEnv(t, nil)

	var a, b game.FoodRound
	_ = json.Unmarshal(e.do(t, http.MethodPost, "/games/food/round?daily=1", "").Body.Bytes(), &a)
	_ = json.Unmarshal(e.do(t, http.MethodPost, "/games/food/round?daily=1", "").Body.Bytes(), &b)
	if a.CorrectAnswerID == "" || a.CorrectAnswerID != b.CorrectAnswerID || len(a.Options) != len(b.Options) {
		t.Errorf("Expected identical daily rounds, got %+v and %+v", a, b)
	}
	for i := range a.Options {
		if a.Options[i].ID != b.Options[i].ID {
			t.Fatalf("Expected identical option order, got %+v and %+v", a.Options, b.Options)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	e := newTestEnv(t, nil)
	id, cookie := e.signup(t, "minji")

	rec := e.do(t, http.MethodGet, "/auth/me", "", cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), id) {
		t.Errorf("me: %d %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodPost, "/auth/signup", `{"username":"MINJI","password":"password123"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("Expected 409 for taken username, got %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/auth/login", `{"username":"minji","password":"nope-nope"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad password, got %d", rec.Code)
	}
	rec = e.do(t, http.MethodPost, "/auth/login", `{"username":"minji","password":"password123"}`)
	if rec.Code != http.StatusOK || len(rec.Result().Cookies()) == 0 {
		t.Errorf("login: %d %s", rec.Code, rec.Body)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	tok, _, _ := e.srv.signJWT(id, "minji")
	req.Header.Set("Authorization", "Bearer "+tok)
	rr := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("Expected bearer auth to work, got %d", rr.Code)
	}

	rec = e.do(t, http.MethodGet, "/auth/me", "", &http.Cookie{Name: "kp_token", Value: "garbage"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad token, got %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/profile/me", "", cookie)
	var p game.Profile
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &p) != nil {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body)
	}
	if p.Mana == nil || !p.Mana.Equal(decimal.NewFromInt(100)) || p.XP == nil {
		t.Errorf("Expected starting profile, got %+v", p)
	}
	if !strings.Contains(rec.Body.String(), `"level":{"level":1,"xpIntoLevel":0,"xpForNextLevel":100}`) {
		t.Errorf("Expected level 1 on a fresh profile, got %s", rec.Body)
	}
}

func TestProfileLevelFollowsXP(t *testing.T) {
	e := newTestEnv(t, nil)
	_, cookie := e.signup(t, "climber")

	// perfect instant food session: score 1000, xp 200
	rec := e.do(t, http.MethodPost, "/games/food/results", `{"correctAnswers":5,"totalQuestions":5,"timeTaken":0}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("food results: %d %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodGet, "/profile/me", "", cookie)
	var got struct {
		XP    int64      `json:"xp"`
		Level game.Level `json:"level"`
	}
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &got) != nil {
		t.Fatalf("profile: %d %s", rec.Code, rec.Body)
	}
	want := game.Level{Level: 2, XPIntoLevel: 100, XPForNext: 282}
	if got.XP != 200 || got.Level != want {
		t.Errorf("Expected xp 200 at %+v, got %+v", want, got)
	}
}

func TestResultsRequireAuth(t *testing.T) {
	e := newTestEnv(t, nil)
	for _, g := range game.Games {
		rec := e.do(t, http.MethodPost, "/games/"+g+"/results", `{}`)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", g, rec.Code)
		}
	}
}

func TestMarketResults(t *testing.T) {
	e := newTestEnv(t, nil)
	id, cookie := e.signup(t, "seller")

	rec := e.do(t, http.MethodPost, "/games/market/results", `{"score":1500,"itemsSold":8}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("market results: %d %s", rec.Code, rec.Body)
	}
	var p game.Profile
	if err := json.Unmarshal(rec.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if !p.Mana.Equal(decimal.NewFromInt(175)) || !p.HasAchievement(game.AchFirstSale) {
		t.Errorf("Unexpected profile %+v", p)
	}

	stored, err := e.profiles.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Stat(game.StatItemsSoldAtMarket) != 8 {
		t.Errorf("Expected persisted itemsSoldAtMarket 8, got %d", stored.Stat(game.StatItemsSoldAtMarket))
	}

	rec = e.do(t, http.MethodPost, "/games/market/results", `{"score":10,"itemsSold":-3}`, cookie)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_results") {
		t.Errorf("Expected 400 invalid_results, got %d %s", rec.Code, rec.Body)
	}
}

func TestMarketResults_InvalidProfile(t *testing.T) {
	e := newTestEnv(t, nil)
	id, cookie := e.signup(t, "broken")

	// colour chaos can leave fractional mana behind
	p := game.NewProfile(0)
	frac := decimal.RequireFromString("0.5")
	p.Mana = &frac
	if err := e.profiles.Save(context.Background(), id, p); err != nil {
		t.Fatal(err)
	}

	rec := e.do(t, http.MethodPost, "/games/market/results", `{"score":100,"itemsSold":1}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d %s", rec.Code, rec.Body)
	}
}

func TestMarketResults_AfterFractionalColorMana(t *testing.T) {
	e := newTestEnv(t, nil)
	id, cookie := e.signup(t, "painter")

	rec := e.do(t, http.MethodPost, "/games/color/results", `{"score":5,"highestCombo":1}`, cookie)
	var p game.Profile
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &p) != nil {
		t.Fatalf("color results: %d %s", rec.Code, rec.Body)
	}
	if !p.Mana.Equal(decimal.RequireFromString("100.5")) {
		t.Fatalf("Expected mana 100.5, got %s", p.Mana)
	}

	rec = e.do(t, http.MethodPost, "/games/market/results", `{"score":100,"itemsSold":1}`, cookie)
	if rec.Code != http.StatusUnprocessableEntity || !strings.Contains(rec.Body.String(), `"error":"invalid_profile"`) {
		t.Errorf("Expected 422 invalid_profile, got %d %s", rec.Code, rec.Body)
	}

	stored, err := e.profiles.Get(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.Mana.Equal(decimal.RequireFromString("100.5")) || stored.Stat(game.StatItemsSoldAtMarket) != 0 {
		t.Errorf("Expected rejected market session to leave profile as is, got %+v", stored)
	}
}

func TestFoodResults_Rejected(t *testing.T) {
	e := newTestEnv(t, nil)
	_, cookie := e.signup(t, "cheater")

	for _, body := range []string{
		`{"correctAnswers":11,"totalQuestions":10,"timeTaken":1}`,
		`{"correctAnswers":1,"totalQuestions":1,"timeTaken":-1}`,
	} {
		rec := e.do(t, http.MethodPost, "/games/food/results", body, cookie)
		if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_results") {
			t.Errorf("%s: expected 400 invalid_results, got %d %s", body, rec.Code, rec.Body)
		}
	}
}

func TestFoodItemLookup(t *testing.T) {
	e := newTestEnv(t, nil)

	rec := e.do(t, http.MethodGet, "/games/food/items/food_007", "")
	var item catalog.FoodItem
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &item) != nil {
		t.Fatalf("food item: %d %s", rec.Code, rec.Body)
	}
	if item.NameFR != "Eau" || item.AudioURL == "" {
		t.Errorf("Unexpected item %+v", item)
	}

	rec = e.do(t, http.MethodGet, "/games/food/items/food_999", "")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "food_item_not_found") {
		t.Errorf("Expected 404 food_item_not_found, got %d %s", rec.Code, rec.Body)
	}
}

func TestDailyRound_AlreadyPlayed(t *testing.T) {
	e := newTestEnv(t, nil)
	_, cookie := e.signup(t, "daily")

	rec := e.do(t, http.MethodPost, "/games/color/round?daily=1", "", cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily round: %d %s", rec.Code, rec.Body)
	}
	rec = e.do(t, http.MethodPost, "/games/color/results?daily=1", `{"score":300,"highestCombo":2}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("daily results: %d %s", rec.Code, rec.Body)
	}

	rec = e.do(t, http.MethodPost, "/games/color/round?daily=1", "", cookie)
	if rec.Code != http.StatusConflict || !strings.Contains(rec.Body.String(), `"error":"already_played"`) {
		t.Errorf("Expected 409 already_played, got %d %s", rec.Code, rec.Body)
	}

	// other games, practice rounds and anonymous daily rounds are unaffected
	for _, tt := range []struct {
		path   string
		cookie []*http.Cookie
	}{
		{"/games/food/round?daily=1", []*http.Cookie{cookie}},
		{"/games/color/round", []*http.Cookie{cookie}},
		{"/games/color/round?daily=1", nil},
	} {
		if rec := e.do(t, http.MethodPost, tt.path, "", tt.cookie...); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d %s", tt.path, rec.Code, rec.Body)
		}
	}
}

func TestFoodResults(t *testing.T) {
	e := newTestEnv(t, nil)
	_, cookie := e.signup(t, "eater")

	rec := e.do(t, http.MethodPost, "/games/food/results", `{"correctAnswers":8,"totalQuestions":10,"timeTaken":45}`, cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("food results: %d %s", rec.Code, rec.Body)
	}
	var sub game.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatal(err)
	}
	if sub.Score != 710 || !sub.Profile.Mana.Equal(decimal.NewFromInt(171)) || *sub.Profile.XP != 142 {
		t.Errorf("Unexpected submission %+v", sub)
	}
}

func TestPoemResults(t *testing.T) {
	e := newTestEnv(t, nil)
	id, cookie := e.signup(t, "poet")

	rec := e.do(t, http.MethodPost, "/games/poem/results",
		`{"poemId":"POEM_02","answers":{"blank_1":"soleil","blank_2":"chemin","blank_3":"joie"}}`, cookie)
	var sub game.Submission
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &sub) != nil {
		t.Fatalf("poem results: %d %s", rec.Code, rec.Body)
	}
	if sub.Score != 75 || !sub.Profile.Mana.Equal(decimal.NewFromInt(135)) || *sub.Profile.XP != 50 {
		t.Errorf("Unexpected submission %+v", sub)
	}

	rec = e.do(t, http.MethodPost, "/games/poem/results", `{"poemId":"POEM_99","answers":{}}`, cookie)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Poem with ID 'POEM_99' not found.") {
		t.Errorf("Expected reported unknown poem, got %d %s", rec.Code, rec.Body)
	}

	stored, _ := e.profiles.Get(context.Background(), id)
	if stored.Stat(game.StatPoemsCompleted) != 1 {
		t.Errorf("Expected poemsCompleted 1, got %d", stored.Stat(game.StatPoemsCompleted))
	}
}

func TestColorResultsAndDailyLeaderboard(t *testing.T) {
	e := newTestEnv(t, nil)
	_, alice := e.signup(t, "alice")
	_, bob := e.signup(t, "bob")

	rec := e.do(t, http.MethodPost, "/games/color/results?daily=1", `{"score":2500,"highestCombo":15}`, alice)
	var p game.Profile
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &p) != nil {
		t.Fatalf("color results: %d %s", rec.Code, rec.Body)
	}
	if !p.Mana.Equal(decimal.NewFromInt(350)) || !p.HasAchievement(game.AchComboMasterLvl1) {
		t.Errorf("Unexpected profile %+v", p)
	}

	e.do(t, http.MethodPost, "/games/color/results?daily=1", `{"score":4000,"highestCombo":3}`, bob)
	// not a daily submission, so not ranked
	e.do(t, http.MethodPost, "/games/color/results", `{"score":9000,"highestCombo":3}`, alice)

	rec = e.do(t, http.MethodGet, "/daily/leaderboard?game=color", "")
	var lb lbRes
	if rec.Code != http.StatusOK || json.Unmarshal(rec.Body.Bytes(), &lb) != nil {
		t.Fatalf("leaderboard: %d %s", rec.Code, rec.Body)
	}
	if lb.Date != "2026-03-01" || len(lb.Top) != 2 {
		t.Fatalf("Unexpected leaderboard %+v", lb)
	}
	if lb.Top[0].Username != "bob" || lb.Top[0].Score != 4000 || lb.Top[1].Username != "alice" {
		t.Errorf("Unexpected ranking %+v", lb.Top)
	}

	rec = e.do(t, http.MethodGet, "/daily/leaderboard?game=chess", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown game, got %d", rec.Code)
	}
}
