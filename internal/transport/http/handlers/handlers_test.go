package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/ivankudzin/sparkmatch/internal/domain/model"
	"github.com/ivankudzin/sparkmatch/internal/domain/rules"
	"github.com/ivankudzin/sparkmatch/internal/pkg/apperr"
	authsvc "github.com/ivankudzin/sparkmatch/internal/services/auth"
	boostsvc "github.com/ivankudzin/sparkmatch/internal/services/boost"
	feedsvc "github.com/ivankudzin/sparkmatch/internal/services/feed"
	prefsvc "github.com/ivankudzin/sparkmatch/internal/services/preferences"
	swipesvc "github.com/ivankudzin/sparkmatch/internal/services/swipes"
)

const (
	userID   = "11111111-1111-1111-1111-111111111111"
	targetID = "22222222-2222-2222-2222-222222222222"
)

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func authed(req *http.Request) *http.Request {
	return req.WithContext(authsvc.WithIdentity(req.Context(), authsvc.Identity{UserID: userID}))
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body=%s)", err, rec.Body.String())
	}
	if env.Status != rec.Code {
		t.Fatalf("envelope status %d must mirror http status %d", env.Status, rec.Code)
	}
	return env
}

type swipeStub struct {
	gotSwiper, gotTarget, gotAction string
	result                          swipesvc.Result
	err                             error
}

func (s *swipeStub) RecordSwipe(_ context.Context, swiperID, targetID, action string) (swipesvc.Result, error) {
	s.gotSwiper, s.gotTarget, s.gotAction = swiperID, targetID, action
	return s.result, s.err
}

func TestSwipeHandlerLike(t *testing.T) {
	stub := &swipeStub{result: swipesvc.Result{SwipeID: "s1", IsMatch: true, MatchID: "m1"}}
	h := NewSwipeHandler(stub)

	body, _ := json.Marshal(map[string]string{"targetId": targetID})
	rec := httptest.NewRecorder()
	h.SuperLike(rec, authed(httptest.NewRequest(http.MethodPost, "/matches/superlike", bytes.NewReader(body))))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, rec)
	var data struct {
		IsMatch bool   `json:"isMatch"`
		MatchID string `json:"matchId"`
	}
	_ = json.Unmarshal(env.Data, &data)
	if !data.IsMatch || data.MatchID != "m1" {
		t.Fatalf("unexpected data: %s", env.Data)
	}
	if stub.gotSwiper != userID || stub.gotTarget != targetID || stub.gotAction != "superlike" {
		t.Fatalf("unexpected service call: %+v", stub)
	}
}

func TestSwipeHandlerNoMatchSendsNullMatchID(t *testing.T) {
	h := NewSwipeHandler(&swipeStub{result: swipesvc.Result{SwipeID: "s1"}})

	body, _ := json.Marshal(map[string]string{"targetId": targetID})
	rec := httptest.NewRecorder()
	h.Like(rec, authed(httptest.NewRequest(http.MethodPost, "/matches/like", bytes.NewReader(body))))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	env := decodeEnvelope(t, rec)
	var data map[string]json.RawMessage
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("unexpected data decode error: %v", err)
	}
	raw, ok := data["matchId"]
	if !ok || string(raw) != "null" {
		t.Fatalf("matchId must be present and null: %s", env.Data)
	}
}

func TestSwipeHandlerErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		auth   bool
		status int
	}{
		{name: "no auth", body: `{"targetId":"` + targetID + `"}`, status: http.StatusUnauthorized},
		{name: "missing target", body: `{}`, auth: true, status: http.StatusBadRequest},
		{name: "malformed target", body: `{"targetId":"abc"}`, auth: true, status: http.StatusBadRequest},
		{name: "unknown field", body: `{"targetId":"` + targetID + `","x":1}`, auth: true, status: http.StatusBadRequest},
		{name: "quota", body: `{"targetId":"` + targetID + `"}`, auth: true, err: swipesvc.ErrSwipeLimit, status: http.StatusForbidden},
		{name: "not found", body: `{"targetId":"` + targetID + `"}`, auth: true, err: apperr.NotFound("target user not found"), status: http.StatusNotFound},
		{name: "store failure", body: `{"targetId":"` + targetID + `"}`, auth: true, err: apperr.Internal("failed to record swipe", errors.New("db")), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		h := NewSwipeHandler(&swipeStub{err: tt.err})
		req := httptest.NewRequest(http.MethodPost, "/matches/like", bytes.NewBufferString(tt.body))
		if tt.auth {
			req = authed(req)
		}
		rec := httptest.NewRecorder()
		h.Like(rec, req)

		if rec.Code != tt.status {
			t.Fatalf("%s: unexpected status: got %d want %d", tt.name, rec.Code, tt.status)
		}
		decodeEnvelope(t, rec)
	}
}

type feedStub struct {
	last feedsvc.Request
}

func (s *feedStub) Build(_ context.Context, req feedsvc.Request) ([]model.Card, error) {
	s.last = req
	return []model.Card{{ID: "c1"}}, nil
}

func TestPreferenceUsersParsesOverrides(t *testing.T) {
	stub := &feedStub{}
	h := NewFeedHandler(stub)

	url := "/matches/preference/users?page=2&limit=5&minAge=25&maxAge=abc&maxDistance=15&genders=g1,g2&interests=i1&interests=i2&profileType=business&premium=true"
	rec := httptest.NewRecorder()
	h.PreferenceUsers(rec, authed(httptest.NewRequest(http.MethodGet, url, nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	got := stub.last
	if got.Page != 2 || got.Limit != 5 || !got.WithLikeFlags {
		t.Fatalf("unexpected paging: %+v", got)
	}
	o := got.Overrides
	if o.MinAge == nil || *o.MinAge != 25 || o.MaxAge != nil {
		t.Fatalf("malformed maxAge must be ignored: %+v", o)
	}
	if o.MaxDistance == nil || *o.MaxDistance != 15 {
		t.Fatalf("unexpected distance: %+v", o.MaxDistance)
	}
	if len(o.GenderIDs) != 2 || len(o.InterestIDs) != 2 || o.ProfileType != "business" || !o.PremiumOnly {
		t.Fatalf("unexpected overrides: %+v", o)
	}
}

func TestFeedIgnoresOverrides(t *testing.T) {
	stub := &feedStub{}
	h := NewFeedHandler(stub)

	rec := httptest.NewRecorder()
	h.Feed(rec, authed(httptest.NewRequest(http.MethodGet, "/matches/feed?minAge=30&page=x", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if stub.last.Overrides.MinAge != nil || stub.last.WithLikeFlags || stub.last.Page != 0 {
		t.Fatalf("basic feed takes no overrides: %+v", stub.last)
	}
}

type prefStub struct {
	saved prefsvc.Update
}

func (s *prefStub) Get(_ context.Context, id string) (model.Preference, error) {
	return model.Preference{UserID: id, MinAge: 18, MaxAge: 60}, nil
}

func (s *prefStub) Save(_ context.Context, id string, upd prefsvc.Update) (model.Preference, error) {
	s.saved = upd
	return model.Preference{UserID: id}, nil
}

func TestPreferencesPutValidates(t *testing.T) {
	stub := &prefStub{}
	h := NewPreferencesHandler(stub)

	rec := httptest.NewRecorder()
	h.Put(rec, authed(httptest.NewRequest(http.MethodPut, "/matches/preferences", bytes.NewBufferString(`{"profileType":"alien"}`))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for bad profile type: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Put(rec, authed(httptest.NewRequest(http.MethodPut, "/matches/preferences", bytes.NewBufferString(`{"maxAge":40,"genders":["g1"]}`))))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	if stub.saved.MaxAge == nil || *stub.saved.MaxAge != 40 || stub.saved.MinAge != nil || stub.saved.Genders == nil {
		t.Fatalf("partial update must pass only sent fields: %+v", stub.saved)
	}
}

type matchStub struct{}

func (matchStub) List(context.Context, string, rules.FilterOverrides, int, int) ([]model.Card, error) {
	return []model.Card{}, nil
}

func (matchStub) LikesReceived(context.Context, string, int, int) ([]model.Card, error) {
	return nil, apperr.Internal("failed to list likes", errors.New("db"))
}

func (matchStub) LikesSent(context.Context, string, int, int) ([]model.Card, error) {
	return []model.Card{}, nil
}

func (matchStub) Profile(_ context.Context, id string) (model.Profile, error) {
	if id != targetID {
		return model.Profile{}, apperr.NotFound("user not found")
	}
	return model.Profile{ID: id}, nil
}

func TestMatchesProfileRoute(t *testing.T) {
	h := NewMatchesHandler(matchStub{})
	r := chi.NewRouter()
	r.Get("/matches/user/{id}", h.Profile)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/matches/user/"+targetID, nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, authed(httptest.NewRequest(http.MethodGet, "/matches/user/unknown", nil)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unexpected status for unknown user: %d", rec.Code)
	}
	decodeEnvelope(t, rec)
}

func TestMatchesLikesReceivedHidesInternalCause(t *testing.T) {
	h := NewMatchesHandler(matchStub{})
	rec := httptest.NewRecorder()
	h.LikesReceived(rec, authed(httptest.NewRequest(http.MethodGet, "/matches/likes/received", nil)))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	if env.Message != "failed to list likes" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

type boostStub struct {
	activatedWith int
}

func (b *boostStub) Status(context.Context, string) (boostsvc.Status, error) {
	return boostsvc.Status{Credits: 2}, nil
}

func (b *boostStub) Packages() []model.BoostPackage {
	return []model.BoostPackage{{Code: "boost_1", Credits: 1, Price: 49}}
}

func (b *boostStub) Purchase(_ context.Context, _, code, _ string, _ int) (boostsvc.PurchaseResult, error) {
	if code != "boost_5" {
		return boostsvc.PurchaseResult{}, boostsvc.ErrUnknownPackage
	}
	return boostsvc.PurchaseResult{BoostActivated: true, TotalCredits: 4}, nil
}

func (b *boostStub) Activate(_ context.Context, _ string, minutes int) (boostsvc.Status, error) {
	b.activatedWith = minutes
	return boostsvc.Status{}, boostsvc.ErrAlreadyActive.WithDetails(map[string]int{"remainingMinutes": 12})
}

func (b *boostStub) Deactivate(context.Context, string) (boostsvc.Status, error) {
	return boostsvc.Status{}, boostsvc.ErrNotActive
}

func TestBoostHandlers(t *testing.T) {
	stub := &boostStub{}
	h := NewBoostHandler(stub)

	rec := httptest.NewRecorder()
	h.Purchase(rec, authed(httptest.NewRequest(http.MethodPost, "/boost/purchase", bytes.NewBufferString(`{"packageId":"boost_5","transactionId":"tx"}`))))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected purchase status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Purchase(rec, authed(httptest.NewRequest(http.MethodPost, "/boost/purchase", bytes.NewBufferString(`{"packageId":"boost_99"}`))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown package must be 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Activate(rec, authed(httptest.NewRequest(http.MethodPost, "/boost/activate", http.NoBody)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("active boost must be 400, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	var details map[string]int
	_ = json.Unmarshal(env.Data, &details)
	if details["remainingMinutes"] != 12 || stub.activatedWith != 0 {
		t.Fatalf("unexpected details: %s", env.Data)
	}

	rec = httptest.NewRecorder()
	h.Deactivate(rec, authed(httptest.NewRequest(http.MethodPost, "/boost/deactivate", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("idle deactivate must be 400, got %d", rec.Code)
	}
}

type pingStub struct{ err error }

func (p pingStub) Ping(context.Context) error { return p.err }

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"postgres": pingStub{}, "redis": pingStub{}}).Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]Pinger{"redis": pingStub{err: errors.New("down")}}).Handle(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
}
