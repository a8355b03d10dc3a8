// mlboard - Movie, Energy and Survey Analytics Dashboard
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/mlboard

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/mlboard/internal/divorce"
	"github.com/tomtom215/mlboard/internal/enrich"
	"github.com/tomtom215/mlboard/internal/forecast"
	"github.com/tomtom215/mlboard/internal/models"
	"github.com/tomtom215/mlboard/internal/recommend"
)

type fakeMovies struct {
	err      error
	gotTitle string
	gotK     int
}

func (f *fakeMovies) Titles(context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []string{"Avatar", "Batman"}, nil
}

func (f *fakeMovies) Recommend(_ context.Context, title string, k int) ([]recommend.Result, error) {
	f.gotTitle, f.gotK = title, k
	if f.err != nil {
		return nil, f.err
	}
	if title != "Avatar" {
		return nil, fmt.Errorf("%w: no movie titled %q", models.ErrLookupMiss, title)
	}
	return []recommend.Result{{Recommendation: recommend.Recommendation{Index: 1, MovieID: 2, Title: "Batman", Score: 0.4}}}, nil
}

type fakeForecast struct{ got forecast.Options }

func (f *fakeForecast) Summary(_ context.Context, opts forecast.Options) (*forecast.Summary, error) {
	f.got = opts
	return &forecast.Summary{RMSE: 1.5, Window: opts.Window}, nil
}

type fakeDivorce struct{ err error }

func (f fakeDivorce) Questions(context.Context) ([]divorce.Question, error) {
	return []divorce.Question{{Position: 0, Feature: "Q18", Inverted: true}}, f.err
}

func (f fakeDivorce) Estimate(_ context.Context, responses []int) (*divorce.Estimate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &divorce.Estimate{Probability: 0.8, Band: divorce.BandHigh}, nil
}

type fakeProfiles struct{}

func (fakeProfiles) Profile(_ context.Context, ticker string) (enrich.Profile, error) {
	c, ok := enrich.Lookup(ticker)
	if !ok {
		return enrich.Profile{}, models.ErrLookupMiss
	}
	return enrich.Profile{Company: c, Status: enrich.StatusUnavailable, Reason: "offline"}, nil
}

type fakeStatus []string

func (f fakeStatus) Loaded() []string { return f }

func newTestServer(t *testing.T, svc Services) *httptest.Server {
	t.Helper()
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitDisabled = true
	srv := httptest.NewServer(NewRouter(NewHandler(svc, "test"), NewChiMiddleware(cfg), nil).SetupChi())
	t.Cleanup(srv.Close)
	return srv
}

func defaultServices() Services {
	return Services{
		Movies:    &fakeMovies{},
		Forecast:  &fakeForecast{},
		Divorce:   fakeDivorce{},
		Profiles:  fakeProfiles{},
		Artifacts: fakeStatus{"movieDb.csv"},
		Expected:  1,
	}
}

type envelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *struct {
		Code    string                 `json:"code"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
	Metadata struct {
		RequestID string `json:"request_id"`
	} `json:"metadata"`
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode: %v", method, path, err)
	}
	return resp.StatusCode, env
}

func TestEndpoints(t *testing.T) {
	srv := newTestServer(t, defaultServices())

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"titles", "GET", "/api/v1/movies/titles", "", 200, ""},
		{"recommendations", "GET", "/api/v1/movies/recommendations?title=Avatar", "", 200, ""},
		{"unknown title", "GET", "/api/v1/movies/recommendations?title=Nope", "", 404, ErrCodeNotFound},
		{"missing title", "GET", "/api/v1/movies/recommendations", "", 400, ErrCodeValidation},
		{"bad k", "GET", "/api/v1/movies/recommendations?title=Avatar&k=abc", "", 400, ErrCodeValidation},
		{"forecast default", "GET", "/api/v1/forecast", "", 200, ""},
		{"forecast bad date", "GET", "/api/v1/forecast?from=01/01/2018&to=2018-01-07", "", 400, ErrCodeValidation},
		{"forecast from without to", "GET", "/api/v1/forecast?from=2018-01-01", "", 400, ErrCodeValidation},
		{"questions", "GET", "/api/v1/divorce/questions", "", 200, ""},
		{"probability", "POST", "/api/v1/divorce/probability", `{"responses":[0,1,2,3,4,0,1,2,3,4]}`, 200, ""},
		{"probability out of range", "POST", "/api/v1/divorce/probability", `{"responses":[0,1,2,3,5,0,1,2,3,4]}`, 400, ErrCodeValidation},
		{"probability short", "POST", "/api/v1/divorce/probability", `{"responses":[0,1]}`, 400, ErrCodeValidation},
		{"probability bad json", "POST", "/api/v1/divorce/probability", `{"responses":`, 400, ErrCodeBadRequest},
		{"probability unknown field", "POST", "/api/v1/divorce/probability", `{"answers":[1]}`, 400, ErrCodeBadRequest},
		{"companies", "GET", "/api/v1/companies", "", 200, ""},
		{"profile", "GET", "/api/v1/companies/AAPL/profile", "", 200, ""},
		{"profile bad ticker", "GET", "/api/v1/companies/aapl/profile", "", 400, ErrCodeValidation},
		{"profile unsupported", "GET", "/api/v1/companies/IBM/profile", "", 404, ErrCodeNotFound},
		{"health", "GET", "/api/v1/health", "", 200, ""},
		{"ready", "GET", "/api/v1/health/ready", "", 200, ""},
		{"unknown route", "GET", "/api/v1/nothing", "", 404, ErrCodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, env := do(t, srv, tt.method, tt.path, tt.body)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%+v)", status, tt.wantStatus, env.Error)
			}
			if tt.wantCode == "" {
				if env.Status != "success" {
					t.Errorf("status field = %q", env.Status)
				}
				return
			}
			if env.Status != "error" || env.Error == nil || env.Error.Code != tt.wantCode {
				t.Errorf("error = %+v, want code %s", env.Error, tt.wantCode)
			}
		})
	}
}

func TestArtifactUnavailableIs503(t *testing.T) {
	svc := defaultServices()
	svc.Movies = &fakeMovies{err: &models.ArtifactError{Key: "worked/movieDb.csv", Op: "fetch", Err: models.ErrArtifactNotFound}}
	svc.Divorce = fakeDivorce{err: fmt.Errorf("boom")}
	srv := newTestServer(t, svc)

	status, env := do(t, srv, "GET", "/api/v1/movies/titles", "")
	if status != http.StatusServiceUnavailable || env.Error.Code != ErrCodeArtifactUnavailable {
		t.Fatalf("status = %d, error = %+v", status, env.Error)
	}
	if env.Error.Details["key"] != "worked/movieDb.csv" {
		t.Errorf("details = %v", env.Error.Details)
	}

	status, env = do(t, srv, "POST", "/api/v1/divorce/probability", `{"responses":[0,0,0,0,0,0,0,0,0,0]}`)
	if status != http.StatusInternalServerError || env.Error.Code != ErrCodeInternal {
		t.Errorf("unexpected error: status = %d, error = %+v", status, env.Error)
	}
}

func TestMalformedModelInputIs400(t *testing.T) {
	svc := defaultServices()
	svc.Movies = &fakeMovies{err: fmt.Errorf("%w: matrix and table disagree", models.ErrMalformedModelInput)}
	srv := newTestServer(t, svc)

	status, env := do(t, srv, "GET", "/api/v1/movies/recommendations?title=Avatar", "")
	if status != http.StatusBadRequest || env.Error.Code != ErrCodeModelInput {
		t.Errorf("status = %d, error = %+v", status, env.Error)
	}
}

func TestRecommendationsPassesK(t *testing.T) {
	svc := defaultServices()
	movies := &fakeMovies{}
	svc.Movies = movies
	srv := newTestServer(t, svc)

	if status, _ := do(t, srv, "GET", "/api/v1/movies/recommendations?title=Avatar", ""); status != 200 {
		t.Fatal(status)
	}
	if movies.gotK != recommend.DefaultK {
		t.Errorf("default k = %d", movies.gotK)
	}
	if status, _ := do(t, srv, "GET", "/api/v1/movies/recommendations?title=Avatar&k=5", ""); status != 200 {
		t.Fatal(status)
	}
	if movies.gotK != 5 || movies.gotTitle != "Avatar" {
		t.Errorf("k = %d, title = %q", movies.gotK, movies.gotTitle)
	}
}

func TestForecastWindowParsing(t *testing.T) {
	svc := defaultServices()
	fc := &fakeForecast{}
	svc.Forecast = fc
	srv := newTestServer(t, svc)

	if status, _ := do(t, srv, "GET", "/api/v1/forecast?from=2017-06-01&to=2017-06-03&step=24", ""); status != 200 {
		t.Fatal(status)
	}
	want := forecast.Window{From: time.Date(2017, 6, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2017, 6, 3, 0, 0, 0, 0, time.UTC)}
	if fc.got.Window != want || fc.got.Step != 24 {
		t.Errorf("options = %+v", fc.got)
	}

	if status, _ := do(t, srv, "GET", "/api/v1/forecast", ""); status != 200 {
		t.Fatal(status)
	}
	if !fc.got.Window.From.IsZero() {
		t.Errorf("default request set a window: %+v", fc.got.Window)
	}
}

func TestReadinessDegraded(t *testing.T) {
	svc := defaultServices()
	svc.Artifacts = fakeStatus{}
	svc.Expected = 5
	srv := newTestServer(t, svc)

	status, env := do(t, srv, "GET", "/api/v1/health/ready", "")
	if status != http.StatusServiceUnavailable || env.Error.Code != ErrCodeArtifactUnavailable {
		t.Errorf("ready: status = %d, %+v", status, env.Error)
	}
	status, env = do(t, srv, "GET", "/api/v1/health", "")
	if status != 200 || !strings.Contains(string(env.Data), `"degraded"`) {
		t.Errorf("health: status = %d, data = %s", status, env.Data)
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, defaultServices())
	req, _ := http.NewRequest("GET", srv.URL+"/api/v1/movies/titles", nil)
	req.Header.Set("X-Request-ID", "trace-42")
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var env envelope
	_ = json.NewDecoder(resp.Body).Decode(&env)
	if resp.Header.Get("X-Request-ID") != "trace-42" || env.Metadata.RequestID != "trace-42" {
		t.Errorf("header %q, metadata %q", resp.Header.Get("X-Request-ID"), env.Metadata.RequestID)
	}
}

func TestRateLimitEnvelope(t *testing.T) {
	cfg := DefaultChiMiddlewareConfig()
	cfg.RateLimitRequests = 1
	cfg.RateLimitWindow = time.Minute
	srv := httptest.NewServer(NewRouter(NewHandler(defaultServices(), "test"), NewChiMiddleware(cfg), nil).SetupChi())
	defer srv.Close()

	if status, _ := do(t, srv, "GET", "/api/v1/companies", ""); status != 200 {
		t.Fatalf("first request: %d", status)
	}
	status, env := do(t, srv, "GET", "/api/v1/companies", "")
	if status != http.StatusTooManyRequests || env.Error == nil || env.Error.Code != ErrCodeRateLimited {
		t.Errorf("second request: status = %d, error = %+v", status, env.Error)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, defaultServices())
	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}
