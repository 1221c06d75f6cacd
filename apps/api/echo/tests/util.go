package tests

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/researchops/grantboard/apps/api/echo"
	"github.com/researchops/grantboard/core"
	"github.com/researchops/grantboard/core/grant"
	"github.com/researchops/grantboard/core/ingest"
	"github.com/researchops/grantboard/core/insights"
	inmemdb "github.com/researchops/grantboard/storage/database/inmem"
)

// testLogger keeps server-side failures in the test output.
type testLogger struct {
	t *testing.T
}

var _ core.Logger = (*testLogger)(nil)

func (l testLogger) log(msg string, args []interface{}) {
	l.t.Helper()
	l.t.Logf("%s %v", msg, args)
}
func (l testLogger) Debug(msg string, args ...interface{}) { l.log(msg, args) }
func (l testLogger) Info(msg string, args ...interface{})  { l.log(msg, args) }
func (l testLogger) Warn(msg string, args ...interface{})  { l.log(msg, args) }
func (l testLogger) Error(msg string, args ...interface{}) { l.log(msg, args) }
func (l testLogger) Fatal(msg string, args ...interface{}) { l.t.Fatalf("%s %v", msg, args) }

func setup(t *testing.T) echoapi.Server {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New()
	core.InitValidators(validate, translator)
	ingest.InitValidators(validate, translator)

	conf := &core.Config{
		TestMode: true,
		Env:      "TEST",
		AppName:  "Grantboard",
		Server:   core.ServerConfig{Host: "127.0.0.1", Port: 0, ShutdownTimeout: time.Second},
	}

	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:        conf,
			Logger:      testLogger{t: t},
			DB:          db,
			GrantSvc:    grant.NewService(inmemdb.NewGrantRepository(db)),
			InsightsSvc: insights.NewService(inmemdb.NewInsightsRepository(db)),
			IngestSvc:   ingest.NewService(inmemdb.NewIngestRepository(db), validate, translator),
			Validate:    validate,
			Translator:  translator,
		},
	)
}

func do(server echoapi.Server, method, path string, body ...string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if len(body) > 0 {
		reader = strings.NewReader(body[0])
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "text/plain")
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// errEnvelope mirrors the API error response shape.
type errEnvelope struct {
	Error struct {
		Message    string            `json:"message"`
		Code       string            `json:"code"`
		StatusCode int               `json:"statusCode"`
		Fields     map[string]string `json:"fields"`
		Timestamp  time.Time         `json:"timestamp"`
	} `json:"error"`
}
