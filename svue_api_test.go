package gradevue

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePortal serves gradebook responses and records the last form it received.
type fakePortal struct {
	calls    atomic.Int32
	lastForm atomic.Value
	respond  func(call int32, w http.ResponseWriter)
}

func newFakePortal(t *testing.T, respond func(call int32, w http.ResponseWriter)) (*fakePortal, *httptest.Server) {
	t.Helper()

	p := &fakePortal{respond: respond}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		call := p.calls.Add(1)

		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/district"+DefaultEndpoint {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}

		p.lastForm.Store(r.PostForm)
		p.respond(call, w)
	}))
	t.Cleanup(srv.Close)

	return p, srv
}

func (p *fakePortal) form() url.Values {
	v, _ := p.lastForm.Load().(url.Values)
	return v
}

func respondWith(body string) func(int32, http.ResponseWriter) {
	return func(_ int32, w http.ResponseWriter) {
		w.Header().Set("Content-Type", "text/xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()

	opts = append([]Option{
		WithLogger(newTestLogger()),
		WithCredentialCheck(false),
		WithRetry(0, 10*time.Millisecond),
	}, opts...)

	c, err := NewClient(context.Background(), srv.URL+"/district/", "student", "hunter2", opts...)
	require.NoError(t, err)

	return c
}

func TestClient_GradebookOverview(t *testing.T) {
	t.Parallel()

	portal, srv := newFakePortal(t, respondWith(wrapResponse(sampleGradebookXML)))
	c := newTestClient(t, srv)

	ov, err := c.GradebookOverview(context.Background())
	require.NoError(t, err)

	assert.True(t, ov.HasGradebook())
	assert.Len(t, ov.Periods, 2)
	require.NotNil(t, ov.Current)
	assert.Equal(t, "1st Qtr", ov.Current.Name)

	form := portal.form()
	assert.Equal(t, []string{"student"}, form["userID"])
	assert.Equal(t, []string{"hunter2"}, form["password"])
	assert.Equal(t, []string{"true"}, form["skipLoginLog"])
	assert.Equal(t, []string{"false"}, form["parent"])
	assert.Equal(t, []string{"PXPWebServices"}, form["webServiceHandleName"])
	assert.Equal(t, []string{"Gradebook"}, form["methodName"])
	assert.Equal(t, []string{"<Parms><ChildIntID>0</ChildIntID></Parms>"}, form["paramStr"])
}

func TestClient_GradebookDetailed(t *testing.T) {
	t.Parallel()

	portal, srv := newFakePortal(t, respondWith(wrapResponse(sampleGradebookXML)))
	c := newTestClient(t, srv)

	gb, err := c.GradebookDetailed(context.Background(), ReportingPeriod{Index: "1", Name: "1st Qtr"})
	require.NoError(t, err)

	assert.Len(t, gb.Courses, 2)
	assert.NotNil(t, gb.FindAssignment("501"))
	assert.Equal(t,
		[]string{"<Parms><ChildIntID>0</ChildIntID><ReportPeriod>1</ReportPeriod></Parms>"},
		portal.form()["paramStr"])
}

func TestClient_GradebookDetailed_BadIndex(t *testing.T) {
	t.Parallel()

	portal, srv := newFakePortal(t, respondWith(wrapResponse(sampleGradebookXML)))
	c := newTestClient(t, srv)

	_, err := c.GradebookDetailed(context.Background(), ReportingPeriod{Index: "first"})
	require.Error(t, err)
	assert.Equal(t, int32(0), portal.calls.Load())
}

func TestClient_NoGradebook(t *testing.T) {
	t.Parallel()

	_, srv := newFakePortal(t, respondWith(wrapResponse(`<RT_ERROR ERROR_MESSAGE="Session expired" />`)))
	c := newTestClient(t, srv)

	ov, err := c.GradebookOverview(context.Background())
	require.NoError(t, err)
	assert.False(t, ov.HasGradebook())
	assert.Nil(t, ov.Current)

	_, err = c.GradebookDetailed(context.Background(), ReportingPeriod{Index: "1"})
	assert.ErrorIs(t, err, ErrAuthenticationOrSession)
}

func TestClient_TransportFailure(t *testing.T) {
	t.Parallel()

	_, srv := newFakePortal(t, func(_ int32, w http.ResponseWriter) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c := newTestClient(t, srv)

	_, err := c.Gradebook(context.Background(), nil)

	var te *TransportError
	require.True(t, errors.As(err, &te), "error = %v", err)
	assert.Equal(t, http.StatusServiceUnavailable, te.StatusCode)

	ov, err := c.GradebookOverview(context.Background())
	require.NoError(t, err)
	assert.False(t, ov.HasGradebook())

	_, err = c.GradebookDetailed(context.Background(), ReportingPeriod{Index: "0"})
	assert.ErrorIs(t, err, ErrAuthenticationOrSession)
	assert.True(t, errors.As(err, &te))
}

func TestClient_TransportFailureLoggedOnce(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	c, err := NewClient(context.Background(), srv.URL, "student", "hunter2",
		WithLogger(log), WithCredentialCheck(false), WithRetry(1, 10*time.Millisecond))
	require.NoError(t, err)

	_, err = c.Gradebook(context.Background(), nil)
	var te *TransportError
	require.True(t, errors.As(err, &te), "error = %v", err)

	assert.Equal(t, 1, strings.Count(buf.String(), `"level":"ERROR"`), buf.String())
}

func TestNewClient_HTTPClientNotModified(t *testing.T) {
	t.Parallel()

	hc := &http.Client{}

	_, err := NewClient(context.Background(), "https://example.org", "u", "p",
		WithHTTPClient(hc), WithTimeout(3*time.Second), WithCredentialCheck(false))
	require.NoError(t, err)

	assert.Zero(t, hc.Timeout)
}

func TestClient_RetriesServerError(t *testing.T) {
	t.Parallel()

	portal, srv := newFakePortal(t, func(call int32, w http.ResponseWriter) {
		if call == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		respondWith(wrapResponse(sampleGradebookXML))(call, w)
	})
	c := newTestClient(t, srv, WithRetry(1, 10*time.Millisecond))

	ov, err := c.GradebookOverview(context.Background())
	require.NoError(t, err)

	assert.True(t, ov.HasGradebook())
	assert.Equal(t, int32(2), portal.calls.Load())
}

func TestClient_UnexpectedResponse(t *testing.T) {
	t.Parallel()

	_, srv := newFakePortal(t, respondWith("<html><body>maintenance</body></html>"))
	c := newTestClient(t, srv)

	_, err := c.GradebookOverview(context.Background())
	assert.ErrorIs(t, err, ErrUnexpectedResponse)
}

func TestNewClient_CredentialCheck(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		portal, srv := newFakePortal(t, respondWith(wrapResponse(sampleGradebookXML)))

		c, err := NewClient(context.Background(), srv.URL+"/district", "student", "hunter2",
			WithLogger(newTestLogger()))
		require.NoError(t, err)
		assert.NotNil(t, c)
		assert.Equal(t, int32(1), portal.calls.Load())
	})

	t.Run("invalid", func(t *testing.T) {
		_, srv := newFakePortal(t, respondWith(wrapResponse(
			`<Gradebook ErrorMessage="System.NullReferenceException" />`)))

		c, err := NewClient(context.Background(), srv.URL+"/district", "student", "wrong",
			WithLogger(newTestLogger()))
		assert.Nil(t, c)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("skipped", func(t *testing.T) {
		portal, srv := newFakePortal(t, respondWith(""))

		_, err := NewClient(context.Background(), srv.URL+"/district", "student", "hunter2",
			WithLogger(newTestLogger()), WithCredentialCheck(false))
		require.NoError(t, err)
		assert.Equal(t, int32(0), portal.calls.Load())
	})
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	t.Parallel()

	for _, endpoint := range []string{"Service/PXP", "/Service/PXP/"} {
		_, err := NewClient(context.Background(), "https://example.org", "u", "p",
			WithEndpoint(endpoint), WithCredentialCheck(false))
		assert.Error(t, err, endpoint)
	}
}
