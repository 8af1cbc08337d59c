package gradevue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	// DefaultEndpoint is the path of the PXP web service below a district URL.
	DefaultEndpoint = "/Service/PXPCommunication.asmx/ProcessWebServiceRequest"

	defaultTimeout   = 10 * time.Second
	defaultRetries   = 1
	defaultRetryWait = 500 * time.Millisecond
)

// A Client requests gradebooks for one student from a district's StudentVUE
// service. It is safe for concurrent use.
type Client struct {
	url      string
	username string
	password string
	http     *resty.Client
	log      *slog.Logger
}

type clientOptions struct {
	logger           *slog.Logger
	httpClient       *http.Client
	timeout          time.Duration
	retries          int
	retryWait        time.Duration
	endpoint         string
	checkCredentials bool
}

// An Option configures a Client.
type Option func(*clientOptions)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithHTTPClient sets the HTTP client whose transport, jar and redirect
// policy requests use. The client is copied, so WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *clientOptions) { o.timeout = d }
}

// WithRetry sets how many times a request is retried after a network error or
// a 5xx response, and the base wait between attempts.
func WithRetry(count int, wait time.Duration) Option {
	return func(o *clientOptions) {
		o.retries = count
		o.retryWait = wait
	}
}

// WithEndpoint overrides DefaultEndpoint.
func WithEndpoint(endpoint string) Option {
	return func(o *clientOptions) { o.endpoint = endpoint }
}

// WithCredentialCheck controls whether NewClient requests a gradebook to
// verify the credentials. It is on by default.
func WithCredentialCheck(enabled bool) Option {
	return func(o *clientOptions) { o.checkCredentials = enabled }
}

// NewClient creates a Client for the district at districtURL, e.g.
// `https://student-portland.cascadetech.org/portland`. Unless disabled with
// WithCredentialCheck, it requests the gradebook overview once and returns
// ErrInvalidCredentials if the service does not return one.
func NewClient(ctx context.Context, districtURL, username, password string, opts ...Option) (*Client, error) {
	o := clientOptions{
		logger:           slog.Default(),
		timeout:          defaultTimeout,
		retries:          defaultRetries,
		retryWait:        defaultRetryWait,
		endpoint:         DefaultEndpoint,
		checkCredentials: true,
	}

	for _, opt := range opts {
		opt(&o)
	}

	if !strings.HasPrefix(o.endpoint, "/") || strings.HasSuffix(o.endpoint, "/") {
		return nil, fmt.Errorf("gradevue: endpoint %q must start with / and must not end with /", o.endpoint)
	}

	log := o.logger.With("adapter", "studentvue")

	var rc *resty.Client

	if o.httpClient != nil {
		hc := *o.httpClient
		rc = resty.NewWithClient(&hc)
	} else {
		rc = resty.New()
	}

	rc.SetTimeout(o.timeout).
		SetRetryCount(o.retries).
		SetRetryWaitTime(o.retryWait).
		SetLogger(restyLogger{log}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || (r != nil && r.StatusCode() >= http.StatusInternalServerError)
		})

	c := &Client{
		url:      strings.TrimRight(districtURL, "/") + o.endpoint,
		username: username,
		password: password,
		http:     rc,
		log:      log,
	}

	if o.checkCredentials {
		doc, err := c.Gradebook(ctx, nil)

		if err != nil {
			return nil, err
		}

		if doc == nil {
			return nil, ErrInvalidCredentials
		}
	}

	return c, nil
}

// Gradebook requests the decoded gradebook document. A nil reportPeriod asks
// for the period the service has selected. A nil Document with a nil error
// means the service returned no gradebook; failed requests are *TransportError.
func (c *Client) Gradebook(ctx context.Context, reportPeriod *int) (Document, error) {
	paramStr := "<Parms><ChildIntID>0</ChildIntID></Parms>"

	if reportPeriod != nil {
		paramStr = fmt.Sprintf("<Parms><ChildIntID>0</ChildIntID><ReportPeriod>%d</ReportPeriod></Parms>", *reportPeriod)
	}

	c.log.DebugContext(ctx, "gradebook request", slog.Bool("report_period_set", reportPeriod != nil))

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"userID":               c.username,
			"password":             c.password,
			"skipLoginLog":         "true",
			"parent":               "false",
			"webServiceHandleName": "PXPWebServices",
			"methodName":           "Gradebook",
			"paramStr":             paramStr,
		}).
		Post(c.url)

	if err != nil {
		c.log.ErrorContext(ctx, "gradebook request failed", slog.String("error", err.Error()))

		return nil, &TransportError{Err: err}
	}

	if resp.IsError() {
		c.log.ErrorContext(ctx, "gradebook request failed", slog.Int("status", resp.StatusCode()))

		return nil, &TransportError{StatusCode: resp.StatusCode()}
	}

	doc, err := decodeSVUEResponse(resp.String())

	if err != nil {
		return nil, err
	}

	if doc == nil {
		c.log.WarnContext(ctx, "service returned no gradebook")
	}

	return doc, nil
}

// GradebookOverview returns the school's reporting periods and the current
// one. When the request fails or the service returns no gradebook, the
// Overview is empty (see Overview.HasGradebook) and the error is nil.
func (c *Client) GradebookOverview(ctx context.Context) (Overview, error) {
	doc, err := c.Gradebook(ctx, nil)

	var te *TransportError

	if errors.As(err, &te) {
		c.log.WarnContext(ctx, "gradebook overview unavailable", slog.String("error", te.Error()))

		return Overview{}, nil
	}

	if err != nil {
		return Overview{}, err
	}

	return NormalizeOverview(doc)
}

// GradebookDetailed returns the courses and assignments of the given period.
// When the request fails or the service returns no gradebook the error is
// ErrAuthenticationOrSession.
func (c *Client) GradebookDetailed(ctx context.Context, period ReportingPeriod) (*Gradebook, error) {
	idx, err := strconv.Atoi(period.Index)

	if err != nil {
		return nil, fmt.Errorf("gradevue: report period index %q: %w", period.Index, err)
	}

	doc, err := c.Gradebook(ctx, &idx)

	var te *TransportError

	if errors.As(err, &te) {
		return nil, fmt.Errorf("%w: %w", ErrAuthenticationOrSession, err)
	}

	if err != nil {
		return nil, err
	}

	return NormalizeGradebook(doc)
}

// restyLogger sends resty's own messages to slog. Its per-attempt errors are
// debug records; Client.Gradebook logs the final failure.
type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
