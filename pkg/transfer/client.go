// Package transfer talks to the package manager HTTP API.
package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/sdejongh/jcrsync/pkg/config"
	"github.com/sdejongh/jcrsync/pkg/logging"
	"github.com/sdejongh/jcrsync/pkg/ratelimit"
)

// Operation names, also used as the package manager cmd parameter
const (
	OpUpload   = "upload"
	OpBuild    = "build"
	OpInstall  = "install"
	OpDelete   = "delete"
	OpDownload = "download"
)

// Response is the JSON body returned by package manager commands
type Response struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Path    string `json:"path,omitempty"`
}

// ProgressReporter observes a download body
type ProgressReporter interface {
	// Track wraps r; total is -1 when unknown
	Track(r io.Reader, total int64) io.Reader
	// Done is called once the body has been consumed or abandoned
	Done()
}

// Client issues package manager requests. Requests are never retried.
type Client struct {
	http     *resty.Client
	endpoint string
	limiter  *ratelimit.Limiter
	progress ProgressReporter
	logger   logging.Logger
}

// NewClient creates a client for cfg's server, endpoint and credentials.
// progress may be nil.
func NewClient(cfg config.Config, logger logging.Logger, progress ProgressReporter) *Client {
	if logger == nil {
		logger = logging.NewNullLogger()
	}

	user, password := cfg.Credentials.Split()
	httpClient := resty.New().
		SetBaseURL(cfg.ServerLabel()).
		SetBasicAuth(user, password).
		SetTimeout(cfg.Transfer.Timeout).
		SetRetryCount(0).
		SetLogger(restyLogger{logger: logger})

	return &Client{
		http:     httpClient,
		endpoint: cfg.PackageManager,
		limiter:  ratelimit.NewLimiter(cfg.Transfer.BandwidthLimit),
		progress: progress,
		logger:   logger,
	}
}

// Upload posts the archive as a multipart form with cmd=upload and force=true
func (c *Client) Upload(ctx context.Context, archivePath string) (*Response, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, &Error{Op: OpUpload, Err: err}
	}
	defer f.Close()

	c.logger.Debug(ctx, "uploading package", logging.Fields{"archive": archivePath})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetMultipartFormData(map[string]string{
			"cmd":   OpUpload,
			"force": "true",
		}).
		SetMultipartField("package", "package.zip", "application/zip", f).
		Post(c.endpoint)

	return c.decode(OpUpload, resp, err)
}

// Build asks the server to fill the package with the content its filter covers
func (c *Client) Build(ctx context.Context, packagePath string) (*Response, error) {
	return c.command(ctx, OpBuild, packagePath)
}

// Install installs the package content into the repository
func (c *Client) Install(ctx context.Context, packagePath string) (*Response, error) {
	return c.command(ctx, OpInstall, packagePath)
}

// Delete removes the package from the server
func (c *Client) Delete(ctx context.Context, packagePath string) (*Response, error) {
	return c.command(ctx, OpDelete, packagePath)
}

func (c *Client) command(ctx context.Context, op, packagePath string) (*Response, error) {
	c.logger.Debug(ctx, "package command", logging.Fields{"cmd": op, "package": packagePath})

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParam("cmd", op).
		Post(c.endpoint + "/etc/packages/" + strings.TrimPrefix(packagePath, "/"))

	return c.decode(op, resp, err)
}

// decode applies the success contract: a 2xx status and success=true
func (c *Client) decode(op string, resp *resty.Response, err error) (*Response, error) {
	if err != nil {
		return nil, &Error{Op: op, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var result Response
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, &Error{
			Op:         op,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
			Err:        fmt.Errorf("invalid JSON response: %w", err),
		}
	}

	if !result.Success {
		return &result, &Error{Op: op, StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return &result, nil
}

// Download streams the built package to destFile and returns the number
// of bytes written.
func (c *Client) Download(ctx context.Context, packagePath, destFile string) (written int64, err error) {
	c.logger.Debug(ctx, "downloading package", logging.Fields{"package": packagePath, "dest": destFile})

	resp, err := c.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get("/etc/packages/" + strings.TrimPrefix(packagePath, "/"))
	if err != nil {
		return 0, &Error{Op: OpDownload, Err: err}
	}
	body := resp.RawBody()
	defer body.Close()

	if !resp.IsSuccess() {
		data, _ := io.ReadAll(io.LimitReader(body, 64*1024))
		return 0, &Error{Op: OpDownload, StatusCode: resp.StatusCode(), Body: string(data)}
	}

	if err := os.MkdirAll(filepath.Dir(destFile), 0755); err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", filepath.Dir(destFile), err)
	}
	out, err := os.Create(destFile)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", destFile, err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", destFile, closeErr)
		}
	}()

	var reader io.Reader = ratelimit.NewReader(ctx, body, c.limiter)
	if c.progress != nil {
		reader = c.progress.Track(reader, resp.RawResponse.ContentLength)
		defer c.progress.Done()
	}

	written, err = io.Copy(out, reader)
	if err != nil {
		return written, &Error{Op: OpDownload, StatusCode: resp.StatusCode(), Err: err}
	}

	return written, nil
}

// restyLogger routes resty's own messages to the application logger
type restyLogger struct {
	logger logging.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), nil, nil)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}
