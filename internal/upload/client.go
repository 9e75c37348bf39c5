package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/amplopt/release-publisher/internal/credentials"
)

// ErrNoDownloadURL indicates the release store accepted the request but did
// not return a download URL for the artifact.
var ErrNoDownloadURL = errors.New("upload response carries no download URL")

// Client posts release archives to the hosted file-release store.
type Client struct {
	// endpoint is the upload URL of the release store.
	endpoint string
	// project scopes uploads on the release store.
	project string
	// creds authenticate every request via basic auth.
	creds *credentials.Credentials
	// httpClient performs the requests. Calls block until the store
	// responds; the pipeline has no timeout policy of its own.
	httpClient *http.Client
	// progress enables a console progress bar during uploads.
	progress bool
}

// NewClient creates an upload client for the provided endpoint and project.
func NewClient(endpoint, project string, creds *credentials.Credentials) *Client {
	return &Client{
		endpoint:   endpoint,
		project:    project,
		creds:      creds,
		httpClient: &http.Client{},
		progress:   true,
	}
}

// Upload sends one archive with its summary and classification labels.
// Failures are never raised: the outcome is captured in the Result so the
// caller can log it and continue with the remaining artifacts.
func (c *Client) Upload(ctx context.Context, filePath, summary string, labels []string) Result {
	result := Result{
		File:    filepath.Base(filePath),
		Summary: summary,
	}

	body, contentType, err := c.encodeRequest(filePath, summary, labels)
	if err != nil {
		result.Err = err
		return result
	}

	var reader io.Reader = body
	if c.progress {
		bar := progressbar.DefaultBytes(int64(body.Len()), "uploading "+result.File)
		pr := progressbar.NewReader(body, bar)
		reader = &pr
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, reader)
	if err != nil {
		result.Err = fmt.Errorf("create upload request: %w", err)
		return result
	}

	req.Header.Set("Content-Type", contentType)
	req.SetBasicAuth(c.creds.Username, c.creds.Password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		result.Err = fmt.Errorf("post %s: %w", result.File, err)
		return result
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	result.Status = resp.StatusCode
	result.Reason = strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprint(resp.StatusCode)))
	result.URL = resp.Header.Get("Location")

	if result.URL == "" {
		result.Err = ErrNoDownloadURL
	}

	return result
}

// encodeRequest builds the multipart request body for one archive.
func (c *Client) encodeRequest(filePath, summary string, labels []string) (*bytes.Buffer, string, error) {
	file, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("open %q: %w", filePath, err)
	}

	// Best-effort close, the file is read-only.
	defer func() {
		_ = file.Close()
	}()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("project", c.project); err != nil {
		return nil, "", fmt.Errorf("encode project field: %w", err)
	}

	if err := writer.WriteField("summary", summary); err != nil {
		return nil, "", fmt.Errorf("encode summary field: %w", err)
	}

	for _, label := range labels {
		if err := writer.WriteField("label", label); err != nil {
			return nil, "", fmt.Errorf("encode label field: %w", err)
		}
	}

	part, err := writer.CreateFormFile("filename", filepath.Base(filePath))
	if err != nil {
		return nil, "", fmt.Errorf("encode file part: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("encode %q: %w", filePath, err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("finalize request body: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}
