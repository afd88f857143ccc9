package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"libapp/internal/client/models"
)

var _ Client = (*HTTPClient)(nil)

const (
	booksPath       = "/api/books"
	usersPath       = "/api/users"
	tokenPath       = "/api/users/token"
	attachmentsPath = "/api/attachments"
)

// HTTPClient is the concrete Client talking JSON over HTTP.
//
// The credential is stored once via SetCredential and attached to every
// request; callers never pass it themselves. Requests carry no client-side
// timeout: cancellation is the caller's job via ctx, and network failures
// surface as ErrUnavailable.
type HTTPClient struct {
	baseURL  string
	http     *http.Client
	progress *Progress

	mu             sync.RWMutex
	credential     string
	onUnauthorized func()
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{},
		progress: NewProgress(),
	}
}

func (c *HTTPClient) SetCredential(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.credential = value
}

func (c *HTTPClient) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *HTTPClient) Progress() *Progress {
	return c.progress
}

// do issues one request and decodes the response into out (when non-nil).
// The progress key deliberately excludes the query string so that, say,
// every older-page load of one feed reports as the same operation.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	c.mu.RLock()
	credential := c.credential
	onUnauthorized := c.onUnauthorized
	c.mu.RUnlock()
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	c.progress.start(method, path)
	defer c.progress.done(method, path)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil

	case resp.StatusCode == http.StatusBadRequest:
		var ve ValidationError
		if err := json.NewDecoder(resp.Body).Decode(&ve); err != nil {
			return fmt.Errorf("unexpected status %d from %s %s", resp.StatusCode, method, path)
		}
		return &ve

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Only an authenticated request means the stored credential went
		// stale; an anonymous 401 is just a failed login attempt.
		if credential != "" && onUnauthorized != nil {
			onUnauthorized()
		}
		return ErrUnauthorized

	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound

	default:
		return fmt.Errorf("unexpected status %d from %s %s", resp.StatusCode, method, path)
	}
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, query, body, contentType, out)
}

func feedQuery(user string) url.Values {
	q := url.Values{}
	if user != "" {
		q.Set("user", user)
	}
	return q
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	in := struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}{Username: username, Password: password}

	var out models.AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, tokenPath, nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) Register(ctx context.Context, username, password, passwordRepeat string) error {
	in := struct {
		Username       string `json:"username"`
		Password       string `json:"password"`
		PasswordRepeat string `json:"passwordRepeat"`
	}{Username: username, Password: password, PasswordRepeat: passwordRepeat}

	return c.doJSON(ctx, http.MethodPost, usersPath, nil, in, nil)
}

func (c *HTTPClient) UpdateUser(ctx context.Context, username string, update models.UserUpdate) (*models.User, error) {
	var out models.User
	if err := c.doJSON(ctx, http.MethodPut, usersPath+"/"+url.PathEscape(username), nil, update, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetBooks(ctx context.Context, user string, page int) (*models.BookPage, error) {
	q := feedQuery(user)
	q.Set("page", strconv.Itoa(page))

	var out models.BookPage
	if err := c.doJSON(ctx, http.MethodGet, booksPath, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetBooksBefore(ctx context.Context, user string, id int64) (*models.BookPage, error) {
	q := feedQuery(user)
	q.Set("before", strconv.FormatInt(id, 10))

	var out models.BookPage
	if err := c.doJSON(ctx, http.MethodGet, booksPath, q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetBooksAfter(ctx context.Context, user string, id int64) ([]models.Book, error) {
	q := feedQuery(user)
	q.Set("after", strconv.FormatInt(id, 10))

	var out []models.Book
	if err := c.doJSON(ctx, http.MethodGet, booksPath, q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) CountBooksAfter(ctx context.Context, user string, id int64) (int64, error) {
	q := feedQuery(user)
	q.Set("after", strconv.FormatInt(id, 10))
	q.Set("count", "true")

	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.doJSON(ctx, http.MethodGet, booksPath, q, nil, &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (c *HTTPClient) SubmitBook(ctx context.Context, submission models.BookSubmission) (*models.Book, error) {
	var out models.Book
	if err := c.doJSON(ctx, http.MethodPost, booksPath, nil, submission, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) UploadAttachment(ctx context.Context, name string, data []byte) (*models.Attachment, error) {
	q := url.Values{}
	q.Set("name", name)

	var out models.Attachment
	if err := c.do(ctx, http.MethodPost, attachmentsPath, q, bytes.NewReader(data), "application/octet-stream", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) DeleteBook(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, booksPath+"/"+strconv.FormatInt(id, 10), nil, nil, nil)
}
