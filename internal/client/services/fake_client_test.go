package services

import (
	"context"
	"sync"

	"libapp/internal/client/api"
	"libapp/internal/client/models"
)

// fakeClient implements api.Client for service tests. Return values are
// programmable per method; calls and credential changes are recorded.
type fakeClient struct {
	mu sync.Mutex

	progress       *api.Progress
	onUnauthorized func()

	// recorded state
	credentials []string
	countedIDs  []int64
	deletedIDs  []int64
	pageCalls   int

	// programmed behavior
	loginResp   *models.AuthResponse
	loginErr    error
	registerErr error
	updateResp  *models.User
	updateErr   error

	page      *models.BookPage
	pageErr   error
	before    *models.BookPage
	beforeErr error
	after     []models.Book
	afterErr  error
	count     int64
	countErr  error

	submitResp *models.Book
	submitErr  error
	uploadResp *models.Attachment
	uploadErr  error
	deleteErr  error

	// pageBlock/countBlock, when non-nil, make the corresponding call wait
	// until the channel is closed. pageEntered/countEntered signal entry.
	pageBlock    chan struct{}
	pageEntered  chan struct{}
	countBlock   chan struct{}
	countEntered chan struct{}
}

var _ api.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{progress: api.NewProgress()}
}

func (f *fakeClient) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginResp, nil
}

func (f *fakeClient) Register(ctx context.Context, username, password, passwordRepeat string) error {
	return f.registerErr
}

func (f *fakeClient) UpdateUser(ctx context.Context, username string, update models.UserUpdate) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateResp, nil
}

func (f *fakeClient) GetBooks(ctx context.Context, user string, page int) (*models.BookPage, error) {
	f.mu.Lock()
	f.pageCalls++
	entered, block := f.pageEntered, f.pageBlock
	resp, err := f.page, f.pageErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return copyPage(resp), nil
}

func (f *fakeClient) GetBooksBefore(ctx context.Context, user string, id int64) (*models.BookPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.beforeErr != nil {
		return nil, f.beforeErr
	}
	return copyPage(f.before), nil
}

func (f *fakeClient) GetBooksAfter(ctx context.Context, user string, id int64) ([]models.Book, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.afterErr != nil {
		return nil, f.afterErr
	}
	return append([]models.Book(nil), f.after...), nil
}

func (f *fakeClient) CountBooksAfter(ctx context.Context, user string, id int64) (int64, error) {
	f.mu.Lock()
	f.countedIDs = append(f.countedIDs, id)
	entered, block := f.countEntered, f.countBlock
	count, err := f.count, f.countErr
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	return count, err
}

func (f *fakeClient) SubmitBook(ctx context.Context, submission models.BookSubmission) (*models.Book, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResp, nil
}

func (f *fakeClient) UploadAttachment(ctx context.Context, name string, data []byte) (*models.Attachment, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.uploadResp, nil
}

func (f *fakeClient) DeleteBook(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedIDs = append(f.deletedIDs, id)
	return nil
}

func (f *fakeClient) SetCredential(value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.credentials = append(f.credentials, value)
}

func (f *fakeClient) SetUnauthorizedHandler(fn func()) {
	f.onUnauthorized = fn
}

func (f *fakeClient) Progress() *api.Progress {
	return f.progress
}

func (f *fakeClient) lastCredential() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.credentials) == 0 {
		return ""
	}
	return f.credentials[len(f.credentials)-1]
}

func (f *fakeClient) counted() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int64(nil), f.countedIDs...)
}

func copyPage(p *models.BookPage) *models.BookPage {
	if p == nil {
		return &models.BookPage{Last: true}
	}
	cp := *p
	cp.Content = append([]models.Book(nil), p.Content...)
	return &cp
}
