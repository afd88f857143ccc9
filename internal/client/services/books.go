package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"libapp/internal/client/api"
	"libapp/internal/client/models"
	"libapp/internal/logging"
)

// BookService handles book submission: the optional attachment is uploaded
// first, then the book references it by id.
type BookService struct {
	client api.Client
	log    logging.Logger
}

func NewBookService(client api.Client, log logging.Logger) *BookService {
	return &BookService{client: client, log: log.With("component", "books")}
}

// Submit creates a book with the given content. attachmentPath, when
// non-empty, names a local file to upload and reference.
func (s *BookService) Submit(ctx context.Context, content, attachmentPath string) (*models.Book, error) {
	var attachmentID int64

	if attachmentPath != "" {
		data, err := os.ReadFile(attachmentPath)
		if err != nil {
			return nil, fmt.Errorf("reading attachment: %w", err)
		}
		att, err := s.client.UploadAttachment(ctx, filepath.Base(attachmentPath), data)
		if err != nil {
			return nil, fmt.Errorf("uploading attachment: %w", err)
		}
		attachmentID = att.ID
	}

	book, err := s.client.SubmitBook(ctx, models.BookSubmission{Content: content, AttachmentID: attachmentID})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "book submitted", "id", book.ID)
	return book, nil
}
