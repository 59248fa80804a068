package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saveeat/saveeat-client/internal/client/client"
	"github.com/saveeat/saveeat-client/internal/client/models"
	"github.com/saveeat/saveeat-client/internal/filex"
	"github.com/saveeat/saveeat-client/internal/logging"
)

// MaxDocumentSize caps verification uploads.
const MaxDocumentSize = 10 << 20

// AcceptedDocumentTypes are the detected MIME types the server accepts.
var AcceptedDocumentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

// DocumentService sends identity and business verification documents.
type DocumentService interface {
	Upload(ctx context.Context, doc models.DocumentUpload) error
}

type documentService struct {
	client client.Client
	log    logging.Logger
}

func NewDocumentService(c client.Client, log logging.Logger) DocumentService {
	if log == nil {
		log = logging.Nop()
	}
	return &documentService{client: c, log: log.With("component", "documents")}
}

// Upload checks the document type and the file before streaming it to the
// server.
func (s *documentService) Upload(ctx context.Context, doc models.DocumentUpload) error {
	if !doc.Type.Valid() {
		return invalid("document type", fmt.Sprintf("%q is not one of identity, kbis, association_statute, other", doc.Type))
	}
	if doc.Path == "" {
		return invalid("file", "path must not be empty")
	}

	size, err := filex.RegularFile(doc.Path)
	if err != nil {
		return invalid("file", err.Error())
	}
	if size == 0 {
		return invalid("file", "file is empty")
	}
	if size > MaxDocumentSize {
		return invalid("file", fmt.Sprintf("larger than %d MiB", MaxDocumentSize>>20))
	}

	mtype, err := mimetype.DetectFile(doc.Path)
	if err != nil {
		return fmt.Errorf("detect document type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), AcceptedDocumentTypes...) {
		return invalid("file", fmt.Sprintf("%s files are not accepted, send a PDF, JPEG or PNG", mtype.String()))
	}

	f, err := os.Open(doc.Path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer f.Close()

	err = s.client.UploadDocument(ctx, client.DocumentPart{
		FileName:    filepath.Base(doc.Path),
		ContentType: mtype.String(),
		Content:     f,
		Type:        doc.Type,
		Comment:     doc.Comment,
	})
	if err != nil {
		s.log.Warn(ctx, "document upload failed", "type", doc.Type, "error", err)
		return err
	}

	s.log.Info(ctx, "document uploaded", "type", doc.Type, "size", size, "mime", mtype.String())
	return nil
}
