package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/saveeat/saveeat-client/internal/netx"
)

// UploadDocument sends a verification document as multipart/form-data with
// the parts "file", "type" and "commentaire".
func (c *HTTPClient) UploadDocument(ctx context.Context, doc DocumentPart) error {
	body, contentType, err := netx.MultipartBody(
		[]netx.FormField{
			{Name: "type", Value: string(doc.Type)},
			{Name: "commentaire", Value: doc.Comment},
		},
		netx.FilePart{Field: "file", FileName: doc.FileName, ContentType: doc.ContentType, Content: doc.Content},
	)
	if err != nil {
		return fmt.Errorf("build upload body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", nil, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)

	_, err = c.send(req, "/upload")
	return err
}
