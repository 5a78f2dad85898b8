package gateway

import (
	"context"
	"net/url"
)

// FileFilter narrows a file listing. At most one of the fields is used.
type FileFilter struct {
	ThreadID  string
	MessageID string
}

// FileUpload carries the content and associations of an upload.
type FileUpload struct {
	Filename  string
	Content   []byte
	ThreadID  string
	MessageID string
}

// DownloadURL is the presigned location of a stored file.
type DownloadURL struct {
	URL       string `json:"url"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
}

// ListFiles fetches file records matching the filter.
func (c *Client) ListFiles(ctx context.Context, filter FileFilter) ([]Attachment, error) {
	query := url.Values{}
	if filter.ThreadID != "" {
		query.Set("thread_id", filter.ThreadID)
	}
	if filter.MessageID != "" {
		query.Set("message_id", filter.MessageID)
	}
	return getList[Attachment](ctx, c, "/files", query)
}

// GetFile fetches a single file record.
func (c *Client) GetFile(ctx context.Context, id string) (Attachment, error) {
	var file Attachment
	err := c.getJSON(ctx, "/files/"+url.PathEscape(id), nil, &file)
	return file, err
}

// UploadFile stores a file via multipart form. The message association is
// optional because the message id is only known after the message exists.
func (c *Client) UploadFile(ctx context.Context, upload FileUpload) (Attachment, error) {
	fields := map[string]string{}
	if upload.ThreadID != "" {
		fields["thread_id"] = upload.ThreadID
	}
	if upload.MessageID != "" {
		fields["message_id"] = upload.MessageID
	}
	var file Attachment
	err := c.postMultipart(ctx, "/files", fields, "file", upload.Filename, upload.Content, &file)
	return file, err
}

// DeleteFile removes a stored file.
func (c *Client) DeleteFile(ctx context.Context, id string) error {
	return c.delete(ctx, "/files/"+url.PathEscape(id))
}

// GetDownloadURL requests a presigned download location.
func (c *Client) GetDownloadURL(ctx context.Context, id string) (DownloadURL, error) {
	var dl DownloadURL
	err := c.sendJSON(ctx, "POST", "/files/"+url.PathEscape(id)+"/download-url", nil, &dl)
	return dl, err
}
