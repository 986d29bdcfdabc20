package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/niksmo/ecom-admin/internal/core/domain"
	"github.com/niksmo/ecom-admin/internal/core/port"
)

var (
	_ port.AuthClient = (*Client)(nil)
	_ port.Uploader   = (*Client)(nil)
)

const DefaultUploadFolder = "theglowrystudio"

var errNoUploadURL = errors.New("no url in upload response")

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (domain.SessionState, error) {
	const op = "Client.Login"

	body, err := c.do(ctx, op, request{
		method: http.MethodPost,
		path:   "/admin/login",
		body: map[string]string{
			"email":    creds.Email,
			"password": creds.Password,
		},
		public: true,
	})
	if err != nil {
		return domain.SessionState{}, err
	}

	d, err := decodeSingle[loginDTO](body, "")
	if err != nil {
		return domain.SessionState{}, &domain.RequestError{Op: op, Err: err}
	}
	return d.toDomain(), nil
}

func (c *Client) Profile(ctx context.Context) (domain.Admin, error) {
	const op = "Client.Profile"

	body, err := c.do(ctx, op, request{method: http.MethodGet, path: "/admin/me"})
	if err != nil {
		return domain.Admin{}, err
	}
	d, err := decodeSingle[adminDTO](body, "admin")
	if err != nil {
		return domain.Admin{}, &domain.RequestError{Op: op, Err: err}
	}
	return d.toDomain(), nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	const op = "Client.ChangePassword"

	_, err := c.do(ctx, op, request{
		method: http.MethodPost,
		path:   "/admin/change-password",
		body: map[string]string{
			"currentPassword": current,
			"newPassword":     next,
		},
	})
	return err
}

// UploadImage sends one image and returns its public URL.
func (c *Client) UploadImage(
	ctx context.Context, filename string, r io.Reader, folder string,
) (string, error) {
	const op = "Client.UploadImage"

	if folder == "" {
		folder = DefaultUploadFolder
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", filepath.Base(filename))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(fw, r); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.WriteField("folder", folder); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	body, err := c.do(ctx, op, request{
		method:      http.MethodPost,
		path:        "/upload/image",
		raw:         &buf,
		contentType: mw.FormDataContentType(),
	})
	if err != nil {
		return "", err
	}

	d, err := decodeSingle[struct {
		URL string `json:"url"`
	}](body, "image")
	if err != nil {
		return "", &domain.RequestError{Op: op, Err: err}
	}
	if d.URL == "" {
		return "", &domain.RequestError{Op: op, Err: errNoUploadURL}
	}
	return d.URL, nil
}
