package vk

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/MaximVasilkin/simple-congratulator-vk-bot/pkg/errors"
)

// Photo is a saved message photo.
type Photo struct {
	ID        int64  `json:"id"`
	OwnerID   int64  `json:"owner_id"`
	AccessKey string `json:"access_key"`
}

// Attachment formats p for the attachment parameter of messages.send.
func (p Photo) Attachment() string {
	if p.AccessKey == "" {
		return fmt.Sprintf("photo%d_%d", p.OwnerID, p.ID)
	}
	return fmt.Sprintf("photo%d_%d_%s", p.OwnerID, p.ID, p.AccessKey)
}

type uploadServer struct {
	UploadURL string `json:"upload_url"`
}

type uploadedPhoto struct {
	Server int    `json:"server"`
	Photo  string `json:"photo"`
	Hash   string `json:"hash"`
}

// PhotoUploader uploads postcards as message photos. It implements
// upload.Uploader with the destination being a peer id.
type PhotoUploader struct {
	client *Client
}

// NewPhotoUploader creates an uploader using client.
func NewPhotoUploader(client *Client) *PhotoUploader {
	return &PhotoUploader{client: client}
}

// Upload runs the three-step upload and returns the attachment string.
func (u *PhotoUploader) Upload(ctx context.Context, image []byte, destination string) (string, error) {
	peer, err := strconv.ParseInt(destination, 10, 64)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUpload, err, "destination %q is not a peer id", destination)
	}
	photo, err := u.UploadPhoto(ctx, image, peer)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUpload, err, "upload photo for peer %d", peer)
	}
	return photo.Attachment(), nil
}

// UploadPhoto uploads a JPEG for peer and returns the saved photo.
func (u *PhotoUploader) UploadPhoto(ctx context.Context, image []byte, peer int64) (Photo, error) {
	var srv uploadServer
	err := u.client.Call(ctx, "photos.getMessagesUploadServer",
		url.Values{"peer_id": {strconv.FormatInt(peer, 10)}}, &srv)
	if err != nil {
		return Photo{}, err
	}

	up, err := u.post(ctx, srv.UploadURL, image)
	if err != nil {
		return Photo{}, err
	}
	if up.Photo == "" || up.Photo == "[]" {
		return Photo{}, errors.New(errors.ErrCodeNetwork, "upload server rejected the photo")
	}

	var saved []Photo
	err = u.client.Call(ctx, "photos.saveMessagesPhoto", url.Values{
		"server": {strconv.Itoa(up.Server)},
		"photo":  {up.Photo},
		"hash":   {up.Hash},
	}, &saved)
	if err != nil {
		return Photo{}, err
	}
	if len(saved) == 0 {
		return Photo{}, errors.New(errors.ErrCodeNetwork, "photos.saveMessagesPhoto returned no photos")
	}
	return saved[0], nil
}

func (u *PhotoUploader) post(ctx context.Context, target string, image []byte) (uploadedPhoto, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("photo", "postcard.jpg")
	if err != nil {
		return uploadedPhoto{}, err
	}
	if _, err := part.Write(image); err != nil {
		return uploadedPhoto{}, err
	}
	if err := w.Close(); err != nil {
		return uploadedPhoto{}, err
	}

	var out uploadedPhoto
	err = retry(ctx, retryAttempts, u.client.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body.Bytes()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", w.FormDataContentType())
		return u.client.do(req, &out)
	})
	if err != nil {
		return uploadedPhoto{}, errors.WrapKeep(errors.ErrCodeNetwork, err, "post photo")
	}
	return out, nil
}
