package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/media"
)

const (
	maxBodyBytes   = 10 << 20
	photoField     = "photo"
	deletePhotoKey = "delete_photo"
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml", "image/avif"}

// payload is a parsed request body. Multipart, urlencoded and JSON bodies all end
// up as url.Values so handlers read fields the same way regardless of encoding.
type payload struct {
	values url.Values
	photo  *media.Blob
	file   multipart.File
	form   *multipart.Form
}

// parsePayload reads the body of r under the 10 MiB limit.
func parsePayload(w http.ResponseWriter, r *http.Request) (*payload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	p := &payload{values: url.Values{}}
	switch mediaType {
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, bodyError("multipart", err)
		}
		p.form = r.MultipartForm
		p.values = r.MultipartForm.Value
		if err := p.attachPhoto(r); err != nil {
			p.Close()
			return nil, err
		}
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, bodyError("form", err)
		}
		p.values = r.PostForm
	case "application/json":
		values, err := decodeJSONValues(r.Body)
		if err != nil {
			return nil, err
		}
		p.values = values
	case "":
		// bodyless requests (DELETE, logout) carry no payload
	default:
		return nil, errs.NewMalformedPayloadError(mediaType, fmt.Errorf("unsupported content type %q", mediaType))
	}

	return p, nil
}

func bodyError(kind string, err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
		return errs.NewMaxBodySizeExceededError(maxBodyBytes)
	}
	return errs.NewMalformedPayloadError(kind, err)
}

func (p *payload) attachPhoto(r *http.Request) error {
	file, header, err := r.FormFile(photoField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil
	}
	if err != nil {
		return errs.NewMalformedPayloadError("multipart", err)
	}
	if header.Size == 0 {
		_ = file.Close()
		return nil
	}

	contentType, err := sniffContentType(file, header)
	if err != nil {
		_ = file.Close()
		return errs.NewMalformedPayloadError("multipart", err)
	}
	if !isAllowedImage(contentType) {
		_ = file.Close()
		return errs.NewUnsupportedMediaError(contentType, allowedImageTypes)
	}

	p.file = file
	p.photo = &media.Blob{
		Reader:      file,
		Size:        header.Size,
		Filename:    header.Filename,
		ContentType: contentType,
	}
	return nil
}

// sniffContentType prefers the declared part type and falls back to the first 512 bytes.
func sniffContentType(file multipart.File, header *multipart.FileHeader) (string, error) {
	if declared, _, err := mime.ParseMediaType(header.Header.Get("Content-Type")); err == nil && declared != "application/octet-stream" {
		return declared, nil
	}
	buf := make([]byte, 512)
	n, err := file.Read(buf)
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(buf[:n]), nil
}

func isAllowedImage(contentType string) bool {
	for _, allowed := range allowedImageTypes {
		if contentType == allowed {
			return true
		}
	}
	return false
}

// decodeJSONValues flattens a JSON object: arrays become repeated values and
// scalars are formatted as strings.
func decodeJSONValues(body io.Reader) (url.Values, error) {
	var raw map[string]any
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return url.Values{}, nil
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, errs.NewMaxBodySizeExceededError(maxBodyBytes)
		}
		return nil, errs.NewInvalidJSONError(err)
	}

	values := url.Values{}
	for key, v := range raw {
		switch typed := v.(type) {
		case nil:
			values[key] = []string{""}
		case []any:
			list := make([]string, 0, len(typed))
			for _, item := range typed {
				list = append(list, jsonScalar(item))
			}
			values[key] = list
		default:
			values.Set(key, jsonScalar(typed))
		}
	}
	return values, nil
}

func jsonScalar(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case map[string]any:
		// jobdesk objects may arrive as {"description": "..."}
		if d, ok := typed["description"].(string); ok {
			return d
		}
		b, _ := json.Marshal(typed)
		return string(b)
	default:
		return fmt.Sprint(typed)
	}
}

// Close releases the uploaded file and any temp files of the multipart form.
func (p *payload) Close() {
	if p.file != nil {
		_ = p.file.Close()
	}
	if p.form != nil {
		_ = p.form.RemoveAll()
	}
}

func (p *payload) has(key string) bool {
	_, ok := p.values[key]
	return ok
}

func (p *payload) get(key string) string {
	return strings.TrimSpace(p.values.Get(key))
}

// optional returns nil when the key was not sent at all.
func (p *payload) optional(key string) *string {
	if !p.has(key) {
		return nil
	}
	v := p.get(key)
	return &v
}

// list returns the non-empty trimmed values sent under key.
func (p *payload) list(key string) []string {
	out := make([]string, 0, len(p.values[key]))
	for _, v := range p.values[key] {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func (p *payload) flag(key string) bool {
	v, err := strconv.ParseBool(p.get(key))
	return err == nil && v
}

// queryID reads the first of keys present in the query string as a UUID v4.
func queryID(r *http.Request, keys ...string) (uuid.UUID, error) {
	q := r.URL.Query()
	for _, key := range keys {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		if !IsUUIDv4(raw) {
			return uuid.Nil, errs.NewInvalidIDError(key)
		}
		return uuid.Parse(raw)
	}
	return uuid.Nil, errs.NewMissingRequiredFieldError(keys[0])
}

// statusBody is the JSON body of a status patch.
type statusBody struct {
	Status string `json:"status"`
}

func decodeStatus(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var body statusBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return "", errs.NewInvalidJSONError(err)
	}
	if strings.TrimSpace(body.Status) == "" {
		return "", errs.NewMissingRequiredFieldError("status")
	}
	return body.Status, nil
}
