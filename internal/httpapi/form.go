package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"socloud/internal/apperr"
	"socloud/internal/models"
)

const (
	maxJSONBytes      = 1 << 20
	maxFormFieldBytes = 1 << 20
	sniffLen          = 512
)

// uploadPolicy describes the single file a form may carry.
type uploadPolicy struct {
	field    string
	maxBytes int64
	allowed  []string
	sniff    bool
}

var (
	picturePolicy = &uploadPolicy{
		field:    "picture",
		maxBytes: 5 << 20,
		allowed:  []string{"image/jpeg", "image/png", "image/gif", "image/bmp", "image/webp"},
		sniff:    true,
	}
	audioPolicy = &uploadPolicy{
		field:    "audio",
		maxBytes: 2 << 20,
		allowed: []string{
			"audio/mpeg", "audio/aac", "audio/midi", "audio/x-midi",
			"audio/ogg", "audio/opus", "audio/wav", "audio/webm",
		},
	}
)

// requestForm gives uniform access to the fields of a JSON body or a
// multipart form, plus the optional file of a multipart form.
type requestForm struct {
	values map[string][]string
	raw    map[string]json.RawMessage
	file   *models.Upload
	closer func()
}

// readForm parses r as multipart/form-data when it says so and as JSON
// otherwise. policy may be nil when the route accepts no file. Callers must
// Close the returned form.
func readForm(w http.ResponseWriter, r *http.Request, policy *uploadPolicy) (*requestForm, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return readMultipart(w, r, policy)
	}

	form := &requestForm{raw: map[string]json.RawMessage{}}
	if r.Body == nil {
		return form, nil
	}
	body := http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(body).Decode(&form.raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: invalid JSON payload", apperr.ErrValidation)
	}
	return form, nil
}

func readMultipart(w http.ResponseWriter, r *http.Request, policy *uploadPolicy) (*requestForm, error) {
	limit := int64(maxFormFieldBytes)
	if policy != nil {
		limit += policy.maxBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: request exceeds %d bytes", ErrInvalidUpload, limit)
		}
		return nil, fmt.Errorf("%w: invalid multipart form", apperr.ErrValidation)
	}

	form := &requestForm{
		values: r.MultipartForm.Value,
		closer: func() { _ = r.MultipartForm.RemoveAll() },
	}
	if policy == nil {
		return form, nil
	}

	file, header, err := r.FormFile(policy.field)
	if errors.Is(err, http.ErrMissingFile) {
		return form, nil
	}
	if err != nil {
		form.Close()
		return nil, fmt.Errorf("%w: unreadable %s file", apperr.ErrValidation, policy.field)
	}

	upload, err := policy.check(file, header)
	if err != nil {
		_ = file.Close()
		form.Close()
		return nil, err
	}

	removeAll := form.closer
	form.file = upload
	form.closer = func() {
		_ = file.Close()
		removeAll()
	}
	return form, nil
}

// check enforces the size and content type rules of p.
func (p *uploadPolicy) check(file multipart.File, header *multipart.FileHeader) (*models.Upload, error) {
	if header.Size > p.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidUpload, p.field, p.maxBytes)
	}

	contentType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if !slices.Contains(p.allowed, contentType) {
		return nil, fmt.Errorf("%w: %s type %q is not allowed", ErrInvalidUpload, p.field, contentType)
	}

	if p.sniff {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(file, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: unreadable %s file", apperr.ErrValidation, p.field)
		}
		if detected := http.DetectContentType(head[:n]); detected != contentType {
			return nil, fmt.Errorf("%w: %s content does not match %q", ErrInvalidUpload, p.field, contentType)
		}
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("%w: unreadable %s file", apperr.ErrValidation, p.field)
		}
	}

	return &models.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, nil
}

// Close releases the temporary files of a multipart form.
func (f *requestForm) Close() {
	if f.closer != nil {
		f.closer()
		f.closer = nil
	}
}

// upload returns the validated file, or nil when none was sent.
func (f *requestForm) upload() *models.Upload {
	return f.file
}

// str returns the string field key. A JSON null counts as absent.
func (f *requestForm) str(key string) (models.Optional[string], error) {
	if f.values != nil {
		if v, ok := f.values[key]; ok && len(v) > 0 {
			return models.Some(v[0]), nil
		}
		return models.Optional[string]{}, nil
	}

	raw, ok := f.raw[key]
	if !ok || isNull(raw) {
		return models.Optional[string]{}, nil
	}
	var out models.Optional[string]
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %s must be a string", apperr.ErrValidation, key)
	}
	return out, nil
}

// integer returns the integer field key.
func (f *requestForm) integer(key string) (models.Optional[int], error) {
	if f.values != nil {
		v, ok := f.values[key]
		if !ok || len(v) == 0 {
			return models.Optional[int]{}, nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v[0]))
		if err != nil {
			return models.Optional[int]{}, fmt.Errorf("%w: %s must be an integer", apperr.ErrValidation, key)
		}
		return models.Some(n), nil
	}

	raw, ok := f.raw[key]
	if !ok || isNull(raw) {
		return models.Optional[int]{}, nil
	}
	var out models.Optional[int]
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%w: %s must be an integer", apperr.ErrValidation, key)
	}
	return out, nil
}

// bindStrings copies every present field named in dst into its target.
func (f *requestForm) bindStrings(dst map[string]*string) error {
	for key, target := range dst {
		v, err := f.str(key)
		if err != nil {
			return err
		}
		if s, ok := v.Get(); ok {
			*target = s
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
