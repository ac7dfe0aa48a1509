package parse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"modcmd/pkg/access"
	"modcmd/pkg/platform"
)

// FetchFunc downloads the contents of an attachment. Injectable so hosts can
// reuse their HTTP client and tests can avoid the network.
type FetchFunc func(ctx context.Context, att platform.Attachment) ([]byte, error)

// FetchError indicates that downloading an attachment failed.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetching attachment %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetching attachment %s: status %d", e.URL, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// DefaultFetch downloads attachment contents with the default HTTP client.
func DefaultFetch(ctx context.Context, att platform.Attachment) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL(), nil)
	if err != nil {
		return nil, &FetchError{URL: att.URL(), Err: err}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: att.URL(), Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: att.URL(), Status: resp.StatusCode}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: att.URL(), Err: err}
	}
	return data, nil
}

// AttachmentParser parses attachment arguments, optionally downloading their
// contents. The size limit is checked against the reported size before any
// download happens.
type AttachmentParser[T any] struct {
	maxSize int
	fetch   FetchFunc
	convert func(ctx context.Context, cc access.Context, att platform.Attachment, data []byte) (T, error)
}

// Attachment creates a parser that yields the attachment itself, without
// downloading it.
func Attachment() *AttachmentParser[platform.Attachment] {
	return AttachmentFunc(func(ctx context.Context, cc access.Context, att platform.Attachment, data []byte) (platform.Attachment, error) {
		return att, nil
	})
}

// AttachmentData creates a parser that downloads the attachment and yields
// its raw contents.
func AttachmentData() *AttachmentParser[[]byte] {
	p := AttachmentFunc(func(ctx context.Context, cc access.Context, att platform.Attachment, data []byte) ([]byte, error) {
		return data, nil
	})
	p.fetch = DefaultFetch
	return p
}

// TextFile creates a parser that downloads the attachment and yields its
// contents as text. Rejects contents that are not valid UTF-8.
func TextFile() *AttachmentParser[string] {
	p := AttachmentFunc(func(ctx context.Context, cc access.Context, att platform.Attachment, data []byte) (string, error) {
		if !utf8.Valid(data) {
			return "", Invalidf("file %s is not a text file", att.Filename())
		}
		return string(data), nil
	})
	p.fetch = DefaultFetch
	return p
}

// AttachmentFunc creates an attachment parser with a custom conversion over
// the attachment and its contents. The contents are nil unless a fetcher is
// set with Fetcher.
func AttachmentFunc[T any](fn func(ctx context.Context, cc access.Context, att platform.Attachment, data []byte) (T, error)) *AttachmentParser[T] {
	return &AttachmentParser[T]{convert: fn}
}

// MaxSize sets the largest accepted attachment size in bytes.
func (p *AttachmentParser[T]) MaxSize(n int) *AttachmentParser[T] {
	p.maxSize = n
	return p
}

// Fetcher overrides how attachment contents are downloaded.
func (p *AttachmentParser[T]) Fetcher(fetch FetchFunc) *AttachmentParser[T] {
	p.fetch = fetch
	return p
}

// Parse implements Parser.
func (p *AttachmentParser[T]) Parse(ctx context.Context, cc access.Context, raw Value) (T, error) {
	var zero T
	att, err := toAttachment(raw)
	if err != nil {
		return zero, err
	}
	if p.maxSize > 0 && att.Size() > p.maxSize {
		return zero, Invalidf("file %s is %d bytes, above the limit of %d", att.Filename(), att.Size(), p.maxSize)
	}
	var data []byte
	if p.fetch != nil {
		data, err = p.fetch(ctx, att)
		if err != nil {
			return zero, err
		}
	}
	return p.convert(ctx, cc, att, data)
}
