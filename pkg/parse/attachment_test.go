package parse

import (
	"context"
	"errors"
	"testing"

	"modcmd/pkg/platform"
	"modcmd/pkg/platform/platformtest"
)

func TestAttachmentParser(t *testing.T) {
	cc := testContext()
	att := &platformtest.Attachment{
		AttachmentID: "600",
		Name:         "notes.txt",
		Bytes:        10,
		Link:         "https://example.test/notes.txt",
		Type:         "text/plain",
	}

	got, err := Attachment().Parse(context.Background(), cc, att)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got.ID() != "600" {
		t.Errorf("Expected attachment 600, got %s", got.ID())
	}

	if _, err := Attachment().Parse(context.Background(), cc, "not a file"); err == nil {
		t.Error("Expected rejection for non-attachment value")
	}
}

func TestAttachmentSizeCheckedBeforeFetch(t *testing.T) {
	cc := testContext()
	att := &platformtest.Attachment{Name: "big.bin", Bytes: 2048, Link: "https://example.test/big.bin"}

	fetched := false
	p := AttachmentData().MaxSize(1024).Fetcher(func(ctx context.Context, att platform.Attachment) ([]byte, error) {
		fetched = true
		return nil, nil
	})

	_, err := p.Parse(context.Background(), cc, att)
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected rejection for oversized file, got %v", err)
	}
	if fetched {
		t.Error("Oversized file must be rejected before any download")
	}
}

func TestAttachmentData(t *testing.T) {
	cc := testContext()
	att := &platformtest.Attachment{Name: "data.bin", Bytes: 3, Link: "https://example.test/data.bin"}

	p := AttachmentData().Fetcher(func(ctx context.Context, att platform.Attachment) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	})
	data, err := p.Parse(context.Background(), cc, att)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(data) != 3 {
		t.Errorf("Expected 3 bytes, got %d", len(data))
	}
}

func TestAttachmentFetchError(t *testing.T) {
	cc := testContext()
	att := &platformtest.Attachment{Name: "gone.txt", Bytes: 1, Link: "https://example.test/gone.txt"}

	p := AttachmentData().Fetcher(func(ctx context.Context, att platform.Attachment) ([]byte, error) {
		return nil, &FetchError{URL: att.URL(), Status: 404}
	})
	_, err := p.Parse(context.Background(), cc, att)
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected fetch error, got %v", err)
	}
	if fetchErr.Status != 404 {
		t.Errorf("Expected status 404, got %d", fetchErr.Status)
	}
}

func TestTextFile(t *testing.T) {
	cc := testContext()
	att := &platformtest.Attachment{Name: "notes.txt", Bytes: 5, Link: "https://example.test/notes.txt"}

	p := TextFile().Fetcher(func(ctx context.Context, att platform.Attachment) ([]byte, error) {
		return []byte("hello"), nil
	})
	text, err := p.Parse(context.Background(), cc, att)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if text != "hello" {
		t.Errorf("Expected %q, got %q", "hello", text)
	}

	binary := TextFile().Fetcher(func(ctx context.Context, att platform.Attachment) ([]byte, error) {
		return []byte{0xff, 0xfe, 0x00}, nil
	})
	_, err = binary.Parse(context.Background(), cc, att)
	var invalid *InvalidArgumentError
	if !errors.As(err, &invalid) {
		t.Fatalf("Expected rejection for non-text contents, got %v", err)
	}
}
