package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sync"
	"testing"

	"github.com/rcm-webdev/the-shop/models"
	"github.com/rcm-webdev/the-shop/pkg/inference"
)

// fakeStore counts uploads/destroys and can fail selected filenames.
type fakeStore struct {
	mu        sync.Mutex
	uploads   int
	destroyed []string
	failNames map[string]bool
}

func (s *fakeStore) Upload(_ context.Context, filename string, _ io.Reader, _ int64, _ string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNames[filename] {
		return "", "", errors.New("upload refused")
	}
	s.uploads++
	id := fmt.Sprintf("obj-%s", filename)
	return "http://media.local/" + id, id, nil
}

func (s *fakeStore) Destroy(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNames[publicID] {
		return errors.New("destroy refused")
	}
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

func fileHeader(name string) *multipart.FileHeader {
	return &multipart.FileHeader{Filename: name, Header: textproto.MIMEHeader{}}
}

func stubRecognizer(t *testing.T) func() {
	t.Helper()
	prev := recognizeCard
	recognizeCard = func(context.Context, []byte) inference.Envelope {
		return inference.Envelope{Status: "failed"}
	}
	return func() { recognizeCard = prev }
}

func TestUploadBothCards(t *testing.T) {
	defer stubRecognizer(t)()
	store := &fakeStore{}
	front, back, err := uploadBothCards(context.Background(), store,
		fileHeader("front.jpg"), fileHeader("back.jpg"),
		[]byte("f"), []byte("b"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if front.PublicID != "obj-front.jpg" || back.PublicID != "obj-back.jpg" {
		t.Fatalf("ids = %q, %q", front.PublicID, back.PublicID)
	}
	if store.uploads != 2 {
		t.Fatalf("expected 2 uploads got %d", store.uploads)
	}
	if len(store.destroyed) != 0 {
		t.Fatalf("unexpected destroys: %v", store.destroyed)
	}
}

func TestUploadBothCardsCompensatesPartialFailure(t *testing.T) {
	defer stubRecognizer(t)()
	store := &fakeStore{failNames: map[string]bool{"back.jpg": true}}
	_, _, err := uploadBothCards(context.Background(), store,
		fileHeader("front.jpg"), fileHeader("back.jpg"),
		[]byte("f"), []byte("b"))
	if err == nil {
		t.Fatalf("expected error")
	}
	// The successfully stored front object must have been rolled back.
	if len(store.destroyed) != 1 || store.destroyed[0] != "obj-front.jpg" {
		t.Fatalf("expected compensating destroy of front object, got %v", store.destroyed)
	}
}

func TestDestroyCardMediaBothObjects(t *testing.T) {
	store := &fakeStore{}
	post := &models.Post{FrontImageMediaID: "front-id", BackImageMediaID: "back-id"}
	if err := destroyCardMedia(context.Background(), store, post); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.destroyed) != 2 {
		t.Fatalf("expected exactly 2 destroys got %v", store.destroyed)
	}
}

func TestDestroyCardMediaReportsFailure(t *testing.T) {
	store := &fakeStore{failNames: map[string]bool{"front-id": true}}
	post := &models.Post{FrontImageMediaID: "front-id", BackImageMediaID: "back-id"}
	if err := destroyCardMedia(context.Background(), store, post); err == nil {
		t.Fatalf("expected error when one destroy fails")
	}
	// The other destroy is still attempted.
	if len(store.destroyed) != 1 || store.destroyed[0] != "back-id" {
		t.Fatalf("destroyed = %v", store.destroyed)
	}
}

func TestReadFormImageRejectsUnsupportedType(t *testing.T) {
	if _, err := readFormImage(fileHeader("notes.txt")); err == nil {
		t.Fatalf("expected unsupported-type error")
	}
}
