package main

import (
	"bytes"
	"context"
	"encoding/json"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"deckscan/pkg/ocr"
	"deckscan/pkg/scryfall"

	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
)

func performRequest(r http.Handler, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

// stubMethod returns a fixed deck so handler tests run without tesseract or
// network access.
type stubMethod struct {
	cards []ocr.Card
}

func (s *stubMethod) Name() string    { return "stub" }
func (s *stubMethod) Available() bool { return true }
func (s *stubMethod) Extract(ctx context.Context, req *ocr.Request) (*ocr.Extraction, error) {
	return &ocr.Extraction{Cards: s.cards, Confidence: 0.9, Method: s.Name()}, nil
}

func fullDeck() []ocr.Card {
	cards := []ocr.Card{{Name: "Mountain", Quantity: 40, Section: ocr.SectionMainboard}}
	cards = append(cards, ocr.Card{Name: "Lightning Bolt", Quantity: 20, Section: ocr.SectionMainboard})
	cards = append(cards, ocr.Card{Name: "Duress", Quantity: 15, Section: ocr.SectionSideboard})
	return cards
}

func setupTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	pipeline := ocr.NewPipeline(ocr.PipelineOptions{
		Local: &stubMethod{cards: fullDeck()},
		Cloud: ocr.NewVision("", nil),
	})
	s := &server{
		pipeline:  pipeline,
		scryfall:  scryfall.NewClient(""),
		uploadDir: t.TempDir(),
	}
	r := gin.Default()
	setupRoutes(r, s)
	return r
}

func screenshotPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, imaging.New(1920, 1080, color.NRGBA{25, 25, 30, 255})); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestHealth(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodGet, "/health", nil, "")
	if resp.Code != 200 {
		t.Fatalf("health failed status=%d", resp.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &body)
	if body["history"] != false {
		t.Fatalf("history should be disabled without a database: %+v", body)
	}
}

func TestUploadFlow(t *testing.T) {
	r := setupTestServer(t)

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("image", "deck.png")
	_, _ = w.Write(screenshotPNG(t))
	_ = mw.Close()
	resp := performRequest(r, http.MethodPost, "/api/ocr/upload", buf, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("upload failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var body struct {
		Result ocr.Result `json:"result"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Result.Guaranteed {
		t.Fatalf("expected guaranteed deck: %+v", body.Result.Warnings)
	}
	if got := ocr.MainboardCount(body.Result.Cards); got != 60 {
		t.Fatalf("expected 60 mainboard got %d", got)
	}
}

func TestUploadRejectsGarbage(t *testing.T) {
	r := setupTestServer(t)
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("image", "not-an-image.png")
	_, _ = w.Write([]byte("plain text"))
	_ = mw.Close()
	resp := performRequest(r, http.MethodPost, "/api/ocr/upload", buf, mw.FormDataContentType())
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", resp.Code, resp.Body.String())
	}
}

func TestUploadMissingFile(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodPost, "/api/ocr/upload", nil, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestDecksUnavailableWithoutDB(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodGet, "/api/decks", nil, "")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without database got %d", resp.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	r := setupTestServer(t)
	body, _ := json.Marshal(map[string]any{
		"format": "mtga",
		"cards":  fullDeck(),
	})
	resp := performRequest(r, http.MethodPost, "/api/export", bytes.NewBuffer(body), "application/json")
	if resp.Code != 200 {
		t.Fatalf("export failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var out map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &out)
	content, _ := out["content"].(string)
	if !bytes.Contains([]byte(content), []byte("Deck\n")) {
		t.Fatalf("mtga export missing Deck header: %q", content)
	}
}

func TestExportBadFormat(t *testing.T) {
	r := setupTestServer(t)
	body, _ := json.Marshal(map[string]any{"format": "excel", "cards": fullDeck()})
	resp := performRequest(r, http.MethodPost, "/api/export", bytes.NewBuffer(body), "application/json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestValidateRequiresName(t *testing.T) {
	r := setupTestServer(t)
	resp := performRequest(r, http.MethodGet, "/api/cards/validate", nil, "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
