package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"deckscan/models"
	"deckscan/pkg/export"
	"deckscan/pkg/ocr"
	"deckscan/pkg/scryfall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadBytes caps screenshot size. 4K PNG captures run 8-9MB.
const maxUploadBytes = 10 * 1024 * 1024

type server struct {
	pipeline  *ocr.Pipeline
	scryfall  *scryfall.Client
	uploadDir string
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/health", s.healthHandler)
	api := r.Group("/api")
	api.POST("/ocr/upload", s.uploadHandler)
	api.GET("/decks", s.listDecksHandler)
	api.GET("/decks/:id", s.getDeckHandler)
	api.POST("/export", s.exportHandler)
	api.GET("/cards/validate", s.validateCardHandler)
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"history": historyEnabled(),
	})
}

// uploadHandler accepts a screenshot, runs the full extraction pipeline, and
// returns the deck list. The upload and result are persisted when a database
// is configured; processing never depends on persistence.
func (s *server) uploadHandler(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file missing"})
		return
	}
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large (max 10MB)"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read upload failed"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil || int64(len(data)) > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "read upload failed"})
		return
	}

	storeName := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	upload := s.saveUpload(file.Filename, storeName, file.Header.Get("Content-Type"), data)

	result, err := s.pipeline.Process(c.Request.Context(), data)
	if err != nil {
		if errors.Is(err, ocr.ErrDecode) {
			s.markFailed(upload, "undecodable image")
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not decode image"})
			return
		}
		log.Printf("process %s: %v", file.Filename, err)
		s.markFailed(upload, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	deckID := s.saveDeck(file.Filename, upload, result)
	c.JSON(http.StatusOK, gin.H{
		"deck_id": deckID,
		"result":  result,
	})
}

// saveUpload writes the screenshot to disk and records it, best-effort.
func (s *server) saveUpload(origName, storeName, contentType string, data []byte) *models.Upload {
	fullPath := filepath.Join(s.uploadDir, storeName)
	if err := writeFile(fullPath, data); err != nil {
		log.Printf("save upload %s: %v", storeName, err)
		return nil
	}
	if !historyEnabled() {
		return nil
	}
	up := models.Upload{
		FileName:    origName,
		StorePath:   storeName,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
	}
	if err := db.Create(&up).Error; err != nil {
		log.Printf("record upload %s: %v", storeName, err)
		return nil
	}
	return &up
}

func (s *server) markFailed(up *models.Upload, reason string) {
	if up == nil || !historyEnabled() {
		return
	}
	up.Failed = true
	up.FailedReason = reason
	if err := db.Save(up).Error; err != nil {
		log.Printf("mark upload %d failed: %v", up.ID, err)
	}
}

// saveDeck persists the extraction result. Returns the deck's public id, or
// empty when history is disabled.
func (s *server) saveDeck(name string, up *models.Upload, result *ocr.Result) string {
	if !historyEnabled() {
		return ""
	}
	deck := models.Deck{
		PublicID:     uuid.NewString(),
		Name:         name,
		Format:       string(result.Format),
		Confidence:   result.Confidence,
		Guaranteed:   result.Guaranteed,
		ProcessingMS: result.ProcessingMS,
	}
	if up != nil {
		deck.UploadID = &up.ID
	}
	for _, card := range result.Cards {
		deck.Cards = append(deck.Cards, models.DeckCard{
			Name:     card.Name,
			Quantity: card.Quantity,
			Section:  string(card.Section),
		})
	}
	if err := db.Create(&deck).Error; err != nil {
		log.Printf("save deck %s: %v", name, err)
		return ""
	}
	return deck.PublicID
}

func (s *server) listDecksHandler(c *gin.Context) {
	if !historyEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "deck history not configured"})
		return
	}
	var decks []models.Deck
	if err := db.Order("id desc").Limit(100).Find(&decks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, decks)
}

func (s *server) getDeckHandler(c *gin.Context) {
	if !historyEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "deck history not configured"})
		return
	}
	var deck models.Deck
	if err := db.Preload("Cards").Where("public_id = ?", c.Param("id")).First(&deck).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}
	c.JSON(http.StatusOK, deck)
}

// exportHandler renders a posted card list in a deck-site import format. It
// takes the cards in the request body so unsaved decks can be exported too.
func (s *server) exportHandler(c *gin.Context) {
	var req struct {
		Format string     `json:"format" binding:"required"`
		Cards  []ocr.Card `json:"cards" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	text, err := export.Render(req.Cards, export.Format(req.Format))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"format":    req.Format,
		"file_name": export.FileName(export.Format(req.Format)),
		"content":   text,
	})
}

func writeFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0644)
}

func contextWithTimeout(c *gin.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), d)
}

// validateCardHandler resolves a card name against Scryfall, correcting OCR
// spelling drift via fuzzy match.
func (s *server) validateCardHandler(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter required"})
		return
	}
	ctx, cancel := contextWithTimeout(c, 15*time.Second)
	defer cancel()
	card, err := s.scryfall.Resolve(ctx, name)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"valid": false, "name": name})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "card lookup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":     true,
		"name":      card.Name,
		"corrected": !strings.EqualFold(card.Name, name),
		"mana_cost": card.ManaCost,
		"type_line": card.TypeLine,
	})
}
