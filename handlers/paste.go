package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pmalinen/EncryptBin/config"
	"github.com/pmalinen/EncryptBin/internal/services"
	"github.com/pmalinen/EncryptBin/internal/token"
	"github.com/pmalinen/EncryptBin/models"
)

// PasteHandler handles paste create/read/update/delete endpoints
type PasteHandler struct {
	service *services.PasteService
	config  *config.Config
}

// NewPasteHandler creates a new paste handler
func NewPasteHandler(service *services.PasteService, cfg *config.Config) *PasteHandler {
	return &PasteHandler{service: service, config: cfg}
}

// encryptedRequest is the POST /api/paste_encrypted body
type encryptedRequest struct {
	CiphertextB64 string `json:"ciphertext_b64"`
	IVB64         string `json:"iv_b64"`
	Alg           string `json:"alg"`
	Title         string `json:"title"`
	Expires       string `json:"expires"`
	BurnAfter     bool   `json:"burnAfter"`
}

// readBody buffers the request body up to the configured size limit,
// reporting whether the limit was exceeded. The check happens before the
// service sees the payload, so oversized input causes no storage I/O.
func (h *PasteHandler) readBody(c *gin.Context) ([]byte, bool, error) {
	limit := h.config.MaxPasteBytes
	if cl := c.Request.ContentLength; cl > 0 && cl > limit {
		return nil, true, nil
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(body)) > limit {
		return nil, true, nil
	}
	return body, false, nil
}

// CreateEncrypted handles POST /api/paste_encrypted
func (h *PasteHandler) CreateEncrypted(c *gin.Context) {
	body, tooLarge, err := h.readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if tooLarge {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "paste too large"})
		return
	}

	var req encryptedRequest
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}

	result, err := h.service.Create(c.Request.Context(), services.CreateRequest{
		Encrypted: &models.EncryptedPayload{
			CiphertextB64: req.CiphertextB64,
			IVB64:         req.IVB64,
			Alg:           req.Alg,
		},
		Title:         req.Title,
		ExpiresChoice: req.Expires,
		BurnAfter:     req.BurnAfter,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":     "/p/" + result.ID,
		"pasteId": result.ID,
		"editKey": result.EditKey,
	})
}

// CreatePlaintext handles POST /api/paste when plaintext pastes are
// enabled. The route is only registered in that case; see PlaintextDisabled.
func (h *PasteHandler) CreatePlaintext(c *gin.Context) {
	body, tooLarge, err := h.readBody(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}
	if tooLarge {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "paste too large"})
		return
	}

	result, err := h.service.Create(c.Request.Context(), services.CreateRequest{
		Plaintext:     string(body),
		ExpiresChoice: models.ExpireNever,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.String(http.StatusOK, "%s\n", result.ID)
}

// PlaintextDisabled answers POST /api/paste when the feature toggle is
// off, so the storage path for unencrypted content stays unreachable.
func (h *PasteHandler) PlaintextDisabled(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "Plaintext pastes are disabled. Set ENCRYPTBIN_ALLOW_PLAINTEXT=true to enable.",
	})
}

// View handles GET /p/:id, returning the paste as JSON.
func (h *PasteHandler) View(c *gin.Context) {
	id := c.Param("id")
	if !token.IsValidID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "paste not found"})
		return
	}

	view, err := h.service.Read(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"pasteId":   view.Meta.ID,
		"title":     view.Meta.Title,
		"created":   view.Meta.Created,
		"expires":   view.Meta.Expires,
		"encrypted": view.Meta.Encrypted,
		"burnAfter": view.Meta.BurnAfter,
	}
	if view.Meta.Encrypted {
		var payload models.EncryptedPayload
		if err := json.Unmarshal(view.Content, &payload); err != nil {
			log.Printf("[ERROR] View: malformed encrypted payload for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "corrupt paste"})
			return
		}
		resp["encrypted_payload"] = payload
	} else {
		resp["content"] = string(view.Content)
	}
	c.JSON(http.StatusOK, resp)
}

// Raw handles GET /raw/:id, returning the plaintext body verbatim.
// Encrypted pastes only yield a placeholder; the server cannot decrypt.
func (h *PasteHandler) Raw(c *gin.Context) {
	id := c.Param("id")
	if !token.IsValidID(id) {
		c.String(http.StatusNotFound, "Not found")
		return
	}

	view, err := h.service.Read(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.String(http.StatusNotFound, "Not found")
		} else {
			log.Printf("[ERROR] Raw: %v", err)
			c.String(http.StatusInternalServerError, "Internal error")
		}
		return
	}

	if view.Meta.Encrypted {
		c.String(http.StatusOK, "[encrypted]")
		return
	}
	c.Data(http.StatusOK, "text/plain; charset=utf-8", view.Content)
}

// updateTitleRequest is the PATCH /api/paste/:id body
type updateTitleRequest struct {
	Title string `json:"title"`
}

// UpdateTitle handles PATCH /api/paste/:id with a bearer edit token.
func (h *PasteHandler) UpdateTitle(c *gin.Context) {
	id := c.Param("id")
	if !token.IsValidID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "paste not found"})
		return
	}
	presented, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing edit token"})
		return
	}

	var req updateTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.service.UpdateTitle(c.Request.Context(), id, req.Title, presented); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "title": models.TruncateTitle(req.Title)})
}

// Delete handles DELETE /api/paste/:id with a bearer edit token.
func (h *PasteHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !token.IsValidID(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "paste not found"})
		return
	}
	presented, ok := bearerToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing edit token"})
		return
	}

	if err := h.service.DeleteAuthorized(c.Request.Context(), id, presented); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// bearerToken extracts the token from an Authorization: Bearer header.
func bearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return "", false
	}
	tok := strings.TrimPrefix(auth, "Bearer ")
	if tok == "" {
		return "", false
	}
	return tok, true
}

// writeError maps service errors onto HTTP responses. Absent, expired and
// burned pastes are indistinguishable on the wire.
func (h *PasteHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "paste not found"})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid edit token"})
	case errors.Is(err, models.ErrPayloadTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "paste too large"})
	case errors.Is(err, models.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid paste payload"})
	default:
		log.Printf("[ERROR] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
