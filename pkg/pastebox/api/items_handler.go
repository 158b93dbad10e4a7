// Package api exposes the paste service over HTTP: uploads, listing,
// downloads, deletion and the shared-password session gate.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/pastebox/pastebox/pkg/pastebox"
	"github.com/pastebox/pastebox/pkg/pastebox/auth"
)

// DefaultMaxUploadBytes caps uploads at 10 MB.
const DefaultMaxUploadBytes = 10 << 20

// ItemsHandler handles HTTP requests for items
type ItemsHandler struct {
	service        pastebox.Service
	credentials    auth.CredentialStore
	sessionSecret  string
	maxUploadBytes int64
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(service pastebox.Service, credentials auth.CredentialStore, sessionSecret string) *ItemsHandler {
	return &ItemsHandler{
		service:        service,
		credentials:    credentials,
		sessionSecret:  sessionSecret,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
}

// Routes returns the routes for the paste service
func (h *ItemsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Post("/admin/password", h.SetPassword)

	r.Group(func(r chi.Router) {
		r.Use(RequireSession(h.sessionSecret))

		r.Post("/items", h.Upload)
		r.Get("/items", h.List)
		r.Get("/items/{id}", h.GetItem)
		r.Get("/items/{id}/download", h.DownloadItem)
		r.Get("/thumbnails/{name}", h.Thumbnail)
		r.Delete("/items/{id}", h.DeleteItem)
		r.Delete("/items", h.DeleteAll)
	})

	return r
}

// ErrResponse is the JSON body for error responses
type ErrResponse struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, ErrResponse{Error: msg})
}

// LoginRequest is the request body for logging in
type LoginRequest struct {
	Password string `json:"password"`
}

// Login checks the shared password and establishes a session. When no
// password has been set yet, the first login sets it.
func (h *ItemsHandler) Login(w http.ResponseWriter, r *http.Request) {
	password, ok := h.readPassword(r)
	if !ok || password == "" {
		renderError(w, r, http.StatusBadRequest, "password required")
		return
	}

	hash, err := h.credentials.PasswordHash(r.Context())
	if err != nil {
		slog.Error("Failed to read password hash", "error", err)
		renderError(w, r, http.StatusInternalServerError, "credential store unavailable")
		return
	}

	if hash == "" {
		newHash, err := auth.HashPassword(password)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if err := h.credentials.SetPasswordHash(r.Context(), newHash); err != nil {
			slog.Error("Failed to store password hash", "error", err)
			renderError(w, r, http.StatusInternalServerError, "credential store unavailable")
			return
		}
		slog.Info("Initial password set")
	} else if !auth.VerifyPassword(hash, password) {
		renderError(w, r, http.StatusUnauthorized, "invalid password")
		return
	}

	if err := SetSessionCookie(w, h.sessionSecret); err != nil {
		slog.Error("Failed to issue session", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to issue session")
		return
	}

	render.JSON(w, r, map[string]bool{"success": true})
}

// Logout clears the session cookie
func (h *ItemsHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	render.JSON(w, r, map[string]bool{"success": true})
}

// SetPassword replaces the shared password wholesale. Intended for the
// local admin console; the route carries no session gate, matching the
// deployment model of a trusted host.
func (h *ItemsHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	password, ok := h.readPassword(r)
	if !ok || password == "" {
		renderError(w, r, http.StatusBadRequest, "password required")
		return
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.credentials.SetPasswordHash(r.Context(), hash); err != nil {
		slog.Error("Failed to store password hash", "error", err)
		renderError(w, r, http.StatusInternalServerError, "credential store unavailable")
		return
	}

	slog.Info("Password updated")
	render.JSON(w, r, map[string]any{"success": true, "message": "password updated"})
}

func (h *ItemsHandler) readPassword(r *http.Request) (string, bool) {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return "", false
		}
		return req.Password, true
	}
	return r.FormValue("password"), true
}

// Upload ingests a multipart file upload ("file" field) or a raw text
// paste ("text" field)
func (h *ItemsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Sprintf("invalid upload: %v", err))
		return
	}

	var item *pastebox.Item

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			renderError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to read upload: %v", err))
			return
		}

		contentType := header.Header.Get("Content-Type")
		if contentType == "" || contentType == "application/octet-stream" {
			contentType = http.DetectContentType(data)
		}

		item, err = h.service.IngestFile(r.Context(), pastebox.IngestFileRequest{
			Data:        data,
			DisplayName: header.Filename,
			ContentType: contentType,
		})
		if err != nil {
			h.renderIngestError(w, r, err)
			return
		}

	case r.FormValue("text") != "":
		item, err = h.service.IngestText(r.Context(), pastebox.IngestTextRequest{
			Text: r.FormValue("text"),
		})
		if err != nil {
			h.renderIngestError(w, r, err)
			return
		}

	default:
		renderError(w, r, http.StatusBadRequest, "no file or text provided")
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, item)
}

func (h *ItemsHandler) renderIngestError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, pastebox.ErrInvalidInput) {
		renderError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("Ingest failed", "error", err)
	renderError(w, r, http.StatusInternalServerError, "failed to store item")
}

// List returns one page of the newest-first item listing
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	if p := r.URL.Query().Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			page = n
		}
	}

	result, err := h.service.ListPage(r.Context(), page)
	if err != nil {
		slog.Error("Failed to list items", "page", page, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to list items")
		return
	}

	render.JSON(w, r, result)
}

func (h *ItemsHandler) itemID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// GetItem returns one item's metadata
func (h *ItemsHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := h.service.GetItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pastebox.ErrItemNotFound) {
			renderError(w, r, http.StatusNotFound, "item not found")
			return
		}
		slog.Error("Failed to get item", "item_id", id, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to get item")
		return
	}

	render.JSON(w, r, item)
}

// DownloadItem streams the item's stored blob as a named attachment
func (h *ItemsHandler) DownloadItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	dl, err := h.service.DownloadItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pastebox.ErrItemNotFound) {
			renderError(w, r, http.StatusNotFound, "item not found")
			return
		}
		slog.Error("Failed to download item", "item_id", id, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to download item")
		return
	}
	defer dl.Body.Close()

	filename := strings.ReplaceAll(dl.Item.DisplayName, `"`, "")
	w.Header().Set("Content-Type", dl.Item.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(dl.Item.SizeBytes, 10))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := io.Copy(w, dl.Body); err != nil {
		slog.Warn("Download interrupted", "item_id", id, "error", err)
	}
}

// Thumbnail serves a derived thumbnail blob
func (h *ItemsHandler) Thumbnail(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" || !strings.HasPrefix(name, pastebox.ThumbnailPrefix) {
		renderError(w, r, http.StatusBadRequest, "invalid thumbnail name")
		return
	}

	body, err := h.service.OpenThumbnail(r.Context(), name)
	if err != nil {
		if errors.Is(err, pastebox.ErrBlobNotFound) {
			renderError(w, r, http.StatusNotFound, "thumbnail not found")
			return
		}
		slog.Error("Failed to open thumbnail", "thumbnail_name", name, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to open thumbnail")
		return
	}
	defer body.Close()

	// Thumbnails are small; buffer to sniff the encoded format.
	data, err := io.ReadAll(body)
	if err != nil {
		slog.Error("Failed to read thumbnail", "thumbnail_name", name, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to read thumbnail")
		return
	}

	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	_, _ = w.Write(data)
}

// DeleteItem removes one item and its blobs
func (h *ItemsHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := h.itemID(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := h.service.DeleteItem(r.Context(), id); err != nil {
		if errors.Is(err, pastebox.ErrItemNotFound) {
			renderError(w, r, http.StatusNotFound, "item not found")
			return
		}
		slog.Error("Failed to delete item", "item_id", id, "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to delete item")
		return
	}

	slog.Info("Item deleted", "item_id", id)
	render.JSON(w, r, map[string]bool{"success": true})
}

// DeleteAll removes every item and all reachable blobs
func (h *ItemsHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAllItems(r.Context()); err != nil {
		slog.Error("Failed to delete all items", "error", err)
		renderError(w, r, http.StatusInternalServerError, "failed to delete all items")
		return
	}

	slog.Info("All items deleted")
	render.JSON(w, r, map[string]bool{"success": true})
}
