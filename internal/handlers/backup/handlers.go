// Package backup serves health and version probes, plan backup and restore
// and the storage encryption controls.
package backup

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"bizplan/internal/config"
	httpx "bizplan/internal/http"
	"bizplan/internal/log"
	"bizplan/internal/models"
	"bizplan/internal/services/plan"
	"bizplan/internal/services/planstore"
	"bizplan/internal/services/storage"
	"bizplan/internal/version"
)

// BackupEntry is the plan file name inside a backup archive
const BackupEntry = "plan.json"

// maxBackupBytes caps uploaded backup archives
const maxBackupBytes = 50 << 20

var ErrNoPlanInBackup = errors.New("backup does not contain " + BackupEntry)

var (
	cfg     *config.Config
	store   *storage.Storage
	manager *planstore.Manager
)

// Initialize sets up the backup package with required dependencies
func Initialize(c *config.Config, s *storage.Storage, m *planstore.Manager) {
	cfg = c
	store = s
	manager = m
}

// RegisterRoutes registers health, backup and storage routes
func RegisterRoutes(r chi.Router) {
	r.Get("/api/health", HandleHealth)
	r.Get("/api/version", HandleVersion)
	r.Get("/api/backup", HandleBackup)
	r.Post("/api/restore", HandleRestore)

	r.Get("/api/storage/status", handleStorageStatus)
	r.Post("/api/storage/encrypt", handleEncrypt)
	r.Post("/api/storage/unlock", handleUnlock)
	r.Post("/api/storage/lock", handleLock)
	r.Post("/api/storage/decrypt", handleDecrypt)
}

func HandleHealth(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func HandleVersion(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, version.Get())
}

// HandleBackup streams a zip holding the current plan. A copy of the plan is
// also kept in the backups directory.
func HandleBackup(w http.ResponseWriter, r *http.Request) {
	doc, err := manager.Snapshot()
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	if rel, err := filepath.Rel(cfg.DataDirectory, cfg.BackupDirectory); err == nil && !strings.HasPrefix(rel, "..") {
		name := path.Join(filepath.ToSlash(rel), "plan_"+timestamp+".json")
		if err := store.WriteFile(name, data); err != nil {
			log.FromContext(r.Context()).Warn("could not keep a local backup copy", log.FieldError, err)
		}
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	f, err := zw.Create(BackupEntry)
	if err == nil {
		_, err = f.Write(data)
	}
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		httpx.Error(w, r, fmt.Errorf("create backup: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=bizplan_backup_%s.zip", timestamp))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// readBackup extracts and decodes the plan from a backup archive
func readBackup(content []byte) (*models.PlanDocument, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid zip file", httpx.ErrBadRequest)
	}
	for _, zf := range zr.File {
		if zf.FileInfo().IsDir() || path.Base(zf.Name) != BackupEntry {
			continue
		}
		rc, err := zf.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", zf.Name, err)
		}
		data, err := io.ReadAll(io.LimitReader(rc, maxBackupBytes))
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", zf.Name, err)
		}
		doc, err := models.DecodePlan(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", httpx.ErrBadRequest, err)
		}
		return doc, nil
	}
	return nil, fmt.Errorf("%w: %w", httpx.ErrBadRequest, ErrNoPlanInBackup)
}

// HandleRestore replaces the plan with the one in an uploaded backup zip
func HandleRestore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBackupBytes)
	if err := r.ParseMultipartForm(maxBackupBytes); err != nil {
		httpx.ErrorResponse(w, "File too large", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpx.ErrorResponse(w, "Error reading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".zip") {
		httpx.ErrorResponse(w, "Only ZIP backup files are allowed", http.StatusBadRequest)
		return
	}
	content, err := io.ReadAll(file)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	incoming, err := readBackup(content)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	log.FromContext(r.Context()).Info("restoring plan from backup", "file", header.Filename)
	httpx.Apply(w, r, manager, func(doc *models.PlanDocument) (models.Change, error) {
		return plan.ReplaceDocument(doc, incoming)
	})
}

type passwordRequest struct {
	Password string `json:"password"`
}

func handleStorageStatus(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, store.Status())
}

// storageAction decodes the password and runs fn, answering with the new status
func storageAction(w http.ResponseWriter, r *http.Request, fn func(password string) error) {
	var req passwordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}
	if err := fn(req.Password); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, store.Status())
}

// handleEncrypt seals the data directory. Pending plan writes are flushed
// first so the sealed copy is current.
func handleEncrypt(w http.ResponseWriter, r *http.Request) {
	storageAction(w, r, func(password string) error {
		if err := manager.Flush(r.Context()); err != nil {
			return err
		}
		return store.EnableEncryption(password)
	})
}

func handleUnlock(w http.ResponseWriter, r *http.Request) {
	storageAction(w, r, store.Unlock)
}

func handleLock(w http.ResponseWriter, r *http.Request) {
	store.Lock()
	httpx.WriteJSON(w, http.StatusOK, store.Status())
}

func handleDecrypt(w http.ResponseWriter, r *http.Request) {
	storageAction(w, r, store.DisableEncryption)
}
