package exports

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ZionTraffic/zion-flux-sub000/internal/adapters/storage"
	"github.com/ZionTraffic/zion-flux-sub000/internal/events"
	leadsdomain "github.com/ZionTraffic/zion-flux-sub000/internal/leads/domain"
	leadsservice "github.com/ZionTraffic/zion-flux-sub000/internal/leads/service"
	"github.com/ZionTraffic/zion-flux-sub000/platform/apperr"
	"github.com/ZionTraffic/zion-flux-sub000/platform/logger"

	"github.com/google/uuid"
)

const (
	csvContentType  = "text/csv"
	historyPageSize = 50
)

// BoardSource produces classified boards.
type BoardSource interface {
	Board(ctx context.Context, tenantID uuid.UUID, window leadsdomain.Window) (leadsservice.Board, error)
	DefaultWindow() leadsdomain.Window
}

// Archive is a stored export with a temporary download link.
type Archive struct {
	Record   ArchiveRecord
	Download *storage.PresignedURL
}

// Service renders boards as CSV and archives them in object storage.
type Service struct {
	boards  BoardSource
	history ArchiveStore
	store   storage.ObjectStore
	bucket  string
	bus     events.Bus
	log     *logger.Logger
}

// NewService builds the export service. store may be nil, which disables
// archiving.
func NewService(boards BoardSource, history ArchiveStore, store storage.ObjectStore, bucket string, bus events.Bus, log *logger.Logger) *Service {
	return &Service{boards: boards, history: history, store: store, bucket: bucket, bus: bus, log: log}
}

// ArchivingEnabled reports whether object storage is configured.
func (s *Service) ArchivingEnabled() bool {
	return s.store != nil
}

// Archive renders the board, uploads it and records the upload.
func (s *Service) Archive(ctx context.Context, tenantID uuid.UUID, window leadsdomain.Window, requestedBy *uuid.UUID) (Archive, error) {
	if s.store == nil {
		return Archive{}, apperr.Unavailable("export archiving is not configured")
	}

	board, err := s.boards.Board(ctx, tenantID, window)
	if err != nil {
		return Archive{}, err
	}

	var buf bytes.Buffer
	rows, err := WriteBoardCSV(&buf, board)
	if err != nil {
		return Archive{}, fmt.Errorf("render export: %w", err)
	}

	folder := tenantID.String()
	fileName := FileName(window)
	key, err := s.store.UploadFile(ctx, s.bucket, folder, fileName, csvContentType, &buf, int64(buf.Len()))
	if err != nil {
		return Archive{}, apperr.Upstream("failed to store export", err).WithOp("exports.Archive")
	}

	record, err := s.history.RecordArchive(ctx, ArchiveRecord{
		TenantID:    tenantID,
		ObjectKey:   key,
		Rows:        rows,
		WindowStart: window.Start,
		WindowEnd:   window.EndExclusive,
		CreatedBy:   requestedBy,
	})
	if err != nil {
		return Archive{}, err
	}

	download, err := s.store.GenerateDownloadURL(ctx, s.bucket, key)
	if err != nil {
		return Archive{}, apperr.Upstream("failed to sign export url", err).WithOp("exports.Archive")
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadExportArchived{
			BaseEvent: events.NewBaseEvent(),
			TenantID:  tenantID,
			ObjectKey: key,
			Rows:      rows,
		})
	}
	s.log.WithContext(ctx).Info("lead export archived", "object_key", key, "rows", rows)

	return Archive{Record: record, Download: download}, nil
}

// History lists recent archives of the tenant.
func (s *Service) History(ctx context.Context, tenantID uuid.UUID) ([]ArchiveRecord, error) {
	return s.history.ListArchives(ctx, tenantID, historyPageSize)
}

// Download signs a fresh link for an archive of the tenant.
func (s *Service) Download(ctx context.Context, tenantID uuid.UUID, archiveID uuid.UUID) (*storage.PresignedURL, error) {
	if s.store == nil {
		return nil, apperr.Unavailable("export archiving is not configured")
	}
	rec, err := s.history.GetArchive(ctx, tenantID, archiveID)
	if errors.Is(err, ErrArchiveNotFound) {
		return nil, apperr.NotFound("export not found")
	}
	if err != nil {
		return nil, err
	}
	return s.store.GenerateDownloadURL(ctx, s.bucket, rec.ObjectKey)
}
