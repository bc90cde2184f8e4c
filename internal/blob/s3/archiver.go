package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alanyoungcy/wagerpool/internal/domain"
)

// settlementReport is the JSON document archived for a resolved market: the
// final market record plus its full event history, enough to re-derive every
// payout offline.
type settlementReport struct {
	Market     domain.Market  `json:"market"`
	Events     []domain.Event `json:"events"`
	ArchivedAt time.Time      `json:"archived_at"`
}

// ArchiveImpl implements domain.Archiver by serializing a resolved market's
// settlement report and uploading it to S3.
type ArchiveImpl struct {
	writer domain.BlobWriter
}

// NewArchiver creates a new ArchiveImpl.
func NewArchiver(writer domain.BlobWriter) *ArchiveImpl {
	return &ArchiveImpl{writer: writer}
}

// ArchiveSettlement uploads the settlement report for a resolved market to
// settlements/YYYY-MM/{market}.json and returns the storage path.
func (a *ArchiveImpl) ArchiveSettlement(ctx context.Context, m domain.Market, events []domain.Event) (string, error) {
	report := settlementReport{
		Market:     m,
		Events:     events,
		ArchivedAt: time.Now().UTC(),
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(report); err != nil {
		return "", fmt.Errorf("s3blob: marshal settlement report %s: %w", m.ID, err)
	}

	path := settlementPath(m)
	if err := a.writer.Put(ctx, path, &buf, "application/json"); err != nil {
		return "", fmt.Errorf("s3blob: upload settlement report %s: %w", m.ID, err)
	}
	return path, nil
}

// settlementPath builds the S3 key for a settlement report, partitioned by
// the year-month of resolution.
//
//	settlements/2025-01/{market}.json
func settlementPath(m domain.Market) string {
	at := time.Now().UTC()
	if m.ResolvedAt != nil {
		at = m.ResolvedAt.UTC()
	}
	return fmt.Sprintf("settlements/%s/%s.json", at.Format("2006-01"), m.ID)
}

// Compile-time interface check.
var _ domain.Archiver = (*ArchiveImpl)(nil)
