package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/klauspost/compress/zstd"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nebenkosten/internal/core/apperror"
	"nebenkosten/internal/domain/calculation"
)

var tracer = otel.Tracer("nebenkosten/storage/postgres")

// Compile-time check that BlobStore implements calculation.BlobStore.
var _ calculation.BlobStore = (*BlobStore)(nil)

const blobTable = "app_blobs"

// CompressionAlgo specifies the compression algorithm used for a payload.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// SchemaSQL creates the blob table.
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS app_blobs (
	key              TEXT PRIMARY KEY,
	payload          BYTEA NOT NULL,
	compression_algo TEXT NOT NULL DEFAULT 'none',
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// blobRow is one row of app_blobs.
type blobRow struct {
	Key             string          `db:"key"`
	Payload         []byte          `db:"payload"`
	CompressionAlgo CompressionAlgo `db:"compression_algo"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// BlobStore keeps blobs in a key/payload table. Payloads above the
// compression threshold are stored zstd-compressed.
type BlobStore struct {
	db                Querier
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

// NewBlobStore creates a blob store on top of db.
func NewBlobStore(db Querier) (*BlobStore, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &BlobStore{
		db:                db,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 8 * 1024, // 8KB
	}, nil
}

// EnsureSchema creates the blob table if it does not exist.
func (s *BlobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, SchemaSQL); err != nil {
		return apperror.NewStorage("migrate", err)
	}
	return nil
}

func (s *BlobStore) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Get reads and, if needed, decompresses the blob for key.
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "blob.get", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("blob.key", key))

	sql, args, err := s.builder().
		Select("key", "payload", "compression_algo", "updated_at").
		From(blobTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var row blobRow
	if err := pgxscan.Get(ctx, s.db, &row, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("blob", key)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, apperror.NewStorage("read", err)
	}

	payload, err := s.decode(row)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decompress failed")
		return nil, apperror.NewStorage("read", err)
	}
	span.SetAttributes(
		attribute.String("blob.compression", string(row.CompressionAlgo)),
		attribute.Int("blob.bytes", len(payload)),
	)
	return payload, nil
}

// Put upserts the blob for key.
func (s *BlobStore) Put(ctx context.Context, key string, blob []byte) error {
	ctx, span := tracer.Start(ctx, "blob.put", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	payload, algo := s.encode(blob)
	span.SetAttributes(
		attribute.String("blob.key", key),
		attribute.String("blob.compression", string(algo)),
		attribute.Int("blob.bytes", len(blob)),
		attribute.Int("blob.stored_bytes", len(payload)),
	)

	sql, args, err := s.builder().
		Insert(blobTable).
		Columns("key", "payload", "compression_algo", "updated_at").
		Values(key, payload, algo, time.Now().UTC()).
		Suffix("ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, " +
			"compression_algo = EXCLUDED.compression_algo, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upsert failed")
		return apperror.NewStorage("write", err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	ctx, span := tracer.Start(ctx, "blob.delete", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("blob.key", key))

	sql, args, err := s.builder().
		Delete(blobTable).
		Where(squirrel.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		span.RecordError(err)
		return apperror.NewStorage("delete", err)
	}
	return nil
}

func (s *BlobStore) encode(blob []byte) ([]byte, CompressionAlgo) {
	if len(blob) <= s.compressThreshold {
		return blob, CompressionNone
	}
	return s.encoder.EncodeAll(blob, nil), CompressionZstd
}

func (s *BlobStore) decode(row blobRow) ([]byte, error) {
	switch row.CompressionAlgo {
	case CompressionNone, "":
		return row.Payload, nil
	case CompressionZstd:
		out, err := s.decoder.DecodeAll(row.Payload, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress payload: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown compression %q", row.CompressionAlgo)
	}
}
