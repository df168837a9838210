package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvcell/internal/codec"
	"github.com/JonMunkholm/csvcell/internal/logging"
)

var (
	// ErrInvalidRequest marks a request body that could not be decoded.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrBatchTooLarge is returned when a batch exceeds the configured cell limit.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrTooManyBatches is returned when all batch slots are occupied and the
	// wait timeout expires. Clients should retry after a short delay.
	ErrTooManyBatches = errors.New("too many concurrent batches, please try again later")
)

// DefaultMaxBatchCells is used when Options.MaxBatchCells is not positive.
const DefaultMaxBatchCells = 10000

// Options tunes batch handling.
type Options struct {
	MaxBatchCells        int
	MaxConcurrentBatches int
	MaxWaitTime          time.Duration
}

// attributeLister is implemented by directories that can enumerate attributes.
type attributeLister interface {
	Attributes(ctx context.Context, entityTypeID int) ([]codec.AttributeDescriptor, error)
}

// Service exposes the codecs to transports. It holds one instance of each
// codec built from the same configuration; all methods are safe for
// concurrent use.
type Service struct {
	cfg     codec.Configuration
	dir     codec.Directory
	values  *codec.ValueCodec
	lines   *codec.LineCodec
	paths   *codec.PathCodec
	limiter *BatchLimiter

	maxBatchCells int
}

// NewService builds the codecs for cfg. The entity type is resolved through
// dir once, here.
func NewService(ctx context.Context, cfg codec.Configuration, dir codec.Directory, opts Options) (*Service, error) {
	values, err := codec.NewValueCodec(cfg.Delimiters)
	if err != nil {
		return nil, fmt.Errorf("value codec: %w", err)
	}
	lines, err := codec.NewLineCodec(ctx, cfg, dir)
	if err != nil {
		return nil, fmt.Errorf("attribute codec: %w", err)
	}
	paths, err := codec.NewPathCodec(cfg)
	if err != nil {
		return nil, fmt.Errorf("category codec: %w", err)
	}

	maxCells := opts.MaxBatchCells
	if maxCells <= 0 {
		maxCells = DefaultMaxBatchCells
	}

	return &Service{
		cfg:           cfg,
		dir:           dir,
		values:        values,
		lines:         lines,
		paths:         paths,
		limiter:       NewBatchLimiter(opts.MaxConcurrentBatches, opts.MaxWaitTime),
		maxBatchCells: maxCells,
	}, nil
}

// Configuration returns the codec configuration.
func (s *Service) Configuration() codec.Configuration {
	return s.cfg
}

// EntityType returns the entity type attributes are resolved against.
func (s *Service) EntityType() codec.EntityType {
	return s.lines.EntityType()
}

// Limiter returns the batch limiter, for status reporting and shutdown.
func (s *Service) Limiter() *BatchLimiter {
	return s.limiter
}

// ----------------------------------------------------------------------------
// Values
// ----------------------------------------------------------------------------

// EncodeValues joins fields into one cell. delim 0 selects the configured
// field delimiter.
func (s *Service) EncodeValues(ctx context.Context, fields []string, delim rune) (string, bool) {
	text, ok := s.values.EncodeWith(fields, delim)
	logging.FromContext(ctx).Debug("encode values", "fields", len(fields), "present", ok)
	return text, ok
}

// CheckDelimiter reports whether delim may be passed to EncodeValues and
// DecodeValues.
func (s *Service) CheckDelimiter(delim rune) error {
	return s.values.CheckDelimiter(delim)
}

// DecodeValues splits a cell into fields. delim 0 selects the configured
// field delimiter.
func (s *Service) DecodeValues(ctx context.Context, text string, delim rune) []string {
	fields := s.values.DecodeWith(text, delim)
	logging.FromContext(ctx).Debug("decode values", "bytes", len(text), "fields", len(fields))
	return fields
}

// ----------------------------------------------------------------------------
// Additional attributes
// ----------------------------------------------------------------------------

// NormalizeAttributes encodes attrs into one additional-attributes cell.
func (s *Service) NormalizeAttributes(ctx context.Context, attrs *codec.Attributes, pack bool) (string, bool, error) {
	text, ok, err := s.lines.Normalize(ctx, attrs, pack)
	if err != nil {
		return "", false, err
	}
	logging.FromContext(ctx).Debug("normalize attributes", "attributes", attrs.Len(), "present", ok)
	return text, ok, nil
}

// DenormalizeAttributes decodes one additional-attributes cell.
func (s *Service) DenormalizeAttributes(ctx context.Context, text string, unpack bool) (*codec.Attributes, error) {
	attrs, err := s.lines.Denormalize(ctx, text, unpack)
	if err != nil {
		return nil, err
	}
	logging.FromContext(ctx).Debug("denormalize attributes", "bytes", len(text), "attributes", attrs.Len())
	return attrs, nil
}

// CellError describes one cell of a batch that could not be decoded. It
// carries the user-facing message only; the technical error is logged.
type CellError struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
}

// BatchResult holds the decoded rows of a batch. Rows has one entry per
// input cell; entries for failed cells are nil.
type BatchResult struct {
	BatchID string              `json:"batch_id"`
	Rows    []*codec.Attributes `json:"rows"`
	Failed  []CellError         `json:"failed"`
}

// DenormalizeBatch decodes many additional-attributes cells. A failing cell
// is reported in Failed and does not stop the batch; cancellation of ctx does.
func (s *Service) DenormalizeBatch(ctx context.Context, cells []string, unpack bool) (*BatchResult, error) {
	if len(cells) > s.maxBatchCells {
		return nil, fmt.Errorf("%w: %d cells, limit is %d", ErrBatchTooLarge, len(cells), s.maxBatchCells)
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	batchID := uuid.New().String()
	logger := logging.WithFields(ctx,
		"batch_id", batchID,
		"cells", len(cells),
		"client_ip", GetIPAddressFromContext(ctx),
		"user_agent", GetUserAgentFromContext(ctx),
	)
	start := time.Now()

	result := &BatchResult{
		BatchID: batchID,
		Rows:    make([]*codec.Attributes, len(cells)),
		Failed:  []CellError{},
	}
	for i, cell := range cells {
		if err := ctx.Err(); err != nil {
			logger.Warn("batch aborted", "at", i, "error", err)
			return nil, err
		}

		attrs, err := s.lines.Denormalize(ctx, cell, unpack)
		if err != nil {
			uerr := NewUserError(err)
			logger.Debug("cell failed", "index", i, "code", uerr.User.Code, "error", uerr.Technical)
			result.Failed = append(result.Failed, CellError{
				Index:   i,
				Code:    uerr.User.Code,
				Message: uerr.User.Message,
				Action:  uerr.User.Action,
			})
			continue
		}
		result.Rows[i] = attrs
	}

	logger.Info("batch decoded",
		"failed", len(result.Failed),
		"duration", time.Since(start),
	)
	return result, nil
}

// Directory returns the attribute directory the service resolves through.
func (s *Service) Directory() codec.Directory {
	return s.dir
}

// ListAttributes returns the attributes of the configured entity type when
// the directory can enumerate them.
func (s *Service) ListAttributes(ctx context.Context) ([]codec.AttributeDescriptor, error) {
	lister, ok := s.dir.(attributeLister)
	if !ok {
		return nil, fmt.Errorf("list attributes: %w", codec.ErrUnsupported)
	}
	return lister.Attributes(ctx, s.EntityType().ID)
}

// ----------------------------------------------------------------------------
// Categories
// ----------------------------------------------------------------------------

// NormalizeCategory re-renders a category path in canonical quoting.
func (s *Service) NormalizeCategory(path string) (string, bool) {
	return s.paths.Normalize(path)
}

// ExplodeCategory splits a category path into its segments.
func (s *Service) ExplodeCategory(path string) []string {
	return s.paths.Explode(path)
}

// ExplodeCategoryList splits a cell of several category paths.
func (s *Service) ExplodeCategoryList(cell string) [][]string {
	return s.paths.ExplodeList(cell)
}

// DenormalizeCategory always fails with codec.ErrUnsupported.
func (s *Service) DenormalizeCategory(path string) (string, error) {
	return s.paths.Denormalize(path)
}
