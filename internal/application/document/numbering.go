package document

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/numbering"
	"github.com/erp/backoffice/internal/domain/setting"
	"github.com/erp/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// DocumentType identifies a numbered business document
type DocumentType string

const (
	DocumentInvoice DocumentType = "invoice"
	DocumentQuote   DocumentType = "quote"
	DocumentPayment DocumentType = "payment"
)

// IsValid checks if the document type is valid
func (t DocumentType) IsValid() bool {
	switch t {
	case DocumentInvoice, DocumentQuote, DocumentPayment:
		return true
	default:
		return false
	}
}

// CounterKey returns the setting key holding the last issued number
func (t DocumentType) CounterKey() string {
	return fmt.Sprintf("last_%s_number", t)
}

// CounterIncrementer atomically increments a numeric setting
type CounterIncrementer interface {
	Increment(ctx context.Context, key string) (*setting.Setting, error)
}

// Issued is a freshly allocated document number
type Issued struct {
	Type    DocumentType
	Counter int64
	Number  string
}

// NumberingService allocates display numbers for new documents
type NumberingService struct {
	counter   CounterIncrementer
	generator *numbering.Generator
	length    int
	logger    *zap.Logger
}

// NewNumberingService creates a numbering service. A non-positive length
// falls back to numbering.DefaultLength.
func NewNumberingService(counter CounterIncrementer, generator *numbering.Generator, length int, logger *zap.Logger) *NumberingService {
	if generator == nil {
		generator = numbering.New()
	}
	if length <= 0 {
		length = numbering.DefaultLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NumberingService{
		counter:   counter,
		generator: generator,
		length:    length,
		logger:    logger,
	}
}

// Next increments the document counter and formats the resulting number.
// The counter value after the increment is fed to the generator as is.
func (s *NumberingService) Next(ctx context.Context, docType DocumentType) (*Issued, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", fmt.Sprintf("unknown document type %q", docType))
	}

	st, err := s.counter.Increment(ctx, docType.CounterKey())
	if err != nil {
		return nil, fmt.Errorf("increment %s counter: %w", docType, err)
	}

	value, ok := st.Value.AsNumber()
	if !ok || !value.IsInteger() {
		return nil, shared.NewDomainError(shared.ErrTypeMismatch.Code,
			fmt.Sprintf("counter '%s' must hold a whole number, got %s", st.Key, st.Value.String()))
	}
	counter := value.IntPart()

	number, err := s.generator.Generate(counter, s.length)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Document number issued",
		zap.String("type", string(docType)),
		zap.Int64("counter", counter),
		zap.String("number", number))

	return &Issued{Type: docType, Counter: counter, Number: number}, nil
}
