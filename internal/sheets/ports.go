package sheets

import (
	"context"

	"github.com/adarshpathak3408/FinFlow/internal/core"
)

// Ports for the spreadsheet export adapter.
type (
	TransactionWriter interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	TransactionDeleter interface {
		Delete(ctx context.Context, transactionID string) error
	}
)
