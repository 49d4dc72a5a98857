// Package signals extracts trade signals from the sheet store and writes
// run results back to it.
package signals

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/elitvinov/sigbot/internal/domain"
	"github.com/elitvinov/sigbot/internal/storage/sheet"
)

// InvalidSignalError marks a signal row that could not be parsed or a status
// update that could not be persisted.
type InvalidSignalError struct {
	Row int
	Err error
}

func (e *InvalidSignalError) Error() string {
	return fmt.Sprintf("invalid signal at row %d: %v", e.Row, e.Err)
}

func (e *InvalidSignalError) Unwrap() error { return e.Err }

// Processor reads and updates signals in the sheet store.
type Processor struct {
	store  sheet.Store
	logger *zap.Logger
}

// NewProcessor creates a Processor over the given store.
func NewProcessor(store sheet.Store, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{store: store, logger: logger}
}

// ActiveSignals scans signal rows and returns those whose status marks them
// active. A row that fails to parse is logged and skipped; one malformed row
// never aborts the scan.
func (p *Processor) ActiveSignals() []domain.Signal {
	var out []domain.Signal
	for row := sheet.FirstSignalRow; row <= p.store.MaxRow(); row++ {
		if !domain.IsActiveStatus(p.store.Cell(sheet.ColStatus, row)) {
			continue
		}
		sig, err := p.parseRow(row)
		if err != nil {
			p.logger.Warn("skipping malformed signal row", zap.Int("row", row), zap.Error(err))
			continue
		}
		out = append(out, sig)
	}
	return out
}

func (p *Processor) parseRow(row int) (domain.Signal, error) {
	currentPrice, err := p.cellDecimal(sheet.ColCurrentPrice, row)
	if err != nil {
		return domain.Signal{}, err
	}
	entryPrice, err := p.cellDecimal(sheet.ColEntryPrice, row)
	if err != nil {
		return domain.Signal{}, err
	}
	exitPrice, err := p.cellDecimal(sheet.ColExitPrice, row)
	if err != nil {
		return domain.Signal{}, err
	}
	plannedAmount, err := p.cellDecimal(sheet.ColPlannedAmount, row)
	if err != nil {
		return domain.Signal{}, err
	}

	return domain.Signal{
		Row:           row,
		Date:          p.store.Cell(sheet.ColDate, row),
		Status:        p.store.Cell(sheet.ColStatus, row),
		Ticker:        strings.TrimSpace(p.store.Cell(sheet.ColTicker, row)),
		CurrentPrice:  currentPrice,
		EntryPrice:    entryPrice,
		ExitPrice:     exitPrice,
		PlannedAmount: plannedAmount,
	}, nil
}

// cellDecimal parses a cell as a decimal. An empty cell is zero; anything
// unparseable is an InvalidSignalError for the row.
func (p *Processor) cellDecimal(col string, row int) (decimal.Decimal, error) {
	raw := strings.TrimSpace(p.store.Cell(col, row))
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &InvalidSignalError{Row: row, Err: errors.Wrapf(err, "column %s", col)}
	}
	return d, nil
}

// UpdateStatus writes a new status into the signal row and saves the store.
// Failures are surfaced to the caller: losing a status update risks placing
// the same order again on the next run.
func (p *Processor) UpdateStatus(row int, status string) error {
	p.store.SetCell(sheet.ColStatus, row, status)
	if err := p.store.Save(); err != nil {
		return &InvalidSignalError{Row: row, Err: errors.Wrap(err, "persist status update")}
	}
	p.logger.Debug("signal status updated", zap.Int("row", row), zap.String("status", status))
	return nil
}

// RefreshPrices writes current market prices into active signal rows and
// returns how many rows were updated.
func (p *Processor) RefreshPrices(prices map[string]decimal.Decimal) int {
	updated := 0
	for row := sheet.FirstSignalRow; row <= p.store.MaxRow(); row++ {
		if !domain.IsActiveStatus(p.store.Cell(sheet.ColStatus, row)) {
			continue
		}
		ticker := strings.TrimSpace(p.store.Cell(sheet.ColTicker, row))
		price, ok := prices[ticker]
		if !ok {
			continue
		}
		p.store.SetCell(sheet.ColCurrentPrice, row, price.String())
		updated++
	}
	return updated
}

// WriteAllocations writes allocated amounts into the planned-amount column.
func (p *Processor) WriteAllocations(allocs []domain.Allocation) {
	for _, a := range allocs {
		p.store.SetCell(sheet.ColPlannedAmount, a.Row, a.Amount.String())
	}
}

// WriteHeader updates the sheet header with the free quote balance and the
// total deposit.
func (p *Processor) WriteHeader(freeQuote, totalDeposit decimal.Decimal) {
	p.store.SetCell(sheet.HeaderBalanceCol, sheet.HeaderFreeRow, freeQuote.String())
	p.store.SetCell(sheet.HeaderBalanceCol, sheet.HeaderDepositRow, totalDeposit.String())
}
