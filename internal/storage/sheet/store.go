// Package sheet provides the row-oriented signal store the bot reads trade
// signals from and writes execution results back to. The store is addressed
// the spreadsheet way, by column letter and 1-based row number, so any
// row-oriented backend can sit behind the Store interface.
package sheet

import "strings"

// FirstSignalRow is the first row holding signal data; rows above it form
// the sheet header.
const FirstSignalRow = 6

// Signal sheet column layout, carried over from the workbook the signals
// originate in.
const (
	ColDate          = "A"
	ColStatus        = "B"
	ColTicker        = "C"
	ColCurrentPrice  = "D"
	ColEntryPrice    = "F"
	ColExitPrice     = "G"
	ColPlannedAmount = "I"

	// Execution block filled by the order executor.
	ColAction        = "L"
	ColOpenTime      = "M"
	ColOpenPrice     = "N"
	ColOpenQty       = "O"
	ColOpenNotional  = "P"
	ColPositionState = "Q"
	ColMarket        = "R"
	ColCloseTime     = "S"
	ColClosePrice    = "T"
	ColCloseQty      = "U"
	ColCloseNotional = "V"
)

// Header cells holding account totals.
const (
	HeaderBalanceCol = "H"
	HeaderFreeRow    = 1
	HeaderDepositRow = 2
)

// Store is a row-oriented cell store. Reads never fail: a cell outside the
// populated area is simply empty. Save must be safe to call more than once.
type Store interface {
	// Cell returns the raw value at (column letter, 1-based row), or the
	// empty string when the cell has no value.
	Cell(col string, row int) string
	// SetCell writes a value, growing the sheet as needed.
	SetCell(col string, row int, value string)
	// MaxRow returns the last populated row number, zero for an empty sheet.
	MaxRow() int
	// Save persists the sheet durably.
	Save() error
}

// colIndex converts a column letter ("A".."Z", "AA"..) to a zero-based index.
func colIndex(col string) int {
	idx := 0
	for _, r := range strings.ToUpper(col) {
		if r < 'A' || r > 'Z' {
			return 0
		}
		idx = idx*26 + int(r-'A') + 1
	}
	return idx - 1
}
