package http

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"finpulse/internal/core"
	"finpulse/internal/log"
)

// maxImportErrors caps the error list in an import response. Past this
// many bad rows the file is wrong, not the rows.
const maxImportErrors = 10

// maxImportBytes bounds the request body during import.
const maxImportBytes = 10 << 20

type importResult struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors,omitempty"`
}

// csvHeader maps column names to their positions. Only date, amount and
// description are required; category, is_income and merchant are optional.
type csvHeader struct {
	date        int
	amount      int
	description int
	category    int
	isIncome    int
	merchant    int
}

func parseCSVHeader(record []string) (csvHeader, error) {
	h := csvHeader{date: -1, amount: -1, description: -1, category: -1, isIncome: -1, merchant: -1}
	for i, name := range record {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "date":
			h.date = i
		case "amount":
			h.amount = i
		case "description":
			h.description = i
		case "category":
			h.category = i
		case "is_income", "income":
			h.isIncome = i
		case "merchant":
			h.merchant = i
		}
	}
	if h.date < 0 || h.amount < 0 || h.description < 0 {
		return h, errors.New("header must include date, amount and description columns")
	}
	return h, nil
}

func (h csvHeader) field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

// rowToTransaction converts one CSV row. Amounts are rupee decimals, an
// unknown category falls back to other, and a missing is_income column
// means expense.
func (h csvHeader) rowToTransaction(record []string) (core.Transaction, error) {
	date, err := core.ParseDate(h.field(record, h.date))
	if err != nil {
		return core.Transaction{}, err
	}
	paise, err := core.ParseDecimalToPaise(h.field(record, h.amount))
	if err != nil {
		return core.Transaction{}, err
	}

	category := h.field(record, h.category)
	if !core.KnownCategory(category) {
		category = core.CategoryOther
	}

	isIncome := false
	if raw := h.field(record, h.isIncome); raw != "" {
		isIncome, err = strconv.ParseBool(raw)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("invalid is_income %q", raw)
		}
	}

	tx := core.Transaction{
		Date:        date,
		Amount:      core.NewMoney(paise),
		IsIncome:    isIncome,
		Category:    category,
		Description: sanitizeInput(h.field(record, h.description)),
		Merchant:    sanitizeInput(h.field(record, h.merchant)),
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return tx, nil
}

// importBody locates the CSV stream: a multipart upload under "file", or
// the raw request body.
func importBody(r *http.Request) (io.ReadCloser, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, fmt.Errorf("missing file field: %w", err)
		}
		return file, nil
	}
	return r.Body, nil
}

// handleImport ingests a CSV of transactions. Bad rows are skipped and
// reported by row number; good rows are stored regardless.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)

	body, err := importBody(r)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}
	defer body.Close()

	reader := csv.NewReader(body)
	reader.FieldsPerRecord = -1

	headerRecord, err := reader.Read()
	if err != nil {
		badRequest(w, "empty or unreadable CSV: %v", err)
		return
	}
	header, err := parseCSVHeader(headerRecord)
	if err != nil {
		badRequest(w, "%v", err)
		return
	}

	var result importResult
	row := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Skipped++
			if len(result.Errors) < maxImportErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			}
			continue
		}

		tx, err := header.rowToTransaction(record)
		if err != nil {
			result.Skipped++
			if len(result.Errors) < maxImportErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			}
			continue
		}

		if _, err := s.backend.CreateTransaction(r.Context(), tx); err != nil {
			result.Skipped++
			if len(result.Errors) < maxImportErrors {
				result.Errors = append(result.Errors, fmt.Sprintf("row %d: %v", row, err))
			}
			continue
		}
		result.Imported++
	}

	if result.Imported > 0 {
		s.invalidate()
	}
	s.logger.Info("CSV import finished",
		log.FieldOperation, log.OpImport,
		log.FieldRowCount, result.Imported,
		"skipped", result.Skipped)

	writeJSON(w, http.StatusOK, result)
}
