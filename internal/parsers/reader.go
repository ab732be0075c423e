package parsers

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"
)

// SheetReader fetches and parses sheets
type SheetReader struct {
	config *ParseConfig
	client *http.Client
	logger logger.Logger

	sheetsMu sync.Mutex
	sheets   SheetsFetcher
}

// NewSheetReader creates a reader. A nil client uses http.DefaultClient
// and a nil logger uses the global logger.
func NewSheetReader(config *ParseConfig, client *http.Client, log logger.Logger) (*SheetReader, error) {
	if config == nil {
		config = DefaultParseConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "parser", err.Error(), err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &SheetReader{
		config: config,
		client: client,
		logger: log.WithComponent("parsers"),
	}, nil
}

// SetSheetsFetcher replaces the Sheets API client used for sheets://
// sources
func (sr *SheetReader) SetSheetsFetcher(fetcher SheetsFetcher) {
	sr.sheetsMu.Lock()
	defer sr.sheetsMu.Unlock()
	sr.sheets = fetcher
}

// Read loads and parses one source
func (sr *SheetReader) Read(ctx context.Context, src Source) (*Sheet, error) {
	if !src.IsSet() {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, src.Name, nil, nil)
	}

	op := logger.NewOperationLogger("read_sheet", sr.logger).WithFields(logger.Fields{
		"source":   src.Name,
		"location": src.Location,
		"remote":   src.IsRemote() || src.IsSheetsAPI(),
	})

	if src.IsSheetsAPI() {
		sheet, err := sr.readSheetsAPI(ctx, src)
		if err != nil {
			op.Error(err, "Failed to load sheet")
			return nil, err
		}
		op.WithField("skipped", len(sheet.Issues)).Count("Sheet loaded", "rows", len(sheet.Rows))
		return sheet, nil
	}

	var data []byte
	var err error
	if src.IsRemote() {
		data, err = sr.fetch(ctx, src.Location)
	} else {
		data, err = sr.readFile(src.Location)
	}
	if err != nil {
		op.Error(err, "Failed to load sheet")
		return nil, err
	}

	sheet, err := sr.ParseBytes(ctx, src, data)
	if err != nil {
		op.Error(err, "Failed to parse sheet")
		return nil, err
	}

	op.WithField("skipped", len(sheet.Issues)).Count("Sheet loaded", "rows", len(sheet.Rows))
	return sheet, nil
}

func (sr *SheetReader) readFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		switch {
		case os.IsNotExist(err):
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		case os.IsPermission(err):
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		default:
			return nil, errors.FileError(errors.CodeDirectoryError, path, err)
		}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, sr.config.MaxBytes+1))
	if err != nil {
		return nil, errors.FileError(errors.CodeDirectoryError, path, err)
	}
	if int64(len(data)) > sr.config.MaxBytes {
		return nil, errors.FileError(errors.CodeFileTooLarge, path, nil).
			WithContext("max_bytes", sr.config.MaxBytes)
	}
	return data, nil
}

func (sr *SheetReader) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, sr.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeConnectionFailed, url, err)
	}
	req.Header.Set("Accept", "text/csv")
	if sr.config.UserAgent != "" {
		req.Header.Set("User-Agent", sr.config.UserAgent)
	}

	resp, err := sr.client.Do(req)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NetworkError(errors.CodeTimeout, url, err)
		}
		return nil, errors.NetworkError(errors.CodeConnectionFailed, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NetworkError(errors.CodeBadStatus, url, fmt.Errorf("status %s", resp.Status)).
			WithContext("status", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, sr.config.MaxBytes+1))
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, errors.NetworkError(errors.CodeTimeout, url, err)
		}
		return nil, errors.NetworkError(errors.CodeConnectionFailed, url, err)
	}
	if int64(len(data)) > sr.config.MaxBytes {
		return nil, errors.FileError(errors.CodeFileTooLarge, url, nil).
			WithContext("max_bytes", sr.config.MaxBytes)
	}

	sr.logger.WithFields(logger.Fields{
		"url":   url,
		"bytes": len(data),
	}).Debug("Fetched sheet")
	return data, nil
}
