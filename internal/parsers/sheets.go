package parsers

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"fleet-reconciliation-service/pkg/errors"
)

// SheetsFetcher reads the cell values of a spreadsheet range
type SheetsFetcher interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// SheetsAPI reads ranges through the Google Sheets v4 API
type SheetsAPI struct {
	service *sheets.Service
}

// NewSheetsAPI creates a read-only Sheets client. A service account key
// file wins over an API key; with neither, application default
// credentials are used.
func NewSheetsAPI(ctx context.Context, credentialsFile, apiKey string, opts ...option.ClientOption) (*SheetsAPI, error) {
	switch {
	case credentialsFile != "":
		jsonKey, err := os.ReadFile(credentialsFile)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.FileError(errors.CodeFileNotFound, credentialsFile, err)
			}
			return nil, errors.FileError(errors.CodeFilePermission, credentialsFile, err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "sheets-credentials", credentialsFile, err).
				WithSuggestion("use a service account JSON key")
		}
		opts = append(opts, option.WithHTTPClient(oauth2.NewClient(ctx, jwtConfig.TokenSource(ctx))))

	case apiKey != "":
		opts = append(opts, option.WithAPIKey(apiKey))

	default:
		opts = append(opts, option.WithScopes(sheets.SpreadsheetsReadonlyScope))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "sheets", "client", err).
			WithSuggestion("pass --sheets-credentials or --sheets-api-key")
	}
	return &SheetsAPI{service: service}, nil
}

// Values returns the formatted cell values of readRange. The API drops
// trailing empty cells, so every row is padded to the widest row, which
// is what a CSV export of the same range contains.
func (s *SheetsAPI) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	resp, err := s.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}

	width := 0
	for _, row := range resp.Values {
		width = max(width, len(row))
	}

	values := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, width)
		for j, cell := range row {
			if cell != nil {
				cells[j] = fmt.Sprint(cell)
			}
		}
		values[i] = cells
	}
	return values, nil
}

// sheetsFetcher returns the configured fetcher, creating the API client on
// first use.
func (sr *SheetReader) sheetsFetcher(ctx context.Context) (SheetsFetcher, error) {
	sr.sheetsMu.Lock()
	defer sr.sheetsMu.Unlock()

	if sr.sheets != nil {
		return sr.sheets, nil
	}

	api, err := NewSheetsAPI(ctx, sr.config.SheetsCredentials, sr.config.SheetsAPIKey)
	if err != nil {
		return nil, err
	}
	sr.sheets = api
	return api, nil
}

func (sr *SheetReader) readSheetsAPI(ctx context.Context, src Source) (*Sheet, error) {
	spreadsheetID, readRange, err := src.SheetsRange()
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, src.Name, src.Location, err)
	}

	fetcher, err := sr.sheetsFetcher(ctx)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, sr.config.Timeout)
	defer cancel()

	values, err := fetcher.Values(ctx, spreadsheetID, readRange)
	if err != nil {
		return nil, sheetsError(src.Location, err)
	}

	sr.logger.WithField("location", src.Location).
		WithField("rows", len(values)).
		Debug("Fetched sheet values")
	return sr.ParseValues(ctx, src, values)
}

func sheetsError(location string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NetworkError(errors.CodeTimeout, location, err)
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		re := errors.NetworkError(errors.CodeBadStatus, location, err).
			WithContext("status", apiErr.Code)
		switch apiErr.Code {
		case http.StatusForbidden, http.StatusUnauthorized:
			re.WithSuggestion("share the spreadsheet with the service account or check the API key")
		case http.StatusNotFound:
			re.WithSuggestion("check the spreadsheet ID and the tab name in the range")
		}
		return re
	}

	return errors.NetworkError(errors.CodeConnectionFailed, location, err)
}
