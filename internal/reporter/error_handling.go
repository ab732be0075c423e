package reporter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"fleet-reconciliation-service/internal/analytics"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/reconciler"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with output file handling,
// categorised errors and a console fallback.
//
// Reports are rendered into memory first, so a failed render never leaves
// partial output behind.
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		if config != nil && !config.Format.IsValid() {
			return nil, errors.ReportError(errors.CodeUnsupportedFormat, string(config.Format), err)
		}
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report_config",
			config,
			err,
		).WithSuggestion("Check the report configuration values")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

type renderFunc func(*ReportGenerator, io.Writer) error

// WriteView renders a view to the configured output file, or to writer
// when no file is configured
func (srg *SafeReportGenerator) WriteView(view *reconciler.ViewResult, writer io.Writer) error {
	if view == nil || view.Summary == nil {
		return errors.InternalError(errors.CodeUnexpectedError, "report_view", fmt.Errorf("view result is nil"))
	}
	return srg.write("view", writer, func(rg *ReportGenerator, w io.Writer) error {
		return rg.GenerateReport(view, w)
	})
}

// WriteDaily renders a daily report
func (srg *SafeReportGenerator) WriteDaily(daily *analytics.Daily, writer io.Writer) error {
	if daily == nil {
		return errors.InternalError(errors.CodeUnexpectedError, "report_daily", fmt.Errorf("daily report is nil"))
	}
	return srg.write("daily", writer, func(rg *ReportGenerator, w io.Writer) error {
		return rg.GenerateDailyReport(daily, w)
	})
}

// WriteFacets renders a facet listing
func (srg *SafeReportGenerator) WriteFacets(facets map[models.Column][]string, writer io.Writer) error {
	return srg.write("facets", writer, func(rg *ReportGenerator, w io.Writer) error {
		return rg.GenerateFacets(facets, w)
	})
}

func (srg *SafeReportGenerator) write(kind string, writer io.Writer, render renderFunc) error {
	op := logger.NewOperationLogger("report", srg.logger).WithFields(logger.Fields{
		"kind":   kind,
		"format": srg.config.Format,
		"output": srg.describeOutput(writer),
	})

	var buf bytes.Buffer
	if err := srg.renderWithFallback(&buf, render); err != nil {
		op.Error(err, "Report generation failed")
		return err
	}

	if err := srg.flush(&buf, writer); err != nil {
		op.Error(err, "Report output failed")
		return err
	}

	op.Success("Report written")
	return nil
}

// renderWithFallback renders with the configured format and, when that
// fails for a structured format, once more as a console report.
func (srg *SafeReportGenerator) renderWithFallback(buf *bytes.Buffer, render renderFunc) error {
	err := render(srg.ReportGenerator, buf)
	if err == nil {
		return nil
	}
	primary := errors.ReportError(errors.CodeRenderFailed, string(srg.config.Format), err)

	if srg.config.Format == FormatConsole {
		return primary
	}

	srg.logger.WithError(err).WithField("fallback_format", FormatConsole).
		Warn("Primary report generation failed, attempting console fallback")

	fallbackConfig := *srg.config
	fallbackConfig.Format = FormatConsole
	fallback, ferr := NewReportGenerator(&fallbackConfig)
	if ferr != nil {
		return primary
	}

	buf.Reset()
	fmt.Fprintf(buf, "NOTE: Report generated in fallback format due to error with requested format\n")
	fmt.Fprintf(buf, "Original error: %v\n\n", err)
	if ferr := render(fallback, buf); ferr != nil {
		return errors.InternalError(
			errors.CodeUnexpectedError,
			"report_fallback",
			fmt.Errorf("both primary and fallback generation failed: primary=%v, fallback=%v", err, ferr),
		)
	}
	return nil
}

func (srg *SafeReportGenerator) flush(buf *bytes.Buffer, writer io.Writer) error {
	path := srg.config.OutputFile
	if path == "" {
		if writer == nil {
			return errors.InternalError(errors.CodeUnexpectedError, "report_output", fmt.Errorf("no output writer"))
		}
		if _, err := buf.WriteTo(writer); err != nil {
			return errors.ReportError(errors.CodeRenderFailed, string(srg.config.Format), err)
		}
		return nil
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.FileError(errors.CodeDirectoryError, dir, err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		code := errors.CodeDirectoryError
		if os.IsPermission(err) {
			code = errors.CodeFilePermission
		}
		return errors.FileError(code, path, err)
	}
	return nil
}

func (srg *SafeReportGenerator) describeOutput(writer io.Writer) string {
	if srg.config.OutputFile != "" {
		return "file:" + srg.config.OutputFile
	}
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return "file:" + w.Name()
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
