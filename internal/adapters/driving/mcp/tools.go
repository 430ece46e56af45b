package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/htmltab/internal/core/domain"
	"github.com/custodia-labs/htmltab/internal/logger"
)

// ListTablesInput is the input schema for the list_tables tool.
type ListTablesInput struct {
	Source        string   `json:"source" jsonschema:"file path or http(s) URL of the HTML page"`
	Topic         []string `json:"topic,omitempty" jsonschema:"keywords describing the wanted table, used to suggest one"`
	KeepFootnotes bool     `json:"keep_footnotes,omitempty" jsonschema:"keep bracketed footnote markers such as [1]"`
}

// ListTablesOutput is the output schema for the list_tables tool.
type ListTablesOutput struct {
	ExtractionID string               `json:"extraction_id"`
	Source       string               `json:"source"`
	Tables       []TableSummaryOutput `json:"tables"`
	Count        int                  `json:"count"`
	Suggested    int                  `json:"suggested"`
}

// TableSummaryOutput describes one table without its contents.
type TableSummaryOutput struct {
	Index   int    `json:"index"`
	Caption string `json:"caption,omitempty"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Class   string `json:"class,omitempty"`
}

// ExtractTableInput is the input schema for the extract_table tool.
type ExtractTableInput struct {
	Source        string   `json:"source,omitempty" jsonschema:"file path or http(s) URL; may be omitted when extraction_id is given"`
	ExtractionID  string   `json:"extraction_id,omitempty" jsonschema:"ID returned by list_tables; reuses that page without fetching it again"`
	Table         *int     `json:"table,omitempty" jsonschema:"zero-based table index; when omitted the most relevant table is chosen"`
	Topic         []string `json:"topic,omitempty" jsonschema:"keywords describing the wanted table; ignored with extraction_id"`
	Format        string   `json:"format,omitempty" jsonschema:"csv, tsv, json or markdown (default markdown)"`
	KeepFootnotes bool     `json:"keep_footnotes,omitempty" jsonschema:"keep bracketed footnote markers such as [1]"`
}

// ExtractTableOutput is the output schema for the extract_table tool.
type ExtractTableOutput struct {
	Source  string `json:"source"`
	Index   int    `json:"index"`
	Caption string `json:"caption,omitempty"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Format  string `json:"format"`
	Content string `json:"content"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_tables",
		Description: "List the tables in an HTML page with their size, class and caption",
	}, s.handleListTables)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "extract_table",
		Description: "Extract one table from an HTML page as CSV, TSV, JSON or Markdown",
	}, s.handleExtractTable)
}

// handleListTables handles the list_tables tool invocation.
func (s *Server) handleListTables(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ListTablesInput,
) (*mcp.CallToolResult, ListTablesOutput, error) {
	source, err := checkSource(input.Source)
	if err != nil {
		return nil, ListTablesOutput{}, err
	}

	opts := domain.ExtractOptions{Topic: input.Topic, KeepFootnotes: input.KeepFootnotes}
	e, err := s.ports.Extract.Extract(ctx, source, opts)
	if err != nil && !errors.Is(err, domain.ErrNoTables) {
		return nil, ListTablesOutput{}, err
	}

	output := ListTablesOutput{
		Source:    source,
		Tables:    make([]TableSummaryOutput, 0, len(e.Tables)),
		Count:     len(e.Tables),
		Suggested: e.Selected,
	}
	for _, sum := range e.Summaries() {
		output.Tables = append(output.Tables, TableSummaryOutput(sum))
	}
	if len(e.Tables) > 0 {
		s.remember(ctx, e)
		output.ExtractionID = e.ID
	}

	return nil, output, nil
}

// handleExtractTable handles the extract_table tool invocation.
func (s *Server) handleExtractTable(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ExtractTableInput,
) (*mcp.CallToolResult, ExtractTableOutput, error) {
	format := domain.FormatMarkdown
	if input.Format != "" {
		f, err := domain.ParseOutputFormat(input.Format)
		if err != nil {
			return nil, ExtractTableOutput{}, err
		}
		format = f
	}

	e, err := s.resolveExtraction(ctx, input)
	if err != nil {
		return nil, ExtractTableOutput{}, err
	}

	table, ok := e.SelectedTable()
	if !ok {
		return nil, ExtractTableOutput{}, domain.ErrNoTables
	}

	var buf bytes.Buffer
	if err := s.ports.Export.Write(&buf, table, format); err != nil {
		return nil, ExtractTableOutput{}, fmt.Errorf("rendering table: %w", err)
	}

	return nil, ExtractTableOutput{
		Source:  e.Source.Location,
		Index:   e.Selected,
		Caption: table.Caption,
		Rows:    len(table.Rows),
		Columns: table.Width(),
		Format:  format.String(),
		Content: buf.String(),
	}, nil
}

// resolveExtraction returns an extraction whose Selected field names the
// wanted table, either from the list_tables cache or by extracting the source.
func (s *Server) resolveExtraction(ctx context.Context, input ExtractTableInput) (*domain.Extraction, error) {
	if input.ExtractionID != "" {
		e, err := s.cache.GetExtraction(ctx, input.ExtractionID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, fmt.Errorf("%w: unknown extraction_id %q, call list_tables again", domain.ErrNotFound, input.ExtractionID)
			}
			return nil, err
		}
		if input.Table != nil {
			if *input.Table < 0 || *input.Table >= len(e.Tables) {
				return nil, &domain.IndexOutOfRangeError{Index: *input.Table, Count: len(e.Tables)}
			}
			e.Selected = *input.Table
		}
		return e, nil
	}

	source, err := checkSource(input.Source)
	if err != nil {
		return nil, err
	}
	return s.ports.Extract.Extract(ctx, source, domain.ExtractOptions{
		Index:         input.Table,
		Topic:         input.Topic,
		KeepFootnotes: input.KeepFootnotes,
	})
}

// remember caches an extraction, evicting the oldest beyond maxCached.
func (s *Server) remember(ctx context.Context, e *domain.Extraction) {
	if err := s.cache.SaveExtraction(ctx, e); err != nil {
		logger.Warn("mcp: caching extraction: %v", err)
		return
	}
	cached, err := s.cache.ListExtractions(ctx, 0)
	if err != nil {
		return
	}
	for i := maxCached; i < len(cached); i++ {
		if err := s.cache.DeleteExtraction(ctx, cached[i].ID); err != nil {
			logger.Warn("mcp: evicting extraction: %v", err)
		}
	}
}

// checkSource rejects empty sources and standard input, which carries the
// protocol itself under the stdio transport.
func checkSource(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("%w: source is required", domain.ErrInvalidInput)
	}
	if domain.ParseSource(source).Kind == domain.SourceStdin {
		return "", fmt.Errorf("%w: standard input cannot be read over MCP", domain.ErrUnsupportedSource)
	}
	return source, nil
}
