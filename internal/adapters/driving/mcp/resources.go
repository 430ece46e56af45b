package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/htmltab/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for htmltab resources.
	uriScheme = "htmltab://"

	// historyLimit caps the history listing resource.
	historyLimit = 50
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing saved extractions.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "history",
		Description: "Recently saved extractions",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)

	// Template for one saved extraction.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{extractionId}",
		Name:        "extraction",
		Description: "Tables found in a saved extraction",
		MIMEType:    "application/json",
	}, s.handleExtractionResource)

	// Template for the contents of one saved table.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "history/{extractionId}/tables/{index}",
		Name:        "extraction-table",
		Description: "One table of a saved extraction as Markdown",
		MIMEType:    "text/markdown",
	}, s.handleTableResource)
}

type extractionInfo struct {
	ID        string                `json:"id"`
	Source    string                `json:"source"`
	Tables    int                   `json:"tables"`
	Selected  int                   `json:"selected"`
	CreatedAt time.Time             `json:"created_at"`
	Summaries []domain.TableSummary `json:"summaries,omitempty"`
}

// handleHistoryResource lists saved extractions, most recent first.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	list, err := s.ports.History.List(ctx, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("listing history: %w", err)
	}

	infos := make([]extractionInfo, len(list))
	for i, sum := range list {
		infos[i] = extractionInfo{
			ID:        sum.ID,
			Source:    sum.Source.Location,
			Tables:    sum.TableCount,
			Selected:  sum.Selected,
			CreatedAt: sum.CreatedAt,
		}
	}

	return jsonResult(req.Params.URI, infos)
}

// handleExtractionResource describes the tables of one saved extraction.
func (s *Server) handleExtractionResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, index, ok := parseHistoryURI(req.Params.URI)
	if !ok || index != -1 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	e, err := s.ports.History.Get(ctx, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return jsonResult(req.Params.URI, extractionInfo{
		ID:        e.ID,
		Source:    e.Source.Location,
		Tables:    len(e.Tables),
		Selected:  e.Selected,
		CreatedAt: e.CreatedAt,
		Summaries: e.Summaries(),
	})
}

// handleTableResource renders one table of a saved extraction.
func (s *Server) handleTableResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, index, ok := parseHistoryURI(req.Params.URI)
	if !ok || index < 0 {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	e, err := s.ports.History.Get(ctx, id)
	if err != nil || index >= len(e.Tables) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	var buf bytes.Buffer
	if err := s.ports.Export.Write(&buf, e.Tables[index], domain.FormatMarkdown); err != nil {
		return nil, fmt.Errorf("rendering table: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     buf.String(),
		}},
	}, nil
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseHistoryURI splits htmltab://history/{id}[/tables/{index}].
// index is -1 when the URI names the whole extraction.
func parseHistoryURI(uri string) (id string, index int, ok bool) {
	const prefix = uriScheme + "history/"

	if !strings.HasPrefix(uri, prefix) {
		return "", -1, false
	}
	rest := strings.TrimPrefix(uri, prefix)

	id, table, found := strings.Cut(rest, "/tables/")
	if id == "" || strings.Contains(id, "/") {
		return "", -1, false
	}
	if !found {
		return id, -1, true
	}

	n, err := strconv.Atoi(table)
	if err != nil || n < 0 {
		return "", -1, false
	}
	return id, n, true
}
