package volume

import (
	"context"
	"time"

	"github.com/jamesprial/drivebench-mcp/internal/safety"
	"github.com/jamesprial/drivebench-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// VolumeTools returns the tool registrations for volume enumeration.
func VolumeTools(catalog Catalog, filter *safety.Filter, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		listVolumes(catalog, filter, audit),
	}
}

// listVolumes constructs the list_volumes tool Registration.
func listVolumes(catalog Catalog, filter *safety.Filter, audit *safety.AuditLogger) tools.Registration {
	const toolName = "list_volumes"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("List mounted volumes with their available space in bytes."),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()

		vols := catalog.ListVolumes()
		allowed := make([]Descriptor, 0, len(vols))
		for _, v := range vols {
			if filter.IsAllowed(v.MountPath) {
				allowed = append(allowed, v)
			}
		}

		tools.LogAudit(audit, toolName, map[string]any{}, "ok", start)
		return tools.JSONResult(allowed), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
