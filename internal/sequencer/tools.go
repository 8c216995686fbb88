package sequencer

import (
	"context"
	"fmt"
	"time"

	"github.com/jamesprial/drivebench-mcp/internal/safety"
	"github.com/jamesprial/drivebench-mcp/internal/tools"
	"github.com/jamesprial/drivebench-mcp/internal/volume"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// DestructiveTools lists the benchmark tool names that require explicit
// confirmation before execution. bench_run writes multiple gigabytes of
// scratch data to user media.
var DestructiveTools = []string{
	"bench_run",
}

// BenchTools returns the tool registrations for the benchmark sequencer.
func BenchTools(ctrl RunController, catalog volume.Catalog, filter *safety.Filter, confirm *safety.ConfirmationTracker, audit *safety.AuditLogger) []tools.Registration {
	return []tools.Registration{
		benchRun(ctrl, catalog, filter, confirm, audit),
		benchCancel(ctrl, audit),
		benchStatus(ctrl),
	}
}

// benchRun constructs the bench_run tool Registration.
func benchRun(ctrl RunController, catalog volume.Catalog, filter *safety.Filter, confirm *safety.ConfirmationTracker, audit *safety.AuditLogger) tools.Registration {
	const toolName = "bench_run"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Start a sequential read/write throughput benchmark on a volume. Requires confirmation."),
		mcp.WithString("path",
			mcp.Description("Mount path of the target volume, as reported by list_volumes."),
			mcp.Required(),
		),
		mcp.WithNumber("available_bytes",
			mcp.Description("Free space on the volume in bytes. Looked up via the volume catalog when omitted."),
		),
		mcp.WithString("confirmation_token",
			mcp.Description("Confirmation token returned by a prior call to this tool."),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		path := req.GetString("path", "")
		params := map[string]any{"path": path}

		if path == "" {
			return tools.ErrorResult("path is required"), nil
		}
		if !filter.IsAllowed(path) {
			tools.LogAudit(audit, toolName, params, "denied by filter", start)
			return tools.ErrorResult(fmt.Sprintf("volume %q is not permitted by the safety filter", path)), nil
		}

		token := req.GetString("confirmation_token", "")
		if !confirm.Confirm(token) {
			return tools.ConfirmPrompt(confirm, toolName, path,
				fmt.Sprintf("Write and read benchmark files on %q. This temporarily consumes disk space and generates sustained I/O load.", path)), nil
		}

		avail := uint64(req.GetInt("available_bytes", 0))
		if avail == 0 {
			found := false
			for _, v := range catalog.ListVolumes() {
				if v.MountPath == path {
					avail = v.AvailableBytes
					found = true
					break
				}
			}
			if !found {
				tools.LogAudit(audit, toolName, params, "unknown volume", start)
				return tools.ErrorResult(fmt.Sprintf("volume %q not found; pass available_bytes explicitly to override", path)), nil
			}
		}

		if err := ctrl.Run(path, avail); err != nil {
			tools.LogAudit(audit, toolName, params, "error: "+err.Error(), start)
			return tools.ErrorResult(err.Error()), nil
		}

		tools.LogAudit(audit, toolName, params, "ok", start)
		return mcp.NewToolResultText(fmt.Sprintf("Benchmark started on %q. Poll bench_status for progress.", path)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// benchCancel constructs the bench_cancel tool Registration.
func benchCancel(ctrl RunController, audit *safety.AuditLogger) tools.Registration {
	const toolName = "bench_cancel"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Request cooperative cancellation of the in-flight benchmark run. Safe to call at any time."),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ctrl.Cancel()
		tools.LogAudit(audit, toolName, map[string]any{}, "ok", start)
		return mcp.NewToolResultText("Cancellation requested. The run stops at the next chunk or phase boundary."), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// benchStatus constructs the bench_status tool Registration.
func benchStatus(ctrl RunController) tools.Registration {
	const toolName = "bench_status"

	tool := mcp.NewTool(toolName,
		mcp.WithDescription("Return the current benchmark state: activity flag, status message, and results when complete."),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return tools.JSONResult(ctrl.Snapshot()), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
