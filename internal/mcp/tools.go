package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"pharmassist/internal/assistant"
	"pharmassist/internal/jsonutil"
	"pharmassist/internal/store"
)

// ToolManager manages MCP tools for the pharmacy assistant.
type ToolManager struct {
	agent  *assistant.Agent
	store  *store.FileStore
	config *Config
}

// NewToolManager creates a new tool manager.
func NewToolManager(agent *assistant.Agent, dataStore *store.FileStore, config *Config) *ToolManager {
	return &ToolManager{agent: agent, store: dataStore, config: config}
}

// RegisterTools registers all available tools with the MCP server.
func (tm *ToolManager) RegisterTools(s *server.MCPServer) error {
	// Conversational tool (only if not read-only; all writes flow
	// through it)
	if !tm.config.ReadOnly {
		chatTool := mcp.NewTool("pharmacy_chat",
			mcp.WithDescription("Ask the pharmacy assistant a question in plain English. "+
				"Destructive commands require a follow-up confirmation turn with the same user_id."),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("The natural-language query"),
			),
			mcp.WithString("user_id",
				mcp.Description("Session id for multi-turn confirmations (defaults to 'mcp')"),
			),
		)
		s.AddTool(chatTool, tm.handleChatTool)
	}

	// Record listing tool
	listTool := mcp.NewTool("pharmacy_list",
		mcp.WithDescription("List all records of a collection, sorted by name"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name: "+strings.Join(store.Collections, ", ")),
		),
	)
	s.AddTool(listTool, tm.handleListTool)

	// Record lookup tool
	getTool := mcp.NewTool("pharmacy_get",
		mcp.WithDescription("Get a single record by id"),
		mcp.WithString("collection",
			mcp.Required(),
			mcp.Description("Collection name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Record id"),
		),
	)
	s.AddTool(getTool, tm.handleGetTool)

	// Stock tool
	stockTool := mcp.NewTool("pharmacy_stock",
		mcp.WithDescription("Get a medicine's stock level and status band"),
		mcp.WithString("medicine_id",
			mcp.Required(),
			mcp.Description("Medicine record id"),
		),
		mcp.WithString("department_id",
			mcp.Description("Limit the sum to one department's stores"),
		),
	)
	s.AddTool(stockTool, tm.handleStockTool)

	// Activity log tool
	activityTool := mcp.NewTool("pharmacy_activity",
		mcp.WithDescription("Read recent activity log entries, newest first"),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries (default 20)"),
		),
		mcp.WithString("user_id",
			mcp.Description("Only entries by this user"),
		),
		mcp.WithString("entity_type",
			mcp.Description("Only entries touching this entity type"),
		),
	)
	s.AddTool(activityTool, tm.handleActivityTool)

	// Command catalog tool
	commandsTool := mcp.NewTool("pharmacy_commands",
		mcp.WithDescription("List example questions the assistant understands"),
	)
	s.AddTool(commandsTool, tm.handleCommandsTool)

	return nil
}

// Tool handlers

func (tm *ToolManager) handleChatTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	userID := request.GetString("user_id", "mcp")

	result := tm.agent.ProcessQuery(ctx, query, userID)

	var output strings.Builder
	output.WriteString(result.Response)
	if len(result.Data) > 0 {
		if pretty := jsonutil.PrettyPrintValue(result.Data); pretty != "" {
			output.WriteString("\n")
			output.WriteString(pretty)
		}
	}
	if !result.Success && !result.AwaitingConfirmation {
		return mcp.NewToolResultError(output.String()), nil
	}
	return mcp.NewToolResultText(output.String()), nil
}

func (tm *ToolManager) handleListTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	records, err := tm.store.List(collection)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list '%s': %v", collection, err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No records in '%s'", collection)), nil
	}
	records = store.SortedByName(records)

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Records in '%s' (%d):\n", collection, len(records)))
	output.WriteString(jsonutil.PrettyPrintValue(records))
	return mcp.NewToolResultText(output.String()), nil
}

func (tm *ToolManager) handleGetTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	collection, err := request.RequireString("collection")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	record, err := tm.store.GetByID(collection, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get '%s' from '%s': %v", id, collection, err)), nil
	}
	return mcp.NewToolResultText(jsonutil.PrettyPrintValue(record)), nil
}

func (tm *ToolManager) handleStockTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	medicineID, err := request.RequireString("medicine_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	departmentID := request.GetString("department_id", "")

	quantity, err := tm.store.GetStock(medicineID, departmentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read stock for '%s': %v", medicineID, err)), nil
	}
	status, err := tm.store.GetStockStatus(medicineID, departmentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read stock status for '%s': %v", medicineID, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Medicine: %s\nQuantity: %d units\nStatus: %s (%s)",
		medicineID, quantity, status.Status, status.Message)), nil
}

func (tm *ToolManager) handleActivityTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := int(request.GetFloat("limit", 0.0))
	if limit <= 0 {
		limit = 20
	}
	filter := store.ActivityFilter{
		UserID:     request.GetString("user_id", ""),
		EntityType: request.GetString("entity_type", ""),
	}

	entries, err := tm.store.Recent(limit, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to read activity log: %v", err)), nil
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText("No activity recorded"), nil
	}

	var output strings.Builder
	output.WriteString(fmt.Sprintf("Activity log (%d entries):\n", len(entries)))
	for _, e := range entries {
		output.WriteString(fmt.Sprintf("%s  %s %s %s by %s\n",
			e.Timestamp, e.Action, e.EntityType, e.EntityID, e.UserID))
	}
	return mcp.NewToolResultText(output.String()), nil
}

func (tm *ToolManager) handleCommandsTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	commands := tm.agent.SupportedCommands()
	var output strings.Builder
	output.WriteString(fmt.Sprintf("Supported commands (%d):\n", len(commands)))
	for _, cmd := range commands {
		output.WriteString("- " + cmd + "\n")
	}
	return mcp.NewToolResultText(output.String()), nil
}
