// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes meal-planning tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/mealprep/internal/mealservice"
)

// Server wraps the MCP server with meal-planning tools for one household.
type Server struct {
	mcp       *server.MCPServer
	svc       *mealservice.Service
	household string
}

// New creates a new MCP server acting on householdID.
func New(svc *mealservice.Service, householdID, version string) *Server {
	s := &Server{svc: svc, household: householdID}

	s.mcp = server.NewMCPServer(
		"MealPrepBuddy",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_recipes",
		mcp.WithDescription("List the household's recipes, optionally filtered by tag id or a title/notes search."),
		mcp.WithString("tag_id", mcp.Description("Only recipes carrying this tag id")),
		mcp.WithString("query", mcp.Description("Case-insensitive substring of title or notes")),
	), s.listRecipes)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List the household's tags with their ids and types."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List constraint and reminder rules. Each rule carries rule_kind CONSTRAINT or ACTION."),
	), s.listRules)

	s.mcp.AddTool(mcp.NewTool("get_plan",
		mcp.WithDescription("Return the weekly plan. Weeks start on Monday; unplanned weeks are empty."),
		mcp.WithString("week", mcp.Required(), mcp.Description("Week start date, a Monday (YYYY-MM-DD)")),
	), s.getPlan)

	s.mcp.AddTool(mcp.NewTool("set_plan_entry",
		mcp.WithDescription("Plan a recipe for dinner on one date of the week."),
		mcp.WithString("week", mcp.Required(), mcp.Description("Week start date, a Monday (YYYY-MM-DD)")),
		mcp.WithString("date", mcp.Required(), mcp.Description("Dinner date inside the week (YYYY-MM-DD)")),
		mcp.WithString("recipe_id", mcp.Required(), mcp.Description("Recipe id from list_recipes")),
		mcp.WithNumber("servings", mcp.Description("Servings; defaults to the recipe's default_servings")),
	), s.setPlanEntry)

	s.mcp.AddTool(mcp.NewTool("validate_plan",
		mcp.WithDescription("Check the weekly plan against enabled constraint rules and return warnings."),
		mcp.WithString("week", mcp.Required(), mcp.Description("Week start date, a Monday (YYYY-MM-DD)")),
	), s.validatePlan)

	s.mcp.AddTool(mcp.NewTool("export_calendar",
		mcp.WithDescription("Render the weekly plan with its reminders as an iCalendar (.ics) document. "+
			"Reminder message placeholders are described by the "+TemplatePlaceholdersURI+" resource."),
		mcp.WithString("week", mcp.Required(), mcp.Description("Week start date, a Monday (YYYY-MM-DD)")),
	), s.exportCalendar)

	s.mcp.AddResource(
		mcp.NewResource(TemplatePlaceholdersURI, "Reminder Template Placeholders",
			mcp.WithResourceDescription("Placeholders available in reminder rule message templates."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.staticResource(TemplatePlaceholdersURI, TemplatePlaceholders),
	)
	s.mcp.AddResource(
		mcp.NewResource(RecipeFormatURI, "Recipe Catalog Format",
			mcp.WithResourceDescription("Format of recipe documents in the catalog directory."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.staticResource(RecipeFormatURI, RecipeFormat),
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listRecipes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recipes, err := s.svc.ListRecipes(ctx, s.household, mealservice.RecipeFilter{
		TagID: req.GetString("tag_id", ""),
		Query: req.GetString("query", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(recipes)
}

func (s *Server) listTags(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tags, err := s.svc.ListTags(ctx, s.household)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(tags)
}

func (s *Server) listRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, err := s.svc.ListRules(ctx, s.household)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(rules)
}

func (s *Server) getPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week, err := req.RequireString("week")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	plan, err := s.svc.GetPlan(ctx, s.household, week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(plan)
}

func (s *Server) setPlanEntry(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var in mealservice.EntryInput
	week, err := req.RequireString("week")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if in.Date, err = req.RequireString("date"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if in.RecipeID, err = req.RequireString("recipe_id"); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in.Servings = req.GetInt("servings", 0)
	if in.Servings == 0 {
		recipe, err := s.svc.GetRecipe(ctx, s.household, in.RecipeID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		in.Servings = recipe.DefaultServings
	}
	plan, err := s.svc.SetEntry(ctx, s.household, week, in)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(plan)
}

func (s *Server) validatePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week, err := req.RequireString("week")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	warnings, err := s.svc.ValidatePlan(ctx, s.household, week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(map[string]any{"warnings": warnings})
}

func (s *Server) exportCalendar(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	week, err := req.RequireString("week")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	cal, err := s.svc.ExportCalendar(ctx, s.household, week)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(cal.Body), nil
}

func (s *Server) staticResource(uri, text string) server.ResourceHandlerFunc {
	return func(context.Context, mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      uri,
				MIMEType: "text/markdown",
				Text:     text,
			},
		}, nil
	}
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}
