// Package mcp tool input/output schemas.
package mcp

// RulesInput defines the input for the polyrc_rules tool.
type RulesInput struct {
	Project string `json:"project,omitempty" jsonschema:"Project to list rules for (empty for all projects)"`
	Scope   string `json:"scope,omitempty" jsonschema:"Filter by scope: user | project | path"`
	Format  string `json:"format,omitempty" jsonschema:"Filter by the dialect the rule was last read from"`
}

// RulesOutput defines the output for the polyrc_rules tool.
type RulesOutput struct {
	Rules []RuleSummary `json:"rules" jsonschema:"Matching rules"`
	Count int           `json:"count" jsonschema:"Number of matching rules"`
}

// RuleSummary is the agent-facing view of a stored rule.
type RuleSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Project     string   `json:"project"`
	Scope       string   `json:"scope"`
	Activation  string   `json:"activation"`
	Globs       []string `json:"globs,omitempty"`
	Description string   `json:"description,omitempty"`
	Content     string   `json:"content"`
}

// ProjectsInput defines the input for the polyrc_projects tool.
type ProjectsInput struct{}

// ProjectsOutput defines the output for the polyrc_projects tool.
type ProjectsOutput struct {
	Projects []string `json:"projects" jsonschema:"Project names in the store"`
}

// ActiveInput defines the input for the polyrc_active tool.
type ActiveInput struct {
	File    string `json:"file" jsonschema:"File path to resolve rules for"`
	Project string `json:"project,omitempty" jsonschema:"Project whose rules to consider (user-global rules are always included)"`
}

// ActiveOutput defines the output for the polyrc_active tool.
type ActiveOutput struct {
	Active []RuleSummary `json:"active" jsonschema:"Rules that apply to the file"`
	Count  int           `json:"count" jsonschema:"Number of applicable rules"`
}
