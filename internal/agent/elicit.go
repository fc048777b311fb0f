package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ElicitationPrompter answers elicitation requests the gateway relays from
// backends mid-call. It shows the backend's message, asks whether to accept,
// and collects one value per schema field from the terminal.
type ElicitationPrompter struct {
	logger *Logger
	in     *bufio.Reader
}

// NewElicitationPrompter creates a prompter reading answers from in,
// normally os.Stdin.
func NewElicitationPrompter(logger *Logger, in io.Reader) *ElicitationPrompter {
	return &ElicitationPrompter{
		logger: logger,
		in:     bufio.NewReader(in),
	}
}

// elicitationSchema is the subset of JSON schema backends send along with an
// elicitation request: a flat object with typed properties.
type elicitationSchema struct {
	Type       string                      `json:"type"`
	Properties map[string]elicitationField `json:"properties"`
	Required   []string                    `json:"required"`
}

type elicitationField struct {
	Type        string      `json:"type"`
	Description string      `json:"description"`
	Default     interface{} `json:"default"`
}

// Elicit implements the MCP client elicitation handler. It blocks on
// terminal input, which is fine here: the REPL runs one command at a time.
func (p *ElicitationPrompter) Elicit(ctx context.Context, request mcp.ElicitationRequest) (*mcp.ElicitationResult, error) {
	p.logger.OutputLine("")
	p.logger.OutputLine("Input requested:")
	p.logger.OutputLine("  %s", request.Params.Message)

	schema := decodeElicitationSchema(request.Params.RequestedSchema)

	choice, err := p.askChoice()
	if err != nil {
		return nil, err
	}

	result := &mcp.ElicitationResult{}
	switch choice {
	case "decline":
		result.Action = "decline"
	case "cancel":
		result.Action = "cancel"
	default:
		content, err := p.collectFields(schema)
		if err != nil {
			return nil, err
		}
		result.Action = "accept"
		result.Content = content
	}
	return result, nil
}

// askChoice reads the accept/decline/cancel decision. EOF counts as cancel.
func (p *ElicitationPrompter) askChoice() (string, error) {
	for {
		p.logger.Output("Respond? [y]es, [n]o, [c]ancel: ")
		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				return "cancel", nil
			}
			return "", fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return "accept", nil
		case "n", "no":
			return "decline", nil
		case "c", "cancel":
			return "cancel", nil
		}
		p.logger.OutputLine("Please answer y, n, or c.")
	}
}

// collectFields prompts for each schema field. Empty input takes the field's
// default when one exists and omits the field otherwise.
func (p *ElicitationPrompter) collectFields(schema elicitationSchema) (map[string]interface{}, error) {
	content := map[string]interface{}{}

	for _, name := range fieldOrder(schema) {
		field := schema.Properties[name]

		prompt := "  " + name
		if field.Description != "" {
			prompt += " (" + field.Description + ")"
		}
		if field.Default != nil {
			prompt += fmt.Sprintf(" [%v]", field.Default)
		}
		p.logger.Output("%s: ", prompt)

		line, err := p.in.ReadString('\n')
		if err != nil && line == "" {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("failed to read input: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			if field.Default != nil {
				content[name] = field.Default
			}
			continue
		}
		content[name] = convertFieldInput(field.Type, input)
	}

	return content, nil
}

// fieldOrder lists required fields first, in schema order, then the rest
// alphabetically.
func fieldOrder(schema elicitationSchema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	order := make([]string, 0, len(schema.Properties))

	for _, name := range schema.Required {
		if _, ok := schema.Properties[name]; ok && !seen[name] {
			seen[name] = true
			order = append(order, name)
		}
	}

	rest := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(order, rest...)
}

// convertFieldInput coerces terminal input to the schema field type. Values
// that don't parse pass through as strings so the backend can decide.
func convertFieldInput(fieldType, input string) interface{} {
	switch fieldType {
	case "boolean":
		switch strings.ToLower(input) {
		case "y", "yes", "true", "1":
			return true
		case "n", "no", "false", "0":
			return false
		}
	case "number", "integer":
		if n, err := strconv.ParseFloat(input, 64); err == nil {
			return n
		}
	}
	return input
}

// decodeElicitationSchema converts the request's schema into the local view.
// Requests without a usable schema produce an empty field set, which still
// lets the user accept or decline.
func decodeElicitationSchema(raw interface{}) elicitationSchema {
	var schema elicitationSchema
	data, err := json.Marshal(raw)
	if err != nil {
		return schema
	}
	if err := json.Unmarshal(data, &schema); err != nil {
		return schema
	}
	return schema
}
