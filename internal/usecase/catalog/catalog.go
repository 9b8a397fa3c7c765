package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	"legislation-chat-bot/internal/usecase/query"
)

// Function is the closed set of operations the model may invoke.
type Function int

const (
	FunctionUnknown Function = iota
	FunctionGetBillDetails
	FunctionSearchBills
)

const (
	paramBillNumber = "bill_number"
	paramQuery      = "query"
)

func ParseFunction(name string) Function {
	switch name {
	case "get_bill_details":
		return FunctionGetBillDetails
	case "search_bills":
		return FunctionSearchBills
	default:
		return FunctionUnknown
	}
}

func (f Function) String() string {
	switch f {
	case FunctionGetBillDetails:
		return "get_bill_details"
	case FunctionSearchBills:
		return "search_bills"
	default:
		return "unknown"
	}
}

// Definition describes one callable function to the model service.
type Definition struct {
	Name        string
	Description string
	Parameters  jsonschema.Definition
}

var definitions = []Definition{
	{
		Name:        FunctionGetBillDetails.String(),
		Description: "Get details for a given bill, including summary, status, sponsors, and actions",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				paramBillNumber: {
					Type:        jsonschema.String,
					Description: "Bill number, e.g. 'HB 1001' or 'SB 373'",
				},
			},
			Required: []string{paramBillNumber},
		},
	},
	{
		Name:        FunctionSearchBills.String(),
		Description: "Search for bills by matching a keyword or phrase in their bill number, title, or summary.",
		Parameters: jsonschema.Definition{
			Type: jsonschema.Object,
			Properties: map[string]jsonschema.Definition{
				paramQuery: {
					Type:        jsonschema.String,
					Description: "The search term to match.",
				},
			},
			Required: []string{paramQuery},
		},
	},
}

type Catalog struct {
	queries *query.Service
}

func New(queries *query.Service) *Catalog {
	return &Catalog{queries: queries}
}

// Definitions returns the static catalog sent with every initial exchange.
func (c *Catalog) Definitions() []Definition {
	return append([]Definition(nil), definitions...)
}

// Dispatch invokes the named function with args. Unknown names and missing
// or mistyped arguments produce an ErrorResult instead of failing.
func (c *Catalog) Dispatch(name string, args map[string]any) query.Result {
	switch ParseFunction(name) {
	case FunctionGetBillDetails:
		billNumber, errRes, ok := stringArg(args, paramBillNumber)
		if !ok {
			return errRes
		}
		return c.queries.GetBillDetails(billNumber)
	case FunctionSearchBills:
		q, errRes, ok := stringArg(args, paramQuery)
		if !ok {
			return errRes
		}
		return c.queries.SearchBills(q)
	default:
		return query.ErrorResult{Error: fmt.Sprintf("Unknown function: %s", name)}
	}
}

// DispatchRaw decodes rawArgs as a JSON object and dispatches. Text that is
// not a JSON object is replaced by an empty mapping; decoded reports whether
// the arguments were usable.
func (c *Catalog) DispatchRaw(name, rawArgs string) (result query.Result, decoded bool) {
	args := map[string]any{}
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil || args == nil {
		args = map[string]any{}
		return c.Dispatch(name, args), false
	}
	return c.Dispatch(name, args), true
}

func stringArg(args map[string]any, key string) (string, query.ErrorResult, bool) {
	raw, ok := args[key]
	if !ok {
		return "", query.ErrorResult{Error: fmt.Sprintf("Missing required argument: %s", key)}, false
	}
	s, ok := raw.(string)
	if !ok {
		return "", query.ErrorResult{Error: fmt.Sprintf("Argument %s must be a string", key)}, false
	}
	return s, query.ErrorResult{}, true
}
