package mcp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// argumentsMap returns the tool arguments as a map.
// mcp-go decodes the arguments object into map[string]interface{}.
func argumentsMap(request mcp.CallToolRequest) (map[string]interface{}, error) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("invalid arguments format")
	}
	return argsMap, nil
}

// parseStringArg extracts a string argument.
// Returns an error if the argument is required but missing, empty or not a string.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}
	return str, nil
}

// parseClampedInt extracts an integer argument clamped to [lo, hi].
// MCP sends numbers as float64, though some clients send every argument as a string.
// A missing or non-numeric value yields defaultVal.
func parseClampedInt(argsMap map[string]interface{}, key string, defaultVal, lo, hi int) int {
	val := defaultVal
	switch v := argsMap[key].(type) {
	case float64:
		val = int(v)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			val = n
		}
	}
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
