package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/GriffinCanCode/AgentOS/runtime/internal/shared/types"
)

// Size limits (in bytes)
const (
	MaxUISpecSize  = 512 * 1024 // 512KB - UI spec size limit
	MaxContextSize = 64 * 1024  // 64KB - context map size limit
	MaxMessageSize = 16 * 1024  // 16KB - single message size limit
)

// Structural limits
const (
	MaxIDLength      = 128
	MaxSpecDepth     = 20
	MaxComponents    = 2000
	MaxHooksPerPhase = 32
)

// ErrInvalidSpec is returned for specs that cannot be installed
var ErrInvalidSpec = errors.New("invalid app spec")

// ToolIDPattern allows alphanumeric, hyphens, underscores, and dots (category.action)
var ToolIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+\.[a-zA-Z0-9._-]+$`)

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}
	return nil
}

// ValidateToolID validates a category.action tool identifier
func ValidateToolID(id string) error {
	if err := ValidateString(id, "tool_id", 1, MaxIDLength, true); err != nil {
		return err
	}
	if !ToolIDPattern.MatchString(id) {
		return fmt.Errorf("tool_id %q must have the form category.action", id)
	}
	return nil
}

// ValidateMessage validates a generation request
func ValidateMessage(message string) error {
	if err := ValidateString(strings.TrimSpace(message), "message", 1, MaxMessageSize, true); err != nil {
		return err
	}
	return nil
}

// ValidateContext validates a generation context before it is sent
func ValidateContext(context map[string]interface{}) error {
	data, err := json.Marshal(context)
	if err != nil {
		return fmt.Errorf("failed to marshal context: %w", err)
	}
	if len(data) > MaxContextSize {
		return fmt.Errorf("context size %d bytes exceeds maximum %d bytes", len(data), MaxContextSize)
	}
	return nil
}

// ValidateSpecSize rejects raw ui_spec payloads over the size limit
func ValidateSpecSize(raw []byte) error {
	if len(raw) > MaxUISpecSize {
		return fmt.Errorf("%w: size %d bytes exceeds maximum %d bytes", ErrInvalidSpec, len(raw), MaxUISpecSize)
	}
	return nil
}

// ValidateAppSpec checks the structural invariants of a spec before install:
// bounded depth and size, and component ids unique within the tree.
// Tool ids bound to events are not checked; unknown tools are a no-op at dispatch.
func ValidateAppSpec(spec *types.AppSpec) error {
	if spec == nil {
		return fmt.Errorf("%w: spec is empty", ErrInvalidSpec)
	}

	seen := make(map[string]struct{})
	var walkErr error
	count := 0
	spec.Walk(func(c *types.UIComponent, depth int) bool {
		count++
		switch {
		case depth >= MaxSpecDepth:
			walkErr = fmt.Errorf("%w: nesting depth exceeds %d", ErrInvalidSpec, MaxSpecDepth)
		case count > MaxComponents:
			walkErr = fmt.Errorf("%w: more than %d components", ErrInvalidSpec, MaxComponents)
		case c.ID == "":
			// Anonymous components are allowed; they cannot hold state.
		default:
			if _, dup := seen[c.ID]; dup {
				walkErr = fmt.Errorf("%w: duplicate component id %q", ErrInvalidSpec, c.ID)
			}
			seen[c.ID] = struct{}{}
		}
		return walkErr == nil
	})
	if walkErr != nil {
		return walkErr
	}

	if len(spec.LifecycleHooks.OnMount) > MaxHooksPerPhase || len(spec.LifecycleHooks.OnUnmount) > MaxHooksPerPhase {
		return fmt.Errorf("%w: more than %d hooks per phase", ErrInvalidSpec, MaxHooksPerPhase)
	}
	return nil
}
