package ops

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxCommandLen is the transport's command length ceiling.
const MaxCommandLen = 32000

// Violation codes.
const (
	ViolationSyntax = "V_SYNTAX"
	ViolationLength = "V_LENGTH"
	ViolationBlock  = "V_BLOCK"
)

// Violation is one validator finding, tagged with the index of the offending
// operation.
type Violation struct {
	Index   int    `json:"index"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("op %d: %s: %s", v.Index, v.Code, v.Message)
}

// Validate renders each operation and audits the result: wire-format syntax,
// command length, and block identifiers against the caller's allow-list
// (the sentinel "air" always passes). It reports every violation found and
// never mutates its input; validating twice yields identical results.
func Validate(list []Op, known func(block string) bool) []Violation {
	return ValidateCommands(RenderAll(list), known)
}

// ValidateCommands is Validate over already-rendered command text.
func ValidateCommands(cmds []string, known func(block string) bool) []Violation {
	var out []Violation
	for i, cmd := range cmds {
		out = append(out, checkCommand(i, cmd, known)...)
	}
	return out
}

func checkCommand(idx int, cmd string, known func(string) bool) []Violation {
	var out []Violation
	add := func(code, format string, args ...any) {
		out = append(out, Violation{Index: idx, Code: code, Message: fmt.Sprintf(format, args...)})
	}

	if len(cmd) > MaxCommandLen {
		add(ViolationLength, "command is %d chars, limit %d", len(cmd), MaxCommandLen)
	}

	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		add(ViolationSyntax, "empty command")
		return out
	}

	verb := strings.TrimPrefix(parts[0], "/")
	switch verb {
	case "fill":
		if len(parts) < 8 {
			add(ViolationSyntax, "fill needs 6 coordinates and a block, got %d tokens", len(parts))
			return out
		}
		if !intTokens(parts[1:7]) {
			add(ViolationSyntax, "fill coordinates must be integers: %q", strings.Join(parts[1:7], " "))
		}
		checkBlockToken(idx, parts[7], known, &out)
		if len(parts) > 8 {
			checkModifier(idx, parts[8:], &out)
		}

	case "setblock":
		if len(parts) < 5 {
			add(ViolationSyntax, "setblock needs 3 coordinates and a block, got %d tokens", len(parts))
			return out
		}
		if !intTokens(parts[1:4]) {
			add(ViolationSyntax, "setblock coordinates must be integers: %q", strings.Join(parts[1:4], " "))
		}
		checkBlockToken(idx, parts[4], known, &out)
		if len(parts) > 5 {
			add(ViolationSyntax, "unexpected trailing tokens after block: %q", strings.Join(parts[5:], " "))
		}

	default:
		add(ViolationSyntax, "unknown command %q", parts[0])
	}
	return out
}

func checkModifier(idx int, rest []string, out *[]Violation) {
	switch rest[0] {
	case "hollow", "outline", "keep", "destroy":
		if len(rest) > 1 {
			*out = append(*out, Violation{Index: idx, Code: ViolationSyntax,
				Message: fmt.Sprintf("trailing tokens after %q modifier", rest[0])})
		}
	case "replace":
		// "replace" alone or "replace <filter>" are both legal.
		if len(rest) > 2 {
			*out = append(*out, Violation{Index: idx, Code: ViolationSyntax,
				Message: "replace takes at most one filter block"})
		}
	default:
		*out = append(*out, Violation{Index: idx, Code: ViolationSyntax,
			Message: fmt.Sprintf("unknown fill modifier %q", rest[0])})
	}
}

func checkBlockToken(idx int, token string, known func(string) bool, out *[]Violation) {
	block := token
	if i := strings.IndexByte(block, '['); i >= 0 {
		if !strings.HasSuffix(block, "]") {
			*out = append(*out, Violation{Index: idx, Code: ViolationSyntax,
				Message: fmt.Sprintf("unterminated state suffix in %q", token)})
		}
		block = block[:i]
	}
	if block == "air" {
		return
	}
	if known != nil && !known(block) {
		*out = append(*out, Violation{Index: idx, Code: ViolationBlock,
			Message: fmt.Sprintf("unknown block %q", block)})
	}
}

func intTokens(tokens []string) bool {
	for _, tok := range tokens {
		if _, err := strconv.Atoi(tok); err != nil {
			return false
		}
	}
	return true
}
