package llm

import "strings"

// StripCodeFence removes a surrounding markdown code fence and its language
// tag. Text without a leading fence is returned trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.Index(text, "\n"); idx >= 0 {
		first := text[:idx]
		if len(first) < 20 && !strings.ContainsAny(first, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// CleanJSONBlock strips code fences, preamble and trailing chatter around a
// JSON object or array.
func CleanJSONBlock(text string) string {
	text = StripCodeFence(text)
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		if out := extractBalanced(text); out != "" {
			return out
		}
		return text
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	if out := extractBalanced(text[start:]); out != "" {
		return out
	}
	return text
}

// extractBalanced returns the leading JSON value of s when s starts with
// '{' or '['. Brackets inside strings are ignored.
func extractBalanced(s string) string {
	if s == "" || (s[0] != '{' && s[0] != '[') {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
