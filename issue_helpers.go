package zskema

// IssueAt creates an Issue at the given path with provided code, message and params map.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p Path, code, msg string, params map[string]any) Issue {
	return Issue{Path: p, Code: code, Message: msg, Params: params}
}

// CustomIssue builds a custom-coded issue, pairing keys and values from kv
// into Params.
func CustomIssue(msg string, p Path, kv ...any) Issue {
	var m map[string]any
	if len(kv) > 1 {
		m = make(map[string]any, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			k, _ := kv[i].(string)
			m[k] = kv[i+1]
		}
	}
	return Issue{Path: p, Code: CodeCustom, Message: msg, Params: m}
}
