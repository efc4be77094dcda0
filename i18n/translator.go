// Package i18n provides the default human-readable messages for issue codes.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Translator retrieves localized messages for Issue codes.
// params carries the issue metadata (for example "expected", "minimum").
type Translator interface {
	Message(code string, params map[string]any) string
}

var supported = []language.Tag{language.English, language.Japanese}

var matcher = language.NewMatcher(supported)

// Match picks the best supported language for an Accept-Language style list
// such as "ja-JP,ja;q=0.9,en;q=0.8". Unparseable input yields English.
func Match(accept string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return supported[idx]
}

// For returns the built-in Translator closest to tag.
func For(tag language.Tag) Translator {
	if tag == language.Und {
		return dictTranslator{lang: "en"}
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return dictTranslator{lang: "en"}
	}
	if supported[idx] == language.Japanese {
		return dictTranslator{lang: "ja"}
	}
	return dictTranslator{lang: "en"}
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, p map[string]any) string {
	if t.lang == "ja" {
		return messageJA(code, p)
	}
	return messageEN(code, p)
}

func messageEN(code string, p map[string]any) string {
	switch code {
	case "invalid_type":
		if str(p, "received") == "undefined" {
			return "Required"
		}
		if e := str(p, "expected"); e != "" {
			return fmt.Sprintf("Expected %s, received %s", e, str(p, "received"))
		}
		return "Invalid type"
	case "invalid_literal":
		return fmt.Sprintf("Invalid literal value, expected %s", quote(p["expected"]))
	case "invalid_enum_value":
		return fmt.Sprintf("Invalid enum value. Expected %s, received %s", joinOptions(p["options"]), quote(p["received"]))
	case "too_small":
		return boundEN(p, "minimum", true)
	case "too_big":
		return boundEN(p, "maximum", false)
	case "invalid_string_format":
		if v := str(p, "validation"); v != "" {
			return "Invalid " + v
		}
		return "Invalid string"
	case "unrecognized_keys":
		return "Unrecognized key(s) in object: " + joinKeys(p["keys"])
	case "invalid_union":
		return "Invalid input"
	case "invalid_union_discriminator":
		return "Invalid discriminator value. Expected " + joinOptions(p["options"])
	case "invalid_intersection_types":
		return "Intersection results could not be merged"
	case "not_multiple_of":
		return fmt.Sprintf("Number must be a multiple of %v", p["multipleOf"])
	case "not_finite":
		return "Number must be finite"
	case "custom":
		return "Invalid input"
	case "async_in_sync":
		return "Asynchronous refinement encountered during synchronous validation"
	case "schema_cycle":
		return "Schema cycle detected"
	case "duplicate_key":
		return fmt.Sprintf("Duplicate key %s", quote(p["key"]))
	case "parse_error":
		return "Malformed input"
	}
	return code
}

func boundEN(p map[string]any, key string, lower bool) string {
	bound := p[key]
	inclusive, _ := p["inclusive"].(bool)
	exact, _ := p["exact"].(bool)
	var rel string
	switch {
	case exact:
		rel = "exactly"
	case lower && inclusive:
		rel = "at least"
	case lower:
		rel = "more than"
	case inclusive:
		rel = "at most"
	default:
		rel = "fewer than"
	}
	switch str(p, "origin") {
	case "string":
		return fmt.Sprintf("String must contain %s %v character(s)", rel, bound)
	case "array":
		return fmt.Sprintf("Array must contain %s %v element(s)", rel, bound)
	case "set":
		return fmt.Sprintf("Set must contain %s %v element(s)", rel, bound)
	}
	var cmp string
	switch {
	case exact:
		cmp = "exactly equal to"
	case lower && inclusive:
		cmp = "greater than or equal to"
	case lower:
		cmp = "greater than"
	case inclusive:
		cmp = "less than or equal to"
	default:
		cmp = "less than"
	}
	switch str(p, "origin") {
	case "date":
		return fmt.Sprintf("Date must be %s %v", cmp, bound)
	case "bigint":
		return fmt.Sprintf("BigInt must be %s %v", cmp, bound)
	}
	return fmt.Sprintf("Number must be %s %v", cmp, bound)
}

func messageJA(code string, p map[string]any) string {
	switch code {
	case "invalid_type":
		if str(p, "received") == "undefined" {
			return "必須項目です"
		}
		return "型が不正です"
	case "invalid_literal":
		return fmt.Sprintf("%s である必要があります", quote(p["expected"]))
	case "invalid_enum_value":
		return fmt.Sprintf("%s のいずれかを指定してください", joinOptions(p["options"]))
	case "too_small":
		switch str(p, "origin") {
		case "string":
			return fmt.Sprintf("%v文字以上で入力してください", p["minimum"])
		case "array", "set":
			return fmt.Sprintf("%v件以上必要です", p["minimum"])
		}
		return fmt.Sprintf("%v以上の値を入力してください", p["minimum"])
	case "too_big":
		switch str(p, "origin") {
		case "string":
			return fmt.Sprintf("%v文字以内で入力してください", p["maximum"])
		case "array", "set":
			return fmt.Sprintf("%v件以内にしてください", p["maximum"])
		}
		return fmt.Sprintf("%v以下の値を入力してください", p["maximum"])
	case "invalid_string_format":
		return "形式が不正です"
	case "unrecognized_keys":
		return "未知のキーです: " + joinKeys(p["keys"])
	case "invalid_union", "custom":
		return "入力が不正です"
	case "invalid_union_discriminator":
		return "判別キーの値が不正です"
	case "invalid_intersection_types":
		return "交差型の結果を統合できません"
	case "not_multiple_of":
		return fmt.Sprintf("%vの倍数を入力してください", p["multipleOf"])
	case "not_finite":
		return "有限の数値を入力してください"
	case "async_in_sync":
		return "同期検証中に非同期の検証が見つかりました"
	case "schema_cycle":
		return "スキーマが循環しています"
	case "duplicate_key":
		return fmt.Sprintf("キー%sが重複しています", quote(p["key"]))
	case "parse_error":
		return "入力を解析できません"
	}
	return messageEN(code, p)
}

func str(p map[string]any, k string) string {
	s, _ := p[k].(string)
	return s
}

func quote(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}
	return fmt.Sprint(v)
}

func joinOptions(v any) string {
	opts, _ := v.([]any)
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = quote(o)
	}
	return strings.Join(parts, " | ")
}

func joinKeys(v any) string {
	keys, _ := v.([]string)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = "'" + k + "'"
	}
	return strings.Join(parts, ", ")
}
