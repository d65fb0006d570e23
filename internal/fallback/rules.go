package fallback

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Rule 字段抽取规则：按名称取值，取不到返回 nil
type Rule struct {
	Name string
	Get  func(obj map[string]any) any
}

// Key 按 JSON 键取值的规则
func Key(name string) Rule {
	return Rule{Name: name, Get: func(obj map[string]any) any { return obj[name] }}
}

// Path 按嵌套路径取值的规则，例如 Path("data", "contests")
func Path(keys ...string) Rule {
	return Rule{Name: strings.Join(keys, "."), Get: func(obj map[string]any) any {
		var cur any = obj
		for _, k := range keys {
			m, ok := cur.(map[string]any)
			if !ok {
				return nil
			}
			cur = m[k]
		}
		return cur
	}}
}

// Keys 一组按键取值的规则，顺序即优先级
func Keys(names ...string) []Rule {
	rules := make([]Rule, 0, len(names))
	for _, n := range names {
		rules = append(rules, Key(n))
	}
	return rules
}

// FirstValue 依次应用规则，返回第一个非空值
func FirstValue(obj map[string]any, rules []Rule) (any, string) {
	for _, r := range rules {
		v := r.Get(obj)
		if isEmpty(v) {
			continue
		}
		return v, r.Name
	}
	return nil, ""
}

// FirstString 依次应用规则，返回第一个非空字符串（数字会被格式化）
func FirstString(obj map[string]any, rules []Rule) string {
	v, _ := FirstValue(obj, rules)
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%.0f", t)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// FirstInt 依次应用规则，返回第一个可转为整数的值
func FirstInt(obj map[string]any, rules []Rule) (int64, bool) {
	for _, r := range rules {
		switch t := r.Get(obj).(type) {
		case json.Number:
			if n, err := t.Int64(); err == nil {
				return n, true
			}
			if f, err := t.Float64(); err == nil {
				return int64(f), true
			}
		case float64:
			return int64(t), true
		case int:
			return int64(t), true
		case int64:
			return t, true
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// FirstArray 依次应用规则，返回第一个非空的对象数组；对象（map）按值展开
func FirstArray(obj map[string]any, rules []Rule) []map[string]any {
	for _, r := range rules {
		if items := AsObjects(r.Get(obj)); len(items) > 0 {
			return items
		}
	}
	return nil
}

// AsObjects 把 []any 或 map[string]any（值为对象）转换为对象列表；map 按键排序保证顺序稳定
func AsObjects(v any) []map[string]any {
	var out []map[string]any
	switch t := v.(type) {
	case []any:
		for _, it := range t {
			if m, ok := it.(map[string]any); ok {
				out = append(out, m)
			}
		}
	case []map[string]any:
		out = append(out, t...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if m, ok := t[k].(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}
