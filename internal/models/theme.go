package models

// Theme is an opaque record of named display values. The store persists it
// but never interprets or validates it.
type Theme map[string]any

// Clone returns a deep copy of t.
func (t Theme) Clone() Theme {
	if t == nil {
		return nil
	}
	out := make(Theme, len(t))
	for k, v := range t {
		out[k] = cloneValue(v)
	}
	return out
}

// Text returns the value under key when it is a string.
func (t Theme) Text(key string) string {
	s, _ := t[key].(string)
	return s
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return map[string]any(Theme(v).Clone())
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// DefaultThemes are the presets offered by the theme picker. The first one
// is used when nothing has been saved.
func DefaultThemes() []Theme {
	return []Theme{
		{
			"name": "dark brutalist", "bgMain": "#1a1a1a", "bgSecondary": "#2d2d2d", "bgTertiary": "#404040",
			"textMain": "#f5f5f5", "textSecondary": "#d1d1d1", "textMuted": "#a0a0a0",
			"borderMain": "#f5f5f5", "accent": "#00ff88", "accentSecondary": "#ff6b6b",
		},
		{
			"name": "neon cyber", "bgMain": "#0a0a0a", "bgSecondary": "#1a0a1a", "bgTertiary": "#2a1a2a",
			"textMain": "#ff00ff", "textSecondary": "#cc00cc", "textMuted": "#990099",
			"borderMain": "#ff00ff", "accent": "#00ffff", "accentSecondary": "#ffff00",
		},
		{
			"name": "forest night", "bgMain": "#0d1b0d", "bgSecondary": "#1a2e1a", "bgTertiary": "#264026",
			"textMain": "#e8f5e8", "textSecondary": "#c0e6c0", "textMuted": "#90c690",
			"borderMain": "#7dd87d", "accent": "#32cd32", "accentSecondary": "#ff6347",
		},
		{
			"name": "ocean depth", "bgMain": "#0a1a2a", "bgSecondary": "#1a2a3a", "bgTertiary": "#2a3a4a",
			"textMain": "#e8f4fd", "textSecondary": "#c0d8ed", "textMuted": "#90b8dd",
			"borderMain": "#4a9eff", "accent": "#00bfff", "accentSecondary": "#ff4500",
		},
	}
}

// DefaultTheme returns the first preset.
func DefaultTheme() Theme {
	return DefaultThemes()[0]
}
