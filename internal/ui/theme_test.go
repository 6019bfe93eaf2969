package ui

import "testing"

func TestNextThemeCycles(t *testing.T) {
	names := ThemeNames()
	for i, name := range names {
		want := names[(i+1)%len(names)]
		if got := NextTheme(name); got != want {
			t.Fatalf("NextTheme(%q) = %q, want %q", name, got, want)
		}
	}
	if got := NextTheme("Nightfox"); got != names[0] {
		t.Fatalf("NextTheme(unknown) = %q, want %q", got, names[0])
	}
}

func TestGetThemeSystemFollowsTerminal(t *testing.T) {
	orig := hasDarkBackground
	defer func() { hasDarkBackground = orig }()

	hasDarkBackground = func() bool { return true }
	dark := GetTheme("System")
	if dark.Name != "System" || dark.Background != darkTheme().Background {
		t.Fatalf("System on dark terminal = %s/%s, want dark palette", dark.Name, dark.Background)
	}

	hasDarkBackground = func() bool { return false }
	light := GetTheme("")
	if light.Name != "System" || light.Background != lightTheme().Background {
		t.Fatalf("System on light terminal = %s/%s, want light palette", light.Name, light.Background)
	}
}

func TestGetThemeCaseInsensitive(t *testing.T) {
	if got := GetTheme("light").Name; got != "Light" {
		t.Fatalf("GetTheme(light).Name = %q, want Light", got)
	}
	if got := GetTheme("DARK").Name; got != "Dark" {
		t.Fatalf("GetTheme(DARK).Name = %q, want Dark", got)
	}
}

func TestThemesDefineEveryColor(t *testing.T) {
	for _, theme := range []Theme{darkTheme(), lightTheme()} {
		colors := map[string]string{
			"Background":    theme.Background,
			"Surface":       theme.Surface,
			"SelectionBg":   theme.SelectionBg,
			"SelectionText": theme.SelectionText,
			"Text":          theme.Text,
			"Accent":        theme.Accent,
			"Warning":       theme.Warning,
			"Danger":        theme.Danger,
		}
		for name, value := range colors {
			if value == "" {
				t.Fatalf("%s theme missing %s", theme.Name, name)
			}
		}
		for _, state := range []string{"listening", "established", "time_wait", "closed"} {
			if theme.StateColors[state] == "" {
				t.Fatalf("%s theme missing state color %s", theme.Name, state)
			}
		}
	}
}
