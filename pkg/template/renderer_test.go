package template

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesAllOccurrences(t *testing.T) {
	pattern := "Hello {{name}}, your interview for {{position}} is set. See you, {{name}}!"
	vars := map[string]interface{}{
		"name":     "Ada",
		"position": "Backend Engineer",
	}

	got := Render(pattern, vars)
	want := "Hello Ada, your interview for Backend Engineer is set. See you, Ada!"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	got := Render("Dear {{name}}, ref {{reference}}", map[string]interface{}{"name": "Ada"})
	if got != "Dear Ada, ref {{reference}}" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderNoWhitespaceTolerance(t *testing.T) {
	got := Render("{{ name }} and {{name}}", map[string]interface{}{"name": "Ada"})
	if got != "{{ name }} and Ada" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderCoercesValues(t *testing.T) {
	got := Render("round {{round}}, referred: {{referred}}", map[string]interface{}{
		"round":    3,
		"referred": true,
	})
	if got != "round 3, referred: true" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderIdempotentWithoutPlaceholders(t *testing.T) {
	vars := map[string]interface{}{"name": "Ada"}
	once := Render("Hello {{name}}", vars)
	twice := Render(once, vars)
	if once != twice {
		t.Fatalf("re-render changed output: %q vs %q", once, twice)
	}
}

func TestRenderLeavesNoSuppliedTokens(t *testing.T) {
	pattern := "{{a}} {{b}} {{c}}"
	vars := map[string]interface{}{"a": "1", "b": "2", "c": "3"}

	got := Render(pattern, vars)
	for name := range vars {
		if strings.Contains(got, "{{"+name+"}}") {
			t.Fatalf("token %q survived rendering: %q", name, got)
		}
	}
}

func TestNormalizeVariablesTrackingAlias(t *testing.T) {
	forward := NormalizeVariables(map[string]interface{}{"trackingUrl": "https://x/t/1"})
	if forward["trackingURL"] != "https://x/t/1" {
		t.Fatalf("trackingURL not backfilled: %v", forward)
	}

	backward := NormalizeVariables(map[string]interface{}{"trackingURL": "https://x/t/2"})
	if backward["trackingUrl"] != "https://x/t/2" {
		t.Fatalf("trackingUrl not backfilled: %v", backward)
	}

	both := NormalizeVariables(map[string]interface{}{
		"trackingUrl": "https://x/a",
		"trackingURL": "https://x/b",
	})
	if both["trackingUrl"] != "https://x/a" || both["trackingURL"] != "https://x/b" {
		t.Fatalf("explicit values overwritten: %v", both)
	}
}

func TestNormalizeVariablesDoesNotMutateInput(t *testing.T) {
	in := map[string]interface{}{"trackingUrl": "https://x/t"}
	_ = NormalizeVariables(in)
	if _, ok := in["trackingURL"]; ok {
		t.Fatal("input map was mutated")
	}
}
