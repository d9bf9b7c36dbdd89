package fragment

import (
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/Tyrowin/htmx-playground/internal/todo"
)

var timeShaped = regexp.MustCompile(`\d{1,2}:\d{2}:\d{2} (AM|PM)`)

var fixedNow = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

// TestFilterFruits tests case-insensitive substring matching against the fixed list.
func TestFilterFruits(t *testing.T) {
	tests := []struct {
		query    string
		expected []string
	}{
		{query: "an", expected: []string{"Banana"}},
		{query: "AN", expected: []string{"Banana"}},
		{query: "e", expected: []string{"Apple", "Cherry", "Date", "Elderberry", "Grape", "Honeydew", "Lemon"}},
		{query: "berry", expected: []string{"Elderberry"}},
		{query: "kiwi", expected: []string{"Kiwi"}},
		{query: "zzz", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := FilterFruits(tt.query)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("FilterFruits(%q) = %v, want %v", tt.query, got, tt.expected)
			}
		})
	}
}

// TestSearchStates verifies prompt, results and no-results rendering.
func TestSearchStates(t *testing.T) {
	t.Run("Empty query renders prompt", func(t *testing.T) {
		got := Search("", fixedNow)
		if got != "<p>Start typing to search...</p>" {
			t.Errorf("Unexpected prompt: %q", got)
		}
	})

	t.Run("Matching query lists results", func(t *testing.T) {
		got := Search("an", fixedNow)
		if !strings.Contains(got, "<li>Banana</li>") {
			t.Errorf("Expected Banana entry, got %q", got)
		}
		if strings.Count(got, "<li>") != 1 {
			t.Errorf("Expected exactly one result, got %q", got)
		}
		if !timeShaped.MatchString(got) {
			t.Errorf("Expected a timestamp, got %q", got)
		}
	})

	t.Run("No matches renders message", func(t *testing.T) {
		got := Search("xyz", fixedNow)
		if !strings.Contains(got, "No results found.") {
			t.Errorf("Expected no-results message, got %q", got)
		}
		if strings.Contains(got, "<ul>") {
			t.Errorf("Did not expect a result list, got %q", got)
		}
	})
}

// TestTodoRendering covers rows, the placeholder and escaping of task text.
func TestTodoRendering(t *testing.T) {
	empty := TodoList(nil)
	if !strings.Contains(empty, "No tasks yet. Add one above!") {
		t.Errorf("Expected placeholder, got %q", empty)
	}
	if TodoList([]todo.Item{}) != empty {
		t.Error("Expected empty slice and nil to render identically")
	}

	items := []todo.Item{{ID: 1, Task: "buy milk"}, {ID: 7, Task: "walk dog"}}
	list := TodoList(items)
	for _, want := range []string{"buy milk", "walk dog", "hx-delete='/api/todos/1'", "hx-delete='/api/todos/7'"} {
		if !strings.Contains(list, want) {
			t.Errorf("Expected %q in list, got %q", want, list)
		}
	}
	if strings.Contains(list, "No tasks yet") {
		t.Error("Placeholder rendered alongside rows")
	}

	row := TodoRow(todo.Item{ID: 3, Task: "<script>alert(1)</script>"})
	if strings.Contains(row, "<script>") {
		t.Errorf("Expected task text to be escaped, got %q", row)
	}
	if !strings.Contains(row, "&lt;script&gt;") {
		t.Errorf("Expected escaped script tag, got %q", row)
	}
}

// TestTimedFragments checks every clock-driven fragment carries a time of day.
func TestTimedFragments(t *testing.T) {
	fragments := map[string]string{
		"hello":               Hello(fixedNow),
		"slow-data":           SlowData(fixedNow, time.Second),
		"submit":              Submitted("ada", fixedNow),
		"hover":               Hover(fixedNow, 512),
		"poll":                Poll(fixedNow, 42),
		"fade-content":        FadeContent(fixedNow),
		"error-demo":          ErrorDemo(fixedNow),
		"success-after-error": SuccessAfterError(fixedNow),
		"live-time":           LiveTime(fixedNow),
		"update-multiple":     UpdateMultiple(fixedNow),
		"add-item":            AddItem(fixedNow, 17),
		"event-demo":          EventDemo(fixedNow),
	}

	for name, body := range fragments {
		t.Run(name, func(t *testing.T) {
			if !strings.Contains(body, "2:07:09 PM") {
				t.Errorf("Expected time of day in %s, got %q", name, body)
			}
		})
	}

	if got := LiveTime(fixedNow); got != "2:07:09 PM" {
		t.Errorf("LiveTime = %q, want bare time", got)
	}
	if got := Hover(fixedNow, 512); !strings.Contains(got, "Random number: 512") {
		t.Errorf("Hover missing number: %q", got)
	}
	if got := Poll(fixedNow, 42); !strings.Contains(got, "Random value: 42") {
		t.Errorf("Poll missing value: %q", got)
	}
	if got := AddItem(fixedNow, 17); !strings.Contains(got, "New Item #17") {
		t.Errorf("AddItem missing number: %q", got)
	}
	if got := Submitted("ada", fixedNow); !strings.Contains(got, "<strong>ada</strong>") {
		t.Errorf("Submitted missing username: %q", got)
	}
}

// TestHeaderValues verifies sentinel substitution for absent headers.
func TestHeaderValues(t *testing.T) {
	h := http.Header{}
	h.Set("X-Custom-Header", "demo")
	h.Set("User-Agent", "test-agent")

	got := HeaderValues(h)
	want := []HeaderValue{
		{Name: "X-Custom-Header", Value: "demo"},
		{Name: "X-Requested-With", Value: NotProvided},
		{Name: "User-Agent", Value: "test-agent"},
		{Name: "Content-Type", Value: NotProvided},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("HeaderValues = %v, want %v", got, want)
	}

	body := Headers(h, fixedNow)
	if !strings.Contains(body, "<strong>X-Requested-With:</strong> Not provided") {
		t.Errorf("Expected sentinel in rendered headers, got %q", body)
	}
}

// TestPrettyJSON verifies indentation and the empty-body default.
func TestPrettyJSON(t *testing.T) {
	got := PrettyJSON(map[string]any{"included": "yes"})
	if got != "{\n  \"included\": \"yes\"\n}" {
		t.Errorf("Unexpected formatting: %q", got)
	}
	if got := PrettyJSON(nil); got != "{}" {
		t.Errorf("PrettyJSON(nil) = %q, want {}", got)
	}

	rendered := SelectiveData(map[string]any{"included": "yes"}, fixedNow)
	if !strings.Contains(rendered, "&#34;included&#34;: &#34;yes&#34;") {
		t.Errorf("Expected escaped JSON in fragment, got %q", rendered)
	}
}

// TestSwapFragments verifies the fixed swap demo bodies.
func TestSwapFragments(t *testing.T) {
	tests := map[string]string{
		SwapInner():      "<strong>innerHTML:</strong> Content replaced inside the element",
		SwapOuter():      `<div id="swap-demo" class="response-area"><strong>outerHTML:</strong> Entire element replaced</div>`,
		SwapBeforeEnd():  "<p><strong>beforeend:</strong> Added to the end</p>",
		SwapAfterBegin(): "<p><strong>afterbegin:</strong> Added to the beginning</p>",
	}
	for got, want := range tests {
		if got != want {
			t.Errorf("Swap fragment = %q, want %q", got, want)
		}
	}
}

// TestTodoError verifies the inline validation message.
func TestTodoError(t *testing.T) {
	got := TodoError(TaskRequiredMessage)
	if got != `<p style="color: red;">Task cannot be empty!</p>` {
		t.Errorf("Unexpected error fragment: %q", got)
	}
}

// TestDescribeDelay verifies the delay wording in the slow-data fragment.
func TestDescribeDelay(t *testing.T) {
	tests := []struct {
		delay    time.Duration
		expected string
	}{
		{delay: time.Second, expected: "1 second"},
		{delay: 3 * time.Second, expected: "3 seconds"},
		{delay: 250 * time.Millisecond, expected: "250 milliseconds"},
		{delay: 1500 * time.Millisecond, expected: "1500 milliseconds"},
		{delay: time.Millisecond, expected: "1 millisecond"},
	}

	for _, tt := range tests {
		if got := DescribeDelay(tt.delay); got != tt.expected {
			t.Errorf("DescribeDelay(%v) = %q, want %q", tt.delay, got, tt.expected)
		}
	}

	body := SlowData(time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), time.Second)
	if !strings.Contains(body, "(1 second delay)") {
		t.Errorf("Expected one second wording in %q", body)
	}
}
