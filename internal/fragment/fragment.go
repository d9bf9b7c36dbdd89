// Package fragment renders the HTML snippets returned by the demo endpoints.
//
// Every function is pure: it receives the clock reading, random values and
// request data it needs and returns markup. Templates are parsed once from the
// embedded fragments.html; html/template escapes any user supplied text.
package fragment

import (
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Tyrowin/htmx-playground/internal/todo"
)

// TimeLayout is the time-of-day format embedded in fragments and chat records.
const TimeLayout = "3:04:05 PM"

// NotProvided replaces request headers that were not sent.
const NotProvided = "Not provided"

// TaskRequiredMessage is shown when a todo is submitted without text.
const TaskRequiredMessage = "Task cannot be empty!"

// Fruits is the fixed reference list searched by the search demo.
var Fruits = []string{
	"Apple", "Banana", "Cherry", "Date", "Elderberry",
	"Fig", "Grape", "Honeydew", "Kiwi", "Lemon",
}

// EchoedHeaders are the request headers listed by the headers demo, in order.
var EchoedHeaders = []string{
	"X-Custom-Header",
	"X-Requested-With",
	"User-Agent",
	"Content-Type",
}

//go:embed fragments.html
var files embed.FS

var templates = template.Must(template.ParseFS(files, "fragments.html"))

type timed struct {
	Time string
}

type timedNumber struct {
	Time   string
	Number int
}

// HeaderValue is a single header line of the headers demo.
type HeaderValue struct {
	Name  string
	Value string
}

func render(name string, data any) string {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		log.Printf("Error rendering fragment %q: %v", name, err)
		return ""
	}
	return b.String()
}

// TimeOfDay formats t the way every fragment displays wall-clock time.
func TimeOfDay(t time.Time) string {
	return t.Format(TimeLayout)
}

func renderTimed(name string, now time.Time) string {
	return render(name, timed{Time: TimeOfDay(now)})
}

// Hello renders the basic fragment-swap greeting.
func Hello(now time.Time) string { return renderTimed("hello", now) }

// SlowData renders the delayed-response fragment.
func SlowData(now time.Time, delay time.Duration) string {
	return render("slow-data", struct {
		Time  string
		Delay string
	}{Time: TimeOfDay(now), Delay: DescribeDelay(delay)})
}

// DescribeDelay spells out a delay as whole seconds when it is one, and as
// milliseconds otherwise: "1 second", "3 seconds", "250 milliseconds".
func DescribeDelay(delay time.Duration) string {
	if delay >= time.Second && delay%time.Second == 0 {
		return plural(int64(delay/time.Second), "second")
	}
	return plural(delay.Milliseconds(), "millisecond")
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return strconv.FormatInt(n, 10) + " " + unit + "s"
}

// Submitted echoes a submitted username.
func Submitted(username string, now time.Time) string {
	return render("submit", struct {
		Username string
		Time     string
	}{Username: username, Time: TimeOfDay(now)})
}

// FilterFruits returns the fruits containing query, ignoring case.
func FilterFruits(query string) []string {
	needle := strings.ToLower(query)
	var matches []string
	for _, fruit := range Fruits {
		if strings.Contains(strings.ToLower(fruit), needle) {
			matches = append(matches, fruit)
		}
	}
	return matches
}

// Search renders the search-as-you-type result list. An empty query renders
// the prompt instead of results.
func Search(query string, now time.Time) string {
	if query == "" {
		return render("search-prompt", nil)
	}
	return render("search", struct {
		Query   string
		Results []string
		Time    string
	}{Query: query, Results: FilterFruits(query), Time: TimeOfDay(now)})
}

// Hover renders the mouse-enter fragment with a random number.
func Hover(now time.Time, n int) string {
	return render("hover", timedNumber{Time: TimeOfDay(now), Number: n})
}

// TodoRow renders one todo with its delete control.
func TodoRow(item todo.Item) string { return render("todo-row", item) }

// TodoList renders all rows, or a placeholder when there are none.
func TodoList(items []todo.Item) string { return render("todo-list", items) }

// TodoError renders an inline validation message.
func TodoError(message string) string { return render("todo-error", message) }

// BadRequest renders an inline message for an undecodable request body.
func BadRequest(err error) string { return render("bad-request", err.Error()) }

// Poll renders the polling fragment with a random value.
func Poll(now time.Time, n int) string {
	return render("poll", timedNumber{Time: TimeOfDay(now), Number: n})
}

// FadeContent renders the CSS transition demo.
func FadeContent(now time.Time) string { return renderTimed("fade-content", now) }

// ErrorDemo renders the body of the simulated 500 response.
func ErrorDemo(now time.Time) string { return renderTimed("error-demo", now) }

// SuccessAfterError renders the recovery fragment.
func SuccessAfterError(now time.Time) string { return renderTimed("success-after-error", now) }

// LiveTime renders only the current time of day.
func LiveTime(now time.Time) string { return renderTimed("live-time", now) }

// UpdateMultiple renders the out-of-band update fragment.
func UpdateMultiple(now time.Time) string { return renderTimed("update-multiple", now) }

// AddItem renders a numbered item for the append demo.
func AddItem(now time.Time, n int) string {
	return render("add-item", timedNumber{Time: TimeOfDay(now), Number: n})
}

// EventDemo renders the HTMX events fragment.
func EventDemo(now time.Time) string { return renderTimed("event-demo", now) }

// HeaderValues picks EchoedHeaders from h, substituting NotProvided.
func HeaderValues(h http.Header) []HeaderValue {
	values := make([]HeaderValue, 0, len(EchoedHeaders))
	for _, name := range EchoedHeaders {
		value := h.Get(name)
		if value == "" {
			value = NotProvided
		}
		values = append(values, HeaderValue{Name: name, Value: value})
	}
	return values
}

// Headers renders the header-echo demo.
func Headers(h http.Header, now time.Time) string {
	return render("headers-demo", struct {
		Headers []HeaderValue
		Time    string
	}{Headers: HeaderValues(h), Time: TimeOfDay(now)})
}

// PrettyJSON formats body as two-space indented JSON.
func PrettyJSON(body any) string {
	if body == nil {
		body = map[string]any{}
	}
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		log.Printf("Error formatting request body: %v", err)
		return "{}"
	}
	return string(out)
}

// SelectiveData renders the parsed request body as formatted JSON.
func SelectiveData(body any, now time.Time) string {
	return render("selective-data", struct {
		Body string
		Time string
	}{Body: PrettyJSON(body), Time: TimeOfDay(now)})
}

// SwapInner renders the innerHTML swap demo.
func SwapInner() string { return render("swap-inner", nil) }

// SwapOuter renders the outerHTML swap demo.
func SwapOuter() string { return render("swap-outer", nil) }

// SwapBeforeEnd renders the beforeend swap demo.
func SwapBeforeEnd() string { return render("swap-beforeend", nil) }

// SwapAfterBegin renders the afterbegin swap demo.
func SwapAfterBegin() string { return render("swap-afterbegin", nil) }
