package screen

import (
	"fmt"
	"strings"
	"time"
)

// Span is one segment of a display row: literal text or an input field.
type Span struct {
	Type     string `json:"type"` // "text" or "field"
	Text     string `json:"text,omitempty"`
	ID       string `json:"id,omitempty"`
	Width    int    `json:"width,omitempty"`
	Value    string `json:"value,omitempty"`
	Class    string `json:"class,omitempty"` // "title", "label", "status", "error"
	Password bool   `json:"password,omitempty"`
}

// Row is one display row, left to right.
type Row []Span

// Key is one entry in the function-key legend.
type Key struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Indicator marks the paging state of a list screen.
type Indicator string

const (
	IndicatorNone   Indicator = ""
	IndicatorMore   Indicator = "More..."
	IndicatorBottom Indicator = "Bottom"
)

// RenderResult is the complete frame for one screen render. It is the
// wire shape sent to clients.
type RenderResult struct {
	Screen        string `json:"screen"`
	Title         string `json:"title"`
	Width         int    `json:"width"` // 80 or 132 columns
	Rows          []Row  `json:"rows"`
	Keys          []Key  `json:"keys,omitempty"`
	Focus         string `json:"focus,omitempty"`
	Message       string `json:"message,omitempty"`
	MessageLevel  Level  `json:"message_level,omitempty"`
	User          string `json:"user"`
	Authenticated bool   `json:"authenticated"`
	Terminated    bool   `json:"terminated,omitempty"`
}

func text(s string) Span {
	return Span{Type: "text", Text: s}
}

func styled(class, s string) Span {
	return Span{Type: "text", Text: s, Class: class}
}

func field(id string, width int, value string) Span {
	return Span{Type: "field", ID: id, Width: width, Value: value}
}

func password(id string, width int) Span {
	return Span{Type: "field", ID: id, Width: width, Password: true}
}

func textRow(s string) Row {
	return Row{text(s)}
}

func blankRow() Row {
	return Row{text("")}
}

func centered(width int, s string) string {
	if len(s) >= width {
		return s
	}
	pad := (width - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

// titleRows builds the standard two-row screen header: centered title
// plus the system identification line.
func titleRows(width int, title string) []Row {
	stamp := time.Now().Format("01/02/06  15:04:05")
	sys := fmt.Sprintf("%-20s%s", "LAB400", stamp)
	return []Row{
		{styled("title", centered(width, title))},
		{styled("label", fmt.Sprintf("%*s", width, sys))},
	}
}

// indicatorRow right-aligns the paging indicator, AS/400 style.
func indicatorRow(width int, ind Indicator) Row {
	if ind == IndicatorNone {
		return blankRow()
	}
	return Row{styled("label", fmt.Sprintf("%*s", width, string(ind)))}
}

// commandRow is the standard bottom command line.
func commandRow(sess *Session) Row {
	return Row{styled("label", "===> "), field("cmd", 60, sess.Field("cmd"))}
}

// fieldValue returns the current value for a data-entry field, letting
// a value picked in the parameter prompt override whatever was typed.
func fieldValue(sess *Session, id string) string {
	if v, ok := sess.TakeSelected(id); ok {
		sess.FieldValues[id] = v
		return v
	}
	return sess.Field(id)
}

// noItemsRow is the explicit empty-list row.
func noItemsRow() Row {
	return Row{styled("label", "  (No items to display)")}
}

func pad(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

func truncate(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 1 {
		return s[:width]
	}
	return s[:width-1] + ">"
}
