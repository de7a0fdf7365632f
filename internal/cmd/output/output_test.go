package output

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

type testSample struct {
	ID   int    `json:"id"   yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type testPrinter struct {
	header WriteFunc[testSample]
	footer WriteFunc[testSample]
	failOn int
}

func (p *testPrinter) Header(w io.Writer, count int) {
	if p.header != nil {
		p.header(w, count)
	}
}

func (p *testPrinter) SetHeader(fn WriteFunc[testSample]) { p.header = fn }

func (p *testPrinter) Item(w io.Writer, elem testSample) error {
	if p.failOn != 0 && elem.ID == p.failOn {
		return fmt.Errorf("cannot print %d", elem.ID)
	}
	_, err := fmt.Fprintf(w, "%d %s\n", elem.ID, elem.Name)
	return err
}

func (p *testPrinter) Footer(w io.Writer, count int) {
	if p.footer != nil {
		p.footer(w, count)
	}
}

func (p *testPrinter) SetFooter(fn WriteFunc[testSample]) { p.footer = fn }

func TestHandlers_Writer(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.Equal(t, buf, NewJSONHandler[testSample](buf, 2).Writer())
	require.Equal(t, buf, NewYAMLHandler[testSample](buf, 2).Writer())
	require.Equal(t, buf, NewTextHandler[testSample](buf, &testPrinter{}).Writer())
}

func TestJSONHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handle   func(h *JSONHandler[testSample]) error
		expected string
	}{
		{
			name:     "single result",
			handle:   func(h *JSONHandler[testSample]) error { return h.HandleResult(testSample{ID: 1, Name: "Homepage"}) },
			expected: "{\n  \"result\": {\n    \"id\": 1,\n    \"name\": \"Homepage\"\n  }\n}\n",
		},
		{
			name: "results",
			handle: func(h *JSONHandler[testSample]) error {
				return h.HandleResults(testSample{ID: 1, Name: "A"}, testSample{ID: 2, Name: "B"})
			},
			expected: "{\n  \"results\": [\n    {\n      \"id\": 1,\n      \"name\": \"A\"\n    },\n    {\n      \"id\": 2,\n      \"name\": \"B\"\n    }\n  ]\n}\n",
		},
		{
			name:     "empty results",
			handle:   func(h *JSONHandler[testSample]) error { return h.HandleResults() },
			expected: "{\n  \"results\": []\n}\n",
		},
		{
			name:     "error",
			handle:   func(h *JSONHandler[testSample]) error { return h.HandleError(errors.New("boom")) },
			expected: "{\n  \"error\": \"boom\"\n}\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			require.NoError(t, tc.handle(NewJSONHandler[testSample](buf, 2)))
			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestYAMLHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handle   func(h *YAMLHandler[testSample]) error
		expected string
	}{
		{
			name:     "single result",
			handle:   func(h *YAMLHandler[testSample]) error { return h.HandleResult(testSample{ID: 1, Name: "Homepage"}) },
			expected: "result:\n  id: 1\n  name: Homepage\n",
		},
		{
			name:     "empty results",
			handle:   func(h *YAMLHandler[testSample]) error { return h.HandleResults() },
			expected: "results: []\n",
		},
		{
			name:     "error",
			handle:   func(h *YAMLHandler[testSample]) error { return h.HandleError(errors.New("boom")) },
			expected: "error: boom\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			require.NoError(t, tc.handle(NewYAMLHandler[testSample](buf, 2)))
			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestTextHandler(t *testing.T) {
	t.Parallel()

	t.Run("header items footer", func(t *testing.T) {
		t.Parallel()

		p := &testPrinter{}
		p.SetHeader(func(w io.Writer, count int) { _, _ = fmt.Fprintf(w, "count=%d\n", count) })
		p.SetFooter(func(w io.Writer, _ int) { _, _ = io.WriteString(w, "end\n") })

		buf := &bytes.Buffer{}
		h := NewTextHandler[testSample](buf, p)
		require.NoError(t, h.HandleResults(testSample{ID: 1, Name: "A"}, testSample{ID: 2, Name: "B"}))
		require.Equal(t, "count=2\n1 A\n2 B\nend\n", buf.String())
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		h := NewTextHandler[testSample](buf, &testPrinter{})
		require.NoError(t, h.HandleResults())
		require.Equal(t, "No items found\n", buf.String())
	})

	t.Run("item error", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		h := NewTextHandler[testSample](buf, &testPrinter{failOn: 2})
		require.EqualError(t, h.HandleResults(testSample{ID: 1}, testSample{ID: 2}), "cannot print 2")
	})

	t.Run("error passthrough", func(t *testing.T) {
		t.Parallel()

		err := errors.New("boom")
		h := NewTextHandler[testSample](&bytes.Buffer{}, &testPrinter{})
		require.ErrorIs(t, h.HandleError(err), err)
	})
}

func TestReportError(t *testing.T) {
	t.Parallel()

	err := errors.New("config load failed")

	tests := []struct {
		name     string
		handler  func(buf *bytes.Buffer) Handler[testSample]
		expected string
	}{
		{
			name:     "json",
			handler:  func(buf *bytes.Buffer) Handler[testSample] { return NewJSONHandler[testSample](buf, 2) },
			expected: "{\n  \"error\": \"config load failed\"\n}\n",
		},
		{
			name:     "yaml",
			handler:  func(buf *bytes.Buffer) Handler[testSample] { return NewYAMLHandler[testSample](buf, 2) },
			expected: "error: config load failed\n",
		},
		{
			name: "text",
			handler: func(buf *bytes.Buffer) Handler[testSample] {
				return NewTextHandler[testSample](buf, &testPrinter{})
			},
			expected: "",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf := &bytes.Buffer{}
			require.ErrorIs(t, ReportError(tc.handler(buf), err), err)
			require.Equal(t, tc.expected, buf.String())
		})
	}

	t.Run("nil error", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		require.NoError(t, ReportError[testSample](NewJSONHandler[testSample](buf, 2), nil))
		require.Empty(t, buf.String())
	})
}
