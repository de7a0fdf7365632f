package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dduksang/deploymon/internal/cmd/output"
	"github.com/dduksang/deploymon/internal/domain"
)

var _ output.Printer[CheckDefinitionResult] = (*ChecksListPrinter)(nil)

// CheckDefinitionResult is the output form of a resolved check.
type CheckDefinitionResult struct {
	Name           string `json:"name"                   yaml:"name"`
	Method         string `json:"method"                 yaml:"method"`
	URL            string `json:"url"                    yaml:"url"`
	ExpectedStatus []int  `json:"expectedStatus"         yaml:"expected_status"`
	BodyContains   string `json:"bodyContains,omitempty" yaml:"body_contains,omitempty"`
}

// NewCheckDefinitionResults converts check definitions into their output form, keeping order.
func NewCheckDefinitionResults(defs []domain.CheckDefinition) []CheckDefinitionResult {
	res := make([]CheckDefinitionResult, 0, len(defs))
	for _, d := range defs {
		res = append(res, CheckDefinitionResult{
			Name:           d.Name,
			Method:         d.Method,
			URL:            d.URL,
			ExpectedStatus: d.ExpectedStatusCodes,
			BodyContains:   d.ExpectedBodySubstring,
		})
	}
	return res
}

// ChecksListPrinter prints one line per check.
type ChecksListPrinter struct {
	headerFunc output.WriteFunc[CheckDefinitionResult]
	footerFunc output.WriteFunc[CheckDefinitionResult]
}

// NewChecksListPrinter returns a printer with the default footer.
func NewChecksListPrinter() *ChecksListPrinter {
	return &ChecksListPrinter{
		footerFunc: func(w io.Writer, count int) {
			_, _ = fmt.Fprintf(w, "\n%d check%s configured\n", count, map[bool]string{true: "s"}[count != 1])
		},
	}
}

func (p *ChecksListPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ChecksListPrinter) SetHeader(fn output.WriteFunc[CheckDefinitionResult]) {
	p.headerFunc = fn
}

func (p *ChecksListPrinter) Item(w io.Writer, c CheckDefinitionResult) error {
	codes := make([]string, len(c.ExpectedStatus))
	for i, code := range c.ExpectedStatus {
		codes[i] = strconv.Itoa(code)
	}

	_, _ = fmt.Fprintf(w, "%-20s %-7s %s expect %s", c.Name, c.Method, c.URL, strings.Join(codes, "|"))
	if c.BodyContains != "" {
		_, _ = fmt.Fprintf(w, " body contains %q", c.BodyContains)
	}
	_, _ = fmt.Fprintln(w, "")

	return nil
}

func (p *ChecksListPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ChecksListPrinter) SetFooter(fn output.WriteFunc[CheckDefinitionResult]) {
	p.footerFunc = fn
}
