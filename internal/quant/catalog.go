// Package quant holds the catalog of quantization method codes offered to
// the user, in presentation order.
package quant

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// Method is one catalog entry.
type Method struct {
	Code        string `json:"code" yaml:"code"`
	Description string `json:"description" yaml:"description"`
}

var catalog = []Method{
	{"q2_k", "Uses Q4_K for the attention.vw and feed_forward.w2 tensors, Q2_K for the other tensors."},
	{"q3_k_l", "Uses Q5_K for the attention.wv, attention.wo, and feed_forward.w2 tensors, else Q3_K"},
	{"q3_k_m", "Uses Q4_K for the attention.wv, attention.wo, and feed_forward.w2 tensors, else Q3_K"},
	{"q3_k_s", "Uses Q3_K for all tensors"},
	{"q4_0", "Original quant method, 4-bit."},
	{"q4_1", "Higher accuracy than q4_0 but not as high as q5_0. However has quicker inference than q5 models."},
	{"q4_k_m", "Uses Q6_K for half of the attention.wv and feed_forward.w2 tensors, else Q4_K"},
	{"q4_k_s", "Uses Q4_K for all tensors"},
	{"q5_0", "Higher accuracy, higher resource usage and slower inference."},
	{"q5_1", "Even higher accuracy, resource usage and slower inference."},
	{"q5_k_m", "Uses Q6_K for half of the attention.wv and feed_forward.w2 tensors, else Q5_K"},
	{"q5_k_s", "Uses Q5_K for all tensors"},
	{"q6_k", "Uses Q8_K for all tensors"},
	{"q8_0", "Almost indistinguishable from float16. High resource use and slow. Not recommended for most users."},
}

// Codes returns the method codes in catalog order.
func Codes() []string {
	out := make([]string, len(catalog))
	for i, m := range catalog {
		out[i] = m.Code
	}
	return out
}

// Lookup finds code case-insensitively. Callers are free to pass codes that
// are not in the catalog to the quantizer; this is for display only.
func Lookup(code string) (Method, bool) {
	code = strings.ToLower(strings.TrimSpace(code))
	for _, m := range catalog {
		if m.Code == code {
			return m, true
		}
	}
	return Method{}, false
}

// WriteList prints one "<code>: <description>" line per method.
func WriteList(w io.Writer) error {
	for _, m := range catalog {
		if _, err := fmt.Fprintf(w, "%s: %s\n", m.Code, m.Description); err != nil {
			return err
		}
	}
	return nil
}

// WriteTable renders the catalog as a table with the output file suffix each
// code produces.
func WriteTable(w io.Writer) error {
	tbl := tablewriter.NewWriter(w)
	tbl.Header("Method", "File suffix", "Description")
	for _, m := range catalog {
		if err := tbl.Append([]string{m.Code, "." + strings.ToUpper(m.Code) + ".gguf", m.Description}); err != nil {
			return err
		}
	}
	return tbl.Render()
}
