package execx

import (
	"reflect"
	"strings"
	"testing"
)

func collect(max int) (*lineWriter, *[]string) {
	var got []string
	return newLineWriter(max, func(l string) { got = append(got, l) }), &got
}

func TestLineWriterTerminators(t *testing.T) {
	cases := []struct {
		name string
		in   []string // written in separate calls
		want []string
	}{
		{"newline", []string{"one\ntwo\n"}, []string{"one", "two"}},
		{"carriage returns", []string{"Receiving 10%\rReceiving 50%\rReceiving 100%\n"}, []string{"Receiving 10%", "Receiving 50%", "Receiving 100%"}},
		{"crlf is one break", []string{"a\r\nb\r\n"}, []string{"a", "b"}},
		{"crlf across writes", []string{"a\r", "\nb\n"}, []string{"a", "b"}},
		{"blank line kept", []string{"a\n\nb\n"}, []string{"a", "", "b"}},
		{"trailing partial", []string{"done\npartial"}, []string{"done", "partial"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, got := collect(1024)
			for _, p := range c.in {
				if n, err := w.Write([]byte(p)); err != nil || n != len(p) {
					t.Fatalf("write n=%d err=%v", n, err)
				}
			}
			w.Flush()
			if !reflect.DeepEqual(*got, c.want) {
				t.Fatalf("lines = %q, want %q", *got, c.want)
			}
		})
	}
}

func TestLineWriterChunksLongLines(t *testing.T) {
	w, got := collect(4)
	_, _ = w.Write([]byte("aaaaaaaaaa\nafter\n"))
	w.Flush()
	want := []string{"aaaa", "aaaa", "aa", "after"}
	if !reflect.DeepEqual(*got, want) {
		t.Fatalf("lines = %q, want %q", *got, want)
	}

	w, got = collect(4)
	_, _ = w.Write([]byte("bbbbbbbb\nx\n"))
	w.Flush()
	if strings.Join(*got, "|") != "bbbb|bbbb|x" {
		t.Fatalf("terminator after an exact cut must not add an empty line: %q", *got)
	}
}
