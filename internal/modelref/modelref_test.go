package modelref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractModelID(t *testing.T) {
	cases := []struct{ in, want string }{
		{"https://host/org/model-name", "org/model-name"},
		{"https://huggingface.co/mistralai/Mistral-7B-v0.1", "mistralai/Mistral-7B-v0.1"},
		{"org/model", "org/model"},
		{"a/b/c/d", "c/d"},
		{"model", "model"},
		{"", ""},
		{"https://host/org/model/", "model/"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ExtractModelID(c.in), c.in)
	}
}

func TestModelName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"org/model-name", "model-name"},
		{"model", "model"},
		{"model/", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ModelName(c.in), c.in)
	}
}

func TestArtifactPaths(t *testing.T) {
	assert.Equal(t, "Foo-7B/foo-7b.fp16.bin", FP16Path("Foo-7B"))
	assert.Equal(t, "Foo-7B/foo-7b.Q4_K_M.gguf", QuantizedPath("Foo-7B", "q4_k_m"))
}

func TestParse(t *testing.T) {
	r, err := Parse("  https://huggingface.co/TinyLlama/TinyLlama-1.1B-Chat-v1.0 ")
	require.NoError(t, err)
	assert.Equal(t, "TinyLlama/TinyLlama-1.1B-Chat-v1.0", r.ID)
	assert.Equal(t, "TinyLlama-1.1B-Chat-v1.0", r.Name)
	assert.Equal(t, "TinyLlama-1.1B-Chat-v1.0/tinyllama-1.1b-chat-v1.0.fp16.bin", r.FP16Path)
	assert.Equal(t, "TinyLlama-1.1B-Chat-v1.0/tinyllama-1.1b-chat-v1.0.Q8_0.gguf", r.OutputPath("q8_0"))

	// single segment passes through
	r, err = Parse("model")
	require.NoError(t, err)
	assert.Equal(t, "model", r.Name)

	for _, bad := range []string{"", "   ", "https://host/org/model/"} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, ErrInvalidReference, bad)
	}
}
