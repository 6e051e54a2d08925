package protgpt

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foldlab/proteus/internal/backend"
)

type fakeRunner struct {
	args   []string
	stdin  string
	stdout []byte
	err    error
}

func (r *fakeRunner) Run(_ context.Context, _ string, args []string, stdin io.Reader) ([]byte, []byte, error) {
	r.args = args
	if stdin != nil {
		b, _ := io.ReadAll(stdin)
		r.stdin = string(b)
	}
	return r.stdout, nil, r.err
}

func sampleParams() map[string]any {
	return map[string]any{
		"max_length":           100,
		"do_sample":            true,
		"top_k":                950,
		"repetition_penalty":   1.2,
		"num_return_sequences": 1,
		"eos_token_id":         0,
		"dtype":                "float32",
	}
}

func TestBuildArgs(t *testing.T) {
	args := BuildArgs("/models/protgpt2", sampleParams())

	assert.Equal(t, []string{
		"--model", "/models/protgpt2",
		"--max_length", "100",
		"--do_sample", "true",
		"--top_k", "950",
		"--repetition_penalty", "1.2",
		"--num_return_sequences", "1",
		"--eos_token_id", "0",
		"--dtype", "float32",
	}, args)
}

func TestBuildArgs_Deterministic(t *testing.T) {
	first := BuildArgs("/models/protgpt2", sampleParams())
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, BuildArgs("/models/protgpt2", sampleParams()))
	}
}

func TestParseSequences_SkipsBlankAndProgressLines(t *testing.T) {
	stdout := []byte("# loading model\n\nMKVLAAGITG\n# sampling\nGSAWFVTQRE\n\n")

	assert.Equal(t, []string{"MKVLAAGITG", "GSAWFVTQRE"}, ParseSequences(stdout))
}

func TestParseSequences_Empty(t *testing.T) {
	assert.Nil(t, ParseSequences([]byte("# nothing generated\n")))
}

func TestInfer_DefaultsToBOSPrompt(t *testing.T) {
	runner := &fakeRunner{stdout: []byte("MKVLAAGITG\n")}
	b := NewBackendWithRunner("protgpt2-generate", runner)

	resp, err := b.Infer(context.Background(), &backend.Request{
		ModelPath:  "/models/protgpt2",
		Parameters: sampleParams(),
	})
	require.NoError(t, err)

	assert.Equal(t, BOSToken, runner.stdin)
	assert.Equal(t, []string{"MKVLAAGITG"}, resp.Sequences)
	assert.Equal(t, backend.ProviderProtGPT2, resp.Metadata.Provider)
}
