package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	out, err := ExtractJSON(`{"title":"test"}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"test"}`, out)
}

func TestExtractJSON_FencedWithLanguageTag(t *testing.T) {
	reply := "Here is the result:\n```json\n{\"title\":\"fenced\"}\n```\nThanks."
	out, err := ExtractJSON(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"fenced"}`, out)
}

func TestExtractJSON_FencedWithoutLanguageTag(t *testing.T) {
	reply := "```\n[{\"a\":1}]\n```"
	out, err := ExtractJSON(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a":1}]`, out)
}

func TestExtractJSON_ArrayWithSurroundingProse(t *testing.T) {
	reply := "sure, here you go: [{\"a\":1},{\"a\":2}] hope that helps"
	out, err := ExtractJSON(reply)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a":1},{"a":2}]`, out)
}

func TestExtractJSON_NoJSONFound(t *testing.T) {
	_, err := ExtractJSON("I could not find anything relevant.")
	require.Error(t, err)
}

func TestExtractJSON_InvalidJSON(t *testing.T) {
	_, err := ExtractJSON("{not valid json}")
	require.Error(t, err)
}
