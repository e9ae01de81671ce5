// SPDX-License-Identifier: GPL-3.0-or-later

package mediatype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBasic(t *testing.T) {
	m, err := Parse("text/plain; charset=UTF-8")
	require.NoError(t, err)
	assert.Equal(t, "text", m.Type())
	assert.Equal(t, "plain", m.Subtype())
	assert.Equal(t, "utf-8", m.Charset())
}

func TestParseCaseInsensitiveParamName(t *testing.T) {
	m, err := Parse("application/JSON; Charset=\"utf-8\"")
	require.NoError(t, err)
	assert.Equal(t, "application", m.Type())
	assert.Equal(t, "json", m.Subtype())
	v, ok := m.Parameter("CHARSET")
	assert.True(t, ok)
	assert.Equal(t, "utf-8", v)
}

func TestParseMissingSlashErrors(t *testing.T) {
	_, err := Parse("not-a-media-type")
	assert.Error(t, err)
}

func TestParseMultipleParamsPreservesOrder(t *testing.T) {
	m, err := Parse("multipart/form-data; boundary=abc123; charset=utf-8")
	require.NoError(t, err)
	assert.Equal(t, []string{"boundary", "charset"}, sortedParameterNames(m))
	assert.Equal(t, `multipart/form-data; boundary=abc123; charset=utf-8`, m.String())
}

func TestStringQuotesNonTokenValues(t *testing.T) {
	m, err := Parse(`text/plain; boundary="has space"`)
	require.NoError(t, err)
	assert.Equal(t, `text/plain; boundary="has space"`, m.String())
}

func TestEffectiveCharsetDefaultsForText(t *testing.T) {
	m, err := Parse("text/plain")
	require.NoError(t, err)
	assert.Equal(t, "", m.Charset())
	assert.Equal(t, "utf-8", EffectiveCharset(m))
}

func TestEffectiveCharsetNoDefaultForNonText(t *testing.T) {
	m, err := Parse("application/octet-stream")
	require.NoError(t, err)
	assert.Equal(t, "", EffectiveCharset(m))
}

func TestEffectiveCharsetExplicitWins(t *testing.T) {
	m, err := Parse("text/html; charset=iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "iso-8859-1", EffectiveCharset(m))
}
