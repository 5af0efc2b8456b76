package common

import (
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputShapeError(t *testing.T) {
	err := NewInputShapeError(ErrMissingColumn, "ZPMR_CTRL_ASS", "Check")

	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `"ZPMR_CTRL_ASS"`)
	assert.Contains(t, err.Error(), `"Check"`)

	var shapeErr *InputShapeError
	require.True(t, errors.As(err, &shapeErr))
	assert.Equal(t, "Check", shapeErr.Column)

	noColumn := NewInputShapeError(ErrEmptyInput, "candidates", "")
	assert.NotContains(t, noColumn.Error(), "column")
}

func TestPatternCompilationError(t *testing.T) {
	_, reErr := regexp.Compile("[A-")
	require.Error(t, reErr)

	err := &PatternCompilationError{Pattern: "[A-", Subject: "guideline.csv", Err: reErr}

	assert.True(t, errors.Is(err, ErrInvalidPattern))
	assert.Contains(t, err.Error(), "[A-")
	assert.Contains(t, err.Error(), "guideline.csv")
	assert.Equal(t, reErr, err.Cause())
}

func TestAmbiguousMatchError(t *testing.T) {
	err := &AmbiguousMatchError{Code: "AB", Patterns: []string{"A.", ".B"}}

	assert.True(t, errors.Is(err, ErrAmbiguousMatch))
	assert.Contains(t, err.Error(), "2 patterns")
	assert.Contains(t, err.Error(), "A., .B")
}

func TestUserError(t *testing.T) {
	inner := errors.New("boom")
	err := NewUserError("could not load rules", inner)

	assert.Equal(t, "could not load rules: boom", err.Error())
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestAnchor(t *testing.T) {
	re, err := CompileFull("A|AB")
	require.NoError(t, err)

	assert.True(t, re.MatchString("AB"))
	assert.True(t, re.MatchString("A"))
	assert.False(t, re.MatchString("ABC"))
	assert.False(t, re.MatchString("XAB"))
}

func TestParseLevel(t *testing.T) {
	_, err := ParseLevel("verbose")
	assert.Error(t, err)

	lvl, err := ParseLevel("warn")
	require.NoError(t, err)
	assert.Equal(t, "WARN", lvl.String())

	_, err = SetupLogger("info", "xml")
	assert.Error(t, err)
}
