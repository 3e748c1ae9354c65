package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTodoItemJSONFieldNames(t *testing.T) {
	it := TodoItem{ID: 1700000000000, Text: "Buy milk", CreatedAt: "2024-01-02T03:04:05.678Z"}
	b, err := json.Marshal(it)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1700000000000,"text":"Buy milk","completed":false,"createdAt":"2024-01-02T03:04:05.678Z"}`, string(b))
}

func TestFormatTime(t *testing.T) {
	loc := time.FixedZone("x", 2*3600)
	ts := time.Date(2024, 1, 2, 5, 4, 5, 678_000_000, loc)
	assert.Equal(t, "2024-01-02T03:04:05.678Z", FormatTime(ts))

}

func TestCollectionHelpers(t *testing.T) {
	c := Collection{{ID: 1, Text: "a"}, {ID: 2, Text: "b", Completed: true}, {ID: 3, Text: "c"}}

	assert.Equal(t, 1, c.Index(2))
	assert.Equal(t, -1, c.Index(42))

	done, pending := c.Stats()
	assert.Equal(t, 1, done)
	assert.Equal(t, 2, pending)

	cp := c.Clone()
	cp[0].Text = "changed"
	assert.Equal(t, "a", c[0].Text)

	var empty Collection
	assert.NotNil(t, empty.Clone())
}

func TestNormalizeText(t *testing.T) {
	for name, tc := range map[string]struct {
		in     string
		want   string
		wantOK bool
	}{
		"trims":      {in: "  buy milk  ", want: "buy milk", wantOK: true},
		"blank":      {in: "   ", want: "", wantOK: false},
		"empty":      {in: "", want: "", wantOK: false},
		"tabs/lines": {in: "\t x \n", want: "x", wantOK: true},
		"bom only":   {in: "\uFEFF", want: "", wantOK: false},
		"bom edges":  {in: "\uFEFF milk\u00A0", want: "milk", wantOK: true},
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := NormalizeText(tc.in)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantOK, ok)
		})
	}
}

func TestActionStateErr(t *testing.T) {
	assert.NoError(t, OK().Err())
	assert.ErrorIs(t, Failed(ErrTextRequired.Error()).Err(), ErrTextRequired)
	assert.ErrorIs(t, Failed(ErrTextEmpty.Error()).Err(), ErrTextEmpty)
	assert.True(t, IsValidation(Failed(ErrTextEmpty.Error()).Err()))

	err := Failed("Failed to delete todo").Err()
	require.Error(t, err)
	assert.Equal(t, "Failed to delete todo", err.Error())
	assert.False(t, IsValidation(err))
}
