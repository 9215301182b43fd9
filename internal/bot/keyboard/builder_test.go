package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonforge/worker-bot/internal/workflow"
)

func TestRenderTrafficMenuCoversAllOptions(t *testing.T) {
	b := NewBuilder(nil)

	markup := b.Render(workflow.Keyboard{Kind: workflow.KeyboardTraffic})
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, len(workflow.TrafficOptions))

	for i, opt := range workflow.TrafficOptions {
		assert.Equal(t, opt.Label, markup.InlineKeyboard[i][0].Text)
		assert.Equal(t, workflow.PrefixTraffic+opt.Key, markup.InlineKeyboard[i][0].Data)
	}
}

func TestRenderReviewButtonsCarryApplicantID(t *testing.T) {
	b := NewBuilder(nil)

	markup := b.Render(workflow.Keyboard{Kind: workflow.KeyboardReview, Ref: 12345})
	require.NotNil(t, markup)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 2)

	assert.Equal(t, "approve_12345", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, "reject_12345", markup.InlineKeyboard[0][1].Data)
}

func TestRenderNoneKeyboardIsNil(t *testing.T) {
	b := NewBuilder(nil)
	assert.Nil(t, b.Render(workflow.Keyboard{}))
}

func TestPayloadRejectsOversizedData(t *testing.T) {
	longPrefix := make([]byte, CallbackDataLimitBytes)
	for i := range longPrefix {
		longPrefix[i] = 'x'
	}

	_, err := Payload(string(longPrefix), 123)
	assert.Error(t, err)
}

func TestSplitPayload(t *testing.T) {
	rest, ok := SplitPayload("workers_page_3", workflow.PrefixWorkersPage)
	require.True(t, ok)
	assert.Equal(t, "3", rest)

	_, ok = SplitPayload("profile", workflow.PrefixWorkersPage)
	assert.False(t, ok)
}

func TestPaginationButtonsBounds(t *testing.T) {
	first := PaginationButtons("workers_page_", 1, 3)
	require.Len(t, first, 2)
	assert.Equal(t, "workers_page_2", first[1].Data)

	middle := PaginationButtons("workers_page_", 2, 3)
	require.Len(t, middle, 3)
	assert.Equal(t, "workers_page_1", middle[0].Data)
	assert.Equal(t, "workers_page_3", middle[2].Data)

	only := PaginationButtons("workers_page_", 1, 1)
	require.Len(t, only, 1)
}
