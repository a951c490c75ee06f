package ranking

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

// TestRefineText 测试展示文本的清洗和截断
func TestRefineText(t *testing.T) {
	t.Run("collapses whitespace runs", func(t *testing.T) {
		got := RefineText("hello   world\n\nnext\tline", 100)
		assert.Equal(t, "hello world next line", got)
	})

	t.Run("strips control characters", func(t *testing.T) {
		got := RefineText("clean\x00text\x07here", 100)
		assert.Equal(t, "cleantexthere", got)
	})

	t.Run("short text untouched", func(t *testing.T) {
		got := RefineText("short text", 100)
		assert.Equal(t, "short text", got)
	})

	t.Run("truncates at word boundary", func(t *testing.T) {
		got := RefineText("alpha beta gamma delta", 12)
		assert.Equal(t, "alpha beta", got)
		assert.False(t, strings.HasSuffix(got, "gam"), "不应在词中间截断")
	})

	t.Run("hard cut without boundary", func(t *testing.T) {
		got := RefineText("abcdefghijklmnopqrstuvwxyz", 10)
		assert.Equal(t, "abcdefghij", got)
	})

	t.Run("hard cut keeps valid utf8", func(t *testing.T) {
		// 10不是3字节字符宽度的整数倍，硬截断必须回退到字符边界
		got := RefineText(strings.Repeat("日本語テキスト", 5), 10)
		assert.True(t, utf8.ValidString(got), "截断不应产生非法UTF-8")
		assert.LessOrEqual(t, len(got), 10)
		assert.NotEmpty(t, got)
	})

	t.Run("zero limit returns cleaned text", func(t *testing.T) {
		got := RefineText("some   text", 0)
		assert.Equal(t, "some text", got)
	})

	t.Run("never exceeds limit", func(t *testing.T) {
		inputs := []string{
			"one two three four five six seven eight nine ten",
			"averyverylongsingletokenwithoutanyspacesinit and more",
		}
		for _, input := range inputs {
			got := RefineText(input, 20)
			assert.LessOrEqual(t, len(got), 20, "input: %s", input)
		}
	})
}
