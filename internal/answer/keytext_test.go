package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKeyText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want map[int]string
	}{
		{
			name: "mixed separators and token styles",
			text: "1 ①\n2. ②\n3:③\n4 4\n5 5",
			want: map[int]string{1: "①", 2: "②", 3: "③", 4: "④", 5: "⑤"},
		},
		{
			name: "line without leading number is ignored",
			text: "경제원론 정답\n1 ①\n정답 ③\n2 ②",
			want: map[int]string{1: "①", 2: "②"},
		},
		{
			name: "line without an answer token is ignored",
			text: "1 ①\n2 보류\n3 ③",
			want: map[int]string{1: "①", 3: "③"},
		},
		{
			name: "duplicate question keeps last occurrence",
			text: "7 ①\n7 ④",
			want: map[int]string{7: "④"},
		},
		{
			name: "blank lines and padding tolerated",
			text: "\n  12   ②  \n\n  13. 4\n",
			want: map[int]string{12: "②", 13: "④"},
		},
		{
			name: "empty input",
			text: "",
			want: map[int]string{},
		},
		{
			name: "digit glued to a larger number is not an answer",
			text: "21 450",
			want: map[int]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseKeyText(tt.text))
		})
	}
}
