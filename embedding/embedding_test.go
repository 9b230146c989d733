package embedding

import (
	"errors"
	"strings"
	"testing"

	"hotissue/board"
)

func TestValidate(t *testing.T) {
	testCases := []struct {
		name    string
		vec     []float32
		dim     int
		wantErr error
	}{
		{"Valid", []float32{0.1, -0.2, 0.3}, 3, nil},
		{"TooShort", []float32{0.1, 0.2}, 3, ErrDimension},
		{"TooLong", []float32{0.1, 0.2, 0.3, 0.4}, 3, ErrDimension},
		{"AllZeros", []float32{0, 0, 0}, 3, ErrZeroVector},
		{"Empty", []float32{}, 3, ErrDimension},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.vec, tc.dim)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("got %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0, 0}
	if got := CosineSimilarity(a, a); got < 0.999 {
		t.Errorf("identical vectors = %v, want ~1", got)
	}
	if got := CosineSimilarity(a, []float32{0, 1, 0}); got != 0 {
		t.Errorf("orthogonal vectors = %v, want 0", got)
	}
	if got := CosineSimilarity(a, []float32{0, 1}); got != 0 {
		t.Errorf("mismatched lengths = %v, want 0", got)
	}
}

func TestBuildText_FieldOrder(t *testing.T) {
	doc := &board.Document{
		Title:    "게시글 제목",
		Analysis: "분석 내용",
		Content:  "본문 내용",
		Comments: []string{"댓글1", "댓글2"},
	}

	text := BuildText(doc)
	title := strings.Index(text, "게시글 제목")
	analysis := strings.Index(text, "분석 내용")
	content := strings.Index(text, "본문 내용")
	comment := strings.Index(text, "댓글1")

	if title < 0 || analysis < 0 || content < 0 || comment < 0 {
		t.Fatalf("missing field in %q", text)
	}
	if !(title < analysis && analysis < content && content < comment) {
		t.Errorf("field order wrong in %q", text)
	}
}

func TestBuildText_Budgets(t *testing.T) {
	longContent := strings.Repeat("가나다라마바사 아자차카타파하. ", 200)
	doc := &board.Document{
		Title:    "제목",
		Content:  longContent,
		Comments: []string{"c1", "c2", "c3", "c4", "c5", "절대 포함되면 안 되는 여섯번째 댓글"},
	}

	text := BuildText(doc)
	if len([]rune(text)) > len([]rune("제목"))+2*fieldBudget+2 {
		t.Errorf("text exceeds field budgets: %d runes", len([]rune(text)))
	}
	if strings.Contains(text, "여섯번째") {
		t.Error("only the first five comments may contribute")
	}
	if strings.Contains(text, "c5") == false {
		t.Error("fifth comment should contribute")
	}
}

func TestBuildText_ShortTextPrefix(t *testing.T) {
	doc := &board.Document{Title: "ㅋㅋ"}
	text := BuildText(doc)
	if !strings.HasPrefix(text, shortTextPrefix) {
		t.Errorf("short text should get the board prefix, got %q", text)
	}

	long := &board.Document{Title: "충분히 긴 게시글 제목입니다"}
	if strings.HasPrefix(BuildText(long), shortTextPrefix) {
		t.Error("long text must not get the board prefix")
	}
}

func TestTruncateClean(t *testing.T) {
	short := "짧은 텍스트"
	if got := truncateClean(short, 500); got != short {
		t.Errorf("short text must pass through, got %q", got)
	}

	long := strings.Repeat("문장입니다. ", 200)
	got := truncateClean(long, 500)
	if len([]rune(got)) > 500 {
		t.Errorf("truncated to %d runes, want <= 500", len([]rune(got)))
	}
	if got == "" {
		t.Error("truncation produced empty text")
	}
}
