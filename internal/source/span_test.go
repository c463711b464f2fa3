package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name string
		a, b Span
		want Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"nested", Span{File: 1, Start: 0, End: 10}, Span{File: 1, Start: 3, End: 4}, Span{File: 1, Start: 0, End: 10}},
		{"reversed", Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 2, End: 10}},
		{"other file", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 10}, Span{File: 1, Start: 2, End: 4}},
		{"empty", Span{File: 1, Start: 5, End: 5}, Span{File: 1, Start: 7, End: 7}, Span{File: 1, Start: 5, End: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.want {
				t.Errorf("Cover = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpanLen(t *testing.T) {
	tests := []struct {
		s    Span
		want uint32
	}{
		{Span{File: 3, Start: 4, End: 9}, 5},
		{Span{Start: 7, End: 7}, 0},
		{Span{Start: 7, End: 7}.Cover(Span{Start: 2, End: 3}), 5},
	}
	for _, tt := range tests {
		if got := tt.s.Len(); got != tt.want {
			t.Errorf("%+v.Len() = %d, want %d", tt.s, got, tt.want)
		}
	}
}
