package pyversion

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Version
		wantErr bool
	}{
		{"full", "3.11.9", Version{3, 11, 9}, false},
		{"minor only", "3.11", Version{3, 11, -1}, false},
		{"major only", "3", Version{3, -1, -1}, false},
		{"whitespace", " 3.11.9\n", Version{3, 11, 9}, false},
		{"suffix ignored", "3.11.9-dev", Version{3, 11, 9}, false},
		{"garbage", "latest", Version{}, true},
		{"empty", "", Version{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseToolOutput(t *testing.T) {
	v, err := ParsePython("Python 3.11.9")
	if err != nil {
		t.Fatalf("ParsePython: %v", err)
	}
	if v.String() != "3.11.9" {
		t.Errorf("ParsePython = %s", v)
	}

	if _, err := ParsePython("Pithon 3.11.9"); err == nil {
		t.Error("ParsePython should reject unexpected prefix")
	}

	v, err = ParsePip("pip 24.0 from /x/.venv/lib/python3.11/site-packages/pip (python 3.11)")
	if err != nil {
		t.Fatalf("ParsePip: %v", err)
	}
	if v.MinorString() != "24.0" {
		t.Errorf("ParsePip = %s", v)
	}
}

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Version
		want int
	}{
		{"equal", Version{3, 11, 9}, Version{3, 11, 9}, 0},
		{"patch greater", Version{3, 11, 10}, Version{3, 11, 9}, 1},
		{"minor lesser", Version{3, 10, 0}, Version{3, 11, 0}, -1},
		{"major dominates", Version{4, 0, 0}, Version{3, 99, 99}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}
