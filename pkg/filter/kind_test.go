package filter

import "testing"

func TestDefaultJobs(t *testing.T) {
	want := []string{"red.ppm", "green.ppm", "violet.ppm", "whiteToRed.ppm"}
	jobs := DefaultJobs()
	if len(jobs) != len(want) {
		t.Fatalf("len(DefaultJobs()) = %d, want %d", len(jobs), len(want))
	}
	for i, j := range jobs {
		if j.Output != want[i] {
			t.Errorf("job %d output = %q, want %q", i, j.Output, want[i])
		}
		if j.Apply == nil {
			t.Errorf("job %d (%s) has no filter", i, j.Kind)
		}
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"red", Red, false},
		{"GREEN", Green, false},
		{"violet", Violet, false},
		{"whitetored", WhiteToRed, false},
		{"blue", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestKindString(t *testing.T) {
	if got := WhiteToRed.String(); got != "whiteToRed" {
		t.Errorf("WhiteToRed.String() = %q, want %q", got, "whiteToRed")
	}
	if got := Kind(9).String(); got != "Kind(9)" {
		t.Errorf("Kind(9).String() = %q, want %q", got, "Kind(9)")
	}
	if Kind(9).Func() != nil || Kind(-1).Output() != "" {
		t.Error("unknown kind should have no filter or output")
	}
}

func TestJobsFor(t *testing.T) {
	jobs, err := JobsFor(nil)
	if err != nil || len(jobs) != 4 {
		t.Fatalf("JobsFor(nil) = %d jobs, %v; want 4, nil", len(jobs), err)
	}

	jobs, err = JobsFor([]string{"violet", " red "})
	if err != nil {
		t.Fatalf("JobsFor() error = %v", err)
	}
	if len(jobs) != 2 || jobs[0].Kind != Violet || jobs[1].Kind != Red {
		t.Errorf("JobsFor(violet, red) = %+v", jobs)
	}

	if _, err := JobsFor([]string{"red", "red"}); err == nil {
		t.Error("JobsFor(red, red) error = nil, want duplicate error")
	}
	if _, err := JobsFor([]string{"sepia"}); err == nil {
		t.Error("JobsFor(sepia) error = nil, want unknown filter error")
	}
}
