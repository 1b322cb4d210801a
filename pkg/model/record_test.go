package model

import (
	"math"
	"testing"
)

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     Record
		wantErr bool
	}{
		{"valid", Record{Condition: "ET", TremorSeverity: 0.4}, false},
		{"zero severity", Record{Condition: "ET", TremorSeverity: 0}, false},
		{"empty condition", Record{Condition: "  ", TremorSeverity: 1}, true},
		{"negative", Record{Condition: "ET", TremorSeverity: -1}, true},
		{"nan", Record{Condition: "ET", TremorSeverity: math.NaN()}, true},
		{"inf", Record{Condition: "ET", TremorSeverity: math.Inf(1)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOptionalUsableAndFormat(t *testing.T) {
	if None().Usable() {
		t.Error("None() should not be usable")
	}
	if (Optional{Value: math.NaN(), Valid: true}).Usable() {
		t.Error("NaN should not be usable")
	}
	if got := Some(61.6).Format(0); got != "62" {
		t.Errorf("Format(0) = %q, want 62", got)
	}
	if got := None().Format(2); got != "n/a" {
		t.Errorf("Format on None = %q, want n/a", got)
	}
}

func TestDescribeTask(t *testing.T) {
	if got := DescribeTask("TouchNose"); got != "Tap own nose with index finger." {
		t.Errorf("DescribeTask(TouchNose) = %q", got)
	}
	if got := DescribeTask("Juggling"); got != AllTasksDescription {
		t.Errorf("unknown task should fall back, got %q", got)
	}
	if got := DescribeTask("All"); got != AllTasksDescription {
		t.Errorf("All should fall back, got %q", got)
	}
	if len(TaskDescriptions) != 11 {
		t.Errorf("expected 11 task descriptions, got %d", len(TaskDescriptions))
	}
}

func TestKeys(t *testing.T) {
	got := Keys([]GroupSummary{{Condition: "B"}, {Condition: "A"}})
	if len(got) != 2 || got[0] != "B" || got[1] != "A" {
		t.Fatalf("Keys = %v", got)
	}
}
