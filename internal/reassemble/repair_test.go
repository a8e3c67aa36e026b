package reassemble

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRepair(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"split keyword", "Driver e vent: Start", "Driver event: Start"},
		{"schedule tag", "[Schedule   Driver event X", "[ScheduledTasks] Driver event X"},
		{"schedule tag tight", "[Schedule Driver event X", "[ScheduledTasks] Driver event X"},
		{"schedule needs whitespace", "[ScheduleDriver event X", "[ScheduleDriver event X"},
		{"sustain trailing letters", "Sustain:NO xy", "Sustain:NO"},
		{"sustain inside line", "09/15/2024 10:11:13 Sustain:NO abc", "09/15/2024 10:11:13 Sustain:NO"},
		{"sustain four letters kept", "Sustain:NO abcd", "Sustain:NO abcd"},
		{"paren trailing letters", "Value(1) ab", "Value(1)"},
		{"quote trailing letters", "name 'Foo' x", "name 'Foo'"},
		{"double quote trailing letters", `say "hi" Ok`, `say "hi"`},
		{"paren trailing digits kept", "Value(1) 12", "Value(1) 12"},
		{"not at end", "Value) ab more", "Value) ab more"},
		{"split keyword then schedule", "[Schedule Driver e vent", "[ScheduledTasks] Driver event"},
		{"clean line", "Input: Button 1 Pressed", "Input: Button 1 Pressed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Repair(tt.input))
		})
	}
}

func TestRepairAll_PreservesOrder(t *testing.T) {
	got := RepairAll([]string{"a) xy", "b", "Sustain:NO q"})
	assert.Equal(t, []string{"a)", "b", "Sustain:NO"}, got)
}
