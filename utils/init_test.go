package utils

import "testing"

func TestDefaultTask(t *testing.T) {
	if !Opts().Task().IsValid() {
		t.Errorf("default task %q is not recognized", Opts().Task())
	}
	if !Opts().Task().IsPrintStates() {
		t.Errorf("default task is %q, expected print-states", Opts().Task())
	}
	if Opts().Task().IsCfgToDot() {
		t.Error("default task must not be cfg-to-dot")
	}
}
