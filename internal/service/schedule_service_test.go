package service

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/summitprep/satprep-backend/internal/config"
	"github.com/summitprep/satprep-backend/internal/model"
)

func TestCheckChangeAllowed(t *testing.T) {
	tests := []struct {
		name        string
		current     string
		requested   string
		changeCount int
		limit       int
		wantNoop    bool
		wantErr     error
	}{
		{"first change allowed", "Mon 5pm", "Sat 10am", 0, 1, false, nil},
		{"same value is a noop even at the limit", "Mon 5pm", "Mon 5pm", 1, 1, true, nil},
		{"at limit rejected", "Mon 5pm", "Sat 10am", 1, 1, false, ErrChangeLimitExceeded},
		{"over limit rejected", "Mon 5pm", "Sat 10am", 3, 1, false, ErrChangeLimitExceeded},
		{"higher limit allows more changes", "Mon 5pm", "Sat 10am", 1, 3, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			noop, err := checkChangeAllowed(tt.current, tt.requested, tt.changeCount, tt.limit)
			if noop != tt.wantNoop {
				t.Errorf("noop = %v, want %v", noop, tt.wantNoop)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveValidity(t *testing.T) {
	if err := resolveValidity(OptionValid, false); err != nil {
		t.Errorf("valid option rejected: %v", err)
	}
	if err := resolveValidity(OptionInvalid, true); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("invalid option accepted under fail-open: %v", err)
	}
	if err := resolveValidity(OptionUnknown, true); err != nil {
		t.Errorf("unknown rejected under fail-open: %v", err)
	}
	if err := resolveValidity(OptionUnknown, false); !errors.Is(err, ErrInvalidOption) {
		t.Errorf("unknown accepted under fail-closed: %v", err)
	}
}

func TestIsLegacyName(t *testing.T) {
	if !isLegacyName(model.OfferingClassTime, "Saturday Morning (Legacy)") {
		t.Error("known legacy class time not recognized")
	}
	if isLegacyName(model.OfferingDiagnosticTest, "Saturday Morning (Legacy)") {
		t.Error("legacy name matched across kinds")
	}
	if isLegacyName(model.OfferingClassTime, "Monday & Wednesday 5:00 PM") {
		t.Error("non-legacy name treated as legacy")
	}
}

func TestScheduleState(t *testing.T) {
	cfg := &config.Config{ScheduleChangeLimit: 1}
	svc := NewScheduleService(nil, nil, cfg, zerolog.Nop())

	student := &model.Student{
		ClassTime:             "Mon 5pm",
		DiagnosticTestDate:    "Sat 9am",
		ClassTimeChangeCount:  1,
		DiagnosticChangeCount: 0,
	}

	state := svc.ScheduleState(student)
	if state.CanChangeClassTime {
		t.Error("class time change allowed after budget consumed")
	}
	if !state.CanChangeDiagnosticTest {
		t.Error("diagnostic change blocked with budget remaining")
	}
	if state.ClassTime != "Mon 5pm" || state.DiagnosticTestDate != "Sat 9am" {
		t.Errorf("unexpected schedule values: %+v", state)
	}
}
