package motion

import (
	"testing"

	"github.com/example/mazebot/internal/core/pose"
)

func TestTurnToward(t *testing.T) {
	tests := []struct {
		name   string
		from   pose.Heading
		to     pose.Heading
		want   Kind
		wantOK bool
	}{
		{"already facing", pose.North, pose.North, "", false},
		{"right", pose.North, pose.East, TurnRight90, true},
		{"left", pose.North, pose.West, TurnLeft90, true},
		{"around", pose.East, pose.West, TurnAround180, true},
		{"right wraps", pose.West, pose.North, TurnRight90, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := TurnToward(tt.from, tt.to)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("TurnToward(%s, %s) = (%q, %v), want (%q, %v)", tt.from, tt.to, got, ok, tt.want, tt.wantOK)
			}
			if ok && Apply(tt.from, got) != tt.to {
				t.Errorf("Apply(%s, %s) = %s, want %s", tt.from, got, Apply(tt.from, got), tt.to)
			}
		})
	}
}

func TestApply_NonTurnKeepsHeading(t *testing.T) {
	for _, k := range []Kind{AdvanceOneCell, ReverseShort} {
		if Apply(pose.South, k) != pose.South {
			t.Errorf("Apply(S, %s) changed heading", k)
		}
		if k.IsTurn() {
			t.Errorf("%s reported as turn", k)
		}
	}
}

func TestCalibrationCommand(t *testing.T) {
	c := DefaultCalibration()
	tests := []struct {
		kind Kind
		want int
	}{
		// 360 * 253 / (pi * 49.5) = 585.7
		{AdvanceOneCell, 585},
		// 360 * 70 / (pi * 49.5) = 162.06, negated for reverse
		{ReverseShort, -162},
		// 90 * 104 / 49.5 = 189.09
		{TurnLeft90, 189},
		{TurnRight90, -189},
		// 180 * 104 / 49.5 = 378.18
		{TurnAround180, 378},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			got := c.Command(tt.kind)
			if got.Kind != tt.kind || got.Magnitude != tt.want {
				t.Errorf("Command(%s) = %s, want magnitude %d", tt.kind, got, tt.want)
			}
		})
	}
}

func TestCalibrationValidate(t *testing.T) {
	if err := DefaultCalibration().Validate(); err != nil {
		t.Errorf("default calibration invalid: %v", err)
	}

	bad := DefaultCalibration()
	bad.ReturnLengthMM = bad.TileLengthMM
	if err := bad.Validate(); err == nil {
		t.Error("return length equal to a tile should be rejected")
	}

	bad = DefaultCalibration()
	bad.WheelDiameterMM = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero wheel diameter should be rejected")
	}

	bad = DefaultCalibration()
	bad.Speed = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero speed should be rejected")
	}
}
