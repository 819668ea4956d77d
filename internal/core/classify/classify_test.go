package classify

import "testing"

func TestClassify_DefaultColours(t *testing.T) {
	c := Default()
	tests := []struct {
		name string
		code int
		want Verdict
	}{
		{"black is obstacle", ColorBlack, Obstacle},
		{"red is obstacle", ColorRed, Obstacle},
		{"white is floor", ColorWhite, Traversable},
		{"brown is floor", ColorBrown, Traversable},
		{"no colour is indeterminate", ColorNone, Indeterminate},
		{"blue is indeterminate", ColorBlue, Indeterminate},
		{"negative code is indeterminate", -3, Indeterminate},
		{"code past table is indeterminate", 42, Indeterminate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.code); got != tt.want {
				t.Errorf("Classify(%d) = %s, want %s", tt.code, got, tt.want)
			}
		})
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := Default()
	for code := -1; code <= 8; code++ {
		first := c.Classify(code)
		second := c.Classify(code)
		if first != second {
			t.Errorf("Classify(%d) changed between calls: %s then %s", code, first, second)
		}
	}
}

func TestNew_OverlapRejected(t *testing.T) {
	if _, err := New([]int{ColorBlack}, []int{ColorWhite, ColorBlack}); err == nil {
		t.Error("expected error for colour in both sets")
	}
}

func TestNew_CustomSets(t *testing.T) {
	c, err := New([]int{ColorGreen}, []int{ColorYellow})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if c.Classify(ColorGreen) != Obstacle {
		t.Error("green should be obstacle")
	}
	if c.Classify(ColorBlack) != Indeterminate {
		t.Error("black is not configured and should be indeterminate")
	}
	if got := c.ObstacleColors(); len(got) != 1 || got[0] != ColorGreen {
		t.Errorf("ObstacleColors() = %v", got)
	}
}

func TestColorNames(t *testing.T) {
	if ColorName(ColorRed) != "RED" || ColorName(99) != "?" || ColorName(-1) != "?" {
		t.Error("unexpected colour names")
	}

	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"black", ColorBlack, false},
		{"White", ColorWhite, false},
		{"5", ColorRed, false},
		{"0", ColorNone, false},
		{"purple", 0, true},
		{"12", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseColor(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseColor(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestClassifyDistance(t *testing.T) {
	tests := []struct {
		mm   int
		want Verdict
	}{
		{0, Indeterminate},
		{-5, Indeterminate},
		{40, Obstacle},
		{100, Obstacle},
		{101, Traversable},
	}
	for _, tt := range tests {
		if got := ClassifyDistance(tt.mm, 100); got != tt.want {
			t.Errorf("ClassifyDistance(%d) = %s, want %s", tt.mm, got, tt.want)
		}
	}
}

func TestPolicyResolve(t *testing.T) {
	tests := []struct {
		name    string
		policy  IndeterminatePolicy
		verdict Verdict
		attempt int
		want    Resolution
	}{
		{"determinate passes through", DefaultPolicy(), Obstacle, 0, Resolution{Verdict: Obstacle}},
		{"retry first attempt", DefaultPolicy(), Indeterminate, 0, Resolution{Retry: true}},
		{"retry last allowed attempt", DefaultPolicy(), Indeterminate, 2, Resolution{Retry: true}},
		{"retry exhausted defaults to floor", DefaultPolicy(), Indeterminate, 3, Resolution{Verdict: Traversable}},
		{"traversable mode", IndeterminatePolicy{Mode: ModeTraversable}, Indeterminate, 0, Resolution{Verdict: Traversable}},
		{"obstacle mode", IndeterminatePolicy{Mode: ModeObstacle}, Indeterminate, 0, Resolution{Verdict: Obstacle}},
		{"zero retries", IndeterminatePolicy{Mode: ModeRetry}, Indeterminate, 0, Resolution{Verdict: Traversable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.Resolve(tt.verdict, tt.attempt); got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Errorf("default policy invalid: %v", err)
	}
	if err := (IndeterminatePolicy{Mode: "forever"}).Validate(); err == nil {
		t.Error("expected error for unknown mode")
	}
	if err := (IndeterminatePolicy{Mode: ModeRetry, MaxRetries: -1}).Validate(); err == nil {
		t.Error("expected error for negative retries")
	}
}

func TestDistanceClassifier(t *testing.T) {
	d := DistanceClassifier{ThresholdMM: 150}
	if d.Classify(120) != Obstacle || d.Classify(400) != Traversable || d.Classify(0) != Indeterminate {
		t.Error("unexpected distance verdicts")
	}
}
