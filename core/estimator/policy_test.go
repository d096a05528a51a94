package estimator

import "testing"

func TestParsePolicy(t *testing.T) {
	cases := map[string]Policy{"": PolicyStrict, "strict": PolicyStrict, " Lenient ": PolicyLenient}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %v got %v", in, want, got)
		}
	}
	if _, err := ParsePolicy("loose"); err == nil {
		t.Fatal("expected error for unknown policy")
	}
}

func TestPolicyString(t *testing.T) {
	if PolicyStrict.String() != "strict" || PolicyLenient.String() != "lenient" {
		t.Fatal("unexpected policy names")
	}
	if Policy(7).String() != "Policy(7)" {
		t.Fatalf("unexpected name %s", Policy(7).String())
	}
}

func TestRejectionReason(t *testing.T) {
	e, err := New(testSpec, 1, 3)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	cases := []struct {
		dist, energy float64
		want         string
	}{
		{10, 1, ""},
		{0, 1, "non_positive_distance"},
		{10, -1, "negative_energy"},
	}
	for _, c := range cases {
		if got := RejectionReason(e.AddDrivingData(c.dist, c.energy)); got != c.want {
			t.Errorf("%v/%v: expected %q got %q", c.dist, c.energy, c.want, got)
		}
	}
}
