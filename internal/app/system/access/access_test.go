package access

import "testing"

func TestCompute_FreeTierDefaults(t *testing.T) {
	p := Compute("regular", "")
	if p.Tier != TierFree {
		t.Errorf("empty tier should normalize to free, got %q", p.Tier)
	}
	if p.CanAccessPrograms || p.CanAccessLiveLessons || p.CanAccessDownloads ||
		p.CanAccessCommunity || p.CanAccessCoaching {
		t.Errorf("free tier should hold no paid capabilities: %+v", p)
	}
}

func TestCompute_UnknownTierRanksAsFree(t *testing.T) {
	p := Compute("regular", "platinum")
	if p.Tier != TierFree {
		t.Errorf("unknown tier should normalize to free, got %q", p.Tier)
	}
}

func TestCompute_TierLadder(t *testing.T) {
	basic := Compute("regular", TierBasic)
	if !basic.CanAccessPrograms || !basic.CanAccessCommunity {
		t.Errorf("basic should grant programs and community: %+v", basic)
	}
	if basic.CanAccessLiveLessons || basic.CanAccessCoaching {
		t.Errorf("basic should not grant premium or vip capabilities: %+v", basic)
	}

	premium := Compute("regular", TierPremium)
	if !premium.CanAccessLiveLessons || !premium.CanAccessDownloads {
		t.Errorf("premium should grant live lessons and downloads: %+v", premium)
	}
	if premium.CanAccessCoaching {
		t.Error("premium should not grant coaching")
	}

	vip := Compute("regular", TierVIP)
	if !vip.CanAccessCoaching {
		t.Error("vip should grant coaching")
	}
}

func TestCompute_AdminsHoldEverything(t *testing.T) {
	for _, role := range []string{"admin", "super-admin", "Admin", " SUPER-ADMIN "} {
		p := Compute(role, TierFree)
		if !p.CanAccessPrograms || !p.CanAccessLiveLessons || !p.CanAccessDownloads ||
			!p.CanAccessCommunity || !p.CanAccessCoaching {
			t.Errorf("role %q should hold every capability: %+v", role, p)
		}
		if p.Tier != TierVIP {
			t.Errorf("role %q should report vip tier, got %q", role, p.Tier)
		}
	}
}

func TestCompute_Deterministic(t *testing.T) {
	a := Compute("regular", TierPremium)
	b := Compute("regular", TierPremium)
	if a != b {
		t.Errorf("same inputs must produce the same record: %+v vs %+v", a, b)
	}
}

func TestMeets(t *testing.T) {
	cases := []struct {
		user, required string
		want           bool
	}{
		{TierFree, TierFree, true},
		{TierFree, TierBasic, false},
		{TierBasic, TierBasic, true},
		{TierPremium, TierBasic, true},
		{TierVIP, TierPremium, true},
		{TierBasic, TierVIP, false},
		{"", TierFree, true},
		{"unknown", TierBasic, false},
		{TierPremium, "", true}, // empty requirement means open content
	}
	for _, c := range cases {
		if got := Meets(c.user, c.required); got != c.want {
			t.Errorf("Meets(%q, %q) = %v, want %v", c.user, c.required, got, c.want)
		}
	}
}

func TestAllows(t *testing.T) {
	if Allows(TierFree, CapPrograms) {
		t.Error("free should not allow programs")
	}
	if !Allows(TierVIP, CapCoaching) {
		t.Error("vip should allow coaching")
	}
	if Allows(TierVIP, Capability("nonexistent")) != true {
		// Unknown capabilities require the highest tier, which vip holds.
		t.Error("vip should satisfy the fallback requirement for unknown capabilities")
	}
	if Allows(TierPremium, Capability("nonexistent")) {
		t.Error("premium should not satisfy an unknown capability")
	}
}
